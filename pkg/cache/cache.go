// Package cache holds the server-side read cache for public course content.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store caches JSON-encodable values by key. Keys are hierarchical and use ":" as separator,
// so invalidating "course:data-eng:" drops every entry nested under that course.
type Store interface {
	Get(ctx context.Context, key string, dst interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}) error
	InvalidatePrefix(ctx context.Context, prefix string) error
	Delete(ctx context.Context, keys ...string) error
}

const namespace = "brainer:"

// CoursesKey addresses the course list.
func CoursesKey() string { return "courses" }

// CoursePrefix is the root of everything cached for one course.
func CoursePrefix(slug string) string { return "course:" + slug + ":" }

func CourseKey(slug string) string { return CoursePrefix(slug) + "detail" }

func PartsKey(slug string) string { return CoursePrefix(slug) + "parts" }

func ChaptersKey(slug string) string { return CoursePrefix(slug) + "chapters" }

func ChapterKey(slug, chapterSlug string) string {
	return CoursePrefix(slug) + "chapter:" + chapterSlug
}

type RedisStore struct {
	Client *redis.Client
	TTL    time.Duration
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &RedisStore{Client: client, TTL: ttl}
}

func (s *RedisStore) Get(ctx context.Context, key string, dst interface{}) (bool, error) {
	raw, err := s.Client.Get(ctx, namespace+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		// 格式不兼容的旧缓存直接丢弃
		s.Client.Del(ctx, namespace+key)
		return false, nil
	}
	return true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value interface{}) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(ctx, namespace+key, raw, s.TTL).Err()
}

func (s *RedisStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = namespace + k
	}
	return s.Client.Del(ctx, full...).Err()
}

func (s *RedisStore) InvalidatePrefix(ctx context.Context, prefix string) error {
	iter := s.Client.Scan(ctx, 0, namespace+prefix+"*", 100).Iterator()
	var batch []string
	for iter.Next(ctx) {
		batch = append(batch, iter.Val())
		if len(batch) == 100 {
			if err := s.Client.Del(ctx, batch...).Err(); err != nil {
				return err
			}
			batch = batch[:0]
		}
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(batch) > 0 {
		return s.Client.Del(ctx, batch...).Err()
	}
	return nil
}

// NopStore never hits; used when redis is disabled.
type NopStore struct{}

func (NopStore) Get(context.Context, string, interface{}) (bool, error) { return false, nil }
func (NopStore) Set(context.Context, string, interface{}) error         { return nil }
func (NopStore) InvalidatePrefix(context.Context, string) error         { return nil }
func (NopStore) Delete(context.Context, ...string) error                { return nil }
