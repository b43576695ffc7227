package service

import (
	"brainer_backend/pkg/cache"
	"brainer_backend/pkg/logger"
	"brainer_backend/pkg/monitoring"
	"context"

	"go.uber.org/zap"
)

// cachedRead serves key from store, falling back to load and filling the cache.
// Cache failures are logged and never fail the read.
func cachedRead[T any](ctx context.Context, store cache.Store, key string, load func() (T, error)) (T, error) {
	var v T
	hit, err := store.Get(ctx, key, &v)
	if err != nil {
		logger.Log.Warn("read cache get failed", zap.String("key", key), zap.Error(err))
	}
	if hit {
		monitoring.CacheLookups.WithLabelValues("hit").Inc()
		return v, nil
	}
	monitoring.CacheLookups.WithLabelValues("miss").Inc()

	v, err = load()
	if err != nil {
		return v, err
	}
	if err := store.Set(ctx, key, v); err != nil {
		logger.Log.Warn("read cache set failed", zap.String("key", key), zap.Error(err))
	}
	return v, nil
}

// invalidateCourses drops everything cached under the given course slugs.
// withList also drops the course list.
func invalidateCourses(ctx context.Context, store cache.Store, withList bool, slugs ...string) {
	if withList {
		if err := store.Delete(ctx, cache.CoursesKey()); err != nil {
			logger.Log.Warn("read cache invalidation failed", zap.String("key", cache.CoursesKey()), zap.Error(err))
		}
	}
	for _, slug := range slugs {
		if slug == "" {
			continue
		}
		if err := store.InvalidatePrefix(ctx, cache.CoursePrefix(slug)); err != nil {
			logger.Log.Warn("read cache invalidation failed", zap.String("course", slug), zap.Error(err))
		}
	}
}
