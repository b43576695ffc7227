package client

import (
	"strings"
	"sync"
	"time"
)

type entry struct {
	value     interface{}
	fetchedAt time.Time
}

// Cache maps resource keys such as "course/go-basics/chapters" to their last fetched value.
// Invalidating a key drops it together with every key nested under it.
type Cache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
	// generation bumps on every invalidation so a refresh started earlier cannot store a stale value
	generation uint64
}

func NewCache(ttl time.Duration) *Cache {
	return &Cache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[string]entry),
	}
}

// Get returns the cached value and whether it is still fresh.
func (c *Cache) Get(key string) (value interface{}, fresh bool, ok bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[key]
	if !ok {
		return nil, false, false
	}
	return e.value, c.now().Sub(e.fetchedAt) < c.ttl, true
}

func (c *Cache) Generation() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.generation
}

// Store saves value unless an invalidation happened after generation was read.
func (c *Cache) Store(key string, value interface{}, generation uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		return false
	}
	c.entries[key] = entry{value: value, fetchedAt: c.now()}
	return true
}

// Invalidate drops each key and everything nested under it ("key/...").
func (c *Cache) Invalidate(keys ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	for k := range c.entries {
		for _, key := range keys {
			if k == key || strings.HasPrefix(k, key+"/") {
				delete(c.entries, k)
				break
			}
		}
	}
}

// InvalidateSuffix drops every key ending in suffix, e.g. all "/progress" entries.
func (c *Cache) InvalidateSuffix(suffix string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	for k := range c.entries {
		if strings.HasSuffix(k, suffix) {
			delete(c.entries, k)
		}
	}
}

func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.generation++
	c.entries = make(map[string]entry)
}

func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
