package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// TTLCache is a typed in-memory cache with per-entry expiry
type TTLCache[V any] struct {
	cache *gocache.Cache
}

// NewTTLCache creates a cache. A zero ttl on Set uses defaultTTL.
func NewTTLCache[V any](defaultTTL, cleanupInterval time.Duration) *TTLCache[V] {
	return &TTLCache[V]{
		cache: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Get retrieves a value from the cache
func (c *TTLCache[V]) Get(key string) (V, bool) {
	var zero V
	val, found := c.cache.Get(key)
	if !found {
		return zero, false
	}
	v, ok := val.(V)
	if !ok {
		return zero, false
	}
	return v, true
}

// Set stores a value with the given TTL
func (c *TTLCache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = gocache.DefaultExpiration
	}
	c.cache.Set(key, value, ttl)
}

// Delete removes a value from the cache
func (c *TTLCache[V]) Delete(key string) {
	c.cache.Delete(key)
}

// Clear removes all values from the cache
func (c *TTLCache[V]) Clear() {
	c.cache.Flush()
}

// Len returns the number of entries, including expired ones not yet cleaned up
func (c *TTLCache[V]) Len() int {
	return c.cache.ItemCount()
}
