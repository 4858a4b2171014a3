package cache

import (
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a typed TTL cache. Map access is serialized by the backing
// store's own lock; factory callbacks in GetOrSet run outside of it, so
// lookups for different keys can do network I/O concurrently.
type Cache[V any] struct {
	store *gocache.Cache
}

// New creates a cache whose entries expire after ttl. Expired entries are
// also swept in the background at twice the TTL.
func New[V any](ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		store: gocache.New(ttl, 2*ttl),
	}
}

// Get returns the value for key if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	var zero V
	raw, ok := c.store.Get(key)
	if !ok {
		return zero, false
	}
	value, ok := raw.(V)
	if !ok {
		return zero, false
	}
	return value, true
}

// Set stores value under key with the cache's default TTL.
func (c *Cache[V]) Set(key string, value V) {
	c.store.SetDefault(key, value)
}

// Clear drops every entry.
func (c *Cache[V]) Clear() {
	c.store.Flush()
}

// GetOrSet returns the cached value for key if present. Otherwise it invokes
// factory and stores the result only when factory reports ok; a failed
// lookup is never cached, so the next caller retries.
func (c *Cache[V]) GetOrSet(key string, factory func() (V, bool)) (V, bool) {
	if value, ok := c.Get(key); ok {
		return value, true
	}
	value, ok := factory()
	if !ok {
		var zero V
		return zero, false
	}
	c.Set(key, value)
	return value, true
}
