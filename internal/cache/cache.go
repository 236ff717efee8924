// Package cache provides a TTL-bounded in-memory cache used for validated
// principals and resolved endpoint descriptors.
//
// Expiry is lazy: an entry past its deadline is evicted by the read that
// observes it and is never returned to a caller.
package cache

import (
	"sync"
	"time"
)

// entry holds a cached value together with its expiry deadline.
// A zero deadline means the entry never expires.
type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Cache is a TTL key-value cache. The zero value is not usable; use New.
type Cache[V any] struct {
	name       string
	defaultTTL time.Duration

	mu    sync.Mutex
	items map[string]entry[V]

	hits      int64
	misses    int64
	evictions int64
}

// Option configures a Cache.
type Option[V any] func(*Cache[V])

// WithDefaultTTL sets the TTL applied when Set is called with ttl 0.
func WithDefaultTTL[V any](ttl time.Duration) Option[V] {
	return func(c *Cache[V]) {
		c.defaultTTL = ttl
	}
}

// New creates a new cache. The name labels the cache in metrics.
func New[V any](name string, opts ...Option[V]) *Cache[V] {
	c := &Cache[V]{
		name:       name,
		defaultTTL: time.Hour,
		items:      make(map[string]entry[V]),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key, if present and unexpired.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.items[key]
	if !ok {
		c.misses++
		recordMiss(c.name)
		var zero V
		return zero, false
	}

	if !e.expiresAt.IsZero() && !time.Now().Before(e.expiresAt) {
		delete(c.items, key)
		c.misses++
		c.evictions++
		recordMiss(c.name)
		recordEviction(c.name)
		var zero V
		return zero, false
	}

	c.hits++
	recordHit(c.name)
	return e.value, true
}

// Set stores value under key. A ttl of 0 applies the cache default;
// a negative ttl stores the entry without expiry.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl == 0 {
		ttl = c.defaultTTL
	}

	var expiresAt time.Time
	if ttl > 0 {
		expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.items[key] = entry[V]{value: value, expiresAt: expiresAt}
	recordSize(c.name, len(c.items))
}

// Delete removes key from the cache.
func (c *Cache[V]) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.items, key)
	recordSize(c.name, len(c.items))
}

// Clear removes all entries.
func (c *Cache[V]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.items = make(map[string]entry[V])
	recordSize(c.name, 0)
}

// Len returns the number of stored entries, including any that have
// expired but have not yet been observed by a read.
func (c *Cache[V]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Stats holds cache statistics.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Size      int
}

// Stats returns a snapshot of cache statistics.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Stats{
		Hits:      c.hits,
		Misses:    c.misses,
		Evictions: c.evictions,
		Size:      len(c.items),
	}
}
