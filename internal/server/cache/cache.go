// Package cache holds computed API responses keyed by request path and
// query. It wraps patrickmn/go-cache and is flushed whenever the dataset
// snapshot changes.
package cache

import (
	"net/url"
	"sync/atomic"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// Cache is a TTL cache with hit/miss accounting.
type Cache struct {
	store  *gocache.Cache
	hits   atomic.Uint64
	misses atomic.Uint64
}

// New creates a cache. defaultTTL applies to Set; expired items are removed
// every cleanupInterval.
func New(defaultTTL, cleanupInterval time.Duration) *Cache {
	return &Cache{
		store: gocache.New(defaultTTL, cleanupInterval),
	}
}

// Key builds a cache key from a path and its query. Parameter order does
// not matter.
func Key(path string, query url.Values) string {
	if len(query) == 0 {
		return path
	}
	// Encode sorts by key
	return path + "?" + query.Encode()
}

// Get retrieves a value.
func (c *Cache) Get(key string) (any, bool) {
	v, ok := c.store.Get(key)
	if ok {
		c.hits.Add(1)
	} else {
		c.misses.Add(1)
	}
	return v, ok
}

// Set stores a value with the default TTL.
func (c *Cache) Set(key string, value any) {
	c.store.Set(key, value, gocache.DefaultExpiration)
}

// SetWithTTL stores a value with a custom TTL.
func (c *Cache) SetWithTTL(key string, value any, ttl time.Duration) {
	c.store.Set(key, value, ttl)
}

// GetOrCompute returns the cached value for key or computes, stores and
// returns it. Errors are not cached.
func (c *Cache) GetOrCompute(key string, compute func() (any, error)) (any, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}
	v, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(key, v)
	return v, nil
}

// Delete removes a value.
func (c *Cache) Delete(key string) {
	c.store.Delete(key)
}

// Clear removes every item.
func (c *Cache) Clear() {
	c.store.Flush()
}

// ItemCount returns the number of items, including expired ones not yet
// cleaned up.
func (c *Cache) ItemCount() int {
	return c.store.ItemCount()
}

// Stats describes cache usage.
type Stats struct {
	ItemCount int    `json:"item_count" yaml:"item_count"`
	Hits      uint64 `json:"hits" yaml:"hits"`
	Misses    uint64 `json:"misses" yaml:"misses"`
}

// GetStats returns current statistics.
func (c *Cache) GetStats() Stats {
	return Stats{
		ItemCount: c.store.ItemCount(),
		Hits:      c.hits.Load(),
		Misses:    c.misses.Load(),
	}
}
