// Package cache provides a thread-safe LRU cache used to avoid
// re-reading and re-inflating recently used objects from disk.
package cache

import (
	"sync"

	lru "github.com/golang/groupcache/lru"
)

// LRUKey may be any comparable value.
type LRUKey = lru.Key

// LRU is a thread-safe LRU cache.
type LRU struct {
	cache *lru.Cache
	mu    sync.Mutex
}

// NewLRU creates a cache holding at most maxEntries items. A maxEntries of
// zero means no limit.
func NewLRU(maxEntries int) *LRU {
	return &LRU{cache: lru.New(maxEntries)}
}

// Get looks up a key's value.
func (c *LRU) Get(key LRUKey) (value interface{}, ok bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Get(key)
}

// Add adds a value to the cache, evicting the oldest entry if full.
func (c *LRU) Add(key LRUKey, value interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache.Add(key, value)
}

// Len returns the number of items currently cached.
func (c *LRU) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cache.Len()
}
