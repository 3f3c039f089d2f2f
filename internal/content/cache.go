package content

import "sync"

// Cache is an identifier-keyed, append-only map guarded for concurrent
// readers. Puts on an existing key overwrite (last write wins). Only
// Clear removes entries.
type Cache[T any] struct {
	mu      sync.RWMutex
	entries map[string]T
}

// NewCache returns an empty cache.
func NewCache[T any]() *Cache[T] {
	return &Cache[T]{entries: make(map[string]T)}
}

// Get returns the cached value for key.
func (c *Cache[T]) Get(key string) (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.entries[key]
	return v, ok
}

// Put stores v under key.
func (c *Cache[T]) Put(key string, v T) {
	c.mu.Lock()
	c.entries[key] = v
	c.mu.Unlock()
}

// Len returns the number of cached entries.
func (c *Cache[T]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// Clear drops every entry. It waits for in-flight readers to release.
func (c *Cache[T]) Clear() {
	c.mu.Lock()
	c.entries = make(map[string]T)
	c.mu.Unlock()
}
