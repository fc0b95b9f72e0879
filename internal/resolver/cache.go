package resolver

import (
	"context"
	"sync"
)

// LookupFunc performs the underlying read for a cache miss.
type LookupFunc[K comparable, V any] func(ctx context.Context, key K) Resolved[V]

// Cache is a read-through memoization map over a lookup function. Found and
// NotFound outcomes are cached; Unavailable outcomes are returned but not
// cached so a later retry can consult the source again. Entries are only ever
// added, never mutated, so concurrent readers need no coordination beyond the
// insert lock.
type Cache[K comparable, V any] struct {
	mu      sync.RWMutex
	entries map[K]Resolved[V]
	lookup  LookupFunc[K, V]
}

// NewCache creates a cache over the given lookup function.
func NewCache[K comparable, V any](lookup LookupFunc[K, V]) *Cache[K, V] {
	return &Cache[K, V]{
		entries: make(map[K]Resolved[V]),
		lookup:  lookup,
	}
}

// Get returns the memoized result for key, consulting the lookup function on
// a miss.
func (c *Cache[K, V]) Get(ctx context.Context, key K) Resolved[V] {
	c.mu.RLock()
	cached, ok := c.entries[key]
	c.mu.RUnlock()
	if ok {
		return cached
	}

	result := c.lookup(ctx, key)
	if result.Status == StatusUnavailable {
		return result
	}

	c.mu.Lock()
	// Another goroutine may have raced the same miss; first write wins so the
	// map stays append-only.
	if existing, ok := c.entries[key]; ok {
		result = existing
	} else {
		c.entries[key] = result
	}
	c.mu.Unlock()

	return result
}

// Len returns the number of memoized entries.
func (c *Cache[K, V]) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}
