// Package cache provides a small in-process TTL cache used to memoize
// normalized tables and note reads between requests.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value    any
	expireAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expireAt.IsZero() && now.After(e.expireAt)
}

// TTL is a concurrency-safe map with per-entry time-to-live. A zero or
// negative TTL on Set stores the entry without expiry.
type TTL struct {
	mu sync.RWMutex
	m  map[string]entry
}

// NewTTL creates an empty cache.
func NewTTL() *TTL {
	return &TTL{m: make(map[string]entry)}
}

// Get returns the cached value for key, or false when absent or expired.
// Expired entries are removed on access.
func (c *TTL) Get(key string) (any, bool) {
	c.mu.RLock()
	e, ok := c.m[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if e.expired(time.Now()) {
		c.mu.Lock()
		delete(c.m, key)
		c.mu.Unlock()
		return nil, false
	}
	return e.value, true
}

// Set stores value under key for ttl.
func (c *TTL) Set(key string, value any, ttl time.Duration) {
	var expireAt time.Time
	if ttl > 0 {
		expireAt = time.Now().Add(ttl)
	}
	c.mu.Lock()
	c.m[key] = entry{value: value, expireAt: expireAt}
	c.mu.Unlock()
}

// Invalidate removes the entry for key, if any.
func (c *TTL) Invalidate(key string) {
	c.mu.Lock()
	delete(c.m, key)
	c.mu.Unlock()
}

// Len returns the number of stored entries, including not-yet-collected
// expired ones.
func (c *TTL) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.m)
}
