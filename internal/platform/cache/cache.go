// Package cache provides a size-bounded, TTL-expiring read cache for the
// application services. Entries are invalidated by the event reactors when
// the underlying aggregates change, so readers tolerate at most one TTL of
// staleness even if a reactor is missed.
package cache

import (
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

const (
	defaultSize = 1000
	defaultTTL  = 5 * time.Minute
)

// Cache wraps an expirable LRU keyed by string. Safe for concurrent use.
type Cache struct {
	lru *expirable.LRU[string, any]
}

// New creates a cache holding at most size entries, each expiring ttl after
// insertion. Non-positive arguments fall back to the defaults (1000 entries,
// 5 minutes).
func New(size int, ttl time.Duration) *Cache {
	if size <= 0 {
		size = defaultSize
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Cache{lru: expirable.NewLRU[string, any](size, nil, ttl)}
}

// Key joins a prefix and parts into a cache key ("project:p1").
func Key(prefix string, parts ...string) string {
	if len(parts) == 0 {
		return prefix
	}
	return prefix + ":" + strings.Join(parts, ":")
}

// Get returns the cached value for key, or false on a miss or after expiry.
func (c *Cache) Get(key string) (any, bool) {
	return c.lru.Get(key)
}

// Set stores a value under key, evicting the oldest entry when full.
func (c *Cache) Set(key string, value any) {
	c.lru.Add(key, value)
}

// Delete removes a single entry. Removing an absent key is a no-op.
func (c *Cache) Delete(key string) {
	c.lru.Remove(key)
}

// DeletePrefix removes every entry whose key starts with prefix.
func (c *Cache) DeletePrefix(prefix string) {
	for _, key := range c.lru.Keys() {
		if strings.HasPrefix(key, prefix) {
			c.lru.Remove(key)
		}
	}
}

// Purge removes every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}
