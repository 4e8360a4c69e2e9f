package props

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache defaults. 2000 entries, expired after two minutes without use.
const (
	DefaultCapacity = 2000
	DefaultIdle     = 120 * time.Second
)

// Cache is a bounded, expiring cache of parsed configuration objects keyed
// by resolved source path. Keys embed the install version directory, so a
// project upload naturally changes the keys and old entries age out.
//
// The cache hands out clones in both directions: values are cloned on Put
// and again on Get, so no caller can mutate the cached original or another
// caller's copy.
//
// Safe for concurrent use; the underlying LRU carries its own lock.
type Cache struct {
	lru *expirable.LRU[string, *Properties]
}

// NewCache returns a cache holding at most capacity entries, each expiring
// after the idle duration. Zero values select the defaults.
func NewCache(capacity int, idle time.Duration) *Cache {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	if idle <= 0 {
		idle = DefaultIdle
	}
	return &Cache{
		lru: expirable.NewLRU[string, *Properties](capacity, nil, idle),
	}
}

// Get returns a clone of the cached object for key, if present and fresh.
// A hit re-inserts the entry, resetting its expiry so the lifetime is
// idle-based rather than fixed from first insertion.
func (c *Cache) Get(key string) (*Properties, bool) {
	cached, ok := c.lru.Get(key)
	if !ok {
		return nil, false
	}
	c.lru.Add(key, cached)
	return cached.Clone(), true
}

// Put stores a clone of the object under key, evicting the least recently
// used entry if the cache is at capacity.
func (c *Cache) Put(key string, p *Properties) {
	c.lru.Add(key, p.Clone())
}

// Len returns the number of live entries.
func (c *Cache) Len() int {
	return c.lru.Len()
}

// Purge drops every entry.
func (c *Cache) Purge() {
	c.lru.Purge()
}
