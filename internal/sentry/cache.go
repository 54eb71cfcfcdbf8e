package sentry

import (
	"crypto/sha256"
	"encoding/hex"
	"sync"
	"time"
)

// Cache is a bounded in-memory store of fetch results keyed by
// (endpoint, customer, window). Entries are written once and never mutated,
// so concurrent readers can share the returned slices. Eviction is FIFO by
// insertion order; there is no TTL — the cache lives and dies with the
// process and is a performance optimization only.
type Cache struct {
	mu       sync.Mutex
	capacity int
	entries  map[string][]RawEvent
	order    []string // insertion order, oldest first
}

// DefaultCacheCapacity bounds the cache when no capacity is configured.
const DefaultCacheCapacity = 100

// NewCache creates a cache holding at most capacity entries.
// A non-positive capacity falls back to DefaultCacheCapacity.
func NewCache(capacity int) *Cache {
	if capacity <= 0 {
		capacity = DefaultCacheCapacity
	}
	return &Cache{
		capacity: capacity,
		entries:  make(map[string][]RawEvent, capacity),
	}
}

// Get returns the cached events for key, if present.
func (c *Cache) Get(key string) ([]RawEvent, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	events, ok := c.entries[key]
	return events, ok
}

// Put stores events under key, evicting the oldest entry when full.
// A key that is already present is left untouched (set once, read many).
func (c *Cache) Put(key string, events []RawEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.entries[key]; ok {
		return
	}
	if len(c.order) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[key] = events
	c.order = append(c.order, key)
}

// Len reports the number of cached entries.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// cacheKey hashes the full identity of a fetch: endpoint URL, customer, and
// both window bounds. Any change to one of them is a different entry.
func cacheKey(endpoint, customerID string, start, end time.Time) string {
	h := sha256.New()
	for _, part := range []string{
		endpoint,
		customerID,
		start.UTC().Format(time.RFC3339Nano),
		end.UTC().Format(time.RFC3339Nano),
	} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
