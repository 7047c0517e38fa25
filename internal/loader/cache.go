package loader

import (
	"sync/atomic"
	"time"

	"MarketBreadth/internal/model"
)

// DefaultTTL bounds how long a fetched table is served before re-fetching.
const DefaultTTL = 10 * time.Minute

type cacheEntry struct {
	value     *model.Table
	fetchedAt time.Time
	gen       uint64
}

// Cache holds at most one table for a bounded time. Entries are replaced
// wholesale, never mutated in place. Each Clear starts a new generation and
// entries stamped with an older one are never served.
type Cache struct {
	ttl   time.Duration
	now   func() time.Time
	gen   atomic.Uint64
	entry atomic.Pointer[cacheEntry]
}

// NewCache creates a Cache with the given TTL (DefaultTTL when <= 0).
func NewCache(ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{ttl: ttl, now: time.Now}
}

// TTL returns the configured time-to-live.
func (c *Cache) TTL() time.Duration { return c.ttl }

// Get returns the cached table while it is younger than the TTL.
func (c *Cache) Get() (*model.Table, bool) {
	e := c.entry.Load()
	if e == nil || e.gen != c.gen.Load() {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= c.ttl {
		return nil, false
	}
	return e.value, true
}

// Generation returns the current clear generation.
func (c *Cache) Generation() uint64 { return c.gen.Load() }

// Put replaces the cached table, stamping it with the current time and
// generation.
func (c *Cache) Put(t *model.Table) {
	c.PutAt(t, c.gen.Load())
}

// PutAt stores a table read during generation gen. It is dropped if a Clear
// has happened since; one that races past the check is never served.
func (c *Cache) PutAt(t *model.Table, gen uint64) {
	if gen != c.gen.Load() {
		return
	}
	c.entry.Store(&cacheEntry{value: t, fetchedAt: c.now(), gen: gen})
}

// Clear drops the cached table and advances the generation so the next Get
// misses, including for any fetch already in flight.
func (c *Cache) Clear() {
	c.gen.Add(1)
	c.entry.Store(nil)
}

// FetchedAt reports when the current entry was stored, if any.
func (c *Cache) FetchedAt() (time.Time, bool) {
	e := c.entry.Load()
	if e == nil || e.gen != c.gen.Load() {
		return time.Time{}, false
	}
	return e.fetchedAt, true
}
