package cache

import (
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

// Cache holds one value for at most ttl. It is safe for concurrent use.
type Cache[T any] struct {
	mu       sync.RWMutex
	clock    clockwork.Clock
	ttl      time.Duration
	value    T
	loadedAt time.Time
	valid    bool
	gen      uint64
}

// Stamp marks when a load began. A value stored with a stamp taken before an Invalidate is
// refused.
type Stamp struct {
	At  time.Time
	gen uint64
}

// New creates an empty cache. A nil clock means the real clock.
func New[T any](ttl time.Duration, clock clockwork.Clock) *Cache[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Cache[T]{clock: clock, ttl: ttl}
}

// Get returns the cached value if one was set less than ttl ago.
func (c *Cache[T]) Get() (T, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid || c.clock.Since(c.loadedAt) > c.ttl {
		var zero T
		return zero, false
	}
	return c.value, true
}

// Set stores v, stamped with the current time.
func (c *Cache[T]) Set(v T) {
	c.SetAt(v, c.Stamp())
}

// Stamp returns the current time and invalidation generation. Take it before reading the
// source of a value and pass it to SetAt.
func (c *Cache[T]) Stamp() Stamp {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return Stamp{At: c.clock.Now(), gen: c.gen}
}

// SetAt stores v as loaded at s.At. It reports false and keeps nothing when Invalidate ran
// after s was taken, since v may predate that change.
func (c *Cache[T]) SetAt(v T, s Stamp) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if s.gen != c.gen {
		return false
	}
	c.value = v
	c.loadedAt = s.At
	c.valid = true
	return true
}

// Invalidate drops the value if it was loaded at or before at. A value loaded after a change
// already reflects it and is kept. Loads still in flight are refused by SetAt.
func (c *Cache[T]) Invalidate(at time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.gen++
	if c.valid && !c.loadedAt.After(at) {
		var zero T
		c.value = zero
		c.valid = false
	}
}

// LoadedAt returns when the current value was set, or the zero time when empty.
func (c *Cache[T]) LoadedAt() time.Time {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.valid {
		return time.Time{}
	}
	return c.loadedAt
}

// Now returns the cache clock's current time.
func (c *Cache[T]) Now() time.Time {
	return c.clock.Now()
}
