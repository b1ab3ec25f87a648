package cache

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
)

type memoryEntry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryCache is an in-process Repository.
// It uses a map for storage and provides thread-safe operations via RWMutex.
// Values are held as-is, so no codec is involved.
type MemoryCache[T any] struct {
	mu    sync.RWMutex
	data  map[string]memoryEntry[T]
	clock clockwork.Clock
}

// NewMemoryCache creates an empty cache. A nil clock uses the real clock.
func NewMemoryCache[T any](clock clockwork.Clock) *MemoryCache[T] {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &MemoryCache[T]{
		data:  make(map[string]memoryEntry[T]),
		clock: clock,
	}
}

func (c *MemoryCache[T]) Get(ctx context.Context, key string) (T, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var zero T
	entry, exists := c.data[key]
	if !exists || c.expired(entry) {
		return zero, false, nil
	}
	return entry.value, true, nil
}

func (c *MemoryCache[T]) Set(ctx context.Context, key string, value T, ttlSeconds uint64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry := memoryEntry[T]{value: value}
	if ttlSeconds > 0 {
		entry.expiresAt = c.clock.Now().Add(ttlDuration(ttlSeconds))
	}
	c.data[key] = entry
	return nil
}

// DeleteExpired drops entries whose TTL has elapsed and reports how many were removed.
func (c *MemoryCache[T]) DeleteExpired(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var deleted int64
	for key, entry := range c.data {
		if c.expired(entry) {
			delete(c.data, key)
			deleted++
		}
	}
	return deleted, nil
}

// Clear removes all entries from the cache.
// This method is primarily useful for testing.
func (c *MemoryCache[T]) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.data = make(map[string]memoryEntry[T])
}

// Size returns the number of entries held, expired or not.
func (c *MemoryCache[T]) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return len(c.data)
}

func (c *MemoryCache[T]) expired(entry memoryEntry[T]) bool {
	return !entry.expiresAt.IsZero() && !c.clock.Now().Before(entry.expiresAt)
}
