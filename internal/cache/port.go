package cache

import (
	"context"
	"math"
	"time"
)

// Repository is the cache contract shared by every cached record type.
// Implementations are safe for concurrent use.
//
// Get reports found=false on a miss or an expired entry; a miss is not an error.
// An entry that exists but cannot be decoded is an error, never a miss.
//
// Set overwrites any existing value. ttlSeconds is advisory: the backend may
// evict the entry after that many seconds; 0 means no expiry.
type Repository[T any] interface {
	Get(ctx context.Context, key string) (T, bool, error)
	Set(ctx context.Context, key string, value T, ttlSeconds uint64) error
}

// ByteStore is a backend holding encoded values.
// EncodedRepository turns any ByteStore into a Repository for a concrete type.
type ByteStore interface {
	GetBytes(ctx context.Context, key string) ([]byte, bool, error)
	SetBytes(ctx context.Context, key string, data []byte, ttlSeconds uint64) error
}

// Expirer is implemented by backends that keep expired entries until swept.
type Expirer interface {
	DeleteExpired(ctx context.Context) (int64, error)
}

// MaxTTLSeconds is the longest expiry that still fits a time.Duration.
// Backends clamp larger values to it.
const MaxTTLSeconds uint64 = math.MaxInt64 / uint64(time.Second)

// ttlDuration converts ttlSeconds to a Duration, clamped to MaxTTLSeconds. 0 stays 0.
func ttlDuration(ttlSeconds uint64) time.Duration {
	return time.Duration(min(ttlSeconds, MaxTTLSeconds)) * time.Second
}
