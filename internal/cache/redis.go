package cache

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds the Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr: "localhost:6379",
	}
}

// RedisStore is a ByteStore over a single-connection Redis pool.
// Each GetBytes or SetBytes holds the lock for exactly one command. The pool
// drops a connection that failed and dials a new one on the next command.
type RedisStore struct {
	mu     sync.Mutex
	client *redis.Client
}

// NewRedisStore connects and verifies the connection with PING.
func NewRedisStore(ctx context.Context, cfg RedisConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: 1,
	})
	store := &RedisStore{client: client}
	if err := client.Ping(ctx).Err(); err != nil {
		_ = store.Close()
		return nil, &CacheError{
			Message:   fmt.Sprintf("ping %s: %v", cfg.Addr, err),
			Retryable: true,
			Cause:     ErrCauseConnectFailure,
		}
	}
	return store, nil
}

func (s *RedisStore) GetBytes(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.Lock()
	data, err := s.client.Get(ctx, key).Bytes()
	s.mu.Unlock()

	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, readError(key, err)
	}
	return data, true, nil
}

// SetBytes issues SET key value EX ttl; a zero ttl stores the key without expiry.
func (s *RedisStore) SetBytes(ctx context.Context, key string, data []byte, ttlSeconds uint64) error {
	s.mu.Lock()
	err := s.client.Set(ctx, key, data, ttlDuration(ttlSeconds)).Err()
	s.mu.Unlock()

	if err != nil {
		return writeError(key, err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.client.Close()
}
