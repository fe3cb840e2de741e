// Package idempotency gates duplicate create-job submissions by the
// client-generated request id.
package idempotency

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// Store claims request ids. Claim returns false when the id was already
// claimed inside the TTL window.
type Store interface {
	Claim(ctx context.Context, key string) (bool, error)
}

const keyPrefix = "repairtrack:reqid:"

// RedisStore backs request dedup with SETNX and a TTL.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore builds a store over an existing client.
func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{client: client, ttl: ttl}
}

// Claim atomically records the request id.
func (s *RedisStore) Claim(ctx context.Context, key string) (bool, error) {
	return s.client.SetNX(ctx, keyPrefix+key, 1, s.ttl).Result()
}

// MemoryStore is an in-process Store for tests and redis-less setups.
type MemoryStore struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{seen: make(map[string]struct{})}
}

// Claim records the request id, ignoring TTL semantics.
func (s *MemoryStore) Claim(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.seen[key]; ok {
		return false, nil
	}
	s.seen[key] = struct{}{}
	return true, nil
}
