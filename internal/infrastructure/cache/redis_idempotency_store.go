package cache

import (
	"context"
	"fmt"
	"time"

	appsorder "github.com/market/backend/internal/application/order"
	"github.com/redis/go-redis/v9"
)

// RedisIdempotencyStore implements IdempotencyStore using Redis.
// Suitable for distributed deployments where multiple instances need to
// share idempotency state.
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisIdempotencyStore creates a new Redis-based idempotency store
// against an existing client
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "idempotency:"
	}
	return &RedisIdempotencyStore{
		client:    client,
		keyPrefix: keyPrefix,
	}
}

// TryAcquire claims a key with a TTL. Returns true if the key was newly
// claimed, false if it was already held. SETNX makes the check-and-set
// atomic across instances.
func (s *RedisIdempotencyStore) TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	acquired, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to acquire idempotency key: %w", err)
	}
	return acquired, nil
}

// Release drops a claimed key so the action can be retried
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release idempotency key: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisIdempotencyStore) Close() error {
	return s.client.Close()
}

// Ensure RedisIdempotencyStore implements IdempotencyStore
var _ appsorder.IdempotencyStore = (*RedisIdempotencyStore)(nil)
