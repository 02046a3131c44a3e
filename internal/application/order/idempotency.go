package order

import (
	"context"
	"time"
)

// IdempotencyStore guards against duplicate submission of the same user
// action. TryAcquire returns false when the key was already claimed
// within its TTL.
type IdempotencyStore interface {
	TryAcquire(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Release(ctx context.Context, key string) error
}
