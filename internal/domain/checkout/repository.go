package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository defines the persistence contract for checkout sessions
type Repository interface {
	// Create persists a new session
	Create(ctx context.Context, session *Session) error

	// FindByID returns a session by ID, or ErrNotFound. Expiry is not
	// evaluated here; callers check EnsureActive.
	FindByID(ctx context.Context, id uuid.UUID) (*Session, error)

	// Save persists changes to a session
	Save(ctx context.Context, session *Session) error

	// Delete removes a session, typically after successful completion
	Delete(ctx context.Context, id uuid.UUID) error

	// DeleteExpired removes sessions whose expiry is before the cutoff and
	// returns how many were removed. Safe to run concurrently with user
	// requests since it only touches already-expired rows.
	DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error)
}
