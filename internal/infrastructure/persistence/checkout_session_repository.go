package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/checkout"
	"github.com/market/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormCheckoutSessionRepository implements checkout.Repository using GORM
type GormCheckoutSessionRepository struct {
	db *gorm.DB
}

// NewGormCheckoutSessionRepository creates a new GormCheckoutSessionRepository
func NewGormCheckoutSessionRepository(db *gorm.DB) *GormCheckoutSessionRepository {
	return &GormCheckoutSessionRepository{db: db}
}

// Create persists a new session
func (r *GormCheckoutSessionRepository) Create(ctx context.Context, session *checkout.Session) error {
	err := r.db.WithContext(ctx).Create(session).Error
	if err != nil && isDuplicateKeyError(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// FindByID finds a session by ID
func (r *GormCheckoutSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	var session checkout.Session
	if err := r.db.WithContext(ctx).First(&session, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &session, nil
}

// Save persists changes to a session
func (r *GormCheckoutSessionRepository) Save(ctx context.Context, session *checkout.Session) error {
	return r.db.WithContext(ctx).Save(session).Error
}

// Delete removes a session
func (r *GormCheckoutSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&checkout.Session{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// DeleteExpired removes sessions whose expiry is before the cutoff
func (r *GormCheckoutSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("expires_at < ?", cutoff).
		Delete(&checkout.Session{})
	return result.RowsAffected, result.Error
}
