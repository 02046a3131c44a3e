package persistence

import (
	"context"

	appinventory "github.com/market/backend/internal/application/inventory"
	"gorm.io/gorm"
)

// GormTransactionScope implements the ledger transaction scope: the
// record mutation and its movement append commit or roll back together.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction, handing it repositories
// bound to the transaction connection
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appinventory.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(appinventory.TransactionalRepositories{
			Inventory: NewGormInventoryRepository(tx),
			Movements: NewGormMovementRepository(tx),
		})
	})
}
