package inventory

import (
	"context"

	"github.com/market/backend/internal/domain/inventory"
)

// TransactionalRepositories bundles the repositories participating in one
// ledger transaction. A record mutation and its movement append must
// commit or roll back together.
type TransactionalRepositories struct {
	Inventory inventory.Repository
	Movements inventory.MovementRepository
}

// TransactionScope executes a function within a database transaction.
// If the function returns an error the transaction is rolled back.
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// NoOpTransactionScope executes the function against the given
// repositories without any transaction boundary. Intended for tests.
type NoOpTransactionScope struct {
	Repos TransactionalRepositories
}

// Execute runs fn directly
func (s *NoOpTransactionScope) Execute(_ context.Context, fn func(repos TransactionalRepositories) error) error {
	return fn(s.Repos)
}
