package inventory

import (
	"context"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/catalog"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockInventoryRepository is a mock implementation of inventory.Repository
type MockInventoryRepository struct {
	mock.Mock
}

func (m *MockInventoryRepository) Create(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRepository) FindByTarget(ctx context.Context, target inventory.Target) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, target)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindByTargets(ctx context.Context, targets []inventory.Target) ([]*inventory.InventoryRecord, error) {
	args := m.Called(ctx, targets)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRepository) SaveWithLock(ctx context.Context, record *inventory.InventoryRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockInventoryRepository) ReserveQuantity(ctx context.Context, target inventory.Target, quantity int64) (*inventory.InventoryRecord, error) {
	args := m.Called(ctx, target, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindLowStock(ctx context.Context) ([]*inventory.InventoryRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindOutOfStock(ctx context.Context) ([]*inventory.InventoryRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.InventoryRecord), args.Error(1)
}

func (m *MockInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*inventory.InventoryRecord], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*inventory.InventoryRecord]), args.Error(1)
}

// MockMovementRepository is a mock implementation of inventory.MovementRepository
type MockMovementRepository struct {
	mock.Mock
}

func (m *MockMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	args := m.Called(ctx, movement)
	return args.Error(0)
}

func (m *MockMovementRepository) FindByTarget(ctx context.Context, target inventory.Target, filter shared.Filter) (shared.Paginated[*inventory.StockMovement], error) {
	args := m.Called(ctx, target, filter)
	return args.Get(0).(shared.Paginated[*inventory.StockMovement]), args.Error(1)
}

func (m *MockMovementRepository) FindByReference(ctx context.Context, reference string) ([]*inventory.StockMovement, error) {
	args := m.Called(ctx, reference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*inventory.StockMovement), args.Error(1)
}

// MockCatalogRepository is a mock implementation of catalog.Repository
type MockCatalogRepository struct {
	mock.Mock
}

func (m *MockCatalogRepository) FindProduct(ctx context.Context, id uuid.UUID) (*catalog.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Product), args.Error(1)
}

func (m *MockCatalogRepository) FindProducts(ctx context.Context, ids []uuid.UUID) ([]*catalog.Product, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*catalog.Product), args.Error(1)
}

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}
