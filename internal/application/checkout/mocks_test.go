package checkout

import (
	"context"
	"time"

	"github.com/google/uuid"
	apporder "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/domain/cart"
	"github.com/market/backend/internal/domain/catalog"
	"github.com/market/backend/internal/domain/checkout"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/order"
	"github.com/market/backend/internal/domain/shared"
	"github.com/stretchr/testify/mock"
)

// MockSessionRepository is a mock implementation of checkout.Repository
type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *checkout.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) FindByID(ctx context.Context, id uuid.UUID) (*checkout.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Session), args.Error(1)
}

func (m *MockSessionRepository) Save(ctx context.Context, session *checkout.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *MockSessionRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSessionRepository) DeleteExpired(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

// MockCartRepository is a mock implementation of cart.Repository
type MockCartRepository struct {
	mock.Mock
}

func (m *MockCartRepository) FindWithItems(ctx context.Context, id uuid.UUID) (*cart.Cart, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cart.Cart), args.Error(1)
}

func (m *MockCartRepository) Clear(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
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

// MockOrderRepository is a mock implementation of order.Repository
type MockOrderRepository struct {
	mock.Mock
}

func (m *MockOrderRepository) Create(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	args := m.Called(ctx, orderNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*order.Order, error) {
	args := m.Called(ctx, trackingNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockOrderRepository) Search(ctx context.Context, filter order.SearchFilter) (shared.Paginated[*order.Order], error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(shared.Paginated[*order.Order]), args.Error(1)
}

func (m *MockOrderRepository) Summarize(ctx context.Context, filter order.SearchFilter) (*order.Summary, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Summary), args.Error(1)
}

func (m *MockOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockPaymentGateway is a mock implementation of order.PaymentGateway
type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Charge(ctx context.Context, req apporder.ChargeRequest) (*apporder.ChargeResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apporder.ChargeResult), args.Error(1)
}
