package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	appinventory "github.com/market/backend/internal/application/inventory"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/order"
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type orderFixture struct {
	service   *OrderService
	orders    *MockOrderRepository
	records   *MockInventoryRepository
	movements *MockMovementRepository
}

func newOrderFixture() *orderFixture {
	f := &orderFixture{
		orders:    new(MockOrderRepository),
		records:   new(MockInventoryRepository),
		movements: new(MockMovementRepository),
	}
	f.movements.On("Append", mock.Anything, mock.Anything).Return(nil).Maybe()

	reservations := appinventory.NewReservationService(f.records, &appinventory.NoOpTransactionScope{
		Repos: appinventory.TransactionalRepositories{Inventory: f.records, Movements: f.movements},
	}, nil, zap.NewNop())

	f.service = NewOrderService(f.orders, reservations, nil, zap.NewNop())
	return f
}

func persistedOrder(t *testing.T, quantity int64) *order.Order {
	t.Helper()
	item, err := order.NewOrderItem(uuid.New(), nil, uuid.New(), "Widget", "SKU-W", quantity,
		decimal.RequireFromString("10.00"))
	require.NoError(t, err)
	o, err := order.NewOrder("ORD-2026-00001", uuid.New(), []order.OrderItem{item})
	require.NoError(t, err)
	o.ClearDomainEvents()
	return o
}

func TestGetOrder(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the order", func(t *testing.T) {
		f := newOrderFixture()
		o := persistedOrder(t, 1)
		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		dto, err := f.service.GetOrder(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, dto.OrderNumber)
	})

	t.Run("propagates not found", func(t *testing.T) {
		f := newOrderFixture()
		id := uuid.New()
		f.orders.On("FindByID", ctx, id).Return(nil, shared.ErrNotFound)

		_, err := f.service.GetOrder(ctx, id)
		require.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUpdateOrderStatus(t *testing.T) {
	ctx := context.Background()

	t.Run("transitions status with lock", func(t *testing.T) {
		f := newOrderFixture()
		o := persistedOrder(t, 1)
		status := order.StatusProcessing.String()

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)

		dto, err := f.service.UpdateOrderStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: &status})
		require.NoError(t, err)
		assert.Equal(t, status, dto.Status)
	})

	t.Run("rejects an invalid transition", func(t *testing.T) {
		f := newOrderFixture()
		o := persistedOrder(t, 1)
		status := order.StatusDelivered.String()

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.UpdateOrderStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: &status})
		require.Error(t, err)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})

	t.Run("requires at least one field", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.service.UpdateOrderStatus(ctx, uuid.New(), UpdateOrderStatusRequest{})
		require.Error(t, err)
	})

	t.Run("propagates concurrency conflicts", func(t *testing.T) {
		f := newOrderFixture()
		o := persistedOrder(t, 1)
		status := order.StatusProcessing.String()

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(shared.ErrConcurrencyConflict)

		_, err := f.service.UpdateOrderStatus(ctx, o.ID, UpdateOrderStatusRequest{Status: &status})
		require.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

func TestAddTracking(t *testing.T) {
	ctx := context.Background()

	t.Run("ships the order and consumes its reservations", func(t *testing.T) {
		f := newOrderFixture()
		o := persistedOrder(t, 3)
		target := inventory.Target{ProductID: o.Items[0].ProductID}

		record, err := inventory.NewInventoryRecord(target, 10, 0)
		require.NoError(t, err)
		require.NoError(t, record.Reserve(3, o.OrderNumber))
		record.ClearDomainEvents()

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)
		f.orders.On("SaveWithLock", ctx, o).Return(nil)
		f.records.On("FindByTarget", ctx, target).Return(record, nil)
		f.records.On("SaveWithLock", ctx, record).Return(nil)

		dto, err := f.service.AddTrackingInfo(ctx, o.ID, AddTrackingRequest{TrackingNumber: "1Z999"})
		require.NoError(t, err)

		assert.Equal(t, "1Z999", dto.TrackingNumber)
		assert.Equal(t, order.FulfillmentStatusShipped.String(), dto.FulfillmentStatus)
		// Held stock left the physical total at shipment
		assert.Equal(t, int64(7), record.Quantity)
		assert.Equal(t, int64(0), record.ReservedQuantity)
	})

	t.Run("a second shipment is rejected", func(t *testing.T) {
		f := newOrderFixture()
		o := persistedOrder(t, 1)
		require.NoError(t, o.AddTrackingInfo("1Z111", false))

		f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

		_, err := f.service.AddTrackingInfo(ctx, o.ID, AddTrackingRequest{TrackingNumber: "1Z222"})
		require.Error(t, err)
		f.orders.AssertNotCalled(t, "SaveWithLock", mock.Anything, mock.Anything)
	})
}

func TestGetOrderTrackingHistory(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	o := persistedOrder(t, 1)
	require.NoError(t, o.ChangeStatus(order.StatusProcessing, "picking", false))

	f.orders.On("FindByID", ctx, o.ID).Return(o, nil)

	history, err := f.service.GetOrderTrackingHistory(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, order.StatusPending.String(), history[0].ToValue)
	assert.Equal(t, order.StatusProcessing.String(), history[1].ToValue)
}

func TestGetOrderByTrackingNumber(t *testing.T) {
	ctx := context.Background()

	t.Run("requires a tracking number", func(t *testing.T) {
		f := newOrderFixture()
		_, err := f.service.GetOrderByTrackingNumber(ctx, "")
		require.Error(t, err)
	})

	t.Run("returns the carrying order", func(t *testing.T) {
		f := newOrderFixture()
		o := persistedOrder(t, 1)
		f.orders.On("FindByTrackingNumber", ctx, "1Z999").Return(o, nil)

		dto, err := f.service.GetOrderByTrackingNumber(ctx, "1Z999")
		require.NoError(t, err)
		assert.Equal(t, o.OrderNumber, dto.OrderNumber)
	})
}

func TestSearchOrders(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()
	o := persistedOrder(t, 1)

	f.orders.On("Search", ctx, mock.MatchedBy(func(filter order.SearchFilter) bool {
		return filter.Status != nil && *filter.Status == order.StatusPending &&
			filter.Page == 1 && filter.PageSize == 20
	})).Return(shared.Paginated[*order.Order]{
		Items: []*order.Order{o}, Total: 1, Page: 1, PageSize: 20, TotalPages: 1,
	}, nil)

	page, err := f.service.SearchOrders(ctx, SearchOrdersRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, o.OrderNumber, page.Items[0].OrderNumber)
	assert.Equal(t, int64(1), page.Total)
}

func TestSearchOrdersRequest_ToSearchFilter(t *testing.T) {
	t.Run("parses the user_id query string into a uuid filter", func(t *testing.T) {
		userID := uuid.New()

		filter := SearchOrdersRequest{UserID: userID.String()}.ToSearchFilter()

		require.NotNil(t, filter.UserID)
		assert.Equal(t, userID, *filter.UserID)
	})

	t.Run("empty user_id leaves the filter unset", func(t *testing.T) {
		filter := SearchOrdersRequest{}.ToSearchFilter()
		assert.Nil(t, filter.UserID)
	})

	t.Run("unparseable user_id is ignored rather than matched", func(t *testing.T) {
		filter := SearchOrdersRequest{UserID: "not-a-uuid"}.ToSearchFilter()
		assert.Nil(t, filter.UserID)
	})
}

func TestGetOrderSummary(t *testing.T) {
	ctx := context.Background()
	f := newOrderFixture()

	f.orders.On("Summarize", ctx, mock.Anything).Return(&order.Summary{
		TotalOrders:  3,
		TotalRevenue: decimal.RequireFromString("59.97"),
		CountsByStatus: map[order.Status]int64{
			order.StatusPending: 2,
			order.StatusShipped: 1,
		},
		PendingPayments: 2,
	}, nil)

	summary, err := f.service.GetOrderSummary(ctx, SearchOrdersRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.TotalOrders)
	assert.Equal(t, int64(2), summary.CountsByStatus["pending"])
	assert.Equal(t, int64(1), summary.CountsByStatus["shipped"])
}
