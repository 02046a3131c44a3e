package order

import (
	"context"

	"github.com/google/uuid"
	appinventory "github.com/market/backend/internal/application/inventory"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/order"
	"github.com/market/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// OrderService covers the order operations outside the placement path:
// status management, tracking, and the search/summary read models.
type OrderService struct {
	orders       order.Repository
	reservations *appinventory.ReservationService
	events       shared.EventPublisher
	logger       *zap.Logger
}

// NewOrderService creates a new order service
func NewOrderService(
	orders order.Repository,
	reservations *appinventory.ReservationService,
	events shared.EventPublisher,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		orders:       orders,
		reservations: reservations,
		events:       events,
		logger:       logger,
	}
}

// GetOrder returns an order with its items
func (s *OrderService) GetOrder(ctx context.Context, id uuid.UUID) (*OrderDTO, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(o), nil
}

// GetOrderByNumber returns an order by its public order number
func (s *OrderService) GetOrderByNumber(ctx context.Context, orderNumber string) (*OrderDTO, error) {
	o, err := s.orders.FindByOrderNumber(ctx, orderNumber)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(o), nil
}

// UpdateOrderStatus transitions status fields, each producing a history
// entry and an optional customer notification flag
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id uuid.UUID, req UpdateOrderStatusRequest) (*OrderDTO, error) {
	if req.Status == nil && req.PaymentStatus == nil && req.FulfillmentStatus == nil {
		return nil, shared.NewDomainError("INVALID_INPUT", "At least one status field must be provided")
	}

	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if err := o.ChangeStatus(order.Status(*req.Status), req.Note, req.NotifyCustomer); err != nil {
			return nil, err
		}
	}
	if req.PaymentStatus != nil {
		if err := o.ChangePaymentStatus(order.PaymentStatus(*req.PaymentStatus), req.Note, req.NotifyCustomer); err != nil {
			return nil, err
		}
	}
	if req.FulfillmentStatus != nil {
		if err := o.ChangeFulfillmentStatus(order.FulfillmentStatus(*req.FulfillmentStatus), req.Note, req.NotifyCustomer); err != nil {
			return nil, err
		}
	}

	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, o)
	return ToOrderDTO(o), nil
}

// AddTrackingInfo records the tracking number, moves the order to
// shipped, and consumes the reservations held for it: shipment is the
// point where held stock leaves the physical total.
func (s *OrderService) AddTrackingInfo(ctx context.Context, id uuid.UUID, req AddTrackingRequest) (*OrderDTO, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := o.AddTrackingInfo(req.TrackingNumber, req.NotifyCustomer); err != nil {
		return nil, err
	}
	if err := s.orders.SaveWithLock(ctx, o); err != nil {
		return nil, err
	}

	for _, item := range o.Items {
		target := inventory.Target{ProductID: item.ProductID, VariantID: item.VariantID}
		if err := s.reservations.Fulfill(ctx, target, item.Quantity, o.OrderNumber); err != nil {
			// The order is shipped either way; a failed deduction is
			// reconciled through a manual adjustment.
			s.logger.Error("failed to fulfill reservation at shipment",
				zap.String("order_number", o.OrderNumber),
				zap.String("target", target.String()),
				zap.Int64("quantity", item.Quantity),
				zap.Error(err))
		}
	}

	s.publishEvents(ctx, o)
	return ToOrderDTO(o), nil
}

// GetOrderTrackingHistory returns the append-only status transition log
func (s *OrderService) GetOrderTrackingHistory(ctx context.Context, id uuid.UUID) ([]StatusHistoryDTO, error) {
	o, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	history := make([]StatusHistoryDTO, 0, len(o.History))
	for _, entry := range o.History {
		history = append(history, ToStatusHistoryDTO(entry))
	}
	return history, nil
}

// GetOrderByTrackingNumber returns the order carrying a tracking number
func (s *OrderService) GetOrderByTrackingNumber(ctx context.Context, trackingNumber string) (*OrderDTO, error) {
	if trackingNumber == "" {
		return nil, shared.NewDomainError("INVALID_INPUT", "Tracking number is required")
	}
	o, err := s.orders.FindByTrackingNumber(ctx, trackingNumber)
	if err != nil {
		return nil, err
	}
	return ToOrderDTO(o), nil
}

// SearchOrders returns orders matching the filter with pagination metadata
func (s *OrderService) SearchOrders(ctx context.Context, req SearchOrdersRequest) (shared.Paginated[*OrderDTO], error) {
	page, err := s.orders.Search(ctx, req.ToSearchFilter())
	if err != nil {
		return shared.Paginated[*OrderDTO]{}, err
	}

	items := make([]*OrderDTO, 0, len(page.Items))
	for _, o := range page.Items {
		items = append(items, ToOrderDTO(o))
	}
	return shared.Paginated[*OrderDTO]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

// GetOrderSummary returns aggregate figures over orders matching the filter
func (s *OrderService) GetOrderSummary(ctx context.Context, req SearchOrdersRequest) (*SummaryDTO, error) {
	summary, err := s.orders.Summarize(ctx, req.ToSearchFilter())
	if err != nil {
		return nil, err
	}
	return ToSummaryDTO(summary), nil
}

func (s *OrderService) publishEvents(ctx context.Context, o *order.Order) {
	if s.events == nil {
		return
	}
	events := o.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish order events",
			zap.String("order_number", o.OrderNumber),
			zap.Error(err))
	}
	o.ClearDomainEvents()
}
