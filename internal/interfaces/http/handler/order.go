package handler

import (
	"github.com/gin-gonic/gin"
	orderapp "github.com/market/backend/internal/application/order"
)

// OrderHandler handles order-related API endpoints
type OrderHandler struct {
	BaseHandler
	placement *orderapp.PlacementService
	orders    *orderapp.OrderService
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(placement *orderapp.PlacementService, orders *orderapp.OrderService) *OrderHandler {
	return &OrderHandler{
		placement: placement,
		orders:    orders,
	}
}

// PlaceOrder places an order from a cart or an explicit item list
// POST /api/v1/orders
func (h *OrderHandler) PlaceOrder(c *gin.Context) {
	var req orderapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}
	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	result, err := h.placement.PlaceOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

// GetOrder returns an order by ID
// GET /api/v1/orders/:id
func (h *OrderHandler) GetOrder(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	result, err := h.orders.GetOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetOrderByNumber returns an order by its public order number
// GET /api/v1/orders/number/:number
func (h *OrderHandler) GetOrderByNumber(c *gin.Context) {
	number := c.Param("number")
	if number == "" {
		h.BadRequest(c, "Order number is required")
		return
	}

	result, err := h.orders.GetOrderByNumber(c.Request.Context(), number)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// UpdateOrderStatus transitions one or more order status fields
// PUT /api/v1/orders/:id/status
func (h *OrderHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.orders.UpdateOrderStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// AddTrackingInfo records carrier tracking and ships the order
// POST /api/v1/orders/:id/tracking
func (h *OrderHandler) AddTrackingInfo(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req orderapp.AddTrackingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.orders.AddTrackingInfo(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// GetTrackingHistory returns the status transition log for an order
// GET /api/v1/orders/:id/tracking
func (h *OrderHandler) GetTrackingHistory(c *gin.Context) {
	id, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	history, err := h.orders.GetOrderTrackingHistory(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, history)
}

// TrackByNumber returns the order carrying a tracking number
// GET /api/v1/orders/track/:tracking_number
func (h *OrderHandler) TrackByNumber(c *gin.Context) {
	trackingNumber := c.Param("tracking_number")
	if trackingNumber == "" {
		h.BadRequest(c, "Tracking number is required")
		return
	}

	result, err := h.orders.GetOrderByTrackingNumber(c.Request.Context(), trackingNumber)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// SearchOrders returns orders matching the filter with pagination
// GET /api/v1/orders
func (h *OrderHandler) SearchOrders(c *gin.Context) {
	var req orderapp.SearchOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.orders.SearchOrders(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// GetOrderSummary returns aggregate figures over matching orders
// GET /api/v1/orders/summary
func (h *OrderHandler) GetOrderSummary(c *gin.Context) {
	var req orderapp.SearchOrdersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	summary, err := h.orders.GetOrderSummary(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}
