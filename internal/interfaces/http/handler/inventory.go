package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	inventoryapp "github.com/market/backend/internal/application/inventory"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
)

// InventoryHandler handles inventory-related API endpoints
type InventoryHandler struct {
	BaseHandler
	ledger       *inventoryapp.LedgerService
	reservations *inventoryapp.ReservationService
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(ledger *inventoryapp.LedgerService, reservations *inventoryapp.ReservationService) *InventoryHandler {
	return &InventoryHandler{
		ledger:       ledger,
		reservations: reservations,
	}
}

// targetFromRequest builds the inventory target from the product_id path
// parameter and the optional variant_id query parameter
func (h *InventoryHandler) targetFromRequest(c *gin.Context) (inventory.Target, bool) {
	productID, err := parseUUIDParam(c, "product_id")
	if err != nil {
		h.BadRequest(c, "Invalid product ID")
		return inventory.Target{}, false
	}
	variantID, err := parseOptionalVariantID(c)
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return inventory.Target{}, false
	}
	return inventory.Target{ProductID: productID, VariantID: variantID}, true
}

// CreateInventory creates an inventory record for a product or variant
// POST /api/v1/inventory
func (h *InventoryHandler) CreateInventory(c *gin.Context) {
	var req inventoryapp.CreateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	record, err := h.ledger.CreateInventory(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, record)
}

// GetInventory returns the inventory record for a target
// GET /api/v1/inventory/:product_id
func (h *InventoryHandler) GetInventory(c *gin.Context) {
	target, ok := h.targetFromRequest(c)
	if !ok {
		return
	}

	record, err := h.ledger.GetInventory(c.Request.Context(), target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// GetStockLevel returns availability for a target. Unknown targets
// report as out of stock rather than erroring.
// GET /api/v1/inventory/:product_id/stock-level
func (h *InventoryHandler) GetStockLevel(c *gin.Context) {
	target, ok := h.targetFromRequest(c)
	if !ok {
		return
	}

	level, err := h.ledger.StockLevel(c.Request.Context(), target)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, level)
}

// BulkStockLevelRequest is the body for a bulk availability check
type BulkStockLevelRequest struct {
	Items []struct {
		ProductID uuid.UUID  `json:"product_id" binding:"required"`
		VariantID *uuid.UUID `json:"variant_id,omitempty"`
	} `json:"items" binding:"required,min=1,max=100"`
}

// BulkStockLevel returns availability for multiple targets in one call
// POST /api/v1/inventory/stock-levels
func (h *InventoryHandler) BulkStockLevel(c *gin.Context) {
	var req BulkStockLevelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	targets := make([]inventory.Target, 0, len(req.Items))
	for _, item := range req.Items {
		targets = append(targets, inventory.Target{ProductID: item.ProductID, VariantID: item.VariantID})
	}

	levels, err := h.ledger.BulkStockLevel(c.Request.Context(), targets)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, levels)
}

// AdjustStock applies a manual stock adjustment
// POST /api/v1/inventory/adjust
func (h *InventoryHandler) AdjustStock(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	record, err := h.ledger.Adjust(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// UpdateThresholdRequest is the body for a threshold update
type UpdateThresholdRequest struct {
	Threshold int64 `json:"threshold" binding:"gte=0"`
}

// UpdateLowStockThreshold changes the low stock alert threshold
// PUT /api/v1/inventory/:product_id/threshold
func (h *InventoryHandler) UpdateLowStockThreshold(c *gin.Context) {
	target, ok := h.targetFromRequest(c)
	if !ok {
		return
	}

	var req UpdateThresholdRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	record, err := h.ledger.UpdateLowStockThreshold(c.Request.Context(), target, req.Threshold)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, record)
}

// GetAlerts returns low stock and out of stock alerts
// GET /api/v1/inventory/alerts
func (h *InventoryHandler) GetAlerts(c *gin.Context) {
	alerts, err := h.ledger.Alerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}

// GetLowStockItems returns records at or below their threshold
// GET /api/v1/inventory/low-stock
func (h *InventoryHandler) GetLowStockItems(c *gin.Context) {
	items, err := h.ledger.LowStockItems(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, items)
}

// movementFilterRequest binds the pagination query for movement history
type movementFilterRequest struct {
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
	OrderBy  string `form:"order_by"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// GetMovementHistory returns the movement log for a target
// GET /api/v1/inventory/:product_id/movements
func (h *InventoryHandler) GetMovementHistory(c *gin.Context) {
	target, ok := h.targetFromRequest(c)
	if !ok {
		return
	}

	var q movementFilterRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindingError(c, err)
		return
	}

	filter := shared.DefaultFilter()
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	if q.OrderBy != "" {
		filter.OrderBy = q.OrderBy
	}
	if q.OrderDir != "" {
		filter.OrderDir = q.OrderDir
	}

	result, err := h.ledger.MovementHistory(c.Request.Context(), target, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// ValidateBatchRequest is the body for a batch availability validation
type ValidateBatchRequest struct {
	Items []inventoryapp.BatchValidationItem `json:"items" binding:"required,min=1"`
}

// ValidateBatch checks whether every requested quantity can be covered
// POST /api/v1/inventory/validate
func (h *InventoryHandler) ValidateBatch(c *gin.Context) {
	var req ValidateBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindingError(c, err)
		return
	}

	result, err := h.reservations.ValidateBatch(c.Request.Context(), req.Items)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
