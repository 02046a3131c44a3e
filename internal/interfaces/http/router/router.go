package router

import (
	"github.com/gin-gonic/gin"
	"github.com/market/backend/internal/interfaces/http/handler"
	"github.com/market/backend/internal/interfaces/http/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"go.uber.org/zap"
)

// Config holds router configuration
type Config struct {
	Env              string
	ServiceName      string
	TelemetryEnabled bool
	TrustedProxies   []string
	CORS             middleware.CORSConfig
}

// Handlers groups the handlers the router wires up
type Handlers struct {
	Inventory *handler.InventoryHandler
	Order     *handler.OrderHandler
	Checkout  *handler.CheckoutHandler
}

// New builds the gin engine with middleware and all API routes
func New(cfg Config, handlers Handlers, logger *zap.Logger) (*gin.Engine, error) {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	middleware.SetupValidator()

	engine := gin.New()
	if err := engine.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, err
	}

	engine.Use(middleware.RequestID())
	engine.Use(middleware.Recovery(logger))
	engine.Use(middleware.RequestLogger(logger))
	engine.Use(middleware.CORS(cfg.CORS))
	if cfg.TelemetryEnabled {
		engine.Use(otelgin.Middleware(cfg.ServiceName))
	}

	engine.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	api := engine.Group("/api/v1")
	registerInventoryRoutes(api, handlers.Inventory)
	registerOrderRoutes(api, handlers.Order)
	registerCheckoutRoutes(api, handlers.Checkout)

	return engine, nil
}

func registerInventoryRoutes(api *gin.RouterGroup, h *handler.InventoryHandler) {
	inventory := api.Group("/inventory")
	{
		inventory.POST("", h.CreateInventory)
		inventory.POST("/adjust", h.AdjustStock)
		inventory.POST("/stock-levels", h.BulkStockLevel)
		inventory.POST("/validate", h.ValidateBatch)
		inventory.GET("/alerts", h.GetAlerts)
		inventory.GET("/low-stock", h.GetLowStockItems)
		inventory.GET("/:product_id", h.GetInventory)
		inventory.GET("/:product_id/stock-level", h.GetStockLevel)
		inventory.GET("/:product_id/movements", h.GetMovementHistory)
		inventory.PUT("/:product_id/threshold", h.UpdateLowStockThreshold)
	}
}

func registerOrderRoutes(api *gin.RouterGroup, h *handler.OrderHandler) {
	orders := api.Group("/orders")
	{
		orders.POST("", h.PlaceOrder)
		orders.GET("", h.SearchOrders)
		orders.GET("/summary", h.GetOrderSummary)
		orders.GET("/number/:number", h.GetOrderByNumber)
		orders.GET("/track/:tracking_number", h.TrackByNumber)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id/status", h.UpdateOrderStatus)
		orders.POST("/:id/tracking", h.AddTrackingInfo)
		orders.GET("/:id/tracking", h.GetTrackingHistory)
	}
}

func registerCheckoutRoutes(api *gin.RouterGroup, h *handler.CheckoutHandler) {
	checkout := api.Group("/checkout/sessions")
	{
		checkout.POST("", h.CreateSession)
		checkout.GET("/:id", h.GetSession)
		checkout.PATCH("/:id", h.UpdateSession)
		checkout.POST("/:id/complete", h.CompleteCheckout)
	}
}
