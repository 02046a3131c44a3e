package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	checkoutapp "github.com/market/backend/internal/application/checkout"
	inventoryapp "github.com/market/backend/internal/application/inventory"
	orderapp "github.com/market/backend/internal/application/order"
	"github.com/market/backend/internal/infrastructure/cache"
	"github.com/market/backend/internal/infrastructure/config"
	"github.com/market/backend/internal/infrastructure/event"
	"github.com/market/backend/internal/infrastructure/logger"
	"github.com/market/backend/internal/infrastructure/payment"
	"github.com/market/backend/internal/infrastructure/persistence"
	"github.com/market/backend/internal/infrastructure/scheduler"
	"github.com/market/backend/internal/infrastructure/telemetry"
	"github.com/market/backend/internal/interfaces/http/handler"
	"github.com/market/backend/internal/interfaces/http/middleware"
	"github.com/market/backend/internal/interfaces/http/router"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	log, err := logger.New(&logger.Config{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cfg.Log.Output,
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() { _ = log.Sync() }()

	log.Info("Starting marketplace backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	ctx := context.Background()

	tracerProvider, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           cfg.Telemetry.Enabled,
		CollectorEndpoint: cfg.Telemetry.CollectorEndpoint,
		SamplingRatio:     cfg.Telemetry.SamplingRatio,
		ServiceName:       cfg.Telemetry.ServiceName,
		Insecure:          cfg.Telemetry.Insecure,
	}, log)
	if err != nil {
		log.Fatal("Failed to initialize telemetry", zap.Error(err))
	}

	db, err := persistence.NewDatabase(&cfg.Database)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	if cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled {
		if err := db.EnableTracing(); err != nil {
			log.Warn("Failed to enable database tracing", zap.Error(err))
		}
	}
	log.Info("Database connected")

	// Repositories
	inventoryRepo := persistence.NewGormInventoryRepository(db.DB)
	movementRepo := persistence.NewGormMovementRepository(db.DB)
	orderRepo := persistence.NewGormOrderRepository(db.DB)
	sessionRepo := persistence.NewGormCheckoutSessionRepository(db.DB)
	catalogRepo := persistence.NewGormCatalogRepository(db.DB)
	cartRepo := persistence.NewGormCartRepository(db.DB)
	txScope := persistence.NewGormTransactionScope(db.DB)

	// Event bus
	eventBus := event.NewInMemoryEventBus(log)

	// Idempotency store: Redis when configured, in-memory otherwise
	var idempotencyStore orderapp.IdempotencyStore
	if cfg.Redis.Enabled {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		if err := redisClient.Ping(pingCtx).Err(); err != nil {
			cancel()
			log.Fatal("Failed to connect to Redis", zap.Error(err))
		}
		cancel()
		store := cache.NewRedisIdempotencyStore(redisClient, "order:idempotency:")
		defer func() { _ = store.Close() }()
		idempotencyStore = store
		log.Info("Redis idempotency store enabled", zap.String("addr", cfg.Redis.Addr()))
	} else {
		store := cache.NewInMemoryIdempotencyStore()
		defer func() { _ = store.Close() }()
		idempotencyStore = store
	}

	// Payment gateway
	var gateway orderapp.PaymentGateway
	switch cfg.Payment.Provider {
	case "fake":
		gateway = payment.NewFakeGateway(log)
		log.Warn("Using fake payment gateway; all charges are approved")
	default:
		gateway, err = payment.NewStripeGateway(cfg.Payment.StripeKey, cfg.Payment.Currency, log)
		if err != nil {
			log.Fatal("Failed to initialize payment gateway", zap.Error(err))
		}
	}

	// Pricing
	shippingOptions := make([]orderapp.ShippingOption, 0, len(cfg.Checkout.ShippingMethods))
	for _, m := range cfg.Checkout.ShippingMethods {
		shippingOptions = append(shippingOptions, orderapp.ShippingOption{
			Code: m.Code,
			Name: m.Name,
			Fee:  decimal.NewFromFloat(m.Fee),
		})
	}
	pricing := orderapp.NewPricingCalculator(
		decimal.NewFromFloat(cfg.Checkout.TaxRate),
		decimal.NewFromFloat(cfg.Checkout.FreeShippingThreshold),
		shippingOptions,
		cfg.Checkout.PaymentMethods,
	)

	// Application services
	ledgerService := inventoryapp.NewLedgerService(inventoryRepo, movementRepo, catalogRepo, txScope, eventBus, log)
	reservationService := inventoryapp.NewReservationService(inventoryRepo, txScope, eventBus, log)
	placementService := orderapp.NewPlacementService(
		orderRepo, cartRepo, catalogRepo, reservationService,
		gateway, pricing, idempotencyStore, eventBus, log,
	)
	orderService := orderapp.NewOrderService(orderRepo, reservationService, eventBus, log)
	sessionService := checkoutapp.NewSessionService(
		sessionRepo, cartRepo, catalogRepo, ledgerService,
		placementService, pricing, cfg.Checkout.SessionTTL, log,
	)

	// Background sweep of expired checkout sessions
	var cleanup *scheduler.SessionCleanupScheduler
	if cfg.Cleanup.Enabled {
		cleanup = scheduler.NewSessionCleanupScheduler(sessionService, cfg.Cleanup.Interval, log)
		if err := cleanup.Start(ctx); err != nil {
			log.Fatal("Failed to start session cleanup scheduler", zap.Error(err))
		}
	}

	// HTTP
	engine, err := router.New(router.Config{
		Env:              cfg.App.Env,
		ServiceName:      cfg.Telemetry.ServiceName,
		TelemetryEnabled: cfg.Telemetry.Enabled,
		TrustedProxies:   cfg.HTTP.TrustedProxies,
		CORS:             middleware.DefaultCORSConfig(),
	}, router.Handlers{
		Inventory: handler.NewInventoryHandler(ledgerService, reservationService),
		Order:     handler.NewOrderHandler(placementService, orderService),
		Checkout:  handler.NewCheckoutHandler(sessionService),
	}, log)
	if err != nil {
		log.Fatal("Failed to build router", zap.Error(err))
	}

	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	if cleanup != nil {
		if err := cleanup.Stop(shutdownCtx); err != nil {
			log.Error("Session cleanup scheduler shutdown failed", zap.Error(err))
		}
	}
	if err := tracerProvider.Shutdown(shutdownCtx); err != nil {
		log.Error("Telemetry shutdown failed", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}
