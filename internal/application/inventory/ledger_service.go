package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/catalog"
	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// LedgerService manages inventory records and their movement log.
// Every mutation and its movement append run in one transaction scope.
type LedgerService struct {
	records   inventory.Repository
	movements inventory.MovementRepository
	catalog   catalog.Repository
	txScope   TransactionScope
	events    shared.EventPublisher
	logger    *zap.Logger
}

// NewLedgerService creates a new ledger service
func NewLedgerService(
	records inventory.Repository,
	movements inventory.MovementRepository,
	catalogRepo catalog.Repository,
	txScope TransactionScope,
	events shared.EventPublisher,
	logger *zap.Logger,
) *LedgerService {
	return &LedgerService{
		records:   records,
		movements: movements,
		catalog:   catalogRepo,
		txScope:   txScope,
		events:    events,
		logger:    logger,
	}
}

// CreateInventory creates the inventory record for a target. Exactly one
// record may exist per target; a duplicate create fails with a conflict.
func (s *LedgerService) CreateInventory(ctx context.Context, req CreateInventoryRequest) (*InventoryRecordDTO, error) {
	record, err := inventory.NewInventoryRecord(req.Target(), req.InitialQuantity, req.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	record.Location = req.Location
	record.Notes = req.Notes

	err = s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		if err := repos.Inventory.Create(ctx, record); err != nil {
			return err
		}
		if req.InitialQuantity > 0 {
			movement, err := inventory.NewStockMovement(
				record.Target(), inventory.MovementTypeIn,
				req.InitialQuantity, 0, req.InitialQuantity, "Initial stock")
			if err != nil {
				return err
			}
			return repos.Movements.Append(ctx, movement)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return ToInventoryRecordDTO(record), nil
}

// GetInventory returns the inventory record for a target
func (s *LedgerService) GetInventory(ctx context.Context, target inventory.Target) (*InventoryRecordDTO, error) {
	record, err := s.records.FindByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	return ToInventoryRecordDTO(record), nil
}

// StockLevel returns the availability view for a target. An absent record
// reports as out of stock rather than erroring; callers cannot
// distinguish never-stocked from exhausted here.
func (s *LedgerService) StockLevel(ctx context.Context, target inventory.Target) (StockLevelDTO, error) {
	record, err := s.records.FindByTarget(ctx, target)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return ToStockLevelDTO(inventory.StockLevelOf(target, nil)), nil
		}
		return StockLevelDTO{}, err
	}
	return ToStockLevelDTO(inventory.StockLevelOf(target, record)), nil
}

// BulkStockLevel returns availability for many targets in one query,
// preserving the input order
func (s *LedgerService) BulkStockLevel(ctx context.Context, targets []inventory.Target) ([]StockLevelDTO, error) {
	records, err := s.records.FindByTargets(ctx, targets)
	if err != nil {
		return nil, err
	}

	byKey := make(map[string]*inventory.InventoryRecord, len(records))
	for _, record := range records {
		byKey[record.Target().Key()] = record
	}

	levels := make([]StockLevelDTO, 0, len(targets))
	for _, target := range targets {
		levels = append(levels, ToStockLevelDTO(inventory.StockLevelOf(target, byKey[target.Key()])))
	}
	return levels, nil
}

// Adjust changes the physical quantity of a target and appends a movement
// recording the quantities actually applied after clamping
func (s *LedgerService) Adjust(ctx context.Context, req AdjustStockRequest) (*InventoryRecordDTO, error) {
	if !req.Kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_ADJUST_KIND", "Adjustment kind must be increase, decrease or set")
	}
	if req.Reason == "" {
		return nil, shared.NewDomainError("INVALID_REASON", "Adjustment reason is required")
	}

	var record *inventory.InventoryRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.Inventory.FindByTarget(ctx, req.Target())
		if err != nil {
			return err
		}

		previous := record.Quantity
		switch req.Kind {
		case AdjustKindIncrease:
			err = record.Increase(req.Quantity, req.Reason)
		case AdjustKindDecrease:
			err = record.Decrease(req.Quantity, req.Reason)
		case AdjustKindSet:
			err = record.SetQuantity(req.Quantity, req.Reason)
		}
		if err != nil {
			return err
		}

		if err := repos.Inventory.SaveWithLock(ctx, record); err != nil {
			return err
		}

		// Every adjustment is audited, including one that applied
		// nothing: a fully clamped decrease appends a zero-quantity
		// adjustment movement with previous == new.
		delta := record.Quantity - previous
		movementType := inventory.MovementTypeAdjustment
		quantity := delta
		switch {
		case delta > 0:
			movementType = inventory.MovementTypeIn
		case delta < 0:
			movementType = inventory.MovementTypeOut
			quantity = -delta
		}
		movement, err := inventory.NewStockMovement(
			record.Target(), movementType, quantity, previous, record.Quantity, req.Reason)
		if err != nil {
			return err
		}
		return repos.Movements.Append(ctx, movement)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, record)
	return ToInventoryRecordDTO(record), nil
}

// UpdateLowStockThreshold changes the alert threshold for a target
func (s *LedgerService) UpdateLowStockThreshold(ctx context.Context, target inventory.Target, threshold int64) (*InventoryRecordDTO, error) {
	record, err := s.records.FindByTarget(ctx, target)
	if err != nil {
		return nil, err
	}
	if err := record.UpdateLowStockThreshold(threshold); err != nil {
		return nil, err
	}
	if err := s.records.SaveWithLock(ctx, record); err != nil {
		return nil, err
	}
	return ToInventoryRecordDTO(record), nil
}

// LowStockItems returns records at or below their low stock threshold,
// annotated with catalog display names
func (s *LedgerService) LowStockItems(ctx context.Context) ([]StockAlertDTO, error) {
	records, err := s.records.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return s.annotate(ctx, records, AlertTypeLowStock)
}

// Alerts returns out-of-stock records followed by low-stock records,
// each annotated with catalog display names
func (s *LedgerService) Alerts(ctx context.Context) ([]StockAlertDTO, error) {
	outOfStock, err := s.records.FindOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.annotate(ctx, outOfStock, AlertTypeOutOfStock)
	if err != nil {
		return nil, err
	}

	lowStock, err := s.records.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[uuid.UUID]struct{}, len(outOfStock))
	for _, record := range outOfStock {
		seen[record.ID] = struct{}{}
	}
	remaining := make([]*inventory.InventoryRecord, 0, len(lowStock))
	for _, record := range lowStock {
		if _, ok := seen[record.ID]; !ok {
			remaining = append(remaining, record)
		}
	}
	lowAlerts, err := s.annotate(ctx, remaining, AlertTypeLowStock)
	if err != nil {
		return nil, err
	}
	return append(alerts, lowAlerts...), nil
}

// MovementHistory returns the movement log for a target, newest first
func (s *LedgerService) MovementHistory(ctx context.Context, target inventory.Target, filter shared.Filter) (shared.Paginated[MovementDTO], error) {
	page, err := s.movements.FindByTarget(ctx, target, filter)
	if err != nil {
		return shared.Paginated[MovementDTO]{}, err
	}

	items := make([]MovementDTO, 0, len(page.Items))
	for _, movement := range page.Items {
		items = append(items, ToMovementDTO(movement))
	}
	return shared.Paginated[MovementDTO]{
		Items:      items,
		Total:      page.Total,
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalPages: page.TotalPages,
	}, nil
}

func (s *LedgerService) annotate(ctx context.Context, records []*inventory.InventoryRecord, alertType AlertType) ([]StockAlertDTO, error) {
	productIDs := make([]uuid.UUID, 0, len(records))
	for _, record := range records {
		productIDs = append(productIDs, record.ProductID)
	}

	products := make(map[uuid.UUID]*catalog.Product)
	if len(productIDs) > 0 {
		found, err := s.catalog.FindProducts(ctx, productIDs)
		if err != nil {
			return nil, err
		}
		for _, product := range found {
			products[product.ID] = product
		}
	}

	alerts := make([]StockAlertDTO, 0, len(records))
	for _, record := range records {
		alert := StockAlertDTO{
			Type:      alertType,
			ProductID: record.ProductID,
			VariantID: record.VariantID,
			Quantity:  record.Quantity,
			Available: record.Available(),
			Threshold: record.LowStockThreshold,
		}
		if product, ok := products[record.ProductID]; ok {
			alert.ProductName = product.Name
			alert.SKU = product.SKU
			if record.VariantID != nil {
				if variant := product.Variant(*record.VariantID); variant != nil {
					alert.VariantName = variant.Name
					alert.SKU = variant.SKU
				}
			}
		}
		alerts = append(alerts, alert)
	}
	return alerts, nil
}

func (s *LedgerService) publishEvents(ctx context.Context, record *inventory.InventoryRecord) {
	if s.events == nil || record == nil {
		return
	}
	events := record.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	if err := s.events.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish inventory events",
			zap.String("target", record.Target().String()),
			zap.Error(err))
	}
	record.ClearDomainEvents()
}
