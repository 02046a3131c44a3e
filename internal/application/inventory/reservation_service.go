package inventory

import (
	"context"
	"errors"

	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// ReservationService layers reserve, release and fulfill on the ledger.
// Reserve is the safety-critical path: two concurrent reservations must
// never jointly exceed the physical quantity, so the availability check
// and the reserved increment happen in a single conditional update
// inside the repository rather than a read-then-write pair.
type ReservationService struct {
	records inventory.Repository
	txScope TransactionScope
	events  shared.EventPublisher
	logger  *zap.Logger
}

// NewReservationService creates a new reservation service
func NewReservationService(
	records inventory.Repository,
	txScope TransactionScope,
	events shared.EventPublisher,
	logger *zap.Logger,
) *ReservationService {
	return &ReservationService{
		records: records,
		txScope: txScope,
		events:  events,
		logger:  logger,
	}
}

// Reserve places a hold on stock. It returns true when the hold was
// placed and false when availability was insufficient; in the false case
// nothing was mutated. The reserved increment and the reservation
// movement commit together.
func (s *ReservationService) Reserve(ctx context.Context, target inventory.Target, quantity int64, reference string) (bool, error) {
	if quantity <= 0 {
		return false, shared.NewDomainError("INVALID_QUANTITY", "Reserve quantity must be positive")
	}

	var record *inventory.InventoryRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.Inventory.ReserveQuantity(ctx, target, quantity)
		if err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(
			target, inventory.MovementTypeReservation,
			quantity, record.ReservedQuantity-quantity, record.ReservedQuantity,
			"Stock reserved")
		if err != nil {
			return err
		}
		return repos.Movements.Append(ctx, movement.WithReference(reference))
	})
	if err != nil {
		var insufficient *inventory.InsufficientStockError
		if errors.As(err, &insufficient) {
			return false, nil
		}
		return false, err
	}

	s.publishReserved(ctx, record, quantity, reference)
	return true, nil
}

// Release returns held stock to availability, clamping the reserved
// counter at zero. Releasing an already-released hold is tolerated so
// that compensation never fails; the movement records the quantities
// actually applied.
func (s *ReservationService) Release(ctx context.Context, target inventory.Target, quantity int64, reference string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Release quantity must be positive")
	}

	var record *inventory.InventoryRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.Inventory.FindByTarget(ctx, target)
		if err != nil {
			return err
		}

		previous := record.ReservedQuantity
		if err := record.Release(quantity, reference); err != nil {
			return err
		}
		if err := repos.Inventory.SaveWithLock(ctx, record); err != nil {
			return err
		}

		released := previous - record.ReservedQuantity
		if released == 0 {
			return nil
		}
		movement, err := inventory.NewStockMovement(
			target, inventory.MovementTypeRelease,
			released, previous, record.ReservedQuantity, "Reservation released")
		if err != nil {
			return err
		}
		return repos.Movements.Append(ctx, movement.WithReference(reference))
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, record)
	return nil
}

// Fulfill permanently consumes held stock at shipment. Both the physical
// and reserved counters drop by the quantity, so availability is
// unchanged; the movement records the physical counter change.
func (s *ReservationService) Fulfill(ctx context.Context, target inventory.Target, quantity int64, reference string) error {
	if quantity <= 0 {
		return shared.NewDomainError("INVALID_QUANTITY", "Fulfill quantity must be positive")
	}

	var record *inventory.InventoryRecord
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		var err error
		record, err = repos.Inventory.FindByTarget(ctx, target)
		if err != nil {
			return err
		}

		previous := record.Quantity
		if err := record.Fulfill(quantity, reference); err != nil {
			return err
		}
		if err := repos.Inventory.SaveWithLock(ctx, record); err != nil {
			return err
		}

		movement, err := inventory.NewStockMovement(
			target, inventory.MovementTypeOut,
			quantity, previous, record.Quantity, "Stock fulfilled")
		if err != nil {
			return err
		}
		return repos.Movements.Append(ctx, movement.WithReference(reference))
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, record)
	return nil
}

// ValidateBatch checks availability for a list of items without mutating
// anything. Used by cart validation and checkout staging.
func (s *ReservationService) ValidateBatch(ctx context.Context, items []BatchValidationItem) (*BatchValidationResult, error) {
	targets := make([]inventory.Target, 0, len(items))
	for _, item := range items {
		targets = append(targets, item.Target())
	}

	records, err := s.records.FindByTargets(ctx, targets)
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]*inventory.InventoryRecord, len(records))
	for _, record := range records {
		byKey[record.Target().Key()] = record
	}

	result := &BatchValidationResult{IsValid: true, Errors: make([]BatchValidationError, 0)}
	for _, item := range items {
		var available int64
		if record := byKey[item.Target().Key()]; record != nil {
			available = record.Available()
		}
		if available < item.Quantity {
			result.IsValid = false
			result.Errors = append(result.Errors, BatchValidationError{
				ProductID: item.ProductID,
				VariantID: item.VariantID,
				Requested: item.Quantity,
				Available: available,
				Message:   (&inventory.InsufficientStockError{Target: item.Target(), Requested: item.Quantity, Available: available}).Error(),
			})
		}
	}
	return result, nil
}

func (s *ReservationService) publishReserved(ctx context.Context, record *inventory.InventoryRecord, quantity int64, reference string) {
	if s.events == nil || record == nil {
		return
	}
	event := inventory.NewStockReservedEvent(record, quantity, record.ReservedQuantity-quantity, record.ReservedQuantity, reference)
	if err := s.events.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish reservation event",
			zap.String("target", record.Target().String()),
			zap.Error(err))
	}
}

func (s *ReservationService) publishEvents(ctx context.Context, record *inventory.InventoryRecord) {
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
