package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormInventoryRepository implements inventory.Repository using GORM
type GormInventoryRepository struct {
	db *gorm.DB
}

// NewGormInventoryRepository creates a new GormInventoryRepository
func NewGormInventoryRepository(db *gorm.DB) *GormInventoryRepository {
	return &GormInventoryRepository{db: db}
}

// targetScope narrows a query to one inventory target. A nil variant
// must match only the product-level row, hence IS NULL rather than =.
func targetScope(query *gorm.DB, target inventory.Target) *gorm.DB {
	if target.VariantID == nil {
		return query.Where("product_id = ? AND variant_id IS NULL", target.ProductID)
	}
	return query.Where("product_id = ? AND variant_id = ?", target.ProductID, target.VariantID)
}

// Create persists a new record; a duplicate target fails with ErrAlreadyExists
func (r *GormInventoryRepository) Create(ctx context.Context, record *inventory.InventoryRecord) error {
	err := r.db.WithContext(ctx).Create(record).Error
	if err != nil && isDuplicateKeyError(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// FindByTarget finds the record for a target
func (r *GormInventoryRepository) FindByTarget(ctx context.Context, target inventory.Target) (*inventory.InventoryRecord, error) {
	var record inventory.InventoryRecord
	if err := targetScope(r.db.WithContext(ctx), target).First(&record).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &record, nil
}

// FindByTargets finds records for the given targets in one query
func (r *GormInventoryRepository) FindByTargets(ctx context.Context, targets []inventory.Target) ([]*inventory.InventoryRecord, error) {
	if len(targets) == 0 {
		return []*inventory.InventoryRecord{}, nil
	}

	cond := targetScope(r.db, targets[0])
	for _, target := range targets[1:] {
		cond = cond.Or(targetScope(r.db, target))
	}

	var records []*inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Model(&inventory.InventoryRecord{}).
		Where(cond).
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// Save creates or updates a record without concurrency control
func (r *GormInventoryRepository) Save(ctx context.Context, record *inventory.InventoryRecord) error {
	return r.db.WithContext(ctx).Save(record).Error
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormInventoryRepository) SaveWithLock(ctx context.Context, record *inventory.InventoryRecord) error {
	result := r.db.WithContext(ctx).
		Model(record).
		Where("id = ? AND version = ?", record.ID, record.Version-1).
		Updates(map[string]interface{}{
			"quantity":            record.Quantity,
			"reserved_quantity":   record.ReservedQuantity,
			"low_stock_threshold": record.LowStockThreshold,
			"location":            record.Location,
			"notes":               record.Notes,
			"version":             record.Version,
			"updated_at":          record.UpdatedAt,
		})

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrConcurrencyConflict
	}
	return nil
}

// ReserveQuantity increments the reserved counter in a single conditional
// update. The availability check and the increment cannot be separated:
// two concurrent read-then-write reservations could both pass the check
// and jointly oversell. Zero rows affected means the guard failed.
func (r *GormInventoryRepository) ReserveQuantity(ctx context.Context, target inventory.Target, quantity int64) (*inventory.InventoryRecord, error) {
	result := targetScope(r.db.WithContext(ctx).Model(&inventory.InventoryRecord{}), target).
		Where("reserved_quantity + ? <= quantity", quantity).
		Updates(map[string]interface{}{
			"reserved_quantity": gorm.Expr("reserved_quantity + ?", quantity),
			"version":           gorm.Expr("version + 1"),
			"updated_at":        time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}

	if result.RowsAffected == 0 {
		record, err := r.FindByTarget(ctx, target)
		if err != nil {
			// A never-stocked target reads the same as an exhausted
			// one: available zero, not absent.
			if errors.Is(err, shared.ErrNotFound) {
				return nil, &inventory.InsufficientStockError{
					Target:    target,
					Requested: quantity,
					Available: 0,
				}
			}
			return nil, err
		}
		return nil, &inventory.InsufficientStockError{
			Target:    target,
			Requested: quantity,
			Available: record.Available(),
		}
	}

	return r.FindByTarget(ctx, target)
}

// FindLowStock finds records at or below their low stock threshold
func (r *GormInventoryRepository) FindLowStock(ctx context.Context) ([]*inventory.InventoryRecord, error) {
	var records []*inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("low_stock_threshold > 0 AND quantity <= low_stock_threshold").
		Order("quantity ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindOutOfStock finds records with no available quantity
func (r *GormInventoryRepository) FindOutOfStock(ctx context.Context) ([]*inventory.InventoryRecord, error) {
	var records []*inventory.InventoryRecord
	if err := r.db.WithContext(ctx).
		Where("quantity - reserved_quantity <= 0").
		Order("updated_at DESC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindAll finds records matching the filter with pagination
func (r *GormInventoryRepository) FindAll(ctx context.Context, filter shared.Filter) (shared.Paginated[*inventory.InventoryRecord], error) {
	query := r.db.WithContext(ctx).Model(&inventory.InventoryRecord{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*inventory.InventoryRecord]{}, err
	}

	var records []*inventory.InventoryRecord
	if err := applyFilter(query, filter).Find(&records).Error; err != nil {
		return shared.Paginated[*inventory.InventoryRecord]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	return shared.NewPaginated(records, total, page, pageSize), nil
}

// isDuplicateKeyError reports whether an error is a unique constraint
// violation, across the postgres and sqlite drivers
func isDuplicateKeyError(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
