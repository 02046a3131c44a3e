package persistence

import (
	"context"

	"github.com/market/backend/internal/domain/inventory"
	"github.com/market/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// GormMovementRepository implements inventory.MovementRepository using
// GORM. The movement table is append-only: no update or delete paths.
type GormMovementRepository struct {
	db *gorm.DB
}

// NewGormMovementRepository creates a new GormMovementRepository
func NewGormMovementRepository(db *gorm.DB) *GormMovementRepository {
	return &GormMovementRepository{db: db}
}

// Append persists a new movement
func (r *GormMovementRepository) Append(ctx context.Context, movement *inventory.StockMovement) error {
	return r.db.WithContext(ctx).Create(movement).Error
}

// FindByTarget finds movements for a target with pagination, newest
// first by default
func (r *GormMovementRepository) FindByTarget(ctx context.Context, target inventory.Target, filter shared.Filter) (shared.Paginated[*inventory.StockMovement], error) {
	query := targetScope(r.db.WithContext(ctx).Model(&inventory.StockMovement{}), target)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*inventory.StockMovement]{}, err
	}

	var movements []*inventory.StockMovement
	if err := applyFilter(query, filter).Find(&movements).Error; err != nil {
		return shared.Paginated[*inventory.StockMovement]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	return shared.NewPaginated(movements, total, page, pageSize), nil
}

// FindByReference finds movements carrying a source document reference
func (r *GormMovementRepository) FindByReference(ctx context.Context, reference string) ([]*inventory.StockMovement, error) {
	var movements []*inventory.StockMovement
	if err := r.db.WithContext(ctx).
		Where("reference = ?", reference).
		Order("created_at ASC").
		Find(&movements).Error; err != nil {
		return nil, err
	}
	return movements, nil
}
