package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/market/backend/internal/domain/order"
	"github.com/market/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormOrderRepository implements order.Repository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Create persists the order with its items and initial history atomically
func (r *GormOrderRepository) Create(ctx context.Context, o *order.Order) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Create(o).Error
	})
	if err != nil && isDuplicateKeyError(err) {
		return shared.ErrAlreadyExists
	}
	return err
}

// FindByID finds an order with its items and history
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByOrderNumber finds an order by its public order number
func (r *GormOrderRepository) FindByOrderNumber(ctx context.Context, orderNumber string) (*order.Order, error) {
	return r.findOne(ctx, "order_number = ?", orderNumber)
}

// FindByTrackingNumber finds the order carrying a tracking number
func (r *GormOrderRepository) FindByTrackingNumber(ctx context.Context, trackingNumber string) (*order.Order, error) {
	return r.findOne(ctx, "tracking_number = ?", trackingNumber)
}

func (r *GormOrderRepository) findOne(ctx context.Context, cond string, arg interface{}) (*order.Order, error) {
	var o order.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("created_at ASC")
		}).
		First(&o, cond, arg).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &o, nil
}

// Save persists order changes and appends any new history rows. Items
// are immutable after creation and are never written here; history rows
// already present are left untouched.
func (r *GormOrderRepository) Save(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(o).Error; err != nil {
			return err
		}
		return r.appendHistory(tx, o)
	})
}

// SaveWithLock saves with optimistic locking (checks version)
func (r *GormOrderRepository) SaveWithLock(ctx context.Context, o *order.Order) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(o).
			Where("id = ? AND version = ?", o.ID, o.Version-1).
			Updates(map[string]interface{}{
				"status":             o.Status,
				"payment_status":     o.PaymentStatus,
				"fulfillment_status": o.FulfillmentStatus,
				"payment_reference":  o.PaymentReference,
				"tracking_number":    o.TrackingNumber,
				"version":            o.Version,
				"updated_at":         o.UpdatedAt,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrConcurrencyConflict
		}
		return r.appendHistory(tx, o)
	})
}

func (r *GormOrderRepository) appendHistory(tx *gorm.DB, o *order.Order) error {
	if len(o.History) == 0 {
		return nil
	}
	history := make([]order.OrderStatusHistory, len(o.History))
	copy(history, o.History)
	return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&history).Error
}

// Delete removes an order with its items and history
func (r *GormOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&order.OrderItem{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		if err := tx.Delete(&order.OrderStatusHistory{}, "order_id = ?", id).Error; err != nil {
			return err
		}
		result := tx.Delete(&order.Order{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.ErrNotFound
		}
		return nil
	})
}

// Search finds orders matching the filter with pagination metadata
func (r *GormOrderRepository) Search(ctx context.Context, filter order.SearchFilter) (shared.Paginated[*order.Order], error) {
	query := r.applySearchFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return shared.Paginated[*order.Order]{}, err
	}

	query = applySort(query, filter.SortBy, filter.SortDir)
	query = applyPagination(query, filter.Page, filter.PageSize)

	var orders []*order.Order
	if err := query.Preload("Items").Find(&orders).Error; err != nil {
		return shared.Paginated[*order.Order]{}, err
	}

	page, pageSize := normalizePage(filter.Page, filter.PageSize)
	return shared.NewPaginated(orders, total, page, pageSize), nil
}

// Summarize returns aggregate figures over orders matching the filter
func (r *GormOrderRepository) Summarize(ctx context.Context, filter order.SearchFilter) (*order.Summary, error) {
	base := r.applySearchFilter(r.db.WithContext(ctx).Model(&order.Order{}), filter)

	summary := &order.Summary{
		TotalRevenue:   decimal.Zero,
		CountsByStatus: make(map[order.Status]int64),
	}

	if err := base.Session(&gorm.Session{}).Count(&summary.TotalOrders).Error; err != nil {
		return nil, err
	}

	var revenue decimal.NullDecimal
	if err := base.Session(&gorm.Session{}).
		Where("payment_status = ?", order.PaymentStatusPaid).
		Select("SUM(total_amount)").
		Scan(&revenue).Error; err != nil {
		return nil, err
	}
	if revenue.Valid {
		summary.TotalRevenue = revenue.Decimal
	}

	var rows []struct {
		Status order.Status
		Count  int64
	}
	if err := base.Session(&gorm.Session{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		summary.CountsByStatus[row.Status] = row.Count
	}

	if err := base.Session(&gorm.Session{}).
		Where("payment_status = ?", order.PaymentStatusPending).
		Count(&summary.PendingPayments).Error; err != nil {
		return nil, err
	}

	return summary, nil
}

func (r *GormOrderRepository) applySearchFilter(query *gorm.DB, filter order.SearchFilter) *gorm.DB {
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}
	if filter.PaymentStatus != nil {
		query = query.Where("payment_status = ?", *filter.PaymentStatus)
	}
	if filter.FulfillmentStatus != nil {
		query = query.Where("fulfillment_status = ?", *filter.FulfillmentStatus)
	}
	if filter.OrderNumber != "" {
		query = query.Where("order_number LIKE ?", "%"+filter.OrderNumber+"%")
	}
	if filter.UserID != nil {
		query = query.Where("user_id = ?", *filter.UserID)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

// NextOrderNumber allocates the next order number in ORD-YYYY-NNNNN form
func (r *GormOrderRepository) NextOrderNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("ORD-%d-", time.Now().Year())

	var last string
	err := r.db.WithContext(ctx).
		Model(&order.Order{}).
		Where("order_number LIKE ?", prefix+"%").
		Order("order_number DESC").
		Limit(1).
		Pluck("order_number", &last).Error
	if err != nil {
		return "", err
	}

	seq := 1
	if last != "" {
		n, err := strconv.Atoi(strings.TrimPrefix(last, prefix))
		if err != nil {
			return "", fmt.Errorf("malformed order number %q: %w", last, err)
		}
		seq = n + 1
	}
	return fmt.Sprintf("%s%05d", prefix, seq), nil
}
