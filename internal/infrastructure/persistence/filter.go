package persistence

import (
	"github.com/market/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// allowedSortColumns guards ORDER BY input against injection; anything
// not whitelisted falls back to created_at
var allowedSortColumns = map[string]bool{
	"created_at":   true,
	"updated_at":   true,
	"quantity":     true,
	"order_number": true,
	"total_amount": true,
	"status":       true,
	"expires_at":   true,
}

// applySort applies a validated ORDER BY clause
func applySort(query *gorm.DB, orderBy, orderDir string) *gorm.DB {
	if !allowedSortColumns[orderBy] {
		orderBy = "created_at"
	}
	dir := "DESC"
	if orderDir == "asc" || orderDir == "ASC" {
		dir = "ASC"
	}
	return query.Order(orderBy + " " + dir)
}

// applyPagination applies LIMIT/OFFSET from a filter
func applyPagination(query *gorm.DB, page, pageSize int) *gorm.DB {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return query.Offset((page - 1) * pageSize).Limit(pageSize)
}

// applyFilter applies sorting and pagination from a shared filter
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	query = applySort(query, filter.OrderBy, filter.OrderDir)
	return applyPagination(query, filter.Page, filter.PageSize)
}

// normalizePage returns sanitized page values matching applyPagination
func normalizePage(page, pageSize int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return page, pageSize
}
