package inventory

import "fmt"

// InsufficientStockError reports a reservation or validation failure
// with enough detail to identify the offending target.
type InsufficientStockError struct {
	Target    Target
	Requested int64
	Available int64
}

// Error implements the error interface
func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d",
		e.Target, e.Requested, e.Available)
}
