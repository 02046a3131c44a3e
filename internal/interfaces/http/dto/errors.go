package dto

import "net/http"

// Error code constants organized by category
// Format: ERR_<CATEGORY>_<DESCRIPTION>

// General error codes
const (
	// ErrCodeUnknown is used when the error type is unknown
	ErrCodeUnknown = "ERR_UNKNOWN"
	// ErrCodeInternal is used for internal server errors
	ErrCodeInternal = "ERR_INTERNAL"
)

// Input error codes
const (
	// ErrCodeBadRequest is used for malformed requests
	ErrCodeBadRequest = "ERR_BAD_REQUEST"
	// ErrCodeInvalidInput is used for invalid input data
	ErrCodeInvalidInput = "ERR_INVALID_INPUT"
	// ErrCodeValidation is the base code for validation errors
	ErrCodeValidation = "ERR_VALIDATION"
)

// Resource error codes
const (
	// ErrCodeNotFound is used when a resource is not found
	ErrCodeNotFound = "ERR_NOT_FOUND"
	// ErrCodeAlreadyExists is used when trying to create a duplicate resource
	ErrCodeAlreadyExists = "ERR_ALREADY_EXISTS"
	// ErrCodeConflict is used for general resource conflicts
	ErrCodeConflict = "ERR_CONFLICT"
	// ErrCodeConcurrencyConflict is used when optimistic locking fails
	ErrCodeConcurrencyConflict = "ERR_CONCURRENCY_CONFLICT"
	// ErrCodeDuplicateRequest is used when an idempotency key is replayed
	ErrCodeDuplicateRequest = "ERR_DUPLICATE_REQUEST"
)

// Business rule error codes
const (
	// ErrCodeInvalidState is used when an operation is invalid for current state
	ErrCodeInvalidState = "ERR_INVALID_STATE"
	// ErrCodeInsufficientStock is used when stock cannot cover a request
	ErrCodeInsufficientStock = "ERR_INSUFFICIENT_STOCK"
	// ErrCodeSessionExpired is used when a checkout session has expired
	ErrCodeSessionExpired = "ERR_SESSION_EXPIRED"
	// ErrCodePaymentFailed is used when the payment provider rejects a charge
	ErrCodePaymentFailed = "ERR_PAYMENT_FAILED"
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeUnknown:  http.StatusInternalServerError,
	ErrCodeInternal: http.StatusInternalServerError,

	ErrCodeBadRequest:   http.StatusBadRequest,
	ErrCodeInvalidInput: http.StatusBadRequest,
	ErrCodeValidation:   http.StatusBadRequest,

	ErrCodeNotFound:            http.StatusNotFound,
	ErrCodeAlreadyExists:       http.StatusConflict,
	ErrCodeConflict:            http.StatusConflict,
	ErrCodeConcurrencyConflict: http.StatusConflict,
	ErrCodeDuplicateRequest:    http.StatusConflict,

	ErrCodeInvalidState:      http.StatusUnprocessableEntity,
	ErrCodeInsufficientStock: http.StatusConflict,
	ErrCodeSessionExpired:    http.StatusGone,
	ErrCodePaymentFailed:     http.StatusPaymentRequired,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Returns 500 Internal Server Error if the error code is not found.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// domainErrorCodeMapping maps domain error codes to wire error codes
var domainErrorCodeMapping = map[string]string{
	"NOT_FOUND":            ErrCodeNotFound,
	"ALREADY_EXISTS":       ErrCodeAlreadyExists,
	"INVALID_INPUT":        ErrCodeInvalidInput,
	"INVALID_STATE":        ErrCodeInvalidState,
	"CONCURRENCY_CONFLICT": ErrCodeConcurrencyConflict,
	"INSUFFICIENT_STOCK":   ErrCodeInsufficientStock,
	"SESSION_EXPIRED":      ErrCodeSessionExpired,
	"PAYMENT_FAILED":       ErrCodePaymentFailed,
	"DUPLICATE_REQUEST":    ErrCodeDuplicateRequest,
	"BAD_REQUEST":          ErrCodeBadRequest,
	"VALIDATION_ERROR":     ErrCodeValidation,
	"INTERNAL_ERROR":       ErrCodeInternal,

	// Validation-class codes emitted by the domain and services
	"EMPTY_ORDER":             ErrCodeValidation,
	"EMPTY_SESSION":           ErrCodeValidation,
	"INVALID_ADDRESS":         ErrCodeValidation,
	"INVALID_ADJUST_KIND":     ErrCodeValidation,
	"INVALID_CART":            ErrCodeValidation,
	"INVALID_MOVEMENT_TYPE":   ErrCodeValidation,
	"INVALID_ORDER_NUMBER":    ErrCodeValidation,
	"INVALID_PAYMENT_METHOD":  ErrCodeValidation,
	"INVALID_PRICE":           ErrCodeValidation,
	"INVALID_PRODUCT":         ErrCodeValidation,
	"INVALID_QUANTITY":        ErrCodeValidation,
	"INVALID_REASON":          ErrCodeValidation,
	"INVALID_SHIPPING_METHOD": ErrCodeValidation,
	"INVALID_STATUS":          ErrCodeValidation,
	"INVALID_THRESHOLD":       ErrCodeValidation,
	"INVALID_TRACKING":        ErrCodeValidation,
	"INVALID_TTL":             ErrCodeValidation,
	"INVALID_USER":            ErrCodeValidation,
	"ITEM_UNAVAILABLE":        ErrCodeValidation,
	"MISSING_ADDRESS":         ErrCodeValidation,
	"MISSING_PAYMENT_METHOD":  ErrCodeValidation,

	// State-machine violations
	"INSUFFICIENT_RESERVATION": ErrCodeInvalidState,
}

// DomainErrorHTTPStatus returns the HTTP status for a normalized domain
// error code. A DomainError is a business-rule rejection of the request,
// so an unmapped code defaults to 400 rather than 500.
func DomainErrorHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusBadRequest
}

// NormalizeErrorCode converts a domain error code to the wire format.
// If the code is already in the wire format or unknown, returns it as-is.
func NormalizeErrorCode(code string) string {
	if wireCode, ok := domainErrorCodeMapping[code]; ok {
		return wireCode
	}
	return code
}
