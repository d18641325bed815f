package dto

import (
	"net/http"

	"github.com/storefront/cart/internal/domain/cart"
)

// Error codes returned by the cart API. Domain codes are passed through
// unchanged so clients see the same code the store raised.
const (
	ErrCodeInternal           = "INTERNAL_ERROR"
	ErrCodeBadRequest         = "BAD_REQUEST"
	ErrCodeInvalidJSON        = "INVALID_JSON"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeRequestTooLarge    = "REQUEST_TOO_LARGE"
	ErrCodeInvalidProduct     = cart.CodeInvalidProduct
	ErrCodeStorageWriteFailed = cart.CodeStorageWriteFailed
)

// ErrorCodeHTTPStatus maps error codes to HTTP status codes
var ErrorCodeHTTPStatus = map[string]int{
	ErrCodeInternal:        http.StatusInternalServerError,
	ErrCodeBadRequest:      http.StatusBadRequest,
	ErrCodeInvalidJSON:     http.StatusBadRequest,
	ErrCodeValidation:      http.StatusBadRequest,
	ErrCodeNotFound:        http.StatusNotFound,
	ErrCodeRequestTooLarge: http.StatusRequestEntityTooLarge,

	// Rejected before any mutation
	ErrCodeInvalidProduct: http.StatusBadRequest,
	// The cart could not be persisted; the rendered page is still returned
	ErrCodeStorageWriteFailed: http.StatusInsufficientStorage,
}

// GetHTTPStatus returns the HTTP status code for an error code.
// Unknown codes are 500 Internal Server Error.
func GetHTTPStatus(code string) int {
	if status, ok := ErrorCodeHTTPStatus[code]; ok {
		return status
	}
	return http.StatusInternalServerError
}
