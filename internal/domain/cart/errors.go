package cart

import "github.com/storefront/cart/internal/domain/shared"

// Error codes surfaced to callers. Malformed storage, bad quantities and
// unknown item references are recovered locally and have no code.
const (
	CodeInvalidProduct     = "INVALID_PRODUCT"
	CodeStorageWriteFailed = "STORAGE_WRITE_FAILED"
)

var (
	// ErrInvalidProduct matches any add-to-cart rejection (errors.Is)
	ErrInvalidProduct = shared.NewDomainError(CodeInvalidProduct, "Invalid product data")
	// ErrStorageWrite matches any failed write or delete of the storage blob
	ErrStorageWrite = shared.NewDomainError(CodeStorageWriteFailed, "Failed to persist cart")
)

// NewStorageWriteError wraps a backend failure as a StorageWriteFailure
func NewStorageWriteError(cause error) error {
	return shared.WrapDomainError(CodeStorageWriteFailed, "Failed to persist cart", cause)
}

// NewInvalidProductError reports a rejected add-to-cart with a specific reason
func NewInvalidProductError(message string) *shared.DomainError {
	return shared.NewDomainError(CodeInvalidProduct, message)
}
