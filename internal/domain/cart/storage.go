package cart

import "context"

// DefaultStorageKey is the key the cart blob is stored under
const DefaultStorageKey = "cart"

// Storage is the string key/value port the cart is persisted through.
// Implementations replace the whole value on Set; there are no partial writes.
type Storage interface {
	// Get returns the stored value and whether the key exists
	Get(ctx context.Context, key string) (string, bool, error)
	// Set overwrites the value stored under key
	Set(ctx context.Context, key, value string) error
	// Remove deletes key. Removing a missing key is not an error.
	Remove(ctx context.Context, key string) error
}
