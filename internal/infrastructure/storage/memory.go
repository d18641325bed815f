// Package storage provides the backends behind the cart storage port.
package storage

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/storefront/cart/internal/domain/cart"
)

// ErrQuotaExceeded is returned by MemoryStorage.Set when the write would
// take the stored bytes over the configured quota
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// MemoryStorage is a process-local key/value store that behaves like the
// browser's persistent storage: string values and a byte quota shared by
// all keys. A quota of 0 means unlimited.
type MemoryStorage struct {
	mu     sync.RWMutex
	values map[string]string
	used   int
	quota  int
}

// NewMemoryStorage creates an empty MemoryStorage
func NewMemoryStorage(quotaBytes int) *MemoryStorage {
	return &MemoryStorage{
		values: make(map[string]string),
		quota:  quotaBytes,
	}
}

// Get implements cart.Storage
func (m *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctx.Err(); err != nil {
		return "", false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.values[key]
	return v, ok, nil
}

// Set implements cart.Storage
func (m *MemoryStorage) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	used := m.used + len(key) + len(value)
	if old, ok := m.values[key]; ok {
		used -= len(key) + len(old)
	}
	if m.quota > 0 && used > m.quota {
		return fmt.Errorf("%w: writing %q needs %d bytes, quota is %d", ErrQuotaExceeded, key, used, m.quota)
	}

	m.values[key] = value
	m.used = used
	return nil
}

// Remove implements cart.Storage
func (m *MemoryStorage) Remove(ctx context.Context, key string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if old, ok := m.values[key]; ok {
		m.used -= len(key) + len(old)
		delete(m.values, key)
	}
	return nil
}

// Used returns the number of bytes currently stored
func (m *MemoryStorage) Used() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.used
}

var _ cart.Storage = (*MemoryStorage)(nil)
