package cart

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/cart/internal/domain/cart"
	"github.com/storefront/cart/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// mapStorage is a minimal in-memory Storage for tests
type mapStorage struct {
	mu     sync.Mutex
	values map[string]string
	sets   int
}

func newMapStorage() *mapStorage {
	return &mapStorage{values: make(map[string]string)}
}

func (m *mapStorage) Get(ctx context.Context, key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *mapStorage) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sets++
	m.values[key] = value
	return nil
}

func (m *mapStorage) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// MockStorage is a testify mock of cart.Storage
type MockStorage struct {
	mock.Mock
}

func (m *MockStorage) Get(ctx context.Context, key string) (string, bool, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Bool(1), args.Error(2)
}

func (m *MockStorage) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockStorage) Remove(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

// recordingPublisher collects published events
type recordingPublisher struct {
	events []shared.DomainEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	p.events = append(p.events, events...)
	return nil
}

func (p *recordingPublisher) types() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.EventType())
	}
	return out
}

func product(id, name string, price int64, qty int) cart.Item {
	return cart.Item{ID: id, Name: name, Price: decimal.NewFromInt(price), Quantity: qty}
}

func newTestStore(t *testing.T, storage cart.Storage, opts ...Option) *Store {
	opts = append([]Option{WithLogger(zaptest.NewLogger(t))}, opts...)
	return NewStore(storage, opts...)
}

// ============================================
// GetCart / SaveCart
// ============================================

func TestStore_StorageKeyScopesTheCart(t *testing.T) {
	ctx := context.Background()
	backing := newMapStorage()

	first := newTestStore(t, backing)
	second := newTestStore(t, backing)
	other := newTestStore(t, backing, WithStorageKey("cart:other"))

	_, err := first.AddToCart(ctx, product("p1", "Shirt", 1000, 1))
	require.NoError(t, err)

	assert.Equal(t, 1, second.GetCart(ctx).ItemCount(), "same key, same cart")
	assert.True(t, other.GetCart(ctx).IsEmpty(), "another key is another cart")
}

func TestStore_GetCart(t *testing.T) {
	ctx := context.Background()

	t.Run("empty cart when nothing stored", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		c := s.GetCart(ctx)
		require.NotNil(t, c)
		assert.True(t, c.IsEmpty())
	})

	t.Run("two reads without mutation are equal", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, err := s.AddToCart(ctx, product("a", "A", 10, 2))
		require.NoError(t, err)

		assert.Equal(t, s.GetCart(ctx).Items(), s.GetCart(ctx).Items())
	})

	t.Run("corrupt storage reads as empty cart", func(t *testing.T) {
		storage := newMapStorage()
		storage.values["cart"] = "}{ not json at all"
		s := newTestStore(t, storage)

		c := s.GetCart(ctx)
		assert.True(t, c.IsEmpty())
	})

	t.Run("corruption is discarded by the next save", func(t *testing.T) {
		storage := newMapStorage()
		storage.values["cart"] = "garbage"
		s := newTestStore(t, storage)

		_, err := s.AddToCart(ctx, product("a", "A", 10, 1))
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(storage.values["cart"], `{"version":1`))
		assert.Equal(t, 1, s.GetCart(ctx).Len())
	})

	t.Run("read failure reads as empty cart", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("Get", mock.Anything, "cart").Return("", false, errors.New("connection refused"))
		s := newTestStore(t, storage)

		assert.True(t, s.GetCart(ctx).IsEmpty())
		storage.AssertExpectations(t)
	})

	t.Run("legacy array blob is read", func(t *testing.T) {
		storage := newMapStorage()
		storage.values["cart"] = `[{"id":"p1","name":"Shirt","price":1000,"quantity":2,"image":""}]`
		s := newTestStore(t, storage)

		c := s.GetCart(ctx)
		require.Equal(t, 1, c.Len())
		assert.Equal(t, 2, c.ItemCount())
	})
}

func TestStore_SaveCart(t *testing.T) {
	ctx := context.Background()

	t.Run("overwrites storage entirely", func(t *testing.T) {
		storage := newMapStorage()
		s := newTestStore(t, storage)
		require.NoError(t, s.SaveCart(ctx, cart.New(product("a", "A", 10, 1), product("b", "B", 5, 1))))
		require.NoError(t, s.SaveCart(ctx, cart.New(product("c", "C", 1, 1))))

		c := s.GetCart(ctx)
		require.Equal(t, 1, c.Len())
		_, ok := c.Find("c")
		assert.True(t, ok)
	})

	t.Run("write failure is surfaced", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("Set", mock.Anything, "cart", mock.Anything).Return(errors.New("quota exceeded"))
		s := newTestStore(t, storage)

		err := s.SaveCart(ctx, cart.New(product("a", "A", 10, 1)))
		require.Error(t, err)
		assert.True(t, errors.Is(err, cart.ErrStorageWrite))
		assert.Contains(t, err.Error(), "quota exceeded")
	})

	t.Run("uses the configured key", func(t *testing.T) {
		storage := newMapStorage()
		s := newTestStore(t, storage, WithStorageKey("cart:guest"))
		require.NoError(t, s.SaveCart(ctx, cart.New(product("a", "A", 10, 1))))

		assert.Equal(t, "cart:guest", s.Key())
		_, ok := storage.values["cart:guest"]
		assert.True(t, ok)
	})
}

// ============================================
// Mutators
// ============================================

func TestStore_AddToCart(t *testing.T) {
	ctx := context.Background()

	t.Run("adding the same id twice merges into quantity 2", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, err := s.AddToCart(ctx, product("a", "A", 10, 1))
		require.NoError(t, err)
		c, err := s.AddToCart(ctx, product("a", "A", 10, 1))
		require.NoError(t, err)

		require.Equal(t, 1, c.Len())
		item, _ := c.Find("a")
		assert.Equal(t, 2, item.Quantity)
		assert.Equal(t, c.Items(), s.GetCart(ctx).Items())
	})

	t.Run("merge needs only the id", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, err := s.AddToCart(ctx, product("a", "A", 10, 1))
		require.NoError(t, err)

		c, err := s.AddToCart(ctx, cart.Item{ID: "a", Quantity: 3})
		require.NoError(t, err)
		item, _ := c.Find("a")
		assert.Equal(t, 4, item.Quantity)
	})

	t.Run("new item without name is rejected before any write", func(t *testing.T) {
		storage := newMapStorage()
		s := newTestStore(t, storage)

		_, err := s.AddToCart(ctx, cart.Item{ID: "a", Price: decimal.NewFromInt(10)})
		require.Error(t, err)
		assert.True(t, errors.Is(err, cart.ErrInvalidProduct))
		assert.Equal(t, 0, storage.sets)
	})

	t.Run("new item without positive price is rejected", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, err := s.AddToCart(ctx, product("a", "A", 0, 1))
		assert.True(t, errors.Is(err, cart.ErrInvalidProduct))
	})

	t.Run("missing id is rejected", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, err := s.AddToCart(ctx, product("  ", "A", 10, 1))
		assert.True(t, errors.Is(err, cart.ErrInvalidProduct))
	})

	t.Run("write failure returns the unsaved cart and the error", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("Get", mock.Anything, "cart").Return("", false, nil)
		storage.On("Set", mock.Anything, "cart", mock.Anything).Return(errors.New("quota exceeded"))
		publisher := &recordingPublisher{}
		s := newTestStore(t, storage, WithEventPublisher(publisher))

		c, err := s.AddToCart(ctx, product("a", "A", 10, 1))
		assert.True(t, errors.Is(err, cart.ErrStorageWrite))
		assert.Equal(t, 1, c.Len())
		assert.Empty(t, publisher.events)
	})

	t.Run("publishes ItemAdded", func(t *testing.T) {
		publisher := &recordingPublisher{}
		s := newTestStore(t, newMapStorage(), WithEventPublisher(publisher))
		_, err := s.AddToCart(ctx, product("a", "A", 10, 1))
		require.NoError(t, err)
		_, err = s.AddToCart(ctx, product("a", "A", 10, 1))
		require.NoError(t, err)

		require.Len(t, publisher.events, 2)
		first := publisher.events[0].(*cart.ItemAddedEvent)
		second := publisher.events[1].(*cart.ItemAddedEvent)
		assert.False(t, first.Merged)
		assert.True(t, second.Merged)
		assert.Equal(t, 2, second.Cart.ItemCount)
	})
}

func TestStore_RemoveFromCart(t *testing.T) {
	ctx := context.Background()

	t.Run("removes the entry", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 1))
		_, _ = s.AddToCart(ctx, product("b", "B", 10, 1))

		c, err := s.RemoveFromCart(ctx, "a")
		require.NoError(t, err)
		require.Equal(t, 1, c.Len())
		assert.False(t, s.GetCart(ctx).Contains("a"))
	})

	t.Run("absent id leaves cart and storage unchanged", func(t *testing.T) {
		storage := newMapStorage()
		publisher := &recordingPublisher{}
		s := newTestStore(t, storage, WithEventPublisher(publisher))
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 1))
		_, _ = s.AddToCart(ctx, product("b", "B", 10, 2))
		before := s.GetCart(ctx).Items()
		sets := storage.sets

		c, err := s.RemoveFromCart(ctx, "x")
		require.NoError(t, err)
		assert.Equal(t, before, c.Items())
		assert.Equal(t, sets, storage.sets)
		assert.Equal(t, []string{cart.EventTypeItemAdded, cart.EventTypeItemAdded}, publisher.types())
	})
}

func TestStore_UpdateQuantity(t *testing.T) {
	ctx := context.Background()

	t.Run("sets the quantity", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 1))
		c, err := s.UpdateQuantity(ctx, "a", 5)
		require.NoError(t, err)
		item, _ := c.Find("a")
		assert.Equal(t, 5, item.Quantity)
	})

	t.Run("non-positive quantity becomes 1", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 4))
		c, err := s.UpdateQuantity(ctx, "a", -5)
		require.NoError(t, err)
		item, _ := c.Find("a")
		assert.Equal(t, 1, item.Quantity)
	})

	t.Run("unknown id is a no-op", func(t *testing.T) {
		storage := newMapStorage()
		s := newTestStore(t, storage)
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 1))
		sets := storage.sets

		c, err := s.UpdateQuantity(ctx, "x", 3)
		require.NoError(t, err)
		assert.Equal(t, 1, c.ItemCount())
		assert.Equal(t, sets, storage.sets)
	})
}

func TestStore_BulkUpdateQuantities(t *testing.T) {
	ctx := context.Background()

	t.Run("updates mentioned entries only", func(t *testing.T) {
		s := newTestStore(t, newMapStorage())
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 1))
		_, _ = s.AddToCart(ctx, product("b", "B", 20, 1))
		_, _ = s.AddToCart(ctx, product("c", "C", 30, 1))

		c, err := s.BulkUpdateQuantities(ctx, map[string]int{"a": 3, "c": 0, "zzz": 9})
		require.NoError(t, err)

		a, _ := c.Find("a")
		b, _ := c.Find("b")
		cc, _ := c.Find("c")
		assert.Equal(t, 3, a.Quantity)
		assert.Equal(t, 1, b.Quantity)
		assert.Equal(t, 1, cc.Quantity)
		assert.Equal(t, 3, c.Len())
		assert.Equal(t, c.Items(), s.GetCart(ctx).Items())
	})

	t.Run("empty update set leaves storage unchanged", func(t *testing.T) {
		storage := newMapStorage()
		s := newTestStore(t, storage)
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 1))
		sets := storage.sets

		_, err := s.BulkUpdateQuantities(ctx, map[string]int{"zzz": 9})
		require.NoError(t, err)
		_, err = s.BulkUpdateQuantities(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, sets, storage.sets)
	})

	t.Run("publishes the applied quantities", func(t *testing.T) {
		publisher := &recordingPublisher{}
		s := newTestStore(t, newMapStorage(), WithEventPublisher(publisher))
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 1))

		_, err := s.BulkUpdateQuantities(ctx, map[string]int{"a": -2, "zzz": 9})
		require.NoError(t, err)

		last := publisher.events[len(publisher.events)-1].(*cart.QuantitiesUpdatedEvent)
		assert.Equal(t, map[string]int{"a": 1}, last.Quantities)
	})
}

func TestStore_ClearCart(t *testing.T) {
	ctx := context.Background()

	t.Run("clears all stored data", func(t *testing.T) {
		storage := newMapStorage()
		publisher := &recordingPublisher{}
		s := newTestStore(t, storage, WithEventPublisher(publisher))
		_, _ = s.AddToCart(ctx, product("a", "A", 10, 3))

		require.NoError(t, s.ClearCart(ctx))
		c := s.GetCart(ctx)
		assert.True(t, c.IsEmpty())
		assert.Equal(t, 0, c.ItemCount())
		assert.Empty(t, storage.values)
		assert.Equal(t, cart.EventTypeCartCleared, publisher.types()[len(publisher.types())-1])
	})

	t.Run("remove failure is surfaced", func(t *testing.T) {
		storage := new(MockStorage)
		storage.On("Remove", mock.Anything, "cart").Return(errors.New("permission denied"))
		s := newTestStore(t, storage)

		err := s.ClearCart(ctx)
		assert.True(t, errors.Is(err, cart.ErrStorageWrite))
	})
}

func TestStore_Scenario(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t, newMapStorage())

	assert.True(t, s.GetCart(ctx).IsEmpty())

	c, err := s.AddToCart(ctx, product("p1", "Shirt", 1000, 1))
	require.NoError(t, err)
	assert.Equal(t, 1, c.ItemCount())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(1000)))

	c, err = s.AddToCart(ctx, cart.Item{ID: "p1", Quantity: 1})
	require.NoError(t, err)
	assert.Equal(t, 2, c.ItemCount())
	assert.True(t, c.Total().Equal(decimal.NewFromInt(2000)))

	c, err = s.UpdateQuantity(ctx, "p1", 5)
	require.NoError(t, err)
	assert.True(t, c.Total().Equal(decimal.NewFromInt(5000)))

	c, err = s.RemoveFromCart(ctx, "p1")
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.True(t, c.Total().IsZero())
	assert.True(t, s.GetCart(ctx).Total().IsZero())
}
