package cart

import (
	"context"
	"strings"

	"github.com/storefront/cart/internal/domain/cart"
	"github.com/storefront/cart/internal/domain/shared"
	"go.uber.org/zap"
)

// Store owns the canonical cart kept in storage. Every operation reads a
// fresh snapshot, mutates it in memory and writes the full snapshot back;
// nothing is cached between calls.
type Store struct {
	storage   cart.Storage
	key       string
	codec     Codec
	publisher shared.EventPublisher
	logger    *zap.Logger
}

// Option is a functional option for configuring the Store
type Option func(*Store)

// WithStorageKey overrides the key the cart blob is stored under
func WithStorageKey(key string) Option {
	return func(s *Store) {
		if key != "" {
			s.key = key
		}
	}
}

// WithEventPublisher sets the publisher that receives cart events
func WithEventPublisher(publisher shared.EventPublisher) Option {
	return func(s *Store) {
		s.publisher = publisher
	}
}

// WithLogger sets the logger for the Store
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		s.logger = logger
	}
}

// NewStore creates a new Store on top of the given storage port
func NewStore(storage cart.Storage, opts ...Option) *Store {
	s := &Store{
		storage: storage,
		key:     cart.DefaultStorageKey,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(zap.String("cart_key", s.key))
	return s
}

// Key returns the storage key of the cart
func (s *Store) Key() string {
	return s.key
}

// GetCart reads the stored cart. It never fails: a missing, unreadable or
// malformed blob is an empty cart, and the bad blob is replaced on the next save.
func (s *Store) GetCart(ctx context.Context) *cart.Cart {
	blob, found, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.Warn("failed to read cart from storage, using empty cart", zap.Error(err))
		return cart.New()
	}
	if !found {
		return cart.New()
	}

	c, report, err := s.codec.Decode(blob)
	if err != nil {
		s.logger.Warn("discarding malformed cart snapshot", zap.Error(err))
		return cart.New()
	}
	if len(report.Dropped) > 0 {
		s.logger.Warn("dropped invalid cart entries",
			zap.Int("schema_version", report.Version),
			zap.Strings("reasons", report.Dropped),
		)
	}
	return c
}

// SaveCart replaces the stored cart with c
func (s *Store) SaveCart(ctx context.Context, c *cart.Cart) error {
	blob, err := s.codec.Encode(c)
	if err != nil {
		s.logger.Error("failed to encode cart", zap.Error(err))
		return cart.NewStorageWriteError(err)
	}
	if err := s.storage.Set(ctx, s.key, blob); err != nil {
		s.logger.Error("failed to write cart to storage", zap.Error(err))
		return cart.NewStorageWriteError(err)
	}
	return nil
}

// AddToCart merges product into the cart. An existing entry has its quantity
// increased by product.Quantity (default 1); a new entry needs a name and a
// positive price. On a write failure the returned cart is the unsaved state.
func (s *Store) AddToCart(ctx context.Context, product cart.Item) (*cart.Cart, error) {
	c := s.GetCart(ctx)

	product.ID = strings.TrimSpace(product.ID)
	product.Quantity = cart.CoerceQuantity(product.Quantity)

	merged := product.ID != "" && c.Contains(product.ID)
	if !merged {
		item, err := cart.NewItem(product.ID, product.Name, product.Price, product.Quantity, product.Image)
		if err != nil {
			s.logger.Info("rejected add to cart", zap.String("item_id", product.ID), zap.Error(err))
			return c, err
		}
		product = item
	}

	c.Add(product)
	if err := s.SaveCart(ctx, c); err != nil {
		return c, err
	}

	s.logger.Debug("item added to cart",
		zap.String("item_id", product.ID),
		zap.Int("quantity", product.Quantity),
		zap.Bool("merged", merged),
	)
	s.publish(ctx, cart.NewItemAddedEvent(s.key, product, merged, c))
	return c, nil
}

// RemoveFromCart deletes the entry with the given id. An unknown id is a no-op.
func (s *Store) RemoveFromCart(ctx context.Context, id string) (*cart.Cart, error) {
	c := s.GetCart(ctx)
	if !c.Remove(id) {
		return c, nil
	}
	if err := s.SaveCart(ctx, c); err != nil {
		return c, err
	}
	s.publish(ctx, cart.NewItemRemovedEvent(s.key, id, c))
	return c, nil
}

// UpdateQuantity sets the quantity of one entry, coercing non-positive
// values to 1. An unknown id is a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) (*cart.Cart, error) {
	c := s.GetCart(ctx)
	quantity = cart.CoerceQuantity(quantity)
	if !c.SetQuantity(id, quantity) {
		return c, nil
	}
	if err := s.SaveCart(ctx, c); err != nil {
		return c, err
	}
	s.publish(ctx, cart.NewQuantityUpdatedEvent(s.key, id, quantity, c))
	return c, nil
}

// BulkUpdateQuantities applies UpdateQuantity semantics to every id in
// updates. Entries not mentioned are untouched. When no id matches an entry
// the storage is left as it is.
func (s *Store) BulkUpdateQuantities(ctx context.Context, updates map[string]int) (*cart.Cart, error) {
	c := s.GetCart(ctx)

	applied := make(map[string]int, len(updates))
	for id, quantity := range updates {
		quantity = cart.CoerceQuantity(quantity)
		if c.SetQuantity(id, quantity) {
			applied[id] = quantity
		}
	}
	if len(applied) == 0 {
		return c, nil
	}

	if err := s.SaveCart(ctx, c); err != nil {
		return c, err
	}
	s.publish(ctx, cart.NewQuantitiesUpdatedEvent(s.key, applied, c))
	return c, nil
}

// ClearCart deletes the stored cart
func (s *Store) ClearCart(ctx context.Context) error {
	if err := s.storage.Remove(ctx, s.key); err != nil {
		s.logger.Error("failed to remove cart from storage", zap.Error(err))
		return cart.NewStorageWriteError(err)
	}
	s.publish(ctx, cart.NewCartClearedEvent(s.key))
	return nil
}

func (s *Store) publish(ctx context.Context, events ...shared.DomainEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish cart events", zap.Error(err))
	}
}
