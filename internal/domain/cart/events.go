package cart

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/cart/internal/domain/shared"
)

// AggregateTypeCart is the aggregate type for cart events
const AggregateTypeCart = "Cart"

// Event type constants
const (
	EventTypeItemAdded         = "CartItemAdded"
	EventTypeItemRemoved       = "CartItemRemoved"
	EventTypeQuantityUpdated   = "CartQuantityUpdated"
	EventTypeQuantitiesUpdated = "CartQuantitiesUpdated"
	EventTypeCartCleared       = "CartCleared"
)

// EventTypes lists every event a cart mutation can raise
func EventTypes() []string {
	return []string{
		EventTypeItemAdded,
		EventTypeItemRemoved,
		EventTypeQuantityUpdated,
		EventTypeQuantitiesUpdated,
		EventTypeCartCleared,
	}
}

// Snapshot is the derived state carried by every cart event
type Snapshot struct {
	ItemCount int             `json:"item_count"`
	Total     decimal.Decimal `json:"total"`
}

func snapshotOf(c *Cart) Snapshot {
	if c == nil {
		return Snapshot{Total: decimal.Zero}
	}
	return Snapshot{ItemCount: c.ItemCount(), Total: c.Total()}
}

// ItemAddedEvent is raised after an add-to-cart was persisted
type ItemAddedEvent struct {
	shared.BaseDomainEvent
	ItemID   string   `json:"item_id"`
	Quantity int      `json:"quantity"`
	Merged   bool     `json:"merged"`
	Cart     Snapshot `json:"cart"`
}

// NewItemAddedEvent creates an ItemAddedEvent
func NewItemAddedEvent(key string, item Item, merged bool, c *Cart) *ItemAddedEvent {
	return &ItemAddedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemAdded, AggregateTypeCart, key),
		ItemID:          item.ID,
		Quantity:        item.Quantity,
		Merged:          merged,
		Cart:            snapshotOf(c),
	}
}

// ItemRemovedEvent is raised after an entry was removed
type ItemRemovedEvent struct {
	shared.BaseDomainEvent
	ItemID string   `json:"item_id"`
	Cart   Snapshot `json:"cart"`
}

// NewItemRemovedEvent creates an ItemRemovedEvent
func NewItemRemovedEvent(key, itemID string, c *Cart) *ItemRemovedEvent {
	return &ItemRemovedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeItemRemoved, AggregateTypeCart, key),
		ItemID:          itemID,
		Cart:            snapshotOf(c),
	}
}

// QuantityUpdatedEvent is raised after a single quantity edit
type QuantityUpdatedEvent struct {
	shared.BaseDomainEvent
	ItemID   string   `json:"item_id"`
	Quantity int      `json:"quantity"`
	Cart     Snapshot `json:"cart"`
}

// NewQuantityUpdatedEvent creates a QuantityUpdatedEvent
func NewQuantityUpdatedEvent(key, itemID string, quantity int, c *Cart) *QuantityUpdatedEvent {
	return &QuantityUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuantityUpdated, AggregateTypeCart, key),
		ItemID:          itemID,
		Quantity:        quantity,
		Cart:            snapshotOf(c),
	}
}

// QuantitiesUpdatedEvent is raised after a bulk quantity update
type QuantitiesUpdatedEvent struct {
	shared.BaseDomainEvent
	Quantities map[string]int `json:"quantities"`
	Cart       Snapshot       `json:"cart"`
}

// NewQuantitiesUpdatedEvent creates a QuantitiesUpdatedEvent
func NewQuantitiesUpdatedEvent(key string, quantities map[string]int, c *Cart) *QuantitiesUpdatedEvent {
	return &QuantitiesUpdatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeQuantitiesUpdated, AggregateTypeCart, key),
		Quantities:      quantities,
		Cart:            snapshotOf(c),
	}
}

// CartClearedEvent is raised after the stored cart was deleted
type CartClearedEvent struct {
	shared.BaseDomainEvent
}

// NewCartClearedEvent creates a CartClearedEvent
func NewCartClearedEvent(key string) *CartClearedEvent {
	return &CartClearedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeCartCleared, AggregateTypeCart, key),
	}
}
