package cart

import (
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// DefaultQuantity is used whenever a quantity is missing or not positive
	DefaultQuantity = 1
	// MaxQuantity caps a single entry; larger values are clamped to it
	MaxQuantity = 9999
)

// Item is one product entry in the cart. ID is the caller-supplied identity
// key (typically the product SKU).
type Item struct {
	ID       string
	Name     string
	Price    decimal.Decimal
	Quantity int
	Image    string
}

// NewItem creates a validated cart item. Quantities are coerced into
// [DefaultQuantity, MaxQuantity] rather than rejected.
func NewItem(id, name string, price decimal.Decimal, quantity int, image string) (Item, error) {
	item := Item{
		ID:       strings.TrimSpace(id),
		Name:     strings.TrimSpace(name),
		Price:    price,
		Quantity: CoerceQuantity(quantity),
		Image:    strings.TrimSpace(image),
	}
	if err := item.Validate(); err != nil {
		return Item{}, err
	}
	return item, nil
}

// Validate checks the fields required for an item to enter the cart
func (i Item) Validate() error {
	if i.ID == "" {
		return NewInvalidProductError("Product ID cannot be empty")
	}
	if i.Name == "" {
		return NewInvalidProductError("Product name cannot be empty")
	}
	if !i.Price.IsPositive() {
		return NewInvalidProductError("Product price must be positive")
	}
	return nil
}

// Subtotal returns price * quantity
func (i Item) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// CoerceQuantity returns DefaultQuantity for a non-positive q and clamps
// anything above MaxQuantity
func CoerceQuantity(q int) int {
	switch {
	case q < 1:
		return DefaultQuantity
	case q > MaxQuantity:
		return MaxQuantity
	}
	return q
}
