package cart

import "github.com/shopspring/decimal"

// Cart is the ordered, id-unique collection of selected products.
// Insertion order is kept for display only.
type Cart struct {
	items []Item
}

// New builds a cart from items, merging duplicate ids and coercing
// quantities so the cart invariants hold from the start.
func New(items ...Item) *Cart {
	c := &Cart{items: make([]Item, 0, len(items))}
	for _, item := range items {
		c.Add(item)
	}
	return c
}

// Items returns a copy of the cart entries in insertion order
func (c *Cart) Items() []Item {
	out := make([]Item, len(c.items))
	copy(out, c.items)
	return out
}

// Len returns the number of distinct entries
func (c *Cart) Len() int {
	return len(c.items)
}

// IsEmpty reports whether the cart has no entries
func (c *Cart) IsEmpty() bool {
	return len(c.items) == 0
}

// Find returns the entry with the given id
func (c *Cart) Find(id string) (Item, bool) {
	if idx := c.indexOf(id); idx >= 0 {
		return c.items[idx], true
	}
	return Item{}, false
}

// Contains reports whether an entry with the given id exists
func (c *Cart) Contains(id string) bool {
	return c.indexOf(id) >= 0
}

// Add merges item into the cart. An existing entry has its quantity
// increased by item.Quantity (default 1), saturating at MaxQuantity;
// otherwise item is appended.
func (c *Cart) Add(item Item) {
	item.Quantity = CoerceQuantity(item.Quantity)
	if idx := c.indexOf(item.ID); idx >= 0 {
		// both operands are at most MaxQuantity, so the sum cannot overflow
		c.items[idx].Quantity = CoerceQuantity(CoerceQuantity(c.items[idx].Quantity) + item.Quantity)
		return
	}
	c.items = append(c.items, item)
}

// Remove deletes the entry with the given id. It returns false when the id
// is not in the cart.
func (c *Cart) Remove(id string) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.items = append(c.items[:idx], c.items[idx+1:]...)
	return true
}

// SetQuantity sets the quantity of an entry, coerced with CoerceQuantity. It returns false when the id is not in the cart.
func (c *Cart) SetQuantity(id string, quantity int) bool {
	idx := c.indexOf(id)
	if idx < 0 {
		return false
	}
	c.items[idx].Quantity = CoerceQuantity(quantity)
	return true
}

// ItemCount returns the sum of all quantities
func (c *Cart) ItemCount() int {
	count := 0
	for _, item := range c.items {
		count += item.Quantity
	}
	return count
}

// Total returns the sum of all subtotals, computed from the current entries
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.items {
		total = total.Add(item.Subtotal())
	}
	return total
}

func (c *Cart) indexOf(id string) int {
	for i, item := range c.items {
		if item.ID == id {
			return i
		}
	}
	return -1
}
