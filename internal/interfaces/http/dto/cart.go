package dto

import (
	"bytes"
	"encoding/json"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/cart/internal/interfaces/view"
)

// AddItemRequest carries the product attributes of an add-to-cart trigger.
// Price is kept as the raw attribute text; the view decides whether it is a
// valid price.
type AddItemRequest struct {
	ID    string     `json:"id" binding:"max=128"`
	Name  string     `json:"name" binding:"max=255"`
	Price PriceField `json:"price"`
	Image string     `json:"image" binding:"max=2048"`
}

// Attributes converts the request into the view's product attributes
func (r AddItemRequest) Attributes() view.ProductAttributes {
	return view.ProductAttributes{
		ID:    r.ID,
		Name:  r.Name,
		Price: string(r.Price),
		Image: r.Image,
	}
}

// PriceField is the raw content of a price attribute. It accepts any JSON
// value so that a bad price is reported as an invalid product.
type PriceField string

// UnmarshalJSON implements json.Unmarshaler
func (p *PriceField) UnmarshalJSON(data []byte) error {
	text, err := fieldText(data)
	if err != nil {
		return err
	}
	*p = PriceField(text)
	return nil
}

// QuantityField is the raw content of a quantity input. It accepts a JSON
// number or string; parsing and coercion happen in the view.
type QuantityField string

// UnmarshalJSON implements json.Unmarshaler
func (q *QuantityField) UnmarshalJSON(data []byte) error {
	text, err := fieldText(data)
	if err != nil {
		return err
	}
	*q = QuantityField(text)
	return nil
}

// fieldText returns a JSON string unquoted and trimmed, "" for null and any
// other value verbatim
func fieldText(data []byte) (string, error) {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return "", err
		}
		return strings.TrimSpace(s), nil
	}
	return string(data), nil
}

// UpdateQuantityRequest is the live edit of one quantity field
type UpdateQuantityRequest struct {
	Quantity QuantityField `json:"quantity"`
}

// BulkUpdateRequest carries every visible quantity field keyed by item id
type BulkUpdateRequest struct {
	Quantities map[string]QuantityField `json:"quantities" binding:"required"`
}

// Raw returns the quantities as raw field text
func (r BulkUpdateRequest) Raw() map[string]string {
	out := make(map[string]string, len(r.Quantities))
	for id, q := range r.Quantities {
		out[id] = string(q)
	}
	return out
}

// CartResponse is the rendered cart page
type CartResponse struct {
	Rows      []view.RowViewModel `json:"rows"`
	ItemCount int                 `json:"item_count"`
	Total     decimal.Decimal     `json:"order_total"`
	TotalText string              `json:"order_total_text"`
	Empty     bool                `json:"empty"`
}

// NewCartResponse converts a rendered page into the API response body
func NewCartResponse(page view.Page) CartResponse {
	rows := page.Rows
	if rows == nil {
		rows = []view.RowViewModel{}
	}
	return CartResponse{
		Rows:      rows,
		ItemCount: page.Totals.ItemCount,
		Total:     page.Totals.OrderTotal,
		TotalText: page.Totals.OrderTotalText,
		Empty:     page.Empty,
	}
}
