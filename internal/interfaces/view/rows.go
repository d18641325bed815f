package view

import (
	"github.com/shopspring/decimal"
	"github.com/storefront/cart/internal/domain/cart"
)

// Defaults used when the projector is built without configuration
const (
	DefaultPlaceholderImage = "assets/images/resource/shop/cart-placeholder.jpg"
	DefaultEmptyMessage     = "Ваша корзина пуста."
)

// RowViewModel is one rendered table row. An empty cart renders a single
// row with Placeholder set and Message filled in.
type RowViewModel struct {
	ID            string          `json:"id,omitempty"`
	Name          string          `json:"name,omitempty"`
	ImageSrc      string          `json:"image_src,omitempty"`
	UnitPrice     decimal.Decimal `json:"unit_price"`
	Quantity      int             `json:"quantity"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	UnitPriceText string          `json:"unit_price_text,omitempty"`
	SubtotalText  string          `json:"subtotal_text,omitempty"`
	Placeholder   bool            `json:"placeholder,omitempty"`
	Message       string          `json:"message,omitempty"`
}

// Totals are the aggregate numbers shown under the table and in the badge
type Totals struct {
	ItemCount      int             `json:"item_count"`
	OrderTotal     decimal.Decimal `json:"order_total"`
	OrderTotalText string          `json:"order_total_text"`
}

// Page is everything a surface needs for a full render
type Page struct {
	Rows   []RowViewModel `json:"rows"`
	Totals Totals         `json:"totals"`
	Empty  bool           `json:"empty"`
}

// ComputeTotals returns itemCount and orderTotal recomputed from c
func ComputeTotals(c *cart.Cart) Totals {
	return Totals{ItemCount: c.ItemCount(), OrderTotal: c.Total()}
}

// Projector turns a cart into view models
type Projector struct {
	formatter    *CurrencyFormatter
	placeholder  string
	emptyMessage string
}

// ProjectorOption is a functional option for configuring the Projector
type ProjectorOption func(*Projector)

// WithPlaceholderImage sets the image used for items without one
func WithPlaceholderImage(src string) ProjectorOption {
	return func(p *Projector) {
		if src != "" {
			p.placeholder = src
		}
	}
}

// WithEmptyMessage sets the text of the empty-cart row
func WithEmptyMessage(msg string) ProjectorOption {
	return func(p *Projector) {
		if msg != "" {
			p.emptyMessage = msg
		}
	}
}

// NewProjector creates a Projector. A nil formatter leaves the text fields empty.
func NewProjector(formatter *CurrencyFormatter, opts ...ProjectorOption) *Projector {
	p := &Projector{
		formatter:    formatter,
		placeholder:  DefaultPlaceholderImage,
		emptyMessage: DefaultEmptyMessage,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// RenderRows projects every item in insertion order, or the placeholder row
// when the cart is empty
func (p *Projector) RenderRows(c *cart.Cart) []RowViewModel {
	if c.IsEmpty() {
		return []RowViewModel{{Placeholder: true, Message: p.emptyMessage}}
	}
	items := c.Items()
	rows := make([]RowViewModel, 0, len(items))
	for _, item := range items {
		rows = append(rows, p.row(item))
	}
	return rows
}

// Row projects the item with the given id
func (p *Projector) Row(c *cart.Cart, id string) (RowViewModel, bool) {
	item, ok := c.Find(id)
	if !ok {
		return RowViewModel{}, false
	}
	return p.row(item), true
}

// Totals returns ComputeTotals(c) with the formatted order total
func (p *Projector) Totals(c *cart.Cart) Totals {
	t := ComputeTotals(c)
	t.OrderTotalText = p.format(t.OrderTotal)
	return t
}

// Page projects the full page for c
func (p *Projector) Page(c *cart.Cart) Page {
	return Page{
		Rows:   p.RenderRows(c),
		Totals: p.Totals(c),
		Empty:  c.IsEmpty(),
	}
}

func (p *Projector) row(item cart.Item) RowViewModel {
	image := item.Image
	if image == "" {
		image = p.placeholder
	}
	subtotal := item.Subtotal()
	return RowViewModel{
		ID:            item.ID,
		Name:          item.Name,
		ImageSrc:      image,
		UnitPrice:     item.Price,
		Quantity:      item.Quantity,
		Subtotal:      subtotal,
		UnitPriceText: p.format(item.Price),
		SubtotalText:  p.format(subtotal),
	}
}

func (p *Projector) format(amount decimal.Decimal) string {
	if p.formatter == nil {
		return ""
	}
	return p.formatter.Format(amount)
}
