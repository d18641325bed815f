package cart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/storefront/cart/internal/domain/cart"
)

// SchemaVersion is the version written into every saved snapshot.
// Version 0 is the legacy layout: a bare JSON array of items.
const SchemaVersion = 1

// ErrMalformedSnapshot is returned by Decode when the blob cannot be read
var ErrMalformedSnapshot = errors.New("malformed cart snapshot")

// snapshot is the stored envelope
type snapshot struct {
	Version int               `json:"version"`
	Items   []json.RawMessage `json:"items"`
}

type storedItem struct {
	ID       flexString      `json:"id"`
	Name     flexString      `json:"name"`
	Price    json.Number     `json:"price"`
	Quantity json.RawMessage `json:"quantity"`
	Image    flexString      `json:"image,omitempty"`
}

// flexString accepts JSON strings, numbers and null. Product ids taken from
// markup data attributes are sometimes stored as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*f = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected string or number, got %s", data)
		}
		*f = flexString(n.String())
		return nil
	}
}

// DecodeReport describes what Decode had to repair
type DecodeReport struct {
	Version int
	Dropped []string // reasons for entries that were discarded
}

// Codec converts between carts and the stored blob
type Codec struct{}

// Encode serialises c as a versioned snapshot
func (Codec) Encode(c *cart.Cart) (string, error) {
	items := c.Items()
	raw := make([]json.RawMessage, 0, len(items))
	for _, item := range items {
		b, err := json.Marshal(storedItem{
			ID:       flexString(item.ID),
			Name:     flexString(item.Name),
			Price:    json.Number(item.Price.String()),
			Quantity: json.RawMessage(strconv.Itoa(item.Quantity)),
			Image:    flexString(item.Image),
		})
		if err != nil {
			return "", fmt.Errorf("failed to encode cart item %q: %w", item.ID, err)
		}
		raw = append(raw, b)
	}

	b, err := json.Marshal(snapshot{Version: SchemaVersion, Items: raw})
	if err != nil {
		return "", fmt.Errorf("failed to encode cart: %w", err)
	}
	return string(b), nil
}

// Decode parses a stored blob. Invalid entries are dropped and reported,
// quantities are coerced and duplicate ids merged. Any structural problem
// returns ErrMalformedSnapshot.
func (Codec) Decode(blob string) (*cart.Cart, DecodeReport, error) {
	trimmed := strings.TrimSpace(blob)
	report := DecodeReport{}

	var entries []json.RawMessage
	switch {
	case trimmed == "" || trimmed == "null":
		return cart.New(), report, nil
	case trimmed[0] == '[':
		if err := json.Unmarshal([]byte(trimmed), &entries); err != nil {
			return nil, report, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		report.Version = 0
	case trimmed[0] == '{':
		var snap snapshot
		if err := json.Unmarshal([]byte(trimmed), &snap); err != nil {
			return nil, report, fmt.Errorf("%w: %v", ErrMalformedSnapshot, err)
		}
		if snap.Version < 1 || snap.Version > SchemaVersion {
			return nil, report, fmt.Errorf("%w: unsupported schema version %d", ErrMalformedSnapshot, snap.Version)
		}
		report.Version = snap.Version
		entries = snap.Items
	default:
		return nil, report, fmt.Errorf("%w: unexpected top-level value", ErrMalformedSnapshot)
	}

	items := make([]cart.Item, 0, len(entries))
	for i, entry := range entries {
		item, err := decodeItem(entry)
		if err != nil {
			report.Dropped = append(report.Dropped, fmt.Sprintf("entry %d: %v", i, err))
			continue
		}
		items = append(items, item)
	}
	return cart.New(items...), report, nil
}

func decodeItem(entry json.RawMessage) (cart.Item, error) {
	var stored storedItem
	if err := json.Unmarshal(entry, &stored); err != nil {
		return cart.Item{}, err
	}

	price, err := decimal.NewFromString(stored.Price.String())
	if err != nil {
		return cart.Item{}, fmt.Errorf("invalid price %q", stored.Price)
	}

	return cart.NewItem(string(stored.ID), string(stored.Name), price, decodeQuantity(stored.Quantity), string(stored.Image))
}

// decodeQuantity returns 0 (later coerced to 1) for anything that is not a
// positive whole number. Values above cart.MaxQuantity are clamped.
func decodeQuantity(raw json.RawMessage) int {
	if len(raw) == 0 {
		return 0
	}
	var s flexString
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	d, err := decimal.NewFromString(strings.TrimSpace(string(s)))
	if err != nil || !d.IsInteger() || !d.IsPositive() {
		return 0
	}
	if d.GreaterThan(decimal.NewFromInt(cart.MaxQuantity)) {
		return cart.MaxQuantity
	}
	return int(d.IntPart())
}
