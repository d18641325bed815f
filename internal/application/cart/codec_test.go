package cart

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/storefront/cart/internal/domain/cart"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_Encode(t *testing.T) {
	c := cart.New(
		cart.Item{ID: "p1", Name: "Shirt", Price: decimal.NewFromInt(1000), Quantity: 2, Image: "shirt.jpg"},
		cart.Item{ID: "p2", Name: "Hat", Price: decimal.RequireFromString("12.5"), Quantity: 1},
	)

	blob, err := Codec{}.Encode(c)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(blob), &decoded))
	assert.Equal(t, float64(SchemaVersion), decoded["version"])

	items := decoded["items"].([]any)
	require.Len(t, items, 2)
	first := items[0].(map[string]any)
	assert.Equal(t, "p1", first["id"])
	assert.Equal(t, "Shirt", first["name"])
	assert.Equal(t, float64(1000), first["price"])
	assert.Equal(t, float64(2), first["quantity"])
	assert.Equal(t, "shirt.jpg", first["image"])

	second := items[1].(map[string]any)
	assert.Equal(t, 12.5, second["price"])
	_, hasImage := second["image"]
	assert.False(t, hasImage)
}

func TestCodec_RoundTripPreservesOrder(t *testing.T) {
	c := cart.New(
		cart.Item{ID: "b", Name: "B", Price: decimal.NewFromInt(2), Quantity: 1},
		cart.Item{ID: "a", Name: "A", Price: decimal.NewFromInt(1), Quantity: 3},
	)
	blob, err := Codec{}.Encode(c)
	require.NoError(t, err)

	decoded, report, err := Codec{}.Decode(blob)
	require.NoError(t, err)
	assert.Equal(t, SchemaVersion, report.Version)
	assert.Empty(t, report.Dropped)
	require.Equal(t, 2, decoded.Len())
	assert.Equal(t, "b", decoded.Items()[0].ID)
	assert.True(t, decoded.Total().Equal(c.Total()))
}

func TestCodec_RoundTripAtMaxQuantity(t *testing.T) {
	c := cart.New(cart.Item{ID: "p1", Name: "Shirt", Price: decimal.NewFromInt(1000), Quantity: cart.MaxQuantity})
	c.Add(cart.Item{ID: "p1"})

	blob, err := Codec{}.Encode(c)
	require.NoError(t, err)
	decoded, _, err := Codec{}.Decode(blob)
	require.NoError(t, err)

	item, ok := decoded.Find("p1")
	require.True(t, ok)
	assert.Equal(t, cart.MaxQuantity, item.Quantity)
	assert.True(t, decoded.Total().Equal(c.Total()))
}

func TestCodec_Decode(t *testing.T) {
	tests := []struct {
		name      string
		blob      string
		wantLen   int
		wantCount int
		dropped   int
		version   int
	}{
		{"empty string", "", 0, 0, 0, 0},
		{"json null", "null", 0, 0, 0, 0},
		{"empty envelope", `{"version":1,"items":[]}`, 0, 0, 0, 1},
		{"legacy array", `[{"id":"p1","name":"Shirt","price":1000,"quantity":1}]`, 1, 1, 0, 0},
		{"numeric id from data attribute", `[{"id":17,"name":"Shirt","price":1000,"quantity":1}]`, 1, 1, 0, 0},
		{"quoted price", `{"version":1,"items":[{"id":"p1","name":"Shirt","price":"1000","quantity":2}]}`, 1, 2, 0, 1},
		{"missing quantity becomes 1", `{"version":1,"items":[{"id":"p1","name":"Shirt","price":5}]}`, 1, 1, 0, 1},
		{"non-numeric quantity becomes 1", `{"version":1,"items":[{"id":"p1","name":"Shirt","price":5,"quantity":"abc"}]}`, 1, 1, 0, 1},
		{"negative quantity becomes 1", `{"version":1,"items":[{"id":"p1","name":"Shirt","price":5,"quantity":-4}]}`, 1, 1, 0, 1},
		{"fractional quantity becomes 1", `{"version":1,"items":[{"id":"p1","name":"Shirt","price":5,"quantity":2.5}]}`, 1, 1, 0, 1},
		{"oversized quantity is clamped", `{"version":1,"items":[{"id":"p1","name":"Shirt","price":5,"quantity":9223372036854775807}]}`, 1, cart.MaxQuantity, 0, 1},
		{"duplicate ids are merged", `[{"id":"a","name":"A","price":1,"quantity":2},{"id":"a","name":"A","price":1,"quantity":3}]`, 1, 5, 0, 0},
		{"entry without id is dropped", `[{"name":"A","price":1,"quantity":1},{"id":"b","name":"B","price":1,"quantity":1}]`, 1, 1, 1, 0},
		{"entry without name is dropped", `[{"id":"a","price":1,"quantity":1}]`, 0, 0, 1, 0},
		{"entry with zero price is dropped", `[{"id":"a","name":"A","price":0,"quantity":1}]`, 0, 0, 1, 0},
		{"entry with text price is dropped", `[{"id":"a","name":"A","price":"cheap","quantity":1}]`, 0, 0, 1, 0},
		{"non-object entry is dropped", `[42, {"id":"a","name":"A","price":1,"quantity":1}]`, 1, 1, 1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, report, err := Codec{}.Decode(tt.blob)
			require.NoError(t, err)
			assert.Equal(t, tt.wantLen, c.Len())
			assert.Equal(t, tt.wantCount, c.ItemCount())
			assert.Len(t, report.Dropped, tt.dropped)
			assert.Equal(t, tt.version, report.Version)
		})
	}
}

func TestCodec_DecodeMalformed(t *testing.T) {
	blobs := []string{
		"garbage",
		"}{",
		`{"version":1,"items":`,
		`{"version":99,"items":[]}`,
		`{"items":[]}`,
		`{"version":1,"items":5}`,
		`"cart"`,
		`12`,
	}
	for _, blob := range blobs {
		t.Run(blob, func(t *testing.T) {
			c, _, err := Codec{}.Decode(blob)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedSnapshot))
			assert.Nil(t, c)
		})
	}
}
