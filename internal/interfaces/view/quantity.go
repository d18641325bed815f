package view

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/storefront/cart/internal/domain/cart"
)

// ParseQuantity reads a quantity field the way the storefront script does:
// an optional sign and the leading digits count, the rest is ignored, so
// "12abc" is 12 and "2.5" is 2. The result is coerced with
// cart.CoerceQuantity; text without leading digits becomes
// cart.DefaultQuantity.
func ParseQuantity(raw string) int {
	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	negative := false
	if s != "" && (s[0] == '+' || s[0] == '-') {
		negative = s[0] == '-'
		s = s[1:]
	}
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 || negative {
		return cart.DefaultQuantity
	}
	n, err := strconv.Atoi(s[:end])
	if err != nil {
		// only a range error is possible on a digit string
		return cart.MaxQuantity
	}
	return cart.CoerceQuantity(n)
}

// ParseQuantities applies ParseQuantity to every field of a bulk update
func ParseQuantities(raw map[string]string) map[string]int {
	out := make(map[string]int, len(raw))
	for id, v := range raw {
		out[id] = ParseQuantity(v)
	}
	return out
}
