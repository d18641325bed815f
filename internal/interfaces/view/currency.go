package view

import (
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// CurrencyFormatter formats whole-unit prices with locale grouping and a
// currency suffix, e.g. "12 500 сом" for ru-RU. The shop prices in whole
// currency units, so amounts are rounded and shown without decimals.
type CurrencyFormatter struct {
	printer *message.Printer
	suffix  string
}

// NewCurrencyFormatter creates a formatter for a BCP 47 locale such as "ru-RU"
func NewCurrencyFormatter(locale, suffix string) (*CurrencyFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("invalid locale %q: %w", locale, err)
	}
	return &CurrencyFormatter{
		printer: message.NewPrinter(tag),
		suffix:  suffix,
	}, nil
}

// Format renders amount. It has no side effects.
func (f *CurrencyFormatter) Format(amount decimal.Decimal) string {
	s := f.printer.Sprintf("%d", amount.Round(0).IntPart())
	if f.suffix == "" {
		return s
	}
	return s + " " + f.suffix
}
