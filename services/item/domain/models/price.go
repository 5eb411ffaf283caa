package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

const (
	priceMaxDigits = 10
	priceScale     = 2
)

// priceLimit is the smallest magnitude that no longer fits NUMERIC(10,2).
var priceLimit = decimal.New(1, priceMaxDigits-priceScale)

// Price is a fixed-point amount with at most 10 digits, 2 of them fractional.
type Price struct {
	d decimal.Decimal
}

// NewPrice validates d and returns it as a Price rounded to two places.
// Values with significant digits beyond the second decimal place are rejected
// rather than rounded.
func NewPrice(d decimal.Decimal) (Price, error) {
	if !d.Equal(d.Truncate(priceScale)) {
		return Price{}, fmt.Errorf("ensure that there are no more than %d decimal places", priceScale)
	}
	if d.Abs().GreaterThanOrEqual(priceLimit) {
		return Price{}, fmt.Errorf("ensure that there are no more than %d digits in total", priceMaxDigits)
	}
	return Price{d: d.Round(priceScale)}, nil
}

// ParsePrice parses a decimal string such as "9.99".
func ParsePrice(s string) (Price, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Price{}, fmt.Errorf("a valid number is required")
	}
	return NewPrice(d)
}

// MustParsePrice is ParsePrice for constants in tests and fixtures.
func MustParsePrice(s string) Price {
	p, err := ParsePrice(s)
	if err != nil {
		panic(err)
	}
	return p
}

// Decimal returns the underlying decimal value.
func (p Price) Decimal() decimal.Decimal {
	return p.d
}

// String renders the price with exactly two decimal places.
func (p Price) String() string {
	return p.d.StringFixed(priceScale)
}

// Equal reports whether two prices represent the same amount.
func (p Price) Equal(o Price) bool {
	return p.d.Equal(o.d)
}
