// Package money converts between the decimal values used for
// arithmetic and the Decimal128 representation stored in MongoDB.
// Amounts are always handled as exact decimals; float64 never touches
// a ledger figure.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Zero is the canonical zero amount.
var Zero = decimal.Zero

// ToDecimal128 converts d for storage.
func ToDecimal128(d decimal.Decimal) (primitive.Decimal128, error) {
	out, err := primitive.ParseDecimal128(d.String())
	if err != nil {
		return primitive.Decimal128{}, fmt.Errorf("money: convert %s: %w", d, err)
	}
	return out, nil
}

// MustDecimal128 is ToDecimal128 for values known to be valid, such
// as constants in tests.
func MustDecimal128(d decimal.Decimal) primitive.Decimal128 {
	out, err := ToDecimal128(d)
	if err != nil {
		panic(err)
	}
	return out
}

// FromDecimal128 converts a stored amount back to a decimal.
func FromDecimal128(v primitive.Decimal128) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(v.String())
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("money: parse %s: %w", v, err)
	}
	return d, nil
}

// Parse reads a user-supplied amount string ("120", "45.50", "-10").
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("money: parse %q: %w", s, err)
	}
	return d, nil
}

// Format renders an amount with two decimal places for display.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}
