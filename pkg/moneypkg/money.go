// Package moneypkg provides the exact non-negative decimal value type used
// for account balances.
package moneypkg

import (
	"errors"

	"github.com/shopspring/decimal"
)

// ErrNegativeAmount indicates an attempt to construct a negative Money value.
var ErrNegativeAmount = errors.New("negative amount")

// displayPlaces is the number of fractional digits of the externally
// reported balance.
const displayPlaces = 2

// Money is an exact non-negative decimal amount. Internally it is a big
// integer coefficient plus a scale, so additions and subtractions carry the
// full precision of their operands. The zero value is ready to use and
// equals zero.
type Money struct {
	dec decimal.Decimal
}

// Zero is the zero amount.
var Zero = Money{}

// FromString parses an integer or finite decimal literal at full precision.
func FromString(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}

	if d.IsNegative() {
		return Money{}, ErrNegativeAmount
	}

	return Money{dec: d}, nil
}

// Add returns m + o exactly.
func (m Money) Add(o Money) Money {
	return Money{dec: m.dec.Add(o.dec)}
}

// Sub returns m - o exactly. Callers must ensure m >= o via GTE; Money
// values never go negative.
func (m Money) Sub(o Money) Money {
	return Money{dec: m.dec.Sub(o.dec)}
}

// GTE reports whether m >= o.
func (m Money) GTE(o Money) bool {
	return m.dec.GreaterThanOrEqual(o.dec)
}

// Compare returns -1, 0 or 1 comparing m against o by value, so 10.5 and
// 10.50 compare equal.
func (m Money) Compare(o Money) int {
	return m.dec.Cmp(o.dec)
}

// IsPositive reports whether m > 0.
func (m Money) IsPositive() bool {
	return m.dec.IsPositive()
}

// Display returns the externally visible amount: truncated toward zero to
// exactly two fractional digits. Truncation never shows money the user
// does not have. This is the only place precision is discarded.
func (m Money) Display() string {
	return m.dec.Truncate(displayPlaces).StringFixed(displayPlaces)
}

// String returns the full-precision decimal form.
func (m Money) String() string {
	return m.dec.String()
}
