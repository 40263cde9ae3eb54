package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a fixed-precision currency value used for prices, bids, and
// purses. Amounts are expressed in crore with one decimal place by
// convention (the UI steps bids in 0.1 units); arithmetic is exact and
// never goes through binary floating point.
type Money struct {
	amount decimal.Decimal
}

// FixedIncrementUnit is the mandatory step between bids on a lot running
// in fixed increment mode.
var FixedIncrementUnit = Money{amount: decimal.RequireFromString("0.2")}

// NewMoney wraps a decimal value as Money.
// Returns ErrInvalidAmount for negative values.
func NewMoney(d decimal.Decimal) (Money, error) {
	if d.IsNegative() {
		return Money{}, fmt.Errorf("%w: amount must not be negative, got %s", ErrInvalidAmount, d)
	}
	return Money{amount: d}, nil
}

// ParseMoney parses a decimal string ("2.5") as Money.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("%w: %q is not a decimal amount", ErrInvalidAmount, s)
	}
	return NewMoney(d)
}

// MustMoney is ParseMoney that panics on error. For fixed seed values and
// tests only.
func MustMoney(s string) Money {
	m, err := ParseMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

// Add returns m + other.
func (m Money) Add(other Money) Money {
	return Money{amount: m.amount.Add(other.amount)}
}

// Sub returns m - other, failing with ErrInvalidAmount if the result would
// be negative.
func (m Money) Sub(other Money) (Money, error) {
	return NewMoney(m.amount.Sub(other.amount))
}

// Cmp compares two amounts: -1 if m < other, 0 if equal, +1 if m > other.
func (m Money) Cmp(other Money) int {
	return m.amount.Cmp(other.amount)
}

// GreaterThan reports whether m > other.
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Equal reports exact numeric equality (2.0 equals 2.00).
func (m Money) Equal(other Money) bool {
	return m.amount.Equal(other.amount)
}

// IsZero reports whether the amount is exactly zero.
func (m Money) IsZero() bool {
	return m.amount.IsZero()
}

// IsPositive reports whether the amount is strictly greater than zero.
func (m Money) IsPositive() bool {
	return m.amount.IsPositive()
}

// IsExactIncrementAbove reports whether m equals base + unit exactly.
func (m Money) IsExactIncrementAbove(base, unit Money) bool {
	return m.amount.Sub(base.amount).Equal(unit.amount)
}

// Decimal exposes the underlying decimal value, e.g. for persistence.
func (m Money) Decimal() decimal.Decimal {
	return m.amount
}

func (m Money) String() string {
	return m.amount.String()
}

// MarshalJSON renders the amount as a JSON string so clients never receive
// a binary float.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.amount.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare number.
func (m *Money) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	parsed, err := ParseMoney(s)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
