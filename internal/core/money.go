package core

import (
	"fmt"
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// Money is an amount in hundredths of the currency unit. Cents keep sums
// exact; floats only appear at the formatting boundary.
type Money struct {
	Cents int64
}

// maxCents bounds amounts so that sums of realistic expense lists stay
// far from int64 overflow.
const maxCents = int64(1) << 53

// NewMoney converts a user-supplied amount to cents, rounding half away
// from zero. NaN and infinities are rejected with ErrNonFinite.
func NewMoney(amount float64) (Money, error) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return Money{}, ErrNonFinite
	}
	cents := decimal.NewFromFloat(amount).Shift(2).Round(0)
	if cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return Money{}, fmt.Errorf("%w: %v out of range", ErrInvalidAmount, amount)
	}
	return Money{Cents: cents.IntPart()}, nil
}

// ParseDecimalToCents converts a strictly positive decimal string to cents.
//
// Both dot (12.34) and comma (12,34) decimal separators are accepted, and
// the value is rounded half away from zero at the third decimal place:
//
//	ParseDecimalToCents("12.34")  -> 1234
//	ParseDecimalToCents("12,345") -> 1235
//
// Signs, exponents, zero and malformed input return ErrInvalidAmount.
func ParseDecimalToCents(s string) (int64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	if s == "" || strings.ContainsAny(s, "+-eE") {
		return 0, ErrInvalidAmount
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, ErrInvalidAmount
	}
	cents := d.Shift(2).Round(0)
	if !cents.IsPositive() || cents.GreaterThan(decimal.NewFromInt(maxCents)) {
		return 0, ErrInvalidAmount
	}
	return cents.IntPart(), nil
}

func (m Money) Validate() error {
	if m.Cents <= 0 {
		return ErrInvalidAmount
	}
	return nil
}

// Float returns the amount in currency units for display.
// Use Cents for arithmetic.
func (m Money) Float() float64 {
	return m.Decimal().InexactFloat64()
}

// Decimal returns the exact amount in currency units.
func (m Money) Decimal() decimal.Decimal {
	return decimal.New(m.Cents, -2)
}

func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

func (m Money) String() string {
	return m.Decimal().StringFixed(2)
}

// MarshalJSON encodes the amount as a plain number with two decimals.
func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(m.String()), nil
}

// UnmarshalJSON accepts any JSON number, or a numeric string.
func (m *Money) UnmarshalJSON(b []byte) error {
	s := strings.Trim(strings.TrimSpace(string(b)), `"`)
	if s == "" || s == "null" {
		*m = Money{}
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrInvalidAmount, s)
	}
	cents := d.Shift(2).Round(0)
	if cents.Abs().GreaterThan(decimal.NewFromInt(maxCents)) {
		return fmt.Errorf("%w: %s out of range", ErrInvalidAmount, s)
	}
	*m = Money{Cents: cents.IntPart()}
	return nil
}
