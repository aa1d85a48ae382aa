package currency

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// noBreakSpace separates the number from a trailing symbol.
const noBreakSpace = "\u00a0"

// Format renders amount in the given currency with exactly two fractional
// digits. A nil or zero descriptor is replaced by Default().
//
// The amount is rounded once, half away from zero, before any grouping:
// Format(10.005, USD) is "$10.01". A value that rounds to zero is rendered
// without a sign. Negative amounts carry a leading "-".
//
// INR uses Indian grouping (12,34,567.89). Every other currency is
// formatted with the conventions of its locale; unknown locales and
// non-ISO codes fall back to symbol + comma-grouped thousands.
func Format(amount float64, c *Currency) string {
	cur := orDefault(c)
	if math.IsNaN(amount) || math.IsInf(amount, 0) {
		return formatNonFinite(amount, cur.Symbol)
	}
	return formatDecimal(decimal.NewFromFloat(amount), cur)
}

// FormatCents renders an amount expressed in hundredths of the unit.
func FormatCents(cents int64, c *Currency) string {
	return formatDecimal(decimal.New(cents, -2), orDefault(c))
}

func formatDecimal(d decimal.Decimal, cur Currency) string {
	rounded := d.Round(2)
	negative := rounded.Sign() < 0
	intPart, frac := splitFixed(rounded.Abs())

	if cur.Code == "INR" {
		return formatIndian(intPart, frac, cur.Symbol, negative)
	}
	return formatGeneric(intPart, frac, cur, negative)
}

// formatIndian groups the integer part as 3 then 2, 2, ... from the right.
func formatIndian(intPart, frac, symbol string, negative bool) string {
	s := symbol + groupDigits(intPart, ",", groupIndian) + "." + frac
	if negative {
		return "-" + s
	}
	return s
}

func formatGeneric(intPart, frac string, cur Currency, negative bool) string {
	conv := genericConvention(cur)
	number := groupDigits(intPart, conv.group, conv.style) + conv.decimal + frac

	var s string
	if conv.symbolAfter {
		s = number + noBreakSpace + cur.Symbol
	} else {
		s = cur.Symbol + number
	}
	if negative {
		return "-" + s
	}
	return s
}

// splitFixed returns the integer digits and the two fraction digits of a
// non-negative decimal.
func splitFixed(d decimal.Decimal) (string, string) {
	s := d.StringFixed(2)
	i := strings.IndexByte(s, '.')
	if i < 0 {
		return s, "00"
	}
	return s[:i], s[i+1:]
}

// groupDigits inserts sep into a string of digits. The rightmost group
// always has three digits; the others have three digits, or two for
// Indian grouping. The leftmost group is never padded.
func groupDigits(digits, sep string, style groupingStyle) string {
	if len(digits) <= 3 {
		return digits
	}
	size := 3
	if style == groupIndian {
		size = 2
	}

	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]
	groups := []string{tail}
	for len(head) > size {
		groups = append(groups, head[len(head)-size:])
		head = head[:len(head)-size]
	}
	groups = append(groups, head)

	for i, j := 0, len(groups)-1; i < j; i, j = i+1, j-1 {
		groups[i], groups[j] = groups[j], groups[i]
	}
	return strings.Join(groups, sep)
}

func formatNonFinite(amount float64, symbol string) string {
	switch {
	case math.IsNaN(amount):
		return symbol + "NaN"
	case amount < 0:
		return "-" + symbol + "Inf"
	default:
		return symbol + "Inf"
	}
}
