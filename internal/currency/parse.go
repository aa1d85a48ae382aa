package currency

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"unicode"
)

// glyphs are the bare currency signs removed from user input.
const glyphs = "₹$€£¥￥"

// numberPrefix matches the leading decimal number of a cleaned input.
var numberPrefix = regexp.MustCompile(`^[+-]?(?:\d+(?:\.\d*)?|\.\d+)(?:[eE][+-]?\d+)?`)

// dotFraction matches a "." followed by one or two digits and no more.
var dotFraction = regexp.MustCompile(`\.\d{1,2}(?:\D|$)`)

// symbolStripper removes every registry symbol, longest first so that
// "A$" is removed as a whole.
var symbolStripper = newSymbolStripper()

func newSymbolStripper() *strings.Replacer {
	symbols := make([]string, 0, len(registry))
	for _, c := range registry {
		symbols = append(symbols, c.Symbol)
	}
	sort.SliceStable(symbols, func(i, j int) bool {
		return len(symbols[i]) > len(symbols[j])
	})

	pairs := make([]string, 0, 2*len(symbols))
	for _, s := range symbols {
		pairs = append(pairs, s, "")
	}
	return strings.NewReplacer(pairs...)
}

// Parse extracts a number from free-text input such as "₹12,34,567.89" or
// "-$500.00". Currency symbols, commas and white space are ignored and the
// leading decimal number of what remains is returned.
//
// Parse is lenient: empty or non-numeric input yields 0 rather than an
// error, so form fields never block on a typo.
func Parse(input string) float64 {
	m := numberPrefix.FindString(clean(input))
	if m == "" {
		return 0
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v == 0 {
		return 0
	}
	return v
}

// ParseFor is like Parse but first undoes the separators of c's locale, so
// "1.234,56 €" reads as 1234.56 for a de-DE currency. A nil descriptor
// means Default().
//
// Input without the locale's decimal separator and with a single "."
// followed by one or two digits is read with a dot decimal: "12.50" is
// 12.5 under EUR, while "1.234" stays 1234.
func ParseFor(input string, c *Currency) float64 {
	conv := conventionFor(orDefault(c))
	if conv.decimal == "." || dotDecimal(input, conv) {
		return Parse(input)
	}
	s := strings.ReplaceAll(input, conv.group, "")
	s = strings.ReplaceAll(s, conv.decimal, ".")
	return Parse(s)
}

func dotDecimal(input string, conv convention) bool {
	return !strings.Contains(input, conv.decimal) &&
		strings.Count(input, ".") == 1 &&
		dotFraction.MatchString(input)
}

func clean(input string) string {
	s := symbolStripper.Replace(input)
	return strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || strings.ContainsRune(glyphs, r) {
			return -1
		}
		return r
	}, s)
}
