// Package currency provides the supported currency catalog and the
// formatting and parsing of monetary amounts for display.
//
// Everything in this package is stateless: the registry is a fixed table
// and Format/Parse are pure functions, safe for concurrent use.
package currency

import (
	"errors"
	"fmt"
)

// Currency describes a supported currency. Values are immutable and are
// copied by value into session or persisted state.
type Currency struct {
	Code   string `json:"code"`
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Locale string `json:"locale"`
}

// ErrNotFound is returned by Find when no currency matches the code.
var ErrNotFound = errors.New("currency not found")

// registry is the ordered catalog offered to the user. Order matters.
var registry = []Currency{
	{Code: "INR", Symbol: "₹", Name: "Indian Rupee", Locale: "en-IN"},
	{Code: "USD", Symbol: "$", Name: "US Dollar", Locale: "en-US"},
	{Code: "EUR", Symbol: "€", Name: "Euro", Locale: "de-DE"},
	{Code: "GBP", Symbol: "£", Name: "British Pound", Locale: "en-GB"},
	{Code: "JPY", Symbol: "¥", Name: "Japanese Yen", Locale: "ja-JP"},
	{Code: "AUD", Symbol: "A$", Name: "Australian Dollar", Locale: "en-AU"},
	{Code: "CAD", Symbol: "C$", Name: "Canadian Dollar", Locale: "en-CA"},
	{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Locale: "en-SG"},
}

var defaultCurrency = Currency{Code: "USD", Symbol: "$", Name: "US Dollar", Locale: "en-US"}

// List returns the supported currencies in display order.
// The returned slice is a copy.
func List() []Currency {
	out := make([]Currency, len(registry))
	copy(out, registry)
	return out
}

// Find returns the registry entry with exactly the given code.
// Matching is case-sensitive.
func Find(code string) (Currency, error) {
	for _, c := range registry {
		if c.Code == code {
			return c, nil
		}
	}
	return Currency{}, fmt.Errorf("%w: %q", ErrNotFound, code)
}

// Default returns the currency used when none has been selected.
func Default() Currency {
	return defaultCurrency
}

// IsZero reports whether c is the zero descriptor.
func (c Currency) IsZero() bool {
	return c == Currency{}
}

func (c Currency) String() string {
	return c.Code
}

// orDefault substitutes the default descriptor for an absent one.
func orDefault(c *Currency) Currency {
	if c == nil || c.IsZero() {
		return defaultCurrency
	}
	return *c
}
