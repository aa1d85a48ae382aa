// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"expensetracker/internal/core"
	"expensetracker/internal/currency"
)

// maxBodyBytes bounds request bodies.
const maxBodyBytes = 64 << 10

// ErrBadBody is returned for bodies that are neither JSON nor a form.
var ErrBadBody = errors.New("malformed request body")

// ParseMonthParams reads year and month from query parameters. Missing
// values default to def; "month" may also be given as "YYYY-MM".
func ParseMonthParams(query url.Values, def core.YearMonth) (core.YearMonth, error) {
	month := strings.TrimSpace(query.Get("month"))
	if strings.Contains(month, "-") {
		return core.ParseYearMonth(month)
	}

	year, m := def.Year, int(def.Month)
	if v := strings.TrimSpace(query.Get("year")); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return core.YearMonth{}, fmt.Errorf("%w: year %q", core.ErrInvalidDate, v)
		}
		year = y
	}
	if month != "" {
		n, err := strconv.Atoi(month)
		if err != nil {
			return core.YearMonth{}, fmt.Errorf("%w: month %q", core.ErrInvalidDate, month)
		}
		m = n
	}
	return core.NewYearMonth(year, m)
}

// ParseExpenseInput overlays the fields present in the body on base.
// Amounts are read with f, so "1.234,56" means 1234.56 for a de-DE
// currency; JSON numbers are taken as they are.
func ParseExpenseInput(p *RequestBodyParser, f currency.Formatter, base core.ExpenseInput) (core.ExpenseInput, error) {
	if err := p.Parse(); err != nil {
		return core.ExpenseInput{}, err
	}
	in := base

	if v, ok := p.Number("amount"); ok {
		m, err := core.NewMoney(v)
		if err != nil {
			return core.ExpenseInput{}, err
		}
		in.Amount = m
	} else if p.Has("amount") {
		m, err := core.NewMoney(f.Parse(p.Get("amount")))
		if err != nil {
			return core.ExpenseInput{}, err
		}
		in.Amount = m
	}

	if p.Has("description") {
		in.Description = p.Get("description")
	}
	if p.Has("category") {
		in.Category = p.Get("category")
	}
	if v := p.Get("date"); v != "" {
		d, err := core.ParseDate(v)
		if err != nil {
			return core.ExpenseInput{}, err
		}
		in.Date = d
	}
	return in, nil
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body        []byte
	contentType string
	jsonData    map[string]interface{}
	formData    url.Values
	parsed      bool
	err         error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once and stores it for subsequent parsing.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{
		contentType: r.Header.Get("Content-Type"),
	}

	if r.Body == nil {
		return p
	}
	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	// Try JSON first if content looks like JSON
	if p.body[0] == '{' || p.body[0] == '[' {
		p.jsonData = make(map[string]interface{})
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.jsonData = nil
			p.err = fmt.Errorf("%w: %v", ErrBadBody, err)
			return p.err
		}
		return nil
	}

	// Fall back to form parsing
	p.formData, p.err = url.ParseQuery(string(p.body))
	if p.err != nil {
		p.err = fmt.Errorf("%w: %v", ErrBadBody, p.err)
	}
	return p.err
}

// Has reports whether key was sent, even if empty.
func (p *RequestBodyParser) Has(key string) bool {
	if p.jsonData != nil {
		_, ok := p.jsonData[key]
		return ok
	}
	if p.formData != nil {
		_, ok := p.formData[key]
		return ok
	}
	return false
}

// Number returns key when it was sent as a JSON number.
func (p *RequestBodyParser) Number(key string) (float64, bool) {
	if p.jsonData == nil {
		return 0, false
	}
	v, ok := p.jsonData[key].(float64)
	return v, ok
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return strings.TrimSpace(sanitizeInput(stringValue(val)))
		}
	}
	if p.formData != nil {
		return strings.TrimSpace(sanitizeInput(p.formData.Get(key)))
	}
	return ""
}

// GetRaw returns the raw body bytes.
func (p *RequestBodyParser) GetRaw() []byte {
	return p.body
}

// ContentType returns the Content-Type header value.
func (p *RequestBodyParser) ContentType() string {
	return p.contentType
}

// IsJSON returns true if the parsed content was JSON.
func (p *RequestBodyParser) IsJSON() bool {
	return p.jsonData != nil
}

// stringValue converts an interface{} to string.
func stringValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
