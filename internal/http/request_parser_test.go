package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"expensetracker/internal/core"
	"expensetracker/internal/currency"
)

func TestParseMonthParams(t *testing.T) {
	def := core.YearMonth{Year: 2024, Month: time.March}
	tests := []struct {
		name    string
		query   url.Values
		want    core.YearMonth
		wantErr bool
	}{
		{"both values provided", url.Values{"year": {"2023"}, "month": {"12"}}, core.YearMonth{Year: 2023, Month: time.December}, false},
		{"only year", url.Values{"year": {"2023"}}, core.YearMonth{Year: 2023, Month: time.March}, false},
		{"only month", url.Values{"month": {"5"}}, core.YearMonth{Year: 2024, Month: time.May}, false},
		{"empty query uses default", url.Values{}, def, false},
		{"year-month form", url.Values{"month": {"2022-07"}, "year": {"1999"}}, core.YearMonth{Year: 2022, Month: time.July}, false},
		{"month out of range", url.Values{"month": {"13"}}, core.YearMonth{}, true},
		{"non-numeric year", url.Values{"year": {"abc"}}, core.YearMonth{}, true},
		{"bad year-month", url.Values{"month": {"2022-14"}}, core.YearMonth{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthParams(tt.query, def)
			if tt.wantErr {
				if !errors.Is(err, core.ErrInvalidDate) {
					t.Fatalf("err = %v, want ErrInvalidDate", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func parserFor(body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/api/expenses", strings.NewReader(body))
	return NewRequestBodyParser(req)
}

func TestParseExpenseInput(t *testing.T) {
	eur, err := currency.Find("EUR")
	if err != nil {
		t.Fatal(err)
	}
	euro := currency.NewFormatter(&eur)
	base := core.ExpenseInput{
		Amount:      core.Money{Cents: 100},
		Category:    "Other",
		Description: "base",
		Date:        core.NewDate(2024, 3, 15),
	}

	tests := []struct {
		name string
		body string
		f    currency.Formatter
		want core.ExpenseInput
	}{
		{
			name: "form with locale amount",
			body: url.Values{"amount": {"1.234,56 €"}, "description": {"Rent"}, "category": {"Bills & Utilities"}, "date": {"2024-03-01"}}.Encode(),
			f:    euro,
			want: core.ExpenseInput{Amount: core.Money{Cents: 123456}, Category: "Bills & Utilities", Description: "Rent", Date: core.NewDate(2024, 3, 1)},
		},
		{
			name: "json number ignores locale",
			body: `{"amount": 1234.5}`,
			f:    euro,
			want: core.ExpenseInput{Amount: core.Money{Cents: 123450}, Category: "Other", Description: "base", Date: core.NewDate(2024, 3, 15)},
		},
		{
			name: "missing fields keep base",
			body: `{"description": "changed"}`,
			f:    currency.NewFormatter(nil),
			want: core.ExpenseInput{Amount: core.Money{Cents: 100}, Category: "Other", Description: "changed", Date: core.NewDate(2024, 3, 15)},
		},
		{
			name: "garbage amount becomes zero",
			body: "amount=abc",
			f:    currency.NewFormatter(nil),
			want: core.ExpenseInput{Amount: core.Money{}, Category: "Other", Description: "base", Date: core.NewDate(2024, 3, 15)},
		},
		{
			name: "control characters are stripped",
			body: url.Values{"description": {"Tea\x00\x07 time"}}.Encode(),
			f:    currency.NewFormatter(nil),
			want: core.ExpenseInput{Amount: core.Money{Cents: 100}, Category: "Other", Description: "Tea time", Date: core.NewDate(2024, 3, 15)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseExpenseInput(parserFor(tt.body), tt.f, base)
			if err != nil {
				t.Fatal(err)
			}
			if got.Amount != tt.want.Amount || got.Category != tt.want.Category ||
				got.Description != tt.want.Description || !got.Date.Equal(tt.want.Date.Time) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseExpenseInputErrors(t *testing.T) {
	usd := currency.NewFormatter(nil)
	tests := []struct {
		name   string
		body   string
		target error
	}{
		{"bad date", "date=2024-13-01", core.ErrInvalidDate},
		{"malformed json", `{"amount":`, ErrBadBody},
		{"json array", `[1,2]`, ErrBadBody},
		{"bad form encoding", "amount=%zz", ErrBadBody},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseExpenseInput(parserFor(tt.body), usd, core.ExpenseInput{})
			if !errors.Is(err, tt.target) {
				t.Errorf("err = %v, want %v", err, tt.target)
			}
		})
	}
}

func TestRequestBodyParser_JSON(t *testing.T) {
	body := `{"id": "123", "name": "test", "amount": 42.5}`
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if !parser.IsJSON() {
		t.Error("Expected IsJSON() to be true")
	}

	if id := parser.Get("id"); id != "123" {
		t.Errorf("Get('id') = %q, want '123'", id)
	}

	if name := parser.Get("name"); name != "test" {
		t.Errorf("Get('name') = %q, want 'test'", name)
	}

	if amount := parser.Get("amount"); amount != "42.5" {
		t.Errorf("Get('amount') = %q, want '42.5'", amount)
	}
}

func TestRequestBodyParser_FormData(t *testing.T) {
	body := "id=456&name=form+test&value=100"
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if parser.IsJSON() {
		t.Error("Expected IsJSON() to be false for form data")
	}

	if id := parser.Get("id"); id != "456" {
		t.Errorf("Get('id') = %q, want '456'", id)
	}

	if name := parser.Get("name"); name != "form test" {
		t.Errorf("Get('name') = %q, want 'form test'", name)
	}
}

func TestRequestBodyParser_EmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/test", strings.NewReader(""))

	parser := NewRequestBodyParser(req)
	err := parser.Parse()
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if val := parser.Get("nonexistent"); val != "" {
		t.Errorf("Get('nonexistent') = %q, want empty string", val)
	}
}

func TestRequestBodyParser_Has(t *testing.T) {
	p := parserFor(`{"amount": "", "n": 3}`)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if !p.Has("amount") || p.Has("missing") {
		t.Error("Has should report sent keys only")
	}
	if v, ok := p.Number("n"); !ok || v != 3 {
		t.Errorf("Number(n) = %v, %v", v, ok)
	}
	if _, ok := p.Number("amount"); ok {
		t.Error("a string is not a number")
	}

	form := parserFor("amount=&x=1")
	if err := form.Parse(); err != nil {
		t.Fatal(err)
	}
	if !form.Has("amount") {
		t.Error("empty form values are still present")
	}
	if _, ok := form.Number("x"); ok {
		t.Error("form values are never numbers")
	}
}

func TestRequestBodyParser_LimitsBody(t *testing.T) {
	body := "description=" + strings.Repeat("a", maxBodyBytes)
	p := parserFor(body)
	if err := p.Parse(); err != nil {
		t.Fatal(err)
	}
	if got := len(p.GetRaw()); got != maxBodyBytes {
		t.Errorf("read %d bytes, want %d", got, maxBodyBytes)
	}
}
