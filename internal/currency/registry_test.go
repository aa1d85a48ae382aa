package currency

import (
	"errors"
	"testing"
)

func TestListOrder(t *testing.T) {
	want := []string{"INR", "USD", "EUR", "GBP", "JPY", "AUD", "CAD", "SGD"}
	got := List()
	if len(got) != len(want) {
		t.Fatalf("expected %d currencies, got %d", len(want), len(got))
	}
	for i, code := range want {
		if got[i].Code != code {
			t.Errorf("position %d: expected %s, got %s", i, code, got[i].Code)
		}
	}
}

func TestListIsACopy(t *testing.T) {
	first := List()
	first[0].Symbol = "X"
	first[1] = Currency{}

	second := List()
	if second[0].Symbol != "₹" {
		t.Errorf("registry mutated through List: %q", second[0].Symbol)
	}
	if second[1].Code != "USD" {
		t.Errorf("registry mutated through List: %+v", second[1])
	}
}

func TestRegistryInvariants(t *testing.T) {
	seen := make(map[string]bool)
	for _, c := range List() {
		if seen[c.Code] {
			t.Errorf("duplicate code %s", c.Code)
		}
		seen[c.Code] = true
		if c.Symbol == "" || c.Locale == "" || c.Name == "" {
			t.Errorf("incomplete descriptor %+v", c)
		}
		if !isISOCode(c.Code) {
			t.Errorf("%s is not an ISO 4217 code", c.Code)
		}
		if _, ok := lookupConvention(c.Locale); !ok {
			t.Errorf("%s: no convention for locale %s", c.Code, c.Locale)
		}
	}
}

func TestFind(t *testing.T) {
	tests := []struct {
		code    string
		want    Currency
		wantErr bool
	}{
		{code: "INR", want: Currency{Code: "INR", Symbol: "₹", Name: "Indian Rupee", Locale: "en-IN"}},
		{code: "EUR", want: Currency{Code: "EUR", Symbol: "€", Name: "Euro", Locale: "de-DE"}},
		{code: "SGD", want: Currency{Code: "SGD", Symbol: "S$", Name: "Singapore Dollar", Locale: "en-SG"}},
		{code: "XXX", wantErr: true},
		{code: "usd", wantErr: true},
		{code: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			got, err := Find(tt.code)
			if tt.wantErr {
				if !errors.Is(err, ErrNotFound) {
					t.Fatalf("expected ErrNotFound, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("Find(%s) = %+v, want %+v", tt.code, got, tt.want)
			}
		})
	}
}

func TestDefault(t *testing.T) {
	d := Default()
	if d.Code != "USD" || d.Symbol != "$" || d.Locale != "en-US" {
		t.Fatalf("unexpected default %+v", d)
	}
	usd, err := Find("USD")
	if err != nil {
		t.Fatal(err)
	}
	if d != usd {
		t.Errorf("default %+v differs from registry entry %+v", d, usd)
	}
	if !(Currency{}).IsZero() || d.IsZero() {
		t.Error("IsZero mismatch")
	}
}
