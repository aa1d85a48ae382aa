// Package core holds the expense tracker domain types: money amounts,
// calendar dates, expenses and their categories.
package core

import (
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxDescriptionLength is the longest description accepted, in characters.
const MaxDescriptionLength = 200

const dateLayout = "2006-01-02"

type (
	// Date is a calendar day, stored as UTC midnight.
	Date struct {
		time.Time
	}

	// ExpenseInput carries the user-editable fields of an expense.
	ExpenseInput struct {
		Amount      Money  `json:"amount"`
		Category    string `json:"category"`
		Description string `json:"description"`
		Date        Date   `json:"date"`
	}

	// Expense is a recorded expense. The JSON layout is the persisted one.
	Expense struct {
		ID          string    `json:"id"`
		Amount      Money     `json:"amount"`
		Category    string    `json:"category"`
		Description string    `json:"description"`
		Date        Date      `json:"date"`
		CreatedAt   time.Time `json:"createdAt"`
	}
)

var (
	ErrInvalidDate        = errors.New("invalid date")
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrNonFinite          = errors.New("amount is not a finite number")
	ErrEmptyDescription   = errors.New("empty description")
	ErrDescriptionTooLong = fmt.Errorf("description too long (max %d characters)", MaxDescriptionLength)
	ErrInvalidCategory    = errors.New("invalid category")
	ErrExpenseNotFound    = errors.New("expense not found")
)

var categories = []string{
	"Food & Dining",
	"Transportation",
	"Shopping",
	"Entertainment",
	"Bills & Utilities",
	"Healthcare",
	"Travel",
	"Education",
	"Other",
}

// Categories returns the expense categories in display order.
func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// IsCategory reports whether name is one of Categories.
func IsCategory(name string) bool {
	for _, c := range categories {
		if c == name {
			return true
		}
	}
	return false
}

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar day in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, int(m), d)
}

// ParseDate parses a "YYYY-MM-DD" string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) Validate() error {
	if d.IsZero() {
		return fmt.Errorf("%w: date cannot be zero", ErrInvalidDate)
	}
	return nil
}

func (d Date) String() string {
	return d.Format(dateLayout)
}

// YearMonth returns the month the date falls in.
func (d Date) YearMonth() YearMonth {
	return YearMonth{Year: d.Year(), Month: d.Month()}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte(`""`), nil
	}
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (in ExpenseInput) Validate() error {
	if err := in.Date.Validate(); err != nil {
		return err
	}
	if strings.TrimSpace(in.Description) == "" {
		return ErrEmptyDescription
	}
	if utf8.RuneCountInString(in.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if err := in.Amount.Validate(); err != nil {
		return err
	}
	if !IsCategory(in.Category) {
		return fmt.Errorf("%w: %q", ErrInvalidCategory, in.Category)
	}
	return nil
}

// Input returns the user-editable fields of e.
func (e Expense) Input() ExpenseInput {
	return ExpenseInput{
		Amount:      e.Amount,
		Category:    e.Category,
		Description: e.Description,
		Date:        e.Date,
	}
}

func (e Expense) Validate() error {
	if strings.TrimSpace(e.ID) == "" {
		return errors.New("expense has no id")
	}
	return e.Input().Validate()
}

// IsValidationError reports whether err was caused by invalid user input.
func IsValidationError(err error) bool {
	for _, target := range []error{
		ErrInvalidDate, ErrInvalidAmount, ErrNonFinite,
		ErrEmptyDescription, ErrDescriptionTooLong, ErrInvalidCategory,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
