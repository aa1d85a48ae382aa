package core

import (
	"fmt"
	"time"
)

// YearMonth identifies a calendar month.
type YearMonth struct {
	Year  int        `json:"year"`
	Month time.Month `json:"month"`
}

// MonthOf returns the month t falls in.
func MonthOf(t time.Time) YearMonth {
	return YearMonth{Year: t.Year(), Month: t.Month()}
}

// ParseYearMonth parses "YYYY-MM".
func ParseYearMonth(s string) (YearMonth, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return YearMonth{}, fmt.Errorf("%w: month %q", ErrInvalidDate, s)
	}
	return MonthOf(t), nil
}

// NewYearMonth validates year and month (1-12).
func NewYearMonth(year, month int) (YearMonth, error) {
	if month < 1 || month > 12 || year < 1 || year > 9999 {
		return YearMonth{}, fmt.Errorf("%w: month %d-%d", ErrInvalidDate, year, month)
	}
	return YearMonth{Year: year, Month: time.Month(month)}, nil
}

func (ym YearMonth) String() string {
	return fmt.Sprintf("%04d-%02d", ym.Year, int(ym.Month))
}

// Label renders the month for display, e.g. "March 2024".
func (ym YearMonth) Label() string {
	return fmt.Sprintf("%s %d", ym.Month, ym.Year)
}

func (ym YearMonth) Start() time.Time {
	return time.Date(ym.Year, ym.Month, 1, 0, 0, 0, 0, time.UTC)
}

func (ym YearMonth) Previous() YearMonth {
	return MonthOf(ym.Start().AddDate(0, -1, 0))
}

func (ym YearMonth) Next() YearMonth {
	return MonthOf(ym.Start().AddDate(0, 1, 0))
}

// DaysIn returns the number of days in the month.
func (ym YearMonth) DaysIn() int {
	return ym.Next().Start().AddDate(0, 0, -1).Day()
}

func (ym YearMonth) Contains(d Date) bool {
	return d.Year() == ym.Year && d.Month() == ym.Month
}

func (ym YearMonth) Before(o YearMonth) bool {
	if ym.Year != o.Year {
		return ym.Year < o.Year
	}
	return ym.Month < o.Month
}
