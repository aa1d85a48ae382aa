// Package analytics derives the list view, the monthly report and the
// chart series from a set of expenses. All functions are pure and never
// modify their input.
package analytics

import (
	"sort"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"expensetracker/internal/core"
)

// SortKey selects the order of the expense list.
type SortKey string

const (
	SortByDate     SortKey = "date"
	SortByAmount   SortKey = "amount"
	SortByCategory SortKey = "category"
)

// AllCategories disables the category filter.
const AllCategories = "all"

// ParseSortKey maps user input to a SortKey, defaulting to SortByDate.
func ParseSortKey(s string) SortKey {
	switch SortKey(strings.ToLower(strings.TrimSpace(s))) {
	case SortByAmount:
		return SortByAmount
	case SortByCategory:
		return SortByCategory
	default:
		return SortByDate
	}
}

// ListOptions filters and orders the expense list.
type ListOptions struct {
	// Search matches description or category, case-insensitively.
	Search string
	// Category restricts to one category; "" or "all" keeps every one.
	Category string
	Sort     SortKey
}

// Filter returns the expenses matching opts in the requested order.
// Dates and amounts sort newest and largest first; categories sort
// alphabetically. Ties keep their input order.
func Filter(expenses []core.Expense, opts ListOptions) []core.Expense {
	search := strings.ToLower(strings.TrimSpace(opts.Search))
	category := strings.TrimSpace(opts.Category)
	if strings.EqualFold(category, AllCategories) {
		category = ""
	}

	out := make([]core.Expense, 0, len(expenses))
	for _, e := range expenses {
		if category != "" && e.Category != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(e.Description), search) &&
			!strings.Contains(strings.ToLower(e.Category), search) {
			continue
		}
		out = append(out, e)
	}

	switch ParseSortKey(string(opts.Sort)) {
	case SortByAmount:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Amount.Cents > out[j].Amount.Cents
		})
	case SortByCategory:
		col := collate.New(language.English)
		sort.SliceStable(out, func(i, j int) bool {
			return col.CompareString(out[i].Category, out[j].Category) < 0
		})
	default:
		sortNewestFirst(out)
	}
	return out
}

func sortNewestFirst(expenses []core.Expense) {
	sort.SliceStable(expenses, func(i, j int) bool {
		return expenses[i].Date.After(expenses[j].Date.Time)
	})
}
