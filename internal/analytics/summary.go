package analytics

import "expensetracker/internal/core"

// Summary holds the header figures of the dashboard.
type Summary struct {
	Total      core.Money     `json:"total"`
	Count      int            `json:"count"`
	Month      core.YearMonth `json:"month"`
	MonthLabel string         `json:"monthLabel"`
	MonthTotal core.Money     `json:"monthTotal"`
}

// Summarize totals all expenses and the expenses of the current month.
func Summarize(expenses []core.Expense, current core.YearMonth) Summary {
	return Summary{
		Total:      core.Total(expenses),
		Count:      len(expenses),
		Month:      current,
		MonthLabel: current.Label(),
		MonthTotal: core.Total(inMonth(expenses, current)),
	}
}
