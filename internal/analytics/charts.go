package analytics

import (
	"sort"

	"expensetracker/internal/core"
)

// DefaultTrendDays is the length of the daily spending series.
const DefaultTrendDays = 30

// MonthTotal is one point of the monthly totals chart.
type MonthTotal struct {
	Month core.YearMonth `json:"month"`
	// Label is the short axis label, e.g. "Mar 2024".
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

// DayTotal is one point of the daily trend chart.
type DayTotal struct {
	Date core.Date `json:"date"`
	// Label is the short axis label, e.g. "Mar 5".
	Label string     `json:"label"`
	Total core.Money `json:"total"`
}

// Charts bundles the series shown on the dashboard.
type Charts struct {
	Categories []CategoryTotal `json:"categories"`
	Monthly    []MonthTotal    `json:"monthly"`
	Daily      []DayTotal      `json:"daily"`
}

// CategoryShares aggregates all expenses by category, largest first, with
// each category's share of the grand total.
func CategoryShares(expenses []core.Expense) []CategoryTotal {
	return breakdown(expenses)
}

// MonthlyTotals sums expenses per month, oldest month first.
func MonthlyTotals(expenses []core.Expense) []MonthTotal {
	sums := make(map[core.YearMonth]core.Money)
	for _, e := range expenses {
		ym := e.Date.YearMonth()
		sums[ym] = sums[ym].Add(e.Amount)
	}
	out := make([]MonthTotal, 0, len(sums))
	for ym, total := range sums {
		out = append(out, MonthTotal{
			Month: ym,
			Label: ym.Start().Format("Jan 2006"),
			Total: total,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Month.Before(out[j].Month)
	})
	return out
}

// DailySeries returns one point per day for the days ending at today,
// oldest first. Days without expenses are zero.
func DailySeries(expenses []core.Expense, today core.Date, days int) []DayTotal {
	if days <= 0 {
		return []DayTotal{}
	}
	sums := make(map[core.Date]core.Money)
	for _, e := range expenses {
		sums[e.Date] = sums[e.Date].Add(e.Amount)
	}

	out := make([]DayTotal, 0, days)
	for i := days - 1; i >= 0; i-- {
		d := core.DateOf(today.AddDate(0, 0, -i))
		out = append(out, DayTotal{
			Date:  d,
			Label: d.Format("Jan 2"),
			Total: sums[d],
		})
	}
	return out
}

// BuildCharts computes every dashboard series.
func BuildCharts(expenses []core.Expense, today core.Date, days int) Charts {
	return Charts{
		Categories: CategoryShares(expenses),
		Monthly:    MonthlyTotals(expenses),
		Daily:      DailySeries(expenses, today, days),
	}
}
