package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"expensetracker/internal/core"
)

// RecentLimit caps the transactions listed in a monthly report.
const RecentLimit = 10

// CategoryTotal is one row of a category breakdown.
type CategoryTotal struct {
	Name       string     `json:"name"`
	Amount     core.Money `json:"amount"`
	Count      int        `json:"count"`
	Percentage float64    `json:"percentage"`
}

// Report summarises one calendar month. TopCategory is empty when the
// month has no expenses. ChangePercent is relative to PreviousTotal and is
// 0 when that is zero.
type Report struct {
	Month         core.YearMonth  `json:"month"`
	Label         string          `json:"label"`
	Total         core.Money      `json:"total"`
	Count         int             `json:"count"`
	AveragePerDay core.Money      `json:"averagePerDay"`
	Categories    []CategoryTotal `json:"categories"`
	TopCategory   string          `json:"topCategory"`
	TopAmount     core.Money      `json:"topAmount"`
	PreviousTotal core.Money      `json:"previousTotal"`
	Change        core.Money      `json:"change"`
	ChangePercent float64         `json:"changePercent"`
	Recent        []core.Expense  `json:"recent"`
}

// Increased reports whether spending went up compared with last month.
func (r Report) Increased() bool {
	return r.Change.Cents > 0
}

// MonthlyReport builds the report for month ym.
func MonthlyReport(expenses []core.Expense, ym core.YearMonth) Report {
	current := inMonth(expenses, ym)
	previous := inMonth(expenses, ym.Previous())

	total := core.Total(current)
	prevTotal := core.Total(previous)

	r := Report{
		Month:         ym,
		Label:         ym.Label(),
		Total:         total,
		Count:         len(current),
		AveragePerDay: divideCents(total, ym.DaysIn()),
		Categories:    breakdown(current),
		PreviousTotal: prevTotal,
		Change:        core.Money{Cents: total.Cents - prevTotal.Cents},
	}
	if prevTotal.Cents != 0 {
		r.ChangePercent = percent(r.Change.Cents, prevTotal.Cents)
	}
	if len(r.Categories) > 0 {
		r.TopCategory = r.Categories[0].Name
		r.TopAmount = r.Categories[0].Amount
	}

	sortNewestFirst(current)
	if current == nil {
		current = []core.Expense{}
	}
	if len(current) > RecentLimit {
		current = current[:RecentLimit]
	}
	r.Recent = current
	return r
}

// AvailableMonths lists the months that have expenses, plus current,
// newest first and without duplicates.
func AvailableMonths(expenses []core.Expense, current core.YearMonth) []core.YearMonth {
	seen := map[core.YearMonth]bool{current: true}
	months := []core.YearMonth{current}
	for _, e := range expenses {
		ym := e.Date.YearMonth()
		if !seen[ym] {
			seen[ym] = true
			months = append(months, ym)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		return months[j].Before(months[i])
	})
	return months
}

func inMonth(expenses []core.Expense, ym core.YearMonth) []core.Expense {
	var out []core.Expense
	for _, e := range expenses {
		if ym.Contains(e.Date) {
			out = append(out, e)
		}
	}
	return out
}

// breakdown aggregates by category, largest first, ties by name.
func breakdown(expenses []core.Expense) []CategoryTotal {
	index := make(map[string]int)
	var rows []CategoryTotal
	var total int64
	for _, e := range expenses {
		total += e.Amount.Cents
		i, ok := index[e.Category]
		if !ok {
			i = len(rows)
			index[e.Category] = i
			rows = append(rows, CategoryTotal{Name: e.Category})
		}
		rows[i].Amount = rows[i].Amount.Add(e.Amount)
		rows[i].Count++
	}
	for i := range rows {
		if total != 0 {
			rows[i].Percentage = percent(rows[i].Amount.Cents, total)
		}
	}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Amount.Cents != rows[j].Amount.Cents {
			return rows[i].Amount.Cents > rows[j].Amount.Cents
		}
		return rows[i].Name < rows[j].Name
	})
	if rows == nil {
		rows = []CategoryTotal{}
	}
	return rows
}

// percent returns part/whole*100 rounded to one decimal.
func percent(part, whole int64) float64 {
	return decimal.NewFromInt(part).
		Mul(decimal.NewFromInt(100)).
		Div(decimal.NewFromInt(whole)).
		Round(1).
		InexactFloat64()
}

func divideCents(m core.Money, n int) core.Money {
	if n <= 0 {
		return core.Money{}
	}
	q := decimal.NewFromInt(m.Cents).Div(decimal.NewFromInt(int64(n))).Round(0)
	return core.Money{Cents: q.IntPart()}
}
