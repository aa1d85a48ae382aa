package analytics

import (
	"testing"
	"time"

	"expensetracker/internal/core"
)

func exp(id string, cents int64, category, desc string, y, m, d int) core.Expense {
	return core.Expense{
		ID:          id,
		Amount:      core.Money{Cents: cents},
		Category:    category,
		Description: desc,
		Date:        core.NewDate(y, m, d),
	}
}

func fixture() []core.Expense {
	return []core.Expense{
		exp("1", 1500, "Food & Dining", "Lunch with team", 2024, 3, 10),
		exp("2", 4000, "Transportation", "Monthly metro pass", 2024, 3, 1),
		exp("3", 2500, "Shopping", "Books", 2024, 3, 15),
		exp("4", 1000, "Food & Dining", "Coffee beans", 2024, 2, 20),
		exp("5", 20000, "Bills & Utilities", "Electricity", 2024, 2, 5),
		exp("6", 700, "Entertainment", "Movie", 2023, 12, 31),
	}
}

func ids(expenses []core.Expense) []string {
	out := make([]string, len(expenses))
	for i, e := range expenses {
		out[i] = e.ID
	}
	return out
}

func equalIDs(t *testing.T, got []core.Expense, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("got %v, want %v", g, want)
	}
	for i := range want {
		if g[i] != want[i] {
			t.Fatalf("got %v, want %v", g, want)
		}
	}
}

func TestFilterDefaultSortsNewestFirst(t *testing.T) {
	equalIDs(t, Filter(fixture(), ListOptions{}), "3", "1", "2", "4", "5", "6")
}

func TestFilterSearch(t *testing.T) {
	tests := []struct {
		search string
		want   []string
	}{
		{"lunch", []string{"1"}},
		{"FOOD", []string{"1", "4"}}, // category match
		{"  metro ", []string{"2"}},   // trimmed
		{"utilities", []string{"5"}},
		{"nothing here", []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.search, func(t *testing.T) {
			equalIDs(t, Filter(fixture(), ListOptions{Search: tt.search}), tt.want...)
		})
	}
}

func TestFilterCategory(t *testing.T) {
	equalIDs(t, Filter(fixture(), ListOptions{Category: "Food & Dining"}), "1", "4")
	equalIDs(t, Filter(fixture(), ListOptions{Category: "all"}), "3", "1", "2", "4", "5", "6")
	equalIDs(t, Filter(fixture(), ListOptions{Category: "Food & Dining", Search: "coffee"}), "4")
}

func TestFilterSortOrders(t *testing.T) {
	equalIDs(t, Filter(fixture(), ListOptions{Sort: SortByAmount}), "5", "2", "3", "1", "4", "6")
	// Ties keep input order: 1 before 4.
	equalIDs(t, Filter(fixture(), ListOptions{Sort: SortByCategory}), "5", "6", "1", "4", "3", "2")
	equalIDs(t, Filter(fixture(), ListOptions{Sort: "bogus"}), "3", "1", "2", "4", "5", "6")
}

func TestFilterDoesNotMutateInput(t *testing.T) {
	in := fixture()
	_ = Filter(in, ListOptions{Sort: SortByAmount})
	equalIDs(t, in, "1", "2", "3", "4", "5", "6")
}

func TestParseSortKey(t *testing.T) {
	cases := map[string]SortKey{
		"":         SortByDate,
		"date":     SortByDate,
		"Amount":   SortByAmount,
		"category": SortByCategory,
		"x":        SortByDate,
	}
	for in, want := range cases {
		if got := ParseSortKey(in); got != want {
			t.Errorf("ParseSortKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMonthlyReport(t *testing.T) {
	r := MonthlyReport(fixture(), core.YearMonth{Year: 2024, Month: time.March})

	if r.Label != "March 2024" {
		t.Errorf("Label = %q", r.Label)
	}
	if r.Total.Cents != 8000 || r.Count != 3 {
		t.Errorf("total %d count %d", r.Total.Cents, r.Count)
	}
	// 80.00 over 31 days = 2.5806 -> 2.58
	if r.AveragePerDay.Cents != 258 {
		t.Errorf("AveragePerDay = %d", r.AveragePerDay.Cents)
	}
	if r.TopCategory != "Transportation" || r.TopAmount.Cents != 4000 {
		t.Errorf("top = %s %d", r.TopCategory, r.TopAmount.Cents)
	}
	if len(r.Categories) != 3 || r.Categories[0].Percentage != 50 || r.Categories[2].Percentage != 18.8 {
		t.Errorf("categories = %+v", r.Categories)
	}
	if r.PreviousTotal.Cents != 21000 || r.Change.Cents != -13000 {
		t.Errorf("previous %d change %d", r.PreviousTotal.Cents, r.Change.Cents)
	}
	// -130/210 = -61.904...%
	if r.ChangePercent != -61.9 || r.Increased() {
		t.Errorf("ChangePercent = %v", r.ChangePercent)
	}
	equalIDs(t, r.Recent, "3", "1", "2")
}

func TestMonthlyReportEmptyMonthAndZeroPrevious(t *testing.T) {
	r := MonthlyReport(fixture(), core.YearMonth{Year: 2025, Month: time.June})
	if r.Total.Cents != 0 || r.Count != 0 || r.TopCategory != "" {
		t.Fatalf("unexpected %+v", r)
	}
	if r.ChangePercent != 0 || r.Recent == nil || r.Categories == nil {
		t.Fatalf("unexpected %+v", r)
	}

	r = MonthlyReport(fixture(), core.YearMonth{Year: 2023, Month: time.December})
	if r.PreviousTotal.Cents != 0 || r.ChangePercent != 0 || !r.Increased() {
		t.Fatalf("zero previous month: %+v", r)
	}
}

func TestMonthlyReportRecentIsCapped(t *testing.T) {
	var many []core.Expense
	for d := 1; d <= 15; d++ {
		many = append(many, exp(string(rune('a'+d)), 100, "Other", "x", 2024, 4, d))
	}
	r := MonthlyReport(many, core.YearMonth{Year: 2024, Month: time.April})
	if len(r.Recent) != RecentLimit || r.Count != 15 {
		t.Fatalf("recent %d count %d", len(r.Recent), r.Count)
	}
	if r.Recent[0].Date != core.NewDate(2024, 4, 15) {
		t.Fatalf("recent not newest first: %v", r.Recent[0].Date)
	}
}

func TestAvailableMonths(t *testing.T) {
	current := core.YearMonth{Year: 2024, Month: time.May}
	got := AvailableMonths(fixture(), current)
	want := []string{"2024-05", "2024-03", "2024-02", "2023-12"}
	if len(got) != len(want) {
		t.Fatalf("got %v", got)
	}
	for i := range want {
		if got[i].String() != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	got = AvailableMonths(nil, current)
	if len(got) != 1 || got[0] != current {
		t.Fatalf("empty: got %v", got)
	}
}

func TestCategoryShares(t *testing.T) {
	shares := CategoryShares(fixture())
	if shares[0].Name != "Bills & Utilities" || shares[0].Amount.Cents != 20000 {
		t.Fatalf("first share %+v", shares[0])
	}
	// 200 of 297 = 67.34%
	if shares[0].Percentage != 67.3 {
		t.Fatalf("percentage %v", shares[0].Percentage)
	}
	var sum int64
	for _, s := range shares {
		sum += s.Amount.Cents
	}
	if sum != 29700 {
		t.Fatalf("sum %d", sum)
	}
	if got := CategoryShares(nil); got == nil || len(got) != 0 {
		t.Fatalf("expected empty slice, got %#v", got)
	}
}

func TestMonthlyTotals(t *testing.T) {
	totals := MonthlyTotals(fixture())
	want := []struct {
		label string
		cents int64
	}{
		{"Dec 2023", 700},
		{"Feb 2024", 21000},
		{"Mar 2024", 8000},
	}
	if len(totals) != len(want) {
		t.Fatalf("got %+v", totals)
	}
	for i, w := range want {
		if totals[i].Label != w.label || totals[i].Total.Cents != w.cents {
			t.Errorf("point %d: got %+v, want %+v", i, totals[i], w)
		}
	}
}

func TestDailySeries(t *testing.T) {
	today := core.NewDate(2024, 3, 15)
	series := DailySeries(fixture(), today, DefaultTrendDays)
	if len(series) != DefaultTrendDays {
		t.Fatalf("len = %d", len(series))
	}
	if series[0].Date != core.NewDate(2024, 2, 15) || series[29].Date != today {
		t.Fatalf("range %v..%v", series[0].Date, series[29].Date)
	}
	if series[29].Total.Cents != 2500 || series[29].Label != "Mar 15" {
		t.Fatalf("last point %+v", series[29])
	}
	var sum int64
	for _, p := range series {
		sum += p.Total.Cents
	}
	// Feb 20, Mar 1, Mar 10, Mar 15 fall in the window.
	if sum != 1000+4000+1500+2500 {
		t.Fatalf("sum %d", sum)
	}
	if got := DailySeries(fixture(), today, 0); len(got) != 0 {
		t.Fatalf("zero days: %v", got)
	}
}

func TestSummarize(t *testing.T) {
	s := Summarize(fixture(), core.YearMonth{Year: 2024, Month: time.March})
	if s.Total.Cents != 29700 || s.Count != 6 || s.MonthTotal.Cents != 8000 || s.MonthLabel != "March 2024" {
		t.Fatalf("unexpected %+v", s)
	}
}
