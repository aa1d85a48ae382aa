package services

import (
	"context"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	"expensetracker/internal/export"
)

// Dashboard is everything the main page renders.
type Dashboard struct {
	Currency         currency.Currency `json:"currency"`
	CurrencySelected bool              `json:"currencySelected"`
	Summary          analytics.Summary `json:"summary"`
	Report           analytics.Report  `json:"report"`
	Months           []core.YearMonth  `json:"months"`
	Charts           analytics.Charts  `json:"charts"`
	Expenses         []core.Expense    `json:"expenses"`
}

// Formatter returns the formatter for the dashboard currency.
func (d Dashboard) Formatter() currency.Formatter {
	return currency.NewFormatter(&d.Currency)
}

// state loads expenses and the currency selection concurrently.
func (s *ExpenseService) state(ctx context.Context) ([]core.Expense, currency.Currency, bool, error) {
	var (
		expenses []core.Expense
		cur      currency.Currency
		selected bool
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		expenses, err = s.store.LoadExpenses(gctx)
		return err
	})
	g.Go(func() error {
		c, ok, err := s.store.LoadCurrency(gctx)
		if err != nil {
			s.logger.WarnContext(gctx, "Selected currency unreadable, using default", "error", err)
			return nil
		}
		cur, selected = c, ok
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, currency.Currency{}, false, err
	}
	if !selected {
		cur = currency.Default()
	}
	return expenses, cur, selected, nil
}

// Dashboard assembles the summary, the report of today's month, the chart
// series and the full expense list.
func (s *ExpenseService) Dashboard(ctx context.Context, today core.Date) (Dashboard, error) {
	expenses, cur, selected, err := s.state(ctx)
	if err != nil {
		return Dashboard{}, err
	}
	month := today.YearMonth()
	return Dashboard{
		Currency:         cur,
		CurrencySelected: selected,
		Summary:          analytics.Summarize(expenses, month),
		Report:           analytics.MonthlyReport(expenses, month),
		Months:           analytics.AvailableMonths(expenses, month),
		Charts:           analytics.BuildCharts(expenses, today, analytics.DefaultTrendDays),
		Expenses:         analytics.Filter(expenses, analytics.ListOptions{}),
	}, nil
}

// MonthReport returns the report for ym and the months available for
// selection, given that today falls in current.
func (s *ExpenseService) MonthReport(ctx context.Context, ym, current core.YearMonth) (analytics.Report, []core.YearMonth, error) {
	expenses, err := s.All(ctx)
	if err != nil {
		return analytics.Report{}, nil, err
	}
	return analytics.MonthlyReport(expenses, ym), analytics.AvailableMonths(expenses, current), nil
}

// Charts returns the chart series with a daily window of days.
func (s *ExpenseService) Charts(ctx context.Context, today core.Date, days int) (analytics.Charts, error) {
	expenses, err := s.All(ctx)
	if err != nil {
		return analytics.Charts{}, err
	}
	return analytics.BuildCharts(expenses, today, days), nil
}

// Snapshot captures the current state for the exporters.
func (s *ExpenseService) Snapshot(ctx context.Context) (export.Snapshot, error) {
	expenses, cur, _, err := s.state(ctx)
	if err != nil {
		return export.Snapshot{}, err
	}
	return export.Snapshot{
		Expenses:    analytics.Filter(expenses, analytics.ListOptions{}),
		Currency:    cur,
		GeneratedAt: s.now().UTC(),
	}, nil
}

// Today returns the service's current calendar day.
func (s *ExpenseService) Today() core.Date {
	return core.DateOf(s.now())
}
