package http

import (
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	"expensetracker/internal/export"
	applog "expensetracker/internal/log"
)

// maxChartDays bounds the daily series requested from /api/charts.
const maxChartDays = 366

// expenseView is an expense with its amount rendered in the selected
// currency.
type expenseView struct {
	core.Expense
	Formatted string `json:"formatted"`
}

func viewOf(e core.Expense, f currency.Formatter) expenseView {
	return expenseView{Expense: e, Formatted: f.FormatCents(e.Amount.Cents)}
}

func viewsOf(expenses []core.Expense, f currency.Formatter) []expenseView {
	out := make([]expenseView, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, viewOf(e, f))
	}
	return out
}

type currencyResponse struct {
	Currency currency.Currency `json:"currency"`
	Selected bool              `json:"selected"`
}

func (s *Server) handleListCurrencies(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currency.List())
}

func (s *Server) handleGetCurrency(w http.ResponseWriter, r *http.Request) {
	c, ok, err := s.svc.Currency(r.Context())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	if !ok {
		c = currency.Default()
	}
	writeJSON(w, http.StatusOK, currencyResponse{Currency: c, Selected: ok})
}

func (s *Server) handleSelectCurrency(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}
	code := strings.ToUpper(p.Get("code"))
	if code == "" {
		writeError(w, r, applog.OpValidate, fmt.Errorf("%w: empty code", currency.ErrNotFound))
		return
	}

	c, err := s.svc.SelectCurrency(r.Context(), code)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}

	// Amounts on the report are rendered in the selected currency.
	ym := s.svc.Today().YearMonth()
	b := NewHTMXResponse().
		TriggerCurrencyChanged(c.Code).
		TriggerReportRefresh(ym.Year, int(ym.Month))
	if isFormPost(r) {
		b.Redirect("/").Write(w)
		return
	}
	b.BodyJSON(currencyResponse{Currency: c, Selected: true}).Write(w)
}

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := analytics.ListOptions{
		Search:   sanitizeInput(q.Get("search")),
		Category: sanitizeInput(q.Get("category")),
		Sort:     analytics.ParseSortKey(q.Get("sort")),
	}
	expenses, err := s.svc.List(r.Context(), opts)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	f, err := s.svc.Formatter(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, viewsOf(expenses, f))
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	f, err := s.svc.Formatter(r.Context())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(e, f))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	f, err := s.svc.Formatter(r.Context())
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	in, err := ParseExpenseInput(NewRequestBodyParser(r), f, core.ExpenseInput{Date: s.svc.Today()})
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}

	e, err := s.svc.Add(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	s.invalidate()
	applog.NewStructuredLogger(applog.FromContext(r.Context())).
		LogExpenseCreated(r.Context(), e.ID, e.Description, e.Amount.Cents, e.Category)

	ym := e.Date.YearMonth()
	b := NewHTMXResponse().
		TriggerExpenseCreated(ym.Year, int(ym.Month)).
		TriggerFormReset().
		TriggerSuccessNotification("Expense added")
	if isFormPost(r) {
		b.Redirect("/").Write(w)
		return
	}
	b.Status(http.StatusCreated).BodyJSON(viewOf(e, f)).Write(w)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	existing, err := s.svc.Get(r.Context(), id)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	f, err := s.svc.Formatter(r.Context())
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	in, err := ParseExpenseInput(NewRequestBodyParser(r), f, existing.Input())
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}

	e, err := s.svc.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, r, applog.OpUpdate, err)
		return
	}
	s.invalidate()

	ym := e.Date.YearMonth()
	b := NewHTMXResponse().TriggerExpenseUpdated(ym.Year, int(ym.Month))
	if isFormPost(r) {
		b.Redirect("/").Write(w)
		return
	}
	b.BodyJSON(viewOf(e, f)).Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.svc.Delete(r.Context(), id); err != nil {
		writeError(w, r, applog.OpDelete, err)
		return
	}
	s.invalidate()

	b := NewHTMXResponse().TriggerExpenseDeleted(id)
	if isFormPost(r) {
		b.Redirect("/").Write(w)
		return
	}
	b.Status(http.StatusNoContent).Write(w)
}

// reportResponse carries display strings next to the raw figures.
type reportResponse struct {
	analytics.Report
	Months    []core.YearMonth  `json:"months"`
	Formatted map[string]string `json:"formatted"`
}

func (s *Server) monthReport(r *http.Request, ym, current core.YearMonth) (reportResult, error) {
	key := ym.String() + "|" + current.String()
	res, _, err := s.reports.GetOrLoad(key, func() (reportResult, error) {
		report, months, err := s.svc.MonthReport(r.Context(), ym, current)
		return reportResult{Report: report, Months: months}, err
	})
	return res, err
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	current := s.svc.Today().YearMonth()
	ym, err := ParseMonthParams(r.URL.Query(), current)
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}
	res, err := s.monthReport(r, ym, current)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	f, err := s.svc.Formatter(r.Context())
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}

	rep := res.Report
	writeJSON(w, http.StatusOK, reportResponse{
		Report: rep,
		Months: res.Months,
		Formatted: map[string]string{
			"total":         f.FormatCents(rep.Total.Cents),
			"averagePerDay": f.FormatCents(rep.AveragePerDay.Cents),
			"topAmount":     f.FormatCents(rep.TopAmount.Cents),
			"previousTotal": f.FormatCents(rep.PreviousTotal.Cents),
			"change":        f.FormatCents(rep.Change.Cents),
		},
	})
}

func (s *Server) handleCharts(w http.ResponseWriter, r *http.Request) {
	days := analytics.DefaultTrendDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > maxChartDays {
			writeJSON(w, http.StatusBadRequest, errorBody{Error: fmt.Sprintf("days must be between 1 and %d", maxChartDays)})
			return
		}
		days = n
	}

	charts, err := s.svc.Charts(r.Context(), s.svc.Today(), days)
	if err != nil {
		writeError(w, r, applog.OpRead, err)
		return
	}
	writeJSON(w, http.StatusOK, charts)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, core.Categories())
}

// formatterFor returns the formatter for code, or for the selected
// currency when code is empty.
func (s *Server) formatterFor(r *http.Request, code string) (currency.Formatter, error) {
	if code = strings.TrimSpace(code); code == "" {
		return s.svc.Formatter(r.Context())
	}
	c, err := currency.Find(code)
	if err != nil {
		return currency.Formatter{}, err
	}
	return currency.NewFormatter(&c), nil
}

type formatResponse struct {
	Code      string  `json:"code"`
	Amount    float64 `json:"amount"`
	Formatted string  `json:"formatted"`
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	amount, err := strconv.ParseFloat(strings.TrimSpace(q.Get("amount")), 64)
	if err != nil || math.IsNaN(amount) || math.IsInf(amount, 0) {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "amount must be a finite number"})
		return
	}
	f, err := s.formatterFor(r, q.Get("code"))
	if err != nil {
		writeError(w, r, applog.OpRender, err)
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{
		Code:      f.Currency().Code,
		Amount:    amount,
		Formatted: f.Format(amount),
	})
}

type parseResponse struct {
	Code  string  `json:"code"`
	Input string  `json:"input"`
	Value float64 `json:"value"`
}

func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f, err := s.formatterFor(r, q.Get("code"))
	if err != nil {
		writeError(w, r, applog.OpParse, err)
		return
	}
	input := q.Get("input")
	writeJSON(w, http.StatusOK, parseResponse{
		Code:  f.Currency().Code,
		Input: input,
		Value: f.Parse(input),
	})
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	snap, err := s.svc.Snapshot(r.Context())
	if err != nil {
		writeError(w, r, applog.OpExport, err)
		return
	}

	name := export.FileName(snap.GeneratedAt, "json")
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	if err := export.WriteJSON(w, snap.Expenses); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Export download failed",
			applog.FieldError, err, applog.FieldOperation, applog.OpExport)
	}
}
