package http

import (
	"bytes"
	"net/http"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	applog "expensetracker/internal/log"
	"expensetracker/internal/services"
)

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		if err := s.ready(r.Context()); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			http.Error(w, "not ready", http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// indexPage is the data of index.html.
type indexPage struct {
	services.Dashboard
	Fmt        currency.Formatter
	Currencies []currency.Currency
	Categories []string
	Today      string
	Report     reportPage
}

// reportPage is the data of month_report.html.
type reportPage struct {
	analytics.Report
	Fmt    currency.Formatter
	Months []core.YearMonth
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	today := s.svc.Today()
	dash, err := s.svc.Dashboard(r.Context(), today)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	f := dash.Formatter()
	report := reportPage{Report: dash.Report, Fmt: f, Months: dash.Months}

	current := today.YearMonth()
	if ym, err := ParseMonthParams(r.URL.Query(), current); err != nil {
		s.renderError(w, r, err)
		return
	} else if ym != current {
		res, err := s.monthReport(r, ym, current)
		if err != nil {
			s.renderError(w, r, err)
			return
		}
		report.Report, report.Months = res.Report, res.Months
	}

	s.render(w, r, "index.html", indexPage{
		Dashboard:  dash,
		Fmt:        f,
		Currencies: currency.List(),
		Categories: core.Categories(),
		Today:      today.String(),
		Report:     report,
	})
}

func (s *Server) handleMonthReportPartial(w http.ResponseWriter, r *http.Request) {
	current := s.svc.Today().YearMonth()
	ym, err := ParseMonthParams(r.URL.Query(), current)
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	res, err := s.monthReport(r, ym, current)
	if err != nil {
		s.renderError(w, r, err)
		return
	}
	f, err := s.svc.Formatter(r.Context())
	if err != nil {
		s.renderError(w, r, err)
		return
	}

	s.render(w, r, "month_report.html", reportPage{Report: res.Report, Fmt: f, Months: res.Months})
}

// render executes name into a buffer so a failing template never sends a
// partial page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, name string, data any) {
	if s.templates == nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err,
			applog.FieldComponent, applog.ComponentTemplate,
			"template", name)
		http.Error(w, "failed to render page", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = buf.WriteTo(w)
}

func (s *Server) renderError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	msg := err.Error()
	if status >= http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Page failed", applog.FieldError, err, applog.FieldOperation, applog.OpRender)
		msg = http.StatusText(status)
	}
	ErrorResponse(status, msg).Write(w)
}
