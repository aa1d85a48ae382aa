package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"expensetracker/internal/analytics"
	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	"expensetracker/internal/export"
	applog "expensetracker/internal/log"
	"expensetracker/internal/middleware/ratelimit"
	"expensetracker/internal/middleware/security"
	"expensetracker/internal/middleware/trace"
	"expensetracker/internal/services"
	appweb "expensetracker/web"
)

// Service is the expense tracker as seen by the HTTP layer.
type Service interface {
	Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error)
	Update(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error)
	Delete(ctx context.Context, id string) error
	Get(ctx context.Context, id string) (core.Expense, error)
	List(ctx context.Context, opts analytics.ListOptions) ([]core.Expense, error)

	SelectCurrency(ctx context.Context, code string) (currency.Currency, error)
	Currency(ctx context.Context) (currency.Currency, bool, error)
	Formatter(ctx context.Context) (currency.Formatter, error)

	Dashboard(ctx context.Context, today core.Date) (services.Dashboard, error)
	MonthReport(ctx context.Context, ym, current core.YearMonth) (analytics.Report, []core.YearMonth, error)
	Charts(ctx context.Context, today core.Date, days int) (analytics.Charts, error)
	Snapshot(ctx context.Context) (export.Snapshot, error)
	Today() core.Date
}

var _ Service = (*services.ExpenseService)(nil)

// reportResult is what the report cache holds.
type reportResult struct {
	Report analytics.Report
	Months []core.YearMonth
}

type Server struct {
	http.Server
	svc       Service
	templates *template.Template
	logger    *applog.Logger
	ready     func(context.Context) error

	limiterConfig ratelimit.Config
	limiter       *ratelimit.Limiter
	detector      *security.Detector
	tracer        *trace.Middleware

	// Reports are cleared on every mutation made through the server.
	reports *cache.LRUCache[reportResult]
	caches  *cache.Manager

	shutdownOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithReadiness sets the check behind /readyz.
func WithReadiness(check func(context.Context) error) Option {
	return func(s *Server) { s.ready = check }
}

// WithLogger sets the request logger.
func WithLogger(l *applog.Logger) Option {
	return func(s *Server) { s.logger = l.WithComponent(applog.ComponentHTTP) }
}

// WithRateLimit overrides the limit applied to write requests.
func WithRateLimit(cfg ratelimit.Config) Option {
	return func(s *Server) { s.limiterConfig = cfg }
}

// NewServer configures routes and templates, returning a ready-to-run http.Server.
func NewServer(addr string, svc Service, opts ...Option) *Server {
	s := &Server{
		Server: http.Server{
			Addr:              addr,
			ReadHeaderTimeout: 10 * time.Second,
		},
		svc:           svc,
		logger:        applog.ForComponent(applog.ComponentHTTP),
		limiterConfig: ratelimit.DefaultConfig(),
		reports:       cache.NewLRUCache[reportResult](100, 5*time.Minute), // Max 100 entries, 5min TTL
		caches:        cache.NewManager(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.limiter = ratelimit.NewLimiter(s.limiterConfig)
	s.detector = security.NewDetector()
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, s.logger)

	s.caches.Register(s.reports)
	s.caches.StartCleanup(10 * time.Minute)

	// Parse embedded templates at startup.
	t, err := template.ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		s.logger.Warn("Failed parsing templates", applog.FieldError, err)
	}
	s.templates = t

	s.Handler = s.routes()
	return s
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()

	// Static assets (served from embedded FS)
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		s.logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// HTML pages and partials
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /ui/month-report", s.handleMonthReportPartial)

	api := http.NewServeMux()
	api.HandleFunc("GET /api/currencies", s.handleListCurrencies)
	api.HandleFunc("GET /api/currency", s.handleGetCurrency)
	api.HandleFunc("POST /api/currency", s.handleSelectCurrency)
	api.HandleFunc("GET /api/expenses", s.handleListExpenses)
	api.HandleFunc("POST /api/expenses", s.handleCreateExpense)
	api.HandleFunc("GET /api/expenses/{id}", s.handleGetExpense)
	api.HandleFunc("PUT /api/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("DELETE /api/expenses/{id}", s.handleDeleteExpense)
	// HTML forms cannot send PUT or DELETE.
	api.HandleFunc("POST /api/expenses/{id}", s.handleUpdateExpense)
	api.HandleFunc("POST /api/expenses/{id}/delete", s.handleDeleteExpense)
	api.HandleFunc("GET /api/report", s.handleReport)
	api.HandleFunc("GET /api/charts", s.handleCharts)
	api.HandleFunc("GET /api/categories", s.handleCategories)
	api.HandleFunc("GET /api/format", s.handleFormat)
	api.HandleFunc("GET /api/parse", s.handleParse)
	api.HandleFunc("GET /export", s.handleExport)

	apiHandler := security.NoStore(applog.ComponentMiddleware(applog.ComponentExpense)(api))
	mux.Handle("/api/", apiHandler)
	mux.Handle("/export", apiHandler)

	headers := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	limit := s.limiter.Middleware(s.detector.ExtractClientIP, isWrite, s.onRateLimited)

	var h http.Handler = mux
	h = limit(h)
	h = s.detector.Middleware(nil)(h)
	h = headers.Middleware(h)
	h = s.tracer.Middleware(h)
	return h
}

func isWrite(r *http.Request) bool {
	switch r.Method {
	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return true
	}
	return false
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	applog.FromContext(r.Context()).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldClientIP, s.detector.ExtractClientIP(r),
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	w.Header().Set("Retry-After", "60")
	writeJSON(w, http.StatusTooManyRequests, errorBody{Error: "rate limit exceeded, please try again later"})
}

// invalidate drops cached reports after a mutation.
func (s *Server) invalidate() {
	s.reports.Clear()
}

// Shutdown gracefully shuts down the server and cleanup routines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	// Ensure shutdown logic runs only once
	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		s.limiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}
