package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"expensetracker/internal/amqp"
	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	applog "expensetracker/internal/log"
)

// Store persists expenses and the selected currency.
type Store interface {
	LoadExpenses(ctx context.Context) ([]core.Expense, error)
	SaveExpenses(ctx context.Context, expenses []core.Expense) error
	LoadCurrency(ctx context.Context) (currency.Currency, bool, error)
	SaveCurrency(ctx context.Context, c currency.Currency) error
	Close() error
}

// EventPublisher announces state changes, typically over AMQP.
type EventPublisher interface {
	PublishExpenseEvent(ctx context.Context, ev amqp.ExpenseEvent) error
}

// ExpenseService owns the read-modify-write cycle of the expense list and
// the currency selection. It is safe for concurrent use.
type ExpenseService struct {
	store     Store
	publisher EventPublisher
	logger    *applog.Logger
	now       func() time.Time
	newID     func() string

	mu sync.Mutex
}

// Option configures an ExpenseService.
type Option func(*ExpenseService)

// WithClock overrides the time source used for CreatedAt.
func WithClock(now func() time.Time) Option {
	return func(s *ExpenseService) { s.now = now }
}

// WithIDGenerator overrides the expense ID source.
func WithIDGenerator(newID func() string) Option {
	return func(s *ExpenseService) { s.newID = newID }
}

// WithLogger sets the service logger.
func WithLogger(l *applog.Logger) Option {
	return func(s *ExpenseService) { s.logger = l.WithComponent(applog.ComponentExpense) }
}

// NewExpenseService creates the service. publisher may be nil, in which
// case changes are not announced.
func NewExpenseService(store Store, publisher EventPublisher, opts ...Option) *ExpenseService {
	s := &ExpenseService{
		store:     store,
		publisher: publisher,
		logger:    applog.ForComponent(applog.ComponentExpense),
		now:       time.Now,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Add validates in and records it as a new expense, newest first.
func (s *ExpenseService) Add(ctx context.Context, in core.ExpenseInput) (core.Expense, error) {
	in.Description = trimDescription(in.Description)
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	expenses, err := s.store.LoadExpenses(ctx)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}
	e := core.Expense{
		ID:          s.newID(),
		Amount:      in.Amount,
		Category:    in.Category,
		Description: in.Description,
		Date:        in.Date,
		CreatedAt:   s.now().UTC(),
	}
	expenses = append([]core.Expense{e}, expenses...)
	err = s.store.SaveExpenses(ctx, expenses)
	s.mu.Unlock()
	if err != nil {
		return core.Expense{}, err
	}

	s.logger.InfoContext(ctx, "Expense created",
		applog.FieldExpenseID, e.ID,
		applog.FieldAmountCents, e.Amount.Cents,
		applog.FieldCategory, e.Category)
	s.publish(ctx, *amqp.NewExpenseEvent(amqp.ExpenseCreated, e.ID))
	return e, nil
}

// Update replaces the editable fields of expense id. ID and CreatedAt are
// preserved.
func (s *ExpenseService) Update(ctx context.Context, id string, in core.ExpenseInput) (core.Expense, error) {
	in.Description = trimDescription(in.Description)
	if err := in.Validate(); err != nil {
		return core.Expense{}, err
	}

	s.mu.Lock()
	expenses, err := s.store.LoadExpenses(ctx)
	if err != nil {
		s.mu.Unlock()
		return core.Expense{}, err
	}
	i := indexOf(expenses, id)
	if i < 0 {
		s.mu.Unlock()
		return core.Expense{}, fmt.Errorf("%w: %s", core.ErrExpenseNotFound, id)
	}
	e := expenses[i]
	e.Amount = in.Amount
	e.Category = in.Category
	e.Description = in.Description
	e.Date = in.Date
	expenses[i] = e
	err = s.store.SaveExpenses(ctx, expenses)
	s.mu.Unlock()
	if err != nil {
		return core.Expense{}, err
	}

	s.logger.InfoContext(ctx, "Expense updated", applog.FieldExpenseID, id)
	s.publish(ctx, *amqp.NewExpenseEvent(amqp.ExpenseUpdated, id))
	return e, nil
}

// Delete removes expense id.
func (s *ExpenseService) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	expenses, err := s.store.LoadExpenses(ctx)
	if err != nil {
		s.mu.Unlock()
		return err
	}
	i := indexOf(expenses, id)
	if i < 0 {
		s.mu.Unlock()
		return fmt.Errorf("%w: %s", core.ErrExpenseNotFound, id)
	}
	expenses = append(expenses[:i], expenses[i+1:]...)
	err = s.store.SaveExpenses(ctx, expenses)
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "Expense deleted", applog.FieldExpenseID, id)
	s.publish(ctx, *amqp.NewExpenseEvent(amqp.ExpenseDeleted, id))
	return nil
}

func (s *ExpenseService) Get(ctx context.Context, id string) (core.Expense, error) {
	expenses, err := s.All(ctx)
	if err != nil {
		return core.Expense{}, err
	}
	if i := indexOf(expenses, id); i >= 0 {
		return expenses[i], nil
	}
	return core.Expense{}, fmt.Errorf("%w: %s", core.ErrExpenseNotFound, id)
}

// All returns every expense in stored order (newest added first).
func (s *ExpenseService) All(ctx context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LoadExpenses(ctx)
}

// List returns the filtered and sorted expense list.
func (s *ExpenseService) List(ctx context.Context, opts analytics.ListOptions) ([]core.Expense, error) {
	expenses, err := s.All(ctx)
	if err != nil {
		return nil, err
	}
	return analytics.Filter(expenses, opts), nil
}

// SelectCurrency persists the currency with the given registry code.
func (s *ExpenseService) SelectCurrency(ctx context.Context, code string) (currency.Currency, error) {
	c, err := currency.Find(code)
	if err != nil {
		return currency.Currency{}, err
	}

	s.mu.Lock()
	err = s.store.SaveCurrency(ctx, c)
	s.mu.Unlock()
	if err != nil {
		return currency.Currency{}, err
	}

	s.logger.InfoContext(ctx, "Currency selected", applog.FieldCurrency, c.Code)
	s.publish(ctx, *amqp.NewCurrencyEvent(c.Code))
	return c, nil
}

// Currency returns the selected currency; ok is false before the first
// selection.
func (s *ExpenseService) Currency(ctx context.Context) (currency.Currency, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.LoadCurrency(ctx)
}

// Formatter returns a formatter for the selected currency, or for the
// default currency when none is selected or the stored one is unreadable.
func (s *ExpenseService) Formatter(ctx context.Context) (currency.Formatter, error) {
	c, ok, err := s.Currency(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return currency.Formatter{}, err
		}
		s.logger.WarnContext(ctx, "Selected currency unreadable, using default", applog.FieldError, err)
		return currency.NewFormatter(nil), nil
	}
	if !ok {
		return currency.NewFormatter(nil), nil
	}
	return currency.NewFormatter(&c), nil
}

func (s *ExpenseService) publish(ctx context.Context, ev amqp.ExpenseEvent) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "No event publisher, skipping event", applog.FieldEvent, ev.Type)
		return
	}
	if err := s.publisher.PublishExpenseEvent(ctx, ev); err != nil {
		// The change is already persisted.
		s.logger.ErrorContext(ctx, "Failed to publish event",
			applog.FieldEvent, ev.Type,
			applog.FieldExpenseID, ev.ExpenseID,
			applog.FieldError, err)
	}
}

// Close closes the store and, when it holds resources, the publisher.
func (s *ExpenseService) Close() error {
	var errs []error

	if s.store != nil {
		if err := s.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if c, ok := s.publisher.(io.Closer); ok && c != nil {
		if err := c.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %w", errors.Join(errs...))
	}

	return nil
}

func indexOf(expenses []core.Expense, id string) int {
	for i, e := range expenses {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func trimDescription(s string) string {
	return strings.TrimSpace(s)
}
