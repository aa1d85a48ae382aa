package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"expensetracker/internal/core"
	"expensetracker/internal/currency"
)

// Keys under which the store persists its state.
const (
	ExpensesKey = "expenses"
	CurrencyKey = "selectedCurrency"
)

// ExpenseStore persists the expense list and the selected currency as JSON
// documents on top of a KV.
type ExpenseStore struct {
	kv KV
}

func NewExpenseStore(kv KV) *ExpenseStore {
	return &ExpenseStore{kv: kv}
}

// LoadExpenses returns the stored expenses, or an empty list when nothing
// has been saved yet.
func (s *ExpenseStore) LoadExpenses(ctx context.Context) ([]core.Expense, error) {
	raw, ok, err := s.kv.Get(ctx, ExpensesKey)
	if err != nil {
		return nil, fmt.Errorf("load expenses: %w", err)
	}
	if !ok || len(raw) == 0 {
		return []core.Expense{}, nil
	}
	var expenses []core.Expense
	if err := json.Unmarshal(raw, &expenses); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptValue, ExpensesKey, err)
	}
	if expenses == nil {
		expenses = []core.Expense{}
	}
	return expenses, nil
}

func (s *ExpenseStore) SaveExpenses(ctx context.Context, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	raw, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	if err := s.kv.Set(ctx, ExpensesKey, raw); err != nil {
		return fmt.Errorf("save expenses: %w", err)
	}
	return nil
}

// LoadCurrency returns the selected currency. ok is false when none was
// ever selected. A stored code that is still in the registry resolves to
// the current registry entry.
func (s *ExpenseStore) LoadCurrency(ctx context.Context) (currency.Currency, bool, error) {
	raw, ok, err := s.kv.Get(ctx, CurrencyKey)
	if err != nil {
		return currency.Currency{}, false, fmt.Errorf("load currency: %w", err)
	}
	if !ok || len(raw) == 0 {
		return currency.Currency{}, false, nil
	}
	var c currency.Currency
	if err := json.Unmarshal(raw, &c); err != nil {
		return currency.Currency{}, false, fmt.Errorf("%w: %s: %v", ErrCorruptValue, CurrencyKey, err)
	}
	if c.IsZero() {
		return currency.Currency{}, false, nil
	}
	if known, err := currency.Find(c.Code); err == nil {
		return known, true, nil
	}
	return c, true, nil
}

func (s *ExpenseStore) SaveCurrency(ctx context.Context, c currency.Currency) error {
	raw, err := json.Marshal(c)
	if err != nil {
		return fmt.Errorf("encode currency: %w", err)
	}
	if err := s.kv.Set(ctx, CurrencyKey, raw); err != nil {
		return fmt.Errorf("save currency: %w", err)
	}
	return nil
}

func (s *ExpenseStore) Close() error {
	return s.kv.Close()
}
