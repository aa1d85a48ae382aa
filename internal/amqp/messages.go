package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// EventType names a change to the persisted expense state.
type EventType string

const (
	ExpenseCreated   EventType = "expense.created"
	ExpenseUpdated   EventType = "expense.updated"
	ExpenseDeleted   EventType = "expense.deleted"
	CurrencySelected EventType = "currency.selected"
)

var ErrUnknownEvent = errors.New("unknown event type")

// ExpenseEvent is a lightweight change notification. It carries only
// identifiers; consumers reload the state they need from storage.
type ExpenseEvent struct {
	Type      EventType `json:"type"`
	ExpenseID string    `json:"expenseId,omitempty"`
	Currency  string    `json:"currency,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (t EventType) Valid() bool {
	switch t {
	case ExpenseCreated, ExpenseUpdated, ExpenseDeleted, CurrencySelected:
		return true
	}
	return false
}

// NewExpenseEvent creates an event for expense id.
func NewExpenseEvent(t EventType, id string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      t,
		ExpenseID: id,
		Timestamp: time.Now().UTC(),
	}
}

// NewCurrencyEvent creates a currency.selected event.
func NewCurrencyEvent(code string) *ExpenseEvent {
	return &ExpenseEvent{
		Type:      CurrencySelected,
		Currency:  code,
		Timestamp: time.Now().UTC(),
	}
}

// ToJSON converts the event to JSON bytes
func (e *ExpenseEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// ExpenseEventFromJSON decodes an event and rejects unknown types.
func ExpenseEventFromJSON(data []byte) (*ExpenseEvent, error) {
	var ev ExpenseEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if !ev.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}
	return &ev, nil
}
