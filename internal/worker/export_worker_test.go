package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	"expensetracker/internal/export"
)

type fakeSource struct {
	snap  export.Snapshot
	err   error
	calls atomic.Int32
}

func (f *fakeSource) Snapshot(ctx context.Context) (export.Snapshot, error) {
	f.calls.Add(1)
	return f.snap, f.err
}

type countingExporter struct {
	name  string
	err   error
	calls atomic.Int32
	last  atomic.Int32
}

func (c *countingExporter) Name() string { return c.name }

func (c *countingExporter) Export(ctx context.Context, snap export.Snapshot) (string, error) {
	c.calls.Add(1)
	c.last.Store(int32(len(snap.Expenses)))
	if c.err != nil {
		return "", c.err
	}
	return c.name + "-ref", nil
}

func newSource() *fakeSource {
	return &fakeSource{snap: export.Snapshot{
		Expenses: []core.Expense{
			{ID: "1", Amount: core.Money{Cents: 500}, Category: "Other", Description: "Misc", Date: core.NewDate(2024, 1, 1)},
		},
		Currency:    currency.Default(),
		GeneratedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
	}}
}

func TestExportNow(t *testing.T) {
	src := newSource()
	exp := &countingExporter{name: "json"}
	w := NewExportWorker(src, exp)

	refs, err := w.ExportNow(context.Background())
	if err != nil {
		t.Fatalf("ExportNow: %v", err)
	}
	if refs["json"] != "json-ref" {
		t.Errorf("refs = %v", refs)
	}
	if exp.last.Load() != 1 {
		t.Errorf("exporter saw %d expenses, want 1", exp.last.Load())
	}

	at, last := w.LastExport()
	if at.IsZero() || last["json"] != "json-ref" {
		t.Errorf("LastExport = %v, %v", at, last)
	}
}

func TestExportNowSourceError(t *testing.T) {
	src := newSource()
	src.err = errors.New("store down")
	exp := &countingExporter{name: "json"}
	w := NewExportWorker(src, exp)

	if _, err := w.ExportNow(context.Background()); !errors.Is(err, src.err) {
		t.Fatalf("expected source error, got %v", err)
	}
	if exp.calls.Load() != 0 {
		t.Error("exporter must not run without a snapshot")
	}
	if at, _ := w.LastExport(); !at.IsZero() {
		t.Error("failed export must not update LastExport")
	}
}

func TestHandleEvent(t *testing.T) {
	tests := []struct {
		name    string
		ev      *amqp.ExpenseEvent
		wantErr error
		exports int32
	}{
		{"created", amqp.NewExpenseEvent(amqp.ExpenseCreated, "1"), nil, 1},
		{"deleted", amqp.NewExpenseEvent(amqp.ExpenseDeleted, "1"), nil, 1},
		{"currency", amqp.NewCurrencyEvent("EUR"), nil, 1},
		{"updated", amqp.NewExpenseEvent(amqp.ExpenseUpdated, "1"), nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exp := &countingExporter{name: "json"}
			w := NewExportWorker(newSource(), exp)
			err := w.HandleEvent(context.Background(), tt.ev)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
			} else if err != nil {
				t.Fatalf("HandleEvent: %v", err)
			}
			if got := exp.calls.Load(); got != tt.exports {
				t.Errorf("exports = %d, want %d", got, tt.exports)
			}
		})
	}

	w := NewExportWorker(newSource())
	if err := w.HandleEvent(context.Background(), nil); err == nil {
		t.Error("expected error for nil event")
	}
}

func TestHandleEventExportFailureIsReturned(t *testing.T) {
	boom := errors.New("disk full")
	w := NewExportWorker(newSource(), &countingExporter{name: "json", err: boom})
	err := w.HandleEvent(context.Background(), amqp.NewExpenseEvent(amqp.ExpenseUpdated, "1"))
	if !errors.Is(err, boom) {
		t.Fatalf("expected exporter error so the message is requeued, got %v", err)
	}
}

func TestStartupExport(t *testing.T) {
	exp := &countingExporter{name: "xlsx"}
	w := NewExportWorker(newSource(), exp)
	if err := w.StartupExport(context.Background()); err != nil {
		t.Fatalf("StartupExport: %v", err)
	}
	if exp.calls.Load() != 1 {
		t.Errorf("exports = %d", exp.calls.Load())
	}

	w = NewExportWorker(newSource())
	if err := w.StartupExport(context.Background()); !errors.Is(err, export.ErrNoExporters) {
		t.Errorf("expected ErrNoExporters, got %v", err)
	}
}

func TestRunPeriodic(t *testing.T) {
	exp := &countingExporter{name: "json"}
	w := NewExportWorker(newSource(), exp)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.RunPeriodic(ctx, 10*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for exp.calls.Load() < 2 {
		select {
		case <-deadline:
			t.Fatal("periodic export did not run")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunPeriodic did not stop after cancel")
	}
}
