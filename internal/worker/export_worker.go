package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"expensetracker/internal/amqp"
	"expensetracker/internal/export"
	applog "expensetracker/internal/log"
)

// SnapshotSource provides the state to export.
type SnapshotSource interface {
	Snapshot(ctx context.Context) (export.Snapshot, error)
}

// ExportWorker re-exports the full expense snapshot whenever it is told
// the data changed. Exports are serialized.
type ExportWorker struct {
	source    SnapshotSource
	exporters []export.Exporter
	logger    *applog.Logger

	mu       sync.Mutex
	lastRun  time.Time
	lastRefs map[string]string
}

func NewExportWorker(source SnapshotSource, exporters ...export.Exporter) *ExportWorker {
	return &ExportWorker{
		source:    source,
		exporters: exporters,
		logger:    applog.ForComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes a single change event from AMQP. Every event type
// triggers a full export; unknown types never get here because
// amqp.ExpenseEventFromJSON rejects them before delivery.
func (w *ExportWorker) HandleEvent(ctx context.Context, ev *amqp.ExpenseEvent) error {
	if ev == nil {
		return errors.New("nil event")
	}

	w.logger.InfoContext(ctx, "Processing change event",
		applog.FieldEvent, string(ev.Type),
		applog.FieldExpenseID, ev.ExpenseID,
		"timestamp", ev.Timestamp)

	if _, err := w.ExportNow(ctx); err != nil {
		return fmt.Errorf("export after %s: %w", ev.Type, err)
	}
	return nil
}

// ExportNow runs every exporter against a fresh snapshot and returns the
// references they produced.
func (w *ExportWorker) ExportNow(ctx context.Context) (map[string]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	start := time.Now()
	snap, err := w.source.Snapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("load snapshot: %w", err)
	}

	refs, err := export.Run(ctx, snap, w.exporters...)
	if err != nil {
		w.logger.ErrorContext(ctx, "Export failed",
			applog.FieldError, err,
			"expenses", len(snap.Expenses))
		return nil, err
	}

	w.lastRun = time.Now()
	w.lastRefs = refs
	for name, ref := range refs {
		w.logger.InfoContext(ctx, "Export written",
			applog.FieldExporter, name,
			applog.FieldExportRef, ref,
			"expenses", len(snap.Expenses),
			applog.FieldDuration, time.Since(start).Milliseconds())
	}
	return refs, nil
}

// StartupExport writes an initial export so destinations reflect the store
// even if events were missed while the worker was down.
func (w *ExportWorker) StartupExport(ctx context.Context) error {
	refs, err := w.ExportNow(ctx)
	if err != nil {
		return fmt.Errorf("startup export: %w", err)
	}
	w.logger.InfoContext(ctx, "Startup export completed", "exporters", len(refs))
	return nil
}

// RunPeriodic exports every interval until ctx is cancelled. Failures are
// logged and retried on the next tick.
func (w *ExportWorker) RunPeriodic(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.ExportNow(ctx); err != nil && ctx.Err() == nil {
				w.logger.WarnContext(ctx, "Periodic export failed", applog.FieldError, err)
			}
		}
	}
}

// LastExport returns when the last successful export finished and its
// references.
func (w *ExportWorker) LastExport() (time.Time, map[string]string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	refs := make(map[string]string, len(w.lastRefs))
	for k, v := range w.lastRefs {
		refs[k] = v
	}
	return w.lastRun, refs
}
