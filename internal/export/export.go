// Package export writes snapshots of the expense list to external
// destinations: JSON files, XLSX workbooks and Google Sheets.
package export

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"expensetracker/internal/core"
	"expensetracker/internal/currency"
)

// ErrNoExporters is returned by Run when nothing is configured.
var ErrNoExporters = errors.New("no exporters configured")

// Snapshot is the state handed to every exporter. Expenses are newest first.
type Snapshot struct {
	Expenses    []core.Expense    `json:"expenses"`
	Currency    currency.Currency `json:"currency"`
	GeneratedAt time.Time         `json:"generatedAt"`
}

// Formatter returns the formatter for the snapshot currency.
func (s Snapshot) Formatter() currency.Formatter {
	return currency.NewFormatter(&s.Currency)
}

// Exporter writes a snapshot somewhere and returns a reference to the
// result (a file path, a sheet range).
type Exporter interface {
	Name() string
	Export(ctx context.Context, snap Snapshot) (string, error)
}

// Run executes the exporters concurrently and returns their references keyed
// by exporter name. The first failure cancels the others.
func Run(ctx context.Context, snap Snapshot, exporters ...Exporter) (map[string]string, error) {
	if len(exporters) == 0 {
		return nil, ErrNoExporters
	}

	var mu sync.Mutex
	refs := make(map[string]string, len(exporters))

	g, gctx := errgroup.WithContext(ctx)
	for _, e := range exporters {
		g.Go(func() error {
			ref, err := e.Export(gctx, snap)
			if err != nil {
				return fmt.Errorf("%s export: %w", e.Name(), err)
			}
			mu.Lock()
			refs[e.Name()] = ref
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return refs, nil
}

// FileName returns the name of an export file for day in the given
// extension, e.g. "expenses-2024-03-05.json".
func FileName(day time.Time, ext string) string {
	return fmt.Sprintf("expenses-%s.%s", day.Format("2006-01-02"), ext)
}
