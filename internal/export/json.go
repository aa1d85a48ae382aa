package export

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"expensetracker/internal/core"
)

// JSONExporter writes the expense list as an indented JSON array, the same
// document the web page offers for download.
type JSONExporter struct {
	Dir string
}

// NewJSONExporter returns an exporter writing into dir.
func NewJSONExporter(dir string) *JSONExporter {
	return &JSONExporter{Dir: dir}
}

func (e *JSONExporter) Name() string { return "json" }

func (e *JSONExporter) Export(ctx context.Context, snap Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	path := filepath.Join(e.Dir, FileName(snap.GeneratedAt, "json"))
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", tmp, err)
	}
	if err := WriteJSON(f, snap.Expenses); err != nil {
		f.Close()
		os.Remove(tmp)
		return "", err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("close %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return "", fmt.Errorf("rename export: %w", err)
	}
	return path, nil
}

// WriteJSON encodes expenses with two-space indentation. A nil list is
// written as [].
func WriteJSON(w io.Writer, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(expenses); err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	return nil
}
