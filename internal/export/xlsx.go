package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/analytics"
	"expensetracker/internal/core"
)

const (
	expensesSheet = "Expenses"
	summarySheet  = "Summary"
)

var (
	expenseHeader = []any{"Date", "Description", "Category", "Amount", "Formatted"}
	summaryHeader = []any{"Category", "Transactions", "Amount", "Formatted", "Share %"}
)

// XLSXExporter writes a workbook with one row per expense and a category
// summary sheet.
type XLSXExporter struct {
	Dir string
}

// NewXLSXExporter returns an exporter writing into dir.
func NewXLSXExporter(dir string) *XLSXExporter {
	return &XLSXExporter{Dir: dir}
}

func (e *XLSXExporter) Name() string { return "xlsx" }

func (e *XLSXExporter) Export(ctx context.Context, snap Snapshot) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := os.MkdirAll(e.Dir, 0755); err != nil {
		return "", fmt.Errorf("create export dir: %w", err)
	}

	f, err := BuildWorkbook(snap)
	if err != nil {
		return "", err
	}
	defer f.Close()

	path := filepath.Join(e.Dir, FileName(snap.GeneratedAt, "xlsx"))
	if err := f.SaveAs(path); err != nil {
		return "", fmt.Errorf("save workbook: %w", err)
	}
	return path, nil
}

// BuildWorkbook lays out the snapshot in a new workbook.
func BuildWorkbook(snap Snapshot) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", expensesSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(summarySheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("add summary sheet: %w", err)
	}
	if err := writeExpenses(f, snap); err != nil {
		f.Close()
		return nil, err
	}
	if err := writeSummary(f, snap); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func writeExpenses(f *excelize.File, snap Snapshot) error {
	fm := snap.Formatter()
	if err := f.SetSheetRow(expensesSheet, "A1", &expenseHeader); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, e := range snap.Expenses {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{e.Date.String(), e.Description, e.Category, e.Amount.Float(), fm.FormatCents(e.Amount.Cents)}
		if err := f.SetSheetRow(expensesSheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}
	return nil
}

func writeSummary(f *excelize.File, snap Snapshot) error {
	fm := snap.Formatter()
	if err := f.SetSheetRow(summarySheet, "A1", &summaryHeader); err != nil {
		return fmt.Errorf("write summary header: %w", err)
	}
	shares := analytics.CategoryShares(snap.Expenses)
	for i, c := range shares {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []any{c.Name, c.Count, c.Amount.Float(), fm.FormatCents(c.Amount.Cents), c.Percentage}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i+2, err)
		}
	}

	cell, err := excelize.CoordinatesToCellName(1, len(shares)+2)
	if err != nil {
		return err
	}
	total := core.Total(snap.Expenses)
	totalRow := []any{"Total", len(snap.Expenses), total.Float(), fm.FormatCents(total.Cents), nil}
	if err := f.SetSheetRow(summarySheet, cell, &totalRow); err != nil {
		return fmt.Errorf("write summary total: %w", err)
	}
	return nil
}
