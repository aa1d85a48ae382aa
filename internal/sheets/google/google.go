// Package google exports an expense snapshot to a Google Sheets range.
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/export"
)

// Header is the first row written to the sheet.
var Header = []any{"Date", "Description", "Category", "Amount", "Formatted", "ID"}

// Config holds the spreadsheet coordinates and service account credentials.
// CredentialsJSON takes precedence over CredentialsFile.
type Config struct {
	SpreadsheetID   string
	SheetName       string
	CredentialsFile string
	CredentialsJSON string
}

// Exporter rewrites a whole sheet with the current expense list.
type Exporter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ export.Exporter = (*Exporter)(nil)

// New creates an exporter authenticated with service account credentials.
func New(ctx context.Context, cfg Config) (*Exporter, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg.SpreadsheetID, cfg.SheetName), nil
}

// NewWithService wraps an existing Sheets service.
func NewWithService(svc *gsheet.Service, spreadsheetID, sheetName string) *Exporter {
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Expenses"
	}
	return &Exporter{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.CredentialsJSON)
	serviceAccountFile := strings.TrimSpace(cfg.CredentialsFile)

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		slog.DebugContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		slog.DebugContext(ctx, "Reading credentials from file", "path", serviceAccountFile)
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (e *Exporter) Name() string { return "sheets" }

// Export clears the sheet and writes the header plus one row per expense.
// The returned reference is the written A1 range.
func (e *Exporter) Export(ctx context.Context, snap export.Snapshot) (string, error) {
	if e.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	clearRange := sheetRange(e.sheetName, fmt.Sprintf("A:%s", lastColumn()))
	_, err := e.svc.Spreadsheets.Values.Clear(e.spreadsheetID, clearRange, &gsheet.ClearValuesRequest{}).
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to clear %s: %w", clearRange, err)
	}

	rows := Rows(snap)
	ref := sheetRange(e.sheetName, fmt.Sprintf("A1:%s%d", lastColumn(), len(rows)))
	vr := &gsheet.ValueRange{Values: rows}
	_, err = e.svc.Spreadsheets.Values.Update(e.spreadsheetID, ref, vr).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", ref, err)
	}
	return ref, nil
}

// Rows renders the snapshot as sheet rows, header first.
func Rows(snap export.Snapshot) [][]any {
	fm := snap.Formatter()
	rows := make([][]any, 0, len(snap.Expenses)+1)
	rows = append(rows, Header)
	for _, e := range snap.Expenses {
		rows = append(rows, []any{
			e.Date.String(),
			e.Description,
			e.Category,
			e.Amount.Float(),
			fm.FormatCents(e.Amount.Cents),
			e.ID,
		})
	}
	return rows
}

func lastColumn() string {
	return string(rune('A' + len(Header) - 1))
}

// sheetRange builds an A1 reference, quoting the sheet name when needed.
func sheetRange(sheet, cells string) string {
	if strings.ContainsAny(sheet, " '!") {
		sheet = "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
	}
	return sheet + "!" + cells
}
