package export

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"expensetracker/internal/core"
	"expensetracker/internal/currency"
)

func snapshot(t *testing.T, code string) Snapshot {
	t.Helper()
	cur, err := currency.Find(code)
	if err != nil {
		t.Fatalf("find %s: %v", code, err)
	}
	return Snapshot{
		Expenses: []core.Expense{
			{ID: "b", Amount: core.Money{Cents: 150000}, Category: "Travel", Description: "Flights", Date: core.NewDate(2024, 3, 9)},
			{ID: "a", Amount: core.Money{Cents: 1250}, Category: "Food & Dining", Description: "Lunch", Date: core.NewDate(2024, 3, 5)},
		},
		Currency:    cur,
		GeneratedAt: time.Date(2024, 3, 10, 8, 30, 0, 0, time.UTC),
	}
}

func TestFileName(t *testing.T) {
	day := time.Date(2024, 3, 5, 23, 0, 0, 0, time.UTC)
	if got := FileName(day, "json"); got != "expenses-2024-03-05.json" {
		t.Errorf("FileName = %q", got)
	}
}

func TestWriteJSON(t *testing.T) {
	var b strings.Builder
	if err := WriteJSON(&b, nil); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if got := strings.TrimSpace(b.String()); got != "[]" {
		t.Errorf("nil list = %q, want []", got)
	}

	b.Reset()
	snap := snapshot(t, "USD")
	if err := WriteJSON(&b, snap.Expenses[1:]); err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	out := b.String()
	if !strings.Contains(out, "\n  {\n    \"id\": \"a\"") {
		t.Errorf("expected two-space indentation, got:\n%s", out)
	}
	if !strings.Contains(out, `"amount": 12.50`) {
		t.Errorf("amount not written as a number with two decimals:\n%s", out)
	}
}

func TestJSONExporter(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	snap := snapshot(t, "USD")

	e := NewJSONExporter(dir)
	ref, err := e.Export(context.Background(), snap)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if want := filepath.Join(dir, "expenses-2024-03-10.json"); ref != want {
		t.Errorf("ref = %q, want %q", ref, want)
	}

	data, err := os.ReadFile(ref)
	if err != nil {
		t.Fatalf("read export: %v", err)
	}
	var got []core.Expense
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("decode export: %v", err)
	}
	if len(got) != 2 || got[0].ID != "b" || got[1].Amount.Cents != 1250 {
		t.Errorf("unexpected export contents: %+v", got)
	}
	if !got[1].Date.Equal(snap.Expenses[1].Date.Time) {
		t.Errorf("date = %v, want %v", got[1].Date, snap.Expenses[1].Date)
	}
	if _, err := os.Stat(ref + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temporary file left behind: %v", err)
	}
}

func TestJSONExporterCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewJSONExporter(t.TempDir()).Export(ctx, snapshot(t, "USD")); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestXLSXExporter(t *testing.T) {
	dir := t.TempDir()
	snap := snapshot(t, "INR")

	ref, err := NewXLSXExporter(dir).Export(context.Background(), snap)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if filepath.Base(ref) != "expenses-2024-03-10.xlsx" {
		t.Errorf("ref = %q", ref)
	}

	f, err := excelize.OpenFile(ref)
	if err != nil {
		t.Fatalf("open workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(expensesSheet)
	if err != nil {
		t.Fatalf("read expenses sheet: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if strings.Join(rows[0], "|") != "Date|Description|Category|Amount|Formatted" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][0] != "2024-03-09" || rows[1][1] != "Flights" || rows[1][4] != "₹1,500.00" {
		t.Errorf("first row = %v", rows[1])
	}
	if rows[2][4] != "₹12.50" {
		t.Errorf("second row formatted = %q", rows[2][4])
	}

	summary, err := f.GetRows(summarySheet)
	if err != nil {
		t.Fatalf("read summary sheet: %v", err)
	}
	if len(summary) != 4 {
		t.Fatalf("expected header + 2 categories + total, got %d rows", len(summary))
	}
	if summary[1][0] != "Travel" {
		t.Errorf("largest category first, got %v", summary[1])
	}
	last := summary[len(summary)-1]
	if last[0] != "Total" || last[3] != "₹1,512.50" {
		t.Errorf("total row = %v", last)
	}
}

type fakeExporter struct {
	name string
	ref  string
	err  error
}

func (f fakeExporter) Name() string { return f.name }

func (f fakeExporter) Export(ctx context.Context, _ Snapshot) (string, error) {
	return f.ref, f.err
}

func TestRun(t *testing.T) {
	snap := snapshot(t, "USD")

	refs, err := Run(context.Background(), snap,
		fakeExporter{name: "one", ref: "r1"},
		fakeExporter{name: "two", ref: "r2"},
	)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if refs["one"] != "r1" || refs["two"] != "r2" || len(refs) != 2 {
		t.Errorf("refs = %v", refs)
	}

	boom := errors.New("boom")
	_, err = Run(context.Background(), snap, fakeExporter{name: "one"}, fakeExporter{name: "bad", err: boom})
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped exporter error, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad export") {
		t.Errorf("error should name the exporter: %v", err)
	}

	if _, err := Run(context.Background(), snap); !errors.Is(err, ErrNoExporters) {
		t.Errorf("expected ErrNoExporters, got %v", err)
	}
}
