package google

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"expensetracker/internal/core"
	"expensetracker/internal/currency"
	"expensetracker/internal/export"
)

func testSnapshot(t *testing.T) export.Snapshot {
	t.Helper()
	eur, err := currency.Find("EUR")
	if err != nil {
		t.Fatalf("find EUR: %v", err)
	}
	return export.Snapshot{
		Expenses: []core.Expense{
			{ID: "x1", Amount: core.Money{Cents: 123456}, Category: "Travel", Description: "Hotel", Date: core.NewDate(2024, 3, 2)},
		},
		Currency:    eur,
		GeneratedAt: time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC),
	}
}

func TestRows(t *testing.T) {
	rows := Rows(testSnapshot(t))
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
	if rows[0][0] != "Date" || len(rows[0]) != len(Header) {
		t.Errorf("header = %v", rows[0])
	}
	row := rows[1]
	if row[0] != "2024-03-02" || row[1] != "Hotel" || row[2] != "Travel" {
		t.Errorf("row = %v", row)
	}
	if row[3] != 1234.56 {
		t.Errorf("amount = %v", row[3])
	}
	if row[4] != "1.234,56\u00a0€" {
		t.Errorf("formatted = %q", row[4])
	}
	if row[5] != "x1" {
		t.Errorf("id = %v", row[5])
	}
}

func TestSheetRange(t *testing.T) {
	tests := []struct {
		sheet string
		want  string
	}{
		{"Expenses", "Expenses!A1:F2"},
		{"2024 Expenses", "'2024 Expenses'!A1:F2"},
		{"Bob's", "'Bob''s'!A1:F2"},
	}
	for _, tt := range tests {
		if got := sheetRange(tt.sheet, "A1:F2"); got != tt.want {
			t.Errorf("sheetRange(%q) = %q, want %q", tt.sheet, got, tt.want)
		}
	}
	if lastColumn() != "F" {
		t.Errorf("lastColumn = %q", lastColumn())
	}
}

func TestNewValidation(t *testing.T) {
	if _, err := New(context.Background(), Config{}); err == nil {
		t.Fatal("expected error for missing spreadsheet ID")
	}

	_, err := New(context.Background(), Config{SpreadsheetID: "id"})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("expected missing credentials error, got %v", err)
	}

	_, err = New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: filepath.Join(t.TempDir(), "nope.json")})
	if err == nil || !strings.Contains(err.Error(), "read service account file") {
		t.Fatalf("expected file read error, got %v", err)
	}
}

func TestNewWithServiceDefaultSheet(t *testing.T) {
	e := NewWithService(nil, "id", " ")
	if e.sheetName != "Expenses" {
		t.Errorf("sheetName = %q", e.sheetName)
	}
	if e.Name() != "sheets" {
		t.Errorf("Name = %q", e.Name())
	}
	if _, err := e.Export(context.Background(), testSnapshot(t)); err == nil {
		t.Fatal("expected error without a service")
	}
}

type recordedCall struct {
	method string
	path   string
	body   string
}

func TestExportClearsThenWrites(t *testing.T) {
	var (
		mu    sync.Mutex
		calls []recordedCall
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		mu.Lock()
		calls = append(calls, recordedCall{method: r.Method, path: r.URL.Path, body: string(body)})
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}

	e := NewWithService(svc, "sheet-id", "Expenses")
	ref, err := e.Export(context.Background(), testSnapshot(t))
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if ref != "Expenses!A1:F2" {
		t.Errorf("ref = %q", ref)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(calls) != 2 {
		t.Fatalf("expected 2 API calls, got %d: %+v", len(calls), calls)
	}
	if calls[0].method != http.MethodPost || !strings.HasSuffix(calls[0].path, ":clear") {
		t.Errorf("first call should clear the range, got %s %s", calls[0].method, calls[0].path)
	}
	if !strings.Contains(calls[0].path, "sheet-id") {
		t.Errorf("clear call misses spreadsheet id: %s", calls[0].path)
	}
	if calls[1].method != http.MethodPut {
		t.Errorf("second call should update values, got %s", calls[1].method)
	}

	var vr struct {
		Values [][]any `json:"values"`
	}
	if err := json.Unmarshal([]byte(calls[1].body), &vr); err != nil {
		t.Fatalf("decode update body: %v", err)
	}
	if len(vr.Values) != 2 || vr.Values[1][1] != "Hotel" {
		t.Errorf("update values = %v", vr.Values)
	}
}

func TestNewReadsCredentialsFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sa.json")
	if err := os.WriteFile(path, []byte(`{invalid`), 0600); err != nil {
		t.Fatal(err)
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "id", CredentialsFile: path})
	if err == nil {
		t.Fatal("expected error for malformed credentials")
	}
	if !strings.Contains(err.Error(), "sheets service") {
		t.Errorf("unexpected error: %v", err)
	}
}
