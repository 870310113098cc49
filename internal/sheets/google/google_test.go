package google

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"moneypaz/internal/core"
	"moneypaz/internal/log"
	ports "moneypaz/internal/sheets"
)

type recordedCall struct {
	method string
	path   string
	body   string
}

// fakeSheetsAPI answers the handful of Values endpoints the client uses.
type fakeSheetsAPI struct {
	mu     sync.Mutex
	calls  []recordedCall
	values [][]any
}

func (f *fakeSheetsAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.calls = append(f.calls, recordedCall{method: r.Method, path: r.URL.Path, body: string(body)})
	values := f.values
	f.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	switch {
	case strings.HasSuffix(r.URL.Path, ":append"):
		json.NewEncoder(w).Encode(map[string]any{
			"spreadsheetId": "sheet-1",
			"updates":       map[string]any{"updatedRange": "Movimientos!A7:F7"},
		})
	case strings.HasSuffix(r.URL.Path, ":clear"):
		json.NewEncoder(w).Encode(map[string]any{"clearedRange": "Movimientos!A2:F"})
	case r.Method == http.MethodGet:
		json.NewEncoder(w).Encode(map[string]any{"range": "Movimientos!A1:F10", "values": values})
	default:
		http.Error(w, "unexpected call", http.StatusNotFound)
	}
}

func (f *fakeSheetsAPI) recorded() []recordedCall {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]recordedCall(nil), f.calls...)
}

func newTestClient(t *testing.T, api *fakeSheetsAPI) *Client {
	t.Helper()
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return NewWithService(svc, "sheet-1", "", time.UTC, log.Discard())
}

func TestNew_MissingSpreadsheetID(t *testing.T) {
	_, err := New(context.Background(), Config{SpreadsheetID: "  "})
	if err == nil || err.Error() != "missing GOOGLE_SPREADSHEET_ID" {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	for _, k := range []string{"GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS"} {
		t.Setenv(k, "")
	}
	_, err := New(context.Background(), Config{SpreadsheetID: "id", Logger: log.Discard()})
	if err == nil || !strings.Contains(err.Error(), "missing service account credentials") {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestNew_UnreadableCredentialsFile(t *testing.T) {
	_, err := New(context.Background(), Config{
		SpreadsheetID:   "id",
		CredentialsFile: "/nonexistent/credentials.json",
		Logger:          log.Discard(),
	})
	if err == nil || !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}

func TestClient_NotConfigured(t *testing.T) {
	c := &Client{}
	ctx := context.Background()
	if _, err := c.AppendMovement(ctx, core.Movement{}); !errors.Is(err, ports.ErrNotConfigured) {
		t.Errorf("AppendMovement: %v", err)
	}
	if err := c.DeleteMovement(ctx, "x"); !errors.Is(err, ports.ErrNotConfigured) {
		t.Errorf("DeleteMovement: %v", err)
	}
	if err := c.ClearMovements(ctx); !errors.Is(err, ports.ErrNotConfigured) {
		t.Errorf("ClearMovements: %v", err)
	}
	if _, err := c.ListMovements(ctx); !errors.Is(err, ports.ErrNotConfigured) {
		t.Errorf("ListMovements: %v", err)
	}
}

func TestClient_AppendMovement(t *testing.T) {
	api := &fakeSheetsAPI{}
	c := newTestClient(t, api)

	m := core.Movement{
		ID:        "m1",
		Type:      core.Expense,
		Amount:    decimal.RequireFromString("12.5"),
		Category:  core.ResolveCategory("ocio"),
		Concept:   "Cine",
		Timestamp: time.Date(2026, 10, 3, 18, 0, 0, 0, time.UTC).UnixMilli(),
	}
	ref, err := c.AppendMovement(context.Background(), m)
	if err != nil {
		t.Fatalf("AppendMovement: %v", err)
	}
	if ref != "Movimientos!A7:F7" {
		t.Errorf("ref = %q", ref)
	}

	calls := api.recorded()
	if len(calls) != 1 || calls[0].method != http.MethodPost || !strings.Contains(calls[0].path, "/v4/spreadsheets/sheet-1/values/Movimientos!A:F") {
		t.Fatalf("unexpected calls %+v", calls)
	}
	for _, want := range []string{`"m1"`, `"3/10/2026"`, `"expense"`, `"ocio"`, `"Cine"`, `"-12.50"`} {
		if !strings.Contains(calls[0].body, want) {
			t.Errorf("request body %s lacks %s", calls[0].body, want)
		}
	}
}

func TestClient_DeleteMovement(t *testing.T) {
	api := &fakeSheetsAPI{values: [][]any{{"ID"}, {"m1"}, {"m2"}}}
	c := newTestClient(t, api)

	if err := c.DeleteMovement(context.Background(), "m2"); err != nil {
		t.Fatalf("DeleteMovement: %v", err)
	}
	calls := api.recorded()
	if len(calls) != 2 {
		t.Fatalf("expected read then clear, got %+v", calls)
	}
	if !strings.Contains(calls[1].path, "Movimientos!A3:F3:clear") {
		t.Errorf("cleared %s, want row 3", calls[1].path)
	}

	if err := c.DeleteMovement(context.Background(), "unknown"); err != nil {
		t.Fatalf("DeleteMovement unknown: %v", err)
	}
	if n := len(api.recorded()); n != 3 {
		t.Errorf("unknown id should only read, got %d calls", n)
	}
}

func TestClient_ClearAndList(t *testing.T) {
	api := &fakeSheetsAPI{values: [][]any{
		{"ID", "Fecha", "Tipo", "Categoría", "Descripción", "Importe"},
		{"m1", "3/10/2026", "income", "bizum", "Bizum", 20},
	}}
	c := newTestClient(t, api)
	ctx := context.Background()

	rows, err := c.ListMovements(ctx)
	if err != nil {
		t.Fatalf("ListMovements: %v", err)
	}
	if len(rows) != 1 || rows[0].Type != core.Income || !rows[0].Amount.Equal(decimal.NewFromInt(20)) {
		t.Errorf("rows = %+v", rows)
	}

	if err := c.ClearMovements(ctx); err != nil {
		t.Fatalf("ClearMovements: %v", err)
	}
	calls := api.recorded()
	if last := calls[len(calls)-1]; !strings.Contains(last.path, "Movimientos!A2:F:clear") {
		t.Errorf("cleared %s", last.path)
	}
}
