package sheets

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

func TestRowFromMovement(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	m := core.Movement{
		ID:          "m1",
		Type:        core.Expense,
		Amount:      decimal.RequireFromString("45.3"),
		Category:    core.ResolveCategory("alimentacion"),
		Description: "Alimentación",
		Concept:     "mercadona",
		Timestamp:   time.Date(2026, 9, 30, 23, 30, 0, 0, time.UTC).UnixMilli(),
	}
	row := RowFromMovement(m, loc)

	want := []any{"m1", "1/10/2026", "expense", "alimentacion", "mercadona", "-45.30"}
	got := row.Values()
	if len(got) != len(want) {
		t.Fatalf("values = %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("cell %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestParseRow(t *testing.T) {
	row, err := ParseRow([]string{"m1", "1/10/2026", "Income", "bizum", "Bizum", "20,5"})
	if err != nil {
		t.Fatalf("ParseRow: %v", err)
	}
	if row.Type != core.Income || !row.Amount.Equal(decimal.RequireFromString("20.5")) {
		t.Errorf("row = %+v", row)
	}

	bad := [][]string{
		{"m1", "1/10/2026", "income"},
		{"m1", "1/10/2026", "gift", "x", "y", "1"},
		{"m1", "1/10/2026", "expense", "x", "y", "abc"},
	}
	for _, cells := range bad {
		if _, err := ParseRow(cells); err == nil {
			t.Errorf("ParseRow(%v) should fail", cells)
		}
	}
}
