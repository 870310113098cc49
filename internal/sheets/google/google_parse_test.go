package google

import (
	"testing"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

func TestParseRows(t *testing.T) {
	values := [][]any{
		{"ID", "Fecha", "Tipo", "Categoría", "Descripción", "Importe"},
		{"m1", "3/10/2026", "expense", "ocio", "Cine", -12.5},
		{},
		{"", "", "", "", "", ""},
		{"m2", "4/10/2026", "income", "nomina", "Nómina", "1200,00"},
		{"bad", "4/10/2026", "transfer", "x", "y", 1},
		{"short", "4/10/2026"},
	}

	rows := parseRows(values)
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %+v", rows)
	}
	if rows[0].ID != "m1" || rows[0].Type != core.Expense || !rows[0].Amount.Equal(decimal.RequireFromString("-12.5")) {
		t.Errorf("first row = %+v", rows[0])
	}
	if rows[1].Category != "nomina" || !rows[1].Amount.Equal(decimal.NewFromInt(1200)) {
		t.Errorf("second row = %+v", rows[1])
	}
}

func TestFindRow(t *testing.T) {
	ids := []string{"ID", "a", "", "b"}
	tests := []struct {
		id   string
		want int
	}{
		{"a", 2},
		{"b", 4},
		{"zzz", 0},
	}
	for _, tt := range tests {
		if got := findRow(ids, tt.id); got != tt.want {
			t.Errorf("findRow(%q) = %d, want %d", tt.id, got, tt.want)
		}
	}
}
