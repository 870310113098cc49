package core

import (
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestMovementValidate(t *testing.T) {
	good := Movement{Type: Expense, Amount: decimal.NewFromInt(3), Category: ResolveCategory("ocio")}
	if err := good.Validate(); err != nil {
		t.Fatalf("expected ok, got %v", err)
	}

	cases := []struct {
		m   Movement
		err error
	}{
		{Movement{Type: "transfer", Amount: decimal.NewFromInt(1), Category: ResolveCategory("ocio")}, ErrInvalidType},
		{Movement{Type: Expense, Amount: decimal.Zero, Category: ResolveCategory("ocio")}, ErrInvalidAmount},
		{Movement{Type: Income, Amount: decimal.NewFromInt(-1), Category: ResolveCategory("nomina")}, ErrInvalidAmount},
		{Movement{Type: Expense, Amount: decimal.NewFromInt(1), Category: ResolveCategory("  ")}, ErrEmptyCategory},
	}
	for i, tc := range cases {
		if err := tc.m.Validate(); !errors.Is(err, tc.err) {
			t.Fatalf("case %d expected %v, got %v", i, tc.err, err)
		}
	}
}

func TestMovementLabelPrefersConcept(t *testing.T) {
	m := Movement{Description: "Ocio", Concept: "cine"}
	if m.Label() != "cine" {
		t.Fatalf("expected concept, got %q", m.Label())
	}
	m.Concept = ""
	if m.Label() != "Ocio" {
		t.Fatalf("expected description, got %q", m.Label())
	}
}

func TestSignedAmount(t *testing.T) {
	amt := decimal.RequireFromString("12.5")
	if got := (Movement{Type: Income, Amount: amt}).SignedAmount(); !got.Equal(amt) {
		t.Fatalf("income: got %s", got)
	}
	if got := (Movement{Type: Expense, Amount: amt}).SignedAmount(); !got.Equal(amt.Neg()) {
		t.Fatalf("expense: got %s", got)
	}
}

func TestParseMovementType(t *testing.T) {
	if got, err := ParseMovementType(" Income "); err != nil || got != Income {
		t.Fatalf("expected income, got %q (err=%v)", got, err)
	}
	if _, err := ParseMovementType("refund"); !errors.Is(err, ErrInvalidType) {
		t.Fatalf("expected ErrInvalidType, got %v", err)
	}
}

func TestCloneDoesNotShareSlices(t *testing.T) {
	s := ZeroState()
	s.Movements = append(s.Movements, Movement{ID: "a"})
	c := s.Clone()
	c.Movements[0].ID = "b"
	c.UsedConcepts = append(c.UsedConcepts, "x")
	if s.Movements[0].ID != "a" {
		t.Fatalf("clone mutated original movements")
	}
	if len(s.UsedConcepts) != 0 {
		t.Fatalf("clone mutated original concepts")
	}
}

func TestZeroStateHasEmptyLists(t *testing.T) {
	s := ZeroState()
	if s.Movements == nil || s.CustomCategories == nil || s.UsedConcepts == nil {
		t.Fatalf("zero state lists must be non-nil")
	}
	if s.Version != SnapshotVersion || !s.InitialBalance.IsZero() || s.UserName != "" {
		t.Fatalf("unexpected zero state %+v", s)
	}
}

func TestMovementTime(t *testing.T) {
	loc := time.FixedZone("CET", 3600)
	m := Movement{Timestamp: time.Date(2026, 1, 1, 23, 30, 0, 0, time.UTC).UnixMilli()}
	if got := m.Time(loc); got.Day() != 2 || got.Hour() != 0 {
		t.Fatalf("expected 2 Jan 00:30 local, got %v", got)
	}
}

func TestDefaultDescription(t *testing.T) {
	cases := []struct {
		description, concept, category, want string
	}{
		{"Cena", "Bar Pepe", "ocio", "Cena"},
		{"  ", " Bar Pepe ", "ocio", "Bar Pepe"},
		{"", "", "nomina", "Nómina"},
		{"", "", "clases particulares", "Clases Particulares"},
	}
	for _, tc := range cases {
		if got := DefaultDescription(tc.description, tc.concept, tc.category); got != tc.want {
			t.Errorf("DefaultDescription(%q, %q, %q) = %q, want %q", tc.description, tc.concept, tc.category, got, tc.want)
		}
	}
}
