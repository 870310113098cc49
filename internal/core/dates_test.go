package core

import (
	"testing"
	"time"
)

func TestCalendarDaysBetween(t *testing.T) {
	loc := time.FixedZone("CEST", 2*3600)
	now := time.Date(2026, 10, 18, 0, 30, 0, 0, loc)
	cases := []struct {
		then time.Time
		want int
	}{
		{now.Add(-40 * time.Minute), 1},
		{now.Add(-10 * time.Minute), 0},
		{now.Add(-24 * time.Hour), 1},
		{time.Date(2026, 10, 16, 23, 59, 0, 0, loc), 2},
		{time.Date(2026, 10, 12, 12, 0, 0, 0, loc), 6},
		{time.Date(2026, 10, 11, 12, 0, 0, 0, loc), 7},
		{now.Add(time.Hour), 0},
		{now.Add(48 * time.Hour), -2},
	}
	for i, tc := range cases {
		if got := CalendarDaysBetween(tc.then, now, loc); got != tc.want {
			t.Fatalf("case %d expected %d, got %d", i, tc.want, got)
		}
	}
}

func TestCalendarDaysAcrossDST(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Madrid")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	a := time.Date(2026, 10, 24, 12, 0, 0, 0, loc)
	b := time.Date(2026, 10, 26, 12, 0, 0, 0, loc)
	if got := CalendarDaysBetween(a, b, loc); got != 2 {
		t.Fatalf("expected 2, got %d", got)
	}
}

func TestSpanishDates(t *testing.T) {
	d := time.Date(2026, 9, 3, 22, 0, 0, 0, time.UTC)
	if got := ShortSpanishDate(d, time.UTC); got != "3 sept" {
		t.Fatalf("got %q", got)
	}
	if got := NumericSpanishDate(d, time.UTC); got != "3/9/2026" {
		t.Fatalf("got %q", got)
	}
	// Local day can differ from the UTC one.
	madrid := time.FixedZone("CEST", 2*3600)
	if got := ShortSpanishDate(d, madrid); got != "4 sept" {
		t.Fatalf("got %q", got)
	}
}

func TestStartOfMonth(t *testing.T) {
	loc := time.FixedZone("X", -5*3600)
	now := time.Date(2026, 3, 1, 2, 0, 0, 0, time.UTC) // still February locally
	got := StartOfMonth(now, loc)
	want := time.Date(2026, 2, 1, 0, 0, 0, 0, loc)
	if !got.Equal(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestMovementDateRoundTrip(t *testing.T) {
	ts := time.Date(2026, 10, 18, 9, 15, 30, 123e6, time.UTC)
	s := FormatMovementDate(ts)
	if s != "2026-10-18T09:15:30.123Z" {
		t.Fatalf("unexpected format %q", s)
	}
	back, err := ParseMovementDate(s)
	if err != nil || !back.Equal(ts) {
		t.Fatalf("round trip failed: %v %v", back, err)
	}
	if _, err := ParseMovementDate("ayer"); err == nil {
		t.Fatalf("expected parse error")
	}
}
