package core

import (
	"fmt"
	"time"
)

var shortMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sept", "oct", "nov", "dic"}

// StartOfDay returns local midnight of the day t falls on in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	t = t.In(orLocal(loc))
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// StartOfMonth returns local midnight of the first day of t's month in loc.
func StartOfMonth(t time.Time, loc *time.Location) time.Time {
	t = t.In(orLocal(loc))
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// CalendarDaysBetween counts the calendar days from a to b in loc,
// ignoring the time of day. It is negative when b is before a.
func CalendarDaysBetween(a, b time.Time, loc *time.Location) int {
	loc = orLocal(loc)
	a, b = a.In(loc), b.In(loc)
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(db.Sub(da).Hours() / 24)
}

// ShortSpanishDate renders "3 oct".
func ShortSpanishDate(t time.Time, loc *time.Location) string {
	t = t.In(orLocal(loc))
	return fmt.Sprintf("%d %s", t.Day(), shortMonths[t.Month()-1])
}

// NumericSpanishDate renders "3/10/2026".
func NumericSpanishDate(t time.Time, loc *time.Location) string {
	t = t.In(orLocal(loc))
	return fmt.Sprintf("%d/%d/%d", t.Day(), int(t.Month()), t.Year())
}

// ParseMovementDate parses the Date field of a movement.
func ParseMovementDate(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse movement date %q: %w", s, err)
	}
	return t, nil
}

// FormatMovementDate renders t in the layout stored in Movement.Date.
func FormatMovementDate(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}
