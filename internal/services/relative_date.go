package services

import (
	"fmt"
	"time"

	"moneypaz/internal/core"
)

// FormatRelativeDate renders a stored movement date relative to now:
// "Hoy", "Ayer", "Hace N días" up to six days, then a short Spanish date.
// Days are counted on the local calendar; future dates read as "Hoy" and
// unparseable input is returned unchanged.
func FormatRelativeDate(date string, now time.Time, loc *time.Location) string {
	t, err := core.ParseMovementDate(date)
	if err != nil {
		return date
	}
	return FormatRelativeTime(t, now, loc)
}

// FormatRelativeTime is FormatRelativeDate for an already parsed instant.
func FormatRelativeTime(t, now time.Time, loc *time.Location) string {
	days := core.CalendarDaysBetween(t, now, loc)
	switch {
	case days <= 0:
		return "Hoy"
	case days == 1:
		return "Ayer"
	case days < 7:
		return fmt.Sprintf("Hace %d días", days)
	default:
		return core.ShortSpanishDate(t, loc)
	}
}
