// Package services provides business logic and orchestration services.
//
// This file implements the Strategy Pattern for period scoping. Each period
// (today, this month, all time) has its own strategy that decides whether a
// movement falls inside it.

package services

import (
	"fmt"
	"strings"
	"time"

	"moneypaz/internal/core"
)

// Period names a time window over the movement list.
type Period string

const (
	PeriodToday Period = "today"
	PeriodMonth Period = "month"
	PeriodAll   Period = "all"
)

// PeriodScope is the strategy interface for period filtering.
type PeriodScope interface {
	// Start returns the earliest instant inside the period. The zero time
	// means the period is unbounded.
	Start(now time.Time, loc *time.Location) time.Time
}

// TodayScope covers everything since local midnight.
type TodayScope struct{}

func (TodayScope) Start(now time.Time, loc *time.Location) time.Time {
	return core.StartOfDay(now, loc)
}

// MonthScope covers everything since local midnight of the 1st.
type MonthScope struct{}

func (MonthScope) Start(now time.Time, loc *time.Location) time.Time {
	return core.StartOfMonth(now, loc)
}

// AllScope covers the whole history.
type AllScope struct{}

func (AllScope) Start(time.Time, *time.Location) time.Time {
	return time.Time{}
}

// periodScopes maps period names to their strategies.
var periodScopes = map[Period]PeriodScope{
	PeriodToday: TodayScope{},
	PeriodMonth: MonthScope{},
	PeriodAll:   AllScope{},
}

// GetPeriodScope returns the strategy for a period name.
// Returns an error if the period is not supported.
func GetPeriodScope(p Period) (PeriodScope, error) {
	scope, ok := periodScopes[p]
	if !ok {
		return nil, fmt.Errorf("unknown period: %s", p)
	}
	return scope, nil
}

// RegisterPeriodScope registers a strategy for a new period name.
func RegisterPeriodScope(p Period, scope PeriodScope) {
	periodScopes[p] = scope
}

// ParsePeriod maps user input to a Period, treating empty input as PeriodAll.
func ParsePeriod(s string) (Period, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return PeriodAll, nil
	}
	p := Period(s)
	if _, err := GetPeriodScope(p); err != nil {
		return "", err
	}
	return p, nil
}

// FilterMovements keeps the movements inside the scope, preserving order.
func FilterMovements(movements []core.Movement, scope PeriodScope, now time.Time, loc *time.Location) []core.Movement {
	start := scope.Start(now, loc)
	out := make([]core.Movement, 0, len(movements))
	for _, m := range movements {
		if start.IsZero() || m.Timestamp >= start.UnixMilli() {
			out = append(out, m)
		}
	}
	return out
}
