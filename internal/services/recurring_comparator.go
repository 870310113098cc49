package services

import (
	"strings"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

// silentRecurringTerms exempt a recurring expense from price-change alerts.
var silentRecurringTerms = []string{"vivienda", "hipoteca", "alquiler", "prestamo"}

// FindPreviousRecurring returns the newest recurring expense whose concept
// matches concept (trimmed, case-insensitive) or whose category id matches
// category (case-insensitive).
func FindPreviousRecurring(s core.FinanceState, concept, category string) (core.Movement, bool) {
	wantConcept := strings.ToLower(strings.TrimSpace(concept))
	wantCategory := strings.ToLower(category)
	for _, m := range s.Movements {
		if m.Type != core.Expense || !m.IsRecurring {
			continue
		}
		if m.Concept != "" && strings.ToLower(strings.TrimSpace(m.Concept)) == wantConcept {
			return m, true
		}
		if strings.ToLower(m.Category.ID) == wantCategory {
			return m, true
		}
	}
	return core.Movement{}, false
}

// IsSilentRecurring reports whether alerts are suppressed for this concept or category.
func IsSilentRecurring(concept, category string) bool {
	concept = strings.ToLower(concept)
	category = strings.ToLower(category)
	for _, term := range silentRecurringTerms {
		if strings.Contains(category, term) || strings.Contains(concept, term) {
			return true
		}
	}
	return false
}

// CompareRecurringExpense classifies amount against the previous matching
// recurring expense. It never changes the state.
func CompareRecurringExpense(s core.FinanceState, amount decimal.Decimal, concept, category string) core.RecurringComparison {
	if IsSilentRecurring(concept, category) {
		return core.RecurringComparison{Type: core.AlertSilent}
	}
	prev, ok := FindPreviousRecurring(s, concept, category)
	if !ok {
		return core.RecurringComparison{Type: core.AlertNew}
	}

	diff := amount.Sub(prev.Amount)
	res := core.RecurringComparison{Previous: &prev}
	switch {
	case diff.Abs().LessThan(core.SameAmountTolerance):
		res.Type = core.AlertStable
	case diff.IsPositive():
		res.Type = core.AlertIncreased
		res.Difference = &diff
	default:
		abs := diff.Abs()
		res.Type = core.AlertDecreased
		res.Difference = &abs
	}
	return res
}
