package services

import (
	"time"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

// The methods below evaluate the aggregates on the current snapshot using
// the store's clock and location.

func (s *FinanceStore) CurrentBalance() decimal.Decimal {
	st, _ := s.Snapshot()
	return CurrentBalance(st)
}

func (s *FinanceStore) NeedsSetup() bool {
	st, _ := s.Snapshot()
	return NeedsSetup(st)
}

func (s *FinanceStore) MonthlySpent() decimal.Decimal {
	st, _ := s.Snapshot()
	return MonthlySpent(st, s.now(), s.loc)
}

func (s *FinanceStore) SpendingByCategory() map[string]decimal.Decimal {
	st, _ := s.Snapshot()
	return SpendingByCategory(st, s.now(), s.loc)
}

func (s *FinanceStore) MonthlyCategoryBreakdown() core.CategoryBreakdown {
	st, _ := s.Snapshot()
	return MonthlyCategoryBreakdown(st, s.now(), s.loc)
}

func (s *FinanceStore) FrequentCategories() []core.CategoryUsage {
	st, _ := s.Snapshot()
	return FrequentCategories(st)
}

func (s *FinanceStore) CommittedMoney() decimal.Decimal {
	st, _ := s.Snapshot()
	return CommittedMoney(st, s.now(), s.loc)
}

func (s *FinanceStore) RecurringExpenses() []core.Movement {
	st, _ := s.Snapshot()
	return RecurringExpenses(st, s.now(), s.loc)
}

func (s *FinanceStore) TodayStatus() core.TodayStatus {
	st, _ := s.Snapshot()
	return TodayStatus(st, s.now(), s.loc)
}

func (s *FinanceStore) LastMovementTime() *int64 {
	st, _ := s.Snapshot()
	return LastMovementTime(st)
}

func (s *FinanceStore) RecentMovements() []core.Movement {
	st, _ := s.Snapshot()
	return RecentMovements(st, RecentMovementsLimit)
}

func (s *FinanceStore) GroupThisMonth() []core.MovementGroup {
	st, _ := s.Snapshot()
	return GroupThisMonth(st, s.now(), s.loc)
}

// Movements lists the movements inside a period, newest first.
func (s *FinanceStore) Movements(p Period) ([]core.Movement, error) {
	scope, err := GetPeriodScope(p)
	if err != nil {
		return nil, err
	}
	st, _ := s.Snapshot()
	return FilterMovements(st.Movements, scope, s.now(), s.loc), nil
}

// Summary computes every aggregate for the current revision.
func (s *FinanceStore) Summary() core.Summary {
	st, rev := s.Snapshot()
	return BuildSummary(st, rev, s.now(), s.loc)
}

func (s *FinanceStore) FormatRelativeDate(date string) string {
	return FormatRelativeDate(date, s.now(), s.loc)
}

func (s *FinanceStore) FindPreviousRecurring(concept, category string) (core.Movement, bool) {
	st, _ := s.Snapshot()
	return FindPreviousRecurring(st, concept, category)
}

func (s *FinanceStore) CompareRecurringExpense(amount decimal.Decimal, concept, category string) core.RecurringComparison {
	st, _ := s.Snapshot()
	return CompareRecurringExpense(st, amount, concept, category)
}

func (s *FinanceStore) SuggestedConcepts() []string {
	st, _ := s.Snapshot()
	return SuggestedConcepts(st)
}

func (s *FinanceStore) MatchConcepts(query string, limit int) []string {
	st, _ := s.Snapshot()
	return MatchConcepts(st, query, limit)
}

func (s *FinanceStore) QuickPickCategories(t core.MovementType) []core.Category {
	st, _ := s.Snapshot()
	return QuickPickCategories(st, t)
}

func (s *FinanceStore) CategoriesFor(t core.MovementType) []CategoryOption {
	st, _ := s.Snapshot()
	return CategoriesFor(st, t)
}

func (s *FinanceStore) SearchCategories(t core.MovementType, query string) []CategoryOption {
	st, _ := s.Snapshot()
	return SearchCategories(st, t, query)
}

// LocalDate is the current local calendar day, used to key cached summaries.
func (s *FinanceStore) LocalDate() string {
	return s.now().In(s.loc).Format(time.DateOnly)
}
