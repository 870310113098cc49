package services

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

// RecentMovementsLimit is how many movements RecentMovements returns.
const RecentMovementsLimit = 10

// The functions in this file are pure derivations of a FinanceState. Those
// that depend on the calendar take the current instant and the location that
// defines local days and months.

// CurrentBalance is the initial balance plus income minus expenses.
func CurrentBalance(s core.FinanceState) decimal.Decimal {
	balance := s.InitialBalance
	for _, m := range s.Movements {
		balance = balance.Add(m.SignedAmount())
	}
	return balance
}

// NeedsSetup reports whether the state is still pristine.
func NeedsSetup(s core.FinanceState) bool {
	return s.InitialBalance.IsZero() && len(s.Movements) == 0
}

// MonthlySpent sums this month's expenses.
func MonthlySpent(s core.FinanceState, now time.Time, loc *time.Location) decimal.Decimal {
	return core.SumAmounts(monthExpenses(s, now, loc))
}

// SpendingByCategory sums this month's expenses for the four legacy keys only.
// Every key is present, with zero when nothing matched.
func SpendingByCategory(s core.FinanceState, now time.Time, loc *time.Location) map[string]decimal.Decimal {
	totals := make(map[string]decimal.Decimal, len(core.LegacySpendingKeys))
	for _, k := range core.LegacySpendingKeys {
		totals[k] = decimal.Zero
	}
	for _, m := range monthExpenses(s, now, loc) {
		if cur, ok := totals[m.Category.ID]; ok {
			totals[m.Category.ID] = cur.Add(m.Amount)
		}
	}
	return totals
}

// MonthlyCategoryBreakdown sums this month's expenses per category, folding
// legacy aliases, sorted by amount descending. Ties keep first-seen order.
func MonthlyCategoryBreakdown(s core.FinanceState, now time.Time, loc *time.Location) core.CategoryBreakdown {
	out := core.CategoryBreakdown{
		Categories:  []core.CategoryAmount{},
		TotalSpent:  decimal.Zero,
		TotalIncome: decimal.Zero,
		MaxAmount:   decimal.NewFromInt(1),
	}
	index := map[string]int{}
	for _, m := range FilterMovements(s.Movements, MonthScope{}, now, loc) {
		if m.Type == core.Income {
			out.TotalIncome = out.TotalIncome.Add(m.Amount)
			continue
		}
		out.TotalSpent = out.TotalSpent.Add(m.Amount)
		id := core.CanonicalCategoryID(m.Category.ID)
		i, ok := index[id]
		if !ok {
			i = len(out.Categories)
			index[id] = i
			out.Categories = append(out.Categories, core.CategoryAmount{
				CategoryID: id,
				Label:      core.ResolveCategory(id).Label(),
				Amount:     decimal.Zero,
			})
		}
		out.Categories[i].Amount = out.Categories[i].Amount.Add(m.Amount)
	}
	sort.SliceStable(out.Categories, func(i, j int) bool {
		return out.Categories[i].Amount.GreaterThan(out.Categories[j].Amount)
	})
	for _, c := range out.Categories {
		if c.Amount.GreaterThan(out.MaxAmount) {
			out.MaxAmount = c.Amount
		}
	}
	return out
}

// FrequentCategories ranks every category used by a movement by how many
// movements use it, all time. Ties keep first-seen order in the newest-first list.
func FrequentCategories(s core.FinanceState) []core.CategoryUsage {
	out := []core.CategoryUsage{}
	index := map[string]int{}
	for _, m := range s.Movements {
		i, ok := index[m.Category.ID]
		if !ok {
			i = len(out)
			index[m.Category.ID] = i
			out = append(out, core.CategoryUsage{Category: m.Category, Label: m.Category.Label()})
		}
		out[i].Count++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// CommittedMoney sums this month's recurring expenses.
func CommittedMoney(s core.FinanceState, now time.Time, loc *time.Location) decimal.Decimal {
	return core.SumAmounts(RecurringExpenses(s, now, loc))
}

// RecurringExpenses lists this month's recurring expenses, newest first.
func RecurringExpenses(s core.FinanceState, now time.Time, loc *time.Location) []core.Movement {
	out := []core.Movement{}
	for _, m := range monthExpenses(s, now, loc) {
		if m.IsRecurring {
			out = append(out, m)
		}
	}
	return out
}

// TodayStatus summarizes the expenses recorded since local midnight.
func TodayStatus(s core.FinanceState, now time.Time, loc *time.Location) core.TodayStatus {
	var st core.TodayStatus
	for _, m := range FilterMovements(s.Movements, TodayScope{}, now, loc) {
		if m.Type != core.Expense {
			continue
		}
		st.TodayExpensesCount++
		if m.Amount.GreaterThanOrEqual(core.BigExpenseThreshold) {
			st.HasBigExpense = true
		}
	}
	st.HasAnyExpense = st.TodayExpensesCount > 0
	return st
}

// LastMovementTime is the timestamp of the newest movement, nil when there is none.
func LastMovementTime(s core.FinanceState) *int64 {
	if len(s.Movements) == 0 {
		return nil
	}
	ts := s.Movements[0].Timestamp
	return &ts
}

// RecentMovements returns up to n movements, newest first.
func RecentMovements(s core.FinanceState, n int) []core.Movement {
	if n > len(s.Movements) {
		n = len(s.Movements)
	}
	return append([]core.Movement{}, s.Movements[:n]...)
}

// GroupThisMonth splits this month's movements into today, yesterday and the
// rest of the month. Empty groups are left out.
func GroupThisMonth(s core.FinanceState, now time.Time, loc *time.Location) []core.MovementGroup {
	groups := []core.MovementGroup{
		{Label: core.GroupToday},
		{Label: core.GroupYesterday},
		{Label: core.GroupEarlierMonth},
	}
	today := core.StartOfDay(now, loc)
	yesterday := core.StartOfDay(today.AddDate(0, 0, -1), loc)
	for _, m := range FilterMovements(s.Movements, MonthScope{}, now, loc) {
		day := core.StartOfDay(m.Time(loc), loc)
		switch {
		case day.Equal(today):
			groups[0].Movements = append(groups[0].Movements, m)
		case day.Equal(yesterday):
			groups[1].Movements = append(groups[1].Movements, m)
		default:
			groups[2].Movements = append(groups[2].Movements, m)
		}
	}
	out := make([]core.MovementGroup, 0, len(groups))
	for _, g := range groups {
		if len(g.Movements) > 0 {
			out = append(out, g)
		}
	}
	return out
}

// BuildSummary computes every aggregate for one revision of the state.
func BuildSummary(s core.FinanceState, revision uint64, now time.Time, loc *time.Location) core.Summary {
	return core.Summary{
		Revision:           revision,
		UserName:           s.UserName,
		InitialBalance:     s.InitialBalance,
		CurrentBalance:     CurrentBalance(s),
		NeedsSetup:         NeedsSetup(s),
		MonthlySpent:       MonthlySpent(s, now, loc),
		SpendingByCategory: SpendingByCategory(s, now, loc),
		Breakdown:          MonthlyCategoryBreakdown(s, now, loc),
		FrequentCategories: FrequentCategories(s),
		CommittedMoney:     CommittedMoney(s, now, loc),
		RecurringExpenses:  RecurringExpenses(s, now, loc),
		TodayStatus:        TodayStatus(s, now, loc),
		LastMovementTime:   LastMovementTime(s),
		RecentMovements:    RecentMovements(s, RecentMovementsLimit),
		ThisMonth:          GroupThisMonth(s, now, loc),
	}
}

func monthExpenses(s core.FinanceState, now time.Time, loc *time.Location) []core.Movement {
	out := []core.Movement{}
	for _, m := range FilterMovements(s.Movements, MonthScope{}, now, loc) {
		if m.Type == core.Expense {
			out = append(out, m)
		}
	}
	return out
}
