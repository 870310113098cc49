package services

import (
	"testing"
	"time"

	"moneypaz/internal/core"
)

func at(day, hour int) time.Time {
	return time.Date(2026, 10, day, hour, 0, 0, 0, testLoc)
}

func TestMonthlyScoping_ExcludesLastMonth(t *testing.T) {
	lastMonth := mov("old", core.Expense, "40", "suscripciones", time.Date(2026, 9, 30, 23, 59, 0, 0, testLoc))
	lastMonth.IsRecurring = true
	thisMonth := mov("new", core.Expense, "15", "suscripciones", at(1, 0))
	thisMonth.IsRecurring = true
	s := stateWith(thisMonth, lastMonth)

	if got := MonthlySpent(s, testNow, testLoc); !got.Equal(dec("15")) {
		t.Errorf("monthlySpent = %s, want 15", got)
	}
	if got := CommittedMoney(s, testNow, testLoc); !got.Equal(dec("15")) {
		t.Errorf("committedMoney = %s, want 15", got)
	}
	rec := RecurringExpenses(s, testNow, testLoc)
	if len(rec) != 1 || rec[0].ID != "new" {
		t.Errorf("recurringExpenses = %+v", rec)
	}
}

func TestMonthBoundaryUsesLocation(t *testing.T) {
	// 30 Sep 23:30 UTC is already 1 Oct in CEST.
	m := mov("edge", core.Expense, "7", "ocio", time.Date(2026, 9, 30, 23, 30, 0, 0, time.UTC))
	s := stateWith(m)
	if got := MonthlySpent(s, testNow, testLoc); !got.Equal(dec("7")) {
		t.Errorf("expected movement inside local month, got %s", got)
	}
	if got := MonthlySpent(s, testNow, time.UTC); !got.IsZero() {
		t.Errorf("expected movement outside UTC month, got %s", got)
	}
}

func TestCurrentBalance(t *testing.T) {
	s := stateWith(
		mov("a", core.Income, "1200", "nomina", at(1, 9)),
		mov("b", core.Expense, "45.30", "alimentacion", at(2, 9)),
		mov("c", core.Expense, "4.70", "ocio", time.Date(2025, 1, 1, 0, 0, 0, 0, testLoc)),
	)
	s.InitialBalance = dec("100")
	if got := CurrentBalance(s); !got.Equal(dec("1250")) {
		t.Errorf("balance = %s, want 1250", got)
	}
}

func TestSpendingByCategory_LegacyKeysOnly(t *testing.T) {
	s := stateWith(
		mov("1", core.Expense, "10", "comida", at(10, 9)),
		mov("2", core.Expense, "5", "ocio", at(11, 9)),
		mov("3", core.Expense, "99", "alimentacion", at(12, 9)),
		mov("4", core.Income, "50", "nomina", at(12, 9)),
	)
	got := SpendingByCategory(s, testNow, testLoc)
	if len(got) != 4 {
		t.Fatalf("expected exactly four keys, got %v", got)
	}
	want := map[string]string{"comida": "10", "casa": "0", "ocio": "5", "varios": "0"}
	for k, v := range want {
		if !got[k].Equal(dec(v)) {
			t.Errorf("%s = %s, want %s", k, got[k], v)
		}
	}
}

func TestMonthlyCategoryBreakdown(t *testing.T) {
	s := stateWith(
		mov("1", core.Expense, "10", "comida", at(10, 9)),
		mov("2", core.Expense, "30", "alimentacion", at(11, 9)),
		mov("3", core.Expense, "0.5", "transporte", at(12, 9)),
		mov("4", core.Expense, "12", "gimnasio", at(12, 9)),
		mov("5", core.Income, "900", "nomina", at(1, 9)),
		mov("6", core.Expense, "500", "ocio", time.Date(2026, 9, 1, 9, 0, 0, 0, testLoc)),
	)
	b := MonthlyCategoryBreakdown(s, testNow, testLoc)

	if !b.TotalSpent.Equal(dec("52.5")) || !b.TotalIncome.Equal(dec("900")) {
		t.Fatalf("totals spent=%s income=%s", b.TotalSpent, b.TotalIncome)
	}
	if len(b.Categories) != 3 {
		t.Fatalf("expected 3 categories, got %+v", b.Categories)
	}
	if b.Categories[0].CategoryID != "alimentacion" || !b.Categories[0].Amount.Equal(dec("40")) {
		t.Errorf("aliases not folded: %+v", b.Categories[0])
	}
	if b.Categories[1].CategoryID != "gimnasio" || b.Categories[1].Label != "Gimnasio" {
		t.Errorf("unexpected second entry %+v", b.Categories[1])
	}
	if b.Categories[2].CategoryID != "movilidad" {
		t.Errorf("transporte should fold into movilidad: %+v", b.Categories[2])
	}
	if !b.MaxAmount.Equal(dec("40")) {
		t.Errorf("max = %s, want 40", b.MaxAmount)
	}

	empty := MonthlyCategoryBreakdown(core.ZeroState(), testNow, testLoc)
	if !empty.MaxAmount.Equal(dec("1")) || len(empty.Categories) != 0 {
		t.Errorf("empty breakdown = %+v", empty)
	}
}

func TestFrequentCategories_TiesKeepFirstSeenOrder(t *testing.T) {
	s := stateWith(
		mov("1", core.Expense, "1", "ocio", at(5, 9)),
		mov("2", core.Expense, "1", "luz", at(4, 9)),
		mov("3", core.Expense, "1", "ocio", at(3, 9)),
		mov("4", core.Expense, "1", "luz", at(2, 9)),
		mov("5", core.Expense, "1", "agua", at(1, 9)),
		mov("6", core.Expense, "1", "gimnasio", time.Date(2025, 3, 1, 0, 0, 0, 0, testLoc)),
		mov("7", core.Expense, "1", "gimnasio", time.Date(2025, 2, 1, 0, 0, 0, 0, testLoc)),
		mov("8", core.Expense, "1", "gimnasio", time.Date(2025, 1, 1, 0, 0, 0, 0, testLoc)),
	)
	got := FrequentCategories(s)
	want := []string{"gimnasio", "ocio", "luz", "agua"}
	if len(got) != len(want) {
		t.Fatalf("got %+v", got)
	}
	for i, id := range want {
		if got[i].Category.ID != id {
			t.Errorf("position %d = %s, want %s", i, got[i].Category.ID, id)
		}
	}
	if got[0].Count != 3 {
		t.Errorf("gimnasio count = %d", got[0].Count)
	}
}

func TestTodayStatus(t *testing.T) {
	cases := []struct {
		name  string
		state core.FinanceState
		want  core.TodayStatus
	}{
		{"empty", core.ZeroState(), core.TodayStatus{}},
		{
			"big expense at threshold",
			stateWith(mov("1", core.Expense, "50", "ocio", at(18, 8)), mov("2", core.Expense, "3", "ocio", at(18, 1))),
			core.TodayStatus{HasBigExpense: true, HasAnyExpense: true, TodayExpensesCount: 2},
		},
		{
			"yesterday and income ignored",
			stateWith(mov("1", core.Income, "500", "nomina", at(18, 8)), mov("2", core.Expense, "80", "ocio", at(17, 23))),
			core.TodayStatus{},
		},
		{
			"small expense",
			stateWith(mov("1", core.Expense, "49.99", "ocio", at(18, 0))),
			core.TodayStatus{HasAnyExpense: true, TodayExpensesCount: 1},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := TodayStatus(tc.state, testNow, testLoc); got != tc.want {
				t.Errorf("got %+v, want %+v", got, tc.want)
			}
		})
	}
}

func TestLastMovementTimeAndRecent(t *testing.T) {
	if LastMovementTime(core.ZeroState()) != nil {
		t.Error("expected nil for empty state")
	}
	var ms []core.Movement
	for i := 12; i >= 1; i-- {
		ms = append(ms, mov(string(rune('a'+i)), core.Expense, "1", "ocio", at(i, 9)))
	}
	s := stateWith(ms...)
	if ts := LastMovementTime(s); ts == nil || *ts != at(12, 9).UnixMilli() {
		t.Errorf("unexpected last movement time %v", ts)
	}
	recent := RecentMovements(s, RecentMovementsLimit)
	if len(recent) != 10 || recent[0].ID != ms[0].ID {
		t.Errorf("unexpected recent movements %d", len(recent))
	}
}

func TestGroupThisMonth(t *testing.T) {
	s := stateWith(
		mov("today", core.Expense, "1", "ocio", at(18, 1)),
		mov("yesterday", core.Expense, "1", "ocio", at(17, 23)),
		mov("earlier", core.Income, "1", "bizum", at(2, 9)),
		mov("lastmonth", core.Expense, "1", "ocio", time.Date(2026, 9, 29, 9, 0, 0, 0, testLoc)),
	)
	groups := GroupThisMonth(s, testNow, testLoc)
	if len(groups) != 3 {
		t.Fatalf("expected 3 groups, got %+v", groups)
	}
	wantLabels := []string{core.GroupToday, core.GroupYesterday, core.GroupEarlierMonth}
	wantIDs := []string{"today", "yesterday", "earlier"}
	for i := range groups {
		if groups[i].Label != wantLabels[i] || len(groups[i].Movements) != 1 || groups[i].Movements[0].ID != wantIDs[i] {
			t.Errorf("group %d = %+v", i, groups[i])
		}
	}

	onlyToday := GroupThisMonth(stateWith(mov("t", core.Expense, "1", "ocio", at(18, 9))), testNow, testLoc)
	if len(onlyToday) != 1 || onlyToday[0].Label != core.GroupToday {
		t.Errorf("empty groups should be omitted: %+v", onlyToday)
	}
}

func TestBuildSummary(t *testing.T) {
	s := stateWith(mov("1", core.Expense, "60", "ocio", at(18, 9)))
	s.InitialBalance = dec("100")
	s.UserName = "Pablo"

	sum := BuildSummary(s, 7, testNow, testLoc)
	if sum.Revision != 7 || sum.UserName != "Pablo" {
		t.Errorf("unexpected header %+v", sum)
	}
	if !sum.CurrentBalance.Equal(dec("40")) || !sum.MonthlySpent.Equal(dec("60")) || sum.NeedsSetup {
		t.Errorf("unexpected figures %+v", sum)
	}
	if !sum.TodayStatus.HasBigExpense || len(sum.RecentMovements) != 1 || len(sum.ThisMonth) != 1 {
		t.Errorf("unexpected derived fields %+v", sum)
	}
}

func TestStoreMovementsByPeriod(t *testing.T) {
	f := newStoreFixture(t)
	f.clock.Set(time.Date(2026, 9, 20, 9, 0, 0, 0, testLoc))
	f.store.AddMovement(bg(), NewMovement{Type: core.Expense, Amount: dec("1"), Category: "ocio"})
	f.clock.Set(at(3, 9))
	f.store.AddMovement(bg(), NewMovement{Type: core.Expense, Amount: dec("2"), Category: "ocio"})
	f.clock.Set(testNow)
	f.store.AddMovement(bg(), NewMovement{Type: core.Expense, Amount: dec("3"), Category: "ocio"})

	for p, want := range map[Period]int{PeriodToday: 1, PeriodMonth: 2, PeriodAll: 3} {
		got, err := f.store.Movements(p)
		if err != nil || len(got) != want {
			t.Errorf("%s: got %d movements (err=%v), want %d", p, len(got), err, want)
		}
	}
	if _, err := f.store.Movements("week"); err == nil {
		t.Error("expected error for unknown period")
	}
}
