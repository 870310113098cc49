package core

import "github.com/shopspring/decimal"

// BigExpenseThreshold is the amount at which a single expense today counts as big.
var BigExpenseThreshold = decimal.NewFromInt(50)

// RecurringAlertType classifies a recurring expense against its previous occurrence.
type RecurringAlertType string

const (
	AlertSilent    RecurringAlertType = "silent"
	AlertNew       RecurringAlertType = "new"
	AlertStable    RecurringAlertType = "stable"
	AlertIncreased RecurringAlertType = "increased"
	AlertDecreased RecurringAlertType = "decreased"
)

// Legacy spending keys, always present in SpendingByCategory.
var LegacySpendingKeys = []string{"comida", "casa", "ocio", "varios"}

// Group labels used by GroupThisMonth.
const (
	GroupToday        = "Hoy"
	GroupYesterday    = "Ayer"
	GroupEarlierMonth = "Anteriores este mes"
)

// CategoryAmount represents an amount aggregated by category id.
type CategoryAmount struct {
	CategoryID string          `json:"categoryId"`
	Label      string          `json:"label"`
	Amount     decimal.Decimal `json:"amount"`
}

// CategoryBreakdown is this month's spending per category plus the month totals.
type CategoryBreakdown struct {
	Categories  []CategoryAmount `json:"categories"`
	TotalSpent  decimal.Decimal  `json:"totalSpent"`
	TotalIncome decimal.Decimal  `json:"totalIncome"`
	// MaxAmount is the largest category amount, never below 1.
	MaxAmount decimal.Decimal `json:"maxAmount"`
}

// CategoryUsage counts how many movements use a category.
type CategoryUsage struct {
	Category Category `json:"category"`
	Label    string   `json:"label"`
	Count    int      `json:"count"`
}

type TodayStatus struct {
	HasBigExpense      bool `json:"hasBigExpense"`
	HasAnyExpense      bool `json:"hasAnyExpense"`
	TodayExpensesCount int  `json:"todayExpensesCount"`
}

type MovementGroup struct {
	Label     string     `json:"label"`
	Movements []Movement `json:"movements"`
}

// RecurringComparison is the outcome of comparing a recurring expense amount
// with the last recorded one.
type RecurringComparison struct {
	Type       RecurringAlertType `json:"type"`
	Difference *decimal.Decimal   `json:"difference,omitempty"`
	Previous   *Movement          `json:"previous,omitempty"`
}

// Summary bundles every derived aggregate for one revision of the state.
type Summary struct {
	Revision           uint64                     `json:"revision"`
	UserName           string                     `json:"userName"`
	InitialBalance     decimal.Decimal            `json:"initialBalance"`
	CurrentBalance     decimal.Decimal            `json:"currentBalance"`
	NeedsSetup         bool                       `json:"needsSetup"`
	MonthlySpent       decimal.Decimal            `json:"monthlySpent"`
	SpendingByCategory map[string]decimal.Decimal `json:"spendingByCategory"`
	Breakdown          CategoryBreakdown          `json:"breakdown"`
	FrequentCategories []CategoryUsage            `json:"frequentCategories"`
	CommittedMoney     decimal.Decimal            `json:"committedMoney"`
	RecurringExpenses  []Movement                 `json:"recurringExpenses"`
	TodayStatus        TodayStatus                `json:"todayStatus"`
	LastMovementTime   *int64                     `json:"lastMovementTime"`
	RecentMovements    []Movement                 `json:"recentMovements"`
	ThisMonth          []MovementGroup            `json:"thisMonth"`
}
