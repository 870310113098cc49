package core

import (
	"time"

	"github.com/shopspring/decimal"
)

// RoleAdmin is the role that grants access to user administration.
const RoleAdmin = "admin"

// Profile is a registered user as known to the admin store.
type Profile struct {
	UserID      string    `json:"userId"`
	Email       string    `json:"email"`
	DisplayName string    `json:"displayName"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserSummary is a profile together with the sum of its mirrored expenses.
type UserSummary struct {
	Profile
	TotalExpenses decimal.Decimal `json:"totalExpenses"`
}
