package core

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const (
	Expense MovementType = "expense"
	Income  MovementType = "income"
)

// SnapshotVersion is the schema version written with every persisted FinanceState.
const SnapshotVersion = 2

type (
	MovementType string

	// Movement is a single recorded income or expense event. Movements are never
	// edited after creation; they are only added or deleted.
	Movement struct {
		ID          string          `json:"id"`
		Type        MovementType    `json:"type"`
		Amount      decimal.Decimal `json:"amount"`
		Category    Category        `json:"category"`
		Description string          `json:"description"`
		Concept     string          `json:"concept,omitempty"`
		IsRecurring bool            `json:"isRecurring"`
		Date        string          `json:"date"`      // RFC 3339, UTC
		Timestamp   int64           `json:"timestamp"` // epoch milliseconds
	}

	// FinanceState is the unit of persistence: read once at startup and written
	// in full after every mutation. Movements are kept newest first.
	FinanceState struct {
		Version          int             `json:"version"`
		InitialBalance   decimal.Decimal `json:"initialBalance"`
		Movements        []Movement      `json:"movements"`
		CustomCategories []Category      `json:"customCategories"`
		UsedConcepts     []string        `json:"usedConcepts"`
		UserName         string          `json:"userName"`
	}
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrInvalidType   = errors.New("invalid movement type")
	ErrEmptyCategory = errors.New("empty category")
)

// DateLayout is the layout used for Movement.Date.
const DateLayout = "2006-01-02T15:04:05.000Z07:00"

func (t MovementType) IsValid() bool {
	return t == Expense || t == Income
}

func (t MovementType) String() string {
	return string(t)
}

// ParseMovementType accepts "expense" or "income" in any case.
func ParseMovementType(s string) (MovementType, error) {
	t := MovementType(strings.ToLower(strings.TrimSpace(s)))
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	return t, nil
}

// Label returns the text shown for the movement: the concept when present,
// otherwise the description.
func (m Movement) Label() string {
	if m.Concept != "" {
		return m.Concept
	}
	return m.Description
}

// Time returns the creation time of the movement in the given location.
func (m Movement) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.UnixMilli(m.Timestamp).In(loc)
}

// SignedAmount is the effect of the movement on the balance.
func (m Movement) SignedAmount() decimal.Decimal {
	if m.Type == Income {
		return m.Amount
	}
	return m.Amount.Neg()
}

func (m Movement) IsExpense() bool {
	return m.Type == Expense
}

// Validate checks the invariants a transport should enforce before handing a
// movement to the store. The store itself accepts anything.
func (m Movement) Validate() error {
	if !m.Type.IsValid() {
		return ErrInvalidType
	}
	if !m.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(m.Category.ID) == "" {
		return ErrEmptyCategory
	}
	return nil
}

// DefaultDescription fills a missing description with the concept, then
// with the label of the category.
func DefaultDescription(description, concept, categoryID string) string {
	if d := strings.TrimSpace(description); d != "" {
		return d
	}
	if c := strings.TrimSpace(concept); c != "" {
		return c
	}
	return ResolveCategory(categoryID).Label()
}

// ZeroState returns the pristine state used on first start, after a reset and
// whenever a persisted snapshot cannot be read.
func ZeroState() FinanceState {
	return FinanceState{
		Version:          SnapshotVersion,
		InitialBalance:   decimal.Zero,
		Movements:        []Movement{},
		CustomCategories: []Category{},
		UsedConcepts:     []string{},
		UserName:         "",
	}
}

// Clone returns a copy that shares no slices with s.
func (s FinanceState) Clone() FinanceState {
	out := s
	out.Movements = append([]Movement(nil), s.Movements...)
	out.CustomCategories = append([]Category(nil), s.CustomCategories...)
	out.UsedConcepts = append([]string(nil), s.UsedConcepts...)
	if out.Movements == nil {
		out.Movements = []Movement{}
	}
	if out.CustomCategories == nil {
		out.CustomCategories = []Category{}
	}
	if out.UsedConcepts == nil {
		out.UsedConcepts = []string{}
	}
	return out
}

// FindMovement looks up a movement by id.
func (s FinanceState) FindMovement(id string) (Movement, bool) {
	for _, m := range s.Movements {
		if m.ID == id {
			return m, true
		}
	}
	return Movement{}, false
}

// HasCustomCategory reports whether id is already in the custom category list.
func (s FinanceState) HasCustomCategory(id string) bool {
	for _, c := range s.CustomCategories {
		if c.ID == id {
			return true
		}
	}
	return false
}

// HasConcept reports whether the normalized concept is already remembered.
func (s FinanceState) HasConcept(concept string) bool {
	for _, c := range s.UsedConcepts {
		if c == concept {
			return true
		}
	}
	return false
}

// NormalizeConcept is the form concepts are remembered in.
func NormalizeConcept(concept string) string {
	return strings.ToLower(strings.TrimSpace(concept))
}
