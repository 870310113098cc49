package core

import "time"

// EventKind names a state transition published after a mutation.
type EventKind string

const (
	EventMovementAdded   EventKind = "movement.added"
	EventMovementDeleted EventKind = "movement.deleted"
	EventStateReset      EventKind = "state.reset"
	EventBalanceSet      EventKind = "balance.set"
	EventUserNameSet     EventKind = "username.set"
	EventCategoryAdded   EventKind = "category.added"
)

// ChangeEvent describes one completed mutation of the finance state.
type ChangeEvent struct {
	Event     EventKind `json:"event"`
	Revision  uint64    `json:"revision"`
	Movement  *Movement `json:"movement,omitempty"`
	Category  *Category `json:"category,omitempty"`
	UserName  string    `json:"userName,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func (k EventKind) IsValid() bool {
	switch k {
	case EventMovementAdded, EventMovementDeleted, EventStateReset,
		EventBalanceSet, EventUserNameSet, EventCategoryAdded:
		return true
	}
	return false
}

// IsMovementEvent reports whether events of this kind carry a movement.
func (k EventKind) IsMovementEvent() bool {
	return k == EventMovementAdded || k == EventMovementDeleted
}
