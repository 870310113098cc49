package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"moneypaz/internal/core"
	"moneypaz/internal/sheets"
)

// Mirror is an in-memory sheets.Mirror. Deleted rows are blanked rather
// than removed, like clearing cells in a spreadsheet.
type Mirror struct {
	mu   sync.Mutex
	loc  *time.Location
	rows []sheets.Row
}

var _ sheets.Mirror = (*Mirror)(nil)

func New(loc *time.Location) *Mirror {
	if loc == nil {
		loc = time.Local
	}
	return &Mirror{loc: loc}
}

// AppendMovement stores the row and returns a synthetic row reference.
func (m *Mirror) AppendMovement(_ context.Context, mv core.Movement) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = append(m.rows, sheets.RowFromMovement(mv, m.loc))
	// Row 1 is the header.
	return fmt.Sprintf("mem:%d", len(m.rows)+1), nil
}

func (m *Mirror) DeleteMovement(_ context.Context, id string) error {
	if id == "" {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.rows {
		if m.rows[i].ID == id {
			m.rows[i] = sheets.Row{}
			return nil
		}
	}
	return nil
}

func (m *Mirror) ClearMovements(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = nil
	return nil
}

// ListMovements returns the non-blank rows in insertion order.
func (m *Mirror) ListMovements(context.Context) ([]sheets.Row, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]sheets.Row, 0, len(m.rows))
	for _, r := range m.rows {
		if r.ID != "" {
			out = append(out, r)
		}
	}
	return out, nil
}
