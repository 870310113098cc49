package sheets

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

// ErrNotConfigured is returned when a mirror has no backing spreadsheet.
var ErrNotConfigured = errors.New("spreadsheet mirror not configured")

// Header is the first row of the movements sheet.
var Header = []string{"ID", "Fecha", "Tipo", "Categoría", "Descripción", "Importe"}

// Ports for outbound adapters.
type (
	MovementWriter interface {
		// AppendMovement adds one row and returns a reference to it.
		AppendMovement(ctx context.Context, m core.Movement) (rowRef string, err error)
	}

	MovementDeleter interface {
		// DeleteMovement clears the row holding the movement id. Unknown ids
		// are not an error.
		DeleteMovement(ctx context.Context, id string) error
	}

	MovementClearer interface {
		// ClearMovements removes every data row, keeping the header.
		ClearMovements(ctx context.Context) error
	}

	MovementLister interface {
		ListMovements(ctx context.Context) ([]Row, error)
	}

	// Mirror is a spreadsheet holding one row per movement.
	Mirror interface {
		MovementWriter
		MovementDeleter
		MovementClearer
		MovementLister
	}
)

// Row is one mirrored movement.
type Row struct {
	ID          string
	Date        string // d/m/yyyy in the mirror's location
	Type        core.MovementType
	Category    string
	Description string
	Amount      decimal.Decimal // signed
}

// RowFromMovement builds the row written for a movement.
func RowFromMovement(m core.Movement, loc *time.Location) Row {
	return Row{
		ID:          m.ID,
		Date:        core.NumericSpanishDate(m.Time(loc), loc),
		Type:        m.Type,
		Category:    m.Category.ID,
		Description: m.Label(),
		Amount:      m.SignedAmount(),
	}
}

// Values returns the cells of the row in column order.
func (r Row) Values() []any {
	return []any{r.ID, r.Date, string(r.Type), r.Category, r.Description, core.FormatAmount(r.Amount)}
}

// ParseRow converts sheet cells back to a Row.
func ParseRow(cells []string) (Row, error) {
	if len(cells) < len(Header) {
		return Row{}, fmt.Errorf("row has %d cells, want %d", len(cells), len(Header))
	}
	typ, err := core.ParseMovementType(cells[2])
	if err != nil {
		return Row{}, err
	}
	amount, err := core.ParseDecimal(cells[5])
	if err != nil {
		return Row{}, err
	}
	return Row{
		ID:          cells[0],
		Date:        cells[1],
		Type:        typ,
		Category:    cells[3],
		Description: cells[4],
		Amount:      amount,
	}, nil
}
