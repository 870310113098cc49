package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

var (
	// AccentColor is the main theme color.
	AccentColor = lipgloss.Color("#2E86AB")
	// IncomeColor marks positive figures.
	IncomeColor = lipgloss.Color("#4ECDC4")
	// ExpenseColor marks negative figures.
	ExpenseColor = lipgloss.Color("#FF6B6B")
	// SubtleColor is used for secondary text.
	SubtleColor = lipgloss.Color("#666666")

	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(AccentColor)

	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	SuccessStyle = lipgloss.NewStyle().
			Foreground(IncomeColor)

	ErrorStyle = lipgloss.NewStyle().
			Foreground(ExpenseColor)

	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true)
)

// Money renders an amount with two decimals, colored by sign.
func Money(d decimal.Decimal) string {
	s := core.FormatAmount(d)
	switch {
	case d.IsNegative():
		return ErrorStyle.Render(s)
	case d.IsPositive():
		return SuccessStyle.Render(s)
	}
	return s
}

// Table writes tab-aligned rows under a styled header.
type Table struct {
	w *tabwriter.Writer
}

func NewTable(out io.Writer, headers ...string) *Table {
	t := &Table{w: tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)}
	styled := make([]string, len(headers))
	for i, h := range headers {
		styled[i] = TableHeaderStyle.Render(h)
	}
	fmt.Fprintln(t.w, strings.Join(styled, "\t"))
	return t
}

func (t *Table) Row(cells ...string) {
	fmt.Fprintln(t.w, strings.Join(cells, "\t"))
}

func (t *Table) Flush() error {
	return t.w.Flush()
}
