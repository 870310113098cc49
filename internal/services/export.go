package services

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"

	"moneypaz/internal/core"
)

const utf8BOM = "\ufeff"

var csvHeader = []string{"Fecha", "Tipo", "Categoría", "Descripción", "Importe"}

// ExportedMovement is a movement as written to the JSON backup.
type ExportedMovement struct {
	core.Movement
	DateFormatted string `json:"dateFormatted"`
}

// Backup is the JSON export of a user's finance state.
type Backup struct {
	ExportDate       string             `json:"exportDate"`
	InitialBalance   decimal.Decimal    `json:"initialBalance"`
	CurrentBalance   decimal.Decimal    `json:"currentBalance"`
	CustomCategories []string           `json:"customCategories"`
	Movements        []ExportedMovement `json:"movements"`
}

// BuildBackup assembles the JSON export document.
func BuildBackup(s core.FinanceState, now time.Time, loc *time.Location) Backup {
	b := Backup{
		ExportDate:       core.FormatMovementDate(now),
		InitialBalance:   s.InitialBalance,
		CurrentBalance:   CurrentBalance(s),
		CustomCategories: make([]string, 0, len(s.CustomCategories)),
		Movements:        make([]ExportedMovement, 0, len(s.Movements)),
	}
	for _, c := range s.CustomCategories {
		b.CustomCategories = append(b.CustomCategories, c.ID)
	}
	for _, m := range s.Movements {
		b.Movements = append(b.Movements, ExportedMovement{
			Movement:      m,
			DateFormatted: formatExportDate(m, loc),
		})
	}
	return b
}

// WriteJSONExport writes the indented JSON backup to w.
func WriteJSONExport(w io.Writer, s core.FinanceState, now time.Time, loc *time.Location) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(BuildBackup(s, now, loc)); err != nil {
		return fmt.Errorf("write json export: %w", err)
	}
	return nil
}

// WriteCSVExport writes the movements as semicolon separated values with a
// UTF-8 byte order mark so spreadsheet software picks the right encoding.
func WriteCSVExport(w io.Writer, s core.FinanceState, loc *time.Location) error {
	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	cw := csv.NewWriter(w)
	cw.Comma = ';'
	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	for _, m := range s.Movements {
		kind := "Gasto"
		if m.Type == core.Income {
			kind = "Ingreso"
		}
		row := []string{
			formatExportDate(m, loc),
			kind,
			m.Category.ID,
			m.Description,
			core.FormatAmount(m.SignedAmount()),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv export: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}

// BackupFileName is the suggested download name of the JSON export.
func BackupFileName(now time.Time) string {
	return "moneypaz-backup-" + now.UTC().Format(time.DateOnly) + ".json"
}

// CSVFileName is the suggested download name of the CSV export.
func CSVFileName(now time.Time) string {
	return "moneypaz-movimientos-" + now.UTC().Format(time.DateOnly) + ".csv"
}

func formatExportDate(m core.Movement, loc *time.Location) string {
	if t, err := core.ParseMovementDate(m.Date); err == nil {
		return core.NumericSpanishDate(t, loc)
	}
	return core.NumericSpanishDate(m.Time(loc), loc)
}
