package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moneypaz/internal/cli"
	"moneypaz/internal/core"
	"moneypaz/internal/services"
)

func movementsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "movements",
		Aliases: []string{"mov"},
		Short:   "List, add and delete movements",
	}
	cmd.AddCommand(listMovementsCmd(a))
	cmd.AddCommand(addMovementCmd(a))
	cmd.AddCommand(deleteMovementCmd(a))
	return cmd
}

func listMovementsCmd(a *app) *cobra.Command {
	var (
		period string
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List movements, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := services.ParsePeriod(period)
			if err != nil {
				return err
			}
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			ms, err := store.Movements(p)
			if err != nil {
				return err
			}
			if asJSON {
				return json.NewEncoder(a.out).Encode(ms)
			}
			if len(ms) == 0 {
				fmt.Fprintln(a.out, cli.SubtleStyle.Render("No hay movimientos."))
				return nil
			}
			tbl := cli.NewTable(a.out, "ID", "Fecha", "Categoría", "Descripción", "Importe")
			for _, m := range ms {
				label := m.Label()
				if m.IsRecurring {
					label += " (fijo)"
				}
				tbl.Row(m.ID, store.FormatRelativeDate(m.Date), m.Category.Label(), label, cli.Money(m.SignedAmount()))
			}
			return tbl.Flush()
		},
	}
	cmd.Flags().StringVar(&period, "period", "all", "period to list (today, month, all)")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print movements as JSON")
	return cmd
}

type addMovementFlags struct {
	typ         string
	amount      string
	category    string
	concept     string
	description string
	recurring   bool
}

// toNewMovement applies the same checks as the HTTP API.
func (f addMovementFlags) toNewMovement() (services.NewMovement, error) {
	typ, err := core.ParseMovementType(f.typ)
	if err != nil {
		return services.NewMovement{}, fmt.Errorf("--type: %w", err)
	}
	amount, err := core.ParseAmount(f.amount)
	if err != nil {
		return services.NewMovement{}, fmt.Errorf("--amount: %w", err)
	}
	category := strings.TrimSpace(f.category)
	if category == "" {
		return services.NewMovement{}, fmt.Errorf("--category: %w", core.ErrEmptyCategory)
	}
	concept := strings.TrimSpace(f.concept)
	return services.NewMovement{
		Type:        typ,
		Amount:      amount,
		Category:    category,
		Description: core.DefaultDescription(f.description, concept, category),
		Concept:     concept,
		IsRecurring: f.recurring,
	}, nil
}

func addMovementCmd(a *app) *cobra.Command {
	var f addMovementFlags

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Record a movement",
		Example: `  moneypazctl movements add --type expense --amount 12,50 --category alimentacion --concept Mercadona
  moneypazctl movements add --type income --amount 1200 --category nomina --recurring`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := f.toNewMovement()
			if err != nil {
				return err
			}
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if in.Type == core.Expense && in.IsRecurring {
				cmp := store.CompareRecurringExpense(in.Amount, in.Concept, in.Category)
				printRecurringAlert(a, cmp)
			}
			m := store.AddMovement(cmd.Context(), in)
			fmt.Fprintf(a.out, "%s %s %s\n", cli.SuccessStyle.Render("Añadido"), m.ID, cli.Money(m.SignedAmount()))
			return nil
		},
	}
	cmd.Flags().StringVar(&f.typ, "type", "expense", "movement type (expense, income)")
	cmd.Flags().StringVar(&f.amount, "amount", "", "positive amount, dot or comma decimals")
	cmd.Flags().StringVar(&f.category, "category", "", "category id")
	cmd.Flags().StringVar(&f.concept, "concept", "", "free text concept")
	cmd.Flags().StringVar(&f.description, "description", "", "description (defaults to the concept, then the category label)")
	cmd.Flags().BoolVar(&f.recurring, "recurring", false, "mark as a recurring movement")
	_ = cmd.MarkFlagRequired("amount")
	_ = cmd.MarkFlagRequired("category")
	return cmd
}

func printRecurringAlert(a *app, cmp core.RecurringComparison) {
	switch cmp.Type {
	case core.AlertIncreased:
		fmt.Fprintln(a.out, cli.ErrorStyle.Render("Sube "+core.FormatAmount(*cmp.Difference)+" respecto al último"))
	case core.AlertDecreased:
		fmt.Fprintln(a.out, cli.SuccessStyle.Render("Baja "+core.FormatAmount(*cmp.Difference)+" respecto al último"))
	case core.AlertNew:
		fmt.Fprintln(a.out, cli.SubtleStyle.Render("Primer gasto fijo de este tipo"))
	}
}

func deleteMovementCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a movement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			if !store.DeleteMovement(cmd.Context(), args[0]) {
				fmt.Fprintln(a.out, cli.SubtleStyle.Render("No existe el movimiento "+args[0]))
				return nil
			}
			fmt.Fprintln(a.out, cli.SuccessStyle.Render("Borrado "+args[0]))
			return nil
		},
	}
}
