package main

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"moneypaz/internal/cli"
	"moneypaz/internal/core"
)

func summaryCmd(a *app) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show balance and this month's figures",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			sum := store.Summary()
			if asJSON {
				enc := json.NewEncoder(a.out)
				enc.SetIndent("", "  ")
				return enc.Encode(sum)
			}
			printSummary(a, sum)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full summary as JSON")
	return cmd
}

func printSummary(a *app, sum core.Summary) {
	title := "Resumen"
	if sum.UserName != "" {
		title += " de " + sum.UserName
	}
	fmt.Fprintln(a.out, cli.TitleStyle.Render(title))
	if sum.NeedsSetup {
		fmt.Fprintln(a.out, cli.SubtleStyle.Render("Sin saldo inicial ni movimientos todavía."))
	}

	tbl := cli.NewTable(a.out, "Concepto", "Importe")
	tbl.Row("Saldo actual", cli.Money(sum.CurrentBalance))
	tbl.Row("Saldo inicial", cli.Money(sum.InitialBalance))
	tbl.Row("Gastado este mes", core.FormatAmount(sum.MonthlySpent))
	tbl.Row("Ingresado este mes", core.FormatAmount(sum.Breakdown.TotalIncome))
	tbl.Row("Gastos fijos", core.FormatAmount(sum.CommittedMoney))
	tbl.Row("Gastos de hoy", strconv.Itoa(sum.TodayStatus.TodayExpensesCount))
	_ = tbl.Flush()

	if len(sum.Breakdown.Categories) > 0 {
		fmt.Fprintln(a.out)
		cat := cli.NewTable(a.out, "Categoría", "Gastado")
		for _, c := range sum.Breakdown.Categories {
			cat.Row(c.Label, core.FormatAmount(c.Amount))
		}
		_ = cat.Flush()
	}
}
