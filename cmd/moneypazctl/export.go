package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"moneypaz/internal/services"
)

func exportCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:       "export <json|csv>",
		Short:     "Export the finance state",
		Long:      "Export a JSON backup or a CSV of the movements. Use -o - for stdout, or -o with no value for the default file name.",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"json", "csv"},
		RunE: func(cmd *cobra.Command, args []string) error {
			format := args[0]
			if format != "json" && format != "csv" {
				return fmt.Errorf("unknown export format %q: must be json or csv", format)
			}
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			now := store.Now()
			if output == "" {
				output = services.BackupFileName(now)
				if format == "csv" {
					output = services.CSVFileName(now)
				}
			}

			var w io.Writer = a.out
			if output != "-" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("create export file: %w", err)
				}
				defer f.Close()
				w = f
			}

			if format == "json" {
				err = services.WriteJSONExport(w, store.State(), now, store.Location())
			} else {
				err = services.WriteCSVExport(w, store.State(), store.Location())
			}
			if err != nil {
				return err
			}
			if output != "-" {
				fmt.Fprintln(a.out, "Exportado a "+output)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (- for stdout)")
	return cmd
}
