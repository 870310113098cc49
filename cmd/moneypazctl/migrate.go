package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"moneypaz/internal/storage"
)

func migrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or revert SQLite schema migrations",
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply every pending migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			version, err := storage.RunMigrations(a.cfg.SQLiteDBPath)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Schema at version %d\n", version)
			return nil
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Revert the last migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if steps < 1 {
				return fmt.Errorf("--steps must be at least 1")
			}
			version, err := storage.RollbackMigrations(a.cfg.SQLiteDBPath, steps)
			if err != nil {
				return err
			}
			fmt.Fprintf(a.out, "Schema at version %d\n", version)
			return nil
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to revert")

	cmd.AddCommand(up, down)
	return cmd
}
