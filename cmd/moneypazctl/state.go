package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"moneypaz/internal/cli"
	"moneypaz/internal/core"
)

func balanceCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "balance <amount>",
		Short: "Set the initial balance",
		Long:  "Set the initial balance. Use -- before a negative amount: moneypazctl balance -- -20,50",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			amount, err := core.ParseDecimal(args[0])
			if err != nil {
				return fmt.Errorf("amount %q: %w", args[0], err)
			}
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			store.SetInitialBalance(cmd.Context(), amount)
			fmt.Fprintf(a.out, "Saldo inicial %s, saldo actual %s\n", cli.Money(amount), cli.Money(store.CurrentBalance()))
			return nil
		},
	}
}

func userCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "user <name>",
		Short: "Set the display name",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			store.SetUserName(cmd.Context(), args[0])
			fmt.Fprintln(a.out, cli.SuccessStyle.Render("Hola, "+args[0]))
			return nil
		},
	}
}

var errResetNotConfirmed = errors.New("reset wipes every movement; pass --yes to confirm")

func resetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase the finance state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return errResetNotConfirmed
			}
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			store.ResetAll(cmd.Context())
			fmt.Fprintln(a.out, cli.SuccessStyle.Render("Datos borrados"))
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}
