package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"moneypaz/internal/cli"
	"moneypaz/internal/core"
	"moneypaz/internal/services"
)

func adminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage users in the admin store",
	}

	users := &cobra.Command{
		Use:   "users",
		Short: "List, export and delete users",
	}
	users.AddCommand(listUsersCmd(a))
	users.AddCommand(exportUsersCmd(a))
	users.AddCommand(deleteUserCmd(a))

	cmd.AddCommand(users)
	cmd.AddCommand(grantCmd(a))
	return cmd
}

func listUsersCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users with their total expenses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			users, err := services.NewAdminService(repo, a.logger).ListUsers(cmd.Context())
			if err != nil {
				return err
			}
			if len(users) == 0 {
				fmt.Fprintln(a.out, cli.SubtleStyle.Render("No hay usuarios."))
				return nil
			}
			tbl := cli.NewTable(a.out, "Usuario", "Email", "Nombre", "Alta", "Gastos")
			for _, u := range users {
				tbl.Row(u.UserID, u.Email, u.DisplayName,
					core.NumericSpanishDate(u.CreatedAt, a.cfg.Location()),
					core.FormatAmount(u.TotalExpenses))
			}
			return tbl.Flush()
		},
	}
}

func exportUsersCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export users as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			svc := services.NewAdminService(repo, a.logger)
			if output == "" || output == "-" {
				return svc.ExportUsers(cmd.Context(), a.out)
			}
			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("create export file: %w", err)
			}
			defer f.Close()
			return svc.ExportUsers(cmd.Context(), f)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "-", "output file (- for stdout)")
	return cmd
}

func deleteUserCmd(a *app) *cobra.Command {
	var requester string

	cmd := &cobra.Command{
		Use:   "delete <user-id>",
		Short: "Delete a user and everything mirrored for them",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if requester == "" {
				requester = a.cfg.UserID
			}
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := services.NewAdminService(repo, a.logger).DeleteUser(cmd.Context(), requester, args[0]); err != nil {
				return err
			}
			fmt.Fprintln(a.out, cli.SuccessStyle.Render("Usuario borrado: "+args[0]))
			return nil
		},
	}
	cmd.Flags().StringVar(&requester, "as", "", "admin user performing the deletion (defaults to --user-id)")
	return cmd
}

func grantCmd(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "grant <user-id>",
		Short: "Grant a role to a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.openRepo()
			if err != nil {
				return err
			}
			defer repo.Close()

			if err := repo.GrantRole(cmd.Context(), args[0], role); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "%s %s -> %s\n", cli.SuccessStyle.Render("Rol concedido"), role, args[0])
			return nil
		},
	}
	cmd.Flags().StringVar(&role, "role", core.RoleAdmin, "role to grant")
	return cmd
}
