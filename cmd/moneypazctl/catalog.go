package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"moneypaz/internal/cli"
	"moneypaz/internal/core"
	"moneypaz/internal/services"
)

func categoriesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List and add categories",
	}
	cmd.AddCommand(listCategoriesCmd(a))
	cmd.AddCommand(addCategoryCmd(a))
	return cmd
}

func listCategoriesCmd(a *app) *cobra.Command {
	var typ, search string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the categories for a movement type",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			t, err := core.ParseMovementType(typ)
			if err != nil {
				return err
			}
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			opts := store.CategoriesFor(t)
			if search != "" {
				opts = store.SearchCategories(t, search)
			}
			tbl := cli.NewTable(a.out, "ID", "Nombre", "Tipo")
			for _, o := range opts {
				kind := "predefinida"
				if o.Category.IsCustom() {
					kind = "propia"
				}
				tbl.Row(o.Category.ID, o.Label, kind)
			}
			if err := tbl.Flush(); err != nil {
				return err
			}
			if search != "" && services.CanCreateCategory(store.State(), t, search) {
				fmt.Fprintln(a.out, cli.SubtleStyle.Render(fmt.Sprintf("Puedes crear %q con: moneypazctl categories add %q --type %s", search, search, t)))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "expense", "movement type (expense, income)")
	cmd.Flags().StringVar(&search, "search", "", "filter by label or id")
	return cmd
}

func addCategoryCmd(a *app) *cobra.Command {
	var typ string

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a custom category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := core.ParseMovementType(typ)
			if err != nil {
				return err
			}
			id := core.CustomCategoryID(t, args[0])
			if id == "" {
				return fmt.Errorf("category name cannot be blank")
			}
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			id = store.AddCustomCategory(cmd.Context(), id)
			fmt.Fprintf(a.out, "%s %s (%s)\n", cli.SuccessStyle.Render("Categoría"), core.NewCustomCategory(id).Label(), id)
			return nil
		},
	}
	cmd.Flags().StringVar(&typ, "type", "expense", "movement type (expense, income)")
	return cmd
}

func conceptsCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "concepts [query]",
		Short: "Suggest concepts matching a query",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, closeFn, err := a.openStore(cmd.Context())
			if err != nil {
				return err
			}
			defer closeFn()

			query := ""
			if len(args) == 1 {
				query = args[0]
			}
			fmt.Fprintln(a.out, strings.Join(store.MatchConcepts(query, limit), "\n"))
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", services.DefaultConceptMatches, "maximum number of suggestions")
	return cmd
}
