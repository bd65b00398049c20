package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/docvault-api/internal/repository"
	"github.com/BerylCAtieno/docvault-api/internal/services"
	"github.com/BerylCAtieno/docvault-api/internal/utils"
)

func (a *app) categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage document categories",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := a.categoryService()
			if err != nil {
				return err
			}
			defer closeDB()

			categories, err := svc.List(cmd.Context())
			if err != nil {
				return err
			}

			if a.asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(categories)
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME")
			for _, c := range categories {
				fmt.Fprintf(tw, "%s\t%s\n", c.ID, c.Name)
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "add <name>",
		Short: "Add a category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := a.categoryService()
			if err != nil {
				return err
			}
			defer closeDB()

			category, err := svc.Create(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s (%s)\n", category.Name, category.ID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a category; documents keep their type",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, closeDB, err := a.categoryService()
			if err != nil {
				return err
			}
			defer closeDB()

			if err := svc.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", args[0])
			return nil
		},
	})

	return cmd
}

func (a *app) categoryService() (services.CategoryService, func(), error) {
	database, err := a.open()
	if err != nil {
		return nil, nil, err
	}

	svc := services.NewCategoryService(repository.NewCategoryRepository(database), utils.NopLogger())
	return svc, func() { _ = database.Close() }, nil
}
