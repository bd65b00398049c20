package main

import (
	"fmt"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/BerylCAtieno/docvault-api/internal/config"
	"github.com/BerylCAtieno/docvault-api/internal/db"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

type app struct {
	databaseURL string
	asJSON      bool
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "docctl",
		Short:         "Operate the docvault database",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&a.databaseURL, "database", "", "SQLite path or postgres:// URL (default $DATABASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&a.asJSON, "json", false, "Output as JSON")

	rootCmd.AddCommand(a.migrateCmd())
	rootCmd.AddCommand(a.categoriesCmd())
	rootCmd.AddCommand(a.documentsCmd())

	return rootCmd
}

func (a *app) open() (*sqlx.DB, error) {
	url := a.databaseURL
	if url == "" {
		url = config.DatabaseURL()
	}
	return db.Open(url)
}

func (a *app) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := a.open()
			if err != nil {
				return err
			}
			defer database.Close()

			if err := db.RunMigrations(database); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}
