package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/fuelctl/internal/database"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create the database schema",
	Long: `Create the tables fuelctl needs. Running it again is harmless: every
statement is idempotent.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		db, err := database.New(cfg.ConnectionString())
		if err != nil {
			return err
		}
		defer db.Close()

		ctx, cancel := commandContext(cmd)
		defer cancel()

		if err := database.Migrate(ctx, db); err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")

		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
