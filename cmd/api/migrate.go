package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"taskapp-backend/internal/config"
	"taskapp-backend/internal/db"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			database, err := db.Connect(cfg.DBDriver, cfg.DSN())
			if err != nil {
				return fmt.Errorf("connect db: %w", err)
			}
			defer database.Close()

			if err := db.Migrate(cmd.Context(), database, cfg.DBDriver); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema ready (%s)\n", cfg.DBDriver)
			return nil
		},
	}
}
