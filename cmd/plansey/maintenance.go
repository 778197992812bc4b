package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plansey/internal/repository"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		_, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		logger.Info("database migrated", zap.String("dsn", cfg.DatabaseURL))
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the built-in checklist catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		db, closeDB, err := openDB()
		if err != nil {
			return err
		}
		defer closeDB()
		if err := repository.SeedCatalog(cmd.Context(), db, repository.DefaultCatalog); err != nil {
			return err
		}
		logger.Info("catalog seeded", zap.Int("chapters", len(repository.DefaultCatalog)))
		return nil
	},
}
