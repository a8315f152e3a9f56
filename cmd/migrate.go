/*
Copyright © 2026 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"errors"
	"fmt"

	"github.com/pomotrack/apiserver/internal/db"
	"github.com/pomotrack/apiserver/internal/store/mongostore"
	"github.com/spf13/cobra"
)

var migrateDownSteps int

// migrateCmd represents the migrate command.
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run database migrations",
}

var migrateUpCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all up migrations (postgres) or create indexes (mongodb)",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := db.Backend(cfg.Database)
		if err != nil {
			return err
		}

		if backend == db.BackendMongo {
			client, err := mongostore.Open(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer func() {
				_ = client.Disconnect(cmd.Context())
			}()
			name, err := mongostore.DatabaseName(cfg.Database.URL, cfg.Database.DBName)
			if err != nil {
				return err
			}
			if err := mongostore.EnsureIndexes(cmd.Context(), client.Database(name)); err != nil {
				return err
			}
			logger.Info("indexes ensured", "operation", "migrate_up", "component", "mongodb", "database", name)
			return nil
		}

		if err := db.MigrateUp(db.PostgresURL(cfg.Database)); err != nil {
			return err
		}
		logger.Info("migrations applied", "operation", "migrate_up", "component", "postgres")
		return nil
	},
}

var migrateDownCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back postgres migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, logger, err := loadConfig()
		if err != nil {
			return err
		}
		backend, err := db.Backend(cfg.Database)
		if err != nil {
			return err
		}
		if backend != db.BackendPostgres {
			return errors.New("migrate down only applies to postgres")
		}

		if err := db.MigrateDown(db.PostgresURL(cfg.Database), migrateDownSteps); err != nil {
			return fmt.Errorf("rollback: %w", err)
		}
		logger.Info("migrations rolled back", "operation", "migrate_down", "steps", migrateDownSteps)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateUpCmd)
	migrateCmd.AddCommand(migrateDownCmd)

	migrateDownCmd.Flags().IntVar(&migrateDownSteps, "steps", 1, "number of migrations to roll back (0 = all)")
}
