package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"spendsmart/internal/config"
	applog "spendsmart/internal/log"
	"spendsmart/internal/storage"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQLite schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := cmd.Root().PersistentPreRunE(cmd, args); err != nil {
				return err
			}
			if a.cfg.DataBackend != config.BackendSQLite {
				return fmt.Errorf("migrate requires the sqlite backend, got %q", a.cfg.DataBackend)
			}
			return nil
		},
	}

	up := &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RunMigrations(a.cfg.SQLiteDBPath); err != nil {
				return err
			}
			return printVersion(cmd, a)
		},
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := storage.RollbackMigrations(a.cfg.SQLiteDBPath, steps); err != nil {
				return err
			}
			return printVersion(cmd, a)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "Number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printVersion(cmd, a)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, a *app) error {
	v, dirty, err := storage.MigrationVersion(a.cfg.SQLiteDBPath)
	if err != nil {
		return err
	}
	a.logger.Info("Schema version",
		applog.FieldComponent, applog.ComponentStorage,
		applog.FieldOperation, applog.OpMigrate,
		"version", v, "dirty", dirty)
	fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
	return nil
}
