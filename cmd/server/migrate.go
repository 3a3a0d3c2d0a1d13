package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diabetes-prediction-engine/internal/catalog"
	"github.com/diabetes-prediction-engine/internal/database"
	"github.com/diabetes-prediction-engine/internal/repository"
)

func (a *app) migrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage database schema migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMigrations(func(runner *database.MigrationRunner) error {
				return runner.Up(cmd.Context())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMigrations(func(runner *database.MigrationRunner) error {
				return runner.Down(cmd.Context())
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withMigrations(func(runner *database.MigrationRunner) error {
				version, dirty, err := runner.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version: %d dirty: %t\n", version, dirty)
				return nil
			})
		},
	})

	return cmd
}

func (a *app) withMigrations(fn func(*database.MigrationRunner) error) error {
	cfg := a.config.GetDatabaseConfig()

	runner, err := database.NewMigrationRunner(a.config.GetDatabaseURL(), cfg.MigrationsPath, a.logger)
	if err != nil {
		return err
	}
	defer runner.Close()

	return fn(runner)
}

func (a *app) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Load the built-in diabetes types and field guides into an empty database",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			db, err := database.NewConnection(ctx, database.ConfigFrom(a.config.GetConfig().Database), a.logger)
			if err != nil {
				return err
			}
			defer db.Close()

			types, err := repository.NewDiabetesTypeRepository(db.Pool, a.logger).SeedIfEmpty(ctx, catalog.DiabetesTypes())
			if err != nil {
				return fmt.Errorf("failed to seed diabetes types: %w", err)
			}
			guides, err := repository.NewFieldGuideRepository(db.Pool, a.logger).SeedIfEmpty(ctx, catalog.FieldGuides())
			if err != nil {
				return fmt.Errorf("failed to seed field guides: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d diabetes types and %d field guides\n", types, guides)
			return nil
		},
	}
}
