package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/spf13/cobra"

	"litrecord/internal/config"
)

var migrationsPath string

var migrateCmd = &cobra.Command{
	Use:       "migrate [up|down|steps N|version]",
	Short:     "Apply or revert the PostgreSQL schema",
	Args:      cobra.RangeArgs(1, 2),
	ValidArgs: []string{"up", "down", "steps", "version"},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		m, err := migrate.New("file://"+migrationsPath, cfg.DB.DSN())
		if err != nil {
			return fmt.Errorf("failed to create migrate instance: %w", err)
		}
		defer m.Close()

		out := cmd.OutOrStdout()
		switch args[0] {
		case "up":
			if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration up failed: %w", err)
			}
			fmt.Fprintln(out, "migrations applied successfully")

		case "down":
			if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration down failed: %w", err)
			}
			fmt.Fprintln(out, "migrations reverted successfully")

		case "steps":
			if len(args) < 2 {
				return errors.New("steps requires a number argument")
			}
			n, err := strconv.Atoi(args[1])
			if err != nil {
				return fmt.Errorf("invalid steps argument: %w", err)
			}
			if err := m.Steps(n); err != nil && !errors.Is(err, migrate.ErrNoChange) {
				return fmt.Errorf("migration steps failed: %w", err)
			}
			fmt.Fprintf(out, "applied %d migration steps\n", n)

		case "version":
			version, dirty, err := m.Version()
			if err != nil {
				return fmt.Errorf("failed to get version: %w", err)
			}
			fmt.Fprintf(out, "version: %d, dirty: %v\n", version, dirty)

		default:
			return fmt.Errorf("unknown command %q", args[0])
		}
		return nil
	},
}

func init() {
	migrateCmd.Flags().StringVar(&migrationsPath, "path", "db/migrations", "Directory holding the migration files")
	rootCmd.AddCommand(migrateCmd)
}
