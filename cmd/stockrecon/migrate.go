package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iho/stockrecon/internal/infrastructure/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the postgres rate cache schema",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := a.init(); err != nil {
				return err
			}
			if !isPostgresURL(a.cfg.RateCacheURL) {
				return fmt.Errorf("migrate requires a postgres:// RATE_CACHE_URL, got %q", a.cfg.RateCacheURL)
			}
			return nil
		},
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrations(a.cfg.RateCacheURL, a.logger)
			},
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back all migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return postgres.RunMigrationsDown(a.cfg.RateCacheURL, a.logger)
			},
		},
	)

	return cmd
}

func isPostgresURL(u string) bool {
	return strings.HasPrefix(u, "postgres://") || strings.HasPrefix(u, "postgresql://")
}
