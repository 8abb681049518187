package main

import (
	"io"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iho/stockrecon/internal/infrastructure/config"
	"github.com/iho/stockrecon/internal/infrastructure/logger"
)

// app carries the state shared by every command.
type app struct {
	stdout io.Writer
	stderr io.Writer

	envFile     string
	logLevel    string
	logFormat   string
	cacheURL    string
	catalogPath string

	cfg    *config.Config
	logger zerolog.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{stdout: stdout, stderr: stderr, logger: zerolog.Nop()}
}

func newRootCmd(a *app) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "stockrecon",
		Short: "Inventory ledger reconciler",
		Long: `Reconciles a plain-text inventory ledger into per-reference profit,
cash flow, remaining FIFO stock and outstanding reservations.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&a.envFile, "env-file", "", "Load environment variables from this file (default ./.env if present)")
	flags.StringVar(&a.logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides LOG_LEVEL)")
	flags.StringVar(&a.logFormat, "log-format", "", "Log format: console or json (overrides LOG_FORMAT)")
	flags.StringVar(&a.cacheURL, "rate-cache", "", "Rate cache URL: file://, sqlite://, redis://, postgres:// or memory:// (overrides RATE_CACHE_URL)")
	flags.StringVar(&a.catalogPath, "catalog", "", "YAML item catalog (overrides CATALOG_PATH)")

	rootCmd.AddCommand(
		newReportCmd(a),
		newValidateCmd(a),
		newRatesCmd(a),
		newServeCmd(a),
		newMigrateCmd(a),
	)

	return rootCmd
}

func (a *app) init() error {
	cfg, err := config.Load(a.envFile)
	if err != nil {
		return err
	}

	if a.logLevel != "" {
		cfg.LogLevel = a.logLevel
	}
	if a.logFormat != "" {
		cfg.LogFormat = a.logFormat
	}
	if a.cacheURL != "" {
		cfg.RateCacheURL = a.cacheURL
	}
	if a.catalogPath != "" {
		cfg.CatalogPath = a.catalogPath
	}

	a.cfg = cfg
	a.logger = logger.New(logger.Config{
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
		Output: a.stderr,
	})
	return nil
}

// ledgerPath returns the positional ledger argument or the configured path.
func (a *app) ledgerPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return a.cfg.LedgerPath
}
