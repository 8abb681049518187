package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// Ledger
	LedgerPath  string `env:"LEDGER_PATH"  envDefault:"transactions.txt"`
	CatalogPath string `env:"CATALOG_PATH" envDefault:""`

	// Exchange rates
	RateCacheURL    string        `env:"RATE_CACHE_URL"    envDefault:"file://./exchange-rates"`
	RatesBaseURL    string        `env:"RATES_BASE_URL"    envDefault:"https://api.frankfurter.dev"`
	RatesTimeout    time.Duration `env:"RATES_TIMEOUT"     envDefault:"10s"`
	RatesMaxRetries int           `env:"RATES_MAX_RETRIES" envDefault:"3"`

	// Database (postgres:// rate cache only)
	DatabaseMaxConns int           `env:"DATABASE_MAX_CONNS" envDefault:"5"`
	DatabaseMinConns int           `env:"DATABASE_MIN_CONNS" envDefault:"0"`
	DatabaseTimeout  time.Duration `env:"DATABASE_TIMEOUT"   envDefault:"30s"`

	// HTTP Server
	HTTPPort            string        `env:"HTTP_PORT"             envDefault:"8080"`
	HTTPReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"     envDefault:"30s"`
	HTTPWriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"    envDefault:"60s"`
	HTTPIdleTimeout     time.Duration `env:"HTTP_IDLE_TIMEOUT"     envDefault:"60s"`
	HTTPShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`

	// Metrics
	MetricsTextfile string `env:"METRICS_TEXTFILE" envDefault:""`
}

// Load loads configuration from environment variables. Variables from
// envFile are applied first without overriding the process environment;
// with an empty envFile a ./.env file is used when present.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			return nil, fmt.Errorf("failed to load env file: %w", err)
		}
	} else {
		_ = godotenv.Load()
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
