// Package sqlite implements the rate cache on a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iho/stockrecon/internal/domain"
)

const schema = `
CREATE TABLE IF NOT EXISTS rate_tables (
	day TEXT PRIMARY KEY,
	rates_json TEXT NOT NULL,
	fetched_at TEXT NOT NULL
);`

// RateCache implements usecase.RateCache on SQLite.
type RateCache struct {
	db *sql.DB
}

// NewRateCache creates the schema if needed.
func NewRateCache(db *sql.DB) (*RateCache, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create rate_tables: %w", err)
	}
	return &RateCache{db: db}, nil
}

// Get returns the table stored for day.
func (c *RateCache) Get(ctx context.Context, day string) (domain.RateTable, bool, error) {
	var raw string
	err := c.db.QueryRowContext(ctx, `SELECT rates_json FROM rate_tables WHERE day = ?`, day).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var table domain.RateTable
	if err := json.Unmarshal([]byte(raw), &table); err != nil {
		return nil, false, fmt.Errorf("corrupt rate table for %s: %w", day, err)
	}
	return table, true, nil
}

// Put stores the table unless one exists for day.
func (c *RateCache) Put(ctx context.Context, day string, rates domain.RateTable) error {
	raw, err := json.Marshal(rates)
	if err != nil {
		return err
	}

	_, err = c.db.ExecContext(ctx, `
		INSERT OR IGNORE INTO rate_tables (day, rates_json, fetched_at)
		VALUES (?, ?, ?)`,
		day, string(raw), time.Now().UTC().Format(time.RFC3339),
	)
	return err
}
