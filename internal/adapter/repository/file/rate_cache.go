// Package file stores exchange-rate tables as one JSON document per date,
// in the same layout the rate service returns them.
package file

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/iho/stockrecon/internal/domain"
)

type document struct {
	Base  string           `json:"base"`
	Date  string           `json:"date"`
	Rates domain.RateTable `json:"rates"`
}

// RateCache implements usecase.RateCache on a directory of <date>.json files.
type RateCache struct {
	dir string
}

// NewRateCache creates the cache directory if needed.
func NewRateCache(dir string) (*RateCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create rate cache directory: %w", err)
	}
	return &RateCache{dir: dir}, nil
}

func (c *RateCache) path(day string) string {
	return filepath.Join(c.dir, day+".json")
}

// Get returns the table stored for day.
func (c *RateCache) Get(_ context.Context, day string) (domain.RateTable, bool, error) {
	content, err := os.ReadFile(c.path(day))
	if errors.Is(err, os.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var doc document
	if err := json.Unmarshal(content, &doc); err != nil {
		return nil, false, fmt.Errorf("corrupt rate cache file %s: %w", c.path(day), err)
	}
	return doc.Rates, true, nil
}

// Put writes the table unless a file for day already exists.
func (c *RateCache) Put(_ context.Context, day string, rates domain.RateTable) error {
	if _, err := os.Stat(c.path(day)); err == nil {
		return nil
	}

	content, err := json.Marshal(document{Base: "USD", Date: day, Rates: rates})
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(c.dir, day+".*.tmp")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), c.path(day))
}
