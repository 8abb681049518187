// Package memory keeps exchange-rate tables for the life of the process.
package memory

import (
	"context"
	"sync"

	"github.com/iho/stockrecon/internal/domain"
)

// RateCache implements usecase.RateCache in memory.
type RateCache struct {
	mu     sync.RWMutex
	tables map[string]domain.RateTable
}

// NewRateCache creates an empty RateCache.
func NewRateCache() *RateCache {
	return &RateCache{tables: make(map[string]domain.RateTable)}
}

// Get returns the table stored for day.
func (c *RateCache) Get(_ context.Context, day string) (domain.RateTable, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	t, ok := c.tables[day]
	if !ok {
		return nil, false, nil
	}
	return t.Clone(), true, nil
}

// Put stores a table unless one is already stored for day.
func (c *RateCache) Put(_ context.Context, day string, rates domain.RateTable) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.tables[day]; !ok {
		c.tables[day] = rates.Clone()
	}
	return nil
}
