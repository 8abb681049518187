package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/iho/stockrecon/internal/domain"
)

// RateCache implements usecase.RateCache using Redis. Tables are stored as
// JSON under rates:<date> without expiry.
type RateCache struct {
	client *redis.Client
	prefix string
}

// NewRateCache creates a new RateCache.
func NewRateCache(client *redis.Client) *RateCache {
	return &RateCache{
		client: client,
		prefix: "rates:",
	}
}

// Get retrieves the table stored for day.
func (c *RateCache) Get(ctx context.Context, day string) (domain.RateTable, bool, error) {
	raw, err := c.client.Get(ctx, c.prefix+day).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var table domain.RateTable
	if err := json.Unmarshal(raw, &table); err != nil {
		return nil, false, fmt.Errorf("corrupt rate table %s%s: %w", c.prefix, day, err)
	}
	return table, true, nil
}

// Put stores the table only if no table exists for day.
func (c *RateCache) Put(ctx context.Context, day string, rates domain.RateTable) error {
	raw, err := json.Marshal(rates)
	if err != nil {
		return err
	}
	return c.client.SetNX(ctx, c.prefix+day, raw, 0).Err()
}
