package rates

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/stockrecon/internal/domain"
	"github.com/iho/stockrecon/internal/usecase"
)

// Lookup results reported to an Observer.
const (
	LookupMemory = "memory"
	LookupCache  = "cache"
	LookupFetch  = "fetch"
	LookupError  = "error"
)

// Observer is notified of rate lookups.
type Observer interface {
	RateLookup(result string)
	RateFetched(duration time.Duration)
}

// CachedProvider implements usecase.RateProvider as read-through over a
// persistent cache. A miss blocks on the fetcher and stores the table once
// for that date; stored tables are never invalidated.
type CachedProvider struct {
	cache    usecase.RateCache
	fetcher  usecase.RateFetcher
	observer Observer
	logger   zerolog.Logger

	mu     sync.Mutex
	memory map[string]domain.RateTable
}

// NewCachedProvider creates a new CachedProvider. observer may be nil.
func NewCachedProvider(cache usecase.RateCache, fetcher usecase.RateFetcher, observer Observer, logger zerolog.Logger) *CachedProvider {
	return &CachedProvider{
		cache:    cache,
		fetcher:  fetcher,
		observer: observer,
		logger:   logger,
		memory:   make(map[string]domain.RateTable),
	}
}

// Rates returns the table for day.
func (p *CachedProvider) Rates(ctx context.Context, day time.Time) (domain.RateTable, error) {
	key := domain.DayKey(day)

	p.mu.Lock()
	defer p.mu.Unlock()

	if t, ok := p.memory[key]; ok {
		p.observe(LookupMemory)
		return t, nil
	}

	t, found, err := p.cache.Get(ctx, key)
	if err != nil {
		p.observe(LookupError)
		return nil, fmt.Errorf("read rate cache for %s: %w", key, err)
	}
	if found {
		p.logger.Debug().Str("date", key).Msg("exchange rates served from cache")
		p.observe(LookupCache)
		p.memory[key] = t
		return t, nil
	}

	start := time.Now()
	t, err = p.fetcher.Fetch(ctx, day)
	if err != nil {
		p.observe(LookupError)
		return nil, fmt.Errorf("fetch rates for %s: %w", key, err)
	}
	if p.observer != nil {
		p.observer.RateFetched(time.Since(start))
	}
	p.observe(LookupFetch)
	p.logger.Debug().Str("date", key).Int("currencies", len(t)).Msg("exchange rates fetched")

	if err := p.cache.Put(ctx, key, t); err != nil {
		return nil, fmt.Errorf("write rate cache for %s: %w", key, err)
	}
	p.memory[key] = t
	return t, nil
}

func (p *CachedProvider) observe(result string) {
	if p.observer != nil {
		p.observer.RateLookup(result)
	}
}
