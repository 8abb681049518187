package usecase

import (
	"context"
	"time"

	"github.com/iho/stockrecon/internal/domain"
)

// RateProvider returns the USD-based exchange-rate table for a calendar date.
type RateProvider interface {
	Rates(ctx context.Context, day time.Time) (domain.RateTable, error)
}

// RateFetcher retrieves a rate table from a remote exchange-rate service.
type RateFetcher interface {
	Fetch(ctx context.Context, day time.Time) (domain.RateTable, error)
}

// RateCache stores one rate table per date. Put is write-once: a table that
// is already stored for the date is kept.
type RateCache interface {
	Get(ctx context.Context, day string) (domain.RateTable, bool, error)
	Put(ctx context.Context, day string, rates domain.RateTable) error
}

// LedgerSource loads the raw entries of a ledger.
type LedgerSource interface {
	Load(ctx context.Context) ([]domain.RawEntry, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// RunRecorder observes reconciliation runs.
type RunRecorder interface {
	EntryProcessed(action domain.Action)
	RunFailed(kind string)
	RunCompleted(summary domain.Summary, duration time.Duration)
}
