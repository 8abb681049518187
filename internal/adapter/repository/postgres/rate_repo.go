package postgres

import (
	"context"
	"fmt"
	"sort"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/stockrecon/internal/domain"
)

type pgxPool interface {
	Begin(context.Context) (pgx.Tx, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

const (
	selectRatesSQL = `SELECT currency, rate::text FROM exchange_rates WHERE day = $1::date ORDER BY currency`
	claimDaySQL    = `INSERT INTO exchange_rate_days (day, fetched_at) VALUES ($1::date, now()) ON CONFLICT (day) DO NOTHING`
	insertRateSQL  = `INSERT INTO exchange_rates (day, currency, rate) VALUES ($1::date, $2, $3::numeric)`
)

// RateRepository implements usecase.RateCache on PostgreSQL.
type RateRepository struct {
	pool    pgxPool
	retrier *Retrier
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool, retrier *Retrier) *RateRepository {
	return newRateRepositoryWithPool(pool, retrier)
}

func newRateRepositoryWithPool(pool pgxPool, retrier *Retrier) *RateRepository {
	return &RateRepository{pool: pool, retrier: retrier}
}

// Get returns the table stored for day.
func (r *RateRepository) Get(ctx context.Context, day string) (domain.RateTable, bool, error) {
	rows, err := r.pool.Query(ctx, selectRatesSQL, day)
	if err != nil {
		return nil, false, fmt.Errorf("query rates: %w", err)
	}
	defer rows.Close()

	table := make(domain.RateTable)
	for rows.Next() {
		var currency, rate string
		if err := rows.Scan(&currency, &rate); err != nil {
			return nil, false, err
		}
		value, err := decimal.NewFromString(rate)
		if err != nil {
			return nil, false, fmt.Errorf("invalid stored rate %s/%s: %w", day, currency, err)
		}
		table[currency] = value
	}
	if err := rows.Err(); err != nil {
		return nil, false, err
	}

	if len(table) == 0 {
		return nil, false, nil
	}
	return table, true, nil
}

// Put stores the table in one transaction. A day that was already claimed
// is left untouched.
func (r *RateRepository) Put(ctx context.Context, day string, rates domain.RateTable) error {
	return r.retrier.Retry(ctx, func() error {
		return r.put(ctx, day, rates)
	})
}

func (r *RateRepository) put(ctx context.Context, day string, rates domain.RateTable) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}

	claimed, err := insertTable(ctx, tx, day, rates)
	if err != nil || !claimed {
		_ = tx.Rollback(ctx)
		return err
	}

	return tx.Commit(ctx)
}

func insertTable(ctx context.Context, tx pgx.Tx, day string, rates domain.RateTable) (bool, error) {
	tag, err := tx.Exec(ctx, claimDaySQL, day)
	if err != nil {
		return false, fmt.Errorf("claim rate day: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return false, nil
	}

	currencies := make([]string, 0, len(rates))
	for c := range rates {
		currencies = append(currencies, c)
	}
	sort.Strings(currencies)

	for _, c := range currencies {
		if _, err := tx.Exec(ctx, insertRateSQL, day, c, rates[c].String()); err != nil {
			return false, fmt.Errorf("insert rate %s: %w", c, err)
		}
	}
	return true, nil
}
