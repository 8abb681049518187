package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	filerepo "github.com/iho/stockrecon/internal/adapter/repository/file"
	memoryrepo "github.com/iho/stockrecon/internal/adapter/repository/memory"
	postgresrepo "github.com/iho/stockrecon/internal/adapter/repository/postgres"
	redisrepo "github.com/iho/stockrecon/internal/adapter/repository/redis"
	sqliterepo "github.com/iho/stockrecon/internal/adapter/repository/sqlite"
	"github.com/iho/stockrecon/internal/infrastructure/config"
	"github.com/iho/stockrecon/internal/infrastructure/postgres"
	"github.com/iho/stockrecon/internal/infrastructure/redis"
	"github.com/iho/stockrecon/internal/infrastructure/sqlite"
	"github.com/iho/stockrecon/internal/usecase"
)

// rateStore is an opened rate cache backend.
type rateStore struct {
	cache   usecase.RateCache
	backend string
	ping    func(ctx context.Context) error
	close   func()
}

func noop() {}

// openRateCache opens the backend named by the scheme of cfg.RateCacheURL.
func openRateCache(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*rateStore, error) {
	raw := cfg.RateCacheURL
	scheme, rest, ok := strings.Cut(raw, "://")
	if !ok {
		return nil, fmt.Errorf("invalid RATE_CACHE_URL %q: missing scheme", raw)
	}

	switch scheme {
	case "memory":
		return &rateStore{
			cache:   memoryrepo.NewRateCache(),
			backend: scheme,
			ping:    func(context.Context) error { return nil },
			close:   noop,
		}, nil

	case "file":
		c, err := filerepo.NewRateCache(rest)
		if err != nil {
			return nil, err
		}
		return &rateStore{
			cache:   c,
			backend: scheme,
			ping: func(context.Context) error {
				_, err := os.Stat(rest)
				return err
			},
			close: noop,
		}, nil

	case "sqlite":
		db, err := sqlite.Open(rest)
		if err != nil {
			return nil, err
		}
		c, err := sqliterepo.NewRateCache(db)
		if err != nil {
			db.Close()
			return nil, err
		}
		return &rateStore{
			cache:   c,
			backend: scheme,
			ping:    db.PingContext,
			close:   func() { db.Close() },
		}, nil

	case "redis", "rediss":
		client, err := redis.NewClient(ctx, raw, cfg.DatabaseTimeout)
		if err != nil {
			return nil, err
		}
		log.Debug().Msg("connected to redis")
		return &rateStore{
			cache:   redisrepo.NewRateCache(client),
			backend: "redis",
			ping:    func(ctx context.Context) error { return client.Ping(ctx).Err() },
			close:   func() { client.Close() },
		}, nil

	case "postgres", "postgresql":
		connectCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseTimeout)
		defer cancel()

		pool, err := postgres.NewPool(connectCtx, postgres.PoolConfig{
			DatabaseURL: raw,
			MaxConns:    cfg.DatabaseMaxConns,
			MinConns:    cfg.DatabaseMinConns,
		})
		if err != nil {
			return nil, err
		}
		log.Debug().Msg("connected to postgres")
		return &rateStore{
			cache:   postgresrepo.NewRateRepository(pool, postgresrepo.NewRetrier(log)),
			backend: "postgres",
			ping:    pool.Ping,
			close:   pool.Close,
		}, nil

	default:
		return nil, fmt.Errorf("unsupported rate cache scheme %q", scheme)
	}
}
