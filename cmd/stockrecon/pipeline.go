package main

import (
	"context"
	"net/http"

	"github.com/iho/stockrecon/internal/adapter/rates"
	"github.com/iho/stockrecon/internal/infrastructure/config"
	"github.com/iho/stockrecon/internal/infrastructure/metrics"
	"github.com/iho/stockrecon/internal/infrastructure/runid"
	"github.com/iho/stockrecon/internal/usecase"
)

// pipeline is the fully wired reconciliation stack.
type pipeline struct {
	reconciler *usecase.ReconciliationUseCase
	provider   *rates.CachedProvider
	metrics    *metrics.Metrics
	store      *rateStore
}

func (p *pipeline) Close() {
	p.store.close()
}

func (a *app) buildPipeline(ctx context.Context, withRuntimeMetrics bool) (*pipeline, error) {
	catalog, err := config.LoadCatalog(a.cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	store, err := openRateCache(ctx, a.cfg, a.logger)
	if err != nil {
		return nil, err
	}
	a.logger.Debug().
		Str("backend", store.backend).
		Strs("items", catalog.Names()).
		Msg("pipeline configured")

	m := metrics.New(withRuntimeMetrics)
	fetcher := rates.NewFrankfurterFetcher(rates.FrankfurterConfig{
		BaseURL:    a.cfg.RatesBaseURL,
		Client:     &http.Client{Timeout: a.cfg.RatesTimeout},
		MaxRetries: a.cfg.RatesMaxRetries,
		Logger:     a.logger,
	})
	provider := rates.NewCachedProvider(store.cache, fetcher, m, a.logger)

	validator := usecase.NewValidationUseCase(catalog, usecase.NewConverter(provider))
	reconciler := usecase.NewReconciliationUseCase(catalog, validator, runid.NewULIDGenerator(), m, a.logger)

	return &pipeline{
		reconciler: reconciler,
		provider:   provider,
		metrics:    m,
		store:      store,
	}, nil
}

// writeMetrics writes the textfile when one is configured.
func (a *app) writeMetrics(p *pipeline) {
	if a.cfg.MetricsTextfile == "" {
		return
	}
	if err := p.metrics.WriteTextfile(a.cfg.MetricsTextfile); err != nil {
		a.logger.Warn().Err(err).Str("path", a.cfg.MetricsTextfile).Msg("failed to write metrics textfile")
	}
}
