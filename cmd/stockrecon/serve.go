package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	httpAdapter "github.com/iho/stockrecon/internal/adapter/http"
	"github.com/iho/stockrecon/internal/adapter/http/handler"
	"github.com/iho/stockrecon/internal/adapter/http/middleware"
	"github.com/iho/stockrecon/internal/adapter/ledgerfile"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port      string
		rateLimit float64
		burst     int
	)

	cmd := &cobra.Command{
		Use:   "serve [ledger]",
		Short: "Serve the report over HTTP with health and metrics endpoints",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if port != "" {
				a.cfg.HTTPPort = port
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			p, err := a.buildPipeline(ctx, true)
			if err != nil {
				return err
			}
			defer p.Close()

			source := ledgerfile.NewSource(a.ledgerPath(args))

			var limiter *middleware.RateLimiter
			if rateLimit > 0 {
				limiter = middleware.NewRateLimiter(rateLimit, burst)
				go sweepLimiter(ctx, limiter)
			}

			router := httpAdapter.NewRouter(httpAdapter.RouterConfig{
				HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{
					"ledger":     source,
					"rate_cache": handler.PingFunc(p.store.ping),
				}),
				ReportHandler: handler.NewReportHandler(p.reconciler, source),
				Logger:        a.logger,
				Registry:      p.metrics.Registry(),
				RateLimiter:   limiter,
			})

			server := &http.Server{
				Addr:         fmt.Sprintf(":%s", a.cfg.HTTPPort),
				Handler:      router,
				ReadTimeout:  a.cfg.HTTPReadTimeout,
				WriteTimeout: a.cfg.HTTPWriteTimeout,
				IdleTimeout:  a.cfg.HTTPIdleTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info().
					Str("port", a.cfg.HTTPPort).
					Str("ledger", source.Path()).
					Str("rate_cache", p.store.backend).
					Msg("starting server")
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				if err != nil {
					return fmt.Errorf("server failed: %w", err)
				}
				return nil
			case <-ctx.Done():
			}

			a.logger.Info().Msg("shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.HTTPShutdownTimeout)
			defer cancel()

			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("server forced to shutdown: %w", err)
			}

			a.logger.Info().Msg("server stopped")
			return nil
		},
	}

	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port (overrides HTTP_PORT)")
	cmd.Flags().Float64Var(&rateLimit, "rate-limit", 5, "Report requests per second per client, 0 disables")
	cmd.Flags().IntVar(&burst, "burst", 10, "Report request burst per client")

	return cmd
}

func sweepLimiter(ctx context.Context, limiter *middleware.RateLimiter) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			limiter.Cleanup(10 * time.Minute)
		}
	}
}
