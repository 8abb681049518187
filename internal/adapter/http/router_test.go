package http

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/stockrecon/internal/adapter/http/handler"
	apimiddleware "github.com/iho/stockrecon/internal/adapter/http/middleware"
	"github.com/iho/stockrecon/internal/adapter/ledgerfile"
	"github.com/iho/stockrecon/internal/domain"
	"github.com/iho/stockrecon/internal/usecase"
)

type fixedRates struct{}

func (fixedRates) Rates(context.Context, time.Time) (domain.RateTable, error) {
	return domain.RateTable{"EUR": decimal.RequireFromString("0.5")}, nil
}

type staticID struct{}

func (staticID) Generate() string { return "01HRUN" }

func writeLedger(t *testing.T, content string) *ledgerfile.Source {
	t.Helper()
	path := filepath.Join(t.TempDir(), "transactions.txt")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write ledger: %v", err)
	}
	return ledgerfile.NewSource(path)
}

func newRouterConfig(t *testing.T, ledger string, opts ...func(*RouterConfig)) RouterConfig {
	t.Helper()

	catalog := domain.MustCatalog("widgetX")
	validator := usecase.NewValidationUseCase(catalog, usecase.NewConverter(fixedRates{}))
	reconciler := usecase.NewReconciliationUseCase(catalog, validator, staticID{}, nil, zerolog.Nop())
	source := writeLedger(t, ledger)

	cfg := RouterConfig{
		HealthHandler: handler.NewHealthHandler(map[string]handler.Pinger{"ledger": source}),
		ReportHandler: handler.NewReportHandler(reconciler, source),
		Logger:        zerolog.Nop(),
	}

	for _, opt := range opts {
		opt(&cfg)
	}

	return cfg
}

const validLedger = `OBTAIN: DATE 2024-01-01, TYPE assembled, PROJECT widgetX, QUANTITY 2, COSTEACH EUR5
RELEASE: DATE 2024-01-02, TYPE sales, REF order1, ITEMS widgetX1
INCOME: DATE 2024-01-03, TYPE sales, REF order2, AMOUNT EUR30, FEE 10%
`

func TestNewRouter_HealthEndpointAvailable(t *testing.T) {
	router := NewRouter(newRouterConfig(t, validLedger))

	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

		if rec.Code != http.StatusOK {
			t.Fatalf("expected %s to return 200, got %d", path, rec.Code)
		}
	}
}

func TestNewRouter_ReportEndToEnd(t *testing.T) {
	router := NewRouter(newRouterConfig(t, validLedger))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report?format=text", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	body := rec.Body.String()
	for _, want := range []string{
		"order1\t-10.00 USD",
		"order2\t54.00 USD",
		"Profit:\t\t44.00 USD",
		"Cash Flow:\t54.00 USD",
		"widgetX\t1\tNext unit @10 USD",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected %q in report:\n%s", want, body)
		}
	}
}

func TestNewRouter_InvalidLedgerIs422(t *testing.T) {
	router := NewRouter(newRouterConfig(t, "RELEASE: DATE 2024-01-02, TYPE sales, REF 1, ITEMS widgetX1\n"))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/report", nil))

	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d: %s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `"error":"order"`) {
		t.Fatalf("expected order error body, got %s", rec.Body.String())
	}
}

func TestNewRouter_MetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	router := NewRouter(newRouterConfig(t, validLedger, func(cfg *RouterConfig) {
		cfg.Registry = reg
	}))

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected /metrics to return 200, got %d", rec.Code)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte(`http_requests_total{method="GET",path="/health",status="200"} 1`)) {
		t.Fatalf("expected request counter in metrics output:\n%s", rec.Body.String())
	}
}

func TestNewRouter_RateLimiterBlocksExcessRequests(t *testing.T) {
	router := NewRouter(newRouterConfig(t, validLedger, func(cfg *RouterConfig) {
		cfg.RateLimiter = apimiddleware.NewRateLimiter(1, 1)
	}))

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/report", nil)
		req.RemoteAddr = "1.2.3.4:1234"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}

	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("expected [200 429], got %v", codes)
	}
}

func TestNewRouter_RegistersKeyRoutes(t *testing.T) {
	router := NewRouter(newRouterConfig(t, validLedger, func(cfg *RouterConfig) {
		cfg.Registry = prometheus.NewRegistry()
	}))

	chiRoutes, ok := router.(chi.Router)
	if !ok {
		t.Fatal("router does not implement chi.Routes")
	}

	seen := map[string]bool{}
	if err := chi.Walk(chiRoutes, func(method string, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[method+" "+route] = true
		return nil
	}); err != nil {
		t.Fatalf("walk failed: %v", err)
	}

	for _, route := range []string{"GET /health", "GET /ready", "GET /metrics", "GET /api/v1/report"} {
		if !seen[route] {
			t.Fatalf("expected route %s to be registered", route)
		}
	}
}
