package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/stockrecon/internal/infrastructure/config"
)

const testLedger = `# sample
OBTAIN: DATE 2024-01-01, TYPE assembled, PROJECT ilonena, QUANTITY 2, COSTEACH EUR5
RELEASE: DATE 2024-01-02, TYPE sales, REF order1, ITEMS ilonena1
INCOME: DATE 2024-01-03, TYPE sales, REF order2, AMOUNT EUR30, FEE 10%
`

// newRatesServer serves a fixed EUR table for every date.
func newRatesServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		date := strings.TrimPrefix(r.URL.Path, "/v1/")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"amount":1.0,"base":"USD","date":"` + date + `","rates":{"EUR":0.5,"GBP":0.8}}`))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// setup isolates the working directory and environment for one CLI run.
func setup(t *testing.T, ledger string) (dir string, calls *atomic.Int32) {
	t.Helper()

	dir = t.TempDir()
	t.Chdir(dir)

	srv, calls := newRatesServer(t)
	t.Setenv("RATES_BASE_URL", srv.URL)
	t.Setenv("RATES_MAX_RETRIES", "0")
	t.Setenv("RATE_CACHE_URL", "memory://")
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "info")
	t.Setenv("LEDGER_PATH", filepath.Join(dir, "transactions.txt"))

	if ledger != "" {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "transactions.txt"), []byte(ledger), 0o600))
	}
	return dir, calls
}

func run(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = execute(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestReportCommand_Text(t *testing.T) {
	setup(t, testLedger)

	code, out, stderr := run("report")
	require.Equal(t, 0, code, stderr)

	for _, want := range []string{
		"Breakdown of profit of all orders:",
		"order1\t-10.00 USD",
		"order2\t54.00 USD",
		"Profit:\t\t44.00 USD",
		"Cash Flow:\t54.00 USD",
		"ilonena\t1\tNext unit @10 USD",
		"ilomusiali\t0\tNext unit @N/A USD",
	} {
		assert.Contains(t, out, want)
	}
	assert.Contains(t, stderr, "reconciliation completed")
}

func TestReportCommand_JSONAndMarkdown(t *testing.T) {
	setup(t, testLedger)

	code, out, stderr := run("report", "--format", "json")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, `"profit"`)

	code, out, stderr = run("report", "-f", "markdown")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "$44.00")
}

func TestReportCommand_UnknownFormat(t *testing.T) {
	setup(t, testLedger)

	code, _, stderr := run("report", "--format", "xml")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "unknown report format")
}

func TestReportCommand_ExplicitLedgerArgument(t *testing.T) {
	dir, _ := setup(t, "")
	path := filepath.Join(dir, "other.txt")
	require.NoError(t, os.WriteFile(path, []byte(testLedger), 0o600))

	code, out, stderr := run("report", path)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "order2\t54.00 USD")
}

func TestReportCommand_InvalidLedgerFails(t *testing.T) {
	setup(t, "RELEASE: DATE 2024-01-02, TYPE sales, REF 1, ITEMS ilonena1\n")

	code, out, stderr := run("report")
	assert.Equal(t, 1, code)
	assert.Empty(t, out, "no partial report on failure")
	assert.Contains(t, stderr, "command failed")
}

func TestReportCommand_WritesMetricsTextfile(t *testing.T) {
	dir, _ := setup(t, testLedger)
	path := filepath.Join(dir, "stockrecon.prom")

	code, _, stderr := run("report", "--metrics-textfile", path)
	require.Equal(t, 0, code, stderr)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "stockrecon_runs_completed_total 1")
	assert.Contains(t, string(data), `stockrecon_entries_processed_total{action="OBTAIN"} 1`)
}

func TestReportCommand_FileCachePersistsAcrossRuns(t *testing.T) {
	dir, calls := setup(t, testLedger)
	t.Setenv("RATE_CACHE_URL", "file://"+filepath.Join(dir, "exchange-rates"))

	code, _, stderr := run("report")
	require.Equal(t, 0, code, stderr)
	first := calls.Load()
	assert.Equal(t, int32(2), first, "one fetch per distinct foreign-currency date")

	code, _, stderr = run("report")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, first, calls.Load(), "second run is served from the cache")

	_, err := os.Stat(filepath.Join(dir, "exchange-rates", "2024-01-01.json"))
	assert.NoError(t, err)
}

func TestValidateCommand(t *testing.T) {
	setup(t, testLedger)

	code, out, stderr := run("validate")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "3 entries OK")
}

func TestValidateCommand_MissingLedger(t *testing.T) {
	setup(t, "")

	code, _, _ := run("validate")
	assert.Equal(t, 1, code)
}

func TestRatesCommand(t *testing.T) {
	setup(t, "")

	code, out, stderr := run("rates", "2024-01-01")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, out, "1 USD on 2024-01-01")
	assert.Less(t, strings.Index(out, "EUR"), strings.Index(out, "GBP"))

	code, out, stderr = run("rates", "2024-01-01", "--currency", "gbp")
	require.Equal(t, 0, code, stderr)
	assert.Equal(t, "GBP\t0.8\n", out)
}

func TestRatesCommand_Errors(t *testing.T) {
	setup(t, "")

	tests := []struct {
		name string
		args []string
	}{
		{"bad date", []string{"rates", "01/02/2024"}},
		{"unknown currency", []string{"rates", "2024-01-01", "-c", "XYZ"}},
		{"missing date", []string{"rates"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, _, _ := run(tt.args...)
			assert.Equal(t, 1, code)
		})
	}
}

func TestMigrateCommand_RequiresPostgres(t *testing.T) {
	setup(t, "")

	code, _, stderr := run("migrate", "up")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "requires a postgres")
}

func TestEnvFileFlag(t *testing.T) {
	dir, _ := setup(t, "")

	code, _, stderr := run("--env-file", filepath.Join(dir, "missing.env"), "validate")
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "failed to load env file")
}

func TestOpenRateCache(t *testing.T) {
	mr := miniredis.RunT(t)
	dir := t.TempDir()

	tests := []struct {
		name    string
		url     string
		backend string
		wantErr bool
	}{
		{"memory", "memory://", "memory", false},
		{"file", "file://" + filepath.Join(dir, "rates"), "file", false},
		{"sqlite", "sqlite://" + filepath.Join(dir, "rates.db"), "sqlite", false},
		{"redis", "redis://" + mr.Addr() + "/0", "redis", false},
		{"no scheme", "exchange-rates", "", true},
		{"unknown scheme", "s3://bucket/rates", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{RateCacheURL: tt.url, DatabaseTimeout: defaultTestTimeout}

			store, err := openRateCache(context.Background(), cfg, testLogger())
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			defer store.close()

			assert.Equal(t, tt.backend, store.backend)
			assert.NoError(t, store.ping(context.Background()))

			_, found, err := store.cache.Get(context.Background(), "2024-01-01")
			require.NoError(t, err)
			assert.False(t, found)
		})
	}
}
