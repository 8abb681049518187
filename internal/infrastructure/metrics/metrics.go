package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/iho/stockrecon/internal/domain"
)

// Metrics holds all Prometheus metrics on a dedicated registry.
type Metrics struct {
	registry *prometheus.Registry

	// Reconciliation metrics
	EntriesProcessed *prometheus.CounterVec
	RunsCompleted    prometheus.Counter
	RunFailures      *prometheus.CounterVec
	RunDuration      prometheus.Histogram

	// Ledger results of the last successful run
	Profit                  prometheus.Gauge
	CashFlow                prometheus.Gauge
	InventoryUnits          *prometheus.GaugeVec
	ReservationsOutstanding prometheus.Gauge
	LastSuccess             prometheus.Gauge

	// Exchange rate metrics
	RateLookups       *prometheus.CounterVec
	RateFetchDuration prometheus.Histogram
}

// New creates and registers all Prometheus metrics. Go runtime and process
// collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		EntriesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockrecon_entries_processed_total",
				Help: "Ledger entries folded into the state, by action",
			},
			[]string{"action"},
		),
		RunsCompleted: factory.NewCounter(prometheus.CounterOpts{
			Name: "stockrecon_runs_completed_total",
			Help: "Successful reconciliation runs",
		}),
		RunFailures: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockrecon_run_failures_total",
				Help: "Failed reconciliation runs by error kind",
			},
			[]string{"kind"},
		),
		RunDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockrecon_run_duration_seconds",
			Help:    "Duration of reconciliation runs",
			Buckets: prometheus.DefBuckets,
		}),

		Profit: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockrecon_profit_usd",
			Help: "Total profit in USD",
		}),
		CashFlow: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockrecon_cash_flow_usd",
			Help: "Net cash flow in USD",
		}),
		InventoryUnits: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stockrecon_inventory_units",
				Help: "Units left in stock per item",
			},
			[]string{"item"},
		),
		ReservationsOutstanding: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockrecon_reservations_outstanding",
			Help: "Reservations that still hold units",
		}),
		LastSuccess: factory.NewGauge(prometheus.GaugeOpts{
			Name: "stockrecon_last_success_timestamp_seconds",
			Help: "Unix time of the last successful run",
		}),

		RateLookups: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stockrecon_rate_lookups_total",
				Help: "Exchange rate lookups by result",
			},
			[]string{"result"},
		),
		RateFetchDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "stockrecon_rate_fetch_duration_seconds",
			Help:    "Duration of exchange rate fetches including retries",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}
}

// Registry returns the registry holding the metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// EntryProcessed implements usecase.RunRecorder.
func (m *Metrics) EntryProcessed(action domain.Action) {
	m.EntriesProcessed.WithLabelValues(string(action)).Inc()
}

// RunFailed implements usecase.RunRecorder.
func (m *Metrics) RunFailed(kind string) {
	m.RunFailures.WithLabelValues(kind).Inc()
}

// RunCompleted implements usecase.RunRecorder.
func (m *Metrics) RunCompleted(summary domain.Summary, duration time.Duration) {
	m.RunsCompleted.Inc()
	m.RunDuration.Observe(duration.Seconds())

	m.Profit.Set(summary.Profit.InexactFloat64())
	m.CashFlow.Set(summary.CashFlow.InexactFloat64())
	m.InventoryUnits.Reset()
	for _, line := range summary.Inventory {
		m.InventoryUnits.WithLabelValues(line.Item).Set(float64(line.Units))
	}
	m.ReservationsOutstanding.Set(float64(len(summary.Reservations)))
	m.LastSuccess.SetToCurrentTime()
}

// RateLookup implements rates.Observer.
func (m *Metrics) RateLookup(result string) {
	m.RateLookups.WithLabelValues(result).Inc()
}

// RateFetched implements rates.Observer.
func (m *Metrics) RateFetched(duration time.Duration) {
	m.RateFetchDuration.Observe(duration.Seconds())
}

// WriteTextfile writes the metrics for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
