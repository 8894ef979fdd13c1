// Package observability holds the Prometheus registry for the backtest service.
package observability

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter vectors
var (
	ComputationRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backtester",
		Name:      "computation_runs_total",
		Help:      "External computation runs by script and outcome",
	}, []string{"script", "outcome"})

	BacktestResultsSavedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backtester",
		Name:      "backtest_results_saved_total",
		Help:      "Backtest results persisted after a successful computation",
	})

	RateLimitedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "backtester",
		Name:      "rate_limited_requests_total",
		Help:      "Requests rejected by the submission rate limit",
	}, []string{"route"})

	TempFilesSweptTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "backtester",
		Name:      "temp_files_swept_total",
		Help:      "Stale materialized files removed by the sweeper",
	})
)

// Histograms and gauges
var (
	ComputationDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "backtester",
		Name:      "computation_duration_seconds",
		Help:      "Wall time of external computation runs",
		Buckets:   []float64{0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
	}, []string{"script"})

	ActiveMaterializations = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "backtester",
		Name:      "active_materializations",
		Help:      "Temporary files currently materialized for a computation",
	})
)

// InitRegistry registers all collectors once and returns the registry
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			ComputationRunsTotal,
			BacktestResultsSavedTotal,
			RateLimitedTotal,
			TempFilesSweptTotal,
			ComputationDuration,
			ActiveMaterializations,
		)
	})
	return registry
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.HandlerFor(InitRegistry(), promhttp.HandlerOpts{})
}

// RecordComputation records one external computation run.
// outcome is "success" or an error kind.
func RecordComputation(script, outcome string, seconds float64) {
	ComputationRunsTotal.WithLabelValues(script, outcome).Inc()
	ComputationDuration.WithLabelValues(script).Observe(seconds)
}
