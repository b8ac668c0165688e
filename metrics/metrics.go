// Package metrics exposes the Prometheus collectors of the hub.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce       sync.Once
	runsTotal          *prometheus.CounterVec
	runFailuresTotal   *prometheus.CounterVec
	runDurationSeconds *prometheus.HistogramVec
	userCopySavesTotal *prometheus.CounterVec
	catalogLoadsTotal  *prometheus.CounterVec
)

// Register initialises the collectors on the default registry. Safe to call repeatedly.
func Register() {
	registerOnce.Do(func() {
		runsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labhub_runs_total",
			Help: "Total number of run requests by execution mode.",
		}, []string{"mode"})

		runFailuresTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labhub_run_failures_total",
			Help: "Total number of script runs that ended in an error.",
		}, []string{"mode"})

		runDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "labhub_run_duration_seconds",
			Help:    "Wall time spent executing or rendering a program.",
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"mode"})

		userCopySavesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labhub_user_copy_saves_total",
			Help: "Total number of user copy saves by store backend and result.",
		}, []string{"backend", "result"})

		catalogLoadsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "labhub_catalog_loads_total",
			Help: "Total number of catalog load attempts by result.",
		}, []string{"result"})

		prometheus.MustRegister(runsTotal, runFailuresTotal, runDurationSeconds, userCopySavesTotal, catalogLoadsTotal)
	})
}

// Runs exposes the run counter.
func Runs() *prometheus.CounterVec {
	Register()
	return runsTotal
}

// RunFailures exposes the failed run counter.
func RunFailures() *prometheus.CounterVec {
	Register()
	return runFailuresTotal
}

// RunDuration exposes the run latency histogram.
func RunDuration() *prometheus.HistogramVec {
	Register()
	return runDurationSeconds
}

// UserCopySaves exposes the user copy save counter.
func UserCopySaves() *prometheus.CounterVec {
	Register()
	return userCopySavesTotal
}

// CatalogLoads exposes the catalog load counter.
func CatalogLoads() *prometheus.CounterVec {
	Register()
	return catalogLoadsTotal
}

// Handler serves the default registry.
func Handler() http.Handler {
	Register()
	return promhttp.Handler()
}
