// Package metrics exposes Prometheus collectors for the dashboard.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	// ReportFetchesTotal counts report fetches by outcome.
	ReportFetchesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "seo",
		Subsystem: "dashboard",
		Name:      "report_fetches_total",
		Help:      "Total number of SEO report fetches, labeled by outcome.",
	}, []string{"outcome"})

	// ReportFetchDurationSeconds is the time spent waiting on the backend.
	ReportFetchDurationSeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "seo",
		Subsystem: "dashboard",
		Name:      "report_fetch_duration_seconds",
		Help:      "Time to fetch an SEO report from the backend.",
		Buckets:   []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 20, 30, 60, 120},
	}, []string{"outcome"})

	// SupersededTotal counts results discarded because a newer submission started.
	SupersededTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "seo",
		Subsystem: "dashboard",
		Name:      "report_superseded_total",
		Help:      "Total number of report results discarded in favour of a newer submission.",
	})

	// ActiveSessions is the number of live dashboard sessions.
	ActiveSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: "seo",
		Subsystem: "dashboard",
		Name:      "active_sessions",
		Help:      "Number of dashboard sessions currently held in memory.",
	})
)

// Register registers dashboard metrics with the default Prometheus registry.
// Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(
			ReportFetchesTotal,
			ReportFetchDurationSeconds,
			SupersededTotal,
			ActiveSessions,
		)
	})
}

// ObserveFetch records one completed fetch.
func ObserveFetch(outcome string, elapsed time.Duration) {
	ReportFetchesTotal.WithLabelValues(outcome).Inc()
	ReportFetchDurationSeconds.WithLabelValues(outcome).Observe(elapsed.Seconds())
}
