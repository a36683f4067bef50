package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PagesScanned *prometheus.CounterVec
	ErrorsTotal  *prometheus.CounterVec
	RunsTotal    *prometheus.CounterVec
	PageDuration prometheus.Histogram
}

func NewMetrics() *Metrics {
	return &Metrics{
		PagesScanned: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteguard_pages_scanned_total",
			Help: "The total number of pages scanned",
		}, nil),
		ErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteguard_errors_total",
			Help: "The total number of errors encountered",
		}, []string{"type"}), // e.g., 'navigation_failed', 'db_save_failed'
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "siteguard_runs_total",
			Help: "Scan runs by terminal state",
		}, []string{"state"}),
		PageDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "siteguard_page_duration_seconds",
			Help:    "Wall time spent scanning a single page",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
	}
}

func (m *Metrics) IncPagesScanned() {
	m.PagesScanned.WithLabelValues().Inc()
}

func (m *Metrics) IncErrorsTotal(errorType string) {
	m.ErrorsTotal.WithLabelValues(errorType).Inc()
}

func (m *Metrics) IncRunsTotal(state string) {
	m.RunsTotal.WithLabelValues(state).Inc()
}

func (m *Metrics) ObservePageDuration(d time.Duration) {
	m.PageDuration.Observe(d.Seconds())
}
