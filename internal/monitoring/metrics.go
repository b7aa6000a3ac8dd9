package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	PagesFetched    *prometheus.CounterVec
	FetchErrors     *prometheus.CounterVec
	AnalyzeDuration *prometheus.HistogramVec
	ScansTotal      *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	return &Metrics{
		PagesFetched: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nichescout_pages_fetched_total",
			Help: "The total number of marketplace pages fetched",
		}, []string{"kind", "method"}), // method: 'browser' or 'fallback'
		FetchErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nichescout_fetch_errors_total",
			Help: "The total number of fetch failures",
		}, []string{"kind", "reason"}),
		AnalyzeDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "nichescout_analyze_duration_seconds",
			Help:    "Time spent serving an analyze request end to end",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		}, []string{"kind"}),
		ScansTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "nichescout_keyword_scans_total",
			Help: "The total number of background keyword scans",
		}, []string{"result"}), // 'success', 'failure', 'skipped'
	}
}

func (m *Metrics) IncPagesFetched(kind, method string) {
	m.PagesFetched.WithLabelValues(kind, method).Inc()
}

func (m *Metrics) IncFetchErrors(kind, reason string) {
	m.FetchErrors.WithLabelValues(kind, reason).Inc()
}

func (m *Metrics) ObserveAnalyze(kind string, seconds float64) {
	m.AnalyzeDuration.WithLabelValues(kind).Observe(seconds)
}

func (m *Metrics) IncScans(result string) {
	m.ScansTotal.WithLabelValues(result).Inc()
}
