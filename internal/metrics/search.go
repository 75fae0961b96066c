package metrics

import "github.com/prometheus/client_golang/prometheus"

// Translation and backend Prometheus metrics.
var (
	TranslationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchbridge",
			Name:      "translations_total",
			Help:      "Total number of translated request batches",
		},
		[]string{"status"}, // "ok" / "malformed_filter" / "invalid_geo" / "invalid_request"
	)

	SearchesPerBatch = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "searchbridge",
			Name:      "searches_per_batch",
			Help:      "Number of searches in a translated batch",
			Buckets:   []float64{1, 2, 3, 5, 8, 13, 21},
		},
	)

	BackendRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "searchbridge",
			Name:      "backend_requests_total",
			Help:      "Total number of search backend requests",
		},
		[]string{"operation", "status"},
	)

	BackendRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "searchbridge",
			Name:      "backend_request_duration_seconds",
			Help:      "Search backend request duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
		[]string{"operation"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers translation and backend metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(TranslationsTotal)
	prometheus.MustRegister(SearchesPerBatch)
	prometheus.MustRegister(BackendRequestsTotal)
	prometheus.MustRegister(BackendRequestDuration)
	searchMetricsRegistered = true
}
