package typeahead

import (
	"github.com/prometheus/client_golang/prometheus"
)

// MetricsRecorder wraps a set of Prometheus collectors observing query
// execution. Unlike a promauto-registered global, it registers its
// collectors against the Registerer passed to NewMetricsRecorder, so
// recorders given separate registries (in tests, or for multiple element
// ranges in one process) do not collide. Registering two recorders
// against the same Registerer panics on duplicate registration.
type MetricsRecorder struct {
	registry prometheus.Registerer

	queriesTotal        prometheus.Counter
	browseHitsTotal     prometheus.Counter
	filterHitsTotal     prometheus.Counter
	resultHitsTotal     prometheus.Counter
	queryDuration       prometheus.Histogram
	bufferPoolExhausted prometheus.Counter
}

// NewMetricsRecorder registers its collectors against reg and returns the
// recorder. Pass prometheus.NewRegistry() for an isolated registry, or
// prometheus.DefaultRegisterer to expose metrics on the default /metrics
// handler.
func NewMetricsRecorder(reg prometheus.Registerer) *MetricsRecorder {
	m := &MetricsRecorder{
		registry: reg,
		queriesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typeahead",
			Name:      "queries_total",
			Help:      "Total number of completed typeahead queries.",
		}),
		browseHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typeahead",
			Name:      "browse_hits_total",
			Help:      "Total number of adjacency records browsed across all queries.",
		}),
		filterHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typeahead",
			Name:      "filter_hits_total",
			Help:      "Total number of candidates that survived the bloom/filter-store prefilter.",
		}),
		resultHitsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typeahead",
			Name:      "result_hits_total",
			Help:      "Total number of candidates the selector accepted as results.",
		}),
		queryDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "typeahead",
			Name:      "query_duration_seconds",
			Help:      "Query wall-clock latency in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 16),
		}),
		bufferPoolExhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "typeahead",
			Name:      "buffer_pool_exhausted_total",
			Help:      "Total number of scratch-buffer allocations made after the buffer pool was found empty.",
		}),
	}

	reg.MustRegister(
		m.queriesTotal,
		m.browseHitsTotal,
		m.filterHitsTotal,
		m.resultHitsTotal,
		m.queryDuration,
		m.bufferPoolExhausted,
	)

	return m
}

// Observe records one completed query's HitStats.
func (m *MetricsRecorder) Observe(stats HitStats) {
	m.queriesTotal.Inc()
	m.browseHitsTotal.Add(float64(stats.NumBrowseHits))
	m.filterHitsTotal.Add(float64(stats.NumFilterHits))
	m.resultHitsTotal.Add(float64(stats.NumResultHits))
	m.queryDuration.Observe(stats.TotalTime.Seconds())
}
