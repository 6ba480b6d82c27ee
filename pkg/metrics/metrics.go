package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the counters recorded during crawl runs
type Metrics struct {
	registry        *prometheus.Registry
	pages           *prometheus.CounterVec
	fetchErrors     prometheus.Counter
	transformErrors prometheus.Counter
	fetchDuration   prometheus.Histogram
}

// New creates a Metrics instance backed by its own registry
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		pages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crawlscribe_pages_total",
				Help: "Frontier entries processed, by outcome.",
			},
			[]string{"status"},
		),
		fetchErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawlscribe_fetch_errors_total",
			Help: "Page fetches that failed after all attempts.",
		}),
		transformErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "crawlscribe_transform_errors_total",
			Help: "Content transform calls that failed.",
		}),
		fetchDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "crawlscribe_fetch_duration_seconds",
			Help:    "Duration of page fetches.",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
	m.registry.MustRegister(m.pages, m.fetchErrors, m.transformErrors, m.fetchDuration)
	return m
}

// PageProcessed records the outcome of one frontier entry
func (m *Metrics) PageProcessed(status string) {
	if m == nil {
		return
	}
	m.pages.WithLabelValues(status).Inc()
}

// FetchFailed records a failed fetch
func (m *Metrics) FetchFailed() {
	if m == nil {
		return
	}
	m.fetchErrors.Inc()
}

// TransformFailed records a failed transform call
func (m *Metrics) TransformFailed() {
	if m == nil {
		return
	}
	m.transformErrors.Inc()
}

// ObserveFetch records how long a fetch took
func (m *Metrics) ObserveFetch(d time.Duration) {
	if m == nil {
		return
	}
	m.fetchDuration.Observe(d.Seconds())
}

// Registry exposes the underlying registry as a gatherer
func (m *Metrics) Registry() prometheus.Gatherer {
	return m.registry
}

// WriteTextfile writes the current metrics in the text exposition format,
// suitable for the node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
