package feed

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metric names as constants for consistency.
const (
	MetricResolveDuration    = "feed_resolve_duration_seconds"
	MetricItemsRanked        = "feed_items_ranked_total"
	MetricResolutionFailures = "feed_organizer_resolution_failures_total"
)

// Metrics contains Prometheus metrics for feed resolution.
// All operations are thread-safe.
type Metrics struct {
	resolveDuration    *prometheus.HistogramVec
	itemsRanked        *prometheus.CounterVec
	resolutionFailures prometheus.Counter
}

// NewMetrics creates and returns a new Metrics instance with all collectors
// initialized. The metrics are not registered; call Register to register
// them with a registry.
func NewMetrics() *Metrics {
	return &Metrics{
		resolveDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    MetricResolveDuration,
				Help:    "Feed resolve duration in seconds by content kind",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1.0, 5.0},
			},
			[]string{"kind"},
		),
		itemsRanked: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricItemsRanked,
				Help: "Total number of items scored by the feed resolver",
			},
			[]string{"kind"},
		),
		resolutionFailures: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricResolutionFailures,
				Help: "Total number of items whose organizer chain failed to resolve",
			},
		),
	}
}

// Register registers all metrics with the given registry.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		m.resolveDuration,
		m.itemsRanked,
		m.resolutionFailures,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// ObserveResolve records one completed resolve pass.
func (m *Metrics) ObserveResolve(kind string, seconds float64, ranked int) {
	m.resolveDuration.WithLabelValues(kind).Observe(seconds)
	m.itemsRanked.WithLabelValues(kind).Add(float64(ranked))
}

// IncResolutionFailure records one unresolvable organizer chain.
func (m *Metrics) IncResolutionFailure() {
	m.resolutionFailures.Inc()
}
