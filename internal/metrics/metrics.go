// Package metrics exposes Prometheus metrics for registry builds and dispatch.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Build outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics provides observability for the registry.
type Metrics struct {
	// Builds by outcome
	Builds *prometheus.CounterVec

	// Build latency including resource compilation
	BuildLatency prometheus.Histogram

	// Published artifacts by role in the current registry
	Artifacts *prometheus.GaugeVec

	// Dispatch lookups by cache result ("hit", "miss", "bypass")
	Dispatches *prometheus.CounterVec
}

// New creates a Metrics instance registered with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)
	return &Metrics{
		Builds: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_builds_total",
			Help: "Total registry builds by outcome",
		}, []string{"outcome"}),

		BuildLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "roster_build_duration_seconds",
			Help:    "Duration of registry builds including resource compilation",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		}),

		Artifacts: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "roster_artifacts",
			Help: "Published artifacts by role in the current registry",
		}, []string{"role"}),

		Dispatches: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "roster_dispatch_total",
			Help: "URI dispatch lookups by cache result",
		}, []string{"cache"}),
	}
}

// ObserveBuild records a finished build.
func (m *Metrics) ObserveBuild(err error, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeFailure
	}
	m.Builds.WithLabelValues(outcome).Inc()
	m.BuildLatency.Observe(d.Seconds())
}

// SetArtifacts replaces the per-role artifact gauges.
func (m *Metrics) SetArtifacts(counts map[string]int) {
	if m == nil {
		return
	}
	m.Artifacts.Reset()
	for role, n := range counts {
		m.Artifacts.WithLabelValues(role).Set(float64(n))
	}
}

// IncrementDispatch records a dispatch lookup.
func (m *Metrics) IncrementDispatch(cache string) {
	if m != nil {
		m.Dispatches.WithLabelValues(cache).Inc()
	}
}
