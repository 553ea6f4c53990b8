package metaexplanations

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const unknownVariant = "unknown"

// Metrics records meta-explanation run counts, durations and runs in flight.
type Metrics struct {
	runs     *prometheus.CounterVec
	duration *prometheus.HistogramVec
	inFlight prometheus.Gauge
}

// NewMetrics registers the run collectors with reg. A nil reg leaves them unregistered.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		runs: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "histocartography",
			Name:      "meta_explanation_runs_total",
			Help:      "Total meta-explanation runs by variant and result",
		}, []string{"variant", "result"}),

		duration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "histocartography",
			Name:      "meta_explanation_run_duration_seconds",
			Help:      "Meta-explanation run duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 14),
		}, []string{"variant"}),

		inFlight: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: "histocartography",
			Name:      "meta_explanation_runs_in_flight",
			Help:      "Meta-explanation runs currently executing",
		}),
	}
}

func (m *Metrics) observe(variant string, err error, elapsed time.Duration) {
	if variant == "" {
		variant = unknownVariant
	}

	result := "success"
	if err != nil {
		result = "error"
	}

	m.runs.WithLabelValues(variant, result).Inc()
	m.duration.WithLabelValues(variant).Observe(elapsed.Seconds())
}
