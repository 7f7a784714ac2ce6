package engine

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "pgquery"

// Metrics records statement outcomes. A nil *Metrics records nothing.
type Metrics struct {
	statements      *prometheus.CounterVec
	duration        *prometheus.HistogramVec
	releaseFailures prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		statements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "statements_total",
			Help:      "Statements executed, by connection source and outcome.",
		}, []string{"source", "outcome"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Name:      "statement_duration_seconds",
			Help:      "Round trip time of executed statements.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"source"}),
		releaseFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "release_failures_total",
			Help:      "Leased connections that could not be returned to the pool.",
		}),
	}

	for _, c := range []prometheus.Collector{m.statements, m.duration, m.releaseFailures} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *Metrics) observe(source string, start time.Time, err error) {
	if m == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.statements.WithLabelValues(source, outcome).Inc()
	m.duration.WithLabelValues(source).Observe(time.Since(start).Seconds())
}

func (m *Metrics) releaseFailed() {
	if m == nil {
		return
	}
	m.releaseFailures.Inc()
}
