package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Operations counts client operations and their latency.
type Operations struct {
	total    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewOperations registers the client operation collectors on reg.
func NewOperations(reg prometheus.Registerer) (*Operations, error) {
	m := &Operations{
		total: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "operations_total",
			Help:      "Total client operations by request type and status.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "client",
			Name:      "operation_duration_seconds",
			Help:      "Client operation duration in seconds.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
	}
	if err := RegisterOrReuse(reg, &m.total); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.duration); err != nil {
		return nil, err
	}
	return m, nil
}

// Observe records one finished operation.
func (m *Operations) Observe(op string, dur time.Duration, failed bool) {
	status := "ok"
	if failed {
		status = "error"
	}
	m.total.WithLabelValues(op, status).Inc()
	m.duration.WithLabelValues(op).Observe(dur.Seconds())
}

// Total returns the counter for op and status. Used by tests.
func (m *Operations) Total(op, status string) prometheus.Counter {
	return m.total.WithLabelValues(op, status)
}
