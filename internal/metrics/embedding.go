package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Embedding holds the embedding provider collectors.
type Embedding struct {
	Requests *prometheus.CounterVec
	Duration *prometheus.HistogramVec
	Tokens   *prometheus.CounterVec
	Errors   *prometheus.CounterVec
}

// NewEmbedding registers the embedding collectors on reg.
func NewEmbedding(reg prometheus.Registerer) (*Embedding, error) {
	m := &Embedding{
		Requests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_requests_total",
				Help:      "Total number of embedding requests",
			},
			[]string{"model", "status"},
		),
		Duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "embedding_request_duration_seconds",
				Help:      "Embedding request duration in seconds",
				Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			[]string{"model"},
		),
		Tokens: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_tokens_total",
				Help:      "Total embedding tokens consumed",
			},
			[]string{"model"},
		),
		Errors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "embedding_errors_total",
				Help:      "Total embedding errors",
			},
			[]string{"model", "error_type"},
		),
	}
	if err := RegisterOrReuse(reg, &m.Requests); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Duration); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Tokens); err != nil {
		return nil, err
	}
	if err := RegisterOrReuse(reg, &m.Errors); err != nil {
		return nil, err
	}
	return m, nil
}

// ObserveSuccess records a completed embedding call.
func (m *Embedding) ObserveSuccess(model string, dur time.Duration, tokens int) {
	m.Requests.WithLabelValues(model, "ok").Inc()
	m.Duration.WithLabelValues(model).Observe(dur.Seconds())
	m.Tokens.WithLabelValues(model).Add(float64(tokens))
}

// ObserveError records a failed embedding call.
func (m *Embedding) ObserveError(model, errorType string, dur time.Duration) {
	m.Requests.WithLabelValues(model, "error").Inc()
	m.Duration.WithLabelValues(model).Observe(dur.Seconds())
	m.Errors.WithLabelValues(model, errorType).Inc()
}
