package esdsl

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl/internal/metrics"
)

// observer provides logging and metrics for client operations.
type observer struct {
	logger  *zap.Logger
	metrics *metrics.Operations
}

func newObserver(logger *zap.Logger, reg prometheus.Registerer) (*observer, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	o := &observer{logger: logger}
	if reg != nil {
		m, err := metrics.NewOperations(reg)
		if err != nil {
			return nil, err
		}
		o.metrics = m
	}
	return o, nil
}

// observe records one call. A response with status 400 or above counts as
// failed unless the request was a HEAD probe, where 404 is an answer.
func (o *observer) observe(op, method string, status int, start time.Time, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	failed := err != nil || (status >= 400 && method != "HEAD")

	if o.metrics != nil {
		o.metrics.Observe(op, dur, failed)
	}

	switch {
	case err != nil:
		o.logger.Warn("operation failed",
			zap.String("op", op),
			zap.Duration("duration", dur),
			zap.Error(err),
		)
	case failed:
		o.logger.Warn("operation rejected",
			zap.String("op", op),
			zap.Int("status", status),
			zap.Duration("duration", dur),
		)
	default:
		o.logger.Debug("operation completed",
			zap.String("op", op),
			zap.Int("status", status),
			zap.Duration("duration", dur),
		)
	}
}
