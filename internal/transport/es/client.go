// Package es builds the go-elasticsearch client used as the default transport.
package es

import (
	"fmt"
	"net/http"
	"time"

	elastictransport "github.com/elastic/elastic-transport-go/v8/elastictransport"
	elasticsearch "github.com/elastic/go-elasticsearch/v9"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl/internal/config"
)

// Option customizes client construction.
type Option func(*options)

type options struct {
	transport http.RoundTripper
	logger    *zap.Logger
}

// WithHTTPTransport replaces the HTTP round tripper. Used by tests and by
// callers that need custom TLS.
func WithHTTPTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithLogger logs every round trip at debug level and failures at warn.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// New creates a go-elasticsearch client from cluster configuration.
// The returned client satisfies elastictransport.Interface.
func New(cfg config.ClusterConfig, opts ...Option) (*elasticsearch.Client, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	rt := o.transport
	if rt == nil {
		t := http.DefaultTransport.(*http.Transport).Clone()
		if cfg.RequestTimeoutSec > 0 {
			t.ResponseHeaderTimeout = time.Duration(cfg.RequestTimeoutSec) * time.Second
		}
		rt = t
	}

	esConfig := elasticsearch.Config{
		Addresses:           cfg.Addresses,
		Username:            cfg.Username,
		Password:            cfg.Password,
		APIKey:              cfg.APIKey,
		MaxRetries:          cfg.MaxRetries,
		RetryOnStatus:       cfg.RetryOnStatus,
		DisableRetry:        cfg.MaxRetries == 0,
		CompressRequestBody: cfg.CompressRequestBody,
		Transport:           rt,
	}
	if o.logger != nil {
		esConfig.Logger = &zapLogger{l: o.logger}
	}

	client, err := elasticsearch.NewClient(esConfig)
	if err != nil {
		return nil, fmt.Errorf("elasticsearch create client: %w", err)
	}
	return client, nil
}

var _ elastictransport.Interface = (*elasticsearch.Client)(nil)

// zapLogger adapts zap to elastictransport.Logger.
type zapLogger struct {
	l *zap.Logger
}

func (z *zapLogger) LogRoundTrip(
	req *http.Request, res *http.Response, err error, _ time.Time, dur time.Duration,
) error {
	fields := []zap.Field{
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Duration("duration", dur),
	}
	if res != nil {
		fields = append(fields, zap.Int("status", res.StatusCode))
	}
	if err != nil {
		z.l.Warn("elasticsearch round trip failed", append(fields, zap.Error(err))...)
		return nil
	}
	z.l.Debug("elasticsearch round trip", fields...)
	return nil
}

func (*zapLogger) RequestBodyEnabled() bool  { return false }
func (*zapLogger) ResponseBodyEnabled() bool { return false }
