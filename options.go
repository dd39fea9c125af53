package esdsl

import (
	"net/http"
	"net/url"

	elastictransport "github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl/internal/config"
	"github.com/kailas-cloud/esdsl/internal/pipeline"
	"github.com/kailas-cloud/esdsl/request"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type openAIConfig struct {
	apiKey     string
	baseURL    string
	model      string
	dimensions int
}

type clientConfig struct {
	transport elastictransport.Interface
	cluster   config.ClusterConfig

	headers http.Header
	params  url.Values
	auth    pipeline.Auth

	serializer  request.Serializer
	embedder    Embedder
	openai      *openAIConfig
	instruction string
	opaqueID    bool

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

// WithTransport sends requests through t instead of a go-elasticsearch
// client built from the other options.
func WithTransport(t elastictransport.Interface) Option {
	return optionFunc(func(c *clientConfig) {
		c.transport = t
	})
}

// WithAddresses sets the cluster node URLs.
func WithAddresses(addrs ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.cluster.Addresses = append(c.cluster.Addresses, addrs...)
	})
}

// WithAPIKey authenticates every request with an encoded API key.
func WithAPIKey(key string) Option {
	return optionFunc(func(c *clientConfig) {
		c.auth = pipeline.Auth{APIKey: key}
	})
}

// WithBasicAuth authenticates every request with a username and password.
func WithBasicAuth(username, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.auth = pipeline.Auth{Username: username, Password: password}
	})
}

// WithRequestTimeout bounds the wait for response headers. Ignored with
// WithTransport.
func WithRequestTimeout(sec int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cluster.RequestTimeoutSec = sec
	})
}

// WithRetries configures transport retries. Ignored with WithTransport.
func WithRetries(maxRetries int, onStatus ...int) Option {
	return optionFunc(func(c *clientConfig) {
		c.cluster.MaxRetries = maxRetries
		c.cluster.RetryOnStatus = onStatus
	})
}

// WithCompression gzips request bodies. Ignored with WithTransport.
func WithCompression() Option {
	return optionFunc(func(c *clientConfig) {
		c.cluster.CompressRequestBody = true
	})
}

// WithDefaultHeader adds a header to every request.
func WithDefaultHeader(key, value string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.headers == nil {
			c.headers = http.Header{}
		}
		c.headers.Add(key, value)
	})
}

// WithDefaultParam adds a query parameter to every request.
func WithDefaultParam(key, value string) Option {
	return optionFunc(func(c *clientConfig) {
		if c.params == nil {
			c.params = url.Values{}
		}
		c.params.Add(key, value)
	})
}

// WithSerializer replaces the JSON serializer used for bodies.
func WithSerializer(s request.Serializer) Option {
	return optionFunc(func(c *clientConfig) {
		c.serializer = s
	})
}

// WithEmbedder sets the text embedding provider used by KNN.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithOpenAI embeds KNN text through an OpenAI-compatible API. An empty
// baseURL uses the OpenAI endpoint; dimensions 0 keeps the model default.
func WithOpenAI(apiKey, baseURL, model string, dimensions int) Option {
	return optionFunc(func(c *clientConfig) {
		c.openai = &openAIConfig{apiKey: apiKey, baseURL: baseURL, model: model, dimensions: dimensions}
	})
}

// WithQueryInstruction prepends instruction to every KNN text before it is
// embedded, as asymmetric models expect (for example "query: ").
func WithQueryInstruction(instruction string) Option {
	return optionFunc(func(c *clientConfig) {
		c.instruction = instruction
	})
}

// WithOpaqueID tags every request with a random X-Opaque-Id unless the
// request already carries one.
func WithOpaqueID() Option {
	return optionFunc(func(c *clientConfig) {
		c.opaqueID = true
	})
}

// WithLogger enables structured logging for client operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers client metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}

// CallOption adds headers or params to a single call.
type CallOption func(*pipeline.Options)

// CallHeader adds a header to one call.
func CallHeader(key, value string) CallOption {
	return func(o *pipeline.Options) {
		if o.Headers == nil {
			o.Headers = http.Header{}
		}
		o.Headers.Add(key, value)
	}
}

// CallParam adds a query parameter to one call.
func CallParam(key, value string) CallOption {
	return func(o *pipeline.Options) {
		if o.Params == nil {
			o.Params = url.Values{}
		}
		o.Params.Add(key, value)
	}
}
