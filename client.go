package esdsl

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	elastictransport "github.com/elastic/elastic-transport-go/v8/elastictransport"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/internal/metrics"
	"github.com/kailas-cloud/esdsl/internal/pipeline"
	"github.com/kailas-cloud/esdsl/internal/transport/es"
	"github.com/kailas-cloud/esdsl/internal/transport/openai"
	"github.com/kailas-cloud/esdsl/request"
)

const defaultAddress = "http://localhost:9200"

// Client assembles request values and sends them through a transport.
// It is safe for concurrent use.
type Client struct {
	transport  elastictransport.Interface
	settings   pipeline.Settings
	serializer request.Serializer
	embedder   Embedder
	embeds     singleflight.Group
	opaqueID   bool
	logger     *zap.Logger
	obs        *observer
}

// New creates a Client. Without WithTransport it builds a go-elasticsearch
// client for the configured addresses, http://localhost:9200 by default.
func New(opts ...Option) (*Client, error) {
	cfg := &clientConfig{}
	for _, o := range opts {
		o.apply(cfg)
	}

	logger := cfg.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	obs, err := newObserver(logger, cfg.metricsReg)
	if err != nil {
		return nil, fmt.Errorf("esdsl: init metrics: %w", err)
	}

	transport := cfg.transport
	if transport == nil {
		cluster := cfg.cluster
		if len(cluster.Addresses) == 0 {
			cluster.Addresses = []string{defaultAddress}
		}
		transport, err = es.New(cluster, es.WithLogger(logger))
		if err != nil {
			return nil, fmt.Errorf("esdsl: %w", err)
		}
	}

	embedder := cfg.embedder
	if embedder == nil && cfg.openai != nil {
		var em *metrics.Embedding
		if cfg.metricsReg != nil {
			if em, err = metrics.NewEmbedding(cfg.metricsReg); err != nil {
				return nil, fmt.Errorf("esdsl: init embedding metrics: %w", err)
			}
		}
		embedder = openai.NewEmbedder(&openai.Config{
			APIKey:     cfg.openai.apiKey,
			BaseURL:    cfg.openai.baseURL,
			Model:      cfg.openai.model,
			Dimensions: cfg.openai.dimensions,
			Metrics:    em,
			Logger:     logger,
		})
	}
	if embedder != nil && cfg.instruction != "" {
		embedder = domain.NewInstructionEmbedder(embedder, cfg.instruction)
	}

	return &Client{
		transport: transport,
		settings: pipeline.Settings{
			Headers: cfg.headers,
			Params:  cfg.params,
			Auth:    cfg.auth,
		},
		serializer: cfg.serializer,
		embedder:   embedder,
		opaqueID:   cfg.opaqueID,
		logger:     logger,
		obs:        obs,
	}, nil
}

// Response is a raw cluster response with its body fully read.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// IsError reports a status of 400 or above.
func (r *Response) IsError() bool { return r.StatusCode >= 400 }

// Render assembles req without sending it.
func (c *Client) Render(req request.Request, opts ...CallOption) (*pipeline.TransportRequest, error) {
	return pipeline.Assemble(req, c.settings, callOptions(opts), c.serializer)
}

// Do assembles req, sends it and reads the whole response. A non-2xx status
// is not an error here; the typed helpers turn it into a *ResponseError.
func (c *Client) Do(ctx context.Context, req request.Request, opts ...CallOption) (*Response, error) {
	start := time.Now()
	res, err := c.do(ctx, req, opts)
	status := 0
	if res != nil {
		status = res.StatusCode
	}
	c.obs.observe(opName(req), req.Method(), status, start, err)
	return res, err
}

// Execute runs req on its own goroutine and calls done exactly once with the
// outcome. Cancellation goes through ctx.
func (c *Client) Execute(ctx context.Context, req request.Request, done func(*Response, error), opts ...CallOption) {
	go func() {
		done(c.Do(ctx, req, opts...))
	}()
}

func (c *Client) do(ctx context.Context, req request.Request, opts []CallOption) (*Response, error) {
	tr, err := c.Render(req, opts...)
	if err != nil {
		return nil, err
	}
	hr, err := tr.HTTPRequest(ctx)
	if err != nil {
		return nil, err
	}
	if c.opaqueID && hr.Header.Get("X-Opaque-Id") == "" {
		hr.Header.Set("X-Opaque-Id", uuid.NewString())
	}

	resp, err := c.transport.Perform(hr)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", req, err)
	}
	defer resp.Body.Close() //nolint:errcheck // read-only body

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", req, err)
	}
	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: body}, nil
}

func callOptions(opts []CallOption) pipeline.Options {
	var o pipeline.Options
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// opName labels req in logs and metrics.
func opName(req request.Request) string {
	switch req.(type) {
	case *request.SearchRequest:
		return "search"
	case *request.CountRequest:
		return "count"
	case *request.GetRequest:
		return "get"
	case *request.IndexRequest:
		return "index"
	case *request.DeleteRequest:
		return "delete"
	case *request.UpdateRequest:
		return "update"
	case *request.BulkRequest:
		return "bulk"
	case *request.ReindexRequest:
		return "reindex"
	case *request.DeleteByQueryRequest:
		return "delete_by_query"
	case *request.UpdateByQueryRequest:
		return "update_by_query"
	case *request.RankEvalRequest:
		return "rank_eval"
	case *request.CreateIndexRequest:
		return "create_index"
	case *request.DeleteIndexRequest:
		return "delete_index"
	case *request.IndexExistsRequest:
		return "index_exists"
	default:
		return "other"
	}
}
