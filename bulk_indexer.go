package esdsl

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/esdsl/request"
	"github.com/kailas-cloud/esdsl/response"
)

const (
	defaultChunkSize   = 500
	defaultConcurrency = 4
)

// BulkIndexer splits operations into bulk requests of at most ChunkSize
// items and sends up to Concurrency of them at once.
type BulkIndexer struct {
	client      *Client
	index       string
	chunkSize   int
	concurrency int
	refresh     request.Refresh
}

// BulkIndexerOption configures a BulkIndexer.
type BulkIndexerOption func(*BulkIndexer)

// WithChunkSize sets the number of operations per bulk request.
func WithChunkSize(n int) BulkIndexerOption {
	return func(b *BulkIndexer) {
		if n > 0 {
			b.chunkSize = n
		}
	}
}

// WithConcurrency sets how many bulk requests may be in flight.
func WithConcurrency(n int) BulkIndexerOption {
	return func(b *BulkIndexer) {
		if n > 0 {
			b.concurrency = n
		}
	}
}

// WithRefresh sets the refresh policy of every chunk.
func WithRefresh(r request.Refresh) BulkIndexerOption {
	return func(b *BulkIndexer) { b.refresh = r }
}

// NewBulkIndexer creates a BulkIndexer writing to index by default.
func (c *Client) NewBulkIndexer(index string, opts ...BulkIndexerOption) *BulkIndexer {
	b := &BulkIndexer{
		client:      c,
		index:       index,
		chunkSize:   defaultChunkSize,
		concurrency: defaultConcurrency,
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// BulkSummary aggregates the chunk responses. Items are in operation order.
type BulkSummary struct {
	Chunks    int
	Items     []response.BulkItem
	Succeeded int
	Failed    int
	Duration  time.Duration
}

// Failures returns the rejected items.
func (s *BulkSummary) Failures() []response.BulkItem {
	var out []response.BulkItem
	for _, it := range s.Items {
		if it.Failed() {
			out = append(out, it)
		}
	}
	return out
}

// Run validates every chunk before sending any, then sends them
// concurrently. The first transport or response error cancels the chunks
// still pending and is returned.
func (b *BulkIndexer) Run(ctx context.Context, ops []request.BulkOperation, opts ...CallOption) (*BulkSummary, error) {
	start := time.Now()
	reqs, err := b.chunks(ops)
	if err != nil {
		return nil, err
	}

	results := make([]*response.BulkResponse, len(reqs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.concurrency)
	for i, req := range reqs {
		g.Go(func() error {
			res, err := b.client.Bulk(gctx, req, opts...)
			if err != nil {
				return fmt.Errorf("bulk chunk %d: %w", i, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	summary := &BulkSummary{Chunks: len(reqs), Duration: time.Since(start)}
	for _, res := range results {
		for _, it := range res.Items {
			if it.Failed() {
				summary.Failed++
			} else {
				summary.Succeeded++
			}
			summary.Items = append(summary.Items, it)
		}
	}
	b.client.logger.Debug("bulk indexer finished",
		zap.String("index", b.index),
		zap.Int("chunks", summary.Chunks),
		zap.Int("succeeded", summary.Succeeded),
		zap.Int("failed", summary.Failed),
		zap.Duration("duration", summary.Duration),
	)
	return summary, nil
}

func (b *BulkIndexer) chunks(ops []request.BulkOperation) ([]*request.BulkRequest, error) {
	var reqs []*request.BulkRequest
	for start := 0; start < len(ops); start += b.chunkSize {
		end := min(start+b.chunkSize, len(ops))
		bb := request.NewBulkBuilder(b.index).Add(ops[start:end]...)
		if b.refresh != "" {
			bb.Refresh(b.refresh)
		}
		req, err := bb.Build()
		if err != nil {
			return nil, fmt.Errorf("bulk chunk at %d: %w", start, err)
		}
		reqs = append(reqs, req)
	}
	return reqs, nil
}
