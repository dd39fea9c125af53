package esdsl

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl/query"
)

// embedTimeout bounds a shared embedding call, which outlives the caller that
// started it.
const embedTimeout = 30 * time.Second

// KNN embeds text with the configured embedder and returns a kNN query on
// field. It fails with ErrEmbedderNotConfigured when the client has none.
// Concurrent calls for the same text share one embedding request; each caller
// still returns as soon as its own ctx is done.
func (c *Client) KNN(ctx context.Context, field, text string, k, numCandidates int) (*query.KNNQuery, error) {
	if c.embedder == nil {
		return nil, ErrEmbedderNotConfigured
	}
	ch := c.embeds.DoChan(text, func() (any, error) {
		embedCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), embedTimeout)
		defer cancel()
		return c.embedder.Embed(embedCtx, text)
	})
	var res EmbeddingResult
	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("embed %q: %w", field, ctx.Err())
	case r := <-ch:
		if r.Err != nil {
			return nil, fmt.Errorf("embed %q: %w", field, r.Err)
		}
		res = r.Val.(EmbeddingResult)
	}
	c.logger.Debug("knn query embedded",
		zap.String("field", field),
		zap.Int("dims", len(res.Embedding)),
	)
	return query.NewKNNBuilder().
		Field(field).
		QueryVector(res.Embedding).
		K(k).
		NumCandidates(numCandidates).
		Build()
}
