package esdsl

import (
	"context"
	"net/http"

	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/esdsl/request"
	"github.com/kailas-cloud/esdsl/response"
)

// call sends req and decodes a successful body with decode. accept lets a
// helper treat selected non-2xx answers as results.
func call[T any](
	ctx context.Context, c *Client, req request.Request,
	decode func([]byte) (*T, error), accept func(*Response) bool,
	opts []CallOption,
) (*T, error) {
	res, err := c.Do(ctx, req, opts...)
	if err != nil {
		return nil, err
	}
	if res.IsError() && (accept == nil || !accept(res)) {
		return nil, response.ParseError(res.StatusCode, res.Body)
	}
	return decode(res.Body)
}

func (c *Client) Search(ctx context.Context, req *request.SearchRequest, opts ...CallOption) (*response.SearchResponse, error) {
	return call(ctx, c, req, response.DecodeSearch, nil, opts)
}

func (c *Client) Count(ctx context.Context, req *request.CountRequest, opts ...CallOption) (*response.CountResponse, error) {
	return call(ctx, c, req, response.DecodeCount, nil, opts)
}

// Get returns the document. A missing document is a response with Found
// false, not an error; a missing index is an error.
func (c *Client) Get(ctx context.Context, req *request.GetRequest, opts ...CallOption) (*response.GetResponse, error) {
	return call(ctx, c, req, response.DecodeGet, func(r *Response) bool {
		return r.StatusCode == http.StatusNotFound && gjson.GetBytes(r.Body, "found").Exists()
	}, opts)
}

func (c *Client) Index(ctx context.Context, req *request.IndexRequest, opts ...CallOption) (*response.WriteResponse, error) {
	return call(ctx, c, req, response.DecodeWrite, nil, opts)
}

// Delete removes a document. Deleting a missing document returns Result
// "not_found" without an error.
func (c *Client) Delete(ctx context.Context, req *request.DeleteRequest, opts ...CallOption) (*response.WriteResponse, error) {
	return call(ctx, c, req, response.DecodeWrite, func(r *Response) bool {
		return r.StatusCode == http.StatusNotFound && gjson.GetBytes(r.Body, "result").String() == "not_found"
	}, opts)
}

func (c *Client) Update(ctx context.Context, req *request.UpdateRequest, opts ...CallOption) (*response.WriteResponse, error) {
	return call(ctx, c, req, response.DecodeWrite, nil, opts)
}

// Bulk sends a bulk request. Item failures are reported in the response,
// not as an error.
func (c *Client) Bulk(ctx context.Context, req *request.BulkRequest, opts ...CallOption) (*response.BulkResponse, error) {
	return call(ctx, c, req, response.DecodeBulk, nil, opts)
}

func (c *Client) RankEval(ctx context.Context, req *request.RankEvalRequest, opts ...CallOption) (*response.RankEvalResponse, error) {
	return call(ctx, c, req, response.DecodeRankEval, nil, opts)
}

func (c *Client) Reindex(ctx context.Context, req *request.ReindexRequest, opts ...CallOption) (*response.ByQueryResponse, error) {
	return call(ctx, c, req, response.DecodeByQuery, nil, opts)
}

func (c *Client) DeleteByQuery(ctx context.Context, req *request.DeleteByQueryRequest, opts ...CallOption) (*response.ByQueryResponse, error) {
	return call(ctx, c, req, response.DecodeByQuery, nil, opts)
}

func (c *Client) UpdateByQuery(ctx context.Context, req *request.UpdateByQueryRequest, opts ...CallOption) (*response.ByQueryResponse, error) {
	return call(ctx, c, req, response.DecodeByQuery, nil, opts)
}

func (c *Client) CreateIndex(ctx context.Context, req *request.CreateIndexRequest, opts ...CallOption) (*response.AcknowledgedResponse, error) {
	return call(ctx, c, req, response.DecodeAcknowledged, nil, opts)
}

func (c *Client) DeleteIndex(ctx context.Context, req *request.DeleteIndexRequest, opts ...CallOption) (*response.AcknowledgedResponse, error) {
	return call(ctx, c, req, response.DecodeAcknowledged, nil, opts)
}

// IndexExists reports whether every named index exists.
func (c *Client) IndexExists(ctx context.Context, req *request.IndexExistsRequest, opts ...CallOption) (bool, error) {
	res, err := c.Do(ctx, req, opts...)
	if err != nil {
		return false, err
	}
	switch {
	case res.StatusCode == http.StatusNotFound:
		return false, nil
	case res.IsError():
		return false, response.ParseError(res.StatusCode, res.Body)
	}
	return true, nil
}
