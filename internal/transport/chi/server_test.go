package chi

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/esdsl/query"
	"github.com/kailas-cloud/esdsl/rankeval"
	"github.com/kailas-cloud/esdsl/request"
	"github.com/kailas-cloud/esdsl/response"
)

func newTestServer(t *testing.T, opts Options) *Server {
	t.Helper()
	s, err := NewServer(opts)
	require.NoError(t, err)
	return s
}

func do(t *testing.T, h http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader = http.NoBody
	if body != "" {
		rd = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rd)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestServer_DocumentLifecycle(t *testing.T) {
	s := newTestServer(t, Options{})

	rr := do(t, s, http.MethodPut, "/books/_doc/1", `{"title":"Dune","year":1965}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	assert.Equal(t, "Elasticsearch", rr.Header().Get("X-Elastic-Product"))
	w, err := response.DecodeWrite(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "created", w.Result)

	rr = do(t, s, http.MethodPost, "/books/_update/1", `{"doc":{"year":1966}}`)
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, s, http.MethodGet, "/books/_doc/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	g, err := response.DecodeGet(rr.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, g.Found)
	assert.Equal(t, int64(2), g.Version)
	var doc struct {
		Title string `json:"title"`
		Year  int    `json:"year"`
	}
	require.NoError(t, g.DecodeSource(&doc))
	assert.Equal(t, "Dune", doc.Title)
	assert.Equal(t, 1966, doc.Year)

	rr = do(t, s, http.MethodDelete, "/books/_doc/1", "")
	require.Equal(t, http.StatusOK, rr.Code)

	rr = do(t, s, http.MethodGet, "/books/_doc/1", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Contains(t, rr.Body.String(), `"found":false`)
}

func TestServer_CreateConflictAndMissingUpdate(t *testing.T) {
	s := newTestServer(t, Options{})

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/books/_create/1", `{"a":1}`).Code)

	rr := do(t, s, http.MethodPut, "/books/_create/1", `{"a":2}`)
	require.Equal(t, http.StatusConflict, rr.Code)
	e := response.ParseError(rr.Code, rr.Body.Bytes())
	assert.Equal(t, "version_conflict_engine_exception", e.Cause.Type)

	rr = do(t, s, http.MethodPost, "/books/_update/2", `{"doc":{"a":1}}`)
	require.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, "document_missing_exception", response.ParseError(rr.Code, rr.Body.Bytes()).Cause.Type)

	rr = do(t, s, http.MethodPost, "/books/_update/2", `{"doc":{"a":1},"doc_as_upsert":true}`)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestServer_UpdateUpsertAndScript(t *testing.T) {
	s := newTestServer(t, Options{})

	rr := do(t, s, http.MethodPost, "/books/_update/1", `{"doc":{"a":2},"upsert":{"a":1}}`)
	require.Equal(t, http.StatusCreated, rr.Code)

	rr = do(t, s, http.MethodPost, "/books/_update/1", `{"script":"ctx._source.a += 1"}`)
	require.Equal(t, http.StatusOK, rr.Code)
	w, err := response.DecodeWrite(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "noop", w.Result)

	rr = do(t, s, http.MethodGet, "/books/_doc/1", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"_source":{"a":1}`)

	rr = do(t, s, http.MethodPost, "/books/_update/1", `{"doc":{"a":`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_EscapedID(t *testing.T) {
	s := newTestServer(t, Options{})

	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/books/_doc/a%2Fb", `{"a":1}`).Code)

	rr := do(t, s, http.MethodGet, "/books/_doc/a%2Fb", "")
	require.Equal(t, http.StatusOK, rr.Code)
	g, err := response.DecodeGet(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, "a/b", g.ID)
}

func TestServer_Bulk(t *testing.T) {
	s := newTestServer(t, Options{})

	req, err := request.NewBulkBuilder("books").
		Index("", "1", map[string]any{"title": "Dune"}).
		Create("", "2", map[string]any{"title": "Emma"}).
		Create("", "2", map[string]any{"title": "Emma again"}).
		Update("", "1", request.UpdateBody{Doc: map[string]any{"year": 1965}}).
		Delete("", "3").
		Build()
	require.NoError(t, err)
	body, err := req.Body(request.JSONSerializer{})
	require.NoError(t, err)

	rr := do(t, s, http.MethodPost, "/books/_bulk", string(body))
	require.Equal(t, http.StatusOK, rr.Code)

	res, err := response.DecodeBulk(rr.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, res.Errors)
	require.Len(t, res.Items, 5)

	assert.Equal(t, request.OpIndex, res.Items[0].Operation)
	assert.Equal(t, 201, res.Items[0].Status)
	assert.Equal(t, 409, res.Items[2].Status)
	assert.Equal(t, request.OpUpdate, res.Items[3].Operation)
	assert.Equal(t, "updated", res.Items[3].Result)
	assert.Equal(t, 404, res.Items[4].Status)
	assert.Equal(t, "not_found", res.Items[4].Result)

	failures := res.Failures()
	require.Len(t, failures, 2)
	require.NotNil(t, failures[0].Error)
	assert.Equal(t, "version_conflict_engine_exception", failures[0].Error.Type)
	assert.Nil(t, failures[1].Error)
}

func TestServer_BulkWithoutIndex(t *testing.T) {
	s := newTestServer(t, Options{})

	rr := do(t, s, http.MethodPost, "/_bulk", "{\"delete\":{\"_id\":\"1\"}}\n")
	require.Equal(t, http.StatusOK, rr.Code)
	res, err := response.DecodeBulk(rr.Body.Bytes())
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	assert.Equal(t, 400, res.Items[0].Status)

	rr = do(t, s, http.MethodPost, "/_bulk", "{\"upsert\":{\"_id\":\"1\"}}\n")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestServer_SearchReturnsEveryDocument(t *testing.T) {
	s := newTestServer(t, Options{})
	for _, id := range []string{"1", "2", "3"} {
		require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/books/_doc/"+id, `{"id":"`+id+`"}`).Code)
	}

	req, err := request.NewSearchBuilder("books").Query(query.Term("id", "2")).From(1).Size(1).Build()
	require.NoError(t, err)
	body, err := req.Body(request.JSONSerializer{})
	require.NoError(t, err)

	rr := do(t, s, http.MethodPost, "/books/_search", string(body))
	require.Equal(t, http.StatusOK, rr.Code)
	res, err := response.DecodeSearch(rr.Body.Bytes())
	require.NoError(t, err)
	require.NotNil(t, res.Hits.Total)
	assert.Equal(t, int64(3), res.Hits.Total.Value)
	require.Len(t, res.Hits.Hits, 1)
	assert.Equal(t, "2", res.Hits.Hits[0].ID)

	rr = do(t, s, http.MethodGet, "/books/_count", "")
	require.Equal(t, http.StatusOK, rr.Code)
	c, err := response.DecodeCount(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, int64(3), c.Count)

	rr = do(t, s, http.MethodGet, "/missing/_search", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestServer_Indices(t *testing.T) {
	s := newTestServer(t, Options{})

	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodHead, "/books", "").Code)

	req, err := request.NewCreateIndexBuilder("books").
		Property("title", map[string]any{"type": "text"}).
		Build()
	require.NoError(t, err)
	body, err := req.Body(request.JSONSerializer{})
	require.NoError(t, err)

	rr := do(t, s, http.MethodPut, "/books", string(body))
	require.Equal(t, http.StatusOK, rr.Code)
	ack, err := response.DecodeAcknowledged(rr.Body.Bytes())
	require.NoError(t, err)
	assert.True(t, ack.Acknowledged)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodHead, "/books", "").Code)

	rr = do(t, s, http.MethodPut, "/books", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "resource_already_exists_exception", response.ParseError(rr.Code, rr.Body.Bytes()).Cause.Type)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodDelete, "/books", "").Code)
	assert.Equal(t, http.StatusNotFound, do(t, s, http.MethodDelete, "/books", "").Code)
}

func TestServer_RankEvalEchoesMetric(t *testing.T) {
	s := newTestServer(t, Options{})

	rr1, err := rankeval.NewRatedRequestBuilder().ID("q1").Query(query.MatchAll()).Rate("books", "1", 1).Build()
	require.NoError(t, err)
	req, err := request.NewRankEvalBuilder("books").
		Request(rr1).
		Metric(&rankeval.Recall{}).
		Build()
	require.NoError(t, err)
	body, err := req.Body(request.JSONSerializer{})
	require.NoError(t, err)

	rr := do(t, s, http.MethodPost, "/books/_rank_eval", string(body))
	require.Equal(t, http.StatusOK, rr.Code)

	res, err := response.DecodeRankEval(rr.Body.Bytes())
	require.NoError(t, err)
	q, ok := res.Detail("q1")
	require.True(t, ok)
	assert.True(t, rankeval.EqualDetail(&rankeval.RecallDetail{}, q.MetricDetails))
}

func TestServer_Reindex(t *testing.T) {
	s := newTestServer(t, Options{})
	require.Equal(t, http.StatusCreated, do(t, s, http.MethodPut, "/books/_doc/1", `{"a":1}`).Code)

	req, err := request.NewReindexBuilder().Source("books").Dest("archive").Build()
	require.NoError(t, err)
	body, err := req.Body(request.JSONSerializer{})
	require.NoError(t, err)

	rr := do(t, s, http.MethodPost, "/_reindex", string(body))
	require.Equal(t, http.StatusOK, rr.Code)
	res, err := response.DecodeByQuery(rr.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.Created)

	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/archive/_doc/1", "").Code)

	rr = do(t, s, http.MethodPost, "/books/_delete_by_query", `{"query":{"match_all":{}}}`)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestServer_APIKeyAuth(t *testing.T) {
	s := newTestServer(t, Options{APIKeys: []string{"secret"}})

	rr := do(t, s, http.MethodGet, "/", "")
	require.Equal(t, http.StatusUnauthorized, rr.Code)
	assert.Equal(t, "security_exception", response.ParseError(rr.Code, rr.Body.Bytes()).Cause.Type)

	for _, header := range []string{"Bearer secret", "ApiKey wrong"} {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set("Authorization", header)
		rr = httptest.NewRecorder()
		s.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusUnauthorized, rr.Code, header)
	}

	for _, header := range []string{"ApiKey secret", "APIKey secret"} {
		req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
		req.Header.Set("Authorization", header)
		rr = httptest.NewRecorder()
		s.ServeHTTP(rr, req)
		assert.Equal(t, http.StatusOK, rr.Code, header)
	}
}

func TestServer_RecordsRequests(t *testing.T) {
	s := newTestServer(t, Options{})

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte(`{"a":1}`))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	req := httptest.NewRequest(http.MethodPut, "/books/_doc/1?refresh=true", &buf)
	req.Header.Set("Content-Encoding", "gzip")
	req.Header.Set("X-Opaque-Id", "trace-1")
	rr := httptest.NewRecorder()
	s.ServeHTTP(rr, req)
	require.Equal(t, http.StatusCreated, rr.Code)

	recs := s.Requests()
	require.Len(t, recs, 1)
	assert.Equal(t, http.MethodPut, recs[0].Method)
	assert.Equal(t, "/books/_doc/1", recs[0].Path)
	assert.Equal(t, "refresh=true", recs[0].RawQuery)
	assert.Equal(t, `{"a":1}`, string(recs[0].Body))
	assert.Equal(t, "trace-1", recs[0].Header.Get("X-Opaque-Id"))

	s.Reset()
	assert.Empty(t, s.Requests())
}

func TestServer_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	s := newTestServer(t, Options{Registerer: reg, Gatherer: reg})

	do(t, s, http.MethodPut, "/books/_doc/1", `{"a":1}`)
	do(t, s, http.MethodGet, "/books/_doc/1", "")

	n, err := testutil.GatherAndCount(reg, "esdsl_stub_http_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rr := do(t, s, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `path="/{index}/_doc/{id}"`)
}
