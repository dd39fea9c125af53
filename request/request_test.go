package request

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/query"
	"github.com/kailas-cloud/esdsl/rankeval"
	"github.com/kailas-cloud/esdsl/suggest"
)

var js = JSONSerializer{}

func body(t *testing.T, r Request) string {
	t.Helper()
	b, err := r.Body(js)
	require.NoError(t, err)
	return string(b)
}

func TestSearch_Body(t *testing.T) {
	r, err := NewSearchBuilder("books").
		Query(query.Term("genre", "scifi")).
		From(0).
		Size(10).
		Sort("year", SortDesc).
		Sort("title", "").
		Source("title", "year").
		Build()
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, r.Method())
	assert.Equal(t, "/books/_search", r.Endpoint())
	assert.Equal(t, "POST /books/_search", r.String())
	assert.Equal(t,
		`{"query":{"term":{"genre":"scifi"}},"from":0,"size":10,"sort":[{"year":{"order":"desc"}},"title"],"_source":["title","year"]}`,
		body(t, r))
}

func TestSearch_NoBody(t *testing.T) {
	r, err := NewSearchBuilder("a", "b").Build()
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, r.Method())
	assert.Equal(t, "/a,b/_search", r.Endpoint())

	_, err = r.Body(js)
	assert.ErrorIs(t, err, ErrNoBody)

	all, err := NewSearchBuilder().Build()
	require.NoError(t, err)
	assert.Equal(t, "/_search", all.Endpoint())
}

func TestSearch_KNNAndSuggest(t *testing.T) {
	sg, err := suggest.NewSuggesterBuilder().
		Add("fix", &suggest.TermSuggestion{Input: suggest.Input{Text: ptr("tring")}, Field: "message"}).
		Build()
	require.NoError(t, err)

	r, err := NewSearchBuilder("docs").
		KNN(&query.KNNQuery{Field: "vec", QueryVector: []float32{1, 2}, K: ptr(3)}).
		Suggest(sg).
		Build()
	require.NoError(t, err)
	assert.Equal(t,
		`{"knn":{"field":"vec","query_vector":[1,2],"k":3},"suggest":{"fix":{"term":{"field":"message"},"text":"tring"}}}`,
		body(t, r))

	_, err = NewSearchBuilder("docs").KNN(nil).Build()
	var missing *domain.MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "knn[0]", missing.Field)
}

func TestCount(t *testing.T) {
	r, err := NewCountBuilder("books").Query(query.MatchAll()).Build()
	require.NoError(t, err)
	assert.Equal(t, "/books/_count", r.Endpoint())
	assert.Equal(t, `{"query":{"match_all":{}}}`, body(t, r))

	bare, err := NewCountBuilder("books").Build()
	require.NoError(t, err)
	assert.Equal(t, http.MethodGet, bare.Method())
	_, err = bare.Body(js)
	assert.ErrorIs(t, err, ErrNoBody)
}

func TestDocumentRequests(t *testing.T) {
	get, err := NewGetBuilder("books", "a/b c").Routing("r1").Build()
	require.NoError(t, err)
	assert.Equal(t, "/books/_doc/a%2Fb%20c", get.Endpoint())
	assert.Equal(t, "r1", get.Params().Get("routing"))
	_, err = get.Body(js)
	assert.ErrorIs(t, err, ErrNoBody)

	auto, err := NewIndexBuilder("books").Document(map[string]any{"title": "Dune"}).Build()
	require.NoError(t, err)
	assert.Equal(t, "POST /books/_doc", auto.String())
	assert.Equal(t, `{"title":"Dune"}`, body(t, auto))

	put, err := NewIndexBuilder("books").ID("1").Document(map[string]any{"title": "Dune"}).Refresh(RefreshWaitFor).Build()
	require.NoError(t, err)
	assert.Equal(t, "PUT /books/_doc/1", put.String())
	assert.Equal(t, "wait_for", put.Params().Get("refresh"))

	create, err := NewIndexBuilder("books").ID("1").Create().Document(map[string]any{}).Build()
	require.NoError(t, err)
	assert.Equal(t, "PUT /books/_create/1", create.String())

	del, err := NewDeleteBuilder("books", "1").Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE /books/_doc/1", del.String())

	upd, err := NewUpdateBuilder("books", "1").
		Script(query.InlineScript("ctx._source.n += 1")).
		Upsert(map[string]any{"n": 0}).
		RetryOnConflict(3).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "POST /books/_update/1", upd.String())
	assert.Equal(t, "3", upd.Params().Get("retry_on_conflict"))
	assert.Equal(t, `{"script":"ctx._source.n += 1","upsert":{"n":0}}`, body(t, upd))
}

func TestBuilderValidation(t *testing.T) {
	var missing *domain.MissingRequiredFieldError
	var alo *domain.AtLeastOneFieldRequiredError
	var empty *domain.AtLeastOneElementRequiredError
	var invalid *domain.InvalidFieldError

	_, err := NewGetBuilder("books", "").Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "id", missing.Field)

	_, err = NewIndexBuilder("books").Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "document", missing.Field)

	_, err = NewIndexBuilder("books").Create().Document(map[string]any{}).Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "id", missing.Field)

	_, err = NewUpdateBuilder("books", "1").Build()
	require.ErrorAs(t, err, &alo)
	assert.Equal(t, []string{"doc", "script"}, alo.Fields)

	_, err = NewBulkBuilder("books").Build()
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "operations", empty.Field)

	_, err = NewBulkBuilder("").Index("", "1", map[string]any{}).Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "operations[0]._index", missing.Field)

	_, err = NewBulkBuilder("books").Delete("", "").Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "operations[0]._id", missing.Field)

	_, err = NewDeleteByQueryBuilder().Query(query.MatchAll()).Build()
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "index", empty.Field)

	_, err = NewDeleteByQueryBuilder("books").Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "query", missing.Field)

	_, err = NewReindexBuilder().Source("old").Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "dest.index", missing.Field)

	_, err = NewRankEvalBuilder("books").Build()
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "requests", empty.Field)

	_, err = NewSearchBuilder("books", "").Build()
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "index[1]", invalid.Field)

	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestBulk_Body(t *testing.T) {
	r, err := NewBulkBuilder("books").
		Index("", "1", map[string]any{"title": "Dune"}).
		Delete("", "2").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "POST /books/_bulk", r.String())
	assert.Equal(t,
		"{\"index\":{\"_id\":\"1\"}}\n{\"title\":\"Dune\"}\n{\"delete\":{\"_id\":\"2\"}}\n",
		body(t, r))
}

func TestBulk_ParseRoundTrip(t *testing.T) {
	ops := []BulkOperation{
		&IndexOperation{Meta: Meta{Index: "books", ID: "1"}, Document: map[string]any{"title": "Dune"}},
		&CreateOperation{Meta: Meta{Index: "books", ID: "2", Routing: ptr("r")}, Document: map[string]any{"n": 1.0}},
		&UpdateOperation{Meta: Meta{Index: "books", ID: "3"}, RetryOnConflict: ptr(2), Body: UpdateBody{Doc: map[string]any{"n": 2.0}}},
		&DeleteOperation{Meta: Meta{Index: "books", ID: "4"}},
	}
	data, err := EncodeBulk(js, ops)
	require.NoError(t, err)

	got, err := ParseBulk(data)
	require.NoError(t, err)
	require.Len(t, got, len(ops))
	for i := range ops {
		assert.True(t, EqualOperation(ops[i], got[i]), "item %d", i)
	}
}

func TestBulk_ParseErrors(t *testing.T) {
	_, err := ParseBulk([]byte("{\"index\":{\"_id\":\"1\"}}\n"))
	var missing *domain.MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "source", missing.Field)

	_, err = ParseBulk([]byte("{\"upsert\":{}}\n"))
	assert.Error(t, err)
}

func TestEqualOperation_UserDocuments(t *testing.T) {
	type book struct {
		Title string
		rank  int
	}
	a := &IndexOperation{Meta: Meta{ID: "1"}, Document: book{Title: "Dune", rank: 1}}
	same := &IndexOperation{Meta: Meta{ID: "1"}, Document: book{Title: "Dune", rank: 1}}
	other := &IndexOperation{Meta: Meta{ID: "1"}, Document: book{Title: "Dune", rank: 2}}

	assert.NotPanics(t, func() {
		assert.True(t, EqualOperation(a, same))
		assert.False(t, EqualOperation(a, other))
	})
}

func TestOperationRegistryTotal(t *testing.T) {
	for _, tag := range AllOperationTypes() {
		_, err := OperationRegistry().MetaType(string(tag))
		assert.NoError(t, err, tag)
	}
	assert.Len(t, OperationRegistry().Tags(), len(AllOperationTypes()))
}

func TestByQueryRequests(t *testing.T) {
	re, err := NewReindexBuilder().Source("old").Dest("new").Conflicts(ConflictsProceed).Build()
	require.NoError(t, err)
	assert.Equal(t, "POST /_reindex", re.String())
	assert.Equal(t, `{"conflicts":"proceed","source":{"index":["old"]},"dest":{"index":"new"}}`, body(t, re))

	dbq, err := NewDeleteByQueryBuilder("a", "b").Query(query.Term("user", "kimchy")).Conflicts(ConflictsProceed).Build()
	require.NoError(t, err)
	assert.Equal(t, "POST /a,b/_delete_by_query", dbq.String())
	assert.Equal(t, "proceed", dbq.Params().Get("conflicts"))
	assert.Equal(t, `{"query":{"term":{"user":"kimchy"}}}`, body(t, dbq))

	ubq, err := NewUpdateByQueryBuilder("books").Build()
	require.NoError(t, err)
	_, err = ubq.Body(js)
	assert.ErrorIs(t, err, ErrNoBody)
}

func TestRankEval_Body(t *testing.T) {
	rr, err := rankeval.NewRatedRequestBuilder().
		ID("q1").
		Query(query.Match("text", "amsterdam")).
		Rate("books", "1", 3).
		Build()
	require.NoError(t, err)

	r, err := NewRankEvalBuilder("books").Request(rr).Metric(&rankeval.Recall{}).Build()
	require.NoError(t, err)
	assert.Equal(t, "POST /books/_rank_eval", r.String())

	b, err := r.Body(js)
	require.NoError(t, err)
	e, err := rankeval.UnmarshalEvaluation(b)
	require.NoError(t, err)
	require.Len(t, e.Requests, 1)
	assert.True(t, rr.IsEqualTo(e.Requests[0]))
	assert.True(t, rankeval.EqualMetric(&rankeval.Recall{}, e.Metric))
}

func TestIndexRequests(t *testing.T) {
	ci, err := NewCreateIndexBuilder("books").Property("title", map[string]any{"type": "text"}).Build()
	require.NoError(t, err)
	assert.Equal(t, "PUT /books", ci.String())
	assert.Equal(t, `{"mappings":{"properties":{"title":{"type":"text"}}}}`, body(t, ci))

	bare, err := NewCreateIndexBuilder("books").Build()
	require.NoError(t, err)
	_, err = bare.Body(js)
	assert.ErrorIs(t, err, ErrNoBody)

	di, err := NewDeleteIndexBuilder("a", "b").IgnoreUnavailable().Build()
	require.NoError(t, err)
	assert.Equal(t, "DELETE /a,b", di.String())
	assert.Equal(t, "true", di.Params().Get("ignore_unavailable"))

	ex, err := NewIndexExistsBuilder("books").Build()
	require.NoError(t, err)
	assert.Equal(t, "HEAD /books", ex.String())
}

func TestParamsAndHeadersAreCopies(t *testing.T) {
	r, err := NewGetBuilder("books", "1").
		Param("x", "1").
		Param("x", "2").
		Header("X-Trace", "a").
		Header("X-Trace", "b").
		Build()
	require.NoError(t, err)

	assert.Equal(t, []string{"1", "2"}, r.Params()["x"])
	assert.Equal(t, []string{"a", "b"}, r.Headers().Values("X-Trace"))

	p := r.Params()
	p.Set("x", "changed")
	h := r.Headers()
	h.Del("X-Trace")
	assert.Equal(t, []string{"1", "2"}, r.Params()["x"])
	assert.Equal(t, []string{"a", "b"}, r.Headers().Values("X-Trace"))
}

func TestBuildIsolatesBuilder(t *testing.T) {
	b := NewBulkBuilder("books").Delete("", "1")
	first, err := b.Build()
	require.NoError(t, err)
	b.Delete("", "2")
	assert.Len(t, first.Operations(), 1)
}

func TestJSONSerializer_Error(t *testing.T) {
	r, err := NewIndexBuilder("books").ID("1").Document(make(chan int)).Build()
	require.NoError(t, err)

	_, err = r.Body(js)
	var se *SerializationError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "encode", se.Op)

	var v map[string]any
	err = js.Decode([]byte("{"), &v)
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "decode", se.Op)
}

func ptr[T any](v T) *T { return &v }
