package request

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/query"
	"github.com/kailas-cloud/esdsl/suggest"
)

// SortOrder is asc or desc.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// Sort orders hits by one field. A sort without an order is written as the
// bare field name.
type Sort struct {
	Field string
	Order SortOrder
}

func (s Sort) MarshalJSON() ([]byte, error) {
	if s.Order == "" {
		return json.Marshal(s.Field)
	}
	return codec.NewWriter().Object(s.Field, func(o *codec.Writer) error {
		o.Field("order", s.Order)
		return o.Err()
	}).Bytes()
}

// SearchRequest runs a query, knn search or suggester against indices.
type SearchRequest struct {
	base
	indices        []string
	query          query.Query
	postFilter     query.Query
	knn            []*query.KNNQuery
	suggester      *suggest.Suggester
	from           *int
	size           *int
	sort           []Sort
	source         []string
	minScore       *float64
	trackTotalHits *bool
	aggregations   map[string]any
}

func (r *SearchRequest) Indices() []string             { return slices.Clone(r.indices) }
func (r *SearchRequest) Query() query.Query            { return r.query }
func (r *SearchRequest) Suggester() *suggest.Suggester { return r.suggester }

func (r *SearchRequest) hasBody() bool {
	return r.query != nil || r.postFilter != nil || len(r.knn) > 0 || r.suggester != nil ||
		r.from != nil || r.size != nil || len(r.sort) > 0 || r.source != nil ||
		r.minScore != nil || r.trackTotalHits != nil || len(r.aggregations) > 0
}

func (r *SearchRequest) Body(s Serializer) ([]byte, error) {
	if !r.hasBody() {
		return nil, ErrNoBody
	}
	return s.Encode(searchBody{r})
}

type searchBody struct{ r *SearchRequest }

func (b searchBody) MarshalJSON() ([]byte, error) {
	r := b.r
	w := codec.NewWriter()
	if r.query != nil {
		w.Field("query", r.query)
	}
	if len(r.knn) == 1 {
		w.Object("knn", r.knn[0].EncodeBody)
	} else if len(r.knn) > 1 {
		items := make([]knnSection, len(r.knn))
		for i, k := range r.knn {
			items[i] = knnSection{k}
		}
		w.Field("knn", items)
	}
	w.OptInt("from", r.from).OptInt("size", r.size)
	if len(r.sort) > 0 {
		w.Field("sort", r.sort)
	}
	if r.source != nil {
		w.Field("_source", r.source)
	}
	if r.postFilter != nil {
		w.Field("post_filter", r.postFilter)
	}
	w.OptFloat("min_score", r.minScore).OptBool("track_total_hits", r.trackTotalHits)
	if len(r.aggregations) > 0 {
		w.Field("aggs", r.aggregations)
	}
	if r.suggester != nil {
		w.Field("suggest", r.suggester)
	}
	return w.Bytes()
}

// knnSection writes a top-level knn search without the query tag.
type knnSection struct{ q *query.KNNQuery }

func (k knnSection) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	if err := k.q.EncodeBody(w); err != nil {
		return nil, err
	}
	return w.Bytes()
}

// SearchBuilder builds a SearchRequest.
type SearchBuilder struct {
	extras
	r SearchRequest
}

func NewSearchBuilder(indices ...string) *SearchBuilder {
	return &SearchBuilder{r: SearchRequest{indices: indices}}
}

func (b *SearchBuilder) Query(q query.Query) *SearchBuilder      { b.r.query = q; return b }
func (b *SearchBuilder) PostFilter(q query.Query) *SearchBuilder { b.r.postFilter = q; return b }
func (b *SearchBuilder) KNN(q *query.KNNQuery) *SearchBuilder {
	b.r.knn = append(b.r.knn, q)
	return b
}
func (b *SearchBuilder) Suggest(s *suggest.Suggester) *SearchBuilder { b.r.suggester = s; return b }
func (b *SearchBuilder) From(n int) *SearchBuilder                   { b.r.from = &n; return b }
func (b *SearchBuilder) Size(n int) *SearchBuilder                   { b.r.size = &n; return b }
func (b *SearchBuilder) Sort(field string, order SortOrder) *SearchBuilder {
	b.r.sort = append(b.r.sort, Sort{Field: field, Order: order})
	return b
}
func (b *SearchBuilder) Source(fields ...string) *SearchBuilder {
	b.r.source = append([]string{}, fields...)
	return b
}
func (b *SearchBuilder) MinScore(v float64) *SearchBuilder    { b.r.minScore = &v; return b }
func (b *SearchBuilder) TrackTotalHits(v bool) *SearchBuilder { b.r.trackTotalHits = &v; return b }

// Aggregations sets the raw aggs section. Aggregations are passed through
// as-is.
func (b *SearchBuilder) Aggregations(aggs map[string]any) *SearchBuilder {
	b.r.aggregations = aggs
	return b
}
func (b *SearchBuilder) Routing(v string) *SearchBuilder    { b.param("routing", v); return b }
func (b *SearchBuilder) Preference(v string) *SearchBuilder { b.param("preference", v); return b }
func (b *SearchBuilder) Timeout(v string) *SearchBuilder    { b.param("timeout", v); return b }
func (b *SearchBuilder) Param(k, v string) *SearchBuilder   { b.param(k, v); return b }
func (b *SearchBuilder) Header(k, v string) *SearchBuilder  { b.header(k, v); return b }

// Build checks index names and knn entries. A search without a body is
// sent as GET.
func (b *SearchBuilder) Build() (*SearchRequest, error) {
	var v domain.Validator
	err := v.Check(noEmptyNames("index", b.r.indices)).
		Check(noNilKNN(b.r.knn)).
		Err()
	if err != nil {
		return nil, err
	}
	r := b.r
	r.indices = slices.Clone(b.r.indices)
	r.knn = slices.Clone(b.r.knn)
	r.sort = slices.Clone(b.r.sort)
	r.source = slices.Clone(b.r.source)
	method := http.MethodPost
	if !r.hasBody() {
		method = http.MethodGet
	}
	r.base = b.base(method, multiPath(r.indices, "_search"))
	return &r, nil
}

func noNilKNN(qs []*query.KNNQuery) error {
	for i, q := range qs {
		if q == nil {
			return domain.NewMissingRequiredField("knn[" + strconv.Itoa(i) + "]")
		}
	}
	return nil
}

// CountRequest counts the documents matching a query.
type CountRequest struct {
	base
	indices []string
	query   query.Query
}

func (r *CountRequest) Query() query.Query { return r.query }

func (r *CountRequest) Body(s Serializer) ([]byte, error) {
	if r.query == nil {
		return nil, ErrNoBody
	}
	return s.Encode(queryBody{r.query})
}

// queryBody is {"query": q}.
type queryBody struct{ q query.Query }

func (b queryBody) MarshalJSON() ([]byte, error) {
	return codec.NewWriter().Field("query", b.q).Bytes()
}

// CountBuilder builds a CountRequest.
type CountBuilder struct {
	extras
	r CountRequest
}

func NewCountBuilder(indices ...string) *CountBuilder {
	return &CountBuilder{r: CountRequest{indices: indices}}
}

func (b *CountBuilder) Query(q query.Query) *CountBuilder { b.r.query = q; return b }
func (b *CountBuilder) Param(k, v string) *CountBuilder   { b.param(k, v); return b }
func (b *CountBuilder) Header(k, v string) *CountBuilder  { b.header(k, v); return b }

func (b *CountBuilder) Build() (*CountRequest, error) {
	var v domain.Validator
	if err := v.Check(noEmptyNames("index", b.r.indices)).Err(); err != nil {
		return nil, err
	}
	r := b.r
	r.indices = slices.Clone(b.r.indices)
	method := http.MethodPost
	if r.query == nil {
		method = http.MethodGet
	}
	r.base = b.base(method, multiPath(r.indices, "_count"))
	return &r, nil
}
