package request

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/query"
)

// ReindexSource selects the documents to copy.
type ReindexSource struct {
	Indices []string
	Query   query.Query
	Size    *int
}

// ReindexDest is where copied documents go.
type ReindexDest struct {
	Index    string
	OpType   string
	Pipeline string
}

// ReindexRequest copies documents from one or more indices into another.
type ReindexRequest struct {
	base
	source    ReindexSource
	dest      ReindexDest
	script    *query.Script
	conflicts Conflicts
	maxDocs   *int
}

func (r *ReindexRequest) Source() ReindexSource { return r.source }
func (r *ReindexRequest) Dest() ReindexDest     { return r.dest }

func (r *ReindexRequest) Body(s Serializer) ([]byte, error) { return s.Encode(reindexBody{r}) }

type reindexBody struct{ r *ReindexRequest }

func (b reindexBody) MarshalJSON() ([]byte, error) {
	r := b.r
	w := codec.NewWriter()
	if r.conflicts != "" {
		w.Field("conflicts", r.conflicts)
	}
	w.OptInt("max_docs", r.maxDocs)
	w.Object("source", func(o *codec.Writer) error {
		o.Field("index", r.source.Indices)
		if r.source.Query != nil {
			o.Field("query", r.source.Query)
		}
		o.OptInt("size", r.source.Size)
		return o.Err()
	})
	w.Object("dest", func(o *codec.Writer) error {
		o.Field("index", r.dest.Index).NonEmpty("op_type", r.dest.OpType).NonEmpty("pipeline", r.dest.Pipeline)
		return o.Err()
	})
	if r.script != nil {
		w.Field("script", r.script)
	}
	return w.Bytes()
}

// ReindexBuilder builds a ReindexRequest.
type ReindexBuilder struct {
	extras
	r ReindexRequest
}

func NewReindexBuilder() *ReindexBuilder { return &ReindexBuilder{} }

func (b *ReindexBuilder) Source(indices ...string) *ReindexBuilder {
	b.r.source.Indices = append(b.r.source.Indices, indices...)
	return b
}
func (b *ReindexBuilder) SourceQuery(q query.Query) *ReindexBuilder { b.r.source.Query = q; return b }
func (b *ReindexBuilder) BatchSize(n int) *ReindexBuilder           { b.r.source.Size = &n; return b }
func (b *ReindexBuilder) Dest(index string) *ReindexBuilder         { b.r.dest.Index = index; return b }
func (b *ReindexBuilder) DestOpType(op string) *ReindexBuilder      { b.r.dest.OpType = op; return b }
func (b *ReindexBuilder) DestPipeline(p string) *ReindexBuilder     { b.r.dest.Pipeline = p; return b }
func (b *ReindexBuilder) Script(s query.Script) *ReindexBuilder     { b.r.script = &s; return b }
func (b *ReindexBuilder) Conflicts(c Conflicts) *ReindexBuilder     { b.r.conflicts = c; return b }
func (b *ReindexBuilder) MaxDocs(n int) *ReindexBuilder             { b.r.maxDocs = &n; return b }
func (b *ReindexBuilder) Refresh(v bool) *ReindexBuilder {
	b.param("refresh", strconv.FormatBool(v))
	return b
}
func (b *ReindexBuilder) WaitForCompletion(v bool) *ReindexBuilder {
	b.param("wait_for_completion", strconv.FormatBool(v))
	return b
}
func (b *ReindexBuilder) Param(k, v string) *ReindexBuilder  { b.param(k, v); return b }
func (b *ReindexBuilder) Header(k, v string) *ReindexBuilder { b.header(k, v); return b }

// Build requires at least one source index and a destination index.
func (b *ReindexBuilder) Build() (*ReindexRequest, error) {
	var v domain.Validator
	err := v.NotEmpty("source.index", len(b.r.source.Indices)).
		Check(noEmptyNames("source.index", b.r.source.Indices)).
		RequiredString("dest.index", b.r.dest.Index).
		Err()
	if err != nil {
		return nil, err
	}
	r := b.r
	r.source.Indices = slices.Clone(b.r.source.Indices)
	r.base = b.base(http.MethodPost, "/_reindex")
	return &r, nil
}

// DeleteByQueryRequest deletes every document matching a query.
type DeleteByQueryRequest struct {
	base
	indices []string
	query   query.Query
	maxDocs *int
}

func (r *DeleteByQueryRequest) Indices() []string  { return slices.Clone(r.indices) }
func (r *DeleteByQueryRequest) Query() query.Query { return r.query }

func (r *DeleteByQueryRequest) Body(s Serializer) ([]byte, error) {
	return s.Encode(byQueryBody{query: r.query, maxDocs: r.maxDocs})
}

type byQueryBody struct {
	query   query.Query
	script  *query.Script
	maxDocs *int
}

func (b byQueryBody) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.OptInt("max_docs", b.maxDocs)
	if b.query != nil {
		w.Field("query", b.query)
	}
	if b.script != nil {
		w.Field("script", b.script)
	}
	return w.Bytes()
}

// DeleteByQueryBuilder builds a DeleteByQueryRequest.
type DeleteByQueryBuilder struct {
	extras
	r DeleteByQueryRequest
}

func NewDeleteByQueryBuilder(indices ...string) *DeleteByQueryBuilder {
	return &DeleteByQueryBuilder{r: DeleteByQueryRequest{indices: indices}}
}

func (b *DeleteByQueryBuilder) Query(q query.Query) *DeleteByQueryBuilder { b.r.query = q; return b }
func (b *DeleteByQueryBuilder) MaxDocs(n int) *DeleteByQueryBuilder       { b.r.maxDocs = &n; return b }
func (b *DeleteByQueryBuilder) Conflicts(c Conflicts) *DeleteByQueryBuilder {
	b.param("conflicts", string(c))
	return b
}
func (b *DeleteByQueryBuilder) Refresh(v bool) *DeleteByQueryBuilder {
	b.param("refresh", strconv.FormatBool(v))
	return b
}
func (b *DeleteByQueryBuilder) Param(k, v string) *DeleteByQueryBuilder  { b.param(k, v); return b }
func (b *DeleteByQueryBuilder) Header(k, v string) *DeleteByQueryBuilder { b.header(k, v); return b }

// Build requires at least one index and a query.
func (b *DeleteByQueryBuilder) Build() (*DeleteByQueryRequest, error) {
	var v domain.Validator
	err := v.NotEmpty("index", len(b.r.indices)).
		Check(noEmptyNames("index", b.r.indices)).
		Required("query", b.r.query != nil).
		Err()
	if err != nil {
		return nil, err
	}
	r := b.r
	r.indices = slices.Clone(b.r.indices)
	r.base = b.base(http.MethodPost, multiPath(r.indices, "_delete_by_query"))
	return &r, nil
}

// UpdateByQueryRequest updates every document matching a query, or every
// document when the query is nil.
type UpdateByQueryRequest struct {
	base
	indices []string
	query   query.Query
	script  *query.Script
	maxDocs *int
}

func (r *UpdateByQueryRequest) Indices() []string     { return slices.Clone(r.indices) }
func (r *UpdateByQueryRequest) Query() query.Query    { return r.query }
func (r *UpdateByQueryRequest) Script() *query.Script { return r.script }

func (r *UpdateByQueryRequest) Body(s Serializer) ([]byte, error) {
	if r.query == nil && r.script == nil && r.maxDocs == nil {
		return nil, ErrNoBody
	}
	return s.Encode(byQueryBody{query: r.query, script: r.script, maxDocs: r.maxDocs})
}

// UpdateByQueryBuilder builds an UpdateByQueryRequest.
type UpdateByQueryBuilder struct {
	extras
	r UpdateByQueryRequest
}

func NewUpdateByQueryBuilder(indices ...string) *UpdateByQueryBuilder {
	return &UpdateByQueryBuilder{r: UpdateByQueryRequest{indices: indices}}
}

func (b *UpdateByQueryBuilder) Query(q query.Query) *UpdateByQueryBuilder { b.r.query = q; return b }
func (b *UpdateByQueryBuilder) Script(s query.Script) *UpdateByQueryBuilder {
	b.r.script = &s
	return b
}
func (b *UpdateByQueryBuilder) MaxDocs(n int) *UpdateByQueryBuilder { b.r.maxDocs = &n; return b }
func (b *UpdateByQueryBuilder) Conflicts(c Conflicts) *UpdateByQueryBuilder {
	b.param("conflicts", string(c))
	return b
}

func (b *UpdateByQueryBuilder) Pipeline(p string) *UpdateByQueryBuilder {
	b.param("pipeline", p)
	return b
}

func (b *UpdateByQueryBuilder) Param(k, v string) *UpdateByQueryBuilder  { b.param(k, v); return b }
func (b *UpdateByQueryBuilder) Header(k, v string) *UpdateByQueryBuilder { b.header(k, v); return b }

// Build requires at least one index.
func (b *UpdateByQueryBuilder) Build() (*UpdateByQueryRequest, error) {
	var v domain.Validator
	err := v.NotEmpty("index", len(b.r.indices)).
		Check(noEmptyNames("index", b.r.indices)).
		Err()
	if err != nil {
		return nil, err
	}
	r := b.r
	r.indices = slices.Clone(b.r.indices)
	r.base = b.base(http.MethodPost, multiPath(r.indices, "_update_by_query"))
	return &r, nil
}
