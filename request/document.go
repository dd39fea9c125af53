package request

import (
	"net/http"
	"strconv"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/query"
)

// GetRequest fetches one document by id.
type GetRequest struct {
	base
	index string
	id    string
}

func (r *GetRequest) Index() string { return r.index }
func (r *GetRequest) ID() string    { return r.id }

func (r *GetRequest) Body(Serializer) ([]byte, error) { return nil, ErrNoBody }

// GetBuilder builds a GetRequest.
type GetBuilder struct {
	extras
	index, id string
}

func NewGetBuilder(index, id string) *GetBuilder { return &GetBuilder{index: index, id: id} }

func (b *GetBuilder) Routing(v string) *GetBuilder { b.param("routing", v); return b }
func (b *GetBuilder) Realtime(v bool) *GetBuilder {
	b.param("realtime", strconv.FormatBool(v))
	return b
}
func (b *GetBuilder) SourceIncludes(fields string) *GetBuilder {
	b.param("_source_includes", fields)
	return b
}
func (b *GetBuilder) Param(k, v string) *GetBuilder  { b.param(k, v); return b }
func (b *GetBuilder) Header(k, v string) *GetBuilder { b.header(k, v); return b }

func (b *GetBuilder) Build() (*GetRequest, error) {
	var v domain.Validator
	if err := v.RequiredString("index", b.index).RequiredString("id", b.id).Err(); err != nil {
		return nil, err
	}
	return &GetRequest{
		base:  b.base(http.MethodGet, path(b.index, "_doc", b.id)),
		index: b.index,
		id:    b.id,
	}, nil
}

// IndexRequest stores a document. Without an id the cluster assigns one.
type IndexRequest struct {
	base
	index    string
	id       string
	document any
}

func (r *IndexRequest) Index() string { return r.index }
func (r *IndexRequest) ID() string    { return r.id }
func (r *IndexRequest) Document() any { return r.document }

func (r *IndexRequest) Body(s Serializer) ([]byte, error) { return s.Encode(r.document) }

// IndexBuilder builds an IndexRequest.
type IndexBuilder struct {
	extras
	index, id string
	document  any
	create    bool
}

func NewIndexBuilder(index string) *IndexBuilder { return &IndexBuilder{index: index} }

func (b *IndexBuilder) ID(id string) *IndexBuilder       { b.id = id; return b }
func (b *IndexBuilder) Document(doc any) *IndexBuilder   { b.document = doc; return b }
func (b *IndexBuilder) Refresh(r Refresh) *IndexBuilder  { b.param("refresh", string(r)); return b }
func (b *IndexBuilder) Routing(v string) *IndexBuilder   { b.param("routing", v); return b }
func (b *IndexBuilder) Pipeline(v string) *IndexBuilder  { b.param("pipeline", v); return b }
func (b *IndexBuilder) Param(k, v string) *IndexBuilder  { b.param(k, v); return b }
func (b *IndexBuilder) Header(k, v string) *IndexBuilder { b.header(k, v); return b }

// Create fails the request when a document with the id already exists.
func (b *IndexBuilder) Create() *IndexBuilder { b.create = true; return b }

// IfSeqNo makes the write conditional on the document's sequence number and
// primary term.
func (b *IndexBuilder) IfSeqNo(seqNo, primaryTerm int64) *IndexBuilder {
	b.param("if_seq_no", strconv.FormatInt(seqNo, 10))
	b.param("if_primary_term", strconv.FormatInt(primaryTerm, 10))
	return b
}

func (b *IndexBuilder) Build() (*IndexRequest, error) {
	var v domain.Validator
	err := v.RequiredString("index", b.index).
		Required("document", b.document != nil).
		Check(b.checkCreate()).
		Err()
	if err != nil {
		return nil, err
	}
	r := &IndexRequest{index: b.index, id: b.id, document: b.document}
	switch {
	case b.create:
		r.base = b.base(http.MethodPut, path(b.index, "_create", b.id))
	case b.id == "":
		r.base = b.base(http.MethodPost, path(b.index, "_doc"))
	default:
		r.base = b.base(http.MethodPut, path(b.index, "_doc", b.id))
	}
	return r, nil
}

func (b *IndexBuilder) checkCreate() error {
	if b.create && b.id == "" {
		return domain.NewMissingRequiredField("id")
	}
	return nil
}

// DeleteRequest removes one document.
type DeleteRequest struct {
	base
	index string
	id    string
}

func (r *DeleteRequest) Index() string { return r.index }
func (r *DeleteRequest) ID() string    { return r.id }

func (r *DeleteRequest) Body(Serializer) ([]byte, error) { return nil, ErrNoBody }

// DeleteBuilder builds a DeleteRequest.
type DeleteBuilder struct {
	extras
	index, id string
}

func NewDeleteBuilder(index, id string) *DeleteBuilder { return &DeleteBuilder{index: index, id: id} }

func (b *DeleteBuilder) Refresh(r Refresh) *DeleteBuilder { b.param("refresh", string(r)); return b }
func (b *DeleteBuilder) Routing(v string) *DeleteBuilder  { b.param("routing", v); return b }
func (b *DeleteBuilder) Param(k, v string) *DeleteBuilder { b.param(k, v); return b }
func (b *DeleteBuilder) Header(k, v string) *DeleteBuilder {
	b.header(k, v)
	return b
}

func (b *DeleteBuilder) Build() (*DeleteRequest, error) {
	var v domain.Validator
	if err := v.RequiredString("index", b.index).RequiredString("id", b.id).Err(); err != nil {
		return nil, err
	}
	return &DeleteRequest{
		base:  b.base(http.MethodDelete, path(b.index, "_doc", b.id)),
		index: b.index,
		id:    b.id,
	}, nil
}

// UpdateRequest applies a partial document or a script to one document.
type UpdateRequest struct {
	base
	index string
	id    string
	body  UpdateBody
}

func (r *UpdateRequest) Index() string          { return r.index }
func (r *UpdateRequest) ID() string             { return r.id }
func (r *UpdateRequest) UpdateBody() UpdateBody { return r.body }

func (r *UpdateRequest) Body(s Serializer) ([]byte, error) { return s.Encode(r.body) }

// UpdateBody is the body of an update, shared with bulk update items.
type UpdateBody struct {
	Doc            any
	Script         *query.Script
	Upsert         any
	DocAsUpsert    *bool
	ScriptedUpsert *bool
	DetectNoop     *bool
}

func (u UpdateBody) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.OptValue("doc", u.Doc)
	if u.Script != nil {
		w.Field("script", u.Script)
	}
	w.OptValue("upsert", u.Upsert)
	w.OptBool("doc_as_upsert", u.DocAsUpsert).OptBool("scripted_upsert", u.ScriptedUpsert)
	w.OptBool("detect_noop", u.DetectNoop)
	return w.Bytes()
}

// ParseUpdateBody decodes the body of an update or of a bulk update item.
func ParseUpdateBody(raw []byte) (UpdateBody, error) {
	r, err := codec.NewReader(raw)
	if err != nil {
		return UpdateBody{}, err
	}
	u := UpdateBody{
		Doc:            r.OptValue("doc"),
		Upsert:         r.OptValue("upsert"),
		DocAsUpsert:    r.OptBool("doc_as_upsert"),
		ScriptedUpsert: r.OptBool("scripted_upsert"),
		DetectNoop:     r.OptBool("detect_noop"),
	}
	if raw := r.Raw("script"); raw != nil {
		s, err := query.DecodeScript(raw)
		if err != nil {
			return UpdateBody{}, err
		}
		u.Script = &s
	}
	return u, r.Err()
}

func (u UpdateBody) validate() error {
	var v domain.Validator
	return v.AtLeastOne([]string{"doc", "script"}, u.Doc != nil, u.Script != nil).Err()
}

// UpdateBuilder builds an UpdateRequest.
type UpdateBuilder struct {
	extras
	index, id string
	body      UpdateBody
}

func NewUpdateBuilder(index, id string) *UpdateBuilder { return &UpdateBuilder{index: index, id: id} }

func (b *UpdateBuilder) Doc(doc any) *UpdateBuilder { b.body.Doc = doc; return b }
func (b *UpdateBuilder) Script(s query.Script) *UpdateBuilder {
	b.body.Script = &s
	return b
}
func (b *UpdateBuilder) Upsert(doc any) *UpdateBuilder     { b.body.Upsert = doc; return b }
func (b *UpdateBuilder) DocAsUpsert(v bool) *UpdateBuilder { b.body.DocAsUpsert = &v; return b }
func (b *UpdateBuilder) DetectNoop(v bool) *UpdateBuilder  { b.body.DetectNoop = &v; return b }
func (b *UpdateBuilder) Refresh(r Refresh) *UpdateBuilder  { b.param("refresh", string(r)); return b }
func (b *UpdateBuilder) Param(k, v string) *UpdateBuilder  { b.param(k, v); return b }
func (b *UpdateBuilder) Header(k, v string) *UpdateBuilder { b.header(k, v); return b }
func (b *UpdateBuilder) RetryOnConflict(n int) *UpdateBuilder {
	b.param("retry_on_conflict", strconv.Itoa(n))
	return b
}

// Build requires index, id and at least one of doc or script.
func (b *UpdateBuilder) Build() (*UpdateRequest, error) {
	var v domain.Validator
	err := v.RequiredString("index", b.index).
		RequiredString("id", b.id).
		Check(b.body.validate()).
		Err()
	if err != nil {
		return nil, err
	}
	return &UpdateRequest{
		base:  b.base(http.MethodPost, path(b.index, "_update", b.id)),
		index: b.index,
		id:    b.id,
		body:  b.body,
	}, nil
}
