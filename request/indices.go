package request

import (
	"maps"
	"net/http"
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// CreateIndexRequest creates an index with optional settings, mappings and
// aliases.
type CreateIndexRequest struct {
	base
	index    string
	settings map[string]any
	mappings map[string]any
	aliases  map[string]any
}

func (r *CreateIndexRequest) Index() string { return r.index }

func (r *CreateIndexRequest) Body(s Serializer) ([]byte, error) {
	if len(r.settings) == 0 && len(r.mappings) == 0 && len(r.aliases) == 0 {
		return nil, ErrNoBody
	}
	return s.Encode(createIndexBody{r})
}

type createIndexBody struct{ r *CreateIndexRequest }

func (b createIndexBody) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	if len(b.r.settings) > 0 {
		w.Field("settings", b.r.settings)
	}
	if len(b.r.mappings) > 0 {
		w.Field("mappings", b.r.mappings)
	}
	if len(b.r.aliases) > 0 {
		w.Field("aliases", b.r.aliases)
	}
	return w.Bytes()
}

// CreateIndexBuilder builds a CreateIndexRequest.
type CreateIndexBuilder struct {
	extras
	r CreateIndexRequest
}

func NewCreateIndexBuilder(index string) *CreateIndexBuilder {
	return &CreateIndexBuilder{r: CreateIndexRequest{index: index}}
}

func (b *CreateIndexBuilder) Settings(s map[string]any) *CreateIndexBuilder {
	b.r.settings = s
	return b
}

func (b *CreateIndexBuilder) Mappings(m map[string]any) *CreateIndexBuilder {
	b.r.mappings = m
	return b
}

// Property adds one field to mappings.properties.
func (b *CreateIndexBuilder) Property(name string, def map[string]any) *CreateIndexBuilder {
	if b.r.mappings == nil {
		b.r.mappings = map[string]any{}
	}
	props, ok := b.r.mappings["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
		b.r.mappings["properties"] = props
	}
	props[name] = def
	return b
}

func (b *CreateIndexBuilder) Alias(name string) *CreateIndexBuilder {
	if b.r.aliases == nil {
		b.r.aliases = map[string]any{}
	}
	b.r.aliases[name] = map[string]any{}
	return b
}
func (b *CreateIndexBuilder) Param(k, v string) *CreateIndexBuilder  { b.param(k, v); return b }
func (b *CreateIndexBuilder) Header(k, v string) *CreateIndexBuilder { b.header(k, v); return b }

func (b *CreateIndexBuilder) Build() (*CreateIndexRequest, error) {
	var v domain.Validator
	if err := v.RequiredString("index", b.r.index).Err(); err != nil {
		return nil, err
	}
	r := b.r
	r.settings = maps.Clone(b.r.settings)
	r.mappings = maps.Clone(b.r.mappings)
	r.aliases = maps.Clone(b.r.aliases)
	r.base = b.base(http.MethodPut, path(r.index))
	return &r, nil
}

// DeleteIndexRequest deletes indices.
type DeleteIndexRequest struct {
	base
	indices []string
}

func (r *DeleteIndexRequest) Indices() []string { return slices.Clone(r.indices) }

func (r *DeleteIndexRequest) Body(Serializer) ([]byte, error) { return nil, ErrNoBody }

// DeleteIndexBuilder builds a DeleteIndexRequest.
type DeleteIndexBuilder struct {
	extras
	indices []string
}

func NewDeleteIndexBuilder(indices ...string) *DeleteIndexBuilder {
	return &DeleteIndexBuilder{indices: indices}
}

func (b *DeleteIndexBuilder) IgnoreUnavailable() *DeleteIndexBuilder {
	b.param("ignore_unavailable", "true")
	return b
}
func (b *DeleteIndexBuilder) Param(k, v string) *DeleteIndexBuilder  { b.param(k, v); return b }
func (b *DeleteIndexBuilder) Header(k, v string) *DeleteIndexBuilder { b.header(k, v); return b }

func (b *DeleteIndexBuilder) Build() (*DeleteIndexRequest, error) {
	indices, err := requireIndices(b.indices)
	if err != nil {
		return nil, err
	}
	return &DeleteIndexRequest{base: b.base(http.MethodDelete, "/"+indexList(indices)), indices: indices}, nil
}

// IndexExistsRequest checks whether indices exist. The answer is the
// response status: 200 or 404.
type IndexExistsRequest struct {
	base
	indices []string
}

func (r *IndexExistsRequest) Indices() []string { return slices.Clone(r.indices) }

func (r *IndexExistsRequest) Body(Serializer) ([]byte, error) { return nil, ErrNoBody }

// IndexExistsBuilder builds an IndexExistsRequest.
type IndexExistsBuilder struct {
	extras
	indices []string
}

func NewIndexExistsBuilder(indices ...string) *IndexExistsBuilder {
	return &IndexExistsBuilder{indices: indices}
}

func (b *IndexExistsBuilder) Param(k, v string) *IndexExistsBuilder  { b.param(k, v); return b }
func (b *IndexExistsBuilder) Header(k, v string) *IndexExistsBuilder { b.header(k, v); return b }

func (b *IndexExistsBuilder) Build() (*IndexExistsRequest, error) {
	indices, err := requireIndices(b.indices)
	if err != nil {
		return nil, err
	}
	return &IndexExistsRequest{base: b.base(http.MethodHead, "/"+indexList(indices)), indices: indices}, nil
}

func requireIndices(indices []string) ([]string, error) {
	var v domain.Validator
	err := v.NotEmpty("index", len(indices)).Check(noEmptyNames("index", indices)).Err()
	if err != nil {
		return nil, err
	}
	return slices.Clone(indices), nil
}
