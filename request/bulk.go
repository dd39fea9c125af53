package request

import (
	"bufio"
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// OperationType is the tag of a bulk action line.
type OperationType string

const (
	OpIndex  OperationType = "index"
	OpCreate OperationType = "create"
	OpUpdate OperationType = "update"
	OpDelete OperationType = "delete"
)

// AllOperationTypes returns every bulk action tag.
func AllOperationTypes() []OperationType {
	return []OperationType{OpIndex, OpCreate, OpUpdate, OpDelete}
}

// BulkOperation is one item of a bulk request. MarshalJSON produces the
// action line; Source returns the optional body line.
type BulkOperation interface {
	Type() OperationType
	EncodeBody(w *codec.Writer) error
	Source() (any, bool)
	IsEqualTo(other BulkOperation) bool
	MarshalJSON() ([]byte, error)

	isBulkOperation()
}

var operationRegistry *codec.Registry[BulkOperation]

func init() {
	operationRegistry = codec.NewRegistry[BulkOperation]("bulk_operation").
		Register(string(OpIndex), func(in codec.Input) (BulkOperation, error) {
			return decodeOperation(in, func(r *codec.Reader) *IndexOperation {
				return &IndexOperation{Meta: readMeta(r), Pipeline: r.OptString("pipeline")}
			})
		}).
		Register(string(OpCreate), func(in codec.Input) (BulkOperation, error) {
			return decodeOperation(in, func(r *codec.Reader) *CreateOperation {
				return &CreateOperation{Meta: readMeta(r), Pipeline: r.OptString("pipeline")}
			})
		}).
		Register(string(OpUpdate), func(in codec.Input) (BulkOperation, error) {
			return decodeOperation(in, func(r *codec.Reader) *UpdateOperation {
				return &UpdateOperation{Meta: readMeta(r), RetryOnConflict: r.OptInt("retry_on_conflict")}
			})
		}).
		Register(string(OpDelete), func(in codec.Input) (BulkOperation, error) {
			return decodeOperation(in, func(r *codec.Reader) *DeleteOperation {
				return &DeleteOperation{Meta: readMeta(r)}
			})
		})
}

// OperationRegistry returns the tag registry of bulk actions.
func OperationRegistry() *codec.Registry[BulkOperation] { return operationRegistry }

// EqualOperation compares two possibly nil bulk operations.
func EqualOperation(a, b BulkOperation) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqualTo(b)
}

func decodeOperation[T BulkOperation](in codec.Input, fn func(r *codec.Reader) T) (BulkOperation, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	op := fn(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return op, nil
}

func marshalOperation(op BulkOperation) ([]byte, error) {
	return codec.MarshalTagged(string(op.Type()), op)
}

// Meta addresses the document of a bulk item. Index may be empty when the
// bulk request names a default index.
type Meta struct {
	Index   string
	ID      string
	Routing *string
}

func (m Meta) write(w *codec.Writer) {
	w.NonEmpty("_index", m.Index).NonEmpty("_id", m.ID).OptString("routing", m.Routing)
}

func readMeta(r *codec.Reader) Meta {
	m := Meta{Routing: r.OptString("routing")}
	if s := r.OptString("_index"); s != nil {
		m.Index = *s
	}
	if s := r.OptString("_id"); s != nil {
		m.ID = *s
	}
	return m
}

// IndexOperation stores Document, replacing any existing version.
type IndexOperation struct {
	Meta
	Pipeline *string
	Document any
}

func (*IndexOperation) Type() OperationType { return OpIndex }
func (*IndexOperation) isBulkOperation()    {}

func (o *IndexOperation) EncodeBody(w *codec.Writer) error {
	o.write(w)
	w.OptString("pipeline", o.Pipeline)
	return w.Err()
}

func (o *IndexOperation) Source() (any, bool)                { return o.Document, true }
func (o *IndexOperation) MarshalJSON() ([]byte, error)       { return marshalOperation(o) }
func (o *IndexOperation) IsEqualTo(other BulkOperation) bool { return codec.EqualAs(o, other) }

// CreateOperation stores Document only if the id is not taken.
type CreateOperation struct {
	Meta
	Pipeline *string
	Document any
}

func (*CreateOperation) Type() OperationType { return OpCreate }
func (*CreateOperation) isBulkOperation()    {}

func (o *CreateOperation) EncodeBody(w *codec.Writer) error {
	o.write(w)
	w.OptString("pipeline", o.Pipeline)
	return w.Err()
}

func (o *CreateOperation) Source() (any, bool)                { return o.Document, true }
func (o *CreateOperation) MarshalJSON() ([]byte, error)       { return marshalOperation(o) }
func (o *CreateOperation) IsEqualTo(other BulkOperation) bool { return codec.EqualAs(o, other) }

// UpdateOperation applies Body to an existing document.
type UpdateOperation struct {
	Meta
	RetryOnConflict *int
	Body            UpdateBody
}

func (*UpdateOperation) Type() OperationType { return OpUpdate }
func (*UpdateOperation) isBulkOperation()    {}

func (o *UpdateOperation) EncodeBody(w *codec.Writer) error {
	o.write(w)
	w.OptInt("retry_on_conflict", o.RetryOnConflict)
	return w.Err()
}

func (o *UpdateOperation) Source() (any, bool)                { return o.Body, true }
func (o *UpdateOperation) MarshalJSON() ([]byte, error)       { return marshalOperation(o) }
func (o *UpdateOperation) IsEqualTo(other BulkOperation) bool { return codec.EqualAs(o, other) }

// DeleteOperation removes a document. It has no body line.
type DeleteOperation struct {
	Meta
}

func (*DeleteOperation) Type() OperationType { return OpDelete }
func (*DeleteOperation) isBulkOperation()    {}

func (o *DeleteOperation) EncodeBody(w *codec.Writer) error {
	o.write(w)
	return w.Err()
}

func (o *DeleteOperation) Source() (any, bool)                { return nil, false }
func (o *DeleteOperation) MarshalJSON() ([]byte, error)       { return marshalOperation(o) }
func (o *DeleteOperation) IsEqualTo(other BulkOperation) bool { return codec.EqualAs(o, other) }

// EncodeBulk writes operations as newline delimited JSON: one action line,
// then the body line when the operation has one. Every line ends with a
// newline.
func EncodeBulk(s Serializer, ops []BulkOperation) ([]byte, error) {
	var buf bytes.Buffer
	for i, op := range ops {
		meta, err := s.Encode(op)
		if err != nil {
			return nil, fmt.Errorf("bulk item %d: %w", i, err)
		}
		buf.Write(meta)
		buf.WriteByte('\n')
		src, ok := op.Source()
		if !ok {
			continue
		}
		body, err := s.Encode(src)
		if err != nil {
			return nil, fmt.Errorf("bulk item %d: %w", i, err)
		}
		buf.Write(body)
		buf.WriteByte('\n')
	}
	return buf.Bytes(), nil
}

// ParseBulk decodes a newline delimited bulk body. Documents come back as
// generic JSON values.
func ParseBulk(data []byte) ([]BulkOperation, error) {
	sc := bufio.NewScanner(bytes.NewReader(data))
	sc.Buffer(make([]byte, 0, 64*1024), 32*1024*1024)
	var ops []BulkOperation
	line := 0
	next := func() ([]byte, bool) {
		for sc.Scan() {
			line++
			if b := bytes.TrimSpace(sc.Bytes()); len(b) > 0 {
				return b, true
			}
		}
		return nil, false
	}
	for {
		meta, ok := next()
		if !ok {
			break
		}
		op, err := operationRegistry.Decode(meta)
		if err != nil {
			return nil, fmt.Errorf("bulk line %d: %w", line, err)
		}
		if _, hasBody := op.Source(); hasBody {
			body, ok := next()
			if !ok {
				return nil, fmt.Errorf("bulk line %d: %w", line, domain.NewMissingRequiredField("source"))
			}
			if err := attachSource(op, body); err != nil {
				return nil, fmt.Errorf("bulk line %d: %w", line, err)
			}
		}
		ops = append(ops, op)
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return ops, nil
}

func attachSource(op BulkOperation, body []byte) error {
	switch o := op.(type) {
	case *IndexOperation:
		return json.Unmarshal(body, &o.Document)
	case *CreateOperation:
		return json.Unmarshal(body, &o.Document)
	case *UpdateOperation:
		u, err := ParseUpdateBody(body)
		if err != nil {
			return err
		}
		o.Body = u
	}
	return nil
}

// BulkRequest sends many write operations in one round trip.
type BulkRequest struct {
	base
	index      string
	operations []BulkOperation
}

func (r *BulkRequest) Operations() []BulkOperation {
	return append([]BulkOperation(nil), r.operations...)
}

func (r *BulkRequest) Body(s Serializer) ([]byte, error) { return EncodeBulk(s, r.operations) }

// BulkBuilder builds a BulkRequest.
type BulkBuilder struct {
	extras
	index string
	ops   []BulkOperation
}

// NewBulkBuilder starts a bulk request. index is the default index of items
// that name none and may be empty.
func NewBulkBuilder(index string) *BulkBuilder { return &BulkBuilder{index: index} }

func (b *BulkBuilder) Add(ops ...BulkOperation) *BulkBuilder {
	b.ops = append(b.ops, ops...)
	return b
}

func (b *BulkBuilder) Index(index, id string, doc any) *BulkBuilder {
	return b.Add(&IndexOperation{Meta: Meta{Index: index, ID: id}, Document: doc})
}

func (b *BulkBuilder) Create(index, id string, doc any) *BulkBuilder {
	return b.Add(&CreateOperation{Meta: Meta{Index: index, ID: id}, Document: doc})
}

func (b *BulkBuilder) Update(index, id string, body UpdateBody) *BulkBuilder {
	return b.Add(&UpdateOperation{Meta: Meta{Index: index, ID: id}, Body: body})
}

func (b *BulkBuilder) Delete(index, id string) *BulkBuilder {
	return b.Add(&DeleteOperation{Meta: Meta{Index: index, ID: id}})
}

func (b *BulkBuilder) Refresh(r Refresh) *BulkBuilder  { b.param("refresh", string(r)); return b }
func (b *BulkBuilder) Pipeline(v string) *BulkBuilder  { b.param("pipeline", v); return b }
func (b *BulkBuilder) Param(k, v string) *BulkBuilder  { b.param(k, v); return b }
func (b *BulkBuilder) Header(k, v string) *BulkBuilder { b.header(k, v); return b }

// Len returns the number of operations added so far.
func (b *BulkBuilder) Len() int { return len(b.ops) }

// Build requires at least one operation. Every item needs an index unless
// the request has a default one, and every non-index item needs an id.
func (b *BulkBuilder) Build() (*BulkRequest, error) {
	var v domain.Validator
	v.NotEmpty("operations", len(b.ops))
	for i, op := range b.ops {
		v.Check(b.checkItem(i, op))
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	return &BulkRequest{
		base:       b.base(http.MethodPost, path(b.index, "_bulk")),
		index:      b.index,
		operations: append([]BulkOperation(nil), b.ops...),
	}, nil
}

func (b *BulkBuilder) checkItem(i int, op BulkOperation) error {
	field := "operations[" + strconv.Itoa(i) + "]"
	if op == nil {
		return domain.NewMissingRequiredField(field)
	}
	var m Meta
	switch o := op.(type) {
	case *IndexOperation:
		if o.Document == nil {
			return domain.NewMissingRequiredField(field + ".document")
		}
		m = o.Meta
	case *CreateOperation:
		if o.Document == nil {
			return domain.NewMissingRequiredField(field + ".document")
		}
		m = o.Meta
	case *UpdateOperation:
		if err := o.Body.validate(); err != nil {
			return err
		}
		m = o.Meta
	case *DeleteOperation:
		m = o.Meta
	}
	if m.Index == "" && b.index == "" {
		return domain.NewMissingRequiredField(field + "._index")
	}
	if m.ID == "" && op.Type() != OpIndex {
		return domain.NewMissingRequiredField(field + "._id")
	}
	return nil
}
