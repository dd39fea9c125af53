package query

import (
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// KNNQuery finds the K nearest neighbours of QueryVector in a dense_vector
// field.
type KNNQuery struct {
	Field         string
	QueryVector   []float32
	K             *int
	NumCandidates *int
	Filter        []Query
	Similarity    *float64
	Boost         *float64
	QueryName     *string
}

func (*KNNQuery) Type() Type { return TypeKNN }
func (*KNNQuery) isQuery()   {}

func (q *KNNQuery) EncodeBody(w *codec.Writer) error {
	vec := q.QueryVector
	if vec == nil {
		vec = []float32{}
	}
	w.Field("field", q.Field).Field("query_vector", vec)
	w.OptInt("k", q.K).OptInt("num_candidates", q.NumCandidates)
	writeClauses(w, "filter", q.Filter)
	w.OptFloat("similarity", q.Similarity)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *KNNQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *KNNQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeKNN(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *KNNQuery {
		c := readCommon(r)
		q := &KNNQuery{
			Field:         r.String("field"),
			K:             r.OptInt("k"),
			NumCandidates: r.OptInt("num_candidates"),
			Filter:        queryList(r, "filter"),
			Similarity:    r.OptFloat("similarity"),
			Boost:         c.boost,
			QueryName:     c.name,
		}
		r.Decode("query_vector", &q.QueryVector)
		return q
	})
}

// KNNBuilder builds a KNNQuery.
type KNNBuilder struct{ q KNNQuery }

func NewKNNBuilder() *KNNBuilder { return &KNNBuilder{} }

func (b *KNNBuilder) Field(f string) *KNNBuilder { b.q.Field = f; return b }
func (b *KNNBuilder) QueryVector(v []float32) *KNNBuilder {
	b.q.QueryVector = slices.Clone(v)
	return b
}
func (b *KNNBuilder) K(k int) *KNNBuilder              { b.q.K = &k; return b }
func (b *KNNBuilder) NumCandidates(n int) *KNNBuilder  { b.q.NumCandidates = &n; return b }
func (b *KNNBuilder) Filter(qs ...Query) *KNNBuilder   { b.q.Filter = append(b.q.Filter, qs...); return b }
func (b *KNNBuilder) Similarity(s float64) *KNNBuilder { b.q.Similarity = &s; return b }
func (b *KNNBuilder) Boost(v float64) *KNNBuilder      { b.q.Boost = &v; return b }

// Build validates the field and vector, and that num_candidates is not below k.
func (b *KNNBuilder) Build() (*KNNQuery, error) {
	var v domain.Validator
	v.RequiredString("field", b.q.Field).
		NotEmpty("query_vector", len(b.q.QueryVector)).
		Check(noNil("filter", b.q.Filter))
	if b.q.K != nil && b.q.NumCandidates != nil && *b.q.NumCandidates < *b.q.K {
		v.Check(&domain.InvalidFieldError{Field: "num_candidates", Reason: "must be >= k"})
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Filter = slices.Clone(b.q.Filter)
	return &q, nil
}
