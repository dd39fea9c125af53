package query

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// MatchAllQuery matches every document.
type MatchAllQuery struct {
	Boost     *float64
	QueryName *string
}

// MatchAll returns a match_all query.
func MatchAll() *MatchAllQuery { return &MatchAllQuery{} }

func (*MatchAllQuery) Type() Type { return TypeMatchAll }
func (*MatchAllQuery) isQuery()   {}

func (q *MatchAllQuery) EncodeBody(w *codec.Writer) error {
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *MatchAllQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *MatchAllQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeMatchAll(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *MatchAllQuery {
		c := readCommon(r)
		return &MatchAllQuery{Boost: c.boost, QueryName: c.name}
	})
}

// MatchNoneQuery matches no document.
type MatchNoneQuery struct {
	QueryName *string
}

// MatchNone returns a match_none query.
func MatchNone() *MatchNoneQuery { return &MatchNoneQuery{} }

func (*MatchNoneQuery) Type() Type { return TypeMatchNone }
func (*MatchNoneQuery) isQuery()   {}

func (q *MatchNoneQuery) EncodeBody(w *codec.Writer) error {
	w.OptString("_name", q.QueryName)
	return w.Err()
}

func (q *MatchNoneQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *MatchNoneQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeMatchNone(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *MatchNoneQuery {
		return &MatchNoneQuery{QueryName: r.OptString("_name")}
	})
}

// BoolQuery combines clauses with boolean logic.
type BoolQuery struct {
	Must               []Query
	Filter             []Query
	Should             []Query
	MustNot            []Query
	MinimumShouldMatch *string
	Boost              *float64
	QueryName          *string
}

func (*BoolQuery) Type() Type { return TypeBool }
func (*BoolQuery) isQuery()   {}

func (q *BoolQuery) EncodeBody(w *codec.Writer) error {
	writeClauses(w, "must", q.Must)
	writeClauses(w, "filter", q.Filter)
	writeClauses(w, "should", q.Should)
	writeClauses(w, "must_not", q.MustNot)
	w.OptString("minimum_should_match", q.MinimumShouldMatch)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func writeClauses(w *codec.Writer, key string, qs []Query) {
	if len(qs) > 0 {
		w.Field(key, qs)
	}
}

func (q *BoolQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *BoolQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeBool(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *BoolQuery {
		c := readCommon(r)
		return &BoolQuery{
			Must:               queryList(r, "must"),
			Filter:             queryList(r, "filter"),
			Should:             queryList(r, "should"),
			MustNot:            queryList(r, "must_not"),
			MinimumShouldMatch: r.OptString("minimum_should_match"),
			Boost:              c.boost,
			QueryName:          c.name,
		}
	})
}

// BoolBuilder builds a BoolQuery.
type BoolBuilder struct{ q BoolQuery }

func NewBoolBuilder() *BoolBuilder { return &BoolBuilder{} }

func (b *BoolBuilder) Must(qs ...Query) *BoolBuilder { b.q.Must = append(b.q.Must, qs...); return b }

func (b *BoolBuilder) Filter(qs ...Query) *BoolBuilder {
	b.q.Filter = append(b.q.Filter, qs...)
	return b
}

func (b *BoolBuilder) Should(qs ...Query) *BoolBuilder {
	b.q.Should = append(b.q.Should, qs...)
	return b
}

func (b *BoolBuilder) MustNot(qs ...Query) *BoolBuilder {
	b.q.MustNot = append(b.q.MustNot, qs...)
	return b
}

func (b *BoolBuilder) MinimumShouldMatch(m string) *BoolBuilder {
	b.q.MinimumShouldMatch = &m
	return b
}
func (b *BoolBuilder) Boost(v float64) *BoolBuilder    { b.q.Boost = &v; return b }
func (b *BoolBuilder) QueryName(n string) *BoolBuilder { b.q.QueryName = &n; return b }

// Build rejects nil clauses. An empty bool query is valid and matches all
// documents.
func (b *BoolBuilder) Build() (*BoolQuery, error) {
	var v domain.Validator
	v.Check(noNil("must", b.q.Must)).
		Check(noNil("filter", b.q.Filter)).
		Check(noNil("should", b.q.Should)).
		Check(noNil("must_not", b.q.MustNot))
	if err := v.Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Must = slices.Clone(b.q.Must)
	q.Filter = slices.Clone(b.q.Filter)
	q.Should = slices.Clone(b.q.Should)
	q.MustNot = slices.Clone(b.q.MustNot)
	return &q, nil
}

func noNil(field string, qs []Query) error {
	for i, q := range qs {
		if q == nil {
			return domain.NewMissingRequiredField(fmt.Sprintf("%s[%d]", field, i))
		}
	}
	return nil
}

// BoostingQuery demotes documents matching Negative.
type BoostingQuery struct {
	Positive      Query
	Negative      Query
	NegativeBoost float64
	Boost         *float64
	QueryName     *string
}

func (*BoostingQuery) Type() Type { return TypeBoosting }
func (*BoostingQuery) isQuery()   {}

func (q *BoostingQuery) EncodeBody(w *codec.Writer) error {
	w.Field("positive", q.Positive).Field("negative", q.Negative).Field("negative_boost", q.NegativeBoost)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *BoostingQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *BoostingQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeBoosting(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *BoostingQuery {
		c := readCommon(r)
		return &BoostingQuery{
			Positive:      requiredQuery(r, "positive"),
			Negative:      requiredQuery(r, "negative"),
			NegativeBoost: r.Float("negative_boost"),
			Boost:         c.boost,
			QueryName:     c.name,
		}
	})
}

// BoostingBuilder builds a BoostingQuery.
type BoostingBuilder struct {
	q        BoostingQuery
	boostSet bool
}

func NewBoostingBuilder() *BoostingBuilder { return &BoostingBuilder{} }

func (b *BoostingBuilder) Positive(q Query) *BoostingBuilder { b.q.Positive = q; return b }
func (b *BoostingBuilder) Negative(q Query) *BoostingBuilder { b.q.Negative = q; return b }
func (b *BoostingBuilder) NegativeBoost(v float64) *BoostingBuilder {
	b.q.NegativeBoost = v
	b.boostSet = true
	return b
}
func (b *BoostingBuilder) Boost(v float64) *BoostingBuilder { b.q.Boost = &v; return b }

func (b *BoostingBuilder) Build() (*BoostingQuery, error) {
	var v domain.Validator
	err := v.Required("positive", b.q.Positive != nil).
		Required("negative", b.q.Negative != nil).
		Required("negative_boost", b.boostSet).
		Err()
	if err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// ConstantScoreQuery wraps a filter and gives every match the same score.
type ConstantScoreQuery struct {
	Filter    Query
	Boost     *float64
	QueryName *string
}

func (*ConstantScoreQuery) Type() Type { return TypeConstantScore }
func (*ConstantScoreQuery) isQuery()   {}

func (q *ConstantScoreQuery) EncodeBody(w *codec.Writer) error {
	w.Field("filter", q.Filter)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *ConstantScoreQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *ConstantScoreQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeConstantScore(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *ConstantScoreQuery {
		c := readCommon(r)
		return &ConstantScoreQuery{Filter: requiredQuery(r, "filter"), Boost: c.boost, QueryName: c.name}
	})
}

// ConstantScoreBuilder builds a ConstantScoreQuery.
type ConstantScoreBuilder struct{ q ConstantScoreQuery }

func NewConstantScoreBuilder() *ConstantScoreBuilder { return &ConstantScoreBuilder{} }

func (b *ConstantScoreBuilder) Filter(q Query) *ConstantScoreBuilder  { b.q.Filter = q; return b }
func (b *ConstantScoreBuilder) Boost(v float64) *ConstantScoreBuilder { b.q.Boost = &v; return b }

func (b *ConstantScoreBuilder) Build() (*ConstantScoreQuery, error) {
	var v domain.Validator
	if err := v.Required("filter", b.q.Filter != nil).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// DisMaxQuery scores by the best matching subquery.
type DisMaxQuery struct {
	Queries    []Query
	TieBreaker *float64
	Boost      *float64
	QueryName  *string
}

func (*DisMaxQuery) Type() Type { return TypeDisMax }
func (*DisMaxQuery) isQuery()   {}

func (q *DisMaxQuery) EncodeBody(w *codec.Writer) error {
	queries := q.Queries
	if queries == nil {
		queries = []Query{}
	}
	w.Field("queries", queries).OptFloat("tie_breaker", q.TieBreaker)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *DisMaxQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *DisMaxQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeDisMax(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *DisMaxQuery {
		c := readCommon(r)
		return &DisMaxQuery{
			Queries:    queryList(r, "queries"),
			TieBreaker: r.OptFloat("tie_breaker"),
			Boost:      c.boost,
			QueryName:  c.name,
		}
	})
}

// DisMaxBuilder builds a DisMaxQuery.
type DisMaxBuilder struct{ q DisMaxQuery }

func NewDisMaxBuilder() *DisMaxBuilder { return &DisMaxBuilder{} }

func (b *DisMaxBuilder) Queries(qs ...Query) *DisMaxBuilder {
	b.q.Queries = append(b.q.Queries, qs...)
	return b
}
func (b *DisMaxBuilder) TieBreaker(v float64) *DisMaxBuilder { b.q.TieBreaker = &v; return b }
func (b *DisMaxBuilder) Boost(v float64) *DisMaxBuilder      { b.q.Boost = &v; return b }

func (b *DisMaxBuilder) Build() (*DisMaxQuery, error) {
	var v domain.Validator
	if err := v.NotEmpty("queries", len(b.q.Queries)).Check(noNil("queries", b.q.Queries)).Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Queries = slices.Clone(b.q.Queries)
	return &q, nil
}

// NestedQuery runs Query against nested objects under Path.
type NestedQuery struct {
	Path           string
	Query          Query
	ScoreMode      *string
	IgnoreUnmapped *bool
	Boost          *float64
	QueryName      *string
}

func (*NestedQuery) Type() Type { return TypeNested }
func (*NestedQuery) isQuery()   {}

func (q *NestedQuery) EncodeBody(w *codec.Writer) error {
	w.Field("path", q.Path).Field("query", q.Query)
	w.OptString("score_mode", q.ScoreMode).OptBool("ignore_unmapped", q.IgnoreUnmapped)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *NestedQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *NestedQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeNested(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *NestedQuery {
		c := readCommon(r)
		return &NestedQuery{
			Path:           r.String("path"),
			Query:          requiredQuery(r, "query"),
			ScoreMode:      r.OptString("score_mode"),
			IgnoreUnmapped: r.OptBool("ignore_unmapped"),
			Boost:          c.boost,
			QueryName:      c.name,
		}
	})
}

// NestedBuilder builds a NestedQuery.
type NestedBuilder struct{ q NestedQuery }

func NewNestedBuilder() *NestedBuilder { return &NestedBuilder{} }

func (b *NestedBuilder) Path(p string) *NestedBuilder         { b.q.Path = p; return b }
func (b *NestedBuilder) Query(q Query) *NestedBuilder         { b.q.Query = q; return b }
func (b *NestedBuilder) ScoreMode(m string) *NestedBuilder    { b.q.ScoreMode = &m; return b }
func (b *NestedBuilder) IgnoreUnmapped(v bool) *NestedBuilder { b.q.IgnoreUnmapped = &v; return b }

func (b *NestedBuilder) Build() (*NestedQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("path", b.q.Path).Required("query", b.q.Query != nil).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}
