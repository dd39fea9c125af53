package query

import (
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// Operator combines the terms of an analyzed query.
type Operator string

const (
	OperatorOr  Operator = "or"
	OperatorAnd Operator = "and"
)

// MatchQuery is the standard analyzed full-text query.
type MatchQuery struct {
	Field              string
	Query              string
	Operator           *Operator
	Analyzer           *string
	Fuzziness          *string
	MinimumShouldMatch *string
	ZeroTermsQuery     *string
	Lenient            *bool
	Boost              *float64
	QueryName          *string
}

// Match is a shorthand for a match query without options.
func Match(field, text string) *MatchQuery {
	return &MatchQuery{Field: field, Query: text}
}

func (*MatchQuery) Type() Type { return TypeMatch }
func (*MatchQuery) isQuery()   {}

func (q *MatchQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "query", q.Query, func(o *codec.Writer) {
		if q.Operator != nil {
			o.Field("operator", *q.Operator)
		}
		o.OptString("analyzer", q.Analyzer).OptString("fuzziness", q.Fuzziness)
		o.OptString("minimum_should_match", q.MinimumShouldMatch)
		o.OptString("zero_terms_query", q.ZeroTermsQuery).OptBool("lenient", q.Lenient)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *MatchQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *MatchQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func readOperator(r *codec.Reader, key string) *Operator {
	s := r.OptString(key)
	if s == nil {
		return nil
	}
	return ptr(Operator(*s))
}

func decodeMatch(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			c := readCommon(r)
			return &MatchQuery{
				Field:              field,
				Query:              r.String("query"),
				Operator:           readOperator(r, "operator"),
				Analyzer:           r.OptString("analyzer"),
				Fuzziness:          r.OptString("fuzziness"),
				MinimumShouldMatch: r.OptString("minimum_should_match"),
				ZeroTermsQuery:     r.OptString("zero_terms_query"),
				Lenient:            r.OptBool("lenient"),
				Boost:              c.boost,
				QueryName:          c.name,
			}
		},
		stringScalar(func(field, text string) Query { return Match(field, text) }))
}

// MatchBuilder builds a MatchQuery.
type MatchBuilder struct{ q MatchQuery }

func NewMatchBuilder() *MatchBuilder { return &MatchBuilder{} }

func (b *MatchBuilder) Field(f string) *MatchBuilder       { b.q.Field = f; return b }
func (b *MatchBuilder) Query(text string) *MatchBuilder    { b.q.Query = text; return b }
func (b *MatchBuilder) Operator(op Operator) *MatchBuilder { b.q.Operator = &op; return b }
func (b *MatchBuilder) Analyzer(a string) *MatchBuilder    { b.q.Analyzer = &a; return b }
func (b *MatchBuilder) Fuzziness(f string) *MatchBuilder   { b.q.Fuzziness = &f; return b }
func (b *MatchBuilder) MinimumShouldMatch(m string) *MatchBuilder {
	b.q.MinimumShouldMatch = &m
	return b
}
func (b *MatchBuilder) ZeroTermsQuery(z string) *MatchBuilder { b.q.ZeroTermsQuery = &z; return b }
func (b *MatchBuilder) Lenient(v bool) *MatchBuilder          { b.q.Lenient = &v; return b }
func (b *MatchBuilder) Boost(v float64) *MatchBuilder         { b.q.Boost = &v; return b }
func (b *MatchBuilder) QueryName(n string) *MatchBuilder      { b.q.QueryName = &n; return b }

// Build validates that field and query text are set.
func (b *MatchBuilder) Build() (*MatchQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).RequiredString("query", b.q.Query).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// MatchPhraseQuery matches the analyzed text as a phrase.
type MatchPhraseQuery struct {
	Field          string
	Query          string
	Analyzer       *string
	Slop           *int
	ZeroTermsQuery *string
	Boost          *float64
	QueryName      *string
}

func (*MatchPhraseQuery) Type() Type { return TypeMatchPhrase }
func (*MatchPhraseQuery) isQuery()   {}

func (q *MatchPhraseQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "query", q.Query, func(o *codec.Writer) {
		o.OptString("analyzer", q.Analyzer).OptInt("slop", q.Slop)
		o.OptString("zero_terms_query", q.ZeroTermsQuery)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *MatchPhraseQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *MatchPhraseQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeMatchPhrase(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			c := readCommon(r)
			return &MatchPhraseQuery{
				Field:          field,
				Query:          r.String("query"),
				Analyzer:       r.OptString("analyzer"),
				Slop:           r.OptInt("slop"),
				ZeroTermsQuery: r.OptString("zero_terms_query"),
				Boost:          c.boost,
				QueryName:      c.name,
			}
		},
		stringScalar(func(field, text string) Query { return &MatchPhraseQuery{Field: field, Query: text} }))
}

// MatchPhraseBuilder builds a MatchPhraseQuery.
type MatchPhraseBuilder struct{ q MatchPhraseQuery }

func NewMatchPhraseBuilder() *MatchPhraseBuilder { return &MatchPhraseBuilder{} }

func (b *MatchPhraseBuilder) Field(f string) *MatchPhraseBuilder     { b.q.Field = f; return b }
func (b *MatchPhraseBuilder) Query(text string) *MatchPhraseBuilder  { b.q.Query = text; return b }
func (b *MatchPhraseBuilder) Analyzer(a string) *MatchPhraseBuilder  { b.q.Analyzer = &a; return b }
func (b *MatchPhraseBuilder) Slop(n int) *MatchPhraseBuilder         { b.q.Slop = &n; return b }
func (b *MatchPhraseBuilder) Boost(v float64) *MatchPhraseBuilder    { b.q.Boost = &v; return b }
func (b *MatchPhraseBuilder) QueryName(n string) *MatchPhraseBuilder { b.q.QueryName = &n; return b }

func (b *MatchPhraseBuilder) Build() (*MatchPhraseQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).RequiredString("query", b.q.Query).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// MatchPhrasePrefixQuery is a phrase query whose last term is a prefix.
type MatchPhrasePrefixQuery struct {
	Field         string
	Query         string
	Analyzer      *string
	MaxExpansions *int
	Slop          *int
	Boost         *float64
	QueryName     *string
}

func (*MatchPhrasePrefixQuery) Type() Type { return TypeMatchPhrasePrefix }
func (*MatchPhrasePrefixQuery) isQuery()   {}

func (q *MatchPhrasePrefixQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "query", q.Query, func(o *codec.Writer) {
		o.OptString("analyzer", q.Analyzer).OptInt("max_expansions", q.MaxExpansions).OptInt("slop", q.Slop)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *MatchPhrasePrefixQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *MatchPhrasePrefixQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeMatchPhrasePrefix(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			c := readCommon(r)
			return &MatchPhrasePrefixQuery{
				Field:         field,
				Query:         r.String("query"),
				Analyzer:      r.OptString("analyzer"),
				MaxExpansions: r.OptInt("max_expansions"),
				Slop:          r.OptInt("slop"),
				Boost:         c.boost,
				QueryName:     c.name,
			}
		},
		stringScalar(func(field, text string) Query { return &MatchPhrasePrefixQuery{Field: field, Query: text} }))
}

// MatchPhrasePrefixBuilder builds a MatchPhrasePrefixQuery.
type MatchPhrasePrefixBuilder struct{ q MatchPhrasePrefixQuery }

func NewMatchPhrasePrefixBuilder() *MatchPhrasePrefixBuilder { return &MatchPhrasePrefixBuilder{} }

func (b *MatchPhrasePrefixBuilder) Field(f string) *MatchPhrasePrefixBuilder {
	b.q.Field = f
	return b
}

func (b *MatchPhrasePrefixBuilder) Query(text string) *MatchPhrasePrefixBuilder {
	b.q.Query = text
	return b
}

func (b *MatchPhrasePrefixBuilder) MaxExpansions(n int) *MatchPhrasePrefixBuilder {
	b.q.MaxExpansions = &n
	return b
}

func (b *MatchPhrasePrefixBuilder) Slop(n int) *MatchPhrasePrefixBuilder {
	b.q.Slop = &n
	return b
}

func (b *MatchPhrasePrefixBuilder) Build() (*MatchPhrasePrefixQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).RequiredString("query", b.q.Query).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// MultiMatchType selects how a multi_match query scores across fields.
type MultiMatchType string

const (
	MultiMatchBestFields   MultiMatchType = "best_fields"
	MultiMatchMostFields   MultiMatchType = "most_fields"
	MultiMatchCrossFields  MultiMatchType = "cross_fields"
	MultiMatchPhrase       MultiMatchType = "phrase"
	MultiMatchPhrasePrefix MultiMatchType = "phrase_prefix"
	MultiMatchBoolPrefix   MultiMatchType = "bool_prefix"
)

// MultiMatchQuery runs a match query over several fields.
type MultiMatchQuery struct {
	Query              string
	Fields             []string
	MatchType          *MultiMatchType
	Operator           *Operator
	Analyzer           *string
	Fuzziness          *string
	MinimumShouldMatch *string
	TieBreaker         *float64
	Boost              *float64
	QueryName          *string
}

func (*MultiMatchQuery) Type() Type { return TypeMultiMatch }
func (*MultiMatchQuery) isQuery()   {}

func (q *MultiMatchQuery) EncodeBody(w *codec.Writer) error {
	w.Field("query", q.Query)
	if len(q.Fields) > 0 {
		w.Field("fields", q.Fields)
	}
	if q.MatchType != nil {
		w.Field("type", *q.MatchType)
	}
	if q.Operator != nil {
		w.Field("operator", *q.Operator)
	}
	w.OptString("analyzer", q.Analyzer).OptString("fuzziness", q.Fuzziness)
	w.OptString("minimum_should_match", q.MinimumShouldMatch).OptFloat("tie_breaker", q.TieBreaker)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *MultiMatchQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *MultiMatchQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeMultiMatch(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *MultiMatchQuery {
		c := readCommon(r)
		q := &MultiMatchQuery{
			Query:              r.String("query"),
			Fields:             r.Strings("fields"),
			Operator:           readOperator(r, "operator"),
			Analyzer:           r.OptString("analyzer"),
			Fuzziness:          r.OptString("fuzziness"),
			MinimumShouldMatch: r.OptString("minimum_should_match"),
			TieBreaker:         r.OptFloat("tie_breaker"),
			Boost:              c.boost,
			QueryName:          c.name,
		}
		if t := r.OptString("type"); t != nil {
			q.MatchType = ptr(MultiMatchType(*t))
		}
		return q
	})
}

// MultiMatchBuilder builds a MultiMatchQuery.
type MultiMatchBuilder struct{ q MultiMatchQuery }

func NewMultiMatchBuilder() *MultiMatchBuilder { return &MultiMatchBuilder{} }

func (b *MultiMatchBuilder) Query(text string) *MultiMatchBuilder { b.q.Query = text; return b }
func (b *MultiMatchBuilder) Fields(f ...string) *MultiMatchBuilder {
	b.q.Fields = append(b.q.Fields, f...)
	return b
}

func (b *MultiMatchBuilder) MatchType(t MultiMatchType) *MultiMatchBuilder {
	b.q.MatchType = &t
	return b
}

func (b *MultiMatchBuilder) Operator(op Operator) *MultiMatchBuilder { b.q.Operator = &op; return b }
func (b *MultiMatchBuilder) TieBreaker(v float64) *MultiMatchBuilder { b.q.TieBreaker = &v; return b }
func (b *MultiMatchBuilder) Boost(v float64) *MultiMatchBuilder      { b.q.Boost = &v; return b }

func (b *MultiMatchBuilder) Build() (*MultiMatchQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("query", b.q.Query).Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Fields = slices.Clone(b.q.Fields)
	return &q, nil
}

// QueryStringQuery parses Lucene query syntax.
type QueryStringQuery struct {
	Query                string
	DefaultField         *string
	Fields               []string
	DefaultOperator      *Operator
	Analyzer             *string
	AllowLeadingWildcard *bool
	AnalyzeWildcard      *bool
	Fuzziness            *string
	MinimumShouldMatch   *string
	Boost                *float64
	QueryName            *string
}

func (*QueryStringQuery) Type() Type { return TypeQueryString }
func (*QueryStringQuery) isQuery()   {}

func (q *QueryStringQuery) EncodeBody(w *codec.Writer) error {
	w.Field("query", q.Query)
	w.OptString("default_field", q.DefaultField)
	if len(q.Fields) > 0 {
		w.Field("fields", q.Fields)
	}
	if q.DefaultOperator != nil {
		w.Field("default_operator", *q.DefaultOperator)
	}
	w.OptString("analyzer", q.Analyzer)
	w.OptBool("allow_leading_wildcard", q.AllowLeadingWildcard).OptBool("analyze_wildcard", q.AnalyzeWildcard)
	w.OptString("fuzziness", q.Fuzziness).OptString("minimum_should_match", q.MinimumShouldMatch)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *QueryStringQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *QueryStringQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeQueryString(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *QueryStringQuery {
		c := readCommon(r)
		return &QueryStringQuery{
			Query:                r.String("query"),
			DefaultField:         r.OptString("default_field"),
			Fields:               r.Strings("fields"),
			DefaultOperator:      readOperator(r, "default_operator"),
			Analyzer:             r.OptString("analyzer"),
			AllowLeadingWildcard: r.OptBool("allow_leading_wildcard"),
			AnalyzeWildcard:      r.OptBool("analyze_wildcard"),
			Fuzziness:            r.OptString("fuzziness"),
			MinimumShouldMatch:   r.OptString("minimum_should_match"),
			Boost:                c.boost,
			QueryName:            c.name,
		}
	})
}

// QueryStringBuilder builds a QueryStringQuery.
type QueryStringBuilder struct{ q QueryStringQuery }

func NewQueryStringBuilder() *QueryStringBuilder { return &QueryStringBuilder{} }

func (b *QueryStringBuilder) Query(text string) *QueryStringBuilder { b.q.Query = text; return b }
func (b *QueryStringBuilder) DefaultField(f string) *QueryStringBuilder {
	b.q.DefaultField = &f
	return b
}
func (b *QueryStringBuilder) Fields(f ...string) *QueryStringBuilder {
	b.q.Fields = append(b.q.Fields, f...)
	return b
}
func (b *QueryStringBuilder) DefaultOperator(op Operator) *QueryStringBuilder {
	b.q.DefaultOperator = &op
	return b
}
func (b *QueryStringBuilder) Boost(v float64) *QueryStringBuilder { b.q.Boost = &v; return b }

func (b *QueryStringBuilder) Build() (*QueryStringQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("query", b.q.Query).Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Fields = slices.Clone(b.q.Fields)
	return &q, nil
}

// SimpleQueryStringQuery parses a forgiving subset of query syntax.
type SimpleQueryStringQuery struct {
	Query           string
	Fields          []string
	DefaultOperator *Operator
	Analyzer        *string
	Flags           *string
	Boost           *float64
	QueryName       *string
}

func (*SimpleQueryStringQuery) Type() Type { return TypeSimpleQueryString }
func (*SimpleQueryStringQuery) isQuery()   {}

func (q *SimpleQueryStringQuery) EncodeBody(w *codec.Writer) error {
	w.Field("query", q.Query)
	if len(q.Fields) > 0 {
		w.Field("fields", q.Fields)
	}
	if q.DefaultOperator != nil {
		w.Field("default_operator", *q.DefaultOperator)
	}
	w.OptString("analyzer", q.Analyzer).OptString("flags", q.Flags)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *SimpleQueryStringQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *SimpleQueryStringQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeSimpleQueryString(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *SimpleQueryStringQuery {
		c := readCommon(r)
		return &SimpleQueryStringQuery{
			Query:           r.String("query"),
			Fields:          r.Strings("fields"),
			DefaultOperator: readOperator(r, "default_operator"),
			Analyzer:        r.OptString("analyzer"),
			Flags:           r.OptString("flags"),
			Boost:           c.boost,
			QueryName:       c.name,
		}
	})
}

// SimpleQueryStringBuilder builds a SimpleQueryStringQuery.
type SimpleQueryStringBuilder struct{ q SimpleQueryStringQuery }

func NewSimpleQueryStringBuilder() *SimpleQueryStringBuilder { return &SimpleQueryStringBuilder{} }

func (b *SimpleQueryStringBuilder) Query(text string) *SimpleQueryStringBuilder {
	b.q.Query = text
	return b
}

func (b *SimpleQueryStringBuilder) Fields(f ...string) *SimpleQueryStringBuilder {
	b.q.Fields = append(b.q.Fields, f...)
	return b
}

func (b *SimpleQueryStringBuilder) DefaultOperator(op Operator) *SimpleQueryStringBuilder {
	b.q.DefaultOperator = &op
	return b
}

func (b *SimpleQueryStringBuilder) Flags(f string) *SimpleQueryStringBuilder {
	b.q.Flags = &f
	return b
}

func (b *SimpleQueryStringBuilder) Build() (*SimpleQueryStringQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("query", b.q.Query).Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Fields = slices.Clone(b.q.Fields)
	return &q, nil
}
