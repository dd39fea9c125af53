package query

import (
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// TermQuery matches documents whose field holds exactly Value.
type TermQuery struct {
	Field           string
	Value           any
	Boost           *float64
	CaseInsensitive *bool
	QueryName       *string
}

// Term is a shorthand for a term query without options.
func Term(field string, value any) *TermQuery {
	return &TermQuery{Field: field, Value: value}
}

func (*TermQuery) Type() Type { return TypeTerm }
func (*TermQuery) isQuery()   {}

func (q *TermQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "value", q.Value, func(o *codec.Writer) {
		o.OptBool("case_insensitive", q.CaseInsensitive)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *TermQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *TermQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeTerm(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			var v any
			r.Decode("value", &v)
			c := readCommon(r)
			return &TermQuery{
				Field:           field,
				Value:           v,
				CaseInsensitive: r.OptBool("case_insensitive"),
				Boost:           c.boost,
				QueryName:       c.name,
			}
		},
		func(field string, raw []byte) (Query, error) {
			v, err := codec.ScalarValue(raw)
			if err != nil {
				return nil, err
			}
			return &TermQuery{Field: field, Value: v}, nil
		})
}

// TermBuilder builds a TermQuery.
type TermBuilder struct{ q TermQuery }

func NewTermBuilder() *TermBuilder { return &TermBuilder{} }

func (b *TermBuilder) Field(f string) *TermBuilder         { b.q.Field = f; return b }
func (b *TermBuilder) Value(v any) *TermBuilder            { b.q.Value = v; return b }
func (b *TermBuilder) Boost(v float64) *TermBuilder        { b.q.Boost = &v; return b }
func (b *TermBuilder) CaseInsensitive(v bool) *TermBuilder { b.q.CaseInsensitive = &v; return b }
func (b *TermBuilder) QueryName(n string) *TermBuilder     { b.q.QueryName = &n; return b }

// Build validates that field and value are set.
func (b *TermBuilder) Build() (*TermQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).Required("value", b.q.Value != nil).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// TermsQuery matches documents whose field holds any of Values.
type TermsQuery struct {
	Field     string
	Values    []any
	Boost     *float64
	QueryName *string
}

// Terms is a shorthand for a terms query.
func Terms(field string, values ...any) *TermsQuery {
	return &TermsQuery{Field: field, Values: values}
}

func (*TermsQuery) Type() Type { return TypeTerms }
func (*TermsQuery) isQuery()   {}

func (q *TermsQuery) EncodeBody(w *codec.Writer) error {
	values := q.Values
	if values == nil {
		values = []any{}
	}
	w.Field(q.Field, values)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *TermsQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *TermsQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeTerms(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *TermsQuery {
		field, _ := splitField(r, "boost", "_name")
		var values []any
		r.Decode(field, &values)
		c := readCommon(r)
		return &TermsQuery{Field: field, Values: values, Boost: c.boost, QueryName: c.name}
	})
}

// TermsBuilder builds a TermsQuery.
type TermsBuilder struct{ q TermsQuery }

func NewTermsBuilder() *TermsBuilder { return &TermsBuilder{} }

func (b *TermsBuilder) Field(f string) *TermsBuilder     { b.q.Field = f; return b }
func (b *TermsBuilder) Values(v ...any) *TermsBuilder    { b.q.Values = append(b.q.Values, v...); return b }
func (b *TermsBuilder) Boost(v float64) *TermsBuilder    { b.q.Boost = &v; return b }
func (b *TermsBuilder) QueryName(n string) *TermsBuilder { b.q.QueryName = &n; return b }

// Build validates that the field and at least one value are set.
func (b *TermsBuilder) Build() (*TermsQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).NotEmpty("values", len(b.q.Values)).Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Values = slices.Clone(b.q.Values)
	return &q, nil
}

// RangeQuery matches documents whose field falls within the given bounds.
type RangeQuery struct {
	Field     string
	GT        any
	GTE       any
	LT        any
	LTE       any
	Format    *string
	TimeZone  *string
	Relation  *string
	Boost     *float64
	QueryName *string
}

func (*RangeQuery) Type() Type { return TypeRange }
func (*RangeQuery) isQuery()   {}

func (q *RangeQuery) EncodeBody(w *codec.Writer) error {
	w.Object(q.Field, func(o *codec.Writer) error {
		o.OptValue("gt", q.GT).OptValue("gte", q.GTE).OptValue("lt", q.LT).OptValue("lte", q.LTE)
		o.OptString("format", q.Format).OptString("time_zone", q.TimeZone).OptString("relation", q.Relation)
		writeCommon(o, q.Boost, q.QueryName)
		return o.Err()
	})
	return w.Err()
}

func (q *RangeQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *RangeQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeRange(in codec.Input) (Query, error) {
	field, raw, err := fieldScoped(in)
	if err != nil {
		return nil, err
	}
	r, err := codec.NewReader(raw)
	if err != nil {
		return nil, err
	}
	c := readCommon(r)
	q := &RangeQuery{
		Field:     field,
		GT:        r.OptValue("gt"),
		GTE:       r.OptValue("gte"),
		LT:        r.OptValue("lt"),
		LTE:       r.OptValue("lte"),
		Format:    r.OptString("format"),
		TimeZone:  r.OptString("time_zone"),
		Relation:  r.OptString("relation"),
		Boost:     c.boost,
		QueryName: c.name,
	}
	return q, r.Err()
}

// RangeBuilder builds a RangeQuery.
type RangeBuilder struct{ q RangeQuery }

func NewRangeBuilder() *RangeBuilder { return &RangeBuilder{} }

func (b *RangeBuilder) Field(f string) *RangeBuilder     { b.q.Field = f; return b }
func (b *RangeBuilder) GT(v any) *RangeBuilder           { b.q.GT = v; return b }
func (b *RangeBuilder) GTE(v any) *RangeBuilder          { b.q.GTE = v; return b }
func (b *RangeBuilder) LT(v any) *RangeBuilder           { b.q.LT = v; return b }
func (b *RangeBuilder) LTE(v any) *RangeBuilder          { b.q.LTE = v; return b }
func (b *RangeBuilder) Format(f string) *RangeBuilder    { b.q.Format = &f; return b }
func (b *RangeBuilder) TimeZone(tz string) *RangeBuilder { b.q.TimeZone = &tz; return b }
func (b *RangeBuilder) Relation(r string) *RangeBuilder  { b.q.Relation = &r; return b }
func (b *RangeBuilder) Boost(v float64) *RangeBuilder    { b.q.Boost = &v; return b }
func (b *RangeBuilder) QueryName(n string) *RangeBuilder { b.q.QueryName = &n; return b }

// Build validates that the field and at least one bound are set.
func (b *RangeBuilder) Build() (*RangeQuery, error) {
	var v domain.Validator
	err := v.RequiredString("field", b.q.Field).
		AtLeastOne([]string{"gt", "gte", "lt", "lte"},
			b.q.GT != nil, b.q.GTE != nil, b.q.LT != nil, b.q.LTE != nil).
		Err()
	if err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// PrefixQuery matches documents whose field starts with Value.
type PrefixQuery struct {
	Field           string
	Value           string
	Rewrite         *string
	CaseInsensitive *bool
	Boost           *float64
	QueryName       *string
}

// Prefix is a shorthand for a prefix query without options.
func Prefix(field, value string) *PrefixQuery {
	return &PrefixQuery{Field: field, Value: value}
}

func (*PrefixQuery) Type() Type { return TypePrefix }
func (*PrefixQuery) isQuery()   {}

func (q *PrefixQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "value", q.Value, func(o *codec.Writer) {
		o.OptString("rewrite", q.Rewrite).OptBool("case_insensitive", q.CaseInsensitive)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *PrefixQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *PrefixQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodePrefix(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			c := readCommon(r)
			return &PrefixQuery{
				Field:           field,
				Value:           r.String("value"),
				Rewrite:         r.OptString("rewrite"),
				CaseInsensitive: r.OptBool("case_insensitive"),
				Boost:           c.boost,
				QueryName:       c.name,
			}
		},
		stringScalar(func(field, value string) Query { return Prefix(field, value) }))
}

// PrefixBuilder builds a PrefixQuery.
type PrefixBuilder struct{ q PrefixQuery }

func NewPrefixBuilder() *PrefixBuilder { return &PrefixBuilder{} }

func (b *PrefixBuilder) Field(f string) *PrefixBuilder         { b.q.Field = f; return b }
func (b *PrefixBuilder) Value(v string) *PrefixBuilder         { b.q.Value = v; return b }
func (b *PrefixBuilder) Rewrite(r string) *PrefixBuilder       { b.q.Rewrite = &r; return b }
func (b *PrefixBuilder) CaseInsensitive(v bool) *PrefixBuilder { b.q.CaseInsensitive = &v; return b }
func (b *PrefixBuilder) Boost(v float64) *PrefixBuilder        { b.q.Boost = &v; return b }
func (b *PrefixBuilder) QueryName(n string) *PrefixBuilder     { b.q.QueryName = &n; return b }

func (b *PrefixBuilder) Build() (*PrefixQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).RequiredString("value", b.q.Value).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// WildcardQuery matches documents whose field matches a wildcard pattern.
type WildcardQuery struct {
	Field           string
	Value           string
	Rewrite         *string
	CaseInsensitive *bool
	Boost           *float64
	QueryName       *string
}

func (*WildcardQuery) Type() Type { return TypeWildcard }
func (*WildcardQuery) isQuery()   {}

func (q *WildcardQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "value", q.Value, func(o *codec.Writer) {
		o.OptString("rewrite", q.Rewrite).OptBool("case_insensitive", q.CaseInsensitive)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *WildcardQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *WildcardQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeWildcard(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			c := readCommon(r)
			value := r.OptString("value")
			if value == nil {
				// wildcard also accepts the pattern under "wildcard".
				value = ptr(r.String("wildcard"))
			}
			return &WildcardQuery{
				Field:           field,
				Value:           *value,
				Rewrite:         r.OptString("rewrite"),
				CaseInsensitive: r.OptBool("case_insensitive"),
				Boost:           c.boost,
				QueryName:       c.name,
			}
		},
		stringScalar(func(field, value string) Query { return &WildcardQuery{Field: field, Value: value} }))
}

// WildcardBuilder builds a WildcardQuery.
type WildcardBuilder struct{ q WildcardQuery }

func NewWildcardBuilder() *WildcardBuilder { return &WildcardBuilder{} }

func (b *WildcardBuilder) Field(f string) *WildcardBuilder         { b.q.Field = f; return b }
func (b *WildcardBuilder) Value(v string) *WildcardBuilder         { b.q.Value = v; return b }
func (b *WildcardBuilder) Rewrite(r string) *WildcardBuilder       { b.q.Rewrite = &r; return b }
func (b *WildcardBuilder) CaseInsensitive(v bool) *WildcardBuilder { b.q.CaseInsensitive = &v; return b }
func (b *WildcardBuilder) Boost(v float64) *WildcardBuilder        { b.q.Boost = &v; return b }
func (b *WildcardBuilder) QueryName(n string) *WildcardBuilder     { b.q.QueryName = &n; return b }

func (b *WildcardBuilder) Build() (*WildcardQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).RequiredString("value", b.q.Value).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// RegexpQuery matches documents whose field matches a regular expression.
type RegexpQuery struct {
	Field                 string
	Value                 string
	Flags                 *string
	MaxDeterminizedStates *int
	Rewrite               *string
	CaseInsensitive       *bool
	Boost                 *float64
	QueryName             *string
}

func (*RegexpQuery) Type() Type { return TypeRegexp }
func (*RegexpQuery) isQuery()   {}

func (q *RegexpQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "value", q.Value, func(o *codec.Writer) {
		o.OptString("flags", q.Flags).OptInt("max_determinized_states", q.MaxDeterminizedStates)
		o.OptString("rewrite", q.Rewrite).OptBool("case_insensitive", q.CaseInsensitive)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *RegexpQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *RegexpQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeRegexp(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			c := readCommon(r)
			return &RegexpQuery{
				Field:                 field,
				Value:                 r.String("value"),
				Flags:                 r.OptString("flags"),
				MaxDeterminizedStates: r.OptInt("max_determinized_states"),
				Rewrite:               r.OptString("rewrite"),
				CaseInsensitive:       r.OptBool("case_insensitive"),
				Boost:                 c.boost,
				QueryName:             c.name,
			}
		},
		stringScalar(func(field, value string) Query { return &RegexpQuery{Field: field, Value: value} }))
}

// RegexpBuilder builds a RegexpQuery.
type RegexpBuilder struct{ q RegexpQuery }

func NewRegexpBuilder() *RegexpBuilder { return &RegexpBuilder{} }

func (b *RegexpBuilder) Field(f string) *RegexpBuilder { b.q.Field = f; return b }
func (b *RegexpBuilder) Value(v string) *RegexpBuilder { b.q.Value = v; return b }
func (b *RegexpBuilder) Flags(f string) *RegexpBuilder { b.q.Flags = &f; return b }

func (b *RegexpBuilder) MaxDeterminizedStates(n int) *RegexpBuilder {
	b.q.MaxDeterminizedStates = &n
	return b
}

func (b *RegexpBuilder) Rewrite(r string) *RegexpBuilder       { b.q.Rewrite = &r; return b }
func (b *RegexpBuilder) CaseInsensitive(v bool) *RegexpBuilder { b.q.CaseInsensitive = &v; return b }
func (b *RegexpBuilder) Boost(v float64) *RegexpBuilder        { b.q.Boost = &v; return b }
func (b *RegexpBuilder) QueryName(n string) *RegexpBuilder     { b.q.QueryName = &n; return b }

func (b *RegexpBuilder) Build() (*RegexpQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).RequiredString("value", b.q.Value).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// FuzzyQuery matches terms within an edit distance of Value.
type FuzzyQuery struct {
	Field          string
	Value          string
	Fuzziness      *string
	PrefixLength   *int
	MaxExpansions  *int
	Transpositions *bool
	Rewrite        *string
	Boost          *float64
	QueryName      *string
}

func (*FuzzyQuery) Type() Type { return TypeFuzzy }
func (*FuzzyQuery) isQuery()   {}

func (q *FuzzyQuery) EncodeBody(w *codec.Writer) error {
	writeFieldScoped(w, q.Field, "value", q.Value, func(o *codec.Writer) {
		o.OptString("fuzziness", q.Fuzziness).OptInt("prefix_length", q.PrefixLength)
		o.OptInt("max_expansions", q.MaxExpansions).OptBool("transpositions", q.Transpositions)
		o.OptString("rewrite", q.Rewrite)
		writeCommon(o, q.Boost, q.QueryName)
	})
	return w.Err()
}

func (q *FuzzyQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *FuzzyQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeFuzzy(in codec.Input) (Query, error) {
	return decodeFieldScoped(in,
		func(field string, r *codec.Reader) Query {
			c := readCommon(r)
			return &FuzzyQuery{
				Field:          field,
				Value:          r.String("value"),
				Fuzziness:      r.OptString("fuzziness"),
				PrefixLength:   r.OptInt("prefix_length"),
				MaxExpansions:  r.OptInt("max_expansions"),
				Transpositions: r.OptBool("transpositions"),
				Rewrite:        r.OptString("rewrite"),
				Boost:          c.boost,
				QueryName:      c.name,
			}
		},
		stringScalar(func(field, value string) Query { return &FuzzyQuery{Field: field, Value: value} }))
}

// FuzzyBuilder builds a FuzzyQuery.
type FuzzyBuilder struct{ q FuzzyQuery }

func NewFuzzyBuilder() *FuzzyBuilder { return &FuzzyBuilder{} }

func (b *FuzzyBuilder) Field(f string) *FuzzyBuilder        { b.q.Field = f; return b }
func (b *FuzzyBuilder) Value(v string) *FuzzyBuilder        { b.q.Value = v; return b }
func (b *FuzzyBuilder) Fuzziness(f string) *FuzzyBuilder    { b.q.Fuzziness = &f; return b }
func (b *FuzzyBuilder) PrefixLength(n int) *FuzzyBuilder    { b.q.PrefixLength = &n; return b }
func (b *FuzzyBuilder) MaxExpansions(n int) *FuzzyBuilder   { b.q.MaxExpansions = &n; return b }
func (b *FuzzyBuilder) Transpositions(v bool) *FuzzyBuilder { b.q.Transpositions = &v; return b }
func (b *FuzzyBuilder) Rewrite(r string) *FuzzyBuilder      { b.q.Rewrite = &r; return b }
func (b *FuzzyBuilder) Boost(v float64) *FuzzyBuilder       { b.q.Boost = &v; return b }
func (b *FuzzyBuilder) QueryName(n string) *FuzzyBuilder    { b.q.QueryName = &n; return b }

func (b *FuzzyBuilder) Build() (*FuzzyQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).RequiredString("value", b.q.Value).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// ExistsQuery matches documents that have an indexed value for Field.
type ExistsQuery struct {
	Field     string
	Boost     *float64
	QueryName *string
}

// Exists is a shorthand for an exists query.
func Exists(field string) *ExistsQuery { return &ExistsQuery{Field: field} }

func (*ExistsQuery) Type() Type { return TypeExists }
func (*ExistsQuery) isQuery()   {}

func (q *ExistsQuery) EncodeBody(w *codec.Writer) error {
	w.Field("field", q.Field)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *ExistsQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *ExistsQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeExists(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *ExistsQuery {
		c := readCommon(r)
		return &ExistsQuery{Field: r.String("field"), Boost: c.boost, QueryName: c.name}
	})
}

// ExistsBuilder builds an ExistsQuery.
type ExistsBuilder struct{ q ExistsQuery }

func NewExistsBuilder() *ExistsBuilder { return &ExistsBuilder{} }

func (b *ExistsBuilder) Field(f string) *ExistsBuilder     { b.q.Field = f; return b }
func (b *ExistsBuilder) Boost(v float64) *ExistsBuilder    { b.q.Boost = &v; return b }
func (b *ExistsBuilder) QueryName(n string) *ExistsBuilder { b.q.QueryName = &n; return b }

func (b *ExistsBuilder) Build() (*ExistsQuery, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.q.Field).Err(); err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}

// IDsQuery matches documents by their _id.
type IDsQuery struct {
	Values    []string
	Boost     *float64
	QueryName *string
}

// IDs is a shorthand for an ids query.
func IDs(values ...string) *IDsQuery { return &IDsQuery{Values: values} }

func (*IDsQuery) Type() Type { return TypeIDs }
func (*IDsQuery) isQuery()   {}

func (q *IDsQuery) EncodeBody(w *codec.Writer) error {
	values := q.Values
	if values == nil {
		values = []string{}
	}
	w.Field("values", values)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *IDsQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *IDsQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeIDs(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *IDsQuery {
		c := readCommon(r)
		return &IDsQuery{Values: r.Strings("values"), Boost: c.boost, QueryName: c.name}
	})
}

// IDsBuilder builds an IDsQuery.
type IDsBuilder struct{ q IDsQuery }

func NewIDsBuilder() *IDsBuilder { return &IDsBuilder{} }

func (b *IDsBuilder) Values(ids ...string) *IDsBuilder {
	b.q.Values = append(b.q.Values, ids...)
	return b
}

func (b *IDsBuilder) Boost(v float64) *IDsBuilder    { b.q.Boost = &v; return b }
func (b *IDsBuilder) QueryName(n string) *IDsBuilder { b.q.QueryName = &n; return b }

func (b *IDsBuilder) Build() (*IDsQuery, error) {
	var v domain.Validator
	if err := v.NotEmpty("values", len(b.q.Values)).Err(); err != nil {
		return nil, err
	}
	q := b.q
	q.Values = slices.Clone(b.q.Values)
	return &q, nil
}
