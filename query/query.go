// Package query implements the Elasticsearch query DSL as a closed family of
// variants. Every query encodes as an object keyed by its type tag:
//
//	{"bool": {"must": [{"term": {"user": "kimchy"}}]}}
//
// Queries are built directly with a struct literal, through a builder whose
// Build method validates mandatory fields, or decoded with Unmarshal.
package query

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
)

// Type is the tag of a query variant.
type Type string

// Query tags.
const (
	TypeMatchAll          Type = "match_all"
	TypeMatchNone         Type = "match_none"
	TypeTerm              Type = "term"
	TypeTerms             Type = "terms"
	TypeRange             Type = "range"
	TypePrefix            Type = "prefix"
	TypeWildcard          Type = "wildcard"
	TypeRegexp            Type = "regexp"
	TypeFuzzy             Type = "fuzzy"
	TypeExists            Type = "exists"
	TypeIDs               Type = "ids"
	TypeMatch             Type = "match"
	TypeMatchPhrase       Type = "match_phrase"
	TypeMatchPhrasePrefix Type = "match_phrase_prefix"
	TypeMultiMatch        Type = "multi_match"
	TypeQueryString       Type = "query_string"
	TypeSimpleQueryString Type = "simple_query_string"
	TypeBool              Type = "bool"
	TypeBoosting          Type = "boosting"
	TypeConstantScore     Type = "constant_score"
	TypeDisMax            Type = "dis_max"
	TypeFunctionScore     Type = "function_score"
	TypeNested            Type = "nested"
	TypeGeoDistance       Type = "geo_distance"
	TypeKNN               Type = "knn"
)

// AllTypes returns every query tag.
func AllTypes() []Type {
	return []Type{
		TypeMatchAll, TypeMatchNone, TypeTerm, TypeTerms, TypeRange, TypePrefix,
		TypeWildcard, TypeRegexp, TypeFuzzy, TypeExists, TypeIDs, TypeMatch,
		TypeMatchPhrase, TypeMatchPhrasePrefix, TypeMultiMatch, TypeQueryString,
		TypeSimpleQueryString, TypeBool, TypeBoosting, TypeConstantScore, TypeDisMax,
		TypeFunctionScore, TypeNested, TypeGeoDistance, TypeKNN,
	}
}

// Query is any member of the query family.
type Query interface {
	// Type returns the tag the query is keyed by on the wire.
	Type() Type
	// EncodeBody writes the fields nested under the tag.
	EncodeBody(w *codec.Writer) error
	// IsEqualTo reports structural equality with another query of any type.
	IsEqualTo(other Query) bool
	MarshalJSON() ([]byte, error)

	isQuery()
}

var registry *codec.Registry[Query]

func init() {
	registry = codec.NewRegistry[Query]("query").
		Register(string(TypeMatchAll), decodeMatchAll).
		Register(string(TypeMatchNone), decodeMatchNone).
		Register(string(TypeTerm), decodeTerm).
		Register(string(TypeTerms), decodeTerms).
		Register(string(TypeRange), decodeRange).
		Register(string(TypePrefix), decodePrefix).
		Register(string(TypeWildcard), decodeWildcard).
		Register(string(TypeRegexp), decodeRegexp).
		Register(string(TypeFuzzy), decodeFuzzy).
		Register(string(TypeExists), decodeExists).
		Register(string(TypeIDs), decodeIDs).
		Register(string(TypeMatch), decodeMatch).
		Register(string(TypeMatchPhrase), decodeMatchPhrase).
		Register(string(TypeMatchPhrasePrefix), decodeMatchPhrasePrefix).
		Register(string(TypeMultiMatch), decodeMultiMatch).
		Register(string(TypeQueryString), decodeQueryString).
		Register(string(TypeSimpleQueryString), decodeSimpleQueryString).
		Register(string(TypeBool), decodeBool).
		Register(string(TypeBoosting), decodeBoosting).
		Register(string(TypeConstantScore), decodeConstantScore).
		Register(string(TypeDisMax), decodeDisMax).
		Register(string(TypeFunctionScore), decodeFunctionScore).
		Register(string(TypeNested), decodeNested).
		Register(string(TypeGeoDistance), decodeGeoDistance).
		Register(string(TypeKNN), decodeKNN)
}

// Registry returns the tag registry of the query family.
func Registry() *codec.Registry[Query] { return registry }

// Unmarshal decodes any query from its tagged JSON form.
func Unmarshal(data []byte) (Query, error) {
	return registry.Decode(data)
}

// UnmarshalList decodes a list of queries. A single query object is accepted
// as a list of one, as the cluster does for bool clauses.
func UnmarshalList(elems [][]byte) ([]Query, error) {
	return registry.DecodeList(elems)
}

// Equal compares two possibly nil queries.
func Equal(a, b Query) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqualTo(b)
}

func marshal(q Query) ([]byte, error) {
	return codec.MarshalTagged(string(q.Type()), q)
}

// decodeObject parses the tagged body and runs fn over it, surfacing the
// reader's sticky error.
func decodeObject[T Query](in codec.Input, fn func(r *codec.Reader) T) (Query, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	q := fn(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return q, nil
}

// optQuery decodes a nested query under key, when present.
func optQuery(r *codec.Reader, key string) Query {
	raw := r.Raw(key)
	if raw == nil {
		return nil
	}
	q, err := Unmarshal(raw)
	if err != nil {
		r.Fail(err)
		return nil
	}
	return q
}

// requiredQuery decodes a nested query under key.
func requiredQuery(r *codec.Reader, key string) Query {
	if !r.Has(key) {
		_ = r.String(key)
		return nil
	}
	return optQuery(r, key)
}

func queryList(r *codec.Reader, key string) []Query {
	qs, err := UnmarshalList(r.Elements(key))
	if err != nil {
		r.Fail(err)
		return nil
	}
	return qs
}

// common holds the modifiers most queries accept.
type common struct {
	boost *float64
	name  *string
}

func readCommon(r *codec.Reader) common {
	return common{boost: r.OptFloat("boost"), name: r.OptString("_name")}
}

func writeCommon(w *codec.Writer, boost *float64, name *string) {
	w.OptFloat("boost", boost).OptString("_name", name)
}

func ptr[T any](v T) *T { return &v }
