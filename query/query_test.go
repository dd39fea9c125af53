package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

func sampleQueries() []Query {
	return []Query{
		MatchAll(),
		&MatchAllQuery{Boost: ptr(1.2)},
		&MatchNoneQuery{QueryName: ptr("none")},
		Term("user", "kimchy"),
		&TermQuery{Field: "user.id", Value: "kimchy", Boost: ptr(2.0), CaseInsensitive: ptr(true)},
		Terms("tags", "go", "search"),
		&RangeQuery{Field: "age", GTE: 10.0, LT: 20.0, Boost: ptr(2.0)},
		&RangeQuery{Field: "timestamp", GTE: "now-1d/d", Format: ptr("strict_date_optional_time"), TimeZone: ptr("+01:00")},
		Prefix("user", "ki"),
		&PrefixQuery{Field: "user", Value: "ki", CaseInsensitive: ptr(true)},
		&WildcardQuery{Field: "user", Value: "ki*y", Rewrite: ptr("constant_score")},
		&RegexpQuery{Field: "user", Value: "k.*y", Flags: ptr("ALL"), MaxDeterminizedStates: ptr(10000)},
		&FuzzyQuery{Field: "user", Value: "ki", Fuzziness: ptr("AUTO"), PrefixLength: ptr(1)},
		Exists("user"),
		IDs("1", "4", "100"),
		Match("message", "this is a test"),
		&MatchQuery{Field: "message", Query: "to be or not", Operator: ptr(OperatorAnd), ZeroTermsQuery: ptr("all")},
		&MatchPhraseQuery{Field: "message", Query: "this is a test", Slop: ptr(2)},
		&MatchPhrasePrefixQuery{Field: "message", Query: "quick brown f", MaxExpansions: ptr(10)},
		&MultiMatchQuery{Query: "brown fox", Fields: []string{"subject", "message^2"}, MatchType: ptr(MultiMatchBestFields), TieBreaker: ptr(0.3)},
		&QueryStringQuery{Query: "(new york city) OR (big apple)", DefaultField: ptr("content")},
		&SimpleQueryStringQuery{Query: `"fried eggs" +(eggplant | potato)`, Fields: []string{"title^5", "body"}, DefaultOperator: ptr(OperatorAnd)},
		&BoolQuery{
			Must:               []Query{Term("user", "kimchy")},
			Filter:             []Query{Term("tags", "production")},
			Should:             []Query{Term("tags", "env1"), Term("tags", "deployed")},
			MustNot:            []Query{&RangeQuery{Field: "age", GTE: 10.0, LTE: 20.0}},
			MinimumShouldMatch: ptr("1"),
			Boost:              ptr(1.0),
		},
		&BoostingQuery{Positive: Term("text", "apple"), Negative: Term("text", "pie"), NegativeBoost: 0.5},
		&ConstantScoreQuery{Filter: Term("user", "kimchy"), Boost: ptr(1.2)},
		&DisMaxQuery{Queries: []Query{Term("title", "Quick pets"), Term("body", "Quick pets")}, TieBreaker: ptr(0.7)},
		&NestedQuery{Path: "obj1", Query: Match("obj1.name", "blue"), ScoreMode: ptr("avg")},
		&FunctionScoreQuery{
			Query: MatchAll(),
			Functions: []ScoreFunction{
				&WeightFunction{Weight: 23, Filter: Match("test", "bar")},
				&RandomScoreFunction{Seed: ptr(10), Field: ptr("_seq_no"), Weight: ptr(2.0)},
				&FieldValueFactorFunction{Field: "my-int", Factor: ptr(1.2), Modifier: ptr("sqrt"), Missing: ptr(1.0)},
				&ScriptScoreFunction{Script: InlineScript("Math.log(2 + doc['my-int'].value)")},
				&DecayFunction{Kind: FunctionGauss, Field: "date", Origin: "2013-09-17", Scale: "10d", Offset: "5d", Decay: ptr(0.5)},
				&DecayFunction{Kind: FunctionExp, Field: "price", Origin: 0.0, Scale: 20.0, MultiValueMode: ptr("avg"), Filter: Exists("price")},
			},
			ScoreMode: ptr("max"),
			BoostMode: ptr("multiply"),
			MaxBoost:  ptr(42.0),
		},
		&GeoDistanceQuery{Field: "pin.location", Point: LatLon(40, -70), Distance: "200km"},
		&GeoDistanceQuery{Field: "pin.location", Point: Geohash("drm3btev3e86"), Distance: "12km", DistanceType: ptr("arc")},
		&KNNQuery{Field: "image-vector", QueryVector: []float32{-5, 9, -12}, K: ptr(10), NumCandidates: ptr(100), Filter: []Query{Term("file-type", "png")}},
	}
}

func TestRoundTrip(t *testing.T) {
	for _, q := range sampleQueries() {
		t.Run(string(q.Type()), func(t *testing.T) {
			b, err := q.MarshalJSON()
			require.NoError(t, err)

			got, err := Unmarshal(b)
			require.NoError(t, err, string(b))
			assert.Equal(t, q.Type(), got.Type())
			assert.True(t, Equal(q, got), "round trip of %s", b)
		})
	}
}

func TestRoundTrip_IntegerValues(t *testing.T) {
	tests := []Query{
		Term("year", 2020),
		&TermQuery{Field: "year", Value: 2020, Boost: ptr(2.0)},
		Terms("year", 2020, int64(2021)),
		&RangeQuery{Field: "year", GTE: 1990, LT: uint(2000)},
	}
	for _, q := range tests {
		b, err := q.MarshalJSON()
		require.NoError(t, err)

		got, err := Unmarshal(b)
		require.NoError(t, err, string(b))
		assert.True(t, Equal(q, got), "round trip of %s", b)
	}

	assert.False(t, Equal(Term("year", 2020), Term("year", 2021)))
}

func TestRegistryTotal(t *testing.T) {
	reg := Registry()
	assert.Len(t, reg.Tags(), len(AllTypes()))
	for _, tag := range AllTypes() {
		_, err := reg.MetaType(string(tag))
		assert.NoError(t, err, tag)
	}

	fnReg := FunctionRegistry()
	assert.Len(t, fnReg.Tags(), len(AllFunctionTypes()))
	for _, tag := range AllFunctionTypes() {
		_, err := fnReg.MetaType(string(tag))
		assert.NoError(t, err, tag)
	}
}

func TestEncode_TwoShape(t *testing.T) {
	tests := []struct {
		name string
		q    Query
		want string
	}{
		{"bare term", Term("user", "kimchy"), `{"term":{"user":"kimchy"}}`},
		{"term options", &TermQuery{Field: "user", Value: "kimchy", Boost: ptr(2.0)}, `{"term":{"user":{"value":"kimchy","boost":2}}}`},
		{"bare match", Match("message", "hello"), `{"match":{"message":"hello"}}`},
		{"match options", &MatchQuery{Field: "message", Query: "hello", Operator: ptr(OperatorAnd)}, `{"match":{"message":{"query":"hello","operator":"and"}}}`},
		{"dotted field", Prefix("user.name", "ki"), `{"prefix":{"user.name":"ki"}}`},
		{"match all", MatchAll(), `{"match_all":{}}`},
		{"terms", Terms("user", "a", "b"), `{"terms":{"user":["a","b"]}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := tt.q.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(b))
		})
	}
}

func TestDecode_TwoShapeEquivalence(t *testing.T) {
	bare, err := Unmarshal([]byte(`{"match":{"message":"hello"}}`))
	require.NoError(t, err)
	full, err := Unmarshal([]byte(`{"match":{"message":{"query":"hello"}}}`))
	require.NoError(t, err)
	assert.True(t, Equal(bare, full))

	num, err := Unmarshal([]byte(`{"term":{"age":42}}`))
	require.NoError(t, err)
	assert.Equal(t, 42.0, num.(*TermQuery).Value)
}

func TestDecode_BoolSingleClause(t *testing.T) {
	q, err := Unmarshal([]byte(`{"bool":{"must":{"term":{"user":"kimchy"}},"filter":[]}}`))
	require.NoError(t, err)

	b := q.(*BoolQuery)
	require.Len(t, b.Must, 1)
	assert.True(t, Equal(Term("user", "kimchy"), b.Must[0]))
	assert.Empty(t, b.Filter)
}

func TestDecode_Unrecognized(t *testing.T) {
	_, err := Unmarshal([]byte(`{"percolate":{"field":"query"}}`))

	var ue *codec.UnrecognizedVariantTagError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "percolate", ue.Tag)
	assert.Equal(t, "query", ue.Family)
}

func TestDecode_NestedFailureCarriesTag(t *testing.T) {
	_, err := Unmarshal([]byte(`{"bool":{"must":[{"nope":{}}]}}`))

	var ue *codec.UnrecognizedVariantTagError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "nope", ue.Tag)

	var de *codec.DecodeError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "bool", de.Tag)
}

func TestDecode_MissingRequired(t *testing.T) {
	_, err := Unmarshal([]byte(`{"exists":{}}`))
	assert.ErrorIs(t, err, codec.ErrKeyNotFound)

	_, err = Unmarshal([]byte(`{"term":{"a":"x","b":"y"}}`))
	assert.ErrorIs(t, err, codec.ErrNotSingleKeyObject)
}

func TestEqual(t *testing.T) {
	assert.True(t, Equal(nil, nil))
	assert.False(t, Equal(Term("a", "b"), nil))
	assert.False(t, Equal(nil, Term("a", "b")))
	assert.False(t, Equal(Term("a", "b"), Prefix("a", "b")))
	assert.False(t, Equal(Term("a", "b"), Term("a", "c")))
	assert.True(t, Equal(&BoolQuery{Must: []Query{}}, &BoolQuery{}))
}

func TestScoreFunction_Siblings(t *testing.T) {
	f := &DecayFunction{Kind: FunctionGauss, Field: "date", Origin: "now", Scale: "10d", Weight: ptr(1.5)}
	b, err := f.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"gauss":{"date":{"origin":"now","scale":"10d"}},"weight":1.5}`, string(b))

	w := &WeightFunction{Weight: 2, Filter: Term("user", "kimchy")}
	b, err = w.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"filter":{"term":{"user":"kimchy"}},"weight":2}`, string(b))

	got, err := UnmarshalFunction(b)
	require.NoError(t, err)
	assert.Equal(t, FunctionWeight, got.FunctionType())
	assert.True(t, w.IsEqualTo(got))

	got, err = UnmarshalFunction([]byte(`{"filter":{"match_all":{}},"weight":3,"linear":{"price":{"scale":5}}}`))
	require.NoError(t, err)
	assert.Equal(t, FunctionLinear, got.FunctionType())
	assert.InDelta(t, 3.0, *got.(*DecayFunction).Weight, 1e-9)
}

func TestScript_TwoShape(t *testing.T) {
	b, err := InlineScript("doc['x'].value").MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `"doc['x'].value"`, string(b))

	s := InlineScript("ctx._source.n += params.n").WithParams(map[string]any{"n": 1.0})
	b, err = s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"source":"ctx._source.n += params.n","params":{"n":1}}`, string(b))

	got, err := DecodeScript(b)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	got, err = DecodeScript([]byte(`"return 1"`))
	require.NoError(t, err)
	assert.Equal(t, InlineScript("return 1"), got)
}

func TestDecodeGeoPoint(t *testing.T) {
	tests := []struct {
		in   string
		want GeoPoint
	}{
		{`{"lat":41.12,"lon":-71.34}`, LatLon(41.12, -71.34)},
		{`"41.12,-71.34"`, LatLon(41.12, -71.34)},
		{`[-71.34, 41.12]`, LatLon(41.12, -71.34)},
		{`"drm3btev3e86"`, Geohash("drm3btev3e86")},
	}
	for _, tt := range tests {
		got, err := DecodeGeoPoint([]byte(tt.in))
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := DecodeGeoPoint([]byte(`true`))
	assert.ErrorIs(t, err, codec.ErrTypeMismatch)
}

func TestBuilders_Validation(t *testing.T) {
	tests := []struct {
		name  string
		build func() error
		field string
	}{
		{"term field", func() error { _, err := NewTermBuilder().Value("x").Build(); return err }, "field"},
		{"term value", func() error { _, err := NewTermBuilder().Field("user").Build(); return err }, "value"},
		{"match query", func() error { _, err := NewMatchBuilder().Field("msg").Build(); return err }, "query"},
		{"nested path", func() error { _, err := NewNestedBuilder().Query(MatchAll()).Build(); return err }, "path"},
		{"boosting negative", func() error {
			_, err := NewBoostingBuilder().Positive(MatchAll()).NegativeBoost(0.2).Build()
			return err
		}, "negative"},
		{"geo distance point", func() error {
			_, err := NewGeoDistanceBuilder().Field("loc").Distance("1km").Build()
			return err
		}, "point"},
		{"bool nil clause", func() error { _, err := NewBoolBuilder().Must(MatchAll(), nil).Build(); return err }, "must[1]"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.build()
			var missing *domain.MissingRequiredFieldError
			require.ErrorAs(t, err, &missing)
			assert.Equal(t, tt.field, missing.Field)
			assert.ErrorIs(t, err, domain.ErrValidation)
		})
	}
}

func TestBuilders_Groups(t *testing.T) {
	_, err := NewRangeBuilder().Field("age").Build()
	var alo *domain.AtLeastOneFieldRequiredError
	require.ErrorAs(t, err, &alo)
	assert.Equal(t, []string{"gt", "gte", "lt", "lte"}, alo.Fields)

	_, err = NewIDsBuilder().Build()
	var empty *domain.AtLeastOneElementRequiredError
	require.ErrorAs(t, err, &empty)
	assert.Equal(t, "values", empty.Field)

	_, err = NewFunctionScoreBuilder().Build()
	require.ErrorAs(t, err, &alo)

	_, err = NewKNNBuilder().Field("v").QueryVector([]float32{1}).K(10).NumCandidates(5).Build()
	var invalid *domain.InvalidFieldError
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "num_candidates", invalid.Field)
}

func TestBuilders_BuildCopiesCollections(t *testing.T) {
	b := NewTermsBuilder().Field("tags").Values("a")
	first, err := b.Build()
	require.NoError(t, err)

	b.Values("b")
	second, err := b.Build()
	require.NoError(t, err)

	assert.Equal(t, []any{"a"}, first.Values)
	assert.Equal(t, []any{"a", "b"}, second.Values)
}

func TestBuilders_Success(t *testing.T) {
	q, err := NewBoolBuilder().
		Must(Match("title", "search")).
		Filter(Term("status", "published")).
		MinimumShouldMatch("1").
		Build()
	require.NoError(t, err)

	b, err := q.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t,
		`{"bool":{"must":[{"match":{"title":"search"}}],"filter":[{"term":{"status":"published"}}],"minimum_should_match":"1"}}`,
		string(b))

	d, err := NewDecayBuilder(FunctionLinear).Field("price").Origin(10.0).Scale(5.0).Build()
	require.NoError(t, err)
	assert.Equal(t, FunctionLinear, d.FunctionType())

	_, err = NewDecayBuilder("sigmoid").Field("price").Scale(5.0).Build()
	assert.ErrorIs(t, err, domain.ErrValidation)
}
