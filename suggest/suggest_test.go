package suggest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/query"
)

func TestRoundTrip(t *testing.T) {
	samples := []Suggestion{
		&TermSuggestion{Input: Input{Text: ptr("tring out")}, Field: "message", SuggestMode: ptr(SuggestModePopular), MaxEdits: ptr(2)},
		&PhraseSuggestion{
			Input:     Input{Text: ptr("noble prize")},
			Field:     "title.trigram",
			Size:      ptr(1),
			GramSize:  ptr(3),
			Highlight: &Highlight{PreTag: "<em>", PostTag: "</em>"},
			Collate:   &Collate{Query: `{"match": {"{{field_name}}": "{{suggestion}}"}}`, Params: map[string]any{"field_name": "title"}, Prune: ptr(true)},
			Smoothing: &Laplace{Alpha: ptr(0.7)},
			DirectGenerators: []DirectGenerator{
				{Field: "title.trigram", SuggestMode: ptr(SuggestModeAlways)},
				{Field: "title.reverse", PreFilter: ptr("reverse"), PostFilter: ptr("reverse")},
			},
		},
		&PhraseSuggestion{Input: Input{Text: ptr("x")}, Field: "body", Smoothing: &LinearInterpolation{TrigramLambda: 0.5, BigramLambda: 0.3, UnigramLambda: 0.2}},
		&CompletionSuggestion{
			Input:          Input{Prefix: ptr("nir")},
			Field:          "suggest",
			SkipDuplicates: ptr(true),
			Fuzzy:          &Fuzzy{Fuzziness: ptr("AUTO")},
			Contexts: []ContextGroup{
				{Name: "place_type", Contexts: []QueryContext{Category("cafe"), &CategoryContext{Context: "restaurant", Boost: ptr(2.0)}}},
				{Name: "location", Contexts: []QueryContext{&GeoContext{Context: query.LatLon(43.662, -79.380), Precision: 2.0}}},
			},
		},
		&CompletionSuggestion{Input: Input{Regex: ptr("n[ever|i]r")}, Field: "suggest"},
	}
	for _, s := range samples {
		t.Run(string(s.Type()), func(t *testing.T) {
			b, err := s.MarshalJSON()
			require.NoError(t, err)

			got, err := Unmarshal(b)
			require.NoError(t, err, string(b))
			assert.True(t, Equal(s, got), "round trip of %s", b)
		})
	}
}

func TestRegistriesTotal(t *testing.T) {
	for _, tag := range AllTypes() {
		_, err := Registry().MetaType(string(tag))
		assert.NoError(t, err, tag)
	}
	for _, tag := range AllSmoothingTypes() {
		_, err := SmoothingRegistry().MetaType(string(tag))
		assert.NoError(t, err, tag)
	}
	for _, tag := range AllContextTypes() {
		_, err := ContextRegistry().MetaType(string(tag))
		assert.NoError(t, err, tag)
	}
}

func TestEncode_SiblingInput(t *testing.T) {
	s := &TermSuggestion{Input: Input{Text: ptr("tring out")}, Field: "message"}
	b, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t, `{"term":{"field":"message"},"text":"tring out"}`, string(b))

	got, err := Unmarshal([]byte(`{"text":"tring out","term":{"field":"message"}}`))
	require.NoError(t, err)
	assert.True(t, s.IsEqualTo(got))
}

func TestUnmarshalContext_Resolution(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want QueryContext
	}{
		{"geohash", `{"context":"u33dc0"}`, &GeoContext{Context: query.Geohash("u33dc0")}},
		{"digits only", `{"context":"bc123","precision":4}`, &GeoContext{Context: query.Geohash("bc123"), Precision: 4.0}},
		{"lat lon object", `{"context":{"lat":43.6,"lon":-79.3},"boost":2}`, &GeoContext{Context: query.LatLon(43.6, -79.3), Boost: ptr(2.0)}},
		{"category with illegal chars", `{"context":"clothing"}`, Category("clothing")},
		{"category with whitespace", `{"context":"fast food","boost":3}`, &CategoryContext{Context: "fast food", Boost: ptr(3.0)}},
		{"bare category", `"cafe"`, Category("cafe")},
		{"abc123 contains a", `{"context":"abc123"}`, Category("abc123")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UnmarshalContext([]byte(tt.in))
			require.NoError(t, err)
			assert.Equal(t, tt.want.ContextType(), got.ContextType())
			assert.True(t, EqualContext(tt.want, got), "got %#v", got)
		})
	}
}

func TestUnmarshalContext_Deterministic(t *testing.T) {
	for range 20 {
		got, err := UnmarshalContext([]byte(`{"context":"u33dc0"}`))
		require.NoError(t, err)
		assert.Equal(t, ContextGeo, got.ContextType())
	}
}

func TestUnmarshalContext_Unresolvable(t *testing.T) {
	_, err := UnmarshalContext([]byte(`{"context":{"nested":true}}`))

	var ue *codec.UnresolvableVariantError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, []string{"geo", "category"}, ue.Candidates)
	assert.Equal(t, "query_context", ue.Family)
}

func TestSuggester(t *testing.T) {
	term, err := NewTermBuilder().Field("message").Build()
	require.NoError(t, err)
	completion, err := NewCompletionBuilder().Field("suggest").Prefix("nir").
		Context("place_type", Category("cafe")).
		Context("place_type", Category("bar")).
		Build()
	require.NoError(t, err)

	s, err := NewSuggesterBuilder().Text("tring out").Add("my-term", term).Add("song", completion).Build()
	require.NoError(t, err)
	require.Len(t, completion.Contexts, 1)
	assert.Len(t, completion.Contexts[0].Contexts, 2)

	b, err := s.MarshalJSON()
	require.NoError(t, err)
	assert.Equal(t,
		`{"text":"tring out","my-term":{"term":{"field":"message"}},"song":{"completion":{"field":"suggest","contexts":{"place_type":["cafe","bar"]}},"prefix":"nir"}}`,
		string(b))

	got, err := UnmarshalSuggester(b)
	require.NoError(t, err)
	assert.True(t, s.IsEqualTo(got))
	entry, ok := got.Get("song")
	require.True(t, ok)
	assert.Equal(t, TypeCompletion, entry.Type())
}

func TestBuilders_Validation(t *testing.T) {
	_, err := NewTermBuilder().Text("x").Build()
	var missing *domain.MissingRequiredFieldError
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "field", missing.Field)

	_, err = NewCompletionBuilder().Field("suggest").Build()
	var alo *domain.AtLeastOneFieldRequiredError
	require.ErrorAs(t, err, &alo)
	assert.Equal(t, []string{"prefix", "regex", "text"}, alo.Fields)

	_, err = NewSuggesterBuilder().Build()
	var empty *domain.AtLeastOneElementRequiredError
	require.ErrorAs(t, err, &empty)

	term, err := NewTermBuilder().Field("f").Build()
	require.NoError(t, err)
	_, err = NewSuggesterBuilder().Add("a", term).Add("a", term).Build()
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = NewPhraseBuilder().Field("title").DirectGenerator(DirectGenerator{}).Build()
	require.ErrorAs(t, err, &missing)
	assert.Equal(t, "direct_generator.field", missing.Field)
}
