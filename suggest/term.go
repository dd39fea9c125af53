package suggest

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// SuggestMode controls which suggestions are returned.
type SuggestMode string

const (
	SuggestModeMissing SuggestMode = "missing"
	SuggestModePopular SuggestMode = "popular"
	SuggestModeAlways  SuggestMode = "always"
)

// TermSuggestion suggests corrections per input term by edit distance.
type TermSuggestion struct {
	Input          Input
	Field          string
	Analyzer       *string
	Size           *int
	ShardSize      *int
	Sort           *string
	SuggestMode    *SuggestMode
	MaxEdits       *int
	PrefixLength   *int
	MinWordLength  *int
	MinDocFreq     *float64
	MaxTermFreq    *float64
	StringDistance *string
}

func (*TermSuggestion) Type() Type    { return TypeTerm }
func (*TermSuggestion) isSuggestion() {}

func (s *TermSuggestion) EncodeBody(w *codec.Writer) error {
	w.Field("field", s.Field).OptString("analyzer", s.Analyzer)
	w.OptInt("size", s.Size).OptInt("shard_size", s.ShardSize).OptString("sort", s.Sort)
	if s.SuggestMode != nil {
		w.Field("suggest_mode", *s.SuggestMode)
	}
	w.OptInt("max_edits", s.MaxEdits).OptInt("prefix_length", s.PrefixLength)
	w.OptInt("min_word_length", s.MinWordLength)
	w.OptFloat("min_doc_freq", s.MinDocFreq).OptFloat("max_term_freq", s.MaxTermFreq)
	w.OptString("string_distance", s.StringDistance)
	return w.Err()
}

func (s *TermSuggestion) MarshalJSON() ([]byte, error)    { return marshalWithInput(s, s.Input) }
func (s *TermSuggestion) IsEqualTo(other Suggestion) bool { return codec.EqualAs(s, other) }

func readSuggestMode(r *codec.Reader) *SuggestMode {
	m := r.OptString("suggest_mode")
	if m == nil {
		return nil
	}
	return ptr(SuggestMode(*m))
}

func decodeTerm(in codec.Input) (Suggestion, error) {
	return decodeWith(in, func(r *codec.Reader, input Input) *TermSuggestion {
		return &TermSuggestion{
			Input:          input,
			Field:          r.String("field"),
			Analyzer:       r.OptString("analyzer"),
			Size:           r.OptInt("size"),
			ShardSize:      r.OptInt("shard_size"),
			Sort:           r.OptString("sort"),
			SuggestMode:    readSuggestMode(r),
			MaxEdits:       r.OptInt("max_edits"),
			PrefixLength:   r.OptInt("prefix_length"),
			MinWordLength:  r.OptInt("min_word_length"),
			MinDocFreq:     r.OptFloat("min_doc_freq"),
			MaxTermFreq:    r.OptFloat("max_term_freq"),
			StringDistance: r.OptString("string_distance"),
		}
	})
}

// TermBuilder builds a TermSuggestion.
type TermBuilder struct{ s TermSuggestion }

func NewTermBuilder() *TermBuilder { return &TermBuilder{} }

func (b *TermBuilder) Text(t string) *TermBuilder             { b.s.Input.Text = &t; return b }
func (b *TermBuilder) Field(f string) *TermBuilder            { b.s.Field = f; return b }
func (b *TermBuilder) Analyzer(a string) *TermBuilder         { b.s.Analyzer = &a; return b }
func (b *TermBuilder) Size(n int) *TermBuilder                { b.s.Size = &n; return b }
func (b *TermBuilder) Sort(s string) *TermBuilder             { b.s.Sort = &s; return b }
func (b *TermBuilder) SuggestMode(m SuggestMode) *TermBuilder { b.s.SuggestMode = &m; return b }
func (b *TermBuilder) MaxEdits(n int) *TermBuilder            { b.s.MaxEdits = &n; return b }
func (b *TermBuilder) PrefixLength(n int) *TermBuilder        { b.s.PrefixLength = &n; return b }
func (b *TermBuilder) MinWordLength(n int) *TermBuilder       { b.s.MinWordLength = &n; return b }
func (b *TermBuilder) StringDistance(d string) *TermBuilder   { b.s.StringDistance = &d; return b }

func (b *TermBuilder) Build() (*TermSuggestion, error) {
	var v domain.Validator
	if err := v.RequiredString("field", b.s.Field).Err(); err != nil {
		return nil, err
	}
	s := b.s
	return &s, nil
}
