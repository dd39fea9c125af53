package suggest

import (
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// DirectGenerator produces per-term candidates for a phrase suggestion.
type DirectGenerator struct {
	Field         string
	SuggestMode   *SuggestMode
	Size          *int
	MaxEdits      *int
	PrefixLength  *int
	MinWordLength *int
	PreFilter     *string
	PostFilter    *string
}

func (g DirectGenerator) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.Field("field", g.Field)
	if g.SuggestMode != nil {
		w.Field("suggest_mode", *g.SuggestMode)
	}
	w.OptInt("size", g.Size).OptInt("max_edits", g.MaxEdits)
	w.OptInt("prefix_length", g.PrefixLength).OptInt("min_word_length", g.MinWordLength)
	w.OptString("pre_filter", g.PreFilter).OptString("post_filter", g.PostFilter)
	return w.Bytes()
}

func decodeGenerator(raw []byte) (DirectGenerator, error) {
	r, err := codec.NewReader(raw)
	if err != nil {
		return DirectGenerator{}, err
	}
	g := DirectGenerator{
		Field:         r.String("field"),
		SuggestMode:   readSuggestMode(r),
		Size:          r.OptInt("size"),
		MaxEdits:      r.OptInt("max_edits"),
		PrefixLength:  r.OptInt("prefix_length"),
		MinWordLength: r.OptInt("min_word_length"),
		PreFilter:     r.OptString("pre_filter"),
		PostFilter:    r.OptString("post_filter"),
	}
	return g, r.Err()
}

// Highlight wraps changed tokens of a phrase suggestion.
type Highlight struct {
	PreTag  string
	PostTag string
}

// Collate prunes phrase suggestions that match no document. Query is a
// search template source.
type Collate struct {
	Query  string
	Params map[string]any
	Prune  *bool
}

// PhraseSuggestion suggests whole corrected phrases using n-gram language
// models.
type PhraseSuggestion struct {
	Input                   Input
	Field                   string
	Analyzer                *string
	Size                    *int
	ShardSize               *int
	GramSize                *int
	RealWordErrorLikelihood *float64
	Confidence              *float64
	MaxErrors               *float64
	Separator               *string
	Highlight               *Highlight
	Collate                 *Collate
	Smoothing               SmoothingModel
	DirectGenerators        []DirectGenerator
}

func (*PhraseSuggestion) Type() Type    { return TypePhrase }
func (*PhraseSuggestion) isSuggestion() {}

func (s *PhraseSuggestion) EncodeBody(w *codec.Writer) error {
	w.Field("field", s.Field).OptString("analyzer", s.Analyzer)
	w.OptInt("size", s.Size).OptInt("shard_size", s.ShardSize).OptInt("gram_size", s.GramSize)
	w.OptFloat("real_word_error_likelihood", s.RealWordErrorLikelihood)
	w.OptFloat("confidence", s.Confidence).OptFloat("max_errors", s.MaxErrors)
	w.OptString("separator", s.Separator)
	if h := s.Highlight; h != nil {
		w.Object("highlight", func(o *codec.Writer) error {
			o.Field("pre_tag", h.PreTag).Field("post_tag", h.PostTag)
			return o.Err()
		})
	}
	if c := s.Collate; c != nil {
		w.Object("collate", func(o *codec.Writer) error {
			o.Object("query", func(q *codec.Writer) error {
				q.Field("source", c.Query)
				return q.Err()
			})
			if len(c.Params) > 0 {
				o.Field("params", c.Params)
			}
			o.OptBool("prune", c.Prune)
			return o.Err()
		})
	}
	if s.Smoothing != nil {
		w.Field("smoothing", s.Smoothing)
	}
	if len(s.DirectGenerators) > 0 {
		w.Field("direct_generator", s.DirectGenerators)
	}
	return w.Err()
}

func (s *PhraseSuggestion) MarshalJSON() ([]byte, error)    { return marshalWithInput(s, s.Input) }
func (s *PhraseSuggestion) IsEqualTo(other Suggestion) bool { return codec.EqualAs(s, other) }

func decodePhrase(in codec.Input) (Suggestion, error) {
	return decodeWith(in, func(r *codec.Reader, input Input) *PhraseSuggestion {
		s := &PhraseSuggestion{
			Input:                   input,
			Field:                   r.String("field"),
			Analyzer:                r.OptString("analyzer"),
			Size:                    r.OptInt("size"),
			ShardSize:               r.OptInt("shard_size"),
			GramSize:                r.OptInt("gram_size"),
			RealWordErrorLikelihood: r.OptFloat("real_word_error_likelihood"),
			Confidence:              r.OptFloat("confidence"),
			MaxErrors:               r.OptFloat("max_errors"),
			Separator:               r.OptString("separator"),
		}
		if h := r.OptObject("highlight"); h != nil {
			s.Highlight = &Highlight{PreTag: h.String("pre_tag"), PostTag: h.String("post_tag")}
			r.Fail(h.Err())
		}
		if c := r.OptObject("collate"); c != nil {
			s.Collate = readCollate(c)
			r.Fail(c.Err())
		}
		if raw := r.Raw("smoothing"); raw != nil {
			m, err := UnmarshalSmoothing(raw)
			r.Fail(err)
			s.Smoothing = m
		}
		for _, raw := range r.Elements("direct_generator") {
			g, err := decodeGenerator(raw)
			if err != nil {
				r.Fail(err)
				break
			}
			s.DirectGenerators = append(s.DirectGenerators, g)
		}
		return s
	})
}

func readCollate(c *codec.Reader) *Collate {
	out := &Collate{Prune: c.OptBool("prune")}
	if q := c.Object("query"); q != nil {
		out.Query = q.String("source")
		c.Fail(q.Err())
	}
	c.OptDecode("params", &out.Params)
	return out
}

// PhraseBuilder builds a PhraseSuggestion.
type PhraseBuilder struct{ s PhraseSuggestion }

func NewPhraseBuilder() *PhraseBuilder { return &PhraseBuilder{} }

func (b *PhraseBuilder) Text(t string) *PhraseBuilder        { b.s.Input.Text = &t; return b }
func (b *PhraseBuilder) Field(f string) *PhraseBuilder       { b.s.Field = f; return b }
func (b *PhraseBuilder) Size(n int) *PhraseBuilder           { b.s.Size = &n; return b }
func (b *PhraseBuilder) GramSize(n int) *PhraseBuilder       { b.s.GramSize = &n; return b }
func (b *PhraseBuilder) Confidence(v float64) *PhraseBuilder { b.s.Confidence = &v; return b }
func (b *PhraseBuilder) MaxErrors(v float64) *PhraseBuilder  { b.s.MaxErrors = &v; return b }
func (b *PhraseBuilder) RealWordErrorLikelihood(v float64) *PhraseBuilder {
	b.s.RealWordErrorLikelihood = &v
	return b
}
func (b *PhraseBuilder) Highlight(pre, post string) *PhraseBuilder {
	b.s.Highlight = &Highlight{PreTag: pre, PostTag: post}
	return b
}
func (b *PhraseBuilder) Collate(c Collate) *PhraseBuilder          { b.s.Collate = &c; return b }
func (b *PhraseBuilder) Smoothing(m SmoothingModel) *PhraseBuilder { b.s.Smoothing = m; return b }
func (b *PhraseBuilder) DirectGenerator(g DirectGenerator) *PhraseBuilder {
	b.s.DirectGenerators = append(b.s.DirectGenerators, g)
	return b
}

// Build validates the field and every direct generator's field.
func (b *PhraseBuilder) Build() (*PhraseSuggestion, error) {
	var v domain.Validator
	v.RequiredString("field", b.s.Field)
	for _, g := range b.s.DirectGenerators {
		v.RequiredString("direct_generator.field", g.Field)
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	s := b.s
	s.DirectGenerators = slices.Clone(b.s.DirectGenerators)
	return &s, nil
}
