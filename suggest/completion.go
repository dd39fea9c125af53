package suggest

import (
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// Fuzzy configures typo tolerance of a completion suggestion.
type Fuzzy struct {
	Fuzziness      *string
	Transpositions *bool
	MinLength      *int
	PrefixLength   *int
	UnicodeAware   *bool
}

func (f Fuzzy) write(w *codec.Writer) error {
	w.OptString("fuzziness", f.Fuzziness).OptBool("transpositions", f.Transpositions)
	w.OptInt("min_length", f.MinLength).OptInt("prefix_length", f.PrefixLength)
	w.OptBool("unicode_aware", f.UnicodeAware)
	return w.Err()
}

func readFuzzy(r *codec.Reader) *Fuzzy {
	return &Fuzzy{
		Fuzziness:      r.OptString("fuzziness"),
		Transpositions: r.OptBool("transpositions"),
		MinLength:      r.OptInt("min_length"),
		PrefixLength:   r.OptInt("prefix_length"),
		UnicodeAware:   r.OptBool("unicode_aware"),
	}
}

// ContextGroup holds the query contexts given for one context mapping name.
type ContextGroup struct {
	Name     string
	Contexts []QueryContext
}

// CompletionSuggestion is a prefix-as-you-type suggestion on a completion
// field.
type CompletionSuggestion struct {
	Input          Input
	Field          string
	Size           *int
	SkipDuplicates *bool
	Fuzzy          *Fuzzy
	Contexts       []ContextGroup
}

func (*CompletionSuggestion) Type() Type    { return TypeCompletion }
func (*CompletionSuggestion) isSuggestion() {}

func (s *CompletionSuggestion) EncodeBody(w *codec.Writer) error {
	w.Field("field", s.Field).OptInt("size", s.Size).OptBool("skip_duplicates", s.SkipDuplicates)
	if s.Fuzzy != nil {
		w.Object("fuzzy", s.Fuzzy.write)
	}
	if len(s.Contexts) > 0 {
		w.Object("contexts", func(o *codec.Writer) error {
			for _, g := range s.Contexts {
				o.Field(g.Name, g.Contexts)
			}
			return o.Err()
		})
	}
	return w.Err()
}

func (s *CompletionSuggestion) MarshalJSON() ([]byte, error)    { return marshalWithInput(s, s.Input) }
func (s *CompletionSuggestion) IsEqualTo(other Suggestion) bool { return codec.EqualAs(s, other) }

func decodeCompletion(in codec.Input) (Suggestion, error) {
	return decodeWith(in, func(r *codec.Reader, input Input) *CompletionSuggestion {
		s := &CompletionSuggestion{
			Input:          input,
			Field:          r.String("field"),
			Size:           r.OptInt("size"),
			SkipDuplicates: r.OptBool("skip_duplicates"),
		}
		if f := r.OptObject("fuzzy"); f != nil {
			s.Fuzzy = readFuzzy(f)
			r.Fail(f.Err())
		}
		if c := r.OptObject("contexts"); c != nil {
			groups, err := readContextGroups(c)
			r.Fail(err)
			s.Contexts = groups
		}
		return s
	})
}

func readContextGroups(r *codec.Reader) ([]ContextGroup, error) {
	var groups []ContextGroup
	err := r.Each(func(k codec.Key, _ []byte) error {
		g := ContextGroup{Name: k.Name()}
		for _, raw := range r.Elements(k.Name()) {
			c, err := UnmarshalContext(raw)
			if err != nil {
				return err
			}
			g.Contexts = append(g.Contexts, c)
		}
		groups = append(groups, g)
		return nil
	})
	return groups, err
}

// CompletionBuilder builds a CompletionSuggestion.
type CompletionBuilder struct{ s CompletionSuggestion }

func NewCompletionBuilder() *CompletionBuilder { return &CompletionBuilder{} }

func (b *CompletionBuilder) Prefix(p string) *CompletionBuilder { b.s.Input.Prefix = &p; return b }
func (b *CompletionBuilder) Regex(re string) *CompletionBuilder { b.s.Input.Regex = &re; return b }
func (b *CompletionBuilder) Text(t string) *CompletionBuilder   { b.s.Input.Text = &t; return b }
func (b *CompletionBuilder) Field(f string) *CompletionBuilder  { b.s.Field = f; return b }
func (b *CompletionBuilder) Size(n int) *CompletionBuilder      { b.s.Size = &n; return b }
func (b *CompletionBuilder) SkipDuplicates(v bool) *CompletionBuilder {
	b.s.SkipDuplicates = &v
	return b
}
func (b *CompletionBuilder) Fuzzy(f Fuzzy) *CompletionBuilder { b.s.Fuzzy = &f; return b }

// Context appends contexts under a context mapping name. Repeated names
// extend the same group.
func (b *CompletionBuilder) Context(name string, contexts ...QueryContext) *CompletionBuilder {
	for i := range b.s.Contexts {
		if b.s.Contexts[i].Name == name {
			b.s.Contexts[i].Contexts = append(b.s.Contexts[i].Contexts, contexts...)
			return b
		}
	}
	b.s.Contexts = append(b.s.Contexts, ContextGroup{Name: name, Contexts: contexts})
	return b
}

// Build requires the field and one of prefix, regex or text.
func (b *CompletionBuilder) Build() (*CompletionSuggestion, error) {
	var v domain.Validator
	err := v.RequiredString("field", b.s.Field).
		AtLeastOne([]string{"prefix", "regex", "text"},
			b.s.Input.Prefix != nil, b.s.Input.Regex != nil, b.s.Input.Text != nil).
		Err()
	if err != nil {
		return nil, err
	}
	s := b.s
	s.Contexts = make([]ContextGroup, len(b.s.Contexts))
	for i, g := range b.s.Contexts {
		s.Contexts[i] = ContextGroup{Name: g.Name, Contexts: slices.Clone(g.Contexts)}
	}
	return &s, nil
}
