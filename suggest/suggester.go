package suggest

import (
	"fmt"
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// Entry is one named suggestion of a suggester.
type Entry struct {
	Name       string
	Suggestion Suggestion
}

// Suggester is the "suggest" section of a search request: an optional global
// text followed by named suggestions in insertion order.
type Suggester struct {
	Text    *string
	Entries []Entry
}

func (s *Suggester) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.OptString("text", s.Text)
	for _, e := range s.Entries {
		w.Field(e.Name, e.Suggestion)
	}
	return w.Bytes()
}

// IsEqualTo compares two suggesters structurally.
func (s *Suggester) IsEqualTo(other *Suggester) bool { return codec.EqualAs(s, any(other)) }

// Get returns the suggestion registered under name.
func (s *Suggester) Get(name string) (Suggestion, bool) {
	for _, e := range s.Entries {
		if e.Name == name {
			return e.Suggestion, true
		}
	}
	return nil, false
}

// UnmarshalSuggester decodes a suggest section. Every key other than "text"
// names a suggestion.
func UnmarshalSuggester(data []byte) (*Suggester, error) {
	r, err := codec.NewReader(data)
	if err != nil {
		return nil, fmt.Errorf("decode suggester: %w", err)
	}
	out := &Suggester{Text: r.OptString("text")}
	if err := r.Err(); err != nil {
		return nil, err
	}
	err = r.Each(func(k codec.Key, raw []byte) error {
		if k.Name() == "text" {
			return nil
		}
		s, err := Unmarshal(raw)
		if err != nil {
			return fmt.Errorf("suggestion %q: %w", k.Name(), err)
		}
		out.Entries = append(out.Entries, Entry{Name: k.Name(), Suggestion: s})
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SuggesterBuilder builds a Suggester.
type SuggesterBuilder struct{ s Suggester }

func NewSuggesterBuilder() *SuggesterBuilder { return &SuggesterBuilder{} }

// Text sets the global text shared by suggestions that have none.
func (b *SuggesterBuilder) Text(t string) *SuggesterBuilder { b.s.Text = &t; return b }

// Add appends a named suggestion.
func (b *SuggesterBuilder) Add(name string, s Suggestion) *SuggesterBuilder {
	b.s.Entries = append(b.s.Entries, Entry{Name: name, Suggestion: s})
	return b
}

// Build requires at least one suggestion, each with a unique, non-empty name.
func (b *SuggesterBuilder) Build() (*Suggester, error) {
	var v domain.Validator
	v.NotEmpty("suggestions", len(b.s.Entries))
	seen := make(map[string]bool, len(b.s.Entries))
	for _, e := range b.s.Entries {
		v.RequiredString("name", e.Name).Required(e.Name, e.Suggestion != nil)
		if seen[e.Name] || e.Name == "text" {
			v.Check(&domain.InvalidFieldError{Field: e.Name, Reason: "is not a usable suggestion name"})
		}
		seen[e.Name] = true
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	s := b.s
	s.Entries = slices.Clone(b.s.Entries)
	return &s, nil
}
