// Package suggest implements the suggester section of a search request.
//
// A suggestion encodes as its type tag with the suggest input next to it:
//
//	{"text": "tring out", "term": {"field": "message"}}
//
// Completion suggestions may carry query contexts, which have no type key on
// the wire and are told apart by trial decoding (see UnmarshalContext).
package suggest

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
)

// Type is the tag of a suggestion variant.
type Type string

const (
	TypeTerm       Type = "term"
	TypePhrase     Type = "phrase"
	TypeCompletion Type = "completion"
)

// AllTypes returns every suggestion tag.
func AllTypes() []Type {
	return []Type{TypeTerm, TypePhrase, TypeCompletion}
}

// Suggestion is any member of the suggestion family.
type Suggestion interface {
	Type() Type
	EncodeBody(w *codec.Writer) error
	IsEqualTo(other Suggestion) bool
	MarshalJSON() ([]byte, error)

	isSuggestion()
}

var registry *codec.Registry[Suggestion]

func init() {
	registry = codec.NewRegistry[Suggestion]("suggestion").
		Register(string(TypeTerm), decodeTerm).
		Register(string(TypePhrase), decodePhrase).
		Register(string(TypeCompletion), decodeCompletion)
}

// Registry returns the tag registry of the suggestion family.
func Registry() *codec.Registry[Suggestion] { return registry }

// Unmarshal decodes a suggestion together with its input siblings.
func Unmarshal(data []byte) (Suggestion, error) {
	return registry.Decode(data)
}

// Equal compares two possibly nil suggestions.
func Equal(a, b Suggestion) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqualTo(b)
}

// Input is the text a suggestion runs on. Term and phrase suggestions use
// Text; completion suggestions use Prefix, Regex or Text.
type Input struct {
	Text   *string
	Prefix *string
	Regex  *string
}

func (in Input) write(w *codec.Writer) error {
	w.OptString("text", in.Text).OptString("prefix", in.Prefix).OptString("regex", in.Regex)
	return w.Err()
}

func readInput(parent *codec.Reader) (Input, error) {
	in := Input{
		Text:   parent.OptString("text"),
		Prefix: parent.OptString("prefix"),
		Regex:  parent.OptString("regex"),
	}
	return in, parent.Err()
}

func marshalWithInput(s Suggestion, in Input) ([]byte, error) {
	return codec.MarshalTaggedWith(string(s.Type()), s, in.write)
}

// decodeWith parses the tagged body and the input siblings, then runs fn.
func decodeWith[T Suggestion](in codec.Input, fn func(r *codec.Reader, input Input) T) (Suggestion, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	input, err := readInput(in.Parent)
	if err != nil {
		return nil, err
	}
	s := fn(r, input)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return s, nil
}

func ptr[T any](v T) *T { return &v }
