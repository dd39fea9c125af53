package codec

import (
	"fmt"
	"slices"
)

// Input is what a variant decoder receives: the matched tag, the raw JSON
// nested under it and the enclosing object (for families with sibling keys).
type Input struct {
	Tag    string
	Body   []byte
	Parent *Reader
}

// Object parses the body as an object.
func (in Input) Object() (*Reader, error) { return NewReader(in.Body) }

// Decoder constructs a family member from its tagged body.
type Decoder[V any] func(in Input) (V, error)

// Registry maps the tags of one variant family to their decoders.
type Registry[V any] struct {
	family   string
	order    []string
	decoders map[string]Decoder[V]
	fallback string
}

// NewRegistry creates an empty registry for a family.
func NewRegistry[V any](family string) *Registry[V] {
	return &Registry[V]{
		family:   family,
		decoders: make(map[string]Decoder[V]),
	}
}

// Register adds a tag. Registering a tag twice is a programming error.
func (r *Registry[V]) Register(tag string, d Decoder[V]) *Registry[V] {
	if _, dup := r.decoders[tag]; dup {
		panic(fmt.Sprintf("codec: %s tag %q registered twice", r.family, tag))
	}
	r.decoders[tag] = d
	r.order = append(r.order, tag)
	return r
}

// WithFallback marks tag as matching only when no other tag key is present.
func (r *Registry[V]) WithFallback(tag string) *Registry[V] {
	r.fallback = tag
	return r
}

// Family returns the family name used in errors.
func (r *Registry[V]) Family() string { return r.family }

// Tags returns the registered tags in registration order.
func (r *Registry[V]) Tags() []string { return slices.Clone(r.order) }

// Knows reports whether tag belongs to the family.
func (r *Registry[V]) Knows(tag string) bool {
	_, ok := r.decoders[tag]
	return ok
}

// MetaType returns the decoder for tag.
func (r *Registry[V]) MetaType(tag string) (Decoder[V], error) {
	d, ok := r.decoders[tag]
	if !ok {
		return nil, &UnrecognizedVariantTagError{Tag: tag, Family: r.family, Keys: []string{tag}}
	}
	return d, nil
}

// Match discovers the tag of obj: exactly one key of obj must be a registered
// tag. Keys that are not tags are ignored, so sibling modifiers may sit next
// to the tag.
func (r *Registry[V]) Match(obj *Reader) (string, error) {
	var matches []string
	for _, k := range obj.Keys() {
		if r.Knows(k.Name()) {
			matches = append(matches, k.Name())
		}
	}
	if len(matches) > 1 && r.fallback != "" {
		matches = slices.DeleteFunc(matches, func(t string) bool { return t == r.fallback })
	}
	switch len(matches) {
	case 1:
		return matches[0], nil
	case 0:
		e := &UnrecognizedVariantTagError{Family: r.family, Keys: obj.KeyNames()}
		if obj.Len() == 1 {
			e.Tag = obj.Keys()[0].Name()
		}
		return "", e
	default:
		return "", &UnresolvableVariantError{Family: r.family, Candidates: matches}
	}
}

// DecodeObject decodes a family member from an already parsed object.
func (r *Registry[V]) DecodeObject(obj *Reader) (V, error) {
	var zero V
	tag, err := r.Match(obj)
	if err != nil {
		return zero, err
	}
	v, err := r.decoders[tag](Input{Tag: tag, Body: obj.Raw(tag), Parent: obj})
	if err != nil {
		return zero, &DecodeError{Family: r.family, Tag: tag, Keys: obj.KeyNames(), Err: err}
	}
	return v, nil
}

// Decode parses data and decodes the family member it holds.
func (r *Registry[V]) Decode(data []byte) (V, error) {
	var zero V
	obj, err := NewReader(data)
	if err != nil {
		return zero, fmt.Errorf("decode %s: %w", r.family, err)
	}
	return r.DecodeObject(obj)
}

// DecodeList decodes each raw member in order, typically the output of
// Reader.Elements. An empty input yields nil.
func (r *Registry[V]) DecodeList(elems [][]byte) ([]V, error) {
	if len(elems) == 0 {
		return nil, nil
	}
	out := make([]V, 0, len(elems))
	for i, raw := range elems {
		v, err := r.Decode(raw)
		if err != nil {
			return nil, fmt.Errorf("element %d: %w", i, err)
		}
		out = append(out, v)
	}
	return out, nil
}
