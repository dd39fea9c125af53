package codec

import (
	"reflect"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

// BodyEncoder writes the fields a variant nests under its tag.
type BodyEncoder interface {
	EncodeBody(w *Writer) error
}

// MarshalTagged encodes {"<tag>": {<body>}}.
func MarshalTagged(tag string, body BodyEncoder) ([]byte, error) {
	return MarshalTaggedWith(tag, body, nil)
}

// MarshalTaggedWith encodes the tagged body followed by sibling keys written
// by siblings (for example a score function's filter and weight).
func MarshalTaggedWith(tag string, body BodyEncoder, siblings func(*Writer) error) ([]byte, error) {
	w := NewWriter()
	w.Object(tag, body.EncodeBody)
	if siblings != nil {
		if err := siblings(w); err != nil {
			return nil, err
		}
	}
	return w.Bytes()
}

// DecodeTwoShape decodes a value that appears either as an options object or
// as a bare scalar. The object shape is tried first and its failure is only a
// probe: when it fails, the scalar shape decides the outcome.
func DecodeTwoShape[T any](raw []byte, object func(*Reader) (T, error), scalar func([]byte) (T, error)) (T, error) {
	if r, err := NewReader(raw); err == nil {
		if v, err := object(r); err == nil {
			return v, nil
		}
	}
	return scalar(raw)
}

// Candidate is one trial of a discriminator-free decode.
type Candidate[V any] struct {
	Name      string
	Decode    func(data []byte) (V, error)
	Plausible func(V) bool
}

// Resolve tries every candidate in order and returns the first result that
// both decodes and passes its plausibility check.
func Resolve[V any](family string, data []byte, candidates ...Candidate[V]) (V, error) {
	var zero V
	names := make([]string, 0, len(candidates))
	var causes []error
	for _, c := range candidates {
		names = append(names, c.Name)
		v, err := c.Decode(data)
		if err != nil {
			causes = append(causes, err)
			continue
		}
		if c.Plausible != nil && !c.Plausible(v) {
			continue
		}
		return v, nil
	}
	return zero, &UnresolvableVariantError{Family: family, Candidates: names, Causes: causes}
}

// EqualAs is the type-erased equality bridge used by every family's
// IsEqualTo: other must hold the same concrete type as self, then the two are
// compared structurally. Empty and nil collections compare equal, numbers
// compare by value whatever their Go type (a decoded 2020 is a float64), and
// unexported fields of user documents are compared too.
func EqualAs[T any](self T, other any) (equal bool) {
	o, ok := other.(T)
	if !ok {
		return false
	}
	defer func() {
		if recover() != nil {
			equal = reflect.DeepEqual(self, o)
		}
	}()
	return cmp.Equal(self, o, equalOptions...)
}

var equalOptions = []cmp.Option{
	cmpopts.EquateEmpty(),
	cmp.FilterValues(func(x, y any) bool { return isNumber(x) && isNumber(y) },
		cmp.Comparer(func(x, y any) bool { return toFloat(x) == toFloat(y) })),
	cmp.Exporter(func(reflect.Type) bool { return true }),
}

func isNumber(v any) bool {
	switch reflect.ValueOf(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func toFloat(v any) float64 {
	rv := reflect.ValueOf(v)
	switch {
	case rv.CanInt():
		return float64(rv.Int())
	case rv.CanUint():
		return float64(rv.Uint())
	}
	return rv.Float()
}
