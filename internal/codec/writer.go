package codec

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"
)

// Writer builds a JSON object whose keys are supplied at runtime. Keys are
// emitted in call order. Like Reader, the first failure is sticky.
type Writer struct {
	buf bytes.Buffer
	n   int
	err error
}

// NewWriter returns an empty object writer.
func NewWriter() *Writer { return &Writer{} }

// Len returns the number of keys written so far.
func (w *Writer) Len() int { return w.n }

// Err returns the first error recorded while writing.
func (w *Writer) Err() error { return w.err }

func (w *Writer) fail(err error) {
	if w.err == nil {
		w.err = err
	}
}

func (w *Writer) writeKey(key string) bool {
	if w.err != nil {
		return false
	}
	k, err := json.Marshal(key)
	if err != nil {
		w.fail(fmt.Errorf("encode key %q: %w", key, err))
		return false
	}
	if w.n > 0 {
		w.buf.WriteByte(',')
	}
	w.buf.Write(k)
	w.buf.WriteByte(':')
	w.n++
	return true
}

// Raw writes pre-encoded JSON under key.
func (w *Writer) Raw(key string, raw []byte) *Writer {
	if w.writeKey(key) {
		w.buf.Write(raw)
	}
	return w
}

// Field marshals v under key.
func (w *Writer) Field(key string, v any) *Writer {
	if w.err != nil {
		return w
	}
	b, err := json.Marshal(v)
	if err != nil {
		w.fail(fmt.Errorf("encode %q: %w", key, err))
		return w
	}
	return w.Raw(key, b)
}

// Object writes a nested object under key, built by fn.
func (w *Writer) Object(key string, fn func(*Writer) error) *Writer {
	if w.err != nil {
		return w
	}
	inner := NewWriter()
	if err := fn(inner); err != nil {
		w.fail(err)
		return w
	}
	b, err := inner.Bytes()
	if err != nil {
		w.fail(err)
		return w
	}
	return w.Raw(key, b)
}

// OptString writes v when it is non-nil.
func (w *Writer) OptString(key string, v *string) *Writer {
	if v != nil {
		w.Field(key, *v)
	}
	return w
}

// NonEmpty writes s when it is not the empty string.
func (w *Writer) NonEmpty(key, s string) *Writer {
	if s != "" {
		w.Field(key, s)
	}
	return w
}

// OptFloat writes v when it is non-nil.
func (w *Writer) OptFloat(key string, v *float64) *Writer {
	if v != nil {
		w.Field(key, *v)
	}
	return w
}

// OptInt writes v when it is non-nil.
func (w *Writer) OptInt(key string, v *int) *Writer {
	if v != nil {
		w.Field(key, *v)
	}
	return w
}

// OptBool writes v when it is non-nil.
func (w *Writer) OptBool(key string, v *bool) *Writer {
	if v != nil {
		w.Field(key, *v)
	}
	return w
}

// OptValue writes v when it is not nil.
func (w *Writer) OptValue(key string, v any) *Writer {
	if v != nil {
		w.Field(key, v)
	}
	return w
}

// Bytes returns the encoded object.
func (w *Writer) Bytes() ([]byte, error) {
	if w.err != nil {
		return nil, w.err
	}
	out := make([]byte, 0, w.buf.Len()+2)
	out = append(out, '{')
	out = append(out, w.buf.Bytes()...)
	out = append(out, '}')
	return out, nil
}
