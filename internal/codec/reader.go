package codec

import (
	"fmt"
	"strconv"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
)

// Reader reads an object whose keys are discovered at runtime.
//
// Field accessors are sticky: the first failure is recorded and returned by
// Err, later accessors become no-ops. Decoders read every field and check Err
// once at the end.
type Reader struct {
	raw    []byte
	keys   []Key
	values map[string]gjson.Result
	err    error
}

// NewReader parses data as a JSON object.
func NewReader(data []byte) (*Reader, error) {
	if !gjson.ValidBytes(data) {
		return nil, ErrInvalidJSON
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return nil, fmt.Errorf("%w, got %s", ErrNotObject, res.Type)
	}
	return fromResult(res), nil
}

func fromResult(res gjson.Result) *Reader {
	r := &Reader{
		raw:    []byte(res.Raw),
		values: make(map[string]gjson.Result),
	}
	res.ForEach(func(k, v gjson.Result) bool {
		name := k.String()
		if _, seen := r.values[name]; !seen {
			r.keys = append(r.keys, StringKey(name))
		}
		r.values[name] = v
		return true
	})
	return r
}

// Keys returns the keys of the object in document order.
func (r *Reader) Keys() []Key { return r.keys }

// KeyNames returns the keys as strings, in document order.
func (r *Reader) KeyNames() []string { return keyNames(r.keys) }

// Len returns the number of distinct keys.
func (r *Reader) Len() int { return len(r.keys) }

// Bytes returns the raw JSON of the object.
func (r *Reader) Bytes() []byte { return r.raw }

// Has reports whether key is present with a non-null value.
func (r *Reader) Has(key string) bool {
	v, ok := r.values[key]
	return ok && v.Type != gjson.Null
}

// Err returns the first error recorded by a field accessor.
func (r *Reader) Err() error { return r.err }

func (r *Reader) fail(err error) {
	if r.err == nil {
		r.err = err
	}
}

func (r *Reader) lookup(key string, required bool) (gjson.Result, bool) {
	if r.err != nil {
		return gjson.Result{}, false
	}
	v, ok := r.values[key]
	if !ok || v.Type == gjson.Null {
		if required {
			r.fail(keyNotFound(key))
		}
		return gjson.Result{}, false
	}
	return v, true
}

// Single returns the sole key of the object and its raw value. It is used for
// bodies keyed by a caller-supplied field name.
func (r *Reader) Single() (Key, []byte, error) {
	if len(r.keys) != 1 {
		return Key{}, nil, fmt.Errorf("%w, got [%v]", ErrNotSingleKeyObject, r.KeyNames())
	}
	k := r.keys[0]
	return k, []byte(r.values[k.name].Raw), nil
}

// Raw returns the raw JSON of key, or nil when absent.
func (r *Reader) Raw(key string) []byte {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	return []byte(v.Raw)
}

// Decode unmarshals the value of a required key into v.
func (r *Reader) Decode(key string, v any) {
	res, ok := r.lookup(key, true)
	if !ok {
		return
	}
	if err := json.Unmarshal([]byte(res.Raw), v); err != nil {
		r.fail(fmt.Errorf("decode %q: %w", key, err))
	}
}

// OptDecode unmarshals the value of key into v when present and reports
// whether it was.
func (r *Reader) OptDecode(key string, v any) bool {
	res, ok := r.lookup(key, false)
	if !ok {
		return false
	}
	if err := json.Unmarshal([]byte(res.Raw), v); err != nil {
		r.fail(fmt.Errorf("decode %q: %w", key, err))
		return false
	}
	return true
}

// String returns a required string value.
func (r *Reader) String(key string) string {
	v, ok := r.lookup(key, true)
	if !ok {
		return ""
	}
	return r.asString(key, v)
}

// OptString returns a string value, or nil when absent.
func (r *Reader) OptString(key string) *string {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	s := r.asString(key, v)
	if r.err != nil {
		return nil
	}
	return &s
}

func (r *Reader) asString(key string, v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	default:
		r.fail(typeMismatch(key, "string", v.Type))
		return ""
	}
}

// Float returns a required numeric value.
func (r *Reader) Float(key string) float64 {
	v, ok := r.lookup(key, true)
	if !ok {
		return 0
	}
	return r.asFloat(key, v)
}

// OptFloat returns a numeric value, or nil when absent.
func (r *Reader) OptFloat(key string) *float64 {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	f := r.asFloat(key, v)
	if r.err != nil {
		return nil
	}
	return &f
}

// Numbers sent as strings are accepted, as the cluster accepts them too.
func (r *Reader) asFloat(key string, v gjson.Result) float64 {
	switch v.Type {
	case gjson.Number:
		return v.Num
	case gjson.String:
		f, err := strconv.ParseFloat(v.Str, 64)
		if err != nil {
			r.fail(typeMismatch(key, "number", v.Type))
		}
		return f
	default:
		r.fail(typeMismatch(key, "number", v.Type))
		return 0
	}
}

// Int returns a required integer value.
func (r *Reader) Int(key string) int {
	v, ok := r.lookup(key, true)
	if !ok {
		return 0
	}
	return r.asInt(key, v)
}

// OptInt returns an integer value, or nil when absent.
func (r *Reader) OptInt(key string) *int {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	i := r.asInt(key, v)
	if r.err != nil {
		return nil
	}
	return &i
}

func (r *Reader) asInt(key string, v gjson.Result) int {
	switch v.Type {
	case gjson.Number:
		return int(v.Int())
	case gjson.String:
		i, err := strconv.Atoi(v.Str)
		if err != nil {
			r.fail(typeMismatch(key, "integer", v.Type))
		}
		return i
	default:
		r.fail(typeMismatch(key, "integer", v.Type))
		return 0
	}
}

// OptBool returns a boolean value, or nil when absent.
func (r *Reader) OptBool(key string) *bool {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	var b bool
	switch v.Type {
	case gjson.True:
		b = true
	case gjson.False:
		b = false
	case gjson.String:
		parsed, err := strconv.ParseBool(v.Str)
		if err != nil {
			r.fail(typeMismatch(key, "boolean", v.Type))
			return nil
		}
		b = parsed
	default:
		r.fail(typeMismatch(key, "boolean", v.Type))
		return nil
	}
	return &b
}

// OptValue decodes a scalar or composite value into an untyped Go value, or
// returns nil when absent.
func (r *Reader) OptValue(key string) any {
	var out any
	if !r.OptDecode(key, &out) {
		return nil
	}
	return out
}

// Strings returns a list of strings. A single string is accepted as a list of
// one element.
func (r *Reader) Strings(key string) []string {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	if v.Type == gjson.String {
		return []string{v.Str}
	}
	if !v.IsArray() {
		r.fail(typeMismatch(key, "array", v.Type))
		return nil
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, it := range items {
		out = append(out, r.asString(key, it))
	}
	return out
}

// Object returns a nested object reader for a required key.
func (r *Reader) Object(key string) *Reader {
	v, ok := r.lookup(key, true)
	if !ok {
		return nil
	}
	if !v.IsObject() {
		r.fail(typeMismatch(key, "object", v.Type))
		return nil
	}
	return fromResult(v)
}

// OptObject returns a nested object reader, or nil when absent.
func (r *Reader) OptObject(key string) *Reader {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	if !v.IsObject() {
		r.fail(typeMismatch(key, "object", v.Type))
		return nil
	}
	return fromResult(v)
}

// Elements returns the raw JSON of every element of an array value. A single
// non-array value is returned as a one-element list.
func (r *Reader) Elements(key string) [][]byte {
	v, ok := r.lookup(key, false)
	if !ok {
		return nil
	}
	if !v.IsArray() {
		return [][]byte{[]byte(v.Raw)}
	}
	items := v.Array()
	out := make([][]byte, len(items))
	for i, it := range items {
		out[i] = []byte(it.Raw)
	}
	return out
}

// Each calls fn for every key in document order with its raw value.
func (r *Reader) Each(fn func(key Key, raw []byte) error) error {
	for _, k := range r.keys {
		if err := fn(k, []byte(r.values[k.name].Raw)); err != nil {
			return err
		}
	}
	return nil
}

// Fail records err unless an earlier error is already recorded. Decoders use
// it to attach their own failures to the sticky error.
func (r *Reader) Fail(err error) { r.fail(err) }
