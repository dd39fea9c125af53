// Package codec implements the dynamic-key JSON reader/writer and the variant
// registry used by every tag-keyed family of the query DSL.
//
// A variant is encoded as an object whose single discriminating key is the
// variant's type tag:
//
//	{"term": {"user": "kimchy"}}
//
// Decoding inspects the keys of the object, matches them against a Registry
// and hands the nested body to the registered decoder.
package codec

import "strconv"

// Key is an object key that is only known at runtime: a field name supplied by
// the caller or a variant tag read from the wire.
type Key struct {
	name  string
	index int
	isInt bool
}

// StringKey creates a key from a string.
func StringKey(s string) Key { return Key{name: s} }

// IntKey creates a key from an integer. Its name is the decimal form.
func IntKey(i int) Key { return Key{name: strconv.Itoa(i), index: i, isInt: true} }

// Name returns the string form of the key.
func (k Key) Name() string { return k.name }

// Int returns the integer form of the key, if it has one.
func (k Key) Int() (int, bool) {
	if k.isInt {
		return k.index, true
	}
	i, err := strconv.Atoi(k.name)
	if err != nil {
		return 0, false
	}
	return i, true
}

// Equal reports whether both keys have the same string value.
func (k Key) Equal(other Key) bool { return k.name == other.name }

func (k Key) String() string { return k.name }

func keyNames(keys []Key) []string {
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = k.name
	}
	return out
}
