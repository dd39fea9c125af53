package codec

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for codec operations.
var (
	ErrInvalidJSON        = errors.New("codec: invalid JSON")
	ErrNotObject          = errors.New("codec: expected a JSON object")
	ErrKeyNotFound        = errors.New("codec: key not found")
	ErrTypeMismatch       = errors.New("codec: unexpected value type")
	ErrUnrecognizedTag    = errors.New("codec: unrecognized variant tag")
	ErrUnresolvable       = errors.New("codec: unresolvable variant")
	ErrNotSingleKeyObject = errors.New("codec: expected an object with exactly one key")
)

// UnrecognizedVariantTagError reports an object whose keys match no tag of a family.
type UnrecognizedVariantTagError struct {
	Tag    string
	Family string
	Keys   []string
}

func (e *UnrecognizedVariantTagError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("codec: unrecognized %s variant tag %q (keys inspected: [%s])",
			e.Family, e.Tag, strings.Join(e.Keys, ", "))
	}
	return fmt.Sprintf("codec: no %s variant tag among keys [%s]",
		e.Family, strings.Join(e.Keys, ", "))
}

func (e *UnrecognizedVariantTagError) Unwrap() error { return ErrUnrecognizedTag }

// UnresolvableVariantError reports that no candidate of a family could claim the input.
type UnresolvableVariantError struct {
	Family     string
	Candidates []string
	Causes     []error
}

func (e *UnresolvableVariantError) Error() string {
	msg := fmt.Sprintf("codec: cannot resolve %s variant, tried [%s]",
		e.Family, strings.Join(e.Candidates, ", "))
	if len(e.Causes) == 0 {
		return msg
	}
	causes := make([]string, 0, len(e.Causes))
	for _, c := range e.Causes {
		if c != nil {
			causes = append(causes, c.Error())
		}
	}
	return msg + ": " + strings.Join(causes, "; ")
}

func (e *UnresolvableVariantError) Unwrap() error { return ErrUnresolvable }

// DecodeError wraps a failure inside a variant decoder with the keys that were inspected.
type DecodeError struct {
	Family string
	Tag    string
	Keys   []string
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %s %q (keys inspected: [%s]): %v",
		e.Family, e.Tag, strings.Join(e.Keys, ", "), e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func keyNotFound(key string) error {
	return fmt.Errorf("%w: %q", ErrKeyNotFound, key)
}

func typeMismatch(key, want string, got fmt.Stringer) error {
	return fmt.Errorf("%w: %q is %s, want %s", ErrTypeMismatch, key, got, want)
}
