package codec

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// ScalarString reads a bare scalar as a string. Numbers and booleans keep
// their JSON text.
func ScalarString(raw []byte) (string, error) {
	v := gjson.ParseBytes(raw)
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Number, gjson.True, gjson.False:
		return v.Raw, nil
	default:
		return "", fmt.Errorf("%w: expected scalar, got %s", ErrTypeMismatch, describe(v))
	}
}

// ScalarValue reads a bare scalar into a string, float64 or bool.
func ScalarValue(raw []byte) (any, error) {
	v := gjson.ParseBytes(raw)
	switch v.Type {
	case gjson.String:
		return v.Str, nil
	case gjson.Number:
		return v.Num, nil
	case gjson.True:
		return true, nil
	case gjson.False:
		return false, nil
	default:
		return nil, fmt.Errorf("%w: expected scalar, got %s", ErrTypeMismatch, describe(v))
	}
}

func describe(v gjson.Result) string {
	switch {
	case v.IsObject():
		return "object"
	case v.IsArray():
		return "array"
	default:
		return v.Type.String()
	}
}
