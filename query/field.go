package query

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
)

// Field-scoped queries nest their options under a caller-supplied field name
// and collapse to {"<field>": <value>} when only the value is set.

func writeFieldScoped(w *codec.Writer, field, valueKey string, value any, opts func(*codec.Writer)) {
	probe := codec.NewWriter()
	opts(probe)
	if probe.Len() == 0 {
		w.Field(field, value)
		return
	}
	w.Object(field, func(o *codec.Writer) error {
		o.Field(valueKey, value)
		opts(o)
		return o.Err()
	})
}

// fieldScoped returns the field name of a {"<field>": ...} body with the raw
// value under it.
func fieldScoped(in codec.Input) (string, []byte, error) {
	r, err := in.Object()
	if err != nil {
		return "", nil, err
	}
	k, raw, err := r.Single()
	if err != nil {
		return "", nil, err
	}
	return k.Name(), raw, nil
}

// decodeFieldScoped decodes a two-shape field body. object reads the options
// shape; scalar builds the query from a bare value.
func decodeFieldScoped(
	in codec.Input,
	object func(field string, r *codec.Reader) Query,
	scalar func(field string, raw []byte) (Query, error),
) (Query, error) {
	field, raw, err := fieldScoped(in)
	if err != nil {
		return nil, err
	}
	return codec.DecodeTwoShape(raw,
		func(r *codec.Reader) (Query, error) {
			q := object(field, r)
			if err := r.Err(); err != nil {
				return nil, err
			}
			return q, nil
		},
		func(raw []byte) (Query, error) { return scalar(field, raw) },
	)
}

// stringScalar adapts a constructor taking the bare string value.
func stringScalar(build func(field, value string) Query) func(string, []byte) (Query, error) {
	return func(field string, raw []byte) (Query, error) {
		s, err := codec.ScalarString(raw)
		if err != nil {
			return nil, err
		}
		return build(field, s), nil
	}
}

// splitField finds the single key of r that is not one of reserved. Queries
// such as terms and geo_distance key their value by field name next to fixed
// option keys.
func splitField(r *codec.Reader, reserved ...string) (string, []byte) {
	var field string
	var raw []byte
	n := 0
	_ = r.Each(func(k codec.Key, v []byte) error {
		for _, res := range reserved {
			if k.Name() == res {
				return nil
			}
		}
		field, raw = k.Name(), v
		n++
		return nil
	})
	if n != 1 {
		r.Fail(codec.ErrNotSingleKeyObject)
		return "", nil
	}
	return field, raw
}
