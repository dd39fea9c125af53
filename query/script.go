package query

import (
	"maps"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/esdsl/internal/codec"
)

// Script is an inline or stored script. A script with only Source encodes as
// a bare string.
type Script struct {
	Source *string
	ID     *string
	Lang   *string
	Params map[string]any
}

// InlineScript returns a script with the given source.
func InlineScript(source string) Script { return Script{Source: &source} }

// StoredScript returns a reference to a stored script.
func StoredScript(id string) Script { return Script{ID: &id} }

// WithParams returns a copy of s with params set.
func (s Script) WithParams(params map[string]any) Script {
	s.Params = maps.Clone(params)
	return s
}

func (s Script) onlySource() bool {
	return s.Source != nil && s.ID == nil && s.Lang == nil && len(s.Params) == 0
}

func (s Script) MarshalJSON() ([]byte, error) {
	if s.onlySource() {
		return json.Marshal(*s.Source)
	}
	w := codec.NewWriter()
	w.OptString("source", s.Source).OptString("id", s.ID).OptString("lang", s.Lang)
	if len(s.Params) > 0 {
		w.Field("params", s.Params)
	}
	return w.Bytes()
}

// DecodeScript accepts both the bare string and the object shape.
func DecodeScript(raw []byte) (Script, error) {
	return codec.DecodeTwoShape(raw,
		func(r *codec.Reader) (Script, error) {
			s := Script{Source: r.OptString("source"), ID: r.OptString("id"), Lang: r.OptString("lang")}
			r.OptDecode("params", &s.Params)
			return s, r.Err()
		},
		func(raw []byte) (Script, error) {
			src, err := codec.ScalarString(raw)
			if err != nil {
				return Script{}, err
			}
			return InlineScript(src), nil
		})
}
