package suggest

import (
	"strings"
	"unicode"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/query"
)

// ContextType names a completion query context variant. Contexts carry no
// type key on the wire.
type ContextType string

const (
	ContextCategory ContextType = "category"
	ContextGeo      ContextType = "geo"
)

// AllContextTypes returns every query context type in trial order.
func AllContextTypes() []ContextType {
	return []ContextType{ContextGeo, ContextCategory}
}

// QueryContext filters or boosts completion suggestions.
type QueryContext interface {
	ContextType() ContextType
	IsEqualTo(other QueryContext) bool
	MarshalJSON() ([]byte, error)

	isQueryContext()
}

var contextRegistry *codec.Registry[QueryContext]

func init() {
	contextRegistry = codec.NewRegistry[QueryContext]("query_context").
		Register(string(ContextCategory), decodeCategoryContext).
		Register(string(ContextGeo), decodeGeoContext)
}

// ContextRegistry returns the decoders of the query context family. Its
// decoders take the context object itself as Input.Body.
func ContextRegistry() *codec.Registry[QueryContext] { return contextRegistry }

// geohashInvalid are the characters that never occur in a geohash.
const geohashInvalid = "ailo"

// UnmarshalContext decodes a query context by trial: geo first, then
// category. A geo decode whose context is a geohash containing a, i, l, o or
// whitespace is treated as spurious and the category decode is tried next.
// A category value made only of geohash characters therefore decodes as geo.
func UnmarshalContext(data []byte) (QueryContext, error) {
	candidates := make([]codec.Candidate[QueryContext], 0, len(AllContextTypes()))
	for _, t := range AllContextTypes() {
		decode, err := contextRegistry.MetaType(string(t))
		if err != nil {
			return nil, err
		}
		c := codec.Candidate[QueryContext]{
			Name: string(t),
			Decode: func(data []byte) (QueryContext, error) {
				return decode(codec.Input{Tag: string(t), Body: data})
			},
		}
		if t == ContextGeo {
			c.Plausible = plausibleGeo
		}
		candidates = append(candidates, c)
	}
	return codec.Resolve(contextRegistry.Family(), data, candidates...)
}

func plausibleGeo(c QueryContext) bool {
	g, ok := c.(*GeoContext)
	if !ok {
		return false
	}
	hash := g.Context.Geohash
	if hash == "" {
		return true
	}
	return !strings.ContainsAny(hash, geohashInvalid) && !strings.ContainsFunc(hash, unicode.IsSpace)
}

// EqualContext compares two possibly nil query contexts.
func EqualContext(a, b QueryContext) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqualTo(b)
}

// CategoryContext matches suggestions indexed with a category value.
type CategoryContext struct {
	Context string
	Boost   *float64
	Prefix  *bool
}

// Category returns a category context without options.
func Category(value string) *CategoryContext { return &CategoryContext{Context: value} }

func (*CategoryContext) ContextType() ContextType { return ContextCategory }
func (*CategoryContext) isQueryContext()          {}

// MarshalJSON emits the bare category string when no option is set.
func (c *CategoryContext) MarshalJSON() ([]byte, error) {
	if c.Boost == nil && c.Prefix == nil {
		return json.Marshal(c.Context)
	}
	return codec.NewWriter().
		Field("context", c.Context).
		OptFloat("boost", c.Boost).
		OptBool("prefix", c.Prefix).
		Bytes()
}

func (c *CategoryContext) IsEqualTo(other QueryContext) bool { return codec.EqualAs(c, other) }

func decodeCategoryContext(in codec.Input) (QueryContext, error) {
	return codec.DecodeTwoShape(in.Body,
		func(r *codec.Reader) (QueryContext, error) {
			c := &CategoryContext{
				Context: r.String("context"),
				Boost:   r.OptFloat("boost"),
				Prefix:  r.OptBool("prefix"),
			}
			return c, r.Err()
		},
		func(raw []byte) (QueryContext, error) {
			s, err := codec.ScalarString(raw)
			if err != nil {
				return nil, err
			}
			return Category(s), nil
		})
}

// GeoContext matches suggestions indexed near a location.
type GeoContext struct {
	Context    query.GeoPoint
	Boost      *float64
	Precision  any
	Neighbours []any
}

func (*GeoContext) ContextType() ContextType { return ContextGeo }
func (*GeoContext) isQueryContext()          {}

func (c *GeoContext) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.Field("context", c.Context).OptFloat("boost", c.Boost).OptValue("precision", c.Precision)
	if len(c.Neighbours) > 0 {
		w.Field("neighbours", c.Neighbours)
	}
	return w.Bytes()
}

func (c *GeoContext) IsEqualTo(other QueryContext) bool { return codec.EqualAs(c, other) }

// Geo contexts are always objects; the bare shape belongs to categories.
func decodeGeoContext(in codec.Input) (QueryContext, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	raw := r.Raw("context")
	if raw == nil {
		_ = r.String("context")
		return nil, r.Err()
	}
	point, err := query.DecodeGeoPoint(raw)
	if err != nil {
		return nil, err
	}
	c := &GeoContext{
		Context:   point,
		Boost:     r.OptFloat("boost"),
		Precision: r.OptValue("precision"),
	}
	r.OptDecode("neighbours", &c.Neighbours)
	return c, r.Err()
}
