package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// GeoPoint is a location given either as coordinates or as a geohash. When
// Geohash is set it wins on the wire.
type GeoPoint struct {
	Lat     float64
	Lon     float64
	Geohash string
}

// LatLon returns a coordinate point.
func LatLon(lat, lon float64) GeoPoint { return GeoPoint{Lat: lat, Lon: lon} }

// Geohash returns a geohash point.
func Geohash(hash string) GeoPoint { return GeoPoint{Geohash: hash} }

func (p GeoPoint) MarshalJSON() ([]byte, error) {
	if p.Geohash != "" {
		return json.Marshal(p.Geohash)
	}
	return codec.NewWriter().Field("lat", p.Lat).Field("lon", p.Lon).Bytes()
}

// DecodeGeoPoint accepts the shapes the cluster accepts: {"lat":..,"lon":..},
// "lat,lon", a geohash string and [lon, lat].
func DecodeGeoPoint(raw []byte) (GeoPoint, error) {
	v := gjson.ParseBytes(raw)
	switch {
	case v.IsObject():
		r, err := codec.NewReader(raw)
		if err != nil {
			return GeoPoint{}, err
		}
		p := GeoPoint{Lat: r.Float("lat"), Lon: r.Float("lon")}
		return p, r.Err()
	case v.IsArray():
		items := v.Array()
		if len(items) < 2 {
			return GeoPoint{}, fmt.Errorf("%w: geo point array needs [lon, lat]", codec.ErrTypeMismatch)
		}
		return GeoPoint{Lon: items[0].Float(), Lat: items[1].Float()}, nil
	case v.Type == gjson.String:
		return parseGeoString(v.Str)
	default:
		return GeoPoint{}, fmt.Errorf("%w: geo point is %s", codec.ErrTypeMismatch, v.Type)
	}
}

func parseGeoString(s string) (GeoPoint, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		if s == "" {
			return GeoPoint{}, fmt.Errorf("%w: empty geohash", codec.ErrTypeMismatch)
		}
		return Geohash(s), nil
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("parse latitude %q: %w", lat, err)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("parse longitude %q: %w", lon, err)
	}
	return LatLon(la, lo), nil
}

// GeoDistanceQuery matches documents within Distance of Point.
type GeoDistanceQuery struct {
	Field            string
	Point            GeoPoint
	Distance         string
	DistanceType     *string
	ValidationMethod *string
	Boost            *float64
	QueryName        *string
}

func (*GeoDistanceQuery) Type() Type { return TypeGeoDistance }
func (*GeoDistanceQuery) isQuery()   {}

func (q *GeoDistanceQuery) EncodeBody(w *codec.Writer) error {
	w.Field("distance", q.Distance).Field(q.Field, q.Point)
	w.OptString("distance_type", q.DistanceType).OptString("validation_method", q.ValidationMethod)
	writeCommon(w, q.Boost, q.QueryName)
	return w.Err()
}

func (q *GeoDistanceQuery) MarshalJSON() ([]byte, error) { return marshal(q) }
func (q *GeoDistanceQuery) IsEqualTo(other Query) bool   { return codec.EqualAs(q, other) }

func decodeGeoDistance(in codec.Input) (Query, error) {
	return decodeObject(in, func(r *codec.Reader) *GeoDistanceQuery {
		field, raw := splitField(r, "distance", "distance_type", "validation_method", "boost", "_name")
		c := readCommon(r)
		q := &GeoDistanceQuery{
			Field:            field,
			Distance:         r.String("distance"),
			DistanceType:     r.OptString("distance_type"),
			ValidationMethod: r.OptString("validation_method"),
			Boost:            c.boost,
			QueryName:        c.name,
		}
		if r.Err() == nil {
			p, err := DecodeGeoPoint(raw)
			if err != nil {
				r.Fail(err)
			}
			q.Point = p
		}
		return q
	})
}

// GeoDistanceBuilder builds a GeoDistanceQuery.
type GeoDistanceBuilder struct {
	q        GeoDistanceQuery
	pointSet bool
}

func NewGeoDistanceBuilder() *GeoDistanceBuilder { return &GeoDistanceBuilder{} }

func (b *GeoDistanceBuilder) Field(f string) *GeoDistanceBuilder { b.q.Field = f; return b }
func (b *GeoDistanceBuilder) Point(p GeoPoint) *GeoDistanceBuilder {
	b.q.Point = p
	b.pointSet = true
	return b
}
func (b *GeoDistanceBuilder) Distance(d string) *GeoDistanceBuilder { b.q.Distance = d; return b }
func (b *GeoDistanceBuilder) DistanceType(t string) *GeoDistanceBuilder {
	b.q.DistanceType = &t
	return b
}
func (b *GeoDistanceBuilder) Boost(v float64) *GeoDistanceBuilder { b.q.Boost = &v; return b }

func (b *GeoDistanceBuilder) Build() (*GeoDistanceQuery, error) {
	var v domain.Validator
	err := v.RequiredString("field", b.q.Field).
		Required("point", b.pointSet).
		RequiredString("distance", b.q.Distance).
		Err()
	if err != nil {
		return nil, err
	}
	q := b.q
	return &q, nil
}
