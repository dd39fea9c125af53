package suggest

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
)

// SmoothingType is the tag of a phrase suggester smoothing model.
type SmoothingType string

const (
	SmoothingLaplace             SmoothingType = "laplace"
	SmoothingStupidBackoff       SmoothingType = "stupid_backoff"
	SmoothingLinearInterpolation SmoothingType = "linear_interpolation"
)

// AllSmoothingTypes returns every smoothing model tag.
func AllSmoothingTypes() []SmoothingType {
	return []SmoothingType{SmoothingLaplace, SmoothingStupidBackoff, SmoothingLinearInterpolation}
}

// SmoothingModel balances weight between infrequent and frequent n-grams.
type SmoothingModel interface {
	Type() SmoothingType
	EncodeBody(w *codec.Writer) error
	IsEqualTo(other SmoothingModel) bool
	MarshalJSON() ([]byte, error)

	isSmoothingModel()
}

var smoothingRegistry *codec.Registry[SmoothingModel]

func init() {
	smoothingRegistry = codec.NewRegistry[SmoothingModel]("smoothing_model").
		Register(string(SmoothingLaplace), func(in codec.Input) (SmoothingModel, error) {
			return decodeSmoothing(in, func(r *codec.Reader) *Laplace {
				return &Laplace{Alpha: r.OptFloat("alpha")}
			})
		}).
		Register(string(SmoothingStupidBackoff), func(in codec.Input) (SmoothingModel, error) {
			return decodeSmoothing(in, func(r *codec.Reader) *StupidBackoff {
				return &StupidBackoff{Discount: r.OptFloat("discount")}
			})
		}).
		Register(string(SmoothingLinearInterpolation), func(in codec.Input) (SmoothingModel, error) {
			return decodeSmoothing(in, func(r *codec.Reader) *LinearInterpolation {
				return &LinearInterpolation{
					TrigramLambda: r.Float("trigram_lambda"),
					BigramLambda:  r.Float("bigram_lambda"),
					UnigramLambda: r.Float("unigram_lambda"),
				}
			})
		})
}

// SmoothingRegistry returns the tag registry of the smoothing model family.
func SmoothingRegistry() *codec.Registry[SmoothingModel] { return smoothingRegistry }

// UnmarshalSmoothing decodes a smoothing model.
func UnmarshalSmoothing(data []byte) (SmoothingModel, error) {
	return smoothingRegistry.Decode(data)
}

// EqualSmoothing compares two possibly nil smoothing models.
func EqualSmoothing(a, b SmoothingModel) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqualTo(b)
}

func decodeSmoothing[T SmoothingModel](in codec.Input, fn func(r *codec.Reader) T) (SmoothingModel, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	m := fn(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return m, nil
}

// Laplace is additive smoothing.
type Laplace struct {
	Alpha *float64
}

func (*Laplace) Type() SmoothingType { return SmoothingLaplace }
func (*Laplace) isSmoothingModel()   {}

func (m *Laplace) EncodeBody(w *codec.Writer) error {
	w.OptFloat("alpha", m.Alpha)
	return w.Err()
}

func (m *Laplace) MarshalJSON() ([]byte, error)        { return codec.MarshalTagged(string(m.Type()), m) }
func (m *Laplace) IsEqualTo(other SmoothingModel) bool { return codec.EqualAs(m, other) }

// StupidBackoff falls back to lower order n-grams with a discount.
type StupidBackoff struct {
	Discount *float64
}

func (*StupidBackoff) Type() SmoothingType { return SmoothingStupidBackoff }
func (*StupidBackoff) isSmoothingModel()   {}

func (m *StupidBackoff) EncodeBody(w *codec.Writer) error {
	w.OptFloat("discount", m.Discount)
	return w.Err()
}

func (m *StupidBackoff) MarshalJSON() ([]byte, error)        { return codec.MarshalTagged(string(m.Type()), m) }
func (m *StupidBackoff) IsEqualTo(other SmoothingModel) bool { return codec.EqualAs(m, other) }

// LinearInterpolation weights uni-, bi- and trigrams by fixed lambdas that
// must sum to 1.
type LinearInterpolation struct {
	TrigramLambda float64
	BigramLambda  float64
	UnigramLambda float64
}

func (*LinearInterpolation) Type() SmoothingType { return SmoothingLinearInterpolation }
func (*LinearInterpolation) isSmoothingModel()   {}

func (m *LinearInterpolation) EncodeBody(w *codec.Writer) error {
	w.Field("trigram_lambda", m.TrigramLambda).
		Field("bigram_lambda", m.BigramLambda).
		Field("unigram_lambda", m.UnigramLambda)
	return w.Err()
}

func (m *LinearInterpolation) MarshalJSON() ([]byte, error) {
	return codec.MarshalTagged(string(m.Type()), m)
}

func (m *LinearInterpolation) IsEqualTo(other SmoothingModel) bool { return codec.EqualAs(m, other) }
