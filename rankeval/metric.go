// Package rankeval models the ranking evaluation API: rated requests, the
// metric to compute and the per-query metric details returned by the
// cluster. Metrics and details are both keyed by the metric tag:
//
//	{"precision": {"k": 20, "relevant_rating_threshold": 1}}
package rankeval

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
)

// Type is the tag of an evaluation metric.
type Type string

const (
	TypePrecision              Type = "precision"
	TypeRecall                 Type = "recall"
	TypeMeanReciprocalRank     Type = "mean_reciprocal_rank"
	TypeDCG                    Type = "dcg"
	TypeExpectedReciprocalRank Type = "expected_reciprocal_rank"
)

// AllTypes returns every metric tag.
func AllTypes() []Type {
	return []Type{TypePrecision, TypeRecall, TypeMeanReciprocalRank, TypeDCG, TypeExpectedReciprocalRank}
}

// Metric is an evaluation metric of a rank_eval request.
type Metric interface {
	Type() Type
	EncodeBody(w *codec.Writer) error
	IsEqualTo(other Metric) bool
	MarshalJSON() ([]byte, error)

	isMetric()
}

var metricRegistry *codec.Registry[Metric]

func init() {
	metricRegistry = codec.NewRegistry[Metric]("metric").
		Register(string(TypePrecision), func(in codec.Input) (Metric, error) {
			return decodeMetric(in, func(r *codec.Reader) *Precision {
				return &Precision{
					K:                       r.OptInt("k"),
					RelevantRatingThreshold: r.OptInt("relevant_rating_threshold"),
					IgnoreUnlabeled:         r.OptBool("ignore_unlabeled"),
				}
			})
		}).
		Register(string(TypeRecall), func(in codec.Input) (Metric, error) {
			return decodeMetric(in, func(r *codec.Reader) *Recall {
				return &Recall{K: r.OptInt("k"), RelevantRatingThreshold: r.OptInt("relevant_rating_threshold")}
			})
		}).
		Register(string(TypeMeanReciprocalRank), func(in codec.Input) (Metric, error) {
			return decodeMetric(in, func(r *codec.Reader) *MeanReciprocalRank {
				return &MeanReciprocalRank{K: r.OptInt("k"), RelevantRatingThreshold: r.OptInt("relevant_rating_threshold")}
			})
		}).
		Register(string(TypeDCG), func(in codec.Input) (Metric, error) {
			return decodeMetric(in, func(r *codec.Reader) *DCG {
				return &DCG{K: r.OptInt("k"), Normalize: r.OptBool("normalize")}
			})
		}).
		Register(string(TypeExpectedReciprocalRank), func(in codec.Input) (Metric, error) {
			return decodeMetric(in, func(r *codec.Reader) *ExpectedReciprocalRank {
				return &ExpectedReciprocalRank{MaximumRelevance: r.Int("maximum_relevance"), K: r.OptInt("k")}
			})
		})
}

// MetricRegistry returns the tag registry of the metric family.
func MetricRegistry() *codec.Registry[Metric] { return metricRegistry }

// UnmarshalMetric decodes a metric.
func UnmarshalMetric(data []byte) (Metric, error) { return metricRegistry.Decode(data) }

// EqualMetric compares two possibly nil metrics.
func EqualMetric(a, b Metric) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqualTo(b)
}

func decodeMetric[T Metric](in codec.Input, fn func(r *codec.Reader) T) (Metric, error) {
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

func marshalMetric(m Metric) ([]byte, error) { return codec.MarshalTagged(string(m.Type()), m) }

// Precision is the share of relevant documents in the top K.
type Precision struct {
	K                       *int
	RelevantRatingThreshold *int
	IgnoreUnlabeled         *bool
}

func (*Precision) Type() Type { return TypePrecision }
func (*Precision) isMetric()  {}

func (m *Precision) EncodeBody(w *codec.Writer) error {
	w.OptInt("k", m.K).OptInt("relevant_rating_threshold", m.RelevantRatingThreshold)
	w.OptBool("ignore_unlabeled", m.IgnoreUnlabeled)
	return w.Err()
}

func (m *Precision) MarshalJSON() ([]byte, error) { return marshalMetric(m) }
func (m *Precision) IsEqualTo(other Metric) bool  { return codec.EqualAs(m, other) }

// Recall is the share of all relevant documents found in the top K.
type Recall struct {
	K                       *int
	RelevantRatingThreshold *int
}

func (*Recall) Type() Type { return TypeRecall }
func (*Recall) isMetric()  {}

func (m *Recall) EncodeBody(w *codec.Writer) error {
	w.OptInt("k", m.K).OptInt("relevant_rating_threshold", m.RelevantRatingThreshold)
	return w.Err()
}

func (m *Recall) MarshalJSON() ([]byte, error) { return marshalMetric(m) }
func (m *Recall) IsEqualTo(other Metric) bool  { return codec.EqualAs(m, other) }

// MeanReciprocalRank averages the inverse rank of the first relevant document.
type MeanReciprocalRank struct {
	K                       *int
	RelevantRatingThreshold *int
}

func (*MeanReciprocalRank) Type() Type { return TypeMeanReciprocalRank }
func (*MeanReciprocalRank) isMetric()  {}

func (m *MeanReciprocalRank) EncodeBody(w *codec.Writer) error {
	w.OptInt("k", m.K).OptInt("relevant_rating_threshold", m.RelevantRatingThreshold)
	return w.Err()
}

func (m *MeanReciprocalRank) MarshalJSON() ([]byte, error) { return marshalMetric(m) }
func (m *MeanReciprocalRank) IsEqualTo(other Metric) bool  { return codec.EqualAs(m, other) }

// DCG is discounted cumulative gain, normalized when Normalize is set.
type DCG struct {
	K         *int
	Normalize *bool
}

func (*DCG) Type() Type { return TypeDCG }
func (*DCG) isMetric()  {}

func (m *DCG) EncodeBody(w *codec.Writer) error {
	w.OptInt("k", m.K).OptBool("normalize", m.Normalize)
	return w.Err()
}

func (m *DCG) MarshalJSON() ([]byte, error) { return marshalMetric(m) }
func (m *DCG) IsEqualTo(other Metric) bool  { return codec.EqualAs(m, other) }

// ExpectedReciprocalRank is ERR over graded relevance.
type ExpectedReciprocalRank struct {
	MaximumRelevance int
	K                *int
}

func (*ExpectedReciprocalRank) Type() Type { return TypeExpectedReciprocalRank }
func (*ExpectedReciprocalRank) isMetric()  {}

func (m *ExpectedReciprocalRank) EncodeBody(w *codec.Writer) error {
	w.Field("maximum_relevance", m.MaximumRelevance).OptInt("k", m.K)
	return w.Err()
}

func (m *ExpectedReciprocalRank) MarshalJSON() ([]byte, error) { return marshalMetric(m) }
func (m *ExpectedReciprocalRank) IsEqualTo(other Metric) bool  { return codec.EqualAs(m, other) }

// ExpectedReciprocalRankBuilder builds an ExpectedReciprocalRank metric.
type ExpectedReciprocalRankBuilder struct {
	m      ExpectedReciprocalRank
	maxSet bool
}

func NewExpectedReciprocalRankBuilder() *ExpectedReciprocalRankBuilder {
	return &ExpectedReciprocalRankBuilder{}
}

func (b *ExpectedReciprocalRankBuilder) MaximumRelevance(n int) *ExpectedReciprocalRankBuilder {
	b.m.MaximumRelevance = n
	b.maxSet = true
	return b
}

func (b *ExpectedReciprocalRankBuilder) K(k int) *ExpectedReciprocalRankBuilder {
	b.m.K = &k
	return b
}

func (b *ExpectedReciprocalRankBuilder) Build() (*ExpectedReciprocalRank, error) {
	var v domain.Validator
	if err := v.Required("maximum_relevance", b.maxSet).Err(); err != nil {
		return nil, err
	}
	m := b.m
	return &m, nil
}

func ptr[T any](v T) *T { return &v }
