package rankeval

import (
	"github.com/kailas-cloud/esdsl/internal/codec"
)

// MetricDetail is the per-query breakdown returned for a metric. It shares
// its tags with Metric.
type MetricDetail interface {
	Type() Type
	EncodeBody(w *codec.Writer) error
	IsEqualTo(other MetricDetail) bool
	MarshalJSON() ([]byte, error)

	isMetricDetail()
}

var detailRegistry *codec.Registry[MetricDetail]

func init() {
	detailRegistry = codec.NewRegistry[MetricDetail]("metric_detail").
		Register(string(TypePrecision), func(in codec.Input) (MetricDetail, error) {
			return decodeDetail(in, func(r *codec.Reader) *PrecisionDetail {
				return &PrecisionDetail{
					RelevantDocsRetrieved: r.Int("relevant_docs_retrieved"),
					DocsRetrieved:         r.Int("docs_retrieved"),
				}
			})
		}).
		Register(string(TypeRecall), func(in codec.Input) (MetricDetail, error) {
			return decodeDetail(in, func(r *codec.Reader) *RecallDetail {
				return &RecallDetail{
					RelevantDocsRetrieved: r.Int("relevant_docs_retrieved"),
					RelevantDocs:          r.Int("relevant_docs"),
				}
			})
		}).
		Register(string(TypeMeanReciprocalRank), func(in codec.Input) (MetricDetail, error) {
			return decodeDetail(in, func(r *codec.Reader) *MeanReciprocalRankDetail {
				return &MeanReciprocalRankDetail{FirstRelevant: r.Int("first_relevant")}
			})
		}).
		Register(string(TypeDCG), func(in codec.Input) (MetricDetail, error) {
			return decodeDetail(in, func(r *codec.Reader) *DCGDetail {
				return &DCGDetail{
					DCG:           r.Float("dcg"),
					IdealDCG:      r.OptFloat("ideal_dcg"),
					NormalizedDCG: r.OptFloat("normalized_dcg"),
					UnratedDocs:   r.Int("unrated_docs"),
				}
			})
		}).
		Register(string(TypeExpectedReciprocalRank), func(in codec.Input) (MetricDetail, error) {
			return decodeDetail(in, func(r *codec.Reader) *ExpectedReciprocalRankDetail {
				return &ExpectedReciprocalRankDetail{UnratedDocs: r.Int("unrated_docs")}
			})
		})
}

// DetailRegistry returns the tag registry of the metric detail family.
func DetailRegistry() *codec.Registry[MetricDetail] { return detailRegistry }

// UnmarshalDetail decodes a metric detail.
func UnmarshalDetail(data []byte) (MetricDetail, error) { return detailRegistry.Decode(data) }

// EqualDetail compares two possibly nil metric details.
func EqualDetail(a, b MetricDetail) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.IsEqualTo(b)
}

func decodeDetail[T MetricDetail](in codec.Input, fn func(r *codec.Reader) T) (MetricDetail, error) {
	r, err := in.Object()
	if err != nil {
		return nil, err
	}
	d := fn(r)
	if err := r.Err(); err != nil {
		return nil, err
	}
	return d, nil
}

func marshalDetail(d MetricDetail) ([]byte, error) { return codec.MarshalTagged(string(d.Type()), d) }

type PrecisionDetail struct {
	RelevantDocsRetrieved int
	DocsRetrieved         int
}

func (*PrecisionDetail) Type() Type      { return TypePrecision }
func (*PrecisionDetail) isMetricDetail() {}

func (d *PrecisionDetail) EncodeBody(w *codec.Writer) error {
	w.Field("relevant_docs_retrieved", d.RelevantDocsRetrieved).Field("docs_retrieved", d.DocsRetrieved)
	return w.Err()
}

func (d *PrecisionDetail) MarshalJSON() ([]byte, error)      { return marshalDetail(d) }
func (d *PrecisionDetail) IsEqualTo(other MetricDetail) bool { return codec.EqualAs(d, other) }

type RecallDetail struct {
	RelevantDocsRetrieved int
	RelevantDocs          int
}

func (*RecallDetail) Type() Type      { return TypeRecall }
func (*RecallDetail) isMetricDetail() {}

func (d *RecallDetail) EncodeBody(w *codec.Writer) error {
	w.Field("relevant_docs_retrieved", d.RelevantDocsRetrieved).Field("relevant_docs", d.RelevantDocs)
	return w.Err()
}

func (d *RecallDetail) MarshalJSON() ([]byte, error)      { return marshalDetail(d) }
func (d *RecallDetail) IsEqualTo(other MetricDetail) bool { return codec.EqualAs(d, other) }

type MeanReciprocalRankDetail struct {
	FirstRelevant int
}

func (*MeanReciprocalRankDetail) Type() Type      { return TypeMeanReciprocalRank }
func (*MeanReciprocalRankDetail) isMetricDetail() {}

func (d *MeanReciprocalRankDetail) EncodeBody(w *codec.Writer) error {
	w.Field("first_relevant", d.FirstRelevant)
	return w.Err()
}

func (d *MeanReciprocalRankDetail) MarshalJSON() ([]byte, error) { return marshalDetail(d) }
func (d *MeanReciprocalRankDetail) IsEqualTo(other MetricDetail) bool {
	return codec.EqualAs(d, other)
}

type DCGDetail struct {
	DCG           float64
	IdealDCG      *float64
	NormalizedDCG *float64
	UnratedDocs   int
}

func (*DCGDetail) Type() Type      { return TypeDCG }
func (*DCGDetail) isMetricDetail() {}

func (d *DCGDetail) EncodeBody(w *codec.Writer) error {
	w.Field("dcg", d.DCG).OptFloat("ideal_dcg", d.IdealDCG).OptFloat("normalized_dcg", d.NormalizedDCG)
	w.Field("unrated_docs", d.UnratedDocs)
	return w.Err()
}

func (d *DCGDetail) MarshalJSON() ([]byte, error)      { return marshalDetail(d) }
func (d *DCGDetail) IsEqualTo(other MetricDetail) bool { return codec.EqualAs(d, other) }

type ExpectedReciprocalRankDetail struct {
	UnratedDocs int
}

func (*ExpectedReciprocalRankDetail) Type() Type      { return TypeExpectedReciprocalRank }
func (*ExpectedReciprocalRankDetail) isMetricDetail() {}

func (d *ExpectedReciprocalRankDetail) EncodeBody(w *codec.Writer) error {
	w.Field("unrated_docs", d.UnratedDocs)
	return w.Err()
}

func (d *ExpectedReciprocalRankDetail) MarshalJSON() ([]byte, error) { return marshalDetail(d) }
func (d *ExpectedReciprocalRankDetail) IsEqualTo(other MetricDetail) bool {
	return codec.EqualAs(d, other)
}
