package response

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/rankeval"
)

// DocRef names a document.
type DocRef struct {
	Index string `json:"_index"`
	ID    string `json:"_id"`
}

// RatedHit is a returned hit with its rating, nil when unrated.
type RatedHit struct {
	Index  string
	ID     string
	Score  float64
	Rating *int
}

// QueryQuality is the evaluation of one rated request.
type QueryQuality struct {
	ID            string
	MetricScore   float64
	UnratedDocs   []DocRef
	Hits          []RatedHit
	MetricDetails rankeval.MetricDetail
}

// RankEvalResponse is the result of a rank_eval request. Details keep the
// order of the response.
type RankEvalResponse struct {
	MetricScore float64
	Details     []QueryQuality
	Failures    map[string]json.RawMessage
}

// Detail returns the evaluation of the rated request with id.
func (r *RankEvalResponse) Detail(id string) (QueryQuality, bool) {
	for _, d := range r.Details {
		if d.ID == id {
			return d, true
		}
	}
	return QueryQuality{}, false
}

// DecodeRankEval decodes a rank_eval response. Metric details are decoded by
// the metric detail registry.
func DecodeRankEval(data []byte) (*RankEvalResponse, error) {
	r, err := codec.NewReader(data)
	if err != nil {
		return nil, fmt.Errorf("decode rank_eval response: %w", err)
	}
	out := &RankEvalResponse{MetricScore: r.Float("metric_score")}
	r.OptDecode("failures", &out.Failures)
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("decode rank_eval response: %w", err)
	}
	details := r.OptObject("details")
	if details == nil {
		return out, r.Err()
	}
	err = details.Each(func(k codec.Key, raw []byte) error {
		q, err := decodeQueryQuality(k.Name(), raw)
		if err != nil {
			return fmt.Errorf("rank_eval detail %q: %w", k.Name(), err)
		}
		out.Details = append(out.Details, q)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func decodeQueryQuality(id string, raw []byte) (QueryQuality, error) {
	r, err := codec.NewReader(raw)
	if err != nil {
		return QueryQuality{}, err
	}
	q := QueryQuality{ID: id, MetricScore: r.Float("metric_score")}
	r.OptDecode("unrated_docs", &q.UnratedDocs)
	var hits []struct {
		Hit struct {
			Index string  `json:"_index"`
			ID    string  `json:"_id"`
			Score float64 `json:"_score"`
		} `json:"hit"`
		Rating *int `json:"rating"`
	}
	r.OptDecode("hits", &hits)
	for _, h := range hits {
		q.Hits = append(q.Hits, RatedHit{Index: h.Hit.Index, ID: h.Hit.ID, Score: h.Hit.Score, Rating: h.Rating})
	}
	if err := r.Err(); err != nil {
		return QueryQuality{}, err
	}
	if md := r.Raw("metric_details"); md != nil {
		d, err := rankeval.UnmarshalDetail(md)
		if err != nil {
			return QueryQuality{}, err
		}
		q.MetricDetails = d
	}
	return q, nil
}
