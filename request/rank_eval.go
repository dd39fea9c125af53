package request

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/rankeval"
)

// RankEvalRequest evaluates search quality over rated requests.
type RankEvalRequest struct {
	base
	indices    []string
	evaluation rankeval.Evaluation
}

func (r *RankEvalRequest) Indices() []string { return slices.Clone(r.indices) }

// Evaluation returns a copy of the evaluation body.
func (r *RankEvalRequest) Evaluation() rankeval.Evaluation {
	e := r.evaluation
	e.Requests = slices.Clone(r.evaluation.Requests)
	e.Templates = slices.Clone(r.evaluation.Templates)
	return e
}

func (r *RankEvalRequest) Body(s Serializer) ([]byte, error) { return s.Encode(&r.evaluation) }

// RankEvalBuilder builds a RankEvalRequest.
type RankEvalBuilder struct {
	extras
	indices []string
	e       rankeval.Evaluation
}

func NewRankEvalBuilder(indices ...string) *RankEvalBuilder {
	return &RankEvalBuilder{indices: indices}
}

func (b *RankEvalBuilder) Request(rr ...*rankeval.RatedRequest) *RankEvalBuilder {
	b.e.Requests = append(b.e.Requests, rr...)
	return b
}
func (b *RankEvalBuilder) Metric(m rankeval.Metric) *RankEvalBuilder { b.e.Metric = m; return b }
func (b *RankEvalBuilder) Template(id, source string) *RankEvalBuilder {
	b.e.Templates = append(b.e.Templates, rankeval.Template{ID: id, Source: source})
	return b
}
func (b *RankEvalBuilder) Param(k, v string) *RankEvalBuilder  { b.param(k, v); return b }
func (b *RankEvalBuilder) Header(k, v string) *RankEvalBuilder { b.header(k, v); return b }

// Build requires at least one rated request.
func (b *RankEvalBuilder) Build() (*RankEvalRequest, error) {
	var v domain.Validator
	v.Check(noEmptyNames("index", b.indices)).NotEmpty("requests", len(b.e.Requests))
	for i, rr := range b.e.Requests {
		if rr == nil {
			v.Check(domain.NewMissingRequiredField("requests[" + strconv.Itoa(i) + "]"))
		}
	}
	if err := v.Err(); err != nil {
		return nil, err
	}
	e := b.e
	e.Requests = slices.Clone(b.e.Requests)
	e.Templates = slices.Clone(b.e.Templates)
	return &RankEvalRequest{
		base:       b.base(http.MethodPost, multiPath(b.indices, "_rank_eval")),
		indices:    slices.Clone(b.indices),
		evaluation: e,
	}, nil
}
