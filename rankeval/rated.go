package rankeval

import (
	"fmt"
	"maps"
	"slices"

	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/query"
)

// RatedDocument grades one document for a rated request.
type RatedDocument struct {
	Index  string
	ID     string
	Rating int
}

func (d RatedDocument) MarshalJSON() ([]byte, error) {
	return codec.NewWriter().Field("_index", d.Index).Field("_id", d.ID).Field("rating", d.Rating).Bytes()
}

func decodeRatedDocument(raw []byte) (RatedDocument, error) {
	r, err := codec.NewReader(raw)
	if err != nil {
		return RatedDocument{}, err
	}
	d := RatedDocument{Index: r.String("_index"), ID: r.String("_id"), Rating: r.Int("rating")}
	return d, r.Err()
}

// RatedRequest is a query with graded documents. It either carries a Query
// or refers to a template by TemplateID with Params.
type RatedRequest struct {
	ID         string
	Query      query.Query
	Ratings    []RatedDocument
	TemplateID *string
	Params     map[string]any
}

func (rr *RatedRequest) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.Field("id", rr.ID)
	if rr.Query != nil {
		w.Object("request", func(o *codec.Writer) error {
			o.Field("query", rr.Query)
			return o.Err()
		})
	}
	ratings := rr.Ratings
	if ratings == nil {
		ratings = []RatedDocument{}
	}
	w.Field("ratings", ratings)
	w.OptString("template_id", rr.TemplateID)
	if len(rr.Params) > 0 {
		w.Field("params", rr.Params)
	}
	return w.Bytes()
}

// IsEqualTo compares two rated requests structurally.
func (rr *RatedRequest) IsEqualTo(other *RatedRequest) bool { return codec.EqualAs(rr, any(other)) }

// UnmarshalRatedRequest decodes a rated request.
func UnmarshalRatedRequest(data []byte) (*RatedRequest, error) {
	r, err := codec.NewReader(data)
	if err != nil {
		return nil, err
	}
	rr := &RatedRequest{ID: r.String("id"), TemplateID: r.OptString("template_id")}
	if req := r.OptObject("request"); req != nil {
		if raw := req.Raw("query"); raw != nil {
			q, err := query.Unmarshal(raw)
			if err != nil {
				return nil, fmt.Errorf("rated request %q: %w", rr.ID, err)
			}
			rr.Query = q
		}
	}
	r.OptDecode("params", &rr.Params)
	for _, raw := range r.Elements("ratings") {
		d, err := decodeRatedDocument(raw)
		if err != nil {
			return nil, fmt.Errorf("rated request %q: %w", rr.ID, err)
		}
		rr.Ratings = append(rr.Ratings, d)
	}
	return rr, r.Err()
}

// RatedRequestBuilder builds a RatedRequest.
type RatedRequestBuilder struct{ rr RatedRequest }

func NewRatedRequestBuilder() *RatedRequestBuilder { return &RatedRequestBuilder{} }

func (b *RatedRequestBuilder) ID(id string) *RatedRequestBuilder        { b.rr.ID = id; return b }
func (b *RatedRequestBuilder) Query(q query.Query) *RatedRequestBuilder { b.rr.Query = q; return b }
func (b *RatedRequestBuilder) Rate(index, id string, rating int) *RatedRequestBuilder {
	b.rr.Ratings = append(b.rr.Ratings, RatedDocument{Index: index, ID: id, Rating: rating})
	return b
}
func (b *RatedRequestBuilder) Template(id string, params map[string]any) *RatedRequestBuilder {
	b.rr.TemplateID = &id
	b.rr.Params = params
	return b
}

// Build requires an id, a query or template, and at least one rating.
func (b *RatedRequestBuilder) Build() (*RatedRequest, error) {
	var v domain.Validator
	err := v.RequiredString("id", b.rr.ID).
		AtLeastOne([]string{"request", "template_id"}, b.rr.Query != nil, b.rr.TemplateID != nil).
		NotEmpty("ratings", len(b.rr.Ratings)).
		Err()
	if err != nil {
		return nil, err
	}
	rr := b.rr
	rr.Ratings = slices.Clone(b.rr.Ratings)
	rr.Params = maps.Clone(b.rr.Params)
	return &rr, nil
}

// Template is a search template referenced by rated requests.
type Template struct {
	ID     string
	Source string
}

func (t Template) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.Field("id", t.ID).Object("template", func(o *codec.Writer) error {
		o.Field("source", t.Source)
		return o.Err()
	})
	return w.Bytes()
}

// Evaluation is the body of a rank_eval request.
type Evaluation struct {
	Requests  []*RatedRequest
	Metric    Metric
	Templates []Template
}

func (e *Evaluation) MarshalJSON() ([]byte, error) {
	w := codec.NewWriter()
	w.Field("requests", e.Requests)
	if e.Metric != nil {
		w.Field("metric", e.Metric)
	}
	if len(e.Templates) > 0 {
		w.Field("templates", e.Templates)
	}
	return w.Bytes()
}

// UnmarshalEvaluation decodes a rank_eval body.
func UnmarshalEvaluation(data []byte) (*Evaluation, error) {
	r, err := codec.NewReader(data)
	if err != nil {
		return nil, err
	}
	e := &Evaluation{}
	for _, raw := range r.Elements("requests") {
		rr, err := UnmarshalRatedRequest(raw)
		if err != nil {
			return nil, err
		}
		e.Requests = append(e.Requests, rr)
	}
	if raw := r.Raw("metric"); raw != nil {
		m, err := UnmarshalMetric(raw)
		if err != nil {
			return nil, err
		}
		e.Metric = m
	}
	for _, raw := range r.Elements("templates") {
		tr, err := codec.NewReader(raw)
		if err != nil {
			return nil, err
		}
		t := Template{ID: tr.String("id")}
		if body := tr.Object("template"); body != nil {
			t.Source = body.String("source")
			tr.Fail(body.Err())
		}
		if err := tr.Err(); err != nil {
			return nil, err
		}
		e.Templates = append(e.Templates, t)
	}
	return e, r.Err()
}
