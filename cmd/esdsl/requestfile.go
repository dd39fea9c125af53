package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/esdsl"
	"github.com/kailas-cloud/esdsl/internal/codec"
	"github.com/kailas-cloud/esdsl/query"
	"github.com/kailas-cloud/esdsl/rankeval"
	"github.com/kailas-cloud/esdsl/request"
	"github.com/kailas-cloud/esdsl/suggest"
)

// requestFile is the YAML description of one request. Body is written in
// the cluster's own JSON shape and decoded through the variant codecs.
type requestFile struct {
	Op      string            `yaml:"op"`
	Index   string            `yaml:"index"`
	Indices []string          `yaml:"indices"`
	ID      string            `yaml:"id"`
	Params  map[string]string `yaml:"params"`
	Headers map[string]string `yaml:"headers"`
	Body    any               `yaml:"body"`
}

func readRequestFile(path string) (*requestFile, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read request file: %w", err)
	}
	return parseRequestFile(data)
}

func parseRequestFile(data []byte) (*requestFile, error) {
	var rf requestFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parse request file: %w", err)
	}
	if rf.Op == "" {
		return nil, fmt.Errorf("request file: op is required")
	}
	return &rf, nil
}

func (rf *requestFile) indices() []string {
	if rf.Index != "" {
		return append([]string{rf.Index}, rf.Indices...)
	}
	return rf.Indices
}

func (rf *requestFile) body() ([]byte, error) {
	if rf.Body == nil {
		return nil, nil
	}
	b, err := json.Marshal(rf.Body)
	if err != nil {
		return nil, fmt.Errorf("request file body: %w", err)
	}
	return b, nil
}

// callOptions carries the file's params and headers, in sorted key order.
func (rf *requestFile) callOptions() []esdsl.CallOption {
	var opts []esdsl.CallOption
	for _, k := range sortedKeys(rf.Params) {
		opts = append(opts, esdsl.CallParam(k, rf.Params[k]))
	}
	for _, k := range sortedKeys(rf.Headers) {
		opts = append(opts, esdsl.CallHeader(k, rf.Headers[k]))
	}
	return opts
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// build turns the file into a request value.
func (rf *requestFile) build() (request.Request, error) {
	body, err := rf.body()
	if err != nil {
		return nil, err
	}
	switch rf.Op {
	case "search":
		return buildSearch(rf.indices(), body)
	case "count":
		return buildCount(rf.indices(), body)
	case "delete_by_query":
		return buildDeleteByQuery(rf.indices(), body)
	case "update_by_query":
		return buildUpdateByQuery(rf.indices(), body)
	case "rank_eval":
		return buildRankEval(rf.indices(), body)
	case "get":
		return request.NewGetBuilder(rf.Index, rf.ID).Build()
	case "delete":
		return request.NewDeleteBuilder(rf.Index, rf.ID).Build()
	case "index":
		b := request.NewIndexBuilder(rf.Index).ID(rf.ID)
		if body != nil {
			b.Document(json.RawMessage(body))
		}
		return b.Build()
	default:
		return nil, fmt.Errorf("request file: unsupported op %q", rf.Op)
	}
}

// bodyReader returns nil for an absent body.
func bodyReader(body []byte) (*codec.Reader, error) {
	if body == nil {
		return nil, nil
	}
	r, err := codec.NewReader(body)
	if err != nil {
		return nil, fmt.Errorf("request file body: %w", err)
	}
	return r, nil
}

func optQuery(r *codec.Reader, key string) (query.Query, error) {
	raw := r.Raw(key)
	if raw == nil {
		return nil, nil
	}
	q, err := query.Unmarshal(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", key, err)
	}
	return q, nil
}

func buildSearch(indices []string, body []byte) (*request.SearchRequest, error) {
	b := request.NewSearchBuilder(indices...)
	r, err := bodyReader(body)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return b.Build()
	}

	if q, err := optQuery(r, "query"); err != nil {
		return nil, err
	} else if q != nil {
		b.Query(q)
	}
	if q, err := optQuery(r, "post_filter"); err != nil {
		return nil, err
	} else if q != nil {
		b.PostFilter(q)
	}
	for i, raw := range r.Elements("knn") {
		q, err := decodeKNN(raw)
		if err != nil {
			return nil, fmt.Errorf("knn[%d]: %w", i, err)
		}
		b.KNN(q)
	}
	if raw := r.Raw("suggest"); raw != nil {
		s, err := suggest.UnmarshalSuggester(raw)
		if err != nil {
			return nil, fmt.Errorf("suggest: %w", err)
		}
		b.Suggest(s)
	}
	for i, raw := range r.Elements("sort") {
		if err := addSort(b, raw); err != nil {
			return nil, fmt.Errorf("sort[%d]: %w", i, err)
		}
	}
	if v := r.OptInt("from"); v != nil {
		b.From(*v)
	}
	if v := r.OptInt("size"); v != nil {
		b.Size(*v)
	}
	if v := r.OptFloat("min_score"); v != nil {
		b.MinScore(*v)
	}
	if v := r.OptBool("track_total_hits"); v != nil {
		b.TrackTotalHits(*v)
	}
	if fields := r.Strings("_source"); fields != nil {
		b.Source(fields...)
	}
	var aggs map[string]any
	if r.OptDecode("aggs", &aggs) || r.OptDecode("aggregations", &aggs) {
		b.Aggregations(aggs)
	}
	if err := r.Err(); err != nil {
		return nil, fmt.Errorf("search body: %w", err)
	}
	return b.Build()
}

// decodeKNN reads a top-level knn section, which carries no tag.
func decodeKNN(raw []byte) (*query.KNNQuery, error) {
	tagged := append(append([]byte(`{"knn":`), raw...), '}')
	q, err := query.Unmarshal(tagged)
	if err != nil {
		return nil, err
	}
	knn, ok := q.(*query.KNNQuery)
	if !ok {
		return nil, fmt.Errorf("expected knn, got %s", q.Type())
	}
	return knn, nil
}

// addSort accepts "field", {"field": "desc"} and {"field": {"order": "desc"}}.
func addSort(b *request.SearchBuilder, raw []byte) error {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return err
	}
	switch s := v.(type) {
	case string:
		b.Sort(s, "")
	case map[string]any:
		if len(s) != 1 {
			return codec.ErrNotSingleKeyObject
		}
		for field, val := range s {
			switch o := val.(type) {
			case string:
				b.Sort(field, request.SortOrder(o))
			case map[string]any:
				order, _ := o["order"].(string)
				b.Sort(field, request.SortOrder(order))
			default:
				return fmt.Errorf("sort %q: unsupported order %v", field, val)
			}
		}
	default:
		return fmt.Errorf("unsupported sort %v", v)
	}
	return nil
}

func buildCount(indices []string, body []byte) (*request.CountRequest, error) {
	b := request.NewCountBuilder(indices...)
	r, err := bodyReader(body)
	if err != nil {
		return nil, err
	}
	if r != nil {
		q, err := optQuery(r, "query")
		if err != nil {
			return nil, err
		}
		if q != nil {
			b.Query(q)
		}
	}
	return b.Build()
}

func buildDeleteByQuery(indices []string, body []byte) (*request.DeleteByQueryRequest, error) {
	b := request.NewDeleteByQueryBuilder(indices...)
	r, err := bodyReader(body)
	if err != nil {
		return nil, err
	}
	if r != nil {
		q, err := optQuery(r, "query")
		if err != nil {
			return nil, err
		}
		if q != nil {
			b.Query(q)
		}
		if v := r.OptInt("max_docs"); v != nil {
			b.MaxDocs(*v)
		}
		if v := r.OptString("conflicts"); v != nil {
			b.Conflicts(request.Conflicts(*v))
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("delete_by_query body: %w", err)
		}
	}
	return b.Build()
}

func buildUpdateByQuery(indices []string, body []byte) (*request.UpdateByQueryRequest, error) {
	b := request.NewUpdateByQueryBuilder(indices...)
	r, err := bodyReader(body)
	if err != nil {
		return nil, err
	}
	if r != nil {
		q, err := optQuery(r, "query")
		if err != nil {
			return nil, err
		}
		if q != nil {
			b.Query(q)
		}
		if raw := r.Raw("script"); raw != nil {
			s, err := query.DecodeScript(raw)
			if err != nil {
				return nil, fmt.Errorf("script: %w", err)
			}
			b.Script(s)
		}
		if v := r.OptInt("max_docs"); v != nil {
			b.MaxDocs(*v)
		}
		if v := r.OptString("conflicts"); v != nil {
			b.Conflicts(request.Conflicts(*v))
		}
		if err := r.Err(); err != nil {
			return nil, fmt.Errorf("update_by_query body: %w", err)
		}
	}
	return b.Build()
}

func buildRankEval(indices []string, body []byte) (*request.RankEvalRequest, error) {
	b := request.NewRankEvalBuilder(indices...)
	if body != nil {
		ev, err := rankeval.UnmarshalEvaluation(body)
		if err != nil {
			return nil, fmt.Errorf("rank_eval body: %w", err)
		}
		b.Request(ev.Requests...)
		if ev.Metric != nil {
			b.Metric(ev.Metric)
		}
		for _, t := range ev.Templates {
			b.Template(t.ID, t.Source)
		}
	}
	return b.Build()
}
