package chi

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl/internal/codec"
	logpkg "github.com/kailas-cloud/esdsl/internal/logger"
	"github.com/kailas-cloud/esdsl/rankeval"
	"github.com/kailas-cloud/esdsl/request"
)

const defaultSearchSize = 10

var okShards = map[string]int{"total": 1, "successful": 1, "skipped": 0, "failed": 0}

func (s *Server) search(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON(w, r, false)
	if !ok {
		return
	}
	all, err := s.store.hits(indexList(r))
	if err != nil {
		writeError(w, err)
		return
	}

	from := int(gjson.GetBytes(body, "from").Int())
	size := defaultSearchSize
	if v := gjson.GetBytes(body, "size"); v.Exists() {
		size = int(v.Int())
	}
	page := window(all, from, size)

	var maxScore *float64
	if len(page) > 0 {
		one := 1.0
		maxScore = &one
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"took":      0,
		"timed_out": false,
		"_shards":   okShards,
		"hits": map[string]any{
			"total":     map[string]any{"value": len(all), "relation": "eq"},
			"max_score": maxScore,
			"hits":      page,
		},
	})
}

func window(all []hit, from, size int) []hit {
	if from < 0 {
		from = 0
	}
	if from > len(all) {
		from = len(all)
	}
	end := from + max(size, 0)
	if end > len(all) {
		end = len(all)
	}
	return append([]hit{}, all[from:end]...)
}

func (s *Server) count(w http.ResponseWriter, r *http.Request) {
	if _, ok := readJSON(w, r, false); !ok {
		return
	}
	all, err := s.store.hits(indexList(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"count": len(all), "_shards": okShards})
}

type bulkItem struct {
	Index   string     `json:"_index"`
	ID      string     `json:"_id"`
	Version int64      `json:"_version,omitempty"`
	Result  string     `json:"result,omitempty"`
	SeqNo   int64      `json:"_seq_no,omitempty"`
	Term    int64      `json:"_primary_term,omitempty"`
	Status  int        `json:"status"`
	Error   *errorBody `json:"error,omitempty"`
}

func (s *Server) bulk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, err := readBody(r)
	if err != nil {
		writeError(w, &stubError{http.StatusBadRequest, "parse_exception", err.Error()})
		return
	}
	ops, err := request.ParseBulk(body)
	if err != nil {
		writeError(w, &stubError{http.StatusBadRequest, "illegal_argument_exception", err.Error()})
		return
	}

	defaultIndex := pathParam(r, "index")
	items := make([]map[string]bulkItem, len(ops))
	failed := false
	for i, op := range ops {
		item := s.applyBulk(op, defaultIndex)
		if item.Error != nil {
			failed = true
		}
		items[i] = map[string]bulkItem{string(op.Type()): item}
	}

	logpkg.FromContext(r.Context()).Debug("bulk applied",
		zap.Int("items", len(ops)),
		zap.Bool("errors", failed),
	)
	writeJSON(w, http.StatusOK, map[string]any{
		"took":   time.Since(start).Milliseconds(),
		"errors": failed,
		"items":  items,
	})
}

func (s *Server) applyBulk(op request.BulkOperation, defaultIndex string) bulkItem {
	meta := operationMeta(op)
	index := meta.Index
	if index == "" {
		index = defaultIndex
	}
	if index == "" {
		return failedItem(index, meta.ID, &stubError{http.StatusBadRequest,
			"action_request_validation_exception", "index is missing"})
	}

	var res writeResult
	var err error
	switch o := op.(type) {
	case *request.IndexOperation:
		res, err = s.putSource(index, meta.ID, o.Document, false)
	case *request.CreateOperation:
		res, err = s.putSource(index, meta.ID, o.Document, true)
	case *request.UpdateOperation:
		res, err = s.store.update(index, meta.ID, o.Body.Doc, o.Body.Upsert,
			o.Body.DocAsUpsert != nil && *o.Body.DocAsUpsert)
	case *request.DeleteOperation:
		res, err = s.store.remove(index, meta.ID)
	}
	if err != nil {
		return failedItem(index, meta.ID, err)
	}
	return bulkItem{
		Index:   res.Index,
		ID:      res.ID,
		Version: res.Version,
		Result:  res.Result,
		SeqNo:   res.SeqNo,
		Term:    res.Term,
		Status:  writeStatus(res),
	}
}

func (s *Server) putSource(index, id string, doc any, create bool) (writeResult, error) {
	src, err := json.Marshal(doc)
	if err != nil {
		return writeResult{}, &stubError{http.StatusBadRequest, "mapper_parsing_exception", err.Error()}
	}
	return s.store.put(index, id, src, create)
}

func failedItem(index, id string, err error) bulkItem {
	status, body := toErrorBody(err)
	return bulkItem{Index: index, ID: id, Status: status, Error: &body}
}

func operationMeta(op request.BulkOperation) request.Meta {
	switch o := op.(type) {
	case *request.IndexOperation:
		return o.Meta
	case *request.CreateOperation:
		return o.Meta
	case *request.UpdateOperation:
		return o.Meta
	case *request.DeleteOperation:
		return o.Meta
	}
	return request.Meta{}
}

// rankEval answers with a zero score per rated request and an empty metric
// detail of the requested metric.
func (s *Server) rankEval(w http.ResponseWriter, r *http.Request) {
	body, ok := readJSON(w, r, true)
	if !ok {
		return
	}
	ev, err := rankeval.UnmarshalEvaluation(body)
	if err != nil {
		writeError(w, &stubError{http.StatusBadRequest, "parse_exception", err.Error()})
		return
	}
	metric := rankeval.TypePrecision
	if ev.Metric != nil {
		metric = ev.Metric.Type()
	}

	out := codec.NewWriter()
	out.Field("metric_score", 0.0)
	out.Object("details", func(d *codec.Writer) error {
		for _, rr := range ev.Requests {
			d.Object(rr.ID, func(q *codec.Writer) error {
				q.Field("metric_score", 0.0).
					Field("unrated_docs", []any{}).
					Field("hits", []any{}).
					Field("metric_details", emptyDetail(metric))
				return q.Err()
			})
		}
		return d.Err()
	})
	out.Field("failures", map[string]any{})
	data, err := out.Bytes()
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func emptyDetail(t rankeval.Type) rankeval.MetricDetail {
	switch t {
	case rankeval.TypeRecall:
		return &rankeval.RecallDetail{}
	case rankeval.TypeMeanReciprocalRank:
		return &rankeval.MeanReciprocalRankDetail{}
	case rankeval.TypeDCG:
		return &rankeval.DCGDetail{}
	case rankeval.TypeExpectedReciprocalRank:
		return &rankeval.ExpectedReciprocalRankDetail{}
	}
	return &rankeval.PrecisionDetail{}
}

// reindex copies documents. Source queries and scripts are ignored.
func (s *Server) reindex(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, ok := readJSON(w, r, true)
	if !ok {
		return
	}
	var sources []string
	src := gjson.GetBytes(body, "source.index")
	if src.IsArray() {
		for _, v := range src.Array() {
			sources = append(sources, v.String())
		}
	} else if src.String() != "" {
		sources = []string{src.String()}
	}
	dest := gjson.GetBytes(body, "dest.index").String()
	if len(sources) == 0 || dest == "" {
		writeError(w, &stubError{http.StatusBadRequest, "action_request_validation_exception",
			"source.index and dest.index are required"})
		return
	}

	created, updated, err := s.store.copyDocs(sources, dest)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, byQueryResult(start, created+updated, map[string]int64{
		"created": created,
		"updated": updated,
	}))
}

// byQuery acknowledges delete_by_query and update_by_query without touching
// any document.
func (s *Server) byQuery(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if _, ok := readJSON(w, r, false); !ok {
		return
	}
	if _, err := s.store.hits(indexList(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, byQueryResult(start, 0, nil))
}

func byQueryResult(start time.Time, total int64, counts map[string]int64) map[string]any {
	out := map[string]any{
		"took":              time.Since(start).Milliseconds(),
		"timed_out":         false,
		"total":             total,
		"created":           int64(0),
		"updated":           int64(0),
		"deleted":           int64(0),
		"batches":           1,
		"version_conflicts": 0,
		"noops":             0,
		"failures":          []any{},
	}
	for k, v := range counts {
		out[k] = v
	}
	return out
}
