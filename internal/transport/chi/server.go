// Package chi is an in-memory stand-in for an Elasticsearch cluster, routed
// with chi. It stores and returns documents but never evaluates a query:
// search and count see every document of the addressed indices.
package chi

import (
	"errors"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esdsl/internal/metrics"
	"github.com/kailas-cloud/esdsl/request"
)

// Options configures the stub cluster.
type Options struct {
	// APIKeys enables ApiKey authentication when non-empty.
	APIKeys []string
	// Registerer enables HTTP metrics.
	Registerer prometheus.Registerer
	// Gatherer serves GET /metrics.
	Gatherer prometheus.Gatherer
	Logger   *zap.Logger
}

// Recorded is a request as received by the stub, body decompressed.
type Recorded struct {
	Method   string
	Path     string
	RawQuery string
	Header   http.Header
	Body     []byte
}

// Server is the stub cluster. It implements http.Handler.
type Server struct {
	store   *store
	handler http.Handler

	mu       sync.Mutex
	requests []Recorded
}

// NewServer builds the stub cluster router.
func NewServer(opts Options) (*Server, error) {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{store: newStore()}

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(s.recordMiddleware)
	r.Use(productHeader)
	r.Use(APIKeyAuthMiddleware(opts.APIKeys))
	if opts.Registerer != nil {
		m, err := metrics.NewHTTP(opts.Registerer)
		if err != nil {
			return nil, err
		}
		r.Use(m.Middleware())
	}
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, &stubError{http.StatusBadRequest, "illegal_argument_exception",
			"no handler found for uri [" + r.URL.Path + "] and method [" + r.Method + "]"})
	})

	r.Get("/", s.info)
	if opts.Gatherer != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}
	r.Post("/_bulk", s.bulk)
	r.Put("/_bulk", s.bulk)
	r.Get("/_search", s.search)
	r.Post("/_search", s.search)
	r.Get("/_count", s.count)
	r.Post("/_count", s.count)
	r.Get("/_rank_eval", s.rankEval)
	r.Post("/_rank_eval", s.rankEval)
	r.Post("/_reindex", s.reindex)

	r.Route("/{index}", func(r chi.Router) {
		r.Head("/", s.indexExists)
		r.Put("/", s.createIndex)
		r.Delete("/", s.deleteIndex)

		r.Post("/_doc", s.indexDoc)
		r.Put("/_doc/{id}", s.indexDoc)
		r.Post("/_doc/{id}", s.indexDoc)
		r.Put("/_create/{id}", s.createDoc)
		r.Post("/_create/{id}", s.createDoc)
		r.Get("/_doc/{id}", s.getDoc)
		r.Head("/_doc/{id}", s.getDoc)
		r.Delete("/_doc/{id}", s.deleteDoc)
		r.Post("/_update/{id}", s.updateDoc)

		r.Post("/_bulk", s.bulk)
		r.Put("/_bulk", s.bulk)
		r.Get("/_search", s.search)
		r.Post("/_search", s.search)
		r.Get("/_count", s.count)
		r.Post("/_count", s.count)
		r.Get("/_rank_eval", s.rankEval)
		r.Post("/_rank_eval", s.rankEval)
		r.Post("/_delete_by_query", s.byQuery)
		r.Post("/_update_by_query", s.byQuery)
	})

	s.handler = r
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { s.handler.ServeHTTP(w, r) }

// Requests returns a copy of every request received so far.
func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.requests...)
}

// Reset forgets recorded requests. Stored indices are kept.
func (s *Server) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

func (s *Server) record(rec Recorded) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = append(s.requests, rec)
}

func (s *Server) info(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":         "esdsl-stub",
		"cluster_name": "esdsl",
		"version":      map[string]string{"number": "9.1.0", "build_flavor": "default"},
		"tagline":      "You Know, for Search",
	})
}

func (s *Server) indexExists(w http.ResponseWriter, r *http.Request) {
	if s.store.exists(pathParam(r, "index")) {
		w.WriteHeader(http.StatusOK)
		return
	}
	w.WriteHeader(http.StatusNotFound)
}

func (s *Server) createIndex(w http.ResponseWriter, r *http.Request) {
	name := pathParam(r, "index")
	body, ok := readJSON(w, r, false)
	if !ok {
		return
	}
	if err := s.store.createIndex(name, body); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true, "shards_acknowledged": true, "index": name})
}

func (s *Server) deleteIndex(w http.ResponseWriter, r *http.Request) {
	if err := s.store.deleteIndices(indexList(r)); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"acknowledged": true})
}

func (s *Server) indexDoc(w http.ResponseWriter, r *http.Request) {
	s.writeDoc(w, r, r.URL.Query().Get("op_type") == "create")
}

func (s *Server) createDoc(w http.ResponseWriter, r *http.Request) { s.writeDoc(w, r, true) }

func (s *Server) writeDoc(w http.ResponseWriter, r *http.Request, create bool) {
	body, ok := readJSON(w, r, true)
	if !ok {
		return
	}
	res, err := s.store.put(pathParam(r, "index"), pathParam(r, "id"), body, create)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, writeStatus(res), res)
}

func (s *Server) getDoc(w http.ResponseWriter, r *http.Request) {
	index, id := pathParam(r, "index"), pathParam(r, "id")
	doc, err := s.store.get(index, id)
	if err != nil {
		writeError(w, err)
		return
	}
	if doc == nil {
		writeJSON(w, http.StatusNotFound, map[string]any{"_index": index, "_id": id, "found": false})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"_index":        index,
		"_id":           id,
		"_version":      doc.version,
		"_seq_no":       doc.seqNo,
		"_primary_term": 1,
		"found":         true,
		"_source":       doc.source,
	})
}

func (s *Server) deleteDoc(w http.ResponseWriter, r *http.Request) {
	res, err := s.store.remove(pathParam(r, "index"), pathParam(r, "id"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, writeStatus(res), res)
}

// updateDoc merges a partial document. Scripts are accepted but never run.
func (s *Server) updateDoc(w http.ResponseWriter, r *http.Request) {
	raw, ok := readJSON(w, r, true)
	if !ok {
		return
	}
	body, err := request.ParseUpdateBody(raw)
	if err != nil {
		writeError(w, &stubError{http.StatusBadRequest, "x_content_parse_exception", err.Error()})
		return
	}
	docAsUpsert := body.DocAsUpsert != nil && *body.DocAsUpsert
	res, err := s.store.update(pathParam(r, "index"), pathParam(r, "id"), body.Doc, body.Upsert, docAsUpsert)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, writeStatus(res), res)
}

func writeStatus(res writeResult) int {
	switch res.Result {
	case "created":
		return http.StatusCreated
	case "not_found":
		return http.StatusNotFound
	}
	return http.StatusOK
}

// pathParam returns the unescaped URL parameter. chi routes on the raw path,
// so ids like "a%2Fb" arrive escaped.
func pathParam(r *http.Request, key string) string {
	v := chi.URLParam(r, key)
	if u, err := url.PathUnescape(v); err == nil {
		return u
	}
	return v
}

func indexList(r *http.Request) []string {
	v := pathParam(r, "index")
	if v == "" {
		return nil
	}
	return strings.Split(v, ",")
}

// readJSON reads the request body and checks that it is valid JSON. An empty
// body is accepted unless required is set.
func readJSON(w http.ResponseWriter, r *http.Request, required bool) ([]byte, bool) {
	body, err := readBody(r)
	if err != nil {
		writeError(w, &stubError{http.StatusBadRequest, "parse_exception", err.Error()})
		return nil, false
	}
	if len(body) == 0 {
		if required {
			writeError(w, &stubError{http.StatusBadRequest, "parse_exception", "request body is required"})
			return nil, false
		}
		return nil, true
	}
	if !json.Valid(body) {
		writeError(w, &stubError{http.StatusBadRequest, "parse_exception", "request body is not valid JSON"})
		return nil, false
	}
	return body, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorCause struct {
	Type   string `json:"type"`
	Reason string `json:"reason"`
}

type errorBody struct {
	RootCause []errorCause `json:"root_cause"`
	errorCause
}

func toErrorBody(err error) (int, errorBody) {
	var se *stubError
	if !errors.As(err, &se) {
		se = &stubError{http.StatusInternalServerError, "exception", err.Error()}
	}
	cause := errorCause{Type: se.kind, Reason: se.reason}
	return se.status, errorBody{RootCause: []errorCause{cause}, errorCause: cause}
}

func writeError(w http.ResponseWriter, err error) {
	status, body := toErrorBody(err)
	writeJSON(w, status, map[string]any{"error": body, "status": status})
}
