package chi

import (
	"fmt"
	"maps"
	"net/http"
	"slices"
	"sync"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// stubError is rendered in the cluster's error envelope.
type stubError struct {
	status int
	kind   string
	reason string
}

func (e *stubError) Error() string { return e.kind + ": " + e.reason }

func indexNotFound(name string) error {
	return &stubError{http.StatusNotFound, "index_not_found_exception", fmt.Sprintf("no such index [%s]", name)}
}

func indexExists(name string) error {
	return &stubError{http.StatusBadRequest, "resource_already_exists_exception",
		fmt.Sprintf("index [%s] already exists", name)}
}

func versionConflict(id string) error {
	return &stubError{http.StatusConflict, "version_conflict_engine_exception",
		fmt.Sprintf("[%s]: version conflict, document already exists", id)}
}

func documentMissing(id string) error {
	return &stubError{http.StatusNotFound, "document_missing_exception", fmt.Sprintf("[%s]: document missing", id)}
}

type storedDoc struct {
	source  json.RawMessage
	version int64
	seqNo   int64
}

type storedIndex struct {
	definition json.RawMessage
	docs       map[string]*storedDoc
	order      []string
}

func newStoredIndex(definition []byte) *storedIndex {
	return &storedIndex{definition: definition, docs: make(map[string]*storedDoc)}
}

// writeResult describes a single document write.
type writeResult struct {
	Index   string `json:"_index"`
	ID      string `json:"_id"`
	Version int64  `json:"_version"`
	Result  string `json:"result"`
	SeqNo   int64  `json:"_seq_no"`
	Term    int64  `json:"_primary_term"`
}

type hit struct {
	Index  string          `json:"_index"`
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

// store keeps indices in memory. Writes to a missing index create it.
type store struct {
	mu      sync.Mutex
	indices map[string]*storedIndex
	seqNo   int64
}

func newStore() *store {
	return &store{indices: make(map[string]*storedIndex)}
}

func (s *store) createIndex(name string, definition []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.indices[name]; ok {
		return indexExists(name)
	}
	s.indices[name] = newStoredIndex(definition)
	return nil
}

func (s *store) deleteIndices(names []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		if _, ok := s.indices[n]; !ok {
			return indexNotFound(n)
		}
	}
	for _, n := range names {
		delete(s.indices, n)
	}
	return nil
}

func (s *store) exists(name string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.indices[name]
	return ok
}

// put stores source under id, generating one when id is empty. With create
// set an existing document is a conflict.
func (s *store) put(index, id string, source []byte, create bool) (writeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(index, id, source, create)
}

func (s *store) putLocked(index, id string, source []byte, create bool) (writeResult, error) {
	idx, ok := s.indices[index]
	if !ok {
		idx = newStoredIndex(nil)
		s.indices[index] = idx
	}
	if id == "" {
		id = uuid.NewString()
	}

	doc, found := idx.docs[id]
	if found && create {
		return writeResult{}, versionConflict(id)
	}

	s.seqNo++
	res := writeResult{Index: index, ID: id, SeqNo: s.seqNo, Term: 1}
	if found {
		doc.source = source
		doc.version++
		doc.seqNo = s.seqNo
		res.Version, res.Result = doc.version, "updated"
		return res, nil
	}

	idx.docs[id] = &storedDoc{source: source, version: 1, seqNo: s.seqNo}
	idx.order = append(idx.order, id)
	res.Version, res.Result = 1, "created"
	return res, nil
}

func (s *store) get(index, id string) (*storedDoc, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	idx, ok := s.indices[index]
	if !ok {
		return nil, indexNotFound(index)
	}
	doc, ok := idx.docs[id]
	if !ok {
		return nil, nil
	}
	cp := *doc
	return &cp, nil
}

// remove reports result "not_found" without an error when the document is
// absent.
func (s *store) remove(index, id string) (writeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(index, id)
}

func (s *store) removeLocked(index, id string) (writeResult, error) {
	idx, ok := s.indices[index]
	if !ok {
		return writeResult{}, indexNotFound(index)
	}
	res := writeResult{Index: index, ID: id, Term: 1, Result: "not_found"}
	doc, ok := idx.docs[id]
	if !ok {
		return res, nil
	}
	s.seqNo++
	delete(idx.docs, id)
	idx.order = slices.DeleteFunc(idx.order, func(o string) bool { return o == id })
	res.Version, res.SeqNo, res.Result = doc.version+1, s.seqNo, "deleted"
	return res, nil
}

// update merges doc into the stored source at the top level. Scripts are
// never run: a script-only update of an existing document is a noop.
func (s *store) update(index, id string, doc, upsert any, docAsUpsert bool) (writeResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.lookupLocked(index, id)
	if !ok {
		switch {
		case docAsUpsert && doc != nil:
			upsert = doc
		case upsert == nil:
			return writeResult{}, documentMissing(id)
		}
		src, err := json.Marshal(upsert)
		if err != nil {
			return writeResult{}, fmt.Errorf("encode upsert: %w", err)
		}
		return s.putLocked(index, id, src, true)
	}

	if doc == nil {
		return writeResult{Index: index, ID: id, Version: current.version, Result: "noop",
			SeqNo: current.seqNo, Term: 1}, nil
	}
	merged := map[string]any{}
	if err := json.Unmarshal(current.source, &merged); err != nil {
		return writeResult{}, fmt.Errorf("decode stored source: %w", err)
	}
	patch, ok := doc.(map[string]any)
	if !ok {
		return writeResult{}, &stubError{http.StatusBadRequest, "illegal_argument_exception", "doc must be an object"}
	}
	maps.Copy(merged, patch)
	src, err := json.Marshal(merged)
	if err != nil {
		return writeResult{}, fmt.Errorf("encode merged source: %w", err)
	}
	return s.putLocked(index, id, src, false)
}

func (s *store) lookupLocked(index, id string) (*storedDoc, bool) {
	idx, ok := s.indices[index]
	if !ok {
		return nil, false
	}
	doc, ok := idx.docs[id]
	return doc, ok
}

// resolve expands an empty list or _all to every index, sorted by name.
func (s *store) resolve(names []string) ([]string, error) {
	if len(names) == 0 || (len(names) == 1 && names[0] == "_all") {
		return slices.Sorted(maps.Keys(s.indices)), nil
	}
	for _, n := range names {
		if _, ok := s.indices[n]; !ok {
			return nil, indexNotFound(n)
		}
	}
	return names, nil
}

// hits returns every document of the named indices in insertion order.
func (s *store) hits(names []string) ([]hit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resolved, err := s.resolve(names)
	if err != nil {
		return nil, err
	}
	var out []hit
	for _, n := range resolved {
		idx := s.indices[n]
		for _, id := range idx.order {
			out = append(out, hit{Index: n, ID: id, Score: 1, Source: idx.docs[id].source})
		}
	}
	return out, nil
}

// copyDocs copies every document of the source indices into dest and
// reports how many were created and updated.
func (s *store) copyDocs(sources []string, dest string) (created, updated int64, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	resolved, err := s.resolve(sources)
	if err != nil {
		return 0, 0, err
	}
	type pending struct {
		id  string
		src json.RawMessage
	}
	var docs []pending
	for _, n := range resolved {
		idx := s.indices[n]
		for _, id := range idx.order {
			docs = append(docs, pending{id, idx.docs[id].source})
		}
	}
	for _, d := range docs {
		res, err := s.putLocked(dest, d.id, d.src, false)
		if err != nil {
			return created, updated, err
		}
		if res.Result == "created" {
			created++
		} else {
			updated++
		}
	}
	return created, updated, nil
}
