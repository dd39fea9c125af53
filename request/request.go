// Package request defines immutable Elasticsearch request values and their
// builders. A request knows its method, endpoint, parameters, headers and how
// to serialize its body; assembling it into an HTTP request is left to the
// client.
package request

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/kailas-cloud/esdsl/internal/domain"
)

// ErrNoBody is returned by Body when the request carries no body. It is not
// a failure: assembly sends the request without one.
var ErrNoBody = errors.New("request has no body")

// Request is one Elasticsearch operation.
type Request interface {
	// Method is the HTTP method.
	Method() string
	// Endpoint is the escaped path, starting with a slash.
	Endpoint() string
	// Params returns a copy of the query parameters.
	Params() url.Values
	// Headers returns a copy of the request specific headers.
	Headers() http.Header
	// Body serializes the body with s, or returns ErrNoBody.
	Body(s Serializer) ([]byte, error)
	// String describes the request for error messages.
	String() string
}

// Refresh controls when changes become visible to search.
type Refresh string

const (
	RefreshTrue    Refresh = "true"
	RefreshFalse   Refresh = "false"
	RefreshWaitFor Refresh = "wait_for"
)

// Conflicts controls what by-query operations do on version conflicts.
type Conflicts string

const (
	ConflictsAbort   Conflicts = "abort"
	ConflictsProceed Conflicts = "proceed"
)

// base holds what every request shares.
type base struct {
	method   string
	endpoint string
	params   url.Values
	headers  http.Header
}

func (b *base) Method() string       { return b.method }
func (b *base) Endpoint() string     { return b.endpoint }
func (b *base) Params() url.Values   { return cloneValues(b.params) }
func (b *base) Headers() http.Header { return b.headers.Clone() }
func (b *base) String() string       { return b.method + " " + b.endpoint }

func cloneValues(v url.Values) url.Values {
	out := make(url.Values, len(v))
	for k, vs := range v {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// extras collects caller supplied parameters and headers in a builder.
type extras struct {
	params  url.Values
	headers http.Header
}

func (e *extras) param(key, value string) {
	if e.params == nil {
		e.params = url.Values{}
	}
	e.params.Add(key, value)
}

func (e *extras) header(key, value string) {
	if e.headers == nil {
		e.headers = http.Header{}
	}
	e.headers.Add(key, value)
}

func (e *extras) base(method, endpoint string) base {
	params := cloneValues(e.params)
	headers := e.headers.Clone()
	if headers == nil {
		headers = http.Header{}
	}
	return base{method: method, endpoint: endpoint, params: params, headers: headers}
}

// path joins escaped segments into an endpoint. Empty segments are skipped.
func path(segments ...string) string {
	var sb strings.Builder
	for _, s := range segments {
		if s == "" {
			continue
		}
		sb.WriteByte('/')
		sb.WriteString(url.PathEscape(s))
	}
	if sb.Len() == 0 {
		return "/"
	}
	return sb.String()
}

// indexList joins index names for a multi-target path segment.
func indexList(indices []string) string {
	escaped := make([]string, len(indices))
	for i, idx := range indices {
		escaped[i] = url.PathEscape(idx)
	}
	return strings.Join(escaped, ",")
}

// multiPath builds /{indices}/{op} without escaping the comma separator.
func multiPath(indices []string, op string) string {
	if len(indices) == 0 {
		return "/" + op
	}
	return "/" + indexList(indices) + "/" + op
}

func noEmptyNames(field string, names []string) error {
	for i, n := range names {
		if n == "" {
			return &domain.InvalidFieldError{Field: fmt.Sprintf("%s[%d]", field, i), Reason: "must not be empty"}
		}
	}
	return nil
}
