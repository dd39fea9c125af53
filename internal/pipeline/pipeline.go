// Package pipeline assembles request values into transport requests.
package pipeline

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/request"
)

// DefaultHeaders are sent with every request before any other header.
func DefaultHeaders() http.Header {
	return http.Header{
		"Accept":       {"application/json"},
		"Content-Type": {"application/json"},
	}
}

// Auth selects the Authorization header. APIKey wins over basic credentials.
type Auth struct {
	APIKey   string
	Username string
	Password string
}

func (a Auth) header() (string, bool) {
	switch {
	case a.APIKey != "":
		return "ApiKey " + a.APIKey, true
	case a.Username != "":
		cred := base64.StdEncoding.EncodeToString([]byte(a.Username + ":" + a.Password))
		return "Basic " + cred, true
	}
	return "", false
}

// Settings are client wide: default headers and params, and credentials.
type Settings struct {
	Headers http.Header
	Params  url.Values
	Auth    Auth
}

// Options are supplied per call.
type Options struct {
	Headers http.Header
	Params  url.Values
}

// Assemble turns req into a transport request. Headers are merged additively
// in this order: defaults, settings, authentication, request, options. Params
// follow settings, request, options. A request without a body yields a
// transport request without one; any other body failure is returned as a
// *domain.RequestConversionError.
func Assemble(req request.Request, settings Settings, opts Options, s request.Serializer) (*TransportRequest, error) {
	if s == nil {
		s = request.JSONSerializer{}
	}
	tr := &TransportRequest{
		method:  req.Method(),
		path:    req.Endpoint(),
		headers: DefaultHeaders(),
		params:  url.Values{},
	}

	addHeaders(tr.headers, settings.Headers)
	if v, ok := settings.Auth.header(); ok {
		tr.headers.Add("Authorization", v)
	}
	addHeaders(tr.headers, req.Headers())
	addHeaders(tr.headers, opts.Headers)

	addParams(tr.params, settings.Params)
	addParams(tr.params, req.Params())
	addParams(tr.params, opts.Params)

	body, err := req.Body(s)
	switch {
	case errors.Is(err, request.ErrNoBody):
	case err != nil:
		return nil, &domain.RequestConversionError{Request: req.String(), Err: err}
	default:
		tr.body = body
		tr.hasBody = true
	}
	return tr, nil
}

func addHeaders(dst, src http.Header) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

func addParams(dst, src url.Values) {
	for k, vs := range src {
		for _, v := range vs {
			dst.Add(k, v)
		}
	}
}

// TransportRequest is an assembled request. Accessors return copies.
type TransportRequest struct {
	method  string
	path    string
	params  url.Values
	headers http.Header
	body    []byte
	hasBody bool
}

func (r *TransportRequest) Method() string       { return r.method }
func (r *TransportRequest) Path() string         { return r.path }
func (r *TransportRequest) Headers() http.Header { return r.headers.Clone() }
func (r *TransportRequest) HasBody() bool        { return r.hasBody }

func (r *TransportRequest) Params() url.Values {
	out := make(url.Values, len(r.params))
	for k, vs := range r.params {
		out[k] = append([]string(nil), vs...)
	}
	return out
}

// Body returns a copy of the body, nil when there is none.
func (r *TransportRequest) Body() []byte {
	if !r.hasBody {
		return nil
	}
	return bytes.Clone(r.body)
}

// URL is the path with the encoded query string.
func (r *TransportRequest) URL() string {
	if len(r.params) == 0 {
		return r.path
	}
	return r.path + "?" + r.params.Encode()
}

// HTTPRequest builds an *http.Request with a relative URL. The transport
// fills in scheme and host.
func (r *TransportRequest) HTTPRequest(ctx context.Context) (*http.Request, error) {
	var hr *http.Request
	var err error
	if r.hasBody {
		hr, err = http.NewRequestWithContext(ctx, r.method, r.URL(), bytes.NewReader(r.body))
	} else {
		hr, err = http.NewRequestWithContext(ctx, r.method, r.URL(), nil)
	}
	if err != nil {
		return nil, fmt.Errorf("build http request: %w", err)
	}
	hr.Header = r.headers.Clone()
	return hr, nil
}
