package pipeline

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kailas-cloud/esdsl/internal/domain"
	"github.com/kailas-cloud/esdsl/query"
	"github.com/kailas-cloud/esdsl/request"
)

// fakeRequest is a hand-written request.Request with a scripted body.
type fakeRequest struct {
	params  url.Values
	headers http.Header
	body    []byte
	err     error
}

func (f *fakeRequest) Method() string       { return http.MethodPost }
func (f *fakeRequest) Endpoint() string     { return "/books/_search" }
func (f *fakeRequest) Params() url.Values   { return f.params }
func (f *fakeRequest) Headers() http.Header { return f.headers }
func (f *fakeRequest) String() string       { return "POST /books/_search" }

func (f *fakeRequest) Body(request.Serializer) ([]byte, error) { return f.body, f.err }

func TestAssemble_HeaderOrderIsAdditive(t *testing.T) {
	req := &fakeRequest{
		headers: http.Header{"X-Trace": {"request"}, "Content-Type": {"application/x-ndjson"}},
		err:     request.ErrNoBody,
	}
	settings := Settings{
		Headers: http.Header{"X-Trace": {"settings"}},
		Auth:    Auth{APIKey: "secret"},
	}
	opts := Options{Headers: http.Header{"X-Trace": {"option"}}}

	tr, err := Assemble(req, settings, opts, nil)
	require.NoError(t, err)

	h := tr.Headers()
	assert.Equal(t, []string{"settings", "request", "option"}, h.Values("X-Trace"))
	assert.Equal(t, []string{"application/json", "application/x-ndjson"}, h.Values("Content-Type"))
	assert.Equal(t, []string{"application/json"}, h.Values("Accept"))
	assert.Equal(t, []string{"ApiKey secret"}, h.Values("Authorization"))
}

func TestAssemble_OptionContentTypeIsAdded(t *testing.T) {
	opts := Options{Headers: http.Header{"Content-Type": {"application/x-ndjson"}}}

	tr, err := Assemble(&fakeRequest{err: request.ErrNoBody}, Settings{}, opts, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"application/json", "application/x-ndjson"}, tr.Headers().Values("Content-Type"))
}

func TestAssemble_BasicAuth(t *testing.T) {
	tr, err := Assemble(&fakeRequest{err: request.ErrNoBody}, Settings{Auth: Auth{Username: "elastic", Password: "changeme"}}, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, "Basic ZWxhc3RpYzpjaGFuZ2VtZQ==", tr.Headers().Get("Authorization"))

	tr, err = Assemble(&fakeRequest{err: request.ErrNoBody}, Settings{}, Options{}, nil)
	require.NoError(t, err)
	assert.Empty(t, tr.Headers().Values("Authorization"))
}

func TestAssemble_ParamsKeepDuplicates(t *testing.T) {
	req := &fakeRequest{params: url.Values{"routing": {"a"}}, err: request.ErrNoBody}
	tr, err := Assemble(req,
		Settings{Params: url.Values{"pretty": {"true"}}},
		Options{Params: url.Values{"routing": {"b"}}},
		nil)
	require.NoError(t, err)

	p := tr.Params()
	assert.Equal(t, []string{"a", "b"}, p["routing"])
	assert.Equal(t, "true", p.Get("pretty"))
	assert.Equal(t, "/books/_search?pretty=true&routing=a&routing=b", tr.URL())
}

func TestAssemble_NoBody(t *testing.T) {
	tr, err := Assemble(&fakeRequest{err: request.ErrNoBody}, Settings{}, Options{}, nil)
	require.NoError(t, err)
	assert.False(t, tr.HasBody())
	assert.Nil(t, tr.Body())

	hr, err := tr.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Nil(t, hr.Body)
}

func TestAssemble_ConversionError(t *testing.T) {
	cause := errors.New("boom")
	_, err := Assemble(&fakeRequest{err: cause}, Settings{}, Options{}, nil)

	var ce *domain.RequestConversionError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "POST /books/_search", ce.Request)
	assert.ErrorIs(t, err, domain.ErrRequestConversion)
	assert.ErrorIs(t, err, cause)
}

func TestAssemble_SerializerFailureIsConversionError(t *testing.T) {
	req, err := request.NewIndexBuilder("books").ID("1").Document(make(chan int)).Build()
	require.NoError(t, err)

	_, err = Assemble(req, Settings{}, Options{}, request.JSONSerializer{})
	var se *request.SerializationError
	assert.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, domain.ErrRequestConversion)
}

func TestTransportRequest_HTTPRequest(t *testing.T) {
	req, err := request.NewSearchBuilder("books").Query(query.MatchAll()).Routing("r1").Build()
	require.NoError(t, err)

	tr, err := Assemble(req, Settings{}, Options{}, nil)
	require.NoError(t, err)
	assert.Equal(t, `{"query":{"match_all":{}}}`, string(tr.Body()))

	hr, err := tr.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, http.MethodPost, hr.Method)
	assert.Equal(t, "/books/_search", hr.URL.Path)
	assert.Equal(t, "r1", hr.URL.Query().Get("routing"))
	assert.Equal(t, "application/json", hr.Header.Get("Content-Type"))
	assert.Equal(t, int64(len(tr.Body())), hr.ContentLength)

	b, err := io.ReadAll(hr.Body)
	require.NoError(t, err)
	assert.Equal(t, tr.Body(), b)
}

func TestTransportRequest_EscapedPath(t *testing.T) {
	req, err := request.NewGetBuilder("books", "a/b").Build()
	require.NoError(t, err)
	tr, err := Assemble(req, Settings{}, Options{}, nil)
	require.NoError(t, err)

	hr, err := tr.HTTPRequest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/books/_doc/a%2Fb", hr.URL.EscapedPath())
}

func TestTransportRequest_AccessorsCopy(t *testing.T) {
	tr, err := Assemble(&fakeRequest{body: []byte(`{}`)}, Settings{}, Options{}, nil)
	require.NoError(t, err)

	b := tr.Body()
	b[0] = 'x'
	h := tr.Headers()
	h.Del("Accept")
	p := tr.Params()
	p.Set("x", "1")

	assert.Equal(t, "{}", string(tr.Body()))
	assert.Equal(t, "application/json", tr.Headers().Get("Accept"))
	assert.Empty(t, tr.Params())
}
