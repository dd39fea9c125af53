package main

import (
	"bytes"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	chiTransport "github.com/kailas-cloud/esdsl/internal/transport/chi"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&bytes.Buffer{})
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestRender(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", `
cluster:
  api_key: secret
defaults:
  headers:
    X-Team: search
`)
	req := writeFile(t, dir, "search.yaml", `
op: search
index: books
params:
  routing: r1
headers:
  X-Trace: t1
body:
  size: 5
`)

	out, err := run(t, "render", "-c", cfg, "-f", req)
	require.NoError(t, err)
	assert.Contains(t, out, "POST /books/_search?routing=r1\n")
	assert.Contains(t, out, "Authorization: ApiKey secret\n")
	assert.Contains(t, out, "X-Team: search\n")
	assert.Contains(t, out, "X-Trace: t1\n")
	assert.Contains(t, out, "\n{\n  \"size\": 5\n}\n")
}

func TestRender_Errors(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", "cluster:\n  addresses: [\"http://localhost:9200\"]\n")

	_, err := run(t, "render", "-c", cfg)
	assert.Error(t, err)

	bad := writeFile(t, dir, "bad.yaml", "op: get\nindex: books\n")
	_, err = run(t, "render", "-c", cfg, "-f", bad)
	assert.ErrorContains(t, err, "missing required field")
}

func TestSend(t *testing.T) {
	stub, err := chiTransport.NewServer(chiTransport.Options{})
	require.NoError(t, err)
	srv := httptest.NewServer(stub)
	t.Cleanup(srv.Close)

	dir := t.TempDir()
	cfg := writeFile(t, dir, "cfg.yaml", "cluster:\n  addresses: [\""+srv.URL+"\"]\n")
	put := writeFile(t, dir, "put.yaml", "op: index\nindex: books\nid: \"1\"\nbody:\n  title: Dune\n")
	get := writeFile(t, dir, "get.yaml", "op: get\nindex: books\nid: \"1\"\n")
	missing := writeFile(t, dir, "missing.yaml", "op: count\nindex: films\n")

	out, err := run(t, "send", "-c", cfg, "-f", put)
	require.NoError(t, err)
	assert.Contains(t, out, `"result": "created"`)

	out, err = run(t, "send", "-c", cfg, "-f", get)
	require.NoError(t, err)
	assert.Contains(t, out, `"found": true`)
	assert.Contains(t, out, `"title": "Dune"`)

	out, err = run(t, "send", "-c", cfg, "-f", missing)
	assert.ErrorContains(t, err, "status 404")
	assert.Contains(t, out, "index_not_found_exception")
}

func TestVersion(t *testing.T) {
	out, err := run(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "esdsl dev")
}
