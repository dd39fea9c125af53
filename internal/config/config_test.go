package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidate_InvalidAddress(t *testing.T) {
	cfg := Config{Cluster: ClusterConfig{Addresses: []string{"localhost:9200"}}}

	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for address without scheme")
	}

	expected := `cluster.addresses[0] must start with http:// or https://, got "localhost:9200"`
	if err.Error() != expected {
		t.Errorf("unexpected error message:\ngot:  %q\nwant: %q", err.Error(), expected)
	}
}

func TestValidate_ExclusiveCredentials(t *testing.T) {
	cfg := Config{Cluster: ClusterConfig{APIKey: "k", Username: "elastic"}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for api_key with username")
	}
}

func TestValidate_RetryStatuses(t *testing.T) {
	for _, status := range []int{99, 600} {
		cfg := Config{Cluster: ClusterConfig{RetryOnStatus: []int{502, status}}}
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for status %d", status)
		}
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := Config{Stub: StubConfig{Port: 70000}}
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for invalid port")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if len(cfg.Cluster.Addresses) != 1 || cfg.Cluster.Addresses[0] != "http://localhost:9200" {
		t.Errorf("expected default address, got %v", cfg.Cluster.Addresses)
	}
	if cfg.Cluster.MaxRetries != 3 {
		t.Errorf("expected MaxRetries=3, got %d", cfg.Cluster.MaxRetries)
	}
	if len(cfg.Cluster.RetryOnStatus) != 3 {
		t.Errorf("expected 3 retry statuses, got %v", cfg.Cluster.RetryOnStatus)
	}
	if cfg.Stub.Port != 9200 {
		t.Errorf("expected Port=9200, got %d", cfg.Stub.Port)
	}
	if cfg.Stub.ShutdownSec != 10 {
		t.Errorf("expected ShutdownSec=10, got %d", cfg.Stub.ShutdownSec)
	}
	if cfg.Bulk.ChunkSize != 500 {
		t.Errorf("expected ChunkSize=500, got %d", cfg.Bulk.ChunkSize)
	}
	if cfg.Bulk.Concurrency != 4 {
		t.Errorf("expected Concurrency=4, got %d", cfg.Bulk.Concurrency)
	}
	if cfg.Embedding.Model != "text-embedding-3-small" {
		t.Errorf("expected default embedding model, got %q", cfg.Embedding.Model)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults must validate: %v", err)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	cfg := Config{
		Cluster: ClusterConfig{Addresses: []string{"https://es:9200"}, MaxRetries: 1},
		Stub:    StubConfig{Port: 9300},
		Bulk:    BulkConfig{ChunkSize: 50, Concurrency: 1},
	}
	cfg.ApplyDefaults()

	if cfg.Cluster.Addresses[0] != "https://es:9200" {
		t.Errorf("expected address kept, got %v", cfg.Cluster.Addresses)
	}
	if cfg.Cluster.MaxRetries != 1 {
		t.Errorf("expected MaxRetries=1, got %d", cfg.Cluster.MaxRetries)
	}
	if cfg.Stub.Port != 9300 {
		t.Errorf("expected Port=9300, got %d", cfg.Stub.Port)
	}
	if cfg.Bulk.ChunkSize != 50 || cfg.Bulk.Concurrency != 1 {
		t.Errorf("expected bulk settings kept, got %+v", cfg.Bulk)
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("ESDSL_TEST_KEY", "from-env")

	cfg, err := Parse([]byte(`
cluster:
  addresses: ["${ESDSL_TEST_ADDR:-http://es.local:9200}"]
  api_key: ${ESDSL_TEST_KEY}
defaults:
  headers:
    X-Team: search
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Cluster.Addresses[0] != "http://es.local:9200" {
		t.Errorf("expected default from expansion, got %q", cfg.Cluster.Addresses[0])
	}
	if cfg.Cluster.APIKey != "from-env" {
		t.Errorf("expected api key from env, got %q", cfg.Cluster.APIKey)
	}
	if cfg.Defaults.Headers["X-Team"] != "search" {
		t.Errorf("expected default header, got %v", cfg.Defaults.Headers)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "local.yaml")
	if err := os.WriteFile(path, []byte("bulk:\n  chunk_size: 10\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Bulk.ChunkSize != 10 {
		t.Errorf("expected ChunkSize=10, got %d", cfg.Bulk.ChunkSize)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
