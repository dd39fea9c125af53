package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds the esdsl client, CLI and stub cluster configuration.
type Config struct {
	Cluster   ClusterConfig   `yaml:"cluster"`
	Defaults  DefaultsConfig  `yaml:"defaults"`
	Embedding EmbeddingConfig `yaml:"embedding"`
	Stub      StubConfig      `yaml:"stub"`
	Bulk      BulkConfig      `yaml:"bulk"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// ClusterConfig holds Elasticsearch connection settings.
type ClusterConfig struct {
	Addresses           []string `yaml:"addresses"`
	Username            string   `yaml:"username"`
	Password            string   `yaml:"password"`
	APIKey              string   `yaml:"api_key"`
	MaxRetries          int      `yaml:"max_retries"`
	RetryOnStatus       []int    `yaml:"retry_on_status"`
	CompressRequestBody bool     `yaml:"compress_request_body"`
	RequestTimeoutSec   int      `yaml:"request_timeout_sec"`
}

// DefaultsConfig holds headers and params sent with every request.
type DefaultsConfig struct {
	Headers map[string]string `yaml:"headers"`
	Params  map[string]string `yaml:"params"`
}

// EmbeddingConfig holds the OpenAI-compatible embedding provider used for
// kNN text queries. An empty APIKey disables it.
type EmbeddingConfig struct {
	APIKey           string `yaml:"api_key"`
	BaseURL          string `yaml:"base_url"`
	Model            string `yaml:"model"`
	Dimensions       int    `yaml:"dimensions"`
	QueryInstruction string `yaml:"query_instruction"`
}

// StubConfig holds the stub cluster settings.
type StubConfig struct {
	Port            int      `yaml:"port"`
	APIKeys         []string `yaml:"api_keys"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
}

// BulkConfig holds bulk indexer settings.
type BulkConfig struct {
	ChunkSize   int `yaml:"chunk_size"`
	Concurrency int `yaml:"concurrency"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	return LoadFile(findConfigPath(env))
}

// LoadFile reads configuration from an explicit path.
func LoadFile(configPath string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, applies defaults and validates it.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if len(c.Cluster.Addresses) == 0 {
		c.Cluster.Addresses = []string{"http://localhost:9200"}
	}
	if c.Cluster.MaxRetries <= 0 {
		c.Cluster.MaxRetries = 3
	}
	if len(c.Cluster.RetryOnStatus) == 0 {
		c.Cluster.RetryOnStatus = []int{502, 503, 504}
	}
	if c.Cluster.RequestTimeoutSec <= 0 {
		c.Cluster.RequestTimeoutSec = 30
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = "text-embedding-3-small"
	}
	if c.Stub.Port <= 0 {
		c.Stub.Port = 9200
	}
	if c.Stub.ReadTimeoutSec <= 0 {
		c.Stub.ReadTimeoutSec = 10
	}
	if c.Stub.WriteTimeoutSec <= 0 {
		c.Stub.WriteTimeoutSec = 10
	}
	if c.Stub.ShutdownSec <= 0 {
		c.Stub.ShutdownSec = 10
	}
	if c.Bulk.ChunkSize <= 0 {
		c.Bulk.ChunkSize = 500
	}
	if c.Bulk.Concurrency <= 0 {
		c.Bulk.Concurrency = 4
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	for i, addr := range c.Cluster.Addresses {
		if !strings.HasPrefix(addr, "http://") && !strings.HasPrefix(addr, "https://") {
			return fmt.Errorf("cluster.addresses[%d] must start with http:// or https://, got %q", i, addr)
		}
	}
	if c.Cluster.APIKey != "" && c.Cluster.Username != "" {
		return fmt.Errorf("cluster.api_key and cluster.username are mutually exclusive")
	}
	for _, s := range c.Cluster.RetryOnStatus {
		if s < 100 || s > 599 {
			return fmt.Errorf("cluster.retry_on_status contains invalid status %d", s)
		}
	}
	if c.Stub.Port > 65535 {
		return fmt.Errorf("stub.port must be between 1 and 65535, got %d", c.Stub.Port)
	}
	if c.Embedding.Dimensions < 0 {
		return fmt.Errorf("embedding.dimensions must not be negative, got %d", c.Embedding.Dimensions)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
