// Package config loads the store configuration from a YAML file, with
// ${VAR} and ${VAR:-default} environment expansion.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds the document store configuration.
type Config struct {
	Backend BackendConfig `yaml:"backend"`
	Index   IndexConfig   `yaml:"index"`
	Write   WriteConfig   `yaml:"write"`
	Logging LoggingConfig `yaml:"logging"`
}

// BackendConfig holds backend connection settings.
type BackendConfig struct {
	Host       string `yaml:"host"`
	Port       int    `yaml:"port"`
	Username   string `yaml:"username"`
	Password   string `yaml:"password"`
	TimeoutSec int    `yaml:"timeout_sec"`
	Retries    int    `yaml:"retries"`
}

// Timeout returns the per-request timeout as a duration.
func (b BackendConfig) Timeout() time.Duration {
	return time.Duration(b.TimeoutSec) * time.Second
}

// IndexConfig holds index (class) and embedding settings.
type IndexConfig struct {
	Name            string `yaml:"name"`
	ContentField    string `yaml:"content_field"`
	NameField       string `yaml:"name_field"`
	EmbeddingField  string `yaml:"embedding_field"`
	EmbeddingDim    int    `yaml:"embedding_dim"`
	Similarity      string `yaml:"similarity"`
	IndexType       string `yaml:"index_type"`
	ReturnEmbedding bool   `yaml:"return_embedding"`
}

// WriteConfig holds write pipeline settings.
type WriteConfig struct {
	BatchSize       int    `yaml:"batch_size"`
	DuplicatePolicy string `yaml:"duplicate_policy"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Env   string `yaml:"env"`   // local, dev, prod (default: local)
	Level string `yaml:"level"` // debug, info, warn, error
}

// Load reads configuration from a YAML file.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", path, err)
	}

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

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.Backend.Host == "" {
		c.Backend.Host = "localhost"
	}
	if c.Backend.Port <= 0 {
		c.Backend.Port = 8080
	}
	if c.Backend.TimeoutSec <= 0 {
		c.Backend.TimeoutSec = 30
	}
	if c.Index.Name == "" {
		c.Index.Name = "Document"
	}
	if c.Index.ContentField == "" {
		c.Index.ContentField = "content"
	}
	if c.Index.NameField == "" {
		c.Index.NameField = "name"
	}
	if c.Index.EmbeddingField == "" {
		c.Index.EmbeddingField = "embedding"
	}
	if c.Index.EmbeddingDim <= 0 {
		c.Index.EmbeddingDim = 768
	}
	if c.Index.Similarity == "" {
		c.Index.Similarity = "cosine"
	}
	if c.Index.IndexType == "" {
		c.Index.IndexType = "hnsw"
	}
	if c.Write.BatchSize <= 0 {
		c.Write.BatchSize = 10000
	}
	if c.Write.DuplicatePolicy == "" {
		c.Write.DuplicatePolicy = "overwrite"
	}
	if c.Logging.Env == "" {
		c.Logging.Env = "local"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.Backend.Port > 65535 {
		return fmt.Errorf("backend.port must be between 1 and 65535, got %d", c.Backend.Port)
	}
	if c.Index.Similarity != "cosine" {
		return fmt.Errorf("index.similarity: only cosine is supported, got %q", c.Index.Similarity)
	}
	switch c.Index.IndexType {
	case "hnsw", "flat":
	default:
		return fmt.Errorf("index.index_type must be hnsw or flat, got %q", c.Index.IndexType)
	}
	switch c.Write.DuplicatePolicy {
	case "skip", "overwrite", "fail":
	default:
		return fmt.Errorf("write.duplicate_policy must be skip, overwrite or fail, got %q",
			c.Write.DuplicatePolicy)
	}
	return nil
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
