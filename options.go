package weavedoc

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// Option configures the Store.
type Option interface {
	apply(*storeConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*storeConfig)

func (f optionFunc) apply(c *storeConfig) { f(c) }

type storeConfig struct {
	host     string
	port     int
	username string
	password string
	timeout  time.Duration
	retries  int

	index           string
	contentField    string
	nameField       string
	embeddingField  string
	embeddingDim    int
	similarity      string
	indexType       string
	customSchema    map[string]any
	returnEmbedding bool

	batchSize       int
	duplicatePolicy DuplicatePolicy

	headers map[string]string

	client weaviate.Client

	logger     *zap.Logger
	metricsReg prometheus.Registerer
}

func defaultStoreConfig() *storeConfig {
	return &storeConfig{
		host:            "localhost",
		port:            8080,
		timeout:         30 * time.Second,
		index:           "Document",
		contentField:    "content",
		nameField:       "name",
		embeddingField:  "embedding",
		embeddingDim:    768,
		similarity:      "cosine",
		indexType:       "hnsw",
		batchSize:       10_000,
		duplicatePolicy: DuplicateOverwrite,
	}
}

// WithEndpoint sets the backend host and port. Defaults to localhost:8080.
func WithEndpoint(host string, port int) Option {
	return optionFunc(func(c *storeConfig) {
		c.host = host
		c.port = port
	})
}

// WithCredentials sets basic auth credentials for the backend.
func WithCredentials(username, password string) Option {
	return optionFunc(func(c *storeConfig) {
		c.username = username
		c.password = password
	})
}

// WithTimeout sets the per-request timeout and the number of retries on
// transport failure.
func WithTimeout(timeout time.Duration, retries int) Option {
	return optionFunc(func(c *storeConfig) {
		c.timeout = timeout
		c.retries = retries
	})
}

// WithIndex sets the index (class) documents are stored in.
// Defaults to "Document".
func WithIndex(index string) Option {
	return optionFunc(func(c *storeConfig) {
		c.index = index
	})
}

// WithEmbeddingDim sets the expected embedding dimension. Defaults to 768.
func WithEmbeddingDim(dim int) Option {
	return optionFunc(func(c *storeConfig) {
		c.embeddingDim = dim
	})
}

// WithContentField sets the property the document content is stored in.
// Defaults to "content".
func WithContentField(name string) Option {
	return optionFunc(func(c *storeConfig) {
		c.contentField = name
	})
}

// WithNameField sets the name property of the default class definition.
// Defaults to "name".
func WithNameField(name string) Option {
	return optionFunc(func(c *storeConfig) {
		c.nameField = name
	})
}

// WithEmbeddingField sets the logical name of the embedding field.
// Defaults to "embedding".
func WithEmbeddingField(name string) Option {
	return optionFunc(func(c *storeConfig) {
		c.embeddingField = name
	})
}

// WithSimilarity sets the similarity metric. Only "cosine" is supported;
// anything else fails at New with ErrSimilarityNotSupported.
func WithSimilarity(similarity string) Option {
	return optionFunc(func(c *storeConfig) {
		c.similarity = similarity
	})
}

// WithIndexType sets the vector index type, "hnsw" (default) or "flat".
func WithIndexType(indexType string) Option {
	return optionFunc(func(c *storeConfig) {
		c.indexType = indexType
	})
}

// WithCustomSchema replaces the default class definition with a caller-built
// schema document. A schema that does not parse fails at New.
func WithCustomSchema(schema map[string]any) Option {
	return optionFunc(func(c *storeConfig) {
		c.customSchema = schema
	})
}

// WithReturnEmbedding makes list and query operations return embeddings by
// default.
func WithReturnEmbedding(returnEmbedding bool) Option {
	return optionFunc(func(c *storeConfig) {
		c.returnEmbedding = returnEmbedding
	})
}

// WithDuplicatePolicy sets the default duplicate policy for writes.
// Defaults to DuplicateOverwrite.
func WithDuplicatePolicy(policy DuplicatePolicy) Option {
	return optionFunc(func(c *storeConfig) {
		c.duplicatePolicy = policy
	})
}

// WithDefaultHeaders sets per-request headers. The backend client does not
// support custom headers; any non-empty value fails at New with
// ErrHeadersNotSupported.
func WithDefaultHeaders(headers map[string]string) Option {
	return optionFunc(func(c *storeConfig) {
		c.headers = headers
	})
}

// WithLogger enables structured logging for store operations.
// Pass nil to disable (default).
func WithLogger(l *zap.Logger) Option {
	return optionFunc(func(c *storeConfig) {
		c.logger = l
	})
}

// WithPrometheus registers store metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *storeConfig) {
		c.metricsReg = reg
	})
}

// withClient swaps the backend transport, for tests.
func withClient(client weaviate.Client) Option {
	return optionFunc(func(c *storeConfig) {
		c.client = client
	})
}

// WriteOption configures one WriteDocuments call.
type WriteOption interface {
	applyWrite(*writeConfig)
}

type writeOptionFunc func(*writeConfig)

func (f writeOptionFunc) applyWrite(c *writeConfig) { f(c) }

type writeConfig struct {
	batchSize int
	policy    DuplicatePolicy
}

// WithWriteBatchSize overrides the write batch size for one call.
func WithWriteBatchSize(size int) WriteOption {
	return writeOptionFunc(func(c *writeConfig) {
		if size > 0 {
			c.batchSize = size
		}
	})
}

// WithWritePolicy overrides the duplicate policy for one call.
func WithWritePolicy(policy DuplicatePolicy) WriteOption {
	return writeOptionFunc(func(c *writeConfig) {
		c.policy = policy
	})
}
