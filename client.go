// Package weavedoc is a document store backed by a Weaviate-style
// vector-search service: schema'd classes of documents with opaque content,
// open metadata, embeddings, metadata filtering and vector similarity search.
package weavedoc

import (
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/weavedoc/internal/config"
	"github.com/kailas-cloud/weavedoc/internal/domain"
	"github.com/kailas-cloud/weavedoc/internal/domain/docid"
	domdoc "github.com/kailas-cloud/weavedoc/internal/domain/document"
	domschema "github.com/kailas-cloud/weavedoc/internal/domain/schema"
	"github.com/kailas-cloud/weavedoc/internal/logger"
	documentrepo "github.com/kailas-cloud/weavedoc/internal/repository/document"
	schemarepo "github.com/kailas-cloud/weavedoc/internal/repository/schema"
	searchrepo "github.com/kailas-cloud/weavedoc/internal/repository/search"
	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// Store is the document store entry point. A Store is bound to one index
// (class); its methods issue blocking calls to the backend. Calls to the
// same Store must be serialized by the caller: concurrent writers risk
// racing on schema migrations.
type Store struct {
	client weaviate.Client
	schema *schemarepo.Repo
	docs   *documentrepo.Repo
	search *searchrepo.Repo

	class           string
	embeddingDim    int
	returnEmbedding bool
	batchSize       int
	policy          domdoc.DuplicatePolicy

	logger *zap.Logger
	obs    *observer

	// One-time warning flags, per store instance.
	uuidWarned bool
}

// New creates a Store and verifies backend connectivity. The provided
// context bounds the initial readiness check and class creation; a backend
// that is not ready is a construction failure.
func New(ctx context.Context, opts ...Option) (*Store, error) {
	cfg := defaultStoreConfig()
	for _, o := range opts {
		o.apply(cfg)
	}

	if len(cfg.headers) > 0 {
		return nil, fmt.Errorf("weavedoc: %w", domain.ErrHeadersNotSupported)
	}
	if cfg.similarity != "cosine" {
		return nil, fmt.Errorf("weavedoc: similarity %q: %w",
			cfg.similarity, domain.ErrSimilarityNotSupported)
	}
	policy, err := domdoc.ParsePolicy(string(cfg.duplicatePolicy))
	if err != nil {
		return nil, fmt.Errorf("weavedoc: %w", err)
	}
	if cfg.embeddingDim <= 0 {
		return nil, fmt.Errorf("weavedoc: embedding dimension must be positive, got %d", cfg.embeddingDim)
	}
	if cfg.batchSize <= 0 {
		return nil, fmt.Errorf("weavedoc: batch size must be positive, got %d", cfg.batchSize)
	}
	customSchema, err := parseCustomSchema(cfg.customSchema)
	if err != nil {
		return nil, fmt.Errorf("weavedoc: custom schema: %w", err)
	}

	client := cfg.client
	if client == nil {
		client, err = weaviate.NewRESTClient(weaviate.Config{
			Host:     cfg.host,
			Port:     cfg.port,
			Username: cfg.username,
			Password: cfg.password,
			Timeout:  cfg.timeout,
			Retries:  cfg.retries,
		})
		if err != nil {
			return nil, fmt.Errorf("weavedoc: create client: %w", err)
		}
	}

	if err := client.Ready(ctx); err != nil {
		return nil, fmt.Errorf("weavedoc: backend not ready: %w", err)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	class := domschema.ClassName(cfg.index)
	codec := documentrepo.NewCodec(cfg.contentField, cfg.embeddingField, cfg.similarity == "cosine")

	s := &Store{
		client:          client,
		schema:          schemarepo.New(client, class, cfg.nameField, cfg.contentField, cfg.indexType, customSchema),
		docs:            documentrepo.New(client, codec, class),
		search:          searchrepo.New(client, codec, class),
		class:           class,
		embeddingDim:    cfg.embeddingDim,
		returnEmbedding: cfg.returnEmbedding,
		batchSize:       cfg.batchSize,
		policy:          policy,
		logger:          obs.logger,
		obs:             obs,
	}

	if err := s.schema.EnsureClass(ctx); err != nil {
		return nil, fmt.Errorf("weavedoc: %w", err)
	}
	return s, nil
}

// NewFromConfig creates a Store from a YAML configuration file. Options are
// applied on top of the file's settings.
func NewFromConfig(ctx context.Context, path string, opts ...Option) (*Store, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("weavedoc: %w", err)
	}

	l, err := logger.NewLogger(cfg.Logging.Env, cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("weavedoc: %w", err)
	}

	base := []Option{
		WithEndpoint(cfg.Backend.Host, cfg.Backend.Port),
		WithCredentials(cfg.Backend.Username, cfg.Backend.Password),
		WithTimeout(cfg.Backend.Timeout(), cfg.Backend.Retries),
		WithIndex(cfg.Index.Name),
		WithContentField(cfg.Index.ContentField),
		WithNameField(cfg.Index.NameField),
		WithEmbeddingField(cfg.Index.EmbeddingField),
		WithEmbeddingDim(cfg.Index.EmbeddingDim),
		WithSimilarity(cfg.Index.Similarity),
		WithIndexType(cfg.Index.IndexType),
		WithReturnEmbedding(cfg.Index.ReturnEmbedding),
		WithDuplicatePolicy(DuplicatePolicy(cfg.Write.DuplicatePolicy)),
		WithLogger(l),
	}
	if cfg.Write.BatchSize > 0 {
		base = append(base, withBatchSize(cfg.Write.BatchSize))
	}
	return New(ctx, append(base, opts...)...)
}

// withBatchSize sets the default write batch size.
func withBatchSize(size int) Option {
	return optionFunc(func(c *storeConfig) {
		c.batchSize = size
	})
}

// Index returns the backend class name the store is bound to.
func (s *Store) Index() string { return s.class }

// parseCustomSchema converts a caller's raw schema document into the typed
// wire form, via a JSON round trip.
func parseCustomSchema(raw map[string]any) (*weaviate.Schema, error) {
	if raw == nil {
		return nil, nil
	}
	blob, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var s weaviate.Schema
	if err := json.Unmarshal(blob, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// normalizeID maps a caller id onto its canonical form, warning once per
// store instance the first time an id needs replacing.
func (s *Store) normalizeID(id string) string {
	normalized := docid.Normalize(id, s.class)
	if normalized != id && !s.uuidWarned {
		s.logger.Warn("document id is not in uuid format, replacing with a derived uuid",
			zap.String("id", id),
			zap.String("uuid", normalized),
		)
		s.uuidWarned = true
	}
	return normalized
}
