// Package openai provides a document embedder backed by the OpenAI-compatible
// embeddings API.
package openai

import (
	"context"
	"encoding/json"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"github.com/kailas-cloud/weavedoc"
)

// Compile-time check: Embedder implements weavedoc.Embedder.
var _ weavedoc.Embedder = (*Embedder)(nil)

// Embedder computes document embeddings via an OpenAI-compatible API.
type Embedder struct {
	client     *openai.Client
	model      openai.EmbeddingModel
	dimensions int
	user       string
}

// Config holds the embedding provider settings.
type Config struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
	User       string
}

// NewEmbedder creates an OpenAI-compatible embedding provider.
func NewEmbedder(cfg *Config) *Embedder {
	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}

	return &Embedder{
		client:     openai.NewClientWithConfig(clientCfg),
		model:      openai.EmbeddingModel(cfg.Model),
		dimensions: cfg.Dimensions,
		user:       cfg.User,
	}
}

// EmbedDocuments implements weavedoc.Embedder: one vector per document, in
// input order. String content is embedded as-is; structured content is
// embedded from its JSON form.
func (e *Embedder) EmbedDocuments(ctx context.Context, docs []weavedoc.Document) ([][]float32, error) {
	if len(docs) == 0 {
		return nil, nil
	}

	inputs := make([]string, len(docs))
	for i, doc := range docs {
		text, err := contentText(doc.Content)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", doc.ID, err)
		}
		inputs[i] = text
	}

	req := openai.EmbeddingRequest{
		Input:          inputs,
		Model:          e.model,
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		User:           e.user,
	}
	if e.dimensions > 0 {
		req.Dimensions = e.dimensions
	}

	resp, err := e.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create embeddings: %w", err)
	}
	if len(resp.Data) != len(docs) {
		return nil, fmt.Errorf("embeddings response has %d vectors for %d documents",
			len(resp.Data), len(docs))
	}

	vectors := make([][]float32, len(docs))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, fmt.Errorf("embeddings response carries out-of-range index %d", item.Index)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// HealthCheck verifies API availability via ListModels (free endpoint).
func (e *Embedder) HealthCheck(ctx context.Context) error {
	if _, err := e.client.ListModels(ctx); err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	return nil
}

func contentText(content any) (string, error) {
	if s, ok := content.(string); ok {
		return s, nil
	}
	blob, err := json.Marshal(content)
	if err != nil {
		return "", fmt.Errorf("encode content for embedding: %w", err)
	}
	return string(blob), nil
}
