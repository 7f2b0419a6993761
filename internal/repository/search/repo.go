// Package search runs the class's query surface: filtered scans, vector
// similarity search, raw caller-built queries and aggregate counts, decoding
// query-shaped results into domain documents.
package search

import (
	"context"
	"fmt"

	domdoc "github.com/kailas-cloud/weavedoc/internal/domain/document"
	"github.com/kailas-cloud/weavedoc/internal/repository/document"
	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// additionalSelection is the side channel carrying identity, score and
// vector for every query-shaped result.
const additionalSelection = "_additional { id certainty vector }"

// store is the consumer interface for query operations (ISP).
type store interface {
	Get(ctx context.Context, class string, properties []string, where *weaviate.WhereFilter, limit, offset int) ([]map[string]any, error)
	GetNearVector(ctx context.Context, class string, properties []string, vector []float32, where *weaviate.WhereFilter, limit int) ([]map[string]any, error)
	AggregateCount(ctx context.Context, class string, where *weaviate.WhereFilter) (int, error)
	Raw(ctx context.Context, class, query string) ([]map[string]any, error)
}

// Repo queries documents of one class.
type Repo struct {
	store store
	codec *document.Codec
	class string
}

// New creates a search repository.
func New(s store, codec *document.Codec, class string) *Repo {
	return &Repo{store: s, codec: codec, class: class}
}

// List runs a filtered scan. properties is the class's current property set;
// the _additional side channel is appended here.
func (r *Repo) List(ctx context.Context, properties []string, where *weaviate.WhereFilter, limit, offset int, returnEmbedding bool) ([]domdoc.Document, error) {
	raw, err := r.store.Get(ctx, r.class, withAdditional(properties), where, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	return r.decodeAll(raw, returnEmbedding)
}

// NearVector runs a nearest-neighbor query around vector.
func (r *Repo) NearVector(ctx context.Context, properties []string, vector []float32, where *weaviate.WhereFilter, limit int, returnEmbedding bool) ([]domdoc.Document, error) {
	raw, err := r.store.GetNearVector(ctx, r.class, withAdditional(properties), vector, where, limit)
	if err != nil {
		return nil, fmt.Errorf("vector query: %w", err)
	}
	return r.decodeAll(raw, returnEmbedding)
}

// Raw executes a caller-built query verbatim and decodes the class's result
// list. The query must select the _additional side channel itself for ids
// and scores to come back.
func (r *Repo) Raw(ctx context.Context, query string, returnEmbedding bool) ([]domdoc.Document, error) {
	raw, err := r.store.Raw(ctx, r.class, query)
	if err != nil {
		return nil, fmt.Errorf("raw query: %w", err)
	}
	return r.decodeAll(raw, returnEmbedding)
}

// Count counts the documents matching where.
func (r *Repo) Count(ctx context.Context, where *weaviate.WhereFilter) (int, error) {
	n, err := r.store.AggregateCount(ctx, r.class, where)
	if err != nil {
		return 0, fmt.Errorf("count documents: %w", err)
	}
	return n, nil
}

func (r *Repo) decodeAll(raw []map[string]any, returnEmbedding bool) ([]domdoc.Document, error) {
	docs := make([]domdoc.Document, 0, len(raw))
	for _, item := range raw {
		doc, err := r.codec.DecodeResult(item, returnEmbedding)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func withAdditional(properties []string) []string {
	out := make([]string, 0, len(properties)+1)
	out = append(out, properties...)
	return append(out, additionalSelection)
}
