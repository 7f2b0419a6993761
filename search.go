package weavedoc

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/weavedoc/internal/domain"
	documentrepo "github.com/kailas-cloud/weavedoc/internal/repository/document"
)

// Embedder computes embedding vectors for documents, one vector per input
// document, in input order.
type Embedder interface {
	EmbedDocuments(ctx context.Context, docs []Document) ([][]float32, error)
}

// Query returns the documents matching filters, bounded by topK. The backend
// has no free-text search, so filters are required; use RawQuery for
// caller-built native queries.
func (s *Store) Query(ctx context.Context, filters Filters, topK int) (docs []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("query", start, err) }()

	if len(filters) == 0 {
		return nil, fmt.Errorf(
			"the backend has no free-text search, pass filters or use RawQuery: %w",
			domain.ErrUnsupportedOperation)
	}

	types, err := s.schema.PropertyTypes(ctx)
	if err != nil {
		return nil, err
	}
	where, err := s.compileFilters(filters, types)
	if err != nil {
		return nil, err
	}

	results, err := s.search.List(ctx, propertyNames(types), where, topK, 0, true)
	if err != nil {
		return nil, err
	}
	return fromDomainAll(results), nil
}

// RawQuery executes a caller-built native query verbatim and decodes the
// results. The query must target the store's class and select the
// `_additional { id certainty vector }` side channel for ids and scores.
func (s *Store) RawQuery(ctx context.Context, query string) (docs []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("raw_query", start, err) }()

	results, err := s.search.Raw(ctx, query, true)
	if err != nil {
		return nil, err
	}
	return fromDomainAll(results), nil
}

// QueryByEmbedding returns the topK documents nearest to vector, by
// descending relevance. The query vector is normalized the same way stored
// vectors are.
func (s *Store) QueryByEmbedding(ctx context.Context, vector []float32, filters Filters, topK int) (docs []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("query_by_embedding", start, err) }()

	types, err := s.schema.PropertyTypes(ctx)
	if err != nil {
		return nil, err
	}
	where, err := s.compileFilters(filters, types)
	if err != nil {
		return nil, err
	}

	query := make([]float32, len(vector))
	copy(query, vector)
	documentrepo.L2Normalize(query)

	results, err := s.search.NearVector(ctx, propertyNames(types), query, where, topK, s.returnEmbedding)
	if err != nil {
		return nil, err
	}
	return fromDomainAll(results), nil
}

// UpdateEmbeddings recomputes embeddings for the documents matching filters
// and replaces the stored vectors, leaving properties untouched. Every
// stored document already has an embedding, so updateExisting must be true;
// there is no skip-existing mode on this backend.
func (s *Store) UpdateEmbeddings(ctx context.Context, embedder Embedder, filters Filters, batchSize int, updateExisting bool) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("update_embeddings", start, err) }()

	if !updateExisting {
		return fmt.Errorf(
			"every stored document has an embedding, only updating existing ones is possible: %w",
			domain.ErrUnsupportedOperation)
	}
	if batchSize <= 0 {
		batchSize = defaultScanBatchSize
	}

	total, err := s.GetDocumentCount(ctx, filters, false)
	if err != nil {
		return err
	}
	s.logger.Info("updating embeddings", zap.Int("documents", total))

	batch := make([]Document, 0, batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.embedBatch(ctx, embedder, batch); err != nil {
			return err
		}
		batch = batch[:0]
		return nil
	}

	for doc, iterErr := range s.IterateDocuments(ctx, filters, batchSize) {
		if iterErr != nil {
			return iterErr
		}
		doc.Embedding = nil
		batch = append(batch, doc)
		if len(batch) == batchSize {
			if err := flush(); err != nil {
				return err
			}
		}
	}
	return flush()
}

func (s *Store) embedBatch(ctx context.Context, embedder Embedder, batch []Document) error {
	vectors, err := embedder.EmbedDocuments(ctx, batch)
	if err != nil {
		return fmt.Errorf("embed documents: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("embedder returned %d vectors for %d documents", len(vectors), len(batch))
	}

	for i, vector := range vectors {
		if len(vector) != s.embeddingDim {
			return fmt.Errorf("embedder returned dimension %d, store is configured for %d: %w",
				len(vector), s.embeddingDim, domain.ErrVectorDimMismatch)
		}
		documentrepo.L2Normalize(vector)
		if err := s.docs.ReplaceVector(ctx, batch[i].ID, vector); err != nil {
			return err
		}
	}
	return nil
}
