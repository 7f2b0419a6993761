package weavedoc

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"math/rand/v2"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/weavedoc/internal/domain"
	domdoc "github.com/kailas-cloud/weavedoc/internal/domain/document"
	"github.com/kailas-cloud/weavedoc/internal/domain/filter"
	domschema "github.com/kailas-cloud/weavedoc/internal/domain/schema"
	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

const defaultScanBatchSize = 10_000

// WriteDocuments adds documents to the store. Documents without an embedding
// get a random placeholder vector of the configured dimension so the backend
// can index them; replace it via UpdateEmbeddings before running similarity
// searches. Writes are best-effort per batch: objects the backend rejects are
// logged and later batches still proceed.
func (s *Store) WriteDocuments(ctx context.Context, docs []Document, opts ...WriteOption) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("write_documents", start, err) }()

	wcfg := &writeConfig{batchSize: s.batchSize, policy: DuplicatePolicy(s.policy)}
	for _, o := range opts {
		o.applyWrite(wcfg)
	}
	policy, err := domdoc.ParsePolicy(string(wcfg.policy))
	if err != nil {
		return err
	}

	if len(docs) == 0 {
		s.logger.Warn("write documents called with an empty list")
		return nil
	}

	batch, err := s.prepareWrite(ctx, docs, policy)
	if err != nil {
		return err
	}
	if len(batch) == 0 {
		return nil
	}

	// Schema snapshot for this call. New fields migrate in once and update
	// the local snapshot so later documents in the call skip the round trip.
	types, err := s.schema.PropertyTypes(ctx)
	if err != nil {
		return err
	}
	dateProps := datePropsOf(types)

	dummyWarned := false
	for i := range batch {
		doc := &batch[i]
		if doc.Embedding() == nil {
			doc.SetEmbedding(randomEmbedding(s.embeddingDim))
			if !dummyWarned {
				s.logger.Warn("no embedding found in a document being written, " +
					"supplying a placeholder so indexing can take place; " +
					"overwrite it before similarity searches")
				dummyWarned = true
			}
		}
		fields := doc.Meta()
		if doc.ContentType() != "" {
			fields = make(map[string]any, len(doc.Meta())+1)
			for k, v := range doc.Meta() {
				fields[k] = v
			}
			fields["content_type"] = doc.ContentType()
		}
		if err := s.migrateFields(ctx, fields, types, dateProps); err != nil {
			return err
		}
	}

	for start := 0; start < len(batch); start += wcfg.batchSize {
		end := min(start+wcfg.batchSize, len(batch))
		failures, err := s.docs.WriteBatch(ctx, batch[start:end], dateProps)
		if err != nil {
			return err
		}
		for _, f := range failures {
			for _, msg := range f.Messages {
				s.logger.Error("batch write rejected an object",
					zap.String("id", f.ID),
					zap.String("message", msg),
				)
			}
		}
		s.obs.countWritten("written", end-start-len(failures))
		s.obs.countWritten("rejected", len(failures))
	}
	return nil
}

// prepareWrite normalizes ids, drops in-call duplicates and applies the
// duplicate policy against the store.
func (s *Store) prepareWrite(ctx context.Context, docs []Document, policy domdoc.DuplicatePolicy) ([]domdoc.Document, error) {
	seen := make(map[string]struct{}, len(docs))
	out := make([]domdoc.Document, 0, len(docs))
	for _, d := range docs {
		doc, err := toDomain(d)
		if err != nil {
			return nil, err
		}
		doc.SetID(s.normalizeID(doc.ID()))

		if _, dup := seen[doc.ID()]; dup {
			s.logger.Warn("duplicate document id in input, keeping the first occurrence",
				zap.String("id", doc.ID()))
			continue
		}
		seen[doc.ID()] = struct{}{}
		out = append(out, doc)
	}

	if policy == domdoc.PolicyOverwrite {
		return out, nil
	}

	kept := out[:0]
	for _, doc := range out {
		exists, err := s.docs.Exists(ctx, doc.ID())
		if err != nil {
			return nil, err
		}
		if !exists {
			kept = append(kept, doc)
			continue
		}
		if policy == domdoc.PolicyFail {
			return nil, fmt.Errorf("document %s already exists: %w",
				doc.ID(), domain.ErrDuplicateDocument)
		}
		s.obs.countWritten("skipped", 1)
	}
	return kept, nil
}

// migrateFields pushes additive schema migrations for fields absent from the
// snapshot, updating the snapshot and date set in place.
func (s *Store) migrateFields(ctx context.Context, fields map[string]any, types map[string]domschema.DataType, dateProps map[string]struct{}) error {
	names := make([]string, 0, len(fields))
	for name := range fields {
		if _, ok := types[name]; !ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		t, err := s.schema.EnsureProperty(ctx, name, fields[name])
		if err != nil {
			return err
		}
		types[name] = t
		if t.Elem() == domschema.Date {
			dateProps[name] = struct{}{}
		}
	}
	return nil
}

// GetDocumentByID fetches one document by id, embedding included. Absent ids
// yield ErrDocumentNotFound.
func (s *Store) GetDocumentByID(ctx context.Context, id string) (doc Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_document_by_id", start, err) }()

	d, err := s.docs.ByID(ctx, s.normalizeID(id), true)
	if err != nil {
		return Document{}, err
	}
	return fromDomain(d), nil
}

// GetDocumentsByID fetches documents by id, one backend call per id. Absent
// ids are omitted; the result follows input order.
func (s *Store) GetDocumentsByID(ctx context.Context, ids []string) (docs []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_documents_by_id", start, err) }()

	docs = make([]Document, 0, len(ids))
	for _, id := range ids {
		d, err := s.docs.ByID(ctx, s.normalizeID(id), true)
		if err != nil {
			if errors.Is(err, domain.ErrDocumentNotFound) {
				continue
			}
			return nil, err
		}
		docs = append(docs, fromDomain(d))
	}
	return docs, nil
}

// GetAllDocuments returns every document matching filters.
func (s *Store) GetAllDocuments(ctx context.Context, filters Filters) (docs []Document, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_all_documents", start, err) }()

	for doc, iterErr := range s.IterateDocuments(ctx, filters, 0) {
		if iterErr != nil {
			return nil, iterErr
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// IterateDocuments lazily yields the documents matching filters, fetching
// batchSize results per backend page (0 means the default page size). The
// sequence is single-pass; ranging again re-runs the scan from the start.
func (s *Store) IterateDocuments(ctx context.Context, filters Filters, batchSize int) iter.Seq2[Document, error] {
	if batchSize <= 0 {
		batchSize = defaultScanBatchSize
	}
	return func(yield func(Document, error) bool) {
		types, err := s.schema.PropertyTypes(ctx)
		if err != nil {
			yield(Document{}, err)
			return
		}
		where, err := s.compileFilters(filters, types)
		if err != nil {
			yield(Document{}, err)
			return
		}
		properties := propertyNames(types)

		for offset := 0; ; offset += batchSize {
			page, err := s.search.List(ctx, properties, where, batchSize, offset, s.returnEmbedding)
			if err != nil {
				yield(Document{}, err)
				return
			}
			for _, d := range page {
				if !yield(fromDomain(d), nil) {
					return
				}
			}
			if len(page) < batchSize {
				return
			}
		}
	}
}

// GetDocumentCount counts the documents matching filters. With
// onlyWithoutEmbedding the count is always 0: every stored document carries
// an embedding in this backend by construction.
func (s *Store) GetDocumentCount(ctx context.Context, filters Filters, onlyWithoutEmbedding bool) (n int, err error) {
	start := time.Now()
	defer func() { s.obs.observe("get_document_count", start, err) }()

	if onlyWithoutEmbedding {
		return 0, nil
	}

	types, err := s.schema.PropertyTypes(ctx)
	if err != nil {
		return 0, err
	}
	where, err := s.compileFilters(filters, types)
	if err != nil {
		return 0, err
	}
	return s.search.Count(ctx, where)
}

// GetEmbeddingCount counts stored embeddings, which equals the document
// count since every document has one.
func (s *Store) GetEmbeddingCount(ctx context.Context, filters Filters) (int, error) {
	return s.GetDocumentCount(ctx, filters, false)
}

// UpdateDocumentMeta merges meta fields into a stored document, migrating
// the schema for fields it does not know yet. Unspecified fields are left
// unchanged.
func (s *Store) UpdateDocumentMeta(ctx context.Context, id string, meta map[string]any) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("update_document_meta", start, err) }()

	types, err := s.schema.PropertyTypes(ctx)
	if err != nil {
		return err
	}
	dateProps := datePropsOf(types)
	if err := s.migrateFields(ctx, meta, types, dateProps); err != nil {
		return err
	}
	return s.docs.UpdateMeta(ctx, s.normalizeID(id), meta, dateProps)
}

// DeleteDocuments deletes documents. With neither ids nor filters the whole
// class is dropped and recreated (fast full wipe). Otherwise matching
// documents are scanned and deleted one by one; when both ids and filters
// are given, the intersection is deleted.
func (s *Store) DeleteDocuments(ctx context.Context, ids []string, filters Filters) (err error) {
	start := time.Now()
	defer func() { s.obs.observe("delete_documents", start, err) }()

	if len(ids) == 0 && len(filters) == 0 {
		return s.schema.Recreate(ctx)
	}

	idSet := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		idSet[s.normalizeID(id)] = struct{}{}
	}

	// Collect the matched ids before deleting anything: the scan paginates by
	// offset, and deleting mid-scan shifts later matches below the next page's
	// offset, so they would never be visited.
	var matched []string
	for doc, iterErr := range s.IterateDocuments(ctx, filters, 0) {
		if iterErr != nil {
			return iterErr
		}
		if len(idSet) > 0 {
			if _, ok := idSet[doc.ID]; !ok {
				continue
			}
		}
		matched = append(matched, doc.ID)
	}
	for _, id := range matched {
		if err := s.docs.Delete(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// DeleteAllDocuments deletes the documents matching filters, or everything.
//
// Deprecated: use DeleteDocuments.
func (s *Store) DeleteAllDocuments(ctx context.Context, filters Filters) error {
	s.logger.Warn("DeleteAllDocuments is deprecated, use DeleteDocuments")
	return s.DeleteDocuments(ctx, nil, filters)
}

// compileFilters parses and lowers the nested-map filter form to the native
// where payload. Empty filters compile to nil.
func (s *Store) compileFilters(filters Filters, types map[string]domschema.DataType) (*weaviate.WhereFilter, error) {
	if len(filters) == 0 {
		return nil, nil
	}
	clause, err := filter.Parse(filters)
	if err != nil {
		return nil, err
	}
	return weaviate.CompileWhere(clause, types)
}

// propertyNames returns the snapshot's property names, sorted for
// deterministic queries.
func propertyNames(types map[string]domschema.DataType) []string {
	names := make([]string, 0, len(types))
	for name := range types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func datePropsOf(types map[string]domschema.DataType) map[string]struct{} {
	dates := make(map[string]struct{})
	for name, t := range types {
		if t.Elem() == domschema.Date {
			dates[name] = struct{}{}
		}
	}
	return dates
}

// randomEmbedding builds a placeholder vector with components in [0, 1).
func randomEmbedding(dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = rand.Float32()
	}
	return v
}
