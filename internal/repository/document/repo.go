// Package document persists documents as backend objects: single-object
// reads by id, partial updates, deletes, and batch writes, all through the
// codec that maps the domain document onto the backend's object shape.
package document

import (
	"context"
	"errors"
	"fmt"

	"github.com/kailas-cloud/weavedoc/internal/dates"
	"github.com/kailas-cloud/weavedoc/internal/domain"
	domdoc "github.com/kailas-cloud/weavedoc/internal/domain/document"
	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// store is the consumer interface for object operations (ISP).
type store interface {
	ObjectByID(ctx context.Context, id string, withVector bool) (*weaviate.Object, error)
	UpdateObject(ctx context.Context, class, id string, properties map[string]any, vector []float32) error
	DeleteObject(ctx context.Context, id string) error
	BatchCreate(ctx context.Context, objects []weaviate.BatchObject) ([]weaviate.BatchResult, error)
}

// Repo reads and writes documents of one class.
type Repo struct {
	store store
	codec *Codec
	class string
}

// New creates a document repository.
func New(s store, codec *Codec, class string) *Repo {
	return &Repo{store: s, codec: codec, class: class}
}

// ByID fetches one document with its vector. Missing ids yield
// domain.ErrDocumentNotFound.
func (r *Repo) ByID(ctx context.Context, id string, returnEmbedding bool) (domdoc.Document, error) {
	obj, err := r.store.ObjectByID(ctx, id, true)
	if err != nil {
		if errors.Is(err, weaviate.ErrNotFound) {
			return domdoc.Document{}, fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		return domdoc.Document{}, fmt.Errorf("get document %s: %w", id, err)
	}
	return r.codec.DecodeObject(obj.ID, obj.Properties, obj.Vector, returnEmbedding)
}

// Exists reports whether an object with id is stored.
func (r *Repo) Exists(ctx context.Context, id string) (bool, error) {
	_, err := r.store.ObjectByID(ctx, id, false)
	if err != nil {
		if errors.Is(err, weaviate.ErrNotFound) {
			return false, nil
		}
		return false, fmt.Errorf("check document %s: %w", id, err)
	}
	return true, nil
}

// UpdateMeta merges meta fields into a stored document. Date-typed fields
// are coerced to RFC3339 before the write.
func (r *Repo) UpdateMeta(ctx context.Context, id string, meta map[string]any, dateProps map[string]struct{}) error {
	if err := r.codec.validateMeta(id, meta); err != nil {
		return err
	}
	props := make(map[string]any, len(meta))
	for k, v := range meta {
		props[k] = v
	}
	for name := range dateProps {
		v, ok := props[name]
		if !ok {
			continue
		}
		coerced, err := dates.ToRFC3339(v)
		if err != nil {
			return fmt.Errorf("document %s: date property %s: %w", id, name, err)
		}
		props[name] = coerced
	}

	if err := r.store.UpdateObject(ctx, r.class, id, props, nil); err != nil {
		if errors.Is(err, weaviate.ErrNotFound) {
			return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("update document %s: %w", id, err)
	}
	return nil
}

// ReplaceVector swaps the stored vector of a document.
func (r *Repo) ReplaceVector(ctx context.Context, id string, vector []float32) error {
	if err := r.store.UpdateObject(ctx, r.class, id, map[string]any{}, vector); err != nil {
		if errors.Is(err, weaviate.ErrNotFound) {
			return fmt.Errorf("document %s: %w", id, domain.ErrDocumentNotFound)
		}
		return fmt.Errorf("update vector of %s: %w", id, err)
	}
	return nil
}

// Delete removes one document. Deleting an absent id is not an error.
func (r *Repo) Delete(ctx context.Context, id string) error {
	if err := r.store.DeleteObject(ctx, id); err != nil && !errors.Is(err, weaviate.ErrNotFound) {
		return fmt.Errorf("delete document %s: %w", id, err)
	}
	return nil
}

// Failure is one rejected object of a batch write, with the backend's error
// messages for it.
type Failure struct {
	ID       string
	Messages []string
}

// WriteBatch encodes and writes one batch of documents. The returned
// failures are the objects the backend rejected; a non-nil error means the
// batch as a whole did not go through.
func (r *Repo) WriteBatch(ctx context.Context, docs []domdoc.Document, dateProps map[string]struct{}) ([]Failure, error) {
	objects := make([]weaviate.BatchObject, 0, len(docs))
	for i := range docs {
		doc := &docs[i]
		props, err := r.codec.EncodeProperties(doc, dateProps)
		if err != nil {
			return nil, err
		}
		objects = append(objects, weaviate.BatchObject{
			Class:      r.class,
			ID:         doc.ID(),
			Properties: props,
			Vector:     r.codec.EncodeVector(doc),
		})
	}

	results, err := r.store.BatchCreate(ctx, objects)
	if err != nil {
		return nil, fmt.Errorf("batch write: %w", err)
	}

	var failed []Failure
	for _, res := range results {
		if len(res.Errors) > 0 {
			failed = append(failed, Failure{ID: res.ID, Messages: res.Errors})
		}
	}
	return failed, nil
}
