package document

import (
	"fmt"

	"github.com/kailas-cloud/weavedoc/internal/domain"
)

// DuplicatePolicy controls how writes handle ids that already exist in the store.
type DuplicatePolicy string

// Duplicate policy values.
const (
	// PolicySkip drops documents whose id is already stored.
	PolicySkip DuplicatePolicy = "skip"
	// PolicyOverwrite always writes; the backend upserts by id.
	PolicyOverwrite DuplicatePolicy = "overwrite"
	// PolicyFail aborts the whole write when any id already exists.
	PolicyFail DuplicatePolicy = "fail"
)

// ParsePolicy validates a duplicate policy value.
func ParsePolicy(s string) (DuplicatePolicy, error) {
	switch p := DuplicatePolicy(s); p {
	case PolicySkip, PolicyOverwrite, PolicyFail:
		return p, nil
	default:
		return "", fmt.Errorf("duplicate policy must be skip, overwrite or fail, got %q: %w",
			s, domain.ErrInvalidPolicy)
	}
}

// Document is the canonical storage unit (immutable value object).
// Content is an opaque payload (string or nested structure) serialized to a
// text blob on write. Meta is an open mapping of scalar or homogeneous
// list-of-scalar fields. Score is populated only on reads from query results.
type Document struct {
	id          string
	content     any
	contentType string
	meta        map[string]any
	embedding   []float32
	score       *float64
}

// New validates and creates a Document.
func New(id string, content any, contentType string, meta map[string]any) (Document, error) {
	if content == nil {
		return Document{}, fmt.Errorf("document %q: content is required", id)
	}
	for k := range meta {
		if k == "" {
			return Document{}, fmt.Errorf("document %q: empty meta field name: %w",
				id, domain.ErrInvalidSchema)
		}
	}
	return Document{
		id:          id,
		content:     content,
		contentType: contentType,
		meta:        cloneMeta(meta),
	}, nil
}

// Reconstruct creates a Document without validation (storage hydration).
func Reconstruct(
	id string, content any, contentType string, meta map[string]any,
	embedding []float32, score *float64,
) Document {
	return Document{
		id: id, content: content, contentType: contentType,
		meta: meta, embedding: embedding, score: score,
	}
}

// ID returns the document identifier.
func (d *Document) ID() string { return d.id }

// Content returns the opaque content payload.
func (d *Document) Content() any { return d.content }

// ContentType returns the optional content discriminator.
func (d *Document) ContentType() string { return d.contentType }

// Meta returns the open metadata mapping.
func (d *Document) Meta() map[string]any { return d.meta }

// Embedding returns the embedding vector.
func (d *Document) Embedding() []float32 { return d.embedding }

// Score returns the relevance score and whether one is set.
func (d *Document) Score() (float64, bool) {
	if d.score == nil {
		return 0, false
	}
	return *d.score, true
}

// SetID replaces the identifier in place (id normalization).
func (d *Document) SetID(id string) { d.id = id }

// SetEmbedding sets the embedding vector in place.
func (d *Document) SetEmbedding(v []float32) { d.embedding = v }

func cloneMeta(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	c := make(map[string]any, len(m))
	for k, v := range m {
		c[k] = v
	}
	return c
}
