package weavedoc

import (
	domdoc "github.com/kailas-cloud/weavedoc/internal/domain/document"
)

// Document is the unit of storage and retrieval. Content carries the payload
// (a string or any JSON-serializable nested structure); Meta is an open
// mapping of scalar or homogeneous list-of-scalar fields. Score is populated
// only on documents coming back from queries.
type Document struct {
	ID          string
	Content     any
	ContentType string
	Meta        map[string]any
	Embedding   []float32
	Score       *float64
}

// Filters is the nested-map filter form shared by all query operations.
// Keys are logical operators ($and, $or, $not), comparison operators ($eq,
// $in, $gt, $gte, $lt, $lte) or meta field names. A missing logical operator
// means $and; a missing comparison operator means $eq, or $in for list
// values.
type Filters map[string]any

// DuplicatePolicy controls how writes handle ids that already exist.
type DuplicatePolicy string

// Duplicate policy values.
const (
	// DuplicateSkip drops documents whose id is already stored.
	DuplicateSkip DuplicatePolicy = DuplicatePolicy(domdoc.PolicySkip)
	// DuplicateOverwrite always writes; the backend upserts by id.
	DuplicateOverwrite DuplicatePolicy = DuplicatePolicy(domdoc.PolicyOverwrite)
	// DuplicateFail aborts the whole write when any id already exists.
	DuplicateFail DuplicatePolicy = DuplicatePolicy(domdoc.PolicyFail)
)

// toDomain validates a public document into its domain form.
func toDomain(d Document) (domdoc.Document, error) {
	doc, err := domdoc.New(d.ID, d.Content, d.ContentType, d.Meta)
	if err != nil {
		return domdoc.Document{}, err
	}
	doc.SetEmbedding(d.Embedding)
	return doc, nil
}

// fromDomain converts a domain document back to the public shape.
func fromDomain(doc domdoc.Document) Document {
	out := Document{
		ID:          doc.ID(),
		Content:     doc.Content(),
		ContentType: doc.ContentType(),
		Meta:        doc.Meta(),
		Embedding:   doc.Embedding(),
	}
	if score, ok := doc.Score(); ok {
		out.Score = &score
	}
	return out
}

func fromDomainAll(docs []domdoc.Document) []Document {
	out := make([]Document, len(docs))
	for i, d := range docs {
		out[i] = fromDomain(d)
	}
	return out
}
