package document

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/kailas-cloud/weavedoc/internal/dates"
	"github.com/kailas-cloud/weavedoc/internal/domain"
	domdoc "github.com/kailas-cloud/weavedoc/internal/domain/document"
)

// contentTypeField is the reserved property carrying the content
// discriminator alongside the content blob.
const contentTypeField = "content_type"

// Codec translates between domain documents and the backend's object shape:
// meta fields flattened to top-level properties, content serialized to a JSON
// text blob, dates coerced to RFC3339, and the vector normalized for cosine
// similarity.
type Codec struct {
	contentField   string
	embeddingField string
	cosine         bool
}

// NewCodec creates a codec. cosine enables L2 normalization of vectors on
// the write path.
func NewCodec(contentField, embeddingField string, cosine bool) *Codec {
	return &Codec{contentField: contentField, embeddingField: embeddingField, cosine: cosine}
}

// EncodeProperties renders a document's content, content type and meta as the
// backend's flat property map. dateProps lists the class's date-typed
// properties, whose values are coerced to RFC3339.
func (c *Codec) EncodeProperties(doc *domdoc.Document, dateProps map[string]struct{}) (map[string]any, error) {
	if err := c.validateMeta(doc.ID(), doc.Meta()); err != nil {
		return nil, err
	}
	props := make(map[string]any, len(doc.Meta())+2)
	for k, v := range doc.Meta() {
		props[k] = v
	}
	if doc.ContentType() != "" {
		props[contentTypeField] = doc.ContentType()
	}

	// Content goes in as a JSON string so nested structures survive the
	// backend's flat text property.
	blob, err := json.Marshal(doc.Content())
	if err != nil {
		return nil, fmt.Errorf("document %s: encode content: %w", doc.ID(), err)
	}
	props[c.contentField] = string(blob)

	for name := range dateProps {
		v, ok := props[name]
		if !ok {
			continue
		}
		coerced, err := dates.ToRFC3339(v)
		if err != nil {
			return nil, fmt.Errorf("document %s: date property %s: %w", doc.ID(), name, err)
		}
		props[name] = coerced
	}
	return props, nil
}

// validateMeta rejects meta fields named after the reserved properties, which
// would silently overwrite the serialized content, vector or discriminator.
func (c *Codec) validateMeta(id string, meta map[string]any) error {
	for k := range meta {
		if k == c.contentField || k == c.embeddingField || k == contentTypeField {
			return fmt.Errorf("document %s: meta field %q collides with a reserved property: %w",
				id, k, domain.ErrInvalidSchema)
		}
	}
	return nil
}

// EncodeVector returns the vector to store: a copy of the document's
// embedding, L2-normalized when the codec runs in cosine mode.
func (c *Codec) EncodeVector(doc *domdoc.Document) []float32 {
	emb := doc.Embedding()
	if emb == nil {
		return nil
	}
	vector := make([]float32, len(emb))
	copy(vector, emb)
	if c.cosine {
		L2Normalize(vector)
	}
	return vector
}

// DecodeObject hydrates a document from a get-shaped result, where fields
// nest under a properties key and the vector sits alongside.
func (c *Codec) DecodeObject(id string, properties map[string]any, vector []float32, returnEmbedding bool) (domdoc.Document, error) {
	return c.decode(id, properties, vector, nil, returnEmbedding)
}

// DecodeResult hydrates a document from a query-shaped result, where fields
// sit at the top level and identity, score and vector ride in the
// _additional side channel.
func (c *Codec) DecodeResult(raw map[string]any, returnEmbedding bool) (domdoc.Document, error) {
	props := make(map[string]any, len(raw))
	for k, v := range raw {
		props[k] = v
	}

	var (
		id     string
		vector []float32
		score  *float64
	)
	if add, ok := props["_additional"].(map[string]any); ok {
		if v, ok := add["id"].(string); ok {
			id = v
		}
		if v, ok := add["certainty"].(float64); ok {
			score = &v
		}
		if v, ok := add["vector"]; ok {
			vector = toFloat32s(v)
		}
		delete(props, "_additional")
	}
	return c.decode(id, props, vector, score, returnEmbedding)
}

func (c *Codec) decode(id string, props map[string]any, vector []float32, score *float64, returnEmbedding bool) (domdoc.Document, error) {
	var content any = ""
	if raw, ok := props[c.contentField]; ok && raw != nil {
		blob, ok := raw.(string)
		if !ok {
			return domdoc.Document{}, fmt.Errorf(
				"document %s: content is %T, want string: %w", id, raw, domain.ErrCorruptContent)
		}
		if err := json.Unmarshal([]byte(blob), &content); err != nil {
			return domdoc.Document{}, fmt.Errorf(
				"document %s: decode content: %v: %w", id, err, domain.ErrCorruptContent)
		}
	}

	var contentType string
	if v, ok := props[contentTypeField].(string); ok {
		contentType = v
	}

	meta := make(map[string]any, len(props))
	for k, v := range props {
		if k == c.contentField || k == c.embeddingField || k == contentTypeField {
			continue
		}
		meta[k] = v
	}

	if !returnEmbedding {
		vector = nil
	}
	return domdoc.Reconstruct(id, content, contentType, meta, vector, score), nil
}

// L2Normalize scales v to unit length in place. Zero vectors stay zero.
func L2Normalize(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	if sum == 0 {
		return
	}
	norm := float32(math.Sqrt(sum))
	for i := range v {
		v[i] /= norm
	}
}

// toFloat32s converts a JSON-decoded vector ([]any of float64) to []float32.
func toFloat32s(value any) []float32 {
	switch v := value.(type) {
	case []float32:
		return v
	case []any:
		out := make([]float32, 0, len(v))
		for _, item := range v {
			f, ok := item.(float64)
			if !ok {
				return nil
			}
			out = append(out, float32(f))
		}
		return out
	default:
		return nil
	}
}
