package document

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"github.com/kailas-cloud/weavedoc/internal/domain"
	domdoc "github.com/kailas-cloud/weavedoc/internal/domain/document"
)

func TestCodec_EncodeProperties(t *testing.T) {
	codec := NewCodec("content", "embedding", true)
	doc, err := domdoc.New("abc", "hello world", "text", map[string]any{
		"publisher": "nytimes",
		"published": "2021-06-01",
	})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}

	props, err := codec.EncodeProperties(&doc, map[string]struct{}{"published": {}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if props["content"] != `"hello world"` {
		t.Errorf("content = %v, want JSON string", props["content"])
	}
	if props["content_type"] != "text" {
		t.Errorf("content_type = %v", props["content_type"])
	}
	if props["publisher"] != "nytimes" {
		t.Errorf("publisher = %v", props["publisher"])
	}
	if props["published"] != "2021-06-01T00:00:00Z" {
		t.Errorf("published = %v, want RFC3339", props["published"])
	}
}

func TestCodec_EncodeProperties_ReservedMetaField(t *testing.T) {
	codec := NewCodec("content", "embedding", true)
	for _, reserved := range []string{"content", "embedding", "content_type"} {
		doc, err := domdoc.New("abc", "hello", "", map[string]any{reserved: "clobber"})
		if err != nil {
			t.Fatalf("new document: %v", err)
		}
		if _, err := codec.EncodeProperties(&doc, nil); !errors.Is(err, domain.ErrInvalidSchema) {
			t.Errorf("meta field %q: expected ErrInvalidSchema, got %v", reserved, err)
		}
	}
}

func TestCodec_EncodeVector_CosineNormalizes(t *testing.T) {
	codec := NewCodec("content", "embedding", true)
	doc := domdoc.Reconstruct("abc", "x", "", nil, []float32{3, 4}, nil)

	vector := codec.EncodeVector(&doc)
	var norm float64
	for _, x := range vector {
		norm += float64(x) * float64(x)
	}
	if math.Abs(math.Sqrt(norm)-1) > 1e-6 {
		t.Errorf("norm = %f, want 1", math.Sqrt(norm))
	}
	// The document's own embedding must stay untouched.
	if doc.Embedding()[0] != 3 {
		t.Error("EncodeVector mutated the document embedding")
	}
}

func TestL2Normalize_ZeroVectorUnchanged(t *testing.T) {
	v := []float32{0, 0, 0}
	L2Normalize(v)
	if !reflect.DeepEqual(v, []float32{0, 0, 0}) {
		t.Errorf("zero vector changed: %v", v)
	}
}

func TestCodec_RoundTrip(t *testing.T) {
	codec := NewCodec("content", "embedding", false)
	content := []any{[]any{"row1: cell"}, []any{"row2: cell"}}
	doc, err := domdoc.New("abc", content, "table", map[string]any{"publisher": "nytimes"})
	if err != nil {
		t.Fatalf("new document: %v", err)
	}
	doc.SetEmbedding([]float32{0.5, 0.25})

	props, err := codec.EncodeProperties(&doc, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := codec.DecodeObject("abc", props, codec.EncodeVector(&doc), true)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}

	if !reflect.DeepEqual(back.Content(), content) {
		t.Errorf("content = %#v, want %#v", back.Content(), content)
	}
	if back.ContentType() != "table" {
		t.Errorf("content type = %q", back.ContentType())
	}
	if back.Meta()["publisher"] != "nytimes" {
		t.Errorf("meta = %v", back.Meta())
	}
	if !reflect.DeepEqual(back.Embedding(), []float32{0.5, 0.25}) {
		t.Errorf("embedding = %v", back.Embedding())
	}
	if _, ok := back.Score(); ok {
		t.Error("get-shaped results carry no score")
	}
}

func TestCodec_DecodeResult_AdditionalPrecedence(t *testing.T) {
	codec := NewCodec("content", "embedding", true)
	raw := map[string]any{
		"content":   `"hello"`,
		"publisher": "nytimes",
		"_additional": map[string]any{
			"id":        "real-id",
			"certainty": 0.87,
			"vector":    []any{0.1, 0.2},
		},
	}

	doc, err := codec.DecodeResult(raw, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.ID() != "real-id" {
		t.Errorf("id = %q", doc.ID())
	}
	score, ok := doc.Score()
	if !ok || score != 0.87 {
		t.Errorf("score = %v %v", score, ok)
	}
	if len(doc.Embedding()) != 2 {
		t.Errorf("embedding = %v", doc.Embedding())
	}
	if _, leaked := doc.Meta()["_additional"]; leaked {
		t.Error("_additional leaked into meta")
	}
	if doc.Meta()["publisher"] != "nytimes" {
		t.Errorf("meta = %v", doc.Meta())
	}
}

func TestCodec_DecodeResult_DropEmbedding(t *testing.T) {
	codec := NewCodec("content", "embedding", true)
	raw := map[string]any{
		"content":     `"hello"`,
		"_additional": map[string]any{"id": "abc", "vector": []any{0.1}},
	}
	doc, err := codec.DecodeResult(raw, false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Embedding() != nil {
		t.Errorf("embedding should be dropped, got %v", doc.Embedding())
	}
}

func TestCodec_CorruptContent(t *testing.T) {
	codec := NewCodec("content", "embedding", true)
	_, err := codec.DecodeObject("abc", map[string]any{"content": "{not json"}, nil, true)
	if !errors.Is(err, domain.ErrCorruptContent) {
		t.Errorf("expected ErrCorruptContent, got %v", err)
	}
}

func TestCodec_MissingContentIsEmptyString(t *testing.T) {
	codec := NewCodec("content", "embedding", true)
	doc, err := codec.DecodeObject("abc", map[string]any{"publisher": "x"}, nil, true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if doc.Content() != "" {
		t.Errorf("content = %v, want empty string", doc.Content())
	}
}
