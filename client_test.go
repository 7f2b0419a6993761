package weavedoc

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func TestNew_EnsuresClass(t *testing.T) {
	s, fc := newTestStore(t)

	if s.Index() != "Document" {
		t.Errorf("index = %s", s.Index())
	}
	cls := fc.findClass("Document")
	if cls == nil {
		t.Fatal("class was not created at construction")
	}
	if cls.Vectorizer != "none" || cls.VectorIndexType != "hnsw" {
		t.Errorf("class = %+v", cls)
	}
	if len(cls.Properties) != 2 {
		t.Errorf("properties = %+v", cls.Properties)
	}
}

func TestNew_IndexNameIsCased(t *testing.T) {
	s, fc := newTestStore(t, WithIndex("my_documents"))
	if s.Index() != "MyDocuments" {
		t.Errorf("index = %s", s.Index())
	}
	if fc.findClass("MyDocuments") == nil {
		t.Error("cased class was not created")
	}
}

func TestNew_SkipsExistingClass(t *testing.T) {
	fc := newFakeClient()
	if _, err := New(context.Background(), withClient(fc), WithEmbeddingDim(3)); err != nil {
		t.Fatalf("first New: %v", err)
	}
	if _, err := New(context.Background(), withClient(fc), WithEmbeddingDim(3)); err != nil {
		t.Fatalf("second New on an existing class: %v", err)
	}
	if len(fc.schema.Classes) != 1 {
		t.Errorf("classes = %+v", fc.schema.Classes)
	}
}

func TestNew_HeadersNotSupported(t *testing.T) {
	fc := newFakeClient()
	_, err := New(context.Background(), withClient(fc),
		WithDefaultHeaders(map[string]string{"X-OpenAI-Api-Key": "sk-test"}))
	if !errors.Is(err, ErrHeadersNotSupported) {
		t.Fatalf("expected ErrHeadersNotSupported, got %v", err)
	}
}

func TestNew_SimilarityNotSupported(t *testing.T) {
	fc := newFakeClient()
	_, err := New(context.Background(), withClient(fc), WithSimilarity("dot_product"))
	if !errors.Is(err, ErrSimilarityNotSupported) {
		t.Fatalf("expected ErrSimilarityNotSupported, got %v", err)
	}
}

func TestNew_InvalidDuplicatePolicy(t *testing.T) {
	fc := newFakeClient()
	_, err := New(context.Background(), withClient(fc), WithDuplicatePolicy("merge"))
	if !errors.Is(err, ErrInvalidPolicy) {
		t.Fatalf("expected ErrInvalidPolicy, got %v", err)
	}
}

func TestNew_BackendNotReady(t *testing.T) {
	fc := newFakeClient()
	fc.notReady = true
	if _, err := New(context.Background(), withClient(fc)); err == nil {
		t.Fatal("expected construction to fail on an unready backend")
	}
}

func TestNew_CustomSchema(t *testing.T) {
	custom := map[string]any{
		"classes": []any{map[string]any{
			"class":      "Document",
			"vectorizer": "none",
			"properties": []any{
				map[string]any{"name": "content", "dataType": []any{"text"}},
				map[string]any{"name": "views", "dataType": []any{"int"}},
			},
		}},
	}
	_, fc := newTestStore(t, WithCustomSchema(custom))

	cls := fc.findClass("Document")
	if cls == nil {
		t.Fatal("custom class was not created")
	}
	if len(cls.Properties) != 2 || cls.Properties[1].Name != "views" {
		t.Errorf("properties = %+v", cls.Properties)
	}
}

func TestNew_MalformedCustomSchema(t *testing.T) {
	fc := newFakeClient()
	_, err := New(context.Background(), withClient(fc), WithEmbeddingDim(3),
		WithCustomSchema(map[string]any{"classes": "not a list"}))
	if err == nil {
		t.Fatal("expected construction to fail on a schema that does not parse")
	}
}

func TestObserver_NilSafe(t *testing.T) {
	var obs *observer
	obs.observe("test", time.Now(), nil)
	obs.observe("test", time.Now(), errors.New("err"))
	obs.countWritten("written", 1)
}

func TestObserver_Metrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	obs, err := newObserver(nil, reg)
	if err != nil {
		t.Fatalf("newObserver: %v", err)
	}

	obs.observe("write_documents", time.Now().Add(-10*time.Millisecond), nil)
	obs.observe("write_documents", time.Now(), errors.New("fail"))
	obs.countWritten("written", 5)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected metrics to be registered")
	}

	found := false
	for _, f := range families {
		if f.GetName() == "weavedoc_store_operations_total" {
			found = true
			if len(f.GetMetric()) != 2 {
				t.Errorf("expected 2 metric samples, got %d", len(f.GetMetric()))
			}
		}
	}
	if !found {
		t.Error("operations counter was not registered")
	}
}

func TestObserver_RegisterTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("first newObserver: %v", err)
	}
	// A second store on the same registerer reuses the collectors.
	if _, err := newObserver(nil, reg); err != nil {
		t.Fatalf("second newObserver: %v", err)
	}
}

func TestStoreMetrics_WrittenCounter(t *testing.T) {
	reg := prometheus.NewRegistry()
	s, _ := newTestStore(t, WithPrometheus(reg))

	err := s.WriteDocuments(context.Background(), []Document{
		{ID: "doc-1", Content: "first"},
	})
	if err != nil {
		t.Fatalf("WriteDocuments: %v", err)
	}

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, f := range families {
		if f.GetName() != "weavedoc_store_documents_written_total" {
			continue
		}
		if v := f.GetMetric()[0].GetCounter().GetValue(); v != 1 {
			t.Errorf("documents written = %v", v)
		}
		return
	}
	t.Error("documents written counter was not registered")
}
