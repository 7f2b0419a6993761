package document

import (
	"context"
	"testing"

	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	objectByIDFn   func(ctx context.Context, id string, withVector bool) (*weaviate.Object, error)
	updateObjectFn func(ctx context.Context, class, id string, properties map[string]any, vector []float32) error
	deleteObjectFn func(ctx context.Context, id string) error
	batchCreateFn  func(ctx context.Context, objects []weaviate.BatchObject) ([]weaviate.BatchResult, error)
}

func (m *mockStore) ObjectByID(ctx context.Context, id string, withVector bool) (*weaviate.Object, error) {
	if m.objectByIDFn != nil {
		return m.objectByIDFn(ctx, id, withVector)
	}
	return nil, weaviate.ErrNotFound
}

func (m *mockStore) UpdateObject(ctx context.Context, class, id string, properties map[string]any, vector []float32) error {
	if m.updateObjectFn != nil {
		return m.updateObjectFn(ctx, class, id, properties, vector)
	}
	return nil
}

func (m *mockStore) DeleteObject(ctx context.Context, id string) error {
	if m.deleteObjectFn != nil {
		return m.deleteObjectFn(ctx, id)
	}
	return nil
}

func (m *mockStore) BatchCreate(ctx context.Context, objects []weaviate.BatchObject) ([]weaviate.BatchResult, error) {
	if m.batchCreateFn != nil {
		return m.batchCreateFn(ctx, objects)
	}
	results := make([]weaviate.BatchResult, len(objects))
	for i, obj := range objects {
		results[i] = weaviate.BatchResult{ID: obj.ID}
	}
	return results, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	codec := NewCodec("content", "embedding", true)
	return New(ms, codec, "Document"), ms
}
