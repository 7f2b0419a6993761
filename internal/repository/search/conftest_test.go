package search

import (
	"context"
	"testing"

	"github.com/kailas-cloud/weavedoc/internal/repository/document"
	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	getFn            func(ctx context.Context, class string, properties []string, where *weaviate.WhereFilter, limit, offset int) ([]map[string]any, error)
	getNearVectorFn  func(ctx context.Context, class string, properties []string, vector []float32, where *weaviate.WhereFilter, limit int) ([]map[string]any, error)
	aggregateCountFn func(ctx context.Context, class string, where *weaviate.WhereFilter) (int, error)
	rawFn            func(ctx context.Context, class, query string) ([]map[string]any, error)
}

func (m *mockStore) Get(ctx context.Context, class string, properties []string, where *weaviate.WhereFilter, limit, offset int) ([]map[string]any, error) {
	if m.getFn != nil {
		return m.getFn(ctx, class, properties, where, limit, offset)
	}
	return nil, nil
}

func (m *mockStore) GetNearVector(ctx context.Context, class string, properties []string, vector []float32, where *weaviate.WhereFilter, limit int) ([]map[string]any, error) {
	if m.getNearVectorFn != nil {
		return m.getNearVectorFn(ctx, class, properties, vector, where, limit)
	}
	return nil, nil
}

func (m *mockStore) AggregateCount(ctx context.Context, class string, where *weaviate.WhereFilter) (int, error) {
	if m.aggregateCountFn != nil {
		return m.aggregateCountFn(ctx, class, where)
	}
	return 0, nil
}

func (m *mockStore) Raw(ctx context.Context, class, query string) ([]map[string]any, error) {
	if m.rawFn != nil {
		return m.rawFn(ctx, class, query)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	codec := document.NewCodec("content", "embedding", true)
	return New(ms, codec, "Document"), ms
}
