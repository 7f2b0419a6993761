package schema

import (
	"context"
	"testing"

	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	schemaGetFn      func(ctx context.Context) (weaviate.Schema, error)
	schemaContainsFn func(ctx context.Context, def weaviate.Schema) (bool, error)
	schemaCreateFn   func(ctx context.Context, def weaviate.Schema) error
	addPropertyFn    func(ctx context.Context, class string, prop weaviate.Property) error
	deleteClassFn    func(ctx context.Context, class string) error
}

func (m *mockStore) SchemaGet(ctx context.Context) (weaviate.Schema, error) {
	if m.schemaGetFn != nil {
		return m.schemaGetFn(ctx)
	}
	return weaviate.Schema{}, nil
}

func (m *mockStore) SchemaContains(ctx context.Context, def weaviate.Schema) (bool, error) {
	if m.schemaContainsFn != nil {
		return m.schemaContainsFn(ctx, def)
	}
	return false, nil
}

func (m *mockStore) SchemaCreate(ctx context.Context, def weaviate.Schema) error {
	if m.schemaCreateFn != nil {
		return m.schemaCreateFn(ctx, def)
	}
	return nil
}

func (m *mockStore) AddProperty(ctx context.Context, class string, prop weaviate.Property) error {
	if m.addPropertyFn != nil {
		return m.addPropertyFn(ctx, class, prop)
	}
	return nil
}

func (m *mockStore) DeleteClass(ctx context.Context, class string) error {
	if m.deleteClassFn != nil {
		return m.deleteClassFn(ctx, class)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, "Document", "name", "content", "hnsw", nil), ms
}
