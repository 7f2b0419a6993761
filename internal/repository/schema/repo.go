// Package schema mirrors the remote class schema: ensuring the class exists
// at startup, reading back its property registry, and pushing additive
// property migrations when writes carry fields the class does not know yet.
package schema

import (
	"context"
	"fmt"

	domschema "github.com/kailas-cloud/weavedoc/internal/domain/schema"
	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// store is the consumer interface for schema operations (ISP).
type store interface {
	SchemaGet(ctx context.Context) (weaviate.Schema, error)
	SchemaContains(ctx context.Context, def weaviate.Schema) (bool, error)
	SchemaCreate(ctx context.Context, def weaviate.Schema) error
	AddProperty(ctx context.Context, class string, prop weaviate.Property) error
	DeleteClass(ctx context.Context, class string) error
}

// Repo manages one class's remote schema.
type Repo struct {
	store        store
	class        string
	nameField    string
	contentField string
	indexType    string
	custom       *weaviate.Schema
}

// New creates a schema repository for class. A non-nil custom schema replaces
// the default class definition at EnsureClass.
func New(s store, class, nameField, contentField, indexType string, custom *weaviate.Schema) *Repo {
	return &Repo{
		store:        s,
		class:        class,
		nameField:    nameField,
		contentField: contentField,
		indexType:    indexType,
		custom:       custom,
	}
}

// Class returns the class name the repository manages.
func (r *Repo) Class() string { return r.class }

// definition returns the schema document to ensure: the caller's custom
// schema when one was given, otherwise a minimal class carrying the name and
// content fields. Dynamic meta fields migrate in later, at write time.
func (r *Repo) definition() weaviate.Schema {
	if r.custom != nil {
		return *r.custom
	}
	return weaviate.Schema{Classes: []weaviate.Class{{
		Class:               r.class,
		Description:         "Document index",
		Vectorizer:          "none",
		VectorIndexType:     r.indexType,
		InvertedIndexConfig: &weaviate.InvertedIndexConfig{CleanupIntervalSeconds: 60},
		Properties: []weaviate.Property{
			{Name: r.nameField, Description: "Name Field", DataType: []string{"string"}},
			{Name: r.contentField, Description: "Document Content (e.g. the text)", DataType: []string{"text"}},
		},
	}}}
}

// EnsureClass creates the class if the remote schema does not contain it yet.
func (r *Repo) EnsureClass(ctx context.Context) error {
	def := r.definition()
	ok, err := r.store.SchemaContains(ctx, def)
	if err != nil {
		return fmt.Errorf("check class %s: %w", r.class, err)
	}
	if ok {
		return nil
	}
	if err := r.store.SchemaCreate(ctx, def); err != nil {
		return fmt.Errorf("create class %s: %w", r.class, err)
	}
	return nil
}

// Recreate drops the class with all its objects and ensures a fresh one.
func (r *Repo) Recreate(ctx context.Context) error {
	if err := r.store.DeleteClass(ctx, r.class); err != nil {
		return fmt.Errorf("delete class %s: %w", r.class, err)
	}
	return r.EnsureClass(ctx)
}

// PropertyTypes fetches the class's current property registry.
func (r *Repo) PropertyTypes(ctx context.Context) (map[string]domschema.DataType, error) {
	remote, err := r.store.SchemaGet(ctx)
	if err != nil {
		return nil, fmt.Errorf("get schema: %w", err)
	}

	for _, cls := range remote.Classes {
		if cls.Class != r.class {
			continue
		}
		types := make(map[string]domschema.DataType, len(cls.Properties))
		for _, p := range cls.Properties {
			if len(p.DataType) == 0 {
				continue
			}
			types[p.Name] = domschema.DataType(p.DataType[0])
		}
		return types, nil
	}
	return map[string]domschema.DataType{}, nil
}

// DateProperties returns the names of the class's date-typed properties.
func (r *Repo) DateProperties(ctx context.Context) (map[string]struct{}, error) {
	types, err := r.PropertyTypes(ctx)
	if err != nil {
		return nil, err
	}
	dates := make(map[string]struct{})
	for name, t := range types {
		if t.Elem() == domschema.Date {
			dates[name] = struct{}{}
		}
	}
	return dates, nil
}

// EnsureProperty adds a property to the class, inferring its type from an
// example value. Returns the inferred type so callers can update their local
// registry without a schema refetch.
func (r *Repo) EnsureProperty(ctx context.Context, name string, example any) (domschema.DataType, error) {
	t, err := domschema.Infer(example)
	if err != nil {
		return "", fmt.Errorf("property %s: %w", name, err)
	}

	prop := weaviate.Property{
		Name:        name,
		Description: fmt.Sprintf("dynamic property %s", name),
		DataType:    []string{string(t)},
	}
	if err := r.store.AddProperty(ctx, r.class, prop); err != nil {
		return "", fmt.Errorf("add property %s: %w", name, err)
	}
	return t, nil
}
