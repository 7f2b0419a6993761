// Package weaviate is the transport layer to the backing vector-search
// service: a typed client contract plus an HTTP implementation speaking the
// service's REST and GraphQL surfaces, and the compiler from the generic
// filter tree to the service's native where payload.
package weaviate

import "context"

// Client is the transport contract the store core calls. Implementations
// block the caller for the duration of each round trip; cancellation and
// per-call deadlines ride on the context.
type Client interface {
	// Ready checks backend connectivity. Called once at store construction;
	// failure is fatal there.
	Ready(ctx context.Context) error

	// SchemaGet fetches the full remote schema.
	SchemaGet(ctx context.Context) (Schema, error)
	// SchemaContains reports whether every class of def already exists with
	// at least the listed properties.
	SchemaContains(ctx context.Context, def Schema) (bool, error)
	// SchemaCreate creates the classes of def.
	SchemaCreate(ctx context.Context, def Schema) error
	// AddProperty appends a property definition to an existing class.
	AddProperty(ctx context.Context, class string, prop Property) error
	// DeleteClass drops a class and every object in it.
	DeleteClass(ctx context.Context, class string) error

	// ObjectByID fetches one object, optionally with its vector. Missing
	// objects yield ErrNotFound.
	ObjectByID(ctx context.Context, id string, withVector bool) (*Object, error)
	// UpdateObject merges partial properties into an object and, when vector
	// is non-nil, replaces its vector.
	UpdateObject(ctx context.Context, class, id string, properties map[string]any, vector []float32) error
	// DeleteObject removes one object.
	DeleteObject(ctx context.Context, id string) error

	// BatchCreate writes a batch of objects and returns one result per
	// object, carrying the backend's error messages for the ones it
	// rejected.
	BatchCreate(ctx context.Context, objects []BatchObject) ([]BatchResult, error)

	// AggregateCount counts the objects of a class matching where.
	AggregateCount(ctx context.Context, class string, where *WhereFilter) (int, error)
	// Get runs a filtered scan returning the selected properties of each
	// match as a query-shaped raw map. limit and offset of 0 are omitted.
	Get(ctx context.Context, class string, properties []string, where *WhereFilter, limit, offset int) ([]map[string]any, error)
	// GetNearVector runs a nearest-neighbor query around vector.
	GetNearVector(ctx context.Context, class string, properties []string, vector []float32, where *WhereFilter, limit int) ([]map[string]any, error)
	// Raw executes a caller-built native query verbatim and returns the
	// class's result list.
	Raw(ctx context.Context, class, query string) ([]map[string]any, error)
}
