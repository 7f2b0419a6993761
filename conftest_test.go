package weavedoc

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"

	"github.com/kailas-cloud/weavedoc/internal/weaviate"
)

// fakeClient is an in-memory backend for facade tests: it keeps a schema and
// an object table and evaluates where payloads the way the real service
// would, closely enough for the store's behavior to show through.
type fakeClient struct {
	schema  weaviate.Schema
	objects map[string]*fakeObject
	order   []string

	// rejectIDs marks object ids the next batch write refuses, with the
	// error messages to report for them.
	rejectIDs map[string][]string
	notReady  bool
	rawFn     func(class, query string) ([]map[string]any, error)
}

type fakeObject struct {
	class      string
	properties map[string]any
	vector     []float32
}

var _ weaviate.Client = (*fakeClient)(nil)

func newFakeClient() *fakeClient {
	return &fakeClient{objects: map[string]*fakeObject{}}
}

func (f *fakeClient) Ready(_ context.Context) error {
	if f.notReady {
		return errors.New("backend not ready")
	}
	return nil
}

func (f *fakeClient) SchemaGet(_ context.Context) (weaviate.Schema, error) {
	return f.schema, nil
}

func (f *fakeClient) SchemaContains(_ context.Context, def weaviate.Schema) (bool, error) {
	for _, want := range def.Classes {
		if f.findClass(want.Class) == nil {
			return false, nil
		}
	}
	return true, nil
}

func (f *fakeClient) SchemaCreate(_ context.Context, def weaviate.Schema) error {
	for _, cls := range def.Classes {
		if f.findClass(cls.Class) != nil {
			return fmt.Errorf("class %s already exists", cls.Class)
		}
		f.schema.Classes = append(f.schema.Classes, cls)
	}
	return nil
}

func (f *fakeClient) AddProperty(_ context.Context, class string, prop weaviate.Property) error {
	cls := f.findClass(class)
	if cls == nil {
		return fmt.Errorf("class %s does not exist", class)
	}
	cls.Properties = append(cls.Properties, prop)
	return nil
}

func (f *fakeClient) DeleteClass(_ context.Context, class string) error {
	classes := f.schema.Classes[:0]
	for _, cls := range f.schema.Classes {
		if cls.Class != class {
			classes = append(classes, cls)
		}
	}
	f.schema.Classes = classes

	order := f.order[:0]
	for _, id := range f.order {
		if f.objects[id].class == class {
			delete(f.objects, id)
			continue
		}
		order = append(order, id)
	}
	f.order = order
	return nil
}

func (f *fakeClient) ObjectByID(_ context.Context, id string, withVector bool) (*weaviate.Object, error) {
	obj, ok := f.objects[id]
	if !ok {
		return nil, &weaviate.Error{Op: weaviate.OpObject, Status: 404, Err: weaviate.ErrNotFound}
	}
	out := &weaviate.Object{Class: obj.class, ID: id, Properties: copyProps(obj.properties)}
	if withVector {
		out.Vector = obj.vector
	}
	return out, nil
}

func (f *fakeClient) UpdateObject(_ context.Context, class, id string, properties map[string]any, vector []float32) error {
	obj, ok := f.objects[id]
	if !ok || obj.class != class {
		return &weaviate.Error{Op: weaviate.OpObject, Status: 404, Err: weaviate.ErrNotFound}
	}
	for k, v := range properties {
		obj.properties[k] = v
	}
	if vector != nil {
		obj.vector = vector
	}
	return nil
}

func (f *fakeClient) DeleteObject(_ context.Context, id string) error {
	if _, ok := f.objects[id]; !ok {
		return &weaviate.Error{Op: weaviate.OpObject, Status: 404, Err: weaviate.ErrNotFound}
	}
	delete(f.objects, id)
	order := f.order[:0]
	for _, existing := range f.order {
		if existing != id {
			order = append(order, existing)
		}
	}
	f.order = order
	return nil
}

func (f *fakeClient) BatchCreate(_ context.Context, objects []weaviate.BatchObject) ([]weaviate.BatchResult, error) {
	results := make([]weaviate.BatchResult, len(objects))
	for i, obj := range objects {
		results[i] = weaviate.BatchResult{ID: obj.ID}
		if msgs, rejected := f.rejectIDs[obj.ID]; rejected {
			results[i].Errors = msgs
			continue
		}
		if _, exists := f.objects[obj.ID]; !exists {
			f.order = append(f.order, obj.ID)
		}
		f.objects[obj.ID] = &fakeObject{
			class:      obj.Class,
			properties: copyProps(obj.Properties),
			vector:     obj.Vector,
		}
	}
	return results, nil
}

func (f *fakeClient) AggregateCount(_ context.Context, class string, where *weaviate.WhereFilter) (int, error) {
	n := 0
	for _, id := range f.order {
		obj := f.objects[id]
		if obj.class == class && matchWhere(obj.properties, where) {
			n++
		}
	}
	return n, nil
}

func (f *fakeClient) Get(_ context.Context, class string, _ []string, where *weaviate.WhereFilter, limit, offset int) ([]map[string]any, error) {
	var out []map[string]any
	skipped := 0
	for _, id := range f.order {
		obj := f.objects[id]
		if obj.class != class || !matchWhere(obj.properties, where) {
			continue
		}
		if skipped < offset {
			skipped++
			continue
		}
		out = append(out, queryResult(id, obj, nil))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeClient) GetNearVector(_ context.Context, class string, _ []string, vector []float32, where *weaviate.WhereFilter, limit int) ([]map[string]any, error) {
	type scored struct {
		id    string
		obj   *fakeObject
		score float64
	}
	var hits []scored
	for _, id := range f.order {
		obj := f.objects[id]
		if obj.class != class || !matchWhere(obj.properties, where) {
			continue
		}
		hits = append(hits, scored{id: id, obj: obj, score: dot(obj.vector, vector)})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].score > hits[j].score })
	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]map[string]any, len(hits))
	for i, h := range hits {
		score := h.score
		out[i] = queryResult(h.id, h.obj, &score)
	}
	return out, nil
}

func (f *fakeClient) Raw(_ context.Context, class, query string) ([]map[string]any, error) {
	if f.rawFn != nil {
		return f.rawFn(class, query)
	}
	return nil, nil
}

func (f *fakeClient) findClass(name string) *weaviate.Class {
	for i := range f.schema.Classes {
		if f.schema.Classes[i].Class == name {
			return &f.schema.Classes[i]
		}
	}
	return nil
}

// queryResult shapes an object the way the query surface returns it: the
// properties plus the _additional side channel.
func queryResult(id string, obj *fakeObject, certainty *float64) map[string]any {
	out := copyProps(obj.properties)
	additional := map[string]any{"id": id, "vector": floatsToAny(obj.vector)}
	if certainty != nil {
		additional["certainty"] = *certainty
	}
	out["_additional"] = additional
	return out
}

func matchWhere(props map[string]any, where *weaviate.WhereFilter) bool {
	if where == nil {
		return true
	}
	switch where.Operator {
	case weaviate.OperatorAnd:
		for _, op := range where.Operands {
			if !matchWhere(props, op) {
				return false
			}
		}
		return true
	case weaviate.OperatorOr:
		for _, op := range where.Operands {
			if matchWhere(props, op) {
				return true
			}
		}
		return false
	case weaviate.OperatorNot:
		for _, op := range where.Operands {
			if matchWhere(props, op) {
				return false
			}
		}
		return true
	case weaviate.OperatorEqual:
		return equalValues(props[where.Path[0]], whereValue(where))
	case weaviate.OperatorContainsAny:
		candidates, _ := whereValue(where).([]any)
		for _, c := range candidates {
			if equalValues(props[where.Path[0]], c) {
				return true
			}
		}
		return false
	case weaviate.OperatorGreaterThan:
		return compareValues(props[where.Path[0]], whereValue(where)) > 0
	case weaviate.OperatorGreaterThanEqual:
		return compareValues(props[where.Path[0]], whereValue(where)) >= 0
	case weaviate.OperatorLessThan:
		return compareValues(props[where.Path[0]], whereValue(where)) < 0
	case weaviate.OperatorLessThanEqual:
		return compareValues(props[where.Path[0]], whereValue(where)) <= 0
	}
	return false
}

func whereValue(w *weaviate.WhereFilter) any {
	for _, v := range []any{w.ValueString, w.ValueText, w.ValueInt, w.ValueNumber, w.ValueBoolean, w.ValueDate} {
		if v != nil {
			return v
		}
	}
	return nil
}

func equalValues(a, b any) bool {
	if fa, aok := toFloat(a); aok {
		fb, bok := toFloat(b)
		return bok && fa == fb
	}
	return a == b
}

// compareValues orders two scalars, numerically when both are numbers and
// lexically for strings. Incomparable pairs sort as equal, which keeps the
// range operators false on both sides.
func compareValues(a, b any) int {
	fa, aok := toFloat(a)
	fb, bok := toFloat(b)
	if aok && bok {
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
		return 0
	}
	sa, aok := a.(string)
	sb, bok := b.(string)
	if aok && bok {
		switch {
		case sa < sb:
			return -1
		case sa > sb:
			return 1
		}
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func copyProps(props map[string]any) map[string]any {
	out := make(map[string]any, len(props))
	for k, v := range props {
		out[k] = v
	}
	return out
}

func floatsToAny(vector []float32) []any {
	out := make([]any, len(vector))
	for i, v := range vector {
		out[i] = float64(v)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := 0; i < len(a) && i < len(b); i++ {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

// newTestStore builds a store on a fresh in-memory backend. The embedding
// dimension is kept small so placeholder vectors stay cheap.
func newTestStore(t *testing.T, opts ...Option) (*Store, *fakeClient) {
	t.Helper()
	fc := newFakeClient()
	base := []Option{withClient(fc), WithEmbeddingDim(3)}
	s, err := New(context.Background(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s, fc
}
