package weaviate

import (
	"fmt"
	"reflect"

	"github.com/kailas-cloud/weavedoc/internal/dates"
	"github.com/kailas-cloud/weavedoc/internal/domain"
	"github.com/kailas-cloud/weavedoc/internal/domain/filter"
	"github.com/kailas-cloud/weavedoc/internal/domain/schema"
)

// CompileWhere lowers a generic filter tree to the backend's native where
// payload. types maps each filterable field to its registered backend type;
// the typed value slot of every leaf is chosen from it, so a field missing
// from types fails fast instead of reaching the backend.
func CompileWhere(c filter.Clause, types map[string]schema.DataType) (*WhereFilter, error) {
	switch node := c.(type) {
	case filter.Logical:
		return compileLogical(node, types)
	case filter.Comparison:
		return compileComparison(node, types)
	default:
		return nil, fmt.Errorf("unsupported filter clause %T: %w", c, domain.ErrInvalidFilter)
	}
}

func compileLogical(node filter.Logical, types map[string]schema.DataType) (*WhereFilter, error) {
	operands := make([]*WhereFilter, 0, len(node.Children()))
	for _, child := range node.Children() {
		op, err := CompileWhere(child, types)
		if err != nil {
			return nil, err
		}
		operands = append(operands, op)
	}

	var operator string
	switch node.Op() {
	case filter.OpAnd:
		operator = OperatorAnd
	case filter.OpOr:
		operator = OperatorOr
	case filter.OpNot:
		operator = OperatorNot
	default:
		return nil, fmt.Errorf("unsupported logical operator %q: %w",
			node.Op(), domain.ErrInvalidFilter)
	}

	return &WhereFilter{Operator: operator, Operands: operands}, nil
}

func compileComparison(node filter.Comparison, types map[string]schema.DataType) (*WhereFilter, error) {
	fieldType, ok := types[node.Field()]
	if !ok {
		return nil, fmt.Errorf("field %q is not in the class schema: %w",
			node.Field(), domain.ErrUnknownField)
	}

	var operator string
	switch node.Op() {
	case filter.OpEq:
		operator = OperatorEqual
	case filter.OpIn:
		operator = OperatorContainsAny
	case filter.OpGt:
		operator = OperatorGreaterThan
	case filter.OpGte:
		operator = OperatorGreaterThanEqual
	case filter.OpLt:
		operator = OperatorLessThan
	case filter.OpLte:
		operator = OperatorLessThanEqual
	default:
		return nil, fmt.Errorf("unsupported comparison operator %q: %w",
			node.Op(), domain.ErrInvalidFilter)
	}

	w := &WhereFilter{Operator: operator, Path: []string{node.Field()}}
	if err := setTypedValue(w, fieldType.Elem(), node.Op(), node.Value()); err != nil {
		return nil, fmt.Errorf("field %q: %w", node.Field(), err)
	}
	return w, nil
}

// setTypedValue fills the value slot matching the field's registered type.
// The membership operator carries a list of coerced elements in that slot.
func setTypedValue(w *WhereFilter, elem schema.DataType, op filter.Operator, value any) error {
	if op == filter.OpIn {
		items, err := listElements(value)
		if err != nil {
			return err
		}
		coerced := make([]any, len(items))
		for i, item := range items {
			v, err := coerceValue(elem, item)
			if err != nil {
				return err
			}
			coerced[i] = v
		}
		return assignSlot(w, elem, coerced)
	}

	v, err := coerceValue(elem, value)
	if err != nil {
		return err
	}
	return assignSlot(w, elem, v)
}

func assignSlot(w *WhereFilter, elem schema.DataType, v any) error {
	switch elem {
	case schema.String:
		w.ValueString = v
	case schema.Text:
		w.ValueText = v
	case schema.Int:
		w.ValueInt = v
	case schema.Number:
		w.ValueNumber = v
	case schema.Boolean:
		w.ValueBoolean = v
	case schema.Date:
		w.ValueDate = v
	default:
		return fmt.Errorf("no value slot for backend type %q: %w", elem, domain.ErrInvalidFilter)
	}
	return nil
}

func coerceValue(elem schema.DataType, value any) (any, error) {
	switch elem {
	case schema.String, schema.Text:
		s, ok := value.(string)
		if !ok {
			return nil, typeMismatch(elem, value)
		}
		return s, nil
	case schema.Int:
		return toInt64(value)
	case schema.Number:
		return toFloat64(value)
	case schema.Boolean:
		b, ok := value.(bool)
		if !ok {
			return nil, typeMismatch(elem, value)
		}
		return b, nil
	case schema.Date:
		s, err := dates.ToRFC3339(value)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", domain.ErrInvalidFilter, err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unsupported backend type %q: %w", elem, domain.ErrInvalidFilter)
	}
}

func toInt64(value any) (int64, error) {
	switch v := value.(type) {
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case int64:
		return v, nil
	case float64:
		// JSON-decoded filter values arrive as float64.
		if v != float64(int64(v)) {
			return 0, typeMismatch(schema.Int, value)
		}
		return int64(v), nil
	default:
		return 0, typeMismatch(schema.Int, value)
	}
}

func toFloat64(value any) (float64, error) {
	switch v := value.(type) {
	case int:
		return float64(v), nil
	case int32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	case float32:
		return float64(v), nil
	case float64:
		return v, nil
	default:
		return 0, typeMismatch(schema.Number, value)
	}
}

func listElements(value any) ([]any, error) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("membership operator requires a list value: %w",
			domain.ErrInvalidFilter)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}

func typeMismatch(elem schema.DataType, value any) error {
	return fmt.Errorf("value %v (%T) does not fit backend type %q: %w",
		value, value, elem, domain.ErrInvalidFilter)
}
