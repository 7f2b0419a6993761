// Package schema holds the backend property type system and the runtime type
// inference used for additive schema migrations.
package schema

import (
	"fmt"
	"strings"
	"time"

	"github.com/kailas-cloud/weavedoc/internal/dates"
	"github.com/kailas-cloud/weavedoc/internal/domain"
)

// DataType is a backend property type, optionally suffixed "[]" for a
// homogeneous list.
type DataType string

// Scalar data types.
const (
	String  DataType = "string"
	Text    DataType = "text"
	Int     DataType = "int"
	Number  DataType = "number"
	Boolean DataType = "boolean"
	Date    DataType = "date"
)

// IsList reports whether t is a list type.
func (t DataType) IsList() bool { return strings.HasSuffix(string(t), "[]") }

// Elem returns the element type of a list type, or t itself for scalars.
func (t DataType) Elem() DataType {
	return DataType(strings.TrimSuffix(string(t), "[]"))
}

// ListOf returns the list form of a scalar type.
func ListOf(t DataType) DataType { return t + "[]" }

// Infer maps a runtime value onto a backend data type. Lists unwrap to their
// first element and come back list-suffixed; strings parseable as dates
// become date, other strings text.
func Infer(value any) (DataType, error) {
	elem, isList, err := unwrap(value)
	if err != nil {
		return "", err
	}

	var t DataType
	switch v := elem.(type) {
	case string:
		if dates.IsDate(v) {
			t = Date
		} else {
			t = Text
		}
	case time.Time:
		t = Date
	case bool:
		t = Boolean
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		t = Int
	case float32, float64:
		t = Number
	default:
		return "", fmt.Errorf("cannot infer backend type for value of type %T: %w",
			elem, domain.ErrInvalidSchema)
	}

	if isList {
		return ListOf(t), nil
	}
	return t, nil
}

// unwrap resolves list values to their first element.
func unwrap(value any) (elem any, isList bool, err error) {
	switch v := value.(type) {
	case []any:
		if len(v) == 0 {
			return nil, false, fmt.Errorf("cannot infer backend type for an empty list: %w",
				domain.ErrInvalidSchema)
		}
		return v[0], true, nil
	case []string:
		if len(v) == 0 {
			return nil, false, fmt.Errorf("cannot infer backend type for an empty list: %w",
				domain.ErrInvalidSchema)
		}
		return v[0], true, nil
	case []int:
		if len(v) == 0 {
			return nil, false, fmt.Errorf("cannot infer backend type for an empty list: %w",
				domain.ErrInvalidSchema)
		}
		return v[0], true, nil
	case []int64:
		if len(v) == 0 {
			return nil, false, fmt.Errorf("cannot infer backend type for an empty list: %w",
				domain.ErrInvalidSchema)
		}
		return v[0], true, nil
	case []float64:
		if len(v) == 0 {
			return nil, false, fmt.Errorf("cannot infer backend type for an empty list: %w",
				domain.ErrInvalidSchema)
		}
		return v[0], true, nil
	case []bool:
		if len(v) == 0 {
			return nil, false, fmt.Errorf("cannot infer backend type for an empty list: %w",
				domain.ErrInvalidSchema)
		}
		return v[0], true, nil
	default:
		return value, false, nil
	}
}

// ClassName maps an index name onto the backend's class naming convention:
// snake_case becomes CamelCase, anything else gets its first letter
// capitalized.
func ClassName(index string) string {
	if index == "" {
		return index
	}
	if strings.Contains(index, "_") {
		parts := strings.Split(index, "_")
		var b strings.Builder
		for _, p := range parts {
			if p == "" {
				continue
			}
			b.WriteString(strings.ToUpper(p[:1]))
			b.WriteString(p[1:])
		}
		return b.String()
	}
	return strings.ToUpper(index[:1]) + index[1:]
}
