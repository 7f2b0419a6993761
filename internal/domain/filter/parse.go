package filter

import (
	"fmt"
	"sort"

	"github.com/kailas-cloud/weavedoc/internal/domain"
)

// Parse builds a filter tree from the nested-map filter form. Keys are
// logical operators ($and, $or, $not), comparison operators ($eq, $in, $gt,
// $gte, $lt, $lte) or metadata field names. Siblings combine under an
// implicit $and; a bare scalar value means $eq and a bare list means $in.
// Logical operators accept either a map of children or a list of maps, so
// the same operator can appear several times on one level.
func Parse(raw map[string]any) (Clause, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty filter: %w", domain.ErrInvalidFilter)
	}
	children, err := parseLevel(raw)
	if err != nil {
		return nil, err
	}
	if len(children) == 1 {
		return children[0], nil
	}
	return NewLogical(OpAnd, children)
}

func parseLevel(raw map[string]any) ([]Clause, error) {
	clauses := make([]Clause, 0, len(raw))
	for _, key := range sortedKeys(raw) {
		value := raw[key]
		switch key {
		case "$and", "$or", "$not":
			c, err := parseLogical(logicalOp(key), value)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, c)
		default:
			cs, err := parseField(key, value)
			if err != nil {
				return nil, err
			}
			clauses = append(clauses, cs...)
		}
	}
	return clauses, nil
}

func parseLogical(op LogicalOp, value any) (Clause, error) {
	var children []Clause
	switch v := value.(type) {
	case map[string]any:
		cs, err := parseLevel(v)
		if err != nil {
			return nil, err
		}
		children = cs
	case []any:
		for _, item := range v {
			m, ok := item.(map[string]any)
			if !ok {
				return nil, fmt.Errorf("logical $%s list items must be maps, got %T: %w",
					op, item, domain.ErrInvalidFilter)
			}
			c, err := Parse(m)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
	case []map[string]any:
		for _, m := range v {
			c, err := Parse(m)
			if err != nil {
				return nil, err
			}
			children = append(children, c)
		}
	default:
		return nil, fmt.Errorf("logical $%s takes a map or a list of maps, got %T: %w",
			op, value, domain.ErrInvalidFilter)
	}
	return NewLogical(op, children)
}

// parseField turns one field entry into comparison leaves. A map value holds
// explicit comparison operators and may yield several leaves (implicit $and).
func parseField(field string, value any) ([]Clause, error) {
	m, ok := value.(map[string]any)
	if !ok {
		op := OpEq
		if isList(value) {
			op = OpIn
		}
		c, err := NewComparison(field, op, value)
		if err != nil {
			return nil, err
		}
		return []Clause{c}, nil
	}

	clauses := make([]Clause, 0, len(m))
	for _, opKey := range sortedKeys(m) {
		op, err := comparisonOp(opKey)
		if err != nil {
			return nil, fmt.Errorf("field %q: %w", field, err)
		}
		c, err := NewComparison(field, op, m[opKey])
		if err != nil {
			return nil, err
		}
		clauses = append(clauses, c)
	}
	if len(clauses) == 0 {
		return nil, fmt.Errorf("field %q has no comparisons: %w", field, domain.ErrInvalidFilter)
	}
	return clauses, nil
}

func logicalOp(key string) LogicalOp {
	switch key {
	case "$or":
		return OpOr
	case "$not":
		return OpNot
	default:
		return OpAnd
	}
}

func comparisonOp(key string) (Operator, error) {
	switch key {
	case "$eq":
		return OpEq, nil
	case "$in":
		return OpIn, nil
	case "$gt":
		return OpGt, nil
	case "$gte":
		return OpGte, nil
	case "$lt":
		return OpLt, nil
	case "$lte":
		return OpLte, nil
	default:
		return "", fmt.Errorf("unknown comparison operator %q: %w", key, domain.ErrInvalidFilter)
	}
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
