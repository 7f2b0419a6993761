// Package filter models the generic boolean/comparison filter tree shared by
// all query operations, and parses it from the nested-map form callers use.
package filter

import (
	"fmt"
	"reflect"

	"github.com/kailas-cloud/weavedoc/internal/domain"
)

// Operator is a leaf comparison operator.
type Operator string

// Comparison operators.
const (
	OpEq  Operator = "eq"
	OpIn  Operator = "in"
	OpGt  Operator = "gt"
	OpGte Operator = "gte"
	OpLt  Operator = "lt"
	OpLte Operator = "lte"
)

// LogicalOp combines child clauses.
type LogicalOp string

// Logical operators.
const (
	OpAnd LogicalOp = "and"
	OpOr  LogicalOp = "or"
	OpNot LogicalOp = "not"
)

// Clause is a node of the filter tree: either a Logical group or a
// Comparison leaf.
type Clause interface {
	isClause()
}

// Logical groups child clauses under and/or/not semantics.
type Logical struct {
	op       LogicalOp
	children []Clause
}

// NewLogical validates and creates a logical group.
func NewLogical(op LogicalOp, children []Clause) (Logical, error) {
	if len(children) == 0 {
		return Logical{}, fmt.Errorf("logical %q needs at least one child: %w",
			op, domain.ErrInvalidFilter)
	}
	return Logical{op: op, children: children}, nil
}

func (Logical) isClause() {}

// Op returns the logical operator.
func (l Logical) Op() LogicalOp { return l.op }

// Children returns the child clauses.
func (l Logical) Children() []Clause { return l.children }

// Comparison is a leaf comparing one field against a scalar, or against a
// list of scalars for the membership operator.
type Comparison struct {
	field string
	op    Operator
	value any
}

// NewComparison validates and creates a comparison leaf. A list value is only
// legal with the membership operator.
func NewComparison(field string, op Operator, value any) (Comparison, error) {
	if field == "" {
		return Comparison{}, fmt.Errorf("comparison field is required: %w", domain.ErrInvalidFilter)
	}
	if isList(value) && op != OpIn {
		return Comparison{}, fmt.Errorf(
			"field %q: list value requires the $in operator, got %q: %w",
			field, op, domain.ErrInvalidFilter)
	}
	if !isList(value) && op == OpIn {
		return Comparison{}, fmt.Errorf(
			"field %q: the $in operator requires a list value: %w",
			field, domain.ErrInvalidFilter)
	}
	return Comparison{field: field, op: op, value: value}, nil
}

func (Comparison) isClause() {}

// Field returns the field name.
func (c Comparison) Field() string { return c.field }

// Op returns the comparison operator.
func (c Comparison) Op() Operator { return c.op }

// Value returns the comparison value.
func (c Comparison) Value() any { return c.value }

func isList(v any) bool {
	if v == nil {
		return false
	}
	k := reflect.TypeOf(v).Kind()
	return k == reflect.Slice || k == reflect.Array
}
