package weaviate

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// buildGet renders a Get query for class. properties is the selection set,
// already including any _additional block the caller wants. A non-nil vector
// adds a nearVector argument; limit and offset of 0 are omitted.
func buildGet(class string, properties []string, where *WhereFilter, vector []float32, limit, offset int) (string, error) {
	args := make([]string, 0, 4)
	if where != nil {
		rendered, err := renderWhere(where)
		if err != nil {
			return "", err
		}
		args = append(args, "where: "+rendered)
	}
	if vector != nil {
		args = append(args, "nearVector: {vector: "+renderFloats(vector)+"}")
	}
	if limit > 0 {
		args = append(args, "limit: "+strconv.Itoa(limit))
	}
	if offset > 0 {
		args = append(args, "offset: "+strconv.Itoa(offset))
	}

	var b strings.Builder
	b.WriteString("{Get{")
	b.WriteString(class)
	if len(args) > 0 {
		b.WriteString("(")
		b.WriteString(strings.Join(args, ", "))
		b.WriteString(")")
	}
	b.WriteString("{")
	b.WriteString(strings.Join(properties, " "))
	b.WriteString("}}}")
	return b.String(), nil
}

// buildAggregateCount renders an Aggregate query counting the objects of
// class matching where.
func buildAggregateCount(class string, where *WhereFilter) (string, error) {
	var b strings.Builder
	b.WriteString("{Aggregate{")
	b.WriteString(class)
	if where != nil {
		rendered, err := renderWhere(where)
		if err != nil {
			return "", err
		}
		b.WriteString("(where: ")
		b.WriteString(rendered)
		b.WriteString(")")
	}
	b.WriteString("{meta{count}}}}")
	return b.String(), nil
}

// renderWhere serializes a filter payload in the query language's inline
// object syntax: field names and operator enums bare, values as literals.
func renderWhere(w *WhereFilter) (string, error) {
	var b strings.Builder
	b.WriteString("{operator: ")
	b.WriteString(w.Operator)

	if len(w.Operands) > 0 {
		parts := make([]string, len(w.Operands))
		for i, op := range w.Operands {
			rendered, err := renderWhere(op)
			if err != nil {
				return "", err
			}
			parts[i] = rendered
		}
		b.WriteString(", operands: [")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString("]")
	}

	if len(w.Path) > 0 {
		quoted := make([]string, len(w.Path))
		for i, p := range w.Path {
			quoted[i] = strconv.Quote(p)
		}
		b.WriteString(", path: [")
		b.WriteString(strings.Join(quoted, ", "))
		b.WriteString("]")
	}

	for _, slot := range []struct {
		name  string
		value any
	}{
		{"valueString", w.ValueString},
		{"valueText", w.ValueText},
		{"valueInt", w.ValueInt},
		{"valueNumber", w.ValueNumber},
		{"valueBoolean", w.ValueBoolean},
		{"valueDate", w.ValueDate},
	} {
		if slot.value == nil {
			continue
		}
		rendered, err := renderLiteral(slot.value)
		if err != nil {
			return "", fmt.Errorf("%s: %w", slot.name, err)
		}
		b.WriteString(", ")
		b.WriteString(slot.name)
		b.WriteString(": ")
		b.WriteString(rendered)
	}

	b.WriteString("}")
	return b.String(), nil
}

func renderLiteral(value any) (string, error) {
	switch v := value.(type) {
	case string:
		return strconv.Quote(v), nil
	case bool:
		return strconv.FormatBool(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case []any:
		parts := make([]string, len(v))
		for i, item := range v {
			rendered, err := renderLiteral(item)
			if err != nil {
				return "", err
			}
			parts[i] = rendered
		}
		return "[" + strings.Join(parts, ", ") + "]", nil
	default:
		return "", fmt.Errorf("cannot render literal %v (%T)", value, value)
	}
}

func renderFloats(vector []float32) string {
	parts := make([]string, len(vector))
	for i, f := range vector {
		parts[i] = strconv.FormatFloat(float64(f), 'g', -1, 32)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

type graphqlResponse struct {
	Data   map[string]map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message string `json:"message"`
	} `json:"errors"`
}

func decodeResponse(body []byte) (*graphqlResponse, error) {
	var resp graphqlResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &Error{Op: OpQuery, Err: fmt.Errorf("decode response: %w", err)}
	}
	if len(resp.Errors) > 0 {
		msgs := make([]string, len(resp.Errors))
		for i, e := range resp.Errors {
			msgs[i] = e.Message
		}
		return nil, &Error{Op: OpQuery, Err: fmt.Errorf("%s", strings.Join(msgs, "; "))}
	}
	return &resp, nil
}

// decodeGet extracts the class's result list from a Get response body.
func decodeGet(body []byte, class string) ([]map[string]any, error) {
	resp, err := decodeResponse(body)
	if err != nil {
		return nil, err
	}

	raw, ok := resp.Data["Get"][class]
	if !ok {
		return nil, nil
	}
	var results []map[string]any
	if err := json.Unmarshal(raw, &results); err != nil {
		return nil, &Error{Op: OpQuery, Err: fmt.Errorf("decode %s results: %w", class, err)}
	}
	return results, nil
}

// decodeAggregateCount extracts meta.count from an Aggregate response body.
func decodeAggregateCount(body []byte, class string) (int, error) {
	resp, err := decodeResponse(body)
	if err != nil {
		return 0, err
	}

	raw, ok := resp.Data["Aggregate"][class]
	if !ok {
		return 0, &Error{Op: OpQuery, Err: fmt.Errorf("no aggregate data for %s", class)}
	}
	var rows []struct {
		Meta struct {
			Count int `json:"count"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(raw, &rows); err != nil {
		return 0, &Error{Op: OpQuery, Err: fmt.Errorf("decode %s aggregate: %w", class, err)}
	}
	if len(rows) == 0 {
		return 0, nil
	}
	return rows[0].Meta.Count, nil
}
