package weaviate

// Schema is the remote schema document: a set of class definitions.
type Schema struct {
	Classes []Class `json:"classes"`
}

// Class describes one index (class) in the remote schema.
type Class struct {
	Class               string               `json:"class"`
	Description         string               `json:"description,omitempty"`
	Vectorizer          string               `json:"vectorizer,omitempty"`
	VectorIndexType     string               `json:"vectorIndexType,omitempty"`
	InvertedIndexConfig *InvertedIndexConfig `json:"invertedIndexConfig,omitempty"`
	Properties          []Property           `json:"properties,omitempty"`
}

// InvertedIndexConfig holds inverted-index housekeeping settings.
type InvertedIndexConfig struct {
	CleanupIntervalSeconds int `json:"cleanupIntervalSeconds,omitempty"`
}

// Property is one field definition of a class.
type Property struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	DataType    []string `json:"dataType"`
}

// Object is the get-shaped result of the objects endpoint: fields nested
// under properties, the vector alongside.
type Object struct {
	Class            string         `json:"class,omitempty"`
	ID               string         `json:"id"`
	Properties       map[string]any `json:"properties,omitempty"`
	Vector           []float32      `json:"vector,omitempty"`
	CreationTimeUnix int64          `json:"creationTimeUnix,omitempty"`
}

// BatchObject is one object of a batch write.
type BatchObject struct {
	Class      string         `json:"class"`
	ID         string         `json:"id"`
	Properties map[string]any `json:"properties"`
	Vector     []float32      `json:"vector,omitempty"`
}

// BatchResult is the per-object outcome of a batch write. Errors holds the
// backend's error messages for that object, empty on success.
type BatchResult struct {
	ID     string
	Errors []string
}

// WhereFilter is the backend's native filter payload. Exactly one typed
// value slot is set on a leaf; the membership operator carries a list in its
// slot. Logical groups set Operator to And, Or or Not and fill Operands.
type WhereFilter struct {
	Operator     string         `json:"operator"`
	Operands     []*WhereFilter `json:"operands,omitempty"`
	Path         []string       `json:"path,omitempty"`
	ValueString  any            `json:"valueString,omitempty"`
	ValueText    any            `json:"valueText,omitempty"`
	ValueInt     any            `json:"valueInt,omitempty"`
	ValueNumber  any            `json:"valueNumber,omitempty"`
	ValueBoolean any            `json:"valueBoolean,omitempty"`
	ValueDate    any            `json:"valueDate,omitempty"`
}

// Native filter operators.
const (
	OperatorAnd              = "And"
	OperatorOr               = "Or"
	OperatorNot              = "Not"
	OperatorEqual            = "Equal"
	OperatorContainsAny      = "ContainsAny"
	OperatorGreaterThan      = "GreaterThan"
	OperatorGreaterThanEqual = "GreaterThanEqual"
	OperatorLessThan         = "LessThan"
	OperatorLessThanEqual    = "LessThanEqual"
)
