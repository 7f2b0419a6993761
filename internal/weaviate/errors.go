package weaviate

import (
	"errors"
	"fmt"
)

// ErrNotFound signals a missing object.
var ErrNotFound = errors.New("object not found")

// Op identifies the backend surface an error came from.
type Op string

// Operation identifiers.
const (
	OpReady  Op = "ready"
	OpSchema Op = "schema"
	OpObject Op = "object"
	OpBatch  Op = "batch"
	OpQuery  Op = "query"
)

// Error wraps a transport failure with the backend surface and, when the
// backend answered, the HTTP status.
type Error struct {
	Op     Op
	Status int
	Err    error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("weaviate %s: status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("weaviate %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
