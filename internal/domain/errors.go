package domain

import "errors"

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrDocumentNotFound signals a missing document.
	ErrDocumentNotFound = errors.New("document not found")
	// ErrDuplicateDocument signals a write of an already stored id under the fail policy.
	ErrDuplicateDocument = errors.New("duplicate document")
	// ErrInvalidPolicy signals a duplicate policy outside skip, overwrite and fail.
	ErrInvalidPolicy = errors.New("invalid duplicate policy")
	// ErrInvalidFilter signals a malformed filter expression.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrUnknownField signals a filter on a field missing from the class schema.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidSchema signals an invalid schema or document shape.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrCorruptContent signals stored content that no longer deserializes.
	ErrCorruptContent = errors.New("corrupt document content")
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrUnsupportedOperation signals an operation the backend cannot serve.
	ErrUnsupportedOperation = errors.New("unsupported operation")
	// ErrHeadersNotSupported signals per-call headers, which the store does not accept.
	ErrHeadersNotSupported = errors.New("headers not supported")
	// ErrSimilarityNotSupported signals a similarity metric other than cosine.
	ErrSimilarityNotSupported = errors.New("similarity metric not supported")
)
