package weavedoc

import "github.com/kailas-cloud/weavedoc/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrNotFound               = domain.ErrNotFound
	ErrDocumentNotFound       = domain.ErrDocumentNotFound
	ErrDuplicateDocument      = domain.ErrDuplicateDocument
	ErrInvalidPolicy          = domain.ErrInvalidPolicy
	ErrInvalidFilter          = domain.ErrInvalidFilter
	ErrUnknownField           = domain.ErrUnknownField
	ErrInvalidSchema          = domain.ErrInvalidSchema
	ErrCorruptContent         = domain.ErrCorruptContent
	ErrVectorDimMismatch      = domain.ErrVectorDimMismatch
	ErrUnsupportedOperation   = domain.ErrUnsupportedOperation
	ErrHeadersNotSupported    = domain.ErrHeadersNotSupported
	ErrSimilarityNotSupported = domain.ErrSimilarityNotSupported
)
