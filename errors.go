package searchbridge

import "github.com/kailas-cloud/searchbridge/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMalformedFilter  = domain.ErrMalformedFilter
	ErrInvalidGeoFilter = domain.ErrInvalidGeoFilter
	ErrInvalidRequest   = domain.ErrInvalidRequest
	ErrBackend          = domain.ErrBackend
)
