package search

import (
	"context"
	"encoding/json"

	"github.com/kailas-cloud/searchbridge/internal/domain/search/params"
)

// Backend executes a translated batch. Results are returned per search, in
// order, and are opaque to this layer.
type Backend interface {
	MultiSearch(
		ctx context.Context, body params.Envelope, common params.SearchParameters,
	) ([]json.RawMessage, error)
}
