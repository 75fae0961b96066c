package health

import "context"

// Checker probes one dependency.
type Checker interface {
	Health(ctx context.Context) error
}
