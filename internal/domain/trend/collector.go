package trend

import (
	"context"
)

// Collector defines the interface for a single external trend source
type Collector interface {
	// Source returns the source this collector reads
	Source() Source

	// FetchTrends returns the current trend terms in source order. Any failure
	// is returned wrapped around ErrCollectorUnavailable.
	FetchTrends(ctx context.Context, q Query) ([]string, error)
}
