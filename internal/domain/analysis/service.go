package analysis

import (
	"context"
	"encoding/json"
)

// Analyzer runs one analysis request to completion
type Analyzer interface {
	// Mode returns the mode this analyzer serves
	Mode() Mode

	// Analyze returns ErrInvalidRequest when the required field is missing and
	// ErrOrchestration when an unguarded step fails. Any other partial failure
	// is folded into the result.
	Analyze(ctx context.Context, req Request) (*Result, error)
}

// Recorder receives every completed analysis (event bus, history store)
type Recorder interface {
	Record(ctx context.Context, r *Result) error
}

// HistoryReader reads previously recorded analyses
type HistoryReader interface {
	// Recent lists summaries, newest first
	Recent(ctx context.Context, limit int) ([]Summary, error)
	// Find returns the stored response envelope, or ErrNotFound
	Find(ctx context.Context, id string) (json.RawMessage, error)
}
