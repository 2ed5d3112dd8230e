package channel

import (
	"context"
)

// Resolver performs a detail lookup for one channel
type Resolver interface {
	// ResolveChannel returns the channel record, or an error wrapping one of
	// ErrNotFound, ErrPrivateChannel, ErrCredentialsMissing or ErrTransport.
	ResolveChannel(ctx context.Context, identifier string) (*Record, error)
}

// Index discovers candidate channels for a keyword
type Index interface {
	// SearchChannels returns at most limit candidates in relevance order
	SearchChannels(ctx context.Context, keyword string, limit int) ([]Candidate, error)
}
