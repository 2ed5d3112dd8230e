package telegram

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"trendlens/internal/domain/channel"
	"trendlens/internal/metrics"
)

// SearcherConfig configures search mode
type SearcherConfig struct {
	Limit   int
	PaceMin time.Duration
	PaceMax time.Duration
}

// Searcher implements search mode: discover candidates for a keyword, then
// resolve them one at a time. Lookups are never issued concurrently; the
// pacer spaces them to stay under upstream rate limits.
type Searcher struct {
	index    channel.Index
	resolver channel.Resolver
	config   SearcherConfig
	log      zerolog.Logger
	metrics  *metrics.Metrics
	newPacer func() *Pacer
}

// NewSearcher creates a search-mode resolver
func NewSearcher(index channel.Index, resolver channel.Resolver, config SearcherConfig, log zerolog.Logger, m *metrics.Metrics) *Searcher {
	if config.Limit <= 0 {
		config.Limit = 20
	}
	s := &Searcher{
		index:    index,
		resolver: resolver,
		config:   config,
		log:      log.With().Str("component", "channel_search").Logger(),
		metrics:  m,
	}
	s.newPacer = func() *Pacer { return NewPacer(s.config.PaceMin, s.config.PaceMax) }
	return s
}

// Search returns the records of every candidate that resolved successfully, in
// candidate order. Only a failure of the index itself (or cancellation) is an
// error; individual lookup failures are dropped.
func (s *Searcher) Search(ctx context.Context, keyword string) ([]channel.Record, error) {
	candidates, err := s.index.SearchChannels(ctx, keyword, s.config.Limit)
	if err != nil {
		return nil, fmt.Errorf("search channels for %q: %w", keyword, err)
	}

	pacer := s.newPacer()
	seen := make(map[string]struct{})
	records := make([]channel.Record, 0, len(candidates))

	for _, c := range candidates {
		if !c.HasPublicIdentifier() {
			s.log.Debug().Str("link", c.Link).Msg("skipping candidate without public username")
			s.metrics.ChannelLookup("skipped")
			continue
		}
		if _, dup := seen[c.Identifier]; dup {
			continue
		}
		seen[c.Identifier] = struct{}{}

		if err := pacer.Wait(ctx); err != nil {
			return nil, fmt.Errorf("search channels for %q: %w", keyword, err)
		}

		record, err := s.resolver.ResolveChannel(ctx, c.Identifier)
		s.metrics.ChannelLookup(Outcome(err))
		if errors.Is(err, channel.ErrCredentialsMissing) {
			// No later lookup can succeed either.
			s.log.Warn().Err(err).Str("channel", c.Identifier).Msg("telegram credentials missing, stopping channel lookups")
			break
		}
		if err != nil {
			s.log.Info().Err(err).Str("channel", c.Identifier).Msg("dropping channel that failed to resolve")
			continue
		}
		records = append(records, *record)
	}

	return records, nil
}

// Outcome names a lookup result for metrics
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, channel.ErrNotFound):
		return "not_found"
	case errors.Is(err, channel.ErrPrivateChannel):
		return "private"
	case errors.Is(err, channel.ErrCredentialsMissing):
		return "credentials_missing"
	default:
		return "transport_error"
	}
}
