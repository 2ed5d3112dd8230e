package trend

import (
	"errors"
	"strings"
)

// ErrCollectorUnavailable is wrapped by every collector failure. Callers treat it
// as "no data" for that source.
var ErrCollectorUnavailable = errors.New("trend collector unavailable")

// Source identifies where a trend list originated
type Source string

const (
	SourceGoogle  Source = "google"
	SourceX       Source = "x"
	SourceYouTube Source = "youtube"
)

// Query defines what a collector is asked for. An empty Region means the
// collector's configured default.
type Query struct {
	Region  string
	Subject string
}

// Set groups the per-source trend lists of one analysis. Each list keeps the
// source order, duplicates included.
type Set struct {
	Google  []string
	X       []string
	YouTube []string
}

// Get returns the list for a source
func (s Set) Get(source Source) []string {
	switch source {
	case SourceGoogle:
		return s.Google
	case SourceX:
		return s.X
	case SourceYouTube:
		return s.YouTube
	}
	return nil
}

// Put stores the list for a source
func (s *Set) Put(source Source, terms []string) {
	switch source {
	case SourceGoogle:
		s.Google = terms
	case SourceX:
		s.X = terms
	case SourceYouTube:
		s.YouTube = terms
	}
}

// Pool merges the lists into a deduplicated term pool. Terms keep the order in
// which they were first seen (google, then x, then youtube); blank terms are dropped.
func (s Set) Pool() []string {
	return Merge(s.Google, s.X, s.YouTube)
}

// Merge returns the set union of the given lists in first-seen order.
func Merge(lists ...[]string) []string {
	seen := make(map[string]struct{})
	merged := make([]string, 0)

	for _, list := range lists {
		for _, term := range list {
			term = strings.TrimSpace(term)
			if term == "" {
				continue
			}
			if _, ok := seen[term]; ok {
				continue
			}
			seen[term] = struct{}{}
			merged = append(merged, term)
		}
	}

	return merged
}
