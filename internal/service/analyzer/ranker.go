package analyzer

import (
	"sort"

	"trendlens/internal/domain/channel"
)

// Rank orders records by subscriber count, highest first, and assigns 1-based
// ranks. Records with equal counts keep their input order. The input slice is
// left untouched.
func Rank(records []channel.Record) []channel.Record {
	ranked := make([]channel.Record, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SubscriberCount > ranked[j].SubscriberCount
	})

	for i := range ranked {
		ranked[i].Rank = i + 1
	}
	return ranked
}
