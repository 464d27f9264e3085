// Package fusion combines ranked lists from independent retrievers
// into a single chunk ranking using Reciprocal Rank Fusion.
package fusion

import (
	"sort"

	"github.com/poiesic/agendex/core"
)

// DefaultK is the standard RRF rank-smoothing constant.
const DefaultK = 60

// Fuse merges ranked lists into one list ordered by fused score. Each
// occurrence of a chunk contributes 1/(k + rank + 1) with rank being
// the 0-based position in its list. The hit payload comes from the
// first list, in the order given, that produced the chunk. Equal fused
// scores keep first-encounter order: earlier list first, then earlier
// rank. k < 1 falls back to DefaultK.
func Fuse(lists [][]core.RankedHit, k int) []core.FusedHit {
	if k < 1 {
		k = DefaultK
	}

	type entry struct {
		hit   core.FusedHit
		order int // first-encounter position, for tie-breaking
	}

	seen := map[core.ChunkID]*entry{}
	var entries []*entry
	for _, list := range lists {
		for rank, hit := range list {
			contribution := 1.0 / float64(k+rank+1)
			if e, ok := seen[hit.ChunkID]; ok {
				e.hit.Score += contribution
				continue
			}
			e := &entry{
				hit: core.FusedHit{
					ChunkID:  hit.ChunkID,
					Score:    contribution,
					Text:     hit.Text,
					AgendaID: hit.AgendaID,
				},
				order: len(entries),
			}
			seen[hit.ChunkID] = e
			entries = append(entries, e)
		}
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].hit.Score != entries[j].hit.Score {
			return entries[i].hit.Score > entries[j].hit.Score
		}
		return entries[i].order < entries[j].order
	})

	fused := make([]core.FusedHit, len(entries))
	for i, e := range entries {
		fused[i] = e.hit
	}
	return fused
}
