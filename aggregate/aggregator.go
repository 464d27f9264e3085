// Package aggregate collapses chunk-level hits into agenda-level
// results. Chunks only ever vote for their agenda; the agenda's score
// is the best chunk score, not a sum, so long agendas gain no advantage
// from having more chunks.
package aggregate

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/storage"
)

// Aggregator resolves grouped chunk hits into agenda records.
type Aggregator struct {
	agendas storage.AgendaRepository
	logger  *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Aggregator) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
	}
}

// NewAggregator creates an aggregator backed by the given agenda store.
func NewAggregator(agendas storage.AgendaRepository, opts ...Option) *Aggregator {
	a := &Aggregator{
		agendas: agendas,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// TopAgendas groups hits by agenda key, scores each agenda with its
// best chunk score, and resolves the top n agendas from the store.
// Hits without a grouping key are skipped and logged; they indicate
// malformed upstream metadata, not a fatal condition. An agenda id the
// store no longer knows drops that one result. Equal scores keep
// first-encounter order.
func (a *Aggregator) TopAgendas(ctx context.Context, hits []core.FusedHit, n int) ([]core.AgendaResult, error) {
	if n <= 0 || len(hits) == 0 {
		return nil, nil
	}

	type group struct {
		agendaID string
		score    float64
	}

	best := map[string]int{} // agenda id -> index into groups
	var groups []group
	for _, hit := range hits {
		if hit.AgendaID == "" {
			a.logger.Warn("hit has no agenda grouping key, skipped",
				"chunk", hit.ChunkID.String())
			continue
		}
		if i, ok := best[hit.AgendaID]; ok {
			if hit.Score > groups[i].score {
				groups[i].score = hit.Score
			}
			continue
		}
		best[hit.AgendaID] = len(groups)
		groups = append(groups, group{agendaID: hit.AgendaID, score: hit.Score})
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].score > groups[j].score
	})
	if len(groups) > n {
		groups = groups[:n]
	}

	ids := make([]string, len(groups))
	scores := make(map[string]float64, len(groups))
	for i, g := range groups {
		ids[i] = g.agendaID
		scores[g.agendaID] = g.score
	}

	records, err := a.agendas.GetAgendas(ctx, ids...)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve agenda records: %w", err)
	}
	if len(records) < len(ids) {
		a.logger.Warn("agenda store out of sync with index",
			"requested", len(ids), "resolved", len(records))
	}

	results := make([]core.AgendaResult, 0, len(records))
	for _, record := range records {
		results = append(results, core.AgendaResult{
			Record:     record,
			Similarity: core.RoundSimilarity(scores[record.AgendaID]),
		})
	}
	return results, nil
}

// FromRanked adapts a single retriever's raw hits for aggregation when
// fusion is bypassed.
func FromRanked(hits []core.RankedHit) []core.FusedHit {
	fused := make([]core.FusedHit, len(hits))
	for i, h := range hits {
		fused[i] = core.FusedHit{
			ChunkID:  h.ChunkID,
			Score:    h.Score,
			Text:     h.Text,
			AgendaID: h.AgendaID,
		}
	}
	return fused
}
