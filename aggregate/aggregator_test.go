package aggregate

import (
	"context"
	"testing"

	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fusedHit(pos int, agendaID string, score float64) core.FusedHit {
	return core.FusedHit{
		ChunkID:  core.ChunkID{SourceDoc: "session_001", Position: pos},
		Score:    score,
		AgendaID: agendaID,
	}
}

func testAggregator(t *testing.T, agendaIDs ...string) *Aggregator {
	t.Helper()
	_, agendas, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	records := make([]*core.AgendaRecord, len(agendaIDs))
	for i, id := range agendaIDs {
		records[i] = &core.AgendaRecord{AgendaID: id, Title: "agenda " + id}
	}
	require.NoError(t, agendas.AddAgendas(context.Background(), records...))

	return NewAggregator(agendas)
}

func TestTopAgendasMaxNotSum(t *testing.T) {
	agg := testAggregator(t, "A", "B")

	// A has two chunks; its score is the best one, not the sum.
	hits := []core.FusedHit{
		fusedHit(0, "A", 0.8),
		fusedHit(1, "A", 0.3),
		fusedHit(2, "B", 0.5),
	}

	results, err := agg.TopAgendas(context.Background(), hits, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Record.AgendaID)
	assert.Equal(t, 0.8, results[0].Similarity)
}

func TestTopAgendasTruncation(t *testing.T) {
	agg := testAggregator(t, "A", "B", "C")

	hits := []core.FusedHit{
		fusedHit(0, "A", 0.9),
		fusedHit(1, "B", 0.7),
		fusedHit(2, "C", 0.5),
	}

	results, err := agg.TopAgendas(context.Background(), hits, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Record.AgendaID)
	assert.Equal(t, "B", results[1].Record.AgendaID)

	// Asking for more than there are distinct agendas returns them all.
	results, err = agg.TopAgendas(context.Background(), hits, 10)
	require.NoError(t, err)
	assert.Len(t, results, 3)
}

func TestTopAgendasSkipsMissingGroupingKey(t *testing.T) {
	agg := testAggregator(t, "A")

	hits := []core.FusedHit{
		fusedHit(0, "", 0.99),
		fusedHit(1, "A", 0.4),
	}

	results, err := agg.TopAgendas(context.Background(), hits, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Record.AgendaID)
}

func TestTopAgendasDropsUnresolvedAgenda(t *testing.T) {
	// "ghost" ranks first but the store no longer knows it; only that
	// result is dropped.
	agg := testAggregator(t, "A")

	hits := []core.FusedHit{
		fusedHit(0, "ghost", 0.9),
		fusedHit(1, "A", 0.4),
	}

	results, err := agg.TopAgendas(context.Background(), hits, 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "A", results[0].Record.AgendaID)
}

func TestTopAgendasRoundsSimilarity(t *testing.T) {
	agg := testAggregator(t, "A")

	hits := []core.FusedHit{fusedHit(0, "A", 0.123456789)}

	results, err := agg.TopAgendas(context.Background(), hits, 1)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, 0.1235, results[0].Similarity)
}

func TestTopAgendasTieKeepsFirstEncounter(t *testing.T) {
	agg := testAggregator(t, "A", "B")

	hits := []core.FusedHit{
		fusedHit(0, "A", 0.5),
		fusedHit(1, "B", 0.5),
	}

	results, err := agg.TopAgendas(context.Background(), hits, 2)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "A", results[0].Record.AgendaID)
	assert.Equal(t, "B", results[1].Record.AgendaID)
}

func TestTopAgendasEmptyInput(t *testing.T) {
	agg := testAggregator(t)

	results, err := agg.TopAgendas(context.Background(), nil, 5)
	require.NoError(t, err)
	assert.Empty(t, results)

	results, err = agg.TopAgendas(context.Background(), []core.FusedHit{fusedHit(0, "A", 0.5)}, 0)
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestFromRanked(t *testing.T) {
	ranked := []core.RankedHit{
		{ChunkID: core.ChunkID{SourceDoc: "s", Position: 0}, Score: 0.7, Text: "t", AgendaID: "A"},
	}

	fused := FromRanked(ranked)
	require.Len(t, fused, 1)
	assert.Equal(t, ranked[0].ChunkID, fused[0].ChunkID)
	assert.Equal(t, ranked[0].Score, fused[0].Score)
	assert.Equal(t, ranked[0].Text, fused[0].Text)
	assert.Equal(t, ranked[0].AgendaID, fused[0].AgendaID)
}
