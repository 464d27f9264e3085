package vector

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/agendex/ai/mock"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisEmbedder maps known texts to fixed unit vectors so distances in
// tests are exact.
func axisEmbedder(vectors map[string][]float32) *mock.MockEmbedder {
	m := mock.NewMockEmbedder()
	m.EmbedTextFunc = func(_ context.Context, text string) ([]float32, error) {
		if v, ok := vectors[text]; ok {
			return v, nil
		}
		return []float32{0, 0, 1}, nil
	}
	m.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, t := range texts {
			out[i], _ = m.EmbedTextFunc(ctx, t)
		}
		return out, nil
	}
	return m
}

func TestSearchOrdersBySimilarity(t *testing.T) {
	chunks, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	stored := []*core.Chunk{
		{ID: core.ChunkID{SourceDoc: "s", Position: 0}, Text: "same direction", AgendaID: "A", Vector: []float32{1, 0, 0}},
		{ID: core.ChunkID{SourceDoc: "s", Position: 1}, Text: "orthogonal", AgendaID: "B", Vector: []float32{0, 1, 0}},
		{ID: core.ChunkID{SourceDoc: "s", Position: 2}, Text: "opposite", AgendaID: "C", Vector: []float32{-1, 0, 0}},
	}
	require.NoError(t, chunks.AddChunks(ctx, stored...))

	embedder := axisEmbedder(map[string][]float32{"query": {1, 0, 0}})
	retriever := NewRetriever(embedder, chunks)

	hits, err := retriever.Search(ctx, "query", 3)
	require.NoError(t, err)
	require.Len(t, hits, 3)

	// Identical direction: distance 0, similarity 1.
	assert.Equal(t, core.ChunkID{SourceDoc: "s", Position: 0}, hits[0].ChunkID)
	assert.InDelta(t, 1.0, hits[0].Score, 1e-6)
	assert.Equal(t, "same direction", hits[0].Text)
	assert.Equal(t, "A", hits[0].AgendaID)

	// Orthogonal: distance 1, similarity 0.5.
	assert.InDelta(t, 0.5, hits[1].Score, 1e-6)

	// Opposite: distance 2, similarity 0.
	assert.InDelta(t, 0.0, hits[2].Score, 1e-6)
}

func TestSearchLimit(t *testing.T) {
	chunks, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	ctx := context.Background()
	stored := []*core.Chunk{
		{ID: core.ChunkID{SourceDoc: "s", Position: 0}, Text: "a", AgendaID: "A", Vector: []float32{1, 0, 0}},
		{ID: core.ChunkID{SourceDoc: "s", Position: 1}, Text: "b", AgendaID: "A", Vector: []float32{0.9, 0.1, 0}},
	}
	require.NoError(t, chunks.AddChunks(ctx, stored...))

	retriever := NewRetriever(axisEmbedder(map[string][]float32{"q": {1, 0, 0}}), chunks)

	hits, err := retriever.Search(ctx, "q", 1)
	require.NoError(t, err)
	assert.Len(t, hits, 1)
}

func TestSearchEmbedderError(t *testing.T) {
	chunks, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedFailed := errors.New("embedding service unreachable")
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(context.Context, string) ([]float32, error) {
		return nil, embedFailed
	}

	retriever := NewRetriever(embedder, chunks)
	_, err = retriever.Search(context.Background(), "q", 3)
	assert.ErrorIs(t, err, embedFailed)
}

func TestSearchEmptyQuery(t *testing.T) {
	chunks, _, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	retriever := NewRetriever(mock.NewMockEmbedder(), chunks)

	hits, err := retriever.Search(context.Background(), "", 3)
	require.NoError(t, err)
	assert.Empty(t, hits)
}
