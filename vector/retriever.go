// Package vector adapts the embedding service and the chunk store's
// nearest-neighbor scan into the ranked-retriever contract.
package vector

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/agendex/ai"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/storage"
)

// Retriever embeds a query and finds the nearest chunks by cosine
// distance. Distances map to [0,1] similarity scores through
// core.SimilarityFromDistance, the one formula used system-wide.
type Retriever struct {
	embedder ai.Embedder
	chunks   storage.ChunkRepository
	logger   *slog.Logger
}

// Option configures a Retriever.
type Option func(*Retriever)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(r *Retriever) {
		if logger == nil {
			logger = slog.Default()
		}
		r.logger = logger
	}
}

// NewRetriever creates a vector retriever.
func NewRetriever(embedder ai.Embedder, chunks storage.ChunkRepository, opts ...Option) *Retriever {
	r := &Retriever{
		embedder: embedder,
		chunks:   chunks,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Search returns up to n chunks nearest to the query, ordered by
// descending similarity.
func (r *Retriever) Search(ctx context.Context, query string, n int) ([]core.RankedHit, error) {
	if query == "" || n <= 0 {
		return nil, nil
	}

	vector, err := r.embedder.EmbedText(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}

	nearest, err := r.chunks.FindNearest(ctx, vector, n)
	if err != nil {
		return nil, fmt.Errorf("nearest-neighbor scan failed: %w", err)
	}

	hits := make([]core.RankedHit, 0, len(nearest))
	for _, nc := range nearest {
		hits = append(hits, core.RankedHit{
			ChunkID:  nc.Chunk.ID,
			Score:    core.SimilarityFromDistance(nc.Distance),
			Text:     nc.Chunk.Text,
			AgendaID: nc.Chunk.AgendaID,
		})
	}
	return hits, nil
}
