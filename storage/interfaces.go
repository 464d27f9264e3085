package storage

import (
	"context"

	"github.com/poiesic/agendex/core"
)

// NearestChunk is one hit from a nearest-neighbor scan. Distance is the
// cosine distance in [0,2]; smaller is closer.
type NearestChunk struct {
	Chunk    *core.Chunk
	Distance float64
}

// ChunkRepository provides operations for managing transcript chunks.
// Implementations must be thread-safe and support concurrent access.
type ChunkRepository interface {
	// AddChunks adds one or more chunks to storage. Chunks are keyed by
	// their ChunkID; adding an existing ID overwrites the stored chunk.
	AddChunks(ctx context.Context, chunks ...*core.Chunk) error

	// GetChunk retrieves a single chunk by ID.
	// Returns ErrNotFound if the chunk doesn't exist.
	GetChunk(ctx context.Context, id core.ChunkID) (*core.Chunk, error)

	// UpdateChunkVector replaces the embedding vector of a stored chunk.
	// Returns ErrNotFound if the chunk doesn't exist.
	UpdateChunkVector(ctx context.Context, id core.ChunkID, vector []float32) error

	// ForEachChunk calls fn for every stored chunk, in key order.
	// Iteration stops at the first error from fn.
	ForEachChunk(ctx context.Context, fn func(*core.Chunk) error) error

	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// FindNearest returns up to limit chunks ordered by ascending cosine
	// distance to the given vector. Chunks without an embedding are
	// skipped.
	FindNearest(ctx context.Context, vector []float32, limit int) ([]NearestChunk, error)

	// Close closes the repository and releases resources.
	Close() error
}

// AgendaRepository provides operations for managing agenda records.
// Implementations must be thread-safe and support concurrent access.
type AgendaRepository interface {
	// AddAgendas adds one or more agenda records to storage, keyed by
	// AgendaID. Adding an existing ID overwrites the stored record.
	AddAgendas(ctx context.Context, records ...*core.AgendaRecord) error

	// GetAgenda retrieves a single agenda record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetAgenda(ctx context.Context, agendaID string) (*core.AgendaRecord, error)

	// GetAgendas retrieves multiple agenda records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetAgendas(ctx context.Context, agendaIDs ...string) ([]*core.AgendaRecord, error)

	// CountAgendas returns the number of stored agenda records.
	CountAgendas(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}
