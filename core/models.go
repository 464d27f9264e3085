package core

import (
	"encoding/binary"
	"fmt"

	"github.com/go-crypt/x/blake2b"
)

// Digest is a content-based checksum used to co-version index artifacts.
type Digest uint64

// DigestFromBytes computes a deterministic digest using BLAKE2b hashing.
// Identical input always produces an identical digest.
func DigestFromBytes(data []byte) Digest {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(data)
	sum := h.Sum(nil)
	return Digest(binary.LittleEndian.Uint64(sum))
}

// ChunkID identifies a transcript chunk by its source document and
// position within that document. It is comparable and usable as a map key.
type ChunkID struct {
	SourceDoc string
	Position  int
}

// String returns a stable textual form, e.g. "session_332:17".
func (id ChunkID) String() string {
	return fmt.Sprintf("%s:%d", id.SourceDoc, id.Position)
}

// Chunk is the smallest indexed unit of transcript text. Chunks are
// immutable once indexed: identity, text and grouping key never change.
type Chunk struct {
	ID      ChunkID
	Text    string
	Speaker string
	// AgendaID links the chunk to its parent agenda. Keys are compared
	// byte-exact: differently-cased keys denote distinct agendas.
	AgendaID string
	// Vector is the embedding for semantic search. Owned by the vector
	// path; empty until the ingestion pipeline populates it.
	Vector []float32
}

// RankedHit is one retriever's output entry for one query. Rank is the
// 0-based position in the retriever's result slice; Score is the
// retriever's native score (BM25 relevance or cosine similarity).
type RankedHit struct {
	ChunkID  ChunkID
	Score    float64
	Text     string
	AgendaID string
}

// FusedHit is a chunk hit after rank fusion. The payload (Text, AgendaID)
// is taken from the first retriever, in declared order, that produced
// the chunk.
type FusedHit struct {
	ChunkID  ChunkID
	Score    float64
	Text     string
	AgendaID string
}

// AgendaRecord is the agenda-level record resolved from the persistent
// store. The retrieval core only references it; the ingestion pipeline
// owns its construction.
type AgendaRecord struct {
	AgendaID     string
	Title        string
	MainSpeaker  string
	AllSpeakers  string
	SpeakerCount int
	MeetingDate  string
	MeetingTitle string
	MeetingURL   string
	CombinedText string
	Status       string
	ChunkCount   int
}

// AgendaResult is one agenda-level search result presented to callers.
// Similarity is in [0,1], rounded to 4 decimal places.
type AgendaResult struct {
	Record     *AgendaRecord
	Similarity float64
}
