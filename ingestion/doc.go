// Package ingestion turns meeting transcript files into stored agendas
// and chunks. Chunks are grouped by their agenda label in order of
// first appearance; each group becomes one agenda record with derived
// metadata (main speaker, speaker roster, combined text). Chunk
// embeddings are computed concurrently on a worker pool after the
// records are stored, so a failed embedding batch leaves searchable
// lexical data behind rather than failing the whole meeting.
package ingestion
