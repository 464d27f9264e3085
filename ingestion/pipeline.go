package ingestion

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/agendex/ai"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/storage"
)

// Status assigned to newly ingested agendas. The deliberation status is
// updated out of band, not by this pipeline.
const defaultAgendaStatus = "under review"

// Pipeline stores meeting transcripts as agenda records and chunks,
// then embeds the chunk texts concurrently.
type Pipeline struct {
	chunkRepository  storage.ChunkRepository
	agendaRepository storage.AgendaRepository
	embedder         ai.Embedder
	embeddingPool    *ants.Pool
	batchSize        int
	logger           *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.embeddingPool != nil {
			p.embeddingPool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.embeddingPool = pool
		return nil
	}
}

// WithEmbeddingBatchSize sets how many chunk texts go to the embedding
// service per request. Default is 32.
func WithEmbeddingBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size > 0 {
			p.batchSize = size
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunkRepository storage.ChunkRepository,
	agendaRepository storage.AgendaRepository,
	embedder ai.Embedder,
	opts ...Option,
) (*Pipeline, error) {
	if chunkRepository == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if agendaRepository == nil {
		return nil, ErrAgendaRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		chunkRepository:  chunkRepository,
		agendaRepository: agendaRepository,
		embedder:         embedder,
		embeddingPool:    pool,
		batchSize:        32,
		logger:           slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Stats summarizes one meeting's ingestion.
type Stats struct {
	Agendas        int
	Chunks         int
	SkippedChunks  int
	EmbeddedChunks int
}

// IngestMeeting stores one meeting's agendas and chunks, then embeds
// the chunk texts. Chunks without an agenda label carry no agenda
// evidence; they are logged and stored nowhere. Embedding failures are
// logged per batch and leave those chunks without vectors rather than
// failing the meeting.
func (p *Pipeline) IngestMeeting(ctx context.Context, meetingID string, meeting *Meeting) (*Stats, error) {
	if meetingID == "" {
		return nil, ErrEmptyMeetingID
	}
	if meeting == nil {
		return nil, fmt.Errorf("%w: nil meeting", ErrMalformedMeeting)
	}

	records, chunks, skipped := p.buildRecords(meetingID, meeting)
	stats := &Stats{Agendas: len(records), Chunks: len(chunks), SkippedChunks: skipped}
	if len(records) == 0 {
		p.logger.Warn("meeting produced no agendas", "meeting", meetingID)
		return stats, nil
	}

	if err := p.agendaRepository.AddAgendas(ctx, records...); err != nil {
		return nil, fmt.Errorf("failed to store agendas for %s: %w", meetingID, err)
	}
	if err := p.chunkRepository.AddChunks(ctx, chunks...); err != nil {
		return nil, fmt.Errorf("failed to store chunks for %s: %w", meetingID, err)
	}

	stats.EmbeddedChunks = p.embedChunks(ctx, chunks)

	p.logger.Info("meeting ingested", "meeting", meetingID,
		"agendas", stats.Agendas, "chunks", stats.Chunks,
		"embedded", stats.EmbeddedChunks, "skipped", stats.SkippedChunks)
	return stats, nil
}

// IngestFile parses a transcript file and ingests it.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (*Stats, error) {
	meetingID, meeting, err := LoadMeetingFile(path)
	if err != nil {
		return nil, err
	}
	return p.IngestMeeting(ctx, meetingID, meeting)
}

// buildRecords groups transcript chunks by agenda label in order of
// first appearance and derives one AgendaRecord per group. Chunk
// positions keep the transcript's original indexing so chunk ids stay
// stable regardless of skipped chunks.
func (p *Pipeline) buildRecords(meetingID string, meeting *Meeting) ([]*core.AgendaRecord, []*core.Chunk, int) {
	type group struct {
		texts    []string
		speakers []string
	}

	groups := map[string]*group{}
	var order []string
	agendaIDs := map[string]string{}
	var chunks []*core.Chunk
	skipped := 0

	for idx, tc := range meeting.Chunks {
		if tc.Agenda == "" {
			skipped++
			p.logger.Warn("chunk has no agenda label, skipped",
				"meeting", meetingID, "position", idx)
			continue
		}
		if tc.Text == "" {
			skipped++
			p.logger.Warn("chunk has no text, skipped",
				"meeting", meetingID, "position", idx)
			continue
		}

		g, ok := groups[tc.Agenda]
		if !ok {
			g = &group{}
			groups[tc.Agenda] = g
			agendaIDs[tc.Agenda] = fmt.Sprintf("%s_agenda_%03d", meetingID, len(order))
			order = append(order, tc.Agenda)
		}
		g.texts = append(g.texts, tc.Text)
		g.speakers = append(g.speakers, tc.Speaker)

		chunks = append(chunks, &core.Chunk{
			ID:       core.ChunkID{SourceDoc: meetingID, Position: idx},
			Text:     tc.Text,
			Speaker:  tc.Speaker,
			AgendaID: agendaIDs[tc.Agenda],
		})
	}

	records := make([]*core.AgendaRecord, 0, len(order))
	for _, agenda := range order {
		g := groups[agenda]
		unique, main := speakerStats(g.speakers)
		records = append(records, &core.AgendaRecord{
			AgendaID:     agendaIDs[agenda],
			Title:        agenda,
			MainSpeaker:  main,
			AllSpeakers:  strings.Join(unique, ", "),
			SpeakerCount: len(unique),
			MeetingDate:  meeting.Info.Date,
			MeetingTitle: meeting.Info.Title,
			MeetingURL:   meeting.Info.URL,
			CombinedText: strings.Join(g.texts, "\n\n"),
			Status:       defaultAgendaStatus,
			ChunkCount:   len(g.texts),
		})
	}
	return records, chunks, skipped
}

// speakerStats returns the roster deduplicated in order of first
// appearance, and the speaker with the most chunks. Frequency ties go
// to whoever spoke first.
func speakerStats(speakers []string) ([]string, string) {
	counts := map[string]int{}
	var unique []string
	for _, s := range speakers {
		if _, ok := counts[s]; !ok {
			unique = append(unique, s)
		}
		counts[s]++
	}

	var main string
	best := 0
	for _, s := range unique {
		if counts[s] > best {
			best = counts[s]
			main = s
		}
	}
	return unique, main
}

// embedChunks embeds chunk texts in batches on the worker pool and
// writes the vectors back. Returns how many chunks got vectors.
func (p *Pipeline) embedChunks(ctx context.Context, chunks []*core.Chunk) int {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		embedded int
	)

	for start := 0; start < len(chunks); start += p.batchSize {
		batch := chunks[start:min(start+p.batchSize, len(chunks))]

		wg.Add(1)
		err := p.embeddingPool.Submit(func() {
			defer wg.Done()
			n := p.embedBatch(ctx, batch)
			mu.Lock()
			embedded += n
			mu.Unlock()
		})
		if err != nil {
			wg.Done()
			p.logger.Error("failed to submit embedding batch", "err", err)
		}
	}

	wg.Wait()
	return embedded
}

func (p *Pipeline) embedBatch(ctx context.Context, batch []*core.Chunk) int {
	texts := make([]string, len(batch))
	for i, c := range batch {
		texts[i] = c.Text
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		p.logger.Error("error generating embeddings", "chunks", len(batch), "err", err)
		return 0
	}
	if len(vectors) != len(batch) {
		p.logger.Error("embedding result mismatch",
			"expected", len(batch), "received", len(vectors))
		return 0
	}

	embedded := 0
	for i, c := range batch {
		if err := p.chunkRepository.UpdateChunkVector(ctx, c.ID, vectors[i]); err != nil {
			p.logger.Error("error storing chunk vector", "chunk", c.ID.String(), "err", err)
			continue
		}
		embedded++
	}
	return embedded
}

// Release releases the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.embeddingPool != nil {
		p.embeddingPool.Release()
	}
}
