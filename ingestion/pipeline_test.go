package ingestion

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/agendex/ai/mock"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/storage"
	"github.com/poiesic/agendex/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testMeeting() *Meeting {
	return &Meeting{
		Info: MeetingInfo{
			Title: "Regular Session 332",
			Date:  "2025-03-14",
			URL:   "https://council.example/332",
		},
		Chunks: []TranscriptChunk{
			{Text: "Opening the housing budget discussion.", Speaker: "Chair Kim", Agenda: "Housing budget"},
			{Text: "I move to amend the allocation.", Speaker: "Member Lee", Agenda: "Housing budget"},
			{Text: "The chair notes the amendment.", Speaker: "Chair Kim", Agenda: "Housing budget"},
			{Text: "Next, park maintenance contracts.", Speaker: "Chair Kim", Agenda: "Park maintenance"},
			{Text: "Unlabeled procedural remark.", Speaker: "Clerk", Agenda: ""},
		},
	}
}

func setupPipeline(t *testing.T, opts ...Option) (*Pipeline, storage.ChunkRepository, storage.AgendaRepository) {
	t.Helper()
	chunks, agendas, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() { backend.Close() })

	p, err := NewPipeline(chunks, agendas, mock.NewMockEmbedder(), opts...)
	require.NoError(t, err)
	t.Cleanup(p.Release)
	return p, chunks, agendas
}

func TestNewPipelineValidation(t *testing.T) {
	chunks, agendas, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	_, err = NewPipeline(nil, agendas, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrChunkRepositoryRequired)

	_, err = NewPipeline(chunks, nil, mock.NewMockEmbedder())
	assert.ErrorIs(t, err, ErrAgendaRepositoryRequired)

	_, err = NewPipeline(chunks, agendas, nil)
	assert.ErrorIs(t, err, ErrEmbedderRequired)
}

func TestIngestMeetingGroupsAgendas(t *testing.T) {
	p, _, agendas := setupPipeline(t)
	ctx := context.Background()

	stats, err := p.IngestMeeting(ctx, "session_332", testMeeting())
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Agendas)
	assert.Equal(t, 4, stats.Chunks)
	assert.Equal(t, 1, stats.SkippedChunks)
	assert.Equal(t, 4, stats.EmbeddedChunks)

	// Agenda ids follow first appearance, zero-based.
	housing, err := agendas.GetAgenda(ctx, "session_332_agenda_000")
	require.NoError(t, err)
	require.NotNil(t, housing)
	assert.Equal(t, "Housing budget", housing.Title)
	assert.Equal(t, "Chair Kim", housing.MainSpeaker)
	assert.Equal(t, "Chair Kim, Member Lee", housing.AllSpeakers)
	assert.Equal(t, 2, housing.SpeakerCount)
	assert.Equal(t, 3, housing.ChunkCount)
	assert.Equal(t, "Regular Session 332", housing.MeetingTitle)
	assert.Equal(t, "2025-03-14", housing.MeetingDate)
	assert.Equal(t, "under review", housing.Status)
	assert.Contains(t, housing.CombinedText, "Opening the housing budget discussion.")
	assert.Contains(t, housing.CombinedText, "\n\n")

	park, err := agendas.GetAgenda(ctx, "session_332_agenda_001")
	require.NoError(t, err)
	require.NotNil(t, park)
	assert.Equal(t, "Park maintenance", park.Title)
	assert.Equal(t, 1, park.ChunkCount)
}

func TestIngestMeetingStoresChunksWithVectors(t *testing.T) {
	p, chunks, _ := setupPipeline(t)
	ctx := context.Background()

	_, err := p.IngestMeeting(ctx, "session_332", testMeeting())
	require.NoError(t, err)

	// Positions keep the transcript's original indexing.
	chunk, err := chunks.GetChunk(ctx, core.ChunkID{SourceDoc: "session_332", Position: 3})
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.Equal(t, "session_332_agenda_001", chunk.AgendaID)
	assert.NotEmpty(t, chunk.Vector)

	// The unlabeled chunk at position 4 was stored nowhere.
	missing, err := chunks.GetChunk(ctx, core.ChunkID{SourceDoc: "session_332", Position: 4})
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Nil(t, missing)

	count, err := chunks.CountChunks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, count)
}

func TestIngestMeetingEmbeddingFailureDegrades(t *testing.T) {
	chunks, agendas, backend, err := badger.NewMemoryRepositories()
	require.NoError(t, err)
	defer backend.Close()

	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextsFunc = func(context.Context, []string) ([][]float32, error) {
		return nil, assert.AnError
	}

	p, err := NewPipeline(chunks, agendas, embedder)
	require.NoError(t, err)
	defer p.Release()

	ctx := context.Background()
	stats, err := p.IngestMeeting(ctx, "session_332", testMeeting())
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Chunks)
	assert.Equal(t, 0, stats.EmbeddedChunks)

	// Chunks persist without vectors; the lexical path still works.
	chunk, err := chunks.GetChunk(ctx, core.ChunkID{SourceDoc: "session_332", Position: 0})
	require.NoError(t, err)
	require.NotNil(t, chunk)
	assert.Empty(t, chunk.Vector)
}

func TestIngestMeetingValidation(t *testing.T) {
	p, _, _ := setupPipeline(t)
	ctx := context.Background()

	_, err := p.IngestMeeting(ctx, "", testMeeting())
	assert.ErrorIs(t, err, ErrEmptyMeetingID)

	_, err = p.IngestMeeting(ctx, "session_332", nil)
	assert.ErrorIs(t, err, ErrMalformedMeeting)

	stats, err := p.IngestMeeting(ctx, "session_332", &Meeting{})
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Agendas)
}

func TestIngestFile(t *testing.T) {
	p, _, agendas := setupPipeline(t)

	data, err := json.Marshal(testMeeting())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "session_400.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	stats, err := p.IngestFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Agendas)

	record, err := agendas.GetAgenda(context.Background(), "session_400_agenda_000")
	require.NoError(t, err)
	require.NotNil(t, record)
}

func TestIngestFileMalformed(t *testing.T) {
	p, _, _ := setupPipeline(t)

	path := filepath.Join(t.TempDir(), "broken.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := p.IngestFile(context.Background(), path)
	assert.ErrorIs(t, err, ErrMalformedMeeting)
}

func TestLoadMeetingFileDerivesID(t *testing.T) {
	data, err := json.Marshal(testMeeting())
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "session_401.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))

	meetingID, meeting, err := LoadMeetingFile(path)
	require.NoError(t, err)
	assert.Equal(t, "session_401", meetingID)
	assert.Len(t, meeting.Chunks, 5)
}

func TestSpeakerStats(t *testing.T) {
	unique, main := speakerStats([]string{"Kim", "Lee", "Kim", "Park", "Lee", "Kim"})
	assert.Equal(t, []string{"Kim", "Lee", "Park"}, unique)
	assert.Equal(t, "Kim", main)

	// Frequency tie goes to the first speaker.
	_, main = speakerStats([]string{"Lee", "Kim"})
	assert.Equal(t, "Lee", main)

	unique, main = speakerStats(nil)
	assert.Empty(t, unique)
	assert.Equal(t, "", main)
}
