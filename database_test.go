package agendex

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/poiesic/agendex/ai/mock"
	"github.com/poiesic/agendex/ingestion"
	"github.com/poiesic/agendex/search"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDatabase(t *testing.T, opts ...DatabaseOption) *Database {
	t.Helper()
	opts = append([]DatabaseOption{WithInMemory(), WithEmbedder(mock.NewMockEmbedder())}, opts...)
	db, err := NewDatabase("", opts...)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestNewDatabase(t *testing.T) {
	t.Run("create new database", func(t *testing.T) {
		db := testDatabase(t)

		// Verify components are initialized
		assert.NotNil(t, db.ChunkRepository())
		assert.NotNil(t, db.AgendaRepository())
		assert.NotNil(t, db.LexicalIndex())
		assert.False(t, db.LexicalIndex().Enabled())
	})

	t.Run("missing index dir degrades to vector-only", func(t *testing.T) {
		db := testDatabase(t, WithIndexDir(filepath.Join(t.TempDir(), "no_such_index")))
		assert.False(t, db.LexicalIndex().Enabled())
	})
}

func TestDatabase_FactoryMethods(t *testing.T) {
	db := testDatabase(t)

	t.Run("can create ingestion pipeline", func(t *testing.T) {
		pipeline, err := db.NewIngestionPipeline()
		require.NoError(t, err)
		require.NotNil(t, pipeline)
		pipeline.Release()
	})

	t.Run("can create searcher", func(t *testing.T) {
		searcher, err := db.NewSearcher()
		require.NoError(t, err)
		require.NotNil(t, searcher)
	})
}

func TestDatabase_IngestBuildSearch(t *testing.T) {
	indexDir := filepath.Join(t.TempDir(), "index")
	db := testDatabase(t, WithIndexDir(indexDir))
	ctx := context.Background()

	pipeline, err := db.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	meeting := &ingestion.Meeting{
		Info: ingestion.MeetingInfo{Title: "Session 12", Date: "2025-06-01"},
		Chunks: []ingestion.TranscriptChunk{
			{Text: "Housing budget allocation review.", Speaker: "Chair Kim", Agenda: "Housing budget"},
			{Text: "Transit expansion feasibility study.", Speaker: "Member Lee", Agenda: "Transit expansion"},
		},
	}
	stats, err := pipeline.IngestMeeting(ctx, "session_012", meeting)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.Agendas)

	require.NoError(t, db.BuildLexicalIndex(ctx))
	assert.True(t, db.LexicalIndex().Enabled())

	searcher, err := db.NewSearcher()
	require.NoError(t, err)

	resp, err := searcher.Search(ctx, "housing budget", 2)
	require.NoError(t, err)
	assert.Equal(t, search.ModeHybrid, resp.Mode)
	require.NotEmpty(t, resp.Results)
	assert.Equal(t, "session_012_agenda_000", resp.Results[0].Record.AgendaID)

	// A fresh handle over the same index dir loads the persisted
	// artifacts.
	reopened := testDatabase(t, WithIndexDir(indexDir))
	assert.True(t, reopened.LexicalIndex().Enabled())
}

func TestDatabase_Close(t *testing.T) {
	db, err := NewDatabase("", WithInMemory(), WithEmbedder(mock.NewMockEmbedder()))
	require.NoError(t, err)
	require.NotNil(t, db)

	assert.NoError(t, db.Close())
}
