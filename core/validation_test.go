package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkValidate(t *testing.T) {
	valid := Chunk{
		ID:       ChunkID{SourceDoc: "meeting_20250901", Position: 0},
		Text:     "The committee reviewed the housing budget.",
		Speaker:  "Chair Kim",
		AgendaID: "meeting_20250901_agenda_000",
	}

	t.Run("valid chunk", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("missing agenda id is allowed", func(t *testing.T) {
		c := valid
		c.AgendaID = ""
		assert.NoError(t, c.Validate())
	})

	t.Run("empty source doc", func(t *testing.T) {
		c := valid
		c.ID.SourceDoc = ""
		err := c.Validate()
		assert.ErrorIs(t, err, ErrInvalidChunk)
		assert.ErrorIs(t, err, ErrEmptySourceDoc)
	})

	t.Run("negative position", func(t *testing.T) {
		c := valid
		c.ID.Position = -1
		err := c.Validate()
		assert.ErrorIs(t, err, ErrNegativePosition)
	})

	t.Run("empty text", func(t *testing.T) {
		c := valid
		c.Text = ""
		err := c.Validate()
		assert.ErrorIs(t, err, ErrEmptyText)
	})
}

func TestAgendaRecordValidate(t *testing.T) {
	valid := AgendaRecord{
		AgendaID: "meeting_20250901_agenda_000",
		Title:    "Youth housing support ordinance",
	}

	t.Run("valid record", func(t *testing.T) {
		require.NoError(t, valid.Validate())
	})

	t.Run("empty agenda id", func(t *testing.T) {
		r := valid
		r.AgendaID = ""
		err := r.Validate()
		assert.ErrorIs(t, err, ErrInvalidAgendaRecord)
		assert.ErrorIs(t, err, ErrEmptyAgendaID)
	})

	t.Run("empty title", func(t *testing.T) {
		r := valid
		r.Title = ""
		assert.ErrorIs(t, r.Validate(), ErrInvalidAgendaRecord)
	})
}
