package badger

import (
	"fmt"

	"github.com/poiesic/agendex/core"
)

// Key prefixes for different data types
const (
	chunkPrefix  = "chnk"
	agendaPrefix = "agnd"
)

// makeChunkKey generates a key for a chunk by its composite ID.
// Format: prefix:sourceDoc:position
func makeChunkKey(id core.ChunkID) []byte {
	return []byte(fmt.Sprintf("%s:%s:%d", chunkPrefix, id.SourceDoc, id.Position))
}

// makeAgendaKey generates a key for an agenda record by ID.
func makeAgendaKey(agendaID string) []byte {
	return []byte(fmt.Sprintf("%s:%s", agendaPrefix, agendaID))
}
