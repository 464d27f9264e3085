// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/agendex/core"
)

// Serializers are written directly against the MUS primitive
// serializers. Field order is the wire format; never reorder fields
// without migrating stored data.

// MarshalChunk serializes a Chunk to bytes.
func MarshalChunk(chunk *core.Chunk) []byte {
	size := ord.String.Size(chunk.ID.SourceDoc) +
		varint.Int.Size(chunk.ID.Position) +
		ord.String.Size(chunk.Text) +
		ord.String.Size(chunk.Speaker) +
		ord.String.Size(chunk.AgendaID) +
		varint.Int.Size(len(chunk.Vector))
	for _, v := range chunk.Vector {
		size += varint.Float32.Size(v)
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(chunk.ID.SourceDoc, buf)
	n += varint.Int.Marshal(chunk.ID.Position, buf[n:])
	n += ord.String.Marshal(chunk.Text, buf[n:])
	n += ord.String.Marshal(chunk.Speaker, buf[n:])
	n += ord.String.Marshal(chunk.AgendaID, buf[n:])
	n += varint.Int.Marshal(len(chunk.Vector), buf[n:])
	for _, v := range chunk.Vector {
		n += varint.Float32.Marshal(v, buf[n:])
	}
	return buf
}

// UnmarshalChunk deserializes a Chunk from bytes.
func UnmarshalChunk(data []byte) (*core.Chunk, error) {
	var (
		chunk core.Chunk
		n     int
	)

	sourceDoc, cnt, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: chunk source doc: %w", ErrSerializationFailed, err)
	}
	n += cnt

	position, cnt, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk position: %w", ErrSerializationFailed, err)
	}
	n += cnt
	chunk.ID = core.ChunkID{SourceDoc: sourceDoc, Position: position}

	chunk.Text, cnt, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk text: %w", ErrSerializationFailed, err)
	}
	n += cnt

	chunk.Speaker, cnt, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk speaker: %w", ErrSerializationFailed, err)
	}
	n += cnt

	chunk.AgendaID, cnt, err = ord.String.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk agenda id: %w", ErrSerializationFailed, err)
	}
	n += cnt

	vectorLen, cnt, err := varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: chunk vector length: %w", ErrSerializationFailed, err)
	}
	n += cnt
	if vectorLen < 0 {
		return nil, fmt.Errorf("%w: negative vector length", ErrSerializationFailed)
	}
	if vectorLen > 0 {
		chunk.Vector = make([]float32, vectorLen)
		for i := 0; i < vectorLen; i++ {
			chunk.Vector[i], cnt, err = varint.Float32.Unmarshal(data[n:])
			if err != nil {
				return nil, fmt.Errorf("%w: chunk vector[%d]: %w", ErrSerializationFailed, i, err)
			}
			n += cnt
		}
	}

	return &chunk, nil
}

// MarshalAgendaRecord serializes an AgendaRecord to bytes.
func MarshalAgendaRecord(record *core.AgendaRecord) []byte {
	size := ord.String.Size(record.AgendaID) +
		ord.String.Size(record.Title) +
		ord.String.Size(record.MainSpeaker) +
		ord.String.Size(record.AllSpeakers) +
		varint.Int.Size(record.SpeakerCount) +
		ord.String.Size(record.MeetingDate) +
		ord.String.Size(record.MeetingTitle) +
		ord.String.Size(record.MeetingURL) +
		ord.String.Size(record.CombinedText) +
		ord.String.Size(record.Status) +
		varint.Int.Size(record.ChunkCount)

	buf := make([]byte, size)
	n := ord.String.Marshal(record.AgendaID, buf)
	n += ord.String.Marshal(record.Title, buf[n:])
	n += ord.String.Marshal(record.MainSpeaker, buf[n:])
	n += ord.String.Marshal(record.AllSpeakers, buf[n:])
	n += varint.Int.Marshal(record.SpeakerCount, buf[n:])
	n += ord.String.Marshal(record.MeetingDate, buf[n:])
	n += ord.String.Marshal(record.MeetingTitle, buf[n:])
	n += ord.String.Marshal(record.MeetingURL, buf[n:])
	n += ord.String.Marshal(record.CombinedText, buf[n:])
	n += ord.String.Marshal(record.Status, buf[n:])
	n += varint.Int.Marshal(record.ChunkCount, buf[n:])
	return buf
}

// UnmarshalAgendaRecord deserializes an AgendaRecord from bytes.
func UnmarshalAgendaRecord(data []byte) (*core.AgendaRecord, error) {
	var (
		record core.AgendaRecord
		n, cnt int
		err    error
	)

	fields := []struct {
		name string
		dst  *string
	}{
		{"agenda id", &record.AgendaID},
		{"title", &record.Title},
		{"main speaker", &record.MainSpeaker},
		{"all speakers", &record.AllSpeakers},
	}
	for _, f := range fields {
		*f.dst, cnt, err = ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: agenda %s: %w", ErrSerializationFailed, f.name, err)
		}
		n += cnt
	}

	record.SpeakerCount, cnt, err = varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: agenda speaker count: %w", ErrSerializationFailed, err)
	}
	n += cnt

	fields = []struct {
		name string
		dst  *string
	}{
		{"meeting date", &record.MeetingDate},
		{"meeting title", &record.MeetingTitle},
		{"meeting url", &record.MeetingURL},
		{"combined text", &record.CombinedText},
		{"status", &record.Status},
	}
	for _, f := range fields {
		*f.dst, cnt, err = ord.String.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: agenda %s: %w", ErrSerializationFailed, f.name, err)
		}
		n += cnt
	}

	record.ChunkCount, cnt, err = varint.Int.Unmarshal(data[n:])
	if err != nil {
		return nil, fmt.Errorf("%w: agenda chunk count: %w", ErrSerializationFailed, err)
	}
	n += cnt

	return &record, nil
}
