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


package core

import "fmt"

// Validate checks that a chunk carries everything the index build needs.
// A missing AgendaID is not a validation error: such chunks are legal
// input and are excluded from indexing by the callers that care.
func (c *Chunk) Validate() error {
	if c.ID.SourceDoc == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptySourceDoc)
	}
	if c.ID.Position < 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrNegativePosition)
	}
	if c.Text == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyText)
	}
	return nil
}

// Validate checks that an agenda record is storable.
func (r *AgendaRecord) Validate() error {
	if r.AgendaID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidAgendaRecord, ErrEmptyAgendaID)
	}
	if r.Title == "" {
		return fmt.Errorf("%w: agenda title cannot be empty", ErrInvalidAgendaRecord)
	}
	return nil
}
