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

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrEmptyText indicates the Text field is empty.
	ErrEmptyText = errors.New("text cannot be empty")

	// ErrEmptySourceDoc indicates the chunk has no source document id.
	ErrEmptySourceDoc = errors.New("source document id cannot be empty")

	// ErrNegativePosition indicates a negative chunk position.
	ErrNegativePosition = errors.New("chunk position cannot be negative")

	// ErrInvalidAgendaRecord indicates an AgendaRecord failed validation.
	ErrInvalidAgendaRecord = errors.New("invalid agenda record")

	// ErrEmptyAgendaID indicates the AgendaID field is empty.
	ErrEmptyAgendaID = errors.New("agenda id cannot be empty")
)
