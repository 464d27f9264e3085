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


package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrAgendaRepositoryRequired is returned when an agenda repository is not provided.
	ErrAgendaRepositoryRequired = errors.New("agenda repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrEmptyMeetingID is returned when a meeting has no identifier.
	ErrEmptyMeetingID = errors.New("meeting id required")

	// ErrMalformedMeeting is returned when a meeting file cannot be parsed.
	ErrMalformedMeeting = errors.New("malformed meeting file")
)
