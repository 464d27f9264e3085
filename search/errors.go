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


package search

import "errors"

var (
	// ErrAgendaRepositoryRequired is returned when an agenda repository is not provided.
	ErrAgendaRepositoryRequired = errors.New("agenda repository required")

	// ErrVectorRetrieverRequired is returned when a vector retriever is not provided.
	ErrVectorRetrieverRequired = errors.New("vector retriever required")

	// ErrLexicalDisabled reports that no lexical index is loaded; the
	// request degrades to vector-only.
	ErrLexicalDisabled = errors.New("lexical index not loaded")

	// ErrRetrieverTimeout reports that a retriever missed its deadline.
	ErrRetrieverTimeout = errors.New("retriever deadline exceeded")
)
