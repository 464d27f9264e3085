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


package lexical

import "errors"

var (
	// ErrTokenizerRequired is returned when a tokenizer is not provided.
	ErrTokenizerRequired = errors.New("tokenizer required")

	// ErrTokenizerMismatch indicates artifacts built with a different
	// tokenizer version than the one loading them.
	ErrTokenizerMismatch = errors.New("tokenizer version mismatch")

	// ErrChecksumMismatch indicates the index and corpus artifacts are
	// out of sync with the manifest.
	ErrChecksumMismatch = errors.New("artifact checksum mismatch")

	// ErrBadArtifact indicates a malformed or truncated artifact file.
	ErrBadArtifact = errors.New("malformed index artifact")

	// ErrUnsupportedFormat indicates an artifact format version this
	// build cannot read.
	ErrUnsupportedFormat = errors.New("unsupported artifact format version")
)
