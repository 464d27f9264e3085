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


// Package lexical implements the BM25 chunk index.
//
// An Index is built once, offline, from the full chunk corpus and is
// read-only thereafter. Queries score every indexed chunk with BM25
// using the same tokenizer the build used; chunks with non-positive
// scores carry no lexical evidence and are never returned.
//
// Indexes persist as two co-versioned artifacts (scoring structure and
// chunk corpus) plus a manifest carrying the format version, the
// tokenizer version, and a checksum over both payloads. Loading rejects
// artifacts whose tokenizer or checksum doesn't match, since skew
// silently degrades relevance instead of failing.
//
// The Holder type publishes the active index to concurrent readers and
// swaps rebuilt indexes atomically; a half-built index is never visible.
package lexical
