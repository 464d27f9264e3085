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


// Package ai defines the embedding service contract used by the vector
// retrieval path and the ingestion pipeline.
//
// Embedding computation itself is an external capability: this package
// only specifies the interface, its configuration, and provides a
// deterministic mock for tests. The openai subpackage implements the
// contract against OpenAI-compatible APIs.
package ai
