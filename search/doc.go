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


// Package search orchestrates one retrieval request: the lexical and
// vector retrievers run in parallel over their own deadlines, their
// ranked lists are fused with RRF, and the fused chunk hits collapse
// into agenda-level results.
//
// A failed or disabled retriever degrades the request instead of
// failing it: the response's Mode tells callers whether they got
// hybrid, single-retriever, or no evidence, with the reason attached.
package search
