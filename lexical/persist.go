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

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/tokenize"
)

const formatVersion = 1

// Artifact file names inside an index directory. The scoring structure
// and the chunk corpus are only valid together; the manifest binds them
// with a checksum over both.
const (
	IndexArtifactName  = "bm25_index.mus"
	CorpusArtifactName = "chunk_corpus.mus"
	ManifestName       = "index_manifest.mus"
)

// Save writes the index artifacts and their manifest to dir, creating
// the directory if needed.
func Save(idx *Index, dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}

	corpus := marshalCorpus(idx.docs)
	scoring := marshalScoring(idx)
	manifest := marshalManifest(idx.tokenizer.Version(),
		core.DigestFromBytes(scoring), core.DigestFromBytes(corpus))

	// All artifacts are staged as temp files before any existing file is
	// touched, then renamed into place with the manifest last. A crash
	// while staging leaves the previous index untouched; a crash between
	// renames leaves files whose checksums the old manifest no longer
	// binds, which Load rejects instead of serving torn data.
	files := []struct {
		name string
		data []byte
	}{
		{IndexArtifactName, scoring},
		{CorpusArtifactName, corpus},
		{ManifestName, manifest},
	}
	for _, f := range files {
		if err := os.WriteFile(filepath.Join(dir, f.name+".tmp"), f.data, 0o644); err != nil {
			return fmt.Errorf("failed to stage %s: %w", f.name, err)
		}
	}
	for _, f := range files {
		path := filepath.Join(dir, f.name)
		if err := os.Rename(path+".tmp", path); err != nil {
			return fmt.Errorf("failed to commit %s: %w", f.name, err)
		}
	}
	return nil
}

// Load reads the index artifacts from dir and verifies them against the
// manifest. The tokenizer must match the version the index was built
// with; ErrTokenizerMismatch otherwise. Artifacts whose checksum
// disagrees with the manifest fail with ErrChecksumMismatch.
func Load(dir string, tokenizer tokenize.Tokenizer) (*Index, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}

	manifestData, err := os.ReadFile(filepath.Join(dir, ManifestName))
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	tokVersion, scoringDigest, corpusDigest, err := unmarshalManifest(manifestData)
	if err != nil {
		return nil, err
	}
	if tokVersion != tokenizer.Version() {
		return nil, fmt.Errorf("%w: index built with %q, runtime uses %q",
			ErrTokenizerMismatch, tokVersion, tokenizer.Version())
	}

	scoring, err := os.ReadFile(filepath.Join(dir, IndexArtifactName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", IndexArtifactName, err)
	}
	corpus, err := os.ReadFile(filepath.Join(dir, CorpusArtifactName))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", CorpusArtifactName, err)
	}
	if core.DigestFromBytes(scoring) != scoringDigest {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, IndexArtifactName)
	}
	if core.DigestFromBytes(corpus) != corpusDigest {
		return nil, fmt.Errorf("%w: %s", ErrChecksumMismatch, CorpusArtifactName)
	}

	idx := &Index{tokenizer: tokenizer}
	if idx.docs, err = unmarshalCorpus(corpus); err != nil {
		return nil, err
	}
	if err = unmarshalScoring(scoring, idx); err != nil {
		return nil, err
	}
	for _, plist := range idx.postings {
		for _, p := range plist {
			if p.doc < 0 || p.doc >= len(idx.docs) {
				return nil, fmt.Errorf("%w: posting references document %d of %d",
					ErrBadArtifact, p.doc, len(idx.docs))
			}
		}
	}
	return idx, nil
}

func marshalCorpus(docs []docEntry) []byte {
	size := varint.Int.Size(len(docs))
	for _, d := range docs {
		size += ord.String.Size(d.id.SourceDoc) +
			varint.Int.Size(d.id.Position) +
			ord.String.Size(d.text) +
			ord.String.Size(d.agendaID) +
			varint.Int.Size(d.length)
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(len(docs), buf)
	for _, d := range docs {
		n += ord.String.Marshal(d.id.SourceDoc, buf[n:])
		n += varint.Int.Marshal(d.id.Position, buf[n:])
		n += ord.String.Marshal(d.text, buf[n:])
		n += ord.String.Marshal(d.agendaID, buf[n:])
		n += varint.Int.Marshal(d.length, buf[n:])
	}
	return buf
}

func unmarshalCorpus(data []byte) ([]docEntry, error) {
	count, n, err := varint.Int.Unmarshal(data)
	if err != nil || count < 0 {
		return nil, fmt.Errorf("%w: corpus document count", ErrBadArtifact)
	}

	docs := make([]docEntry, 0, count)
	for i := 0; i < count; i++ {
		var (
			d   docEntry
			cnt int
		)
		if d.id.SourceDoc, cnt, err = ord.String.Unmarshal(data[n:]); err != nil {
			return nil, fmt.Errorf("%w: corpus doc[%d] source: %w", ErrBadArtifact, i, err)
		}
		n += cnt
		if d.id.Position, cnt, err = varint.Int.Unmarshal(data[n:]); err != nil {
			return nil, fmt.Errorf("%w: corpus doc[%d] position: %w", ErrBadArtifact, i, err)
		}
		n += cnt
		if d.text, cnt, err = ord.String.Unmarshal(data[n:]); err != nil {
			return nil, fmt.Errorf("%w: corpus doc[%d] text: %w", ErrBadArtifact, i, err)
		}
		n += cnt
		if d.agendaID, cnt, err = ord.String.Unmarshal(data[n:]); err != nil {
			return nil, fmt.Errorf("%w: corpus doc[%d] agenda id: %w", ErrBadArtifact, i, err)
		}
		n += cnt
		if d.length, cnt, err = varint.Int.Unmarshal(data[n:]); err != nil {
			return nil, fmt.Errorf("%w: corpus doc[%d] length: %w", ErrBadArtifact, i, err)
		}
		n += cnt
		docs = append(docs, d)
	}
	return docs, nil
}

func marshalScoring(idx *Index) []byte {
	// Sorted terms keep the artifact byte-identical across rebuilds of
	// the same corpus.
	terms := make([]string, 0, len(idx.postings))
	for term := range idx.postings {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	size := varint.Int.Size(formatVersion) +
		varint.Float64.Size(idx.params.K1) +
		varint.Float64.Size(idx.params.B) +
		varint.Float64.Size(idx.avgLen) +
		varint.Int.Size(len(terms))
	for _, term := range terms {
		size += ord.String.Size(term) + varint.Int.Size(len(idx.postings[term]))
		for _, p := range idx.postings[term] {
			size += varint.Int.Size(p.doc) + varint.Int.Size(p.tf)
		}
	}

	buf := make([]byte, size)
	n := varint.Int.Marshal(formatVersion, buf)
	n += varint.Float64.Marshal(idx.params.K1, buf[n:])
	n += varint.Float64.Marshal(idx.params.B, buf[n:])
	n += varint.Float64.Marshal(idx.avgLen, buf[n:])
	n += varint.Int.Marshal(len(terms), buf[n:])
	for _, term := range terms {
		n += ord.String.Marshal(term, buf[n:])
		n += varint.Int.Marshal(len(idx.postings[term]), buf[n:])
		for _, p := range idx.postings[term] {
			n += varint.Int.Marshal(p.doc, buf[n:])
			n += varint.Int.Marshal(p.tf, buf[n:])
		}
	}
	return buf
}

func unmarshalScoring(data []byte, idx *Index) error {
	version, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return fmt.Errorf("%w: format version: %w", ErrBadArtifact, err)
	}
	if version != formatVersion {
		return fmt.Errorf("%w: version %d", ErrUnsupportedFormat, version)
	}

	var cnt int
	if idx.params.K1, cnt, err = varint.Float64.Unmarshal(data[n:]); err != nil {
		return fmt.Errorf("%w: k1: %w", ErrBadArtifact, err)
	}
	n += cnt
	if idx.params.B, cnt, err = varint.Float64.Unmarshal(data[n:]); err != nil {
		return fmt.Errorf("%w: b: %w", ErrBadArtifact, err)
	}
	n += cnt
	if idx.avgLen, cnt, err = varint.Float64.Unmarshal(data[n:]); err != nil {
		return fmt.Errorf("%w: average length: %w", ErrBadArtifact, err)
	}
	n += cnt

	termCount, cnt, err := varint.Int.Unmarshal(data[n:])
	if err != nil || termCount < 0 {
		return fmt.Errorf("%w: term count", ErrBadArtifact)
	}
	n += cnt

	idx.postings = make(map[string][]posting, termCount)
	for i := 0; i < termCount; i++ {
		term, cnt, err := ord.String.Unmarshal(data[n:])
		if err != nil {
			return fmt.Errorf("%w: term[%d]: %w", ErrBadArtifact, i, err)
		}
		n += cnt

		postingCount, cnt, err := varint.Int.Unmarshal(data[n:])
		if err != nil || postingCount < 0 {
			return fmt.Errorf("%w: term %q posting count", ErrBadArtifact, term)
		}
		n += cnt

		plist := make([]posting, 0, postingCount)
		for j := 0; j < postingCount; j++ {
			var p posting
			if p.doc, cnt, err = varint.Int.Unmarshal(data[n:]); err != nil {
				return fmt.Errorf("%w: term %q posting[%d] doc: %w", ErrBadArtifact, term, j, err)
			}
			n += cnt
			if p.tf, cnt, err = varint.Int.Unmarshal(data[n:]); err != nil {
				return fmt.Errorf("%w: term %q posting[%d] tf: %w", ErrBadArtifact, term, j, err)
			}
			n += cnt
			plist = append(plist, p)
		}
		idx.postings[term] = plist
	}
	return nil
}

func marshalManifest(tokVersion string, scoringDigest, corpusDigest core.Digest) []byte {
	size := varint.Int.Size(formatVersion) +
		ord.String.Size(tokVersion) +
		varint.Uint64.Size(uint64(scoringDigest)) +
		varint.Uint64.Size(uint64(corpusDigest))

	buf := make([]byte, size)
	n := varint.Int.Marshal(formatVersion, buf)
	n += ord.String.Marshal(tokVersion, buf[n:])
	n += varint.Uint64.Marshal(uint64(scoringDigest), buf[n:])
	n += varint.Uint64.Marshal(uint64(corpusDigest), buf[n:])
	return buf
}

func unmarshalManifest(data []byte) (tokVersion string, scoringDigest, corpusDigest core.Digest, err error) {
	version, n, err := varint.Int.Unmarshal(data)
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: manifest version: %w", ErrBadArtifact, err)
	}
	if version != formatVersion {
		return "", 0, 0, fmt.Errorf("%w: manifest version %d", ErrUnsupportedFormat, version)
	}

	var cnt int
	if tokVersion, cnt, err = ord.String.Unmarshal(data[n:]); err != nil {
		return "", 0, 0, fmt.Errorf("%w: manifest tokenizer version: %w", ErrBadArtifact, err)
	}
	n += cnt

	sd, cnt, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: manifest index digest: %w", ErrBadArtifact, err)
	}
	n += cnt

	cd, _, err := varint.Uint64.Unmarshal(data[n:])
	if err != nil {
		return "", 0, 0, fmt.Errorf("%w: manifest corpus digest: %w", ErrBadArtifact, err)
	}

	return tokVersion, core.Digest(sd), core.Digest(cd), nil
}
