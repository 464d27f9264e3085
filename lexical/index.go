package lexical

import (
	"log/slog"
	"math"
	"sort"

	"github.com/poiesic/agendex/core"
	"github.com/poiesic/agendex/tokenize"
)

// Params are the BM25 scoring constants. K1 controls term-frequency
// saturation, B controls document-length normalization.
type Params struct {
	K1 float64
	B  float64
}

// DefaultParams returns the standard BM25 constants.
func DefaultParams() Params {
	return Params{K1: 1.5, B: 0.75}
}

// docEntry is one indexed chunk with the payload needed to build hits
// without a store round-trip.
type docEntry struct {
	id       core.ChunkID
	text     string
	agendaID string
	length   int // token count
}

// posting records one chunk containing a term.
type posting struct {
	doc int // index into docs
	tf  int
}

// Index is an immutable BM25 index over a chunk corpus. Safe for
// concurrent queries; never mutated after Build or Load returns.
type Index struct {
	params    Params
	tokenizer tokenize.Tokenizer
	docs      []docEntry
	postings  map[string][]posting
	avgLen    float64
}

// BuildOption configures an index build.
type BuildOption func(*buildOptions)

type buildOptions struct {
	params Params
	logger *slog.Logger
}

// WithParams overrides the default BM25 constants.
func WithParams(params Params) BuildOption {
	return func(o *buildOptions) {
		o.params = params
	}
}

// WithLogger sets a custom logger for the build.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) BuildOption {
	return func(o *buildOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// Build constructs an index from an ordered chunk corpus. Chunks
// without a grouping key carry no agenda evidence and are excluded;
// each exclusion is logged as a data-quality signal.
func Build(chunks []*core.Chunk, tokenizer tokenize.Tokenizer, opts ...BuildOption) (*Index, error) {
	if tokenizer == nil {
		return nil, ErrTokenizerRequired
	}

	options := &buildOptions{
		params: DefaultParams(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	idx := &Index{
		params:    options.params,
		tokenizer: tokenizer,
		postings:  map[string][]posting{},
	}

	skipped := 0
	var totalLen int
	for _, chunk := range chunks {
		if chunk.AgendaID == "" {
			skipped++
			options.logger.Warn("chunk has no agenda grouping key, excluded from index",
				"chunk", chunk.ID.String())
			continue
		}

		tokens := tokenizer.Tokenize(chunk.Text)
		doc := len(idx.docs)
		idx.docs = append(idx.docs, docEntry{
			id:       chunk.ID,
			text:     chunk.Text,
			agendaID: chunk.AgendaID,
			length:   len(tokens),
		})
		totalLen += len(tokens)

		counts := map[string]int{}
		for _, token := range tokens {
			counts[token]++
		}
		for term, tf := range counts {
			idx.postings[term] = append(idx.postings[term], posting{doc: doc, tf: tf})
		}
	}

	if len(idx.docs) > 0 {
		idx.avgLen = float64(totalLen) / float64(len(idx.docs))
	}

	// Postings come out of map iteration; fix the order so artifacts
	// and scoring are reproducible.
	for term := range idx.postings {
		sort.Slice(idx.postings[term], func(i, j int) bool {
			return idx.postings[term][i].doc < idx.postings[term][j].doc
		})
	}

	options.logger.Info("lexical index built",
		"chunks", len(idx.docs), "terms", len(idx.postings), "skipped", skipped)

	return idx, nil
}

// Len returns the number of indexed chunks.
func (idx *Index) Len() int {
	return len(idx.docs)
}

// TokenizerVersion returns the version of the tokenizer the index was
// built with.
func (idx *Index) TokenizerVersion() string {
	return idx.tokenizer.Version()
}

// Search scores every indexed chunk against the query and returns up to
// n chunks with positive BM25 scores, ordered descending. Ties keep
// corpus order. An empty tokenized query yields an empty result.
// n <= 0 returns all positive-scoring chunks.
func (idx *Index) Search(query string, n int) []core.RankedHit {
	tokens := idx.tokenizer.Tokenize(query)
	if len(tokens) == 0 || len(idx.docs) == 0 {
		return nil
	}

	scores := make([]float64, len(idx.docs))
	for _, term := range tokens {
		plist, ok := idx.postings[term]
		if !ok {
			continue
		}
		idf := math.Log(1 + (float64(len(idx.docs))-float64(len(plist))+0.5)/(float64(len(plist))+0.5))
		for _, p := range plist {
			tf := float64(p.tf)
			norm := 1 - idx.params.B + idx.params.B*float64(idx.docs[p.doc].length)/idx.avgLen
			scores[p.doc] += idf * tf * (idx.params.K1 + 1) / (tf + idx.params.K1*norm)
		}
	}

	hits := make([]core.RankedHit, 0, len(idx.docs))
	for doc, score := range scores {
		if score <= 0 {
			continue
		}
		hits = append(hits, core.RankedHit{
			ChunkID:  idx.docs[doc].id,
			Score:    score,
			Text:     idx.docs[doc].text,
			AgendaID: idx.docs[doc].agendaID,
		})
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Score > hits[j].Score
	})

	if n > 0 && len(hits) > n {
		hits = hits[:n]
	}
	return hits
}
