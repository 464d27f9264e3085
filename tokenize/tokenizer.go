// Package tokenize provides the deterministic tokenizer shared by the
// lexical index build and query paths.
//
// The same tokenizer implementation and version must be used on both
// sides: a mismatch does not fail loudly, it silently degrades
// relevance. Index artifacts therefore record Version() and loaders
// refuse artifacts built with a different one.
package tokenize

import "strings"

// Tokenizer turns text into an ordered token sequence. Implementations
// must be deterministic and safe for concurrent use.
type Tokenizer interface {
	// Tokenize splits text into an ordered sequence of tokens.
	// Identical input must always yield identical output.
	Tokenize(text string) []string

	// Version identifies the tokenizer implementation and its rules.
	// Recorded in index artifacts to detect build/query skew.
	Version() string
}

// Version of the default tokenizer rules. Bump whenever the stop-word
// list or normalization changes, so stale index artifacts are rejected.
const defaultVersion = "simple/v1"

// Stop words filtered from both documents and queries.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

const punctuation = ".,!?;:'\"-()[]{}"

// Simple is the default tokenizer: whitespace split, lowercase,
// punctuation trim, stop-word removal.
type Simple struct{}

var _ Tokenizer = Simple{}

// NewSimple returns the default tokenizer.
func NewSimple() Simple {
	return Simple{}
}

// Tokenize implements Tokenizer.
func (Simple) Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, punctuation))
		if cleaned != "" && !stopWords[cleaned] {
			tokens = append(tokens, cleaned)
		}
	}

	return tokens
}

// Version implements Tokenizer.
func (Simple) Version() string {
	return defaultVersion
}
