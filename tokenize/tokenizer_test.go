package tokenize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimpleTokenize(t *testing.T) {
	tok := NewSimple()

	t.Run("lowercases and trims punctuation", func(t *testing.T) {
		tokens := tok.Tokenize("Housing Budget, reviewed!")
		assert.Equal(t, []string{"housing", "budget", "reviewed"}, tokens)
	})

	t.Run("filters stop words", func(t *testing.T) {
		tokens := tok.Tokenize("the state of the housing budget")
		assert.Equal(t, []string{"state", "housing", "budget"}, tokens)
	})

	t.Run("preserves order and duplicates", func(t *testing.T) {
		tokens := tok.Tokenize("budget review budget")
		assert.Equal(t, []string{"budget", "review", "budget"}, tokens)
	})

	t.Run("empty and whitespace input", func(t *testing.T) {
		assert.Empty(t, tok.Tokenize(""))
		assert.Empty(t, tok.Tokenize("   \t\n"))
	})

	t.Run("all stop words yields empty", func(t *testing.T) {
		assert.Empty(t, tok.Tokenize("the of and"))
	})

	t.Run("deterministic across calls", func(t *testing.T) {
		input := "Subway Line 9 safety inspection results, FY2025."
		first := tok.Tokenize(input)
		for i := 0; i < 10; i++ {
			assert.Equal(t, first, tok.Tokenize(input))
		}
	})
}

func TestSimpleVersion(t *testing.T) {
	assert.Equal(t, "simple/v1", NewSimple().Version())
}
