package native

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/uploadguard/types"
)

func TestEntropyTracker(t *testing.T) {
	t.Run("empty is zero", func(t *testing.T) {
		assert.Equal(t, 0.0, newEntropyTracker().entropy())
	})

	t.Run("single symbol is zero", func(t *testing.T) {
		e := newEntropyTracker()
		e.add("aaaaaaaa")
		assert.Equal(t, 0.0, e.entropy())
	})

	t.Run("two uniform symbols is one bit", func(t *testing.T) {
		e := newEntropyTracker()
		e.add("abababab")
		assert.InDelta(t, 1.0, e.entropy(), 1e-9)
	})

	t.Run("case folded", func(t *testing.T) {
		e := newEntropyTracker()
		e.add("aAaA")
		assert.Equal(t, 0.0, e.entropy(), "upper and lower case are the same symbol")
	})

	t.Run("non-alphanumeric ignored", func(t *testing.T) {
		e := newEntropyTracker()
		e.add("a!a@a#a$")
		assert.Equal(t, 0.0, e.entropy())
	})

	t.Run("incremental equals whole", func(t *testing.T) {
		whole := newEntropyTracker()
		whole.add("the quick brown fox jumps")

		chunked := newEntropyTracker()
		chunked.add("the quick ")
		chunked.add("brown fox jumps")

		assert.InDelta(t, whole.entropy(), chunked.entropy(), 1e-9)
	})

	t.Run("uniform sixteen symbols is four bits", func(t *testing.T) {
		e := newEntropyTracker()
		e.add("0123456789abcdef")
		assert.InDelta(t, 4.0, e.entropy(), 1e-9)
		assert.False(t, math.IsNaN(e.entropy()))
	})
}

func TestFrequencyTracker(t *testing.T) {
	t.Run("counts across chunks", func(t *testing.T) {
		f := newFrequencyTracker(nil, 0)
		f.add("apple banana apple")
		f.add("apple cherry")

		top := f.top(10)
		require.NotEmpty(t, top)
		assert.Equal(t, types.WordCount{Word: "apple", Count: 3}, top[0])
		assert.Equal(t, 3, f.unique())
	})

	t.Run("stopwords excluded", func(t *testing.T) {
		f := newFrequencyTracker([]string{"the", "and"}, 0)
		f.add("the cat and the dog")
		assert.Equal(t, 2, f.unique())
	})

	t.Run("punctuation stripped", func(t *testing.T) {
		f := newFrequencyTracker(nil, 0)
		f.add("Hello, hello! HELLO?")
		top := f.top(1)
		require.Len(t, top, 1)
		assert.Equal(t, types.WordCount{Word: "hello", Count: 3}, top[0])
	})

	t.Run("ties broken alphabetically", func(t *testing.T) {
		f := newFrequencyTracker(nil, 0)
		f.add("zebra apple")
		top := f.top(2)
		require.Len(t, top, 2)
		assert.Equal(t, "apple", top[0].Word)
		assert.Equal(t, "zebra", top[1].Word)
	})

	t.Run("tracking capped", func(t *testing.T) {
		f := newFrequencyTracker(nil, 2)
		f.add("one two three four")
		assert.Equal(t, 2, f.unique())

		// Already-tracked words still count up
		f.add("one one")
		top := f.top(1)
		assert.Equal(t, types.WordCount{Word: "one", Count: 3}, top[0])
	})

	t.Run("top limits output", func(t *testing.T) {
		f := newFrequencyTracker(nil, 0)
		f.add("a b c d e")
		assert.Len(t, f.top(3), 3)
	})
}

func TestDetectBannedPhrases(t *testing.T) {
	t.Run("case insensitive", func(t *testing.T) {
		matches := detectBannedPhrases("This is CONFIDENTIAL data", []string{"confidential"}, 0)
		require.Len(t, matches, 1)
		assert.Equal(t, "confidential", matches[0].Phrase)
		assert.Equal(t, 8, matches[0].Position)
		assert.Equal(t, "high", matches[0].Severity)
	})

	t.Run("multiple occurrences", func(t *testing.T) {
		matches := detectBannedPhrases("secret stuff and more secret stuff", []string{"secret"}, 0)
		assert.Len(t, matches, 2)
	})

	t.Run("base offset shifts positions", func(t *testing.T) {
		matches := detectBannedPhrases("leading confidential", []string{"confidential"}, 500)
		require.Len(t, matches, 1)
		assert.Equal(t, 508, matches[0].Position)
	})

	t.Run("context window bounded by chunk", func(t *testing.T) {
		matches := detectBannedPhrases("confidential", []string{"confidential"}, 0)
		require.Len(t, matches, 1)
		assert.Equal(t, "confidential", matches[0].Context)
	})

	t.Run("context includes surrounding text", func(t *testing.T) {
		text := "aaaaaaaaaaaaaaaaaaaaaaaaa secret bbbbbbbbbbbbbbbbbbbbbbbbb"
		matches := detectBannedPhrases(text, []string{"secret"}, 0)
		require.Len(t, matches, 1)
		assert.Len(t, matches[0].Context, len("secret")+2*phraseContextRadius)
	})

	t.Run("empty phrase ignored", func(t *testing.T) {
		assert.Empty(t, detectBannedPhrases("anything", []string{""}, 0))
	})

	t.Run("no phrases no matches", func(t *testing.T) {
		assert.Empty(t, detectBannedPhrases("clean text", nil, 0))
	})
}
