package native

import (
	"sort"
	"strings"
	"unicode"

	"github.com/c360/uploadguard/types"
)

// frequencyTracker accumulates word counts across chunks, excluding
// stopwords. Tracking is capped: once maxTracked distinct words are held,
// unseen words are ignored rather than growing the table without bound.
type frequencyTracker struct {
	counts     map[string]int
	stopwords  map[string]struct{}
	maxTracked int
}

func newFrequencyTracker(stopwords []string, maxTracked int) *frequencyTracker {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &frequencyTracker{
		counts:     make(map[string]int),
		stopwords:  stops,
		maxTracked: maxTracked,
	}
}

// add tokenizes one chunk and folds its words into the running counts
func (f *frequencyTracker) add(text string) {
	for _, word := range tokenize(text) {
		if _, stop := f.stopwords[word]; stop {
			continue
		}
		if _, seen := f.counts[word]; !seen {
			if f.maxTracked > 0 && len(f.counts) >= f.maxTracked {
				continue
			}
		}
		f.counts[word]++
	}
}

// unique returns the number of distinct tracked words
func (f *frequencyTracker) unique() int {
	return len(f.counts)
}

// top returns the n most frequent words, ties broken alphabetically for
// stable output
func (f *frequencyTracker) top(n int) []types.WordCount {
	words := make([]types.WordCount, 0, len(f.counts))
	for word, count := range f.counts {
		words = append(words, types.WordCount{Word: word, Count: count})
	}

	sort.Slice(words, func(i, j int) bool {
		if words[i].Count != words[j].Count {
			return words[i].Count > words[j].Count
		}
		return words[i].Word < words[j].Word
	})

	if n > 0 && len(words) > n {
		words = words[:n]
	}
	return words
}

// tokenize lowercases, splits on whitespace, and strips each token down to
// its alphanumeric runes. Empty tokens are dropped.
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	out := make([]string, 0, len(fields))
	for _, field := range fields {
		var b strings.Builder
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		if b.Len() > 0 {
			out = append(out, b.String())
		}
	}
	return out
}
