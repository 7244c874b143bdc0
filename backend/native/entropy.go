package native

import (
	"math"
	"strings"
	"unicode"
)

// entropyTracker keeps incremental symbol frequencies so Shannon entropy
// can be computed at any point without retaining the content itself. Only
// alphanumeric runes count, lowercased, matching the normalization the
// thresholds were tuned against.
type entropyTracker struct {
	counts map[rune]int64
	total  int64
}

func newEntropyTracker() *entropyTracker {
	return &entropyTracker{counts: make(map[rune]int64)}
}

// add folds one chunk's symbols into the frequency table
func (e *entropyTracker) add(text string) {
	for _, r := range strings.ToLower(text) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			e.counts[r]++
			e.total++
		}
	}
}

// entropy returns the Shannon entropy -sum(p*log2(p)) over the symbols
// seen so far. Empty input yields 0.
func (e *entropyTracker) entropy() float64 {
	if e.total == 0 {
		return 0
	}

	total := float64(e.total)
	var entropy float64
	for _, count := range e.counts {
		p := float64(count) / total
		entropy -= p * math.Log2(p)
	}
	return entropy
}
