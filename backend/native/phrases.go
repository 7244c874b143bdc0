package native

import (
	"strings"

	"github.com/c360/uploadguard/types"
)

// phraseContextRadius is how many bytes of surrounding text each match
// records on either side
const phraseContextRadius = 20

// detectBannedPhrases scans one chunk for the configured phrases. Offsets
// are chunk-local; baseOffset shifts them to absolute file positions so
// matches stay position-accurate across chunks.
func detectBannedPhrases(chunk string, phrases []string, baseOffset int) []types.BannedPhraseMatch {
	var matches []types.BannedPhraseMatch
	chunkLower := strings.ToLower(chunk)

	for _, phrase := range phrases {
		needle := strings.ToLower(phrase)
		if needle == "" {
			continue
		}

		start := 0
		for {
			pos := strings.Index(chunkLower[start:], needle)
			if pos < 0 {
				break
			}
			actual := start + pos

			ctxStart := actual - phraseContextRadius
			if ctxStart < 0 {
				ctxStart = 0
			}
			ctxEnd := actual + len(needle) + phraseContextRadius
			if ctxEnd > len(chunk) {
				ctxEnd = len(chunk)
			}

			matches = append(matches, types.BannedPhraseMatch{
				Phrase:   phrase,
				Position: baseOffset + actual,
				Context:  chunk[ctxStart:ctxEnd],
				Severity: "high",
			})
			start = actual + len(needle)
		}
	}

	return matches
}
