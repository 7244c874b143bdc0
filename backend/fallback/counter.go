package fallback

import (
	"sort"
	"strings"
	"unicode"

	"github.com/c360/uploadguard/types"
)

// counter is a capped word-frequency table
type counter struct {
	counts     map[string]int
	stopwords  map[string]struct{}
	maxTracked int
}

func newCounter(stopwords []string, maxTracked int) *counter {
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &counter{
		counts:     make(map[string]int),
		stopwords:  stops,
		maxTracked: maxTracked,
	}
}

func (c *counter) add(text string) {
	for _, field := range strings.Fields(strings.ToLower(text)) {
		var b strings.Builder
		for _, r := range field {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				b.WriteRune(r)
			}
		}
		word := b.String()
		if word == "" {
			continue
		}
		if _, stop := c.stopwords[word]; stop {
			continue
		}
		if _, seen := c.counts[word]; !seen {
			if c.maxTracked > 0 && len(c.counts) >= c.maxTracked {
				continue
			}
		}
		c.counts[word]++
	}
}

func (c *counter) unique() int {
	return len(c.counts)
}

func (c *counter) top(n int) []types.WordCount {
	words := make([]types.WordCount, 0, len(c.counts))
	for word, count := range c.counts {
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
