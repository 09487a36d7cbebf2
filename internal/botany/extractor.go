// Package botany extracts candidate plant names from free text.
// An Extractor combines exact substring matching over a static alias
// dictionary with fuzzy matching of individual tokens against the
// dictionary's canonical keys, so that common misspellings ("tusli")
// still resolve to the known plant ("tulsi").
package botany

import (
	"sort"
	"strings"
)

// fuzzyThreshold is the minimum token similarity accepted by the fuzzy
// pass. 0.79 admits a one-character transposition in a five-letter name
// (ratio 0.80) while rejecting unrelated words.
const fuzzyThreshold = 0.79

// minTokenLen is the shortest token considered by the fuzzy pass.
const minTokenLen = 4

// stopwords are frequent query words that must never fuzzy-match a
// plant name.
var stopwords = map[string]struct{}{
	"tell": {}, "about": {}, "what": {}, "where": {}, "when": {},
	"which": {}, "this": {}, "that": {}, "plant": {}, "herb": {},
	"tree": {}, "grow": {}, "grows": {}, "find": {}, "benefits": {},
	"uses": {}, "today": {}, "raining": {}, "does": {}, "give": {},
	"show": {}, "location": {}, "district": {}, "place": {},
}

// Extractor matches text against a plant alias dictionary.
type Extractor struct {
	dict Dictionary
	keys []string // sorted canonical keys, for deterministic fuzzy scans
}

// NewExtractor builds an extractor over the given dictionary. A nil or
// empty dictionary falls back to the built-in default.
func NewExtractor(dict Dictionary) *Extractor {
	if len(dict) == 0 {
		dict = DefaultDictionary()
	}
	keys := make([]string, 0, len(dict))
	for k := range dict {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return &Extractor{dict: dict, keys: keys}
}

// Extract returns the deduplicated set of lower-cased plant name aliases
// plausibly referenced in text. Generic, non-botanical text yields an
// empty set. Extract never fails.
func (e *Extractor) Extract(text string) map[string]struct{} {
	found := make(map[string]struct{})
	lower := strings.ToLower(text)

	// Pass 1: exact substring match against every known alias. A hit on
	// any alias pulls in all aliases of that plant, so later filters can
	// match either the common or the botanical name.
	for _, key := range e.keys {
		for _, alias := range e.dict[key] {
			if strings.Contains(lower, alias) {
				for _, a := range e.dict[key] {
					found[a] = struct{}{}
				}
				break
			}
		}
	}

	// Pass 2: fuzzy-match remaining tokens against canonical keys.
	for _, token := range strings.Fields(lower) {
		token = strings.Trim(token, ".,!?;:'\"()")
		if len(token) < minTokenLen {
			continue
		}
		if _, skip := stopwords[token]; skip {
			continue
		}
		if _, already := found[token]; already {
			continue
		}
		if key, ok := e.bestKey(token); ok {
			for _, a := range e.dict[key] {
				found[a] = struct{}{}
			}
		}
	}

	return found
}

// ExtractList returns the extracted aliases as a sorted slice, which is
// friendlier for logging and for building search filters.
func (e *Extractor) ExtractList(text string) []string {
	set := e.Extract(text)
	out := make([]string, 0, len(set))
	for a := range set {
		out = append(out, a)
	}
	sort.Strings(out)
	return out
}

// bestKey returns the canonical key most similar to token, if any key
// clears the fuzzy threshold.
func (e *Extractor) bestKey(token string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, key := range e.keys {
		if s := similarity(token, key); s > bestScore {
			best, bestScore = key, s
		}
	}
	if bestScore > fuzzyThreshold {
		return best, true
	}
	return "", false
}

// similarity is the normalized indel similarity of two strings:
// 2*LCS(a,b) / (len(a)+len(b)). It is 1 for identical strings and
// treats a transposition as two edits, matching the classic
// SequenceMatcher ratio.
func similarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	ra, rb := []rune(a), []rune(b)

	// Single-row LCS table; alias names are short so this stays cheap.
	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for i := 1; i <= len(ra); i++ {
		for j := 1; j <= len(rb); j++ {
			if ra[i-1] == rb[j-1] {
				curr[j] = prev[j-1] + 1
			} else if prev[j] >= curr[j-1] {
				curr[j] = prev[j]
			} else {
				curr[j] = curr[j-1]
			}
		}
		prev, curr = curr, prev
	}
	lcs := prev[len(rb)]
	return 2 * float64(lcs) / float64(len(ra)+len(rb))
}
