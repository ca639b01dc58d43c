// Package classify holds the keyword and regex heuristics used to triage task
// titles: priority and pillar guesses, vagueness, clarification prompts.
//
// Everything here is a pure function of its inputs.
package classify

import (
	"regexp"
	"sort"
	"strings"
)

var wordPattern = regexp.MustCompile(`\w+`)

// stopWords never count as keywords. Beyond articles, auxiliaries and pronouns
// the list drops prepositions and quantifiers ("about", "over", "each"), which
// otherwise inflate keyword overlap between unrelated titles.
var stopWords = toSet(
	"the", "a", "an", "and", "or", "but", "in", "on", "at", "to", "for",
	"with", "from", "up", "out", "is", "are", "was", "were", "be", "been",
	"being", "have", "has", "had", "do", "does", "did", "will", "would",
	"could", "should", "may", "might", "must", "shall", "can", "need",
	"this", "that", "these", "those", "i", "you", "he", "she", "it", "we", "they",
	"about", "into", "onto", "over", "under", "via", "per", "by", "of", "off",
	"than", "then", "there", "their", "them", "its", "our", "ours", "your", "yours",
	"his", "her", "him", "me", "my", "us", "what", "which", "who", "whom", "whose",
	"when", "where", "why", "how", "all", "any", "some", "each", "other", "such",
	"not", "only", "own", "same", "too", "very", "just", "also", "again", "once",
	"here", "both", "few", "more", "most", "nor", "so", "if", "as", "while", "after",
	"before", "between", "through", "during", "above", "below", "against", "until",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Words returns the lowercase \w+ tokens of text in order
func Words(text string) []string {
	return wordPattern.FindAllString(strings.ToLower(text), -1)
}

// Keywords returns the distinct meaningful words of text: lowercase, longer than
// two characters, not a stop word.
func Keywords(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range Words(text) {
		if len(w) <= 2 {
			continue
		}
		if _, stop := stopWords[w]; stop {
			continue
		}
		set[w] = struct{}{}
	}
	return set
}

// SortedKeywords is Keywords as a sorted slice
func SortedKeywords(text string) []string {
	set := Keywords(text)
	out := make([]string, 0, len(set))
	for w := range set {
		out = append(out, w)
	}
	sort.Strings(out)
	return out
}

func containsAny(s string, needles ...string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
