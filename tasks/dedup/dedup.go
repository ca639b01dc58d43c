// Package dedup scores a candidate task title against the active task list and
// reports likely duplicates.
package dedup

import (
	"math"
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"

	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/tasks/classify"
)

// Recommended actions for a set of matches
const (
	ActionMerge  = "merge"
	ActionReview = "review"
)

// Options tune matching. The zero value is not useful; start from DefaultOptions.
type Options struct {
	Threshold      float64 // minimum combined score for a match
	MergeThreshold float64 // top score above this recommends a merge
	MaxMatches     int
}

// DefaultOptions returns the stock thresholds (0.6 match, 0.8 merge, top 3)
func DefaultOptions() Options {
	return Options{Threshold: 0.6, MergeThreshold: 0.8, MaxMatches: 3}
}

// Match is an existing task that resembles the candidate title
type Match struct {
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Section string  `json:"section,omitempty"`
	Source  string  `json:"source,omitempty"`
	Score   float64 `json:"similarity_score"`
}

// FindSimilar returns the active tasks whose combined score against title reaches
// the threshold, best first, at most MaxMatches.
func FindSimilar(title string, existing []tasks.Task, opts Options) []Match {
	var matches []Match
	for _, t := range existing {
		if t.Completed {
			continue
		}
		score := Score(title, t.Title)
		if score < opts.Threshold {
			continue
		}
		matches = append(matches, Match{
			ID:      t.ID,
			Title:   t.Title,
			Section: t.Section,
			Source:  t.Source,
			Score:   score,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score > matches[j].Score })
	if opts.MaxMatches > 0 && len(matches) > opts.MaxMatches {
		matches = matches[:opts.MaxMatches]
	}
	return matches
}

// Recommend returns ActionMerge when the best match is above the merge threshold,
// ActionReview otherwise, and "" for no matches.
func Recommend(matches []Match, opts Options) string {
	if len(matches) == 0 {
		return ""
	}
	if matches[0].Score > opts.MergeThreshold {
		return ActionMerge
	}
	return ActionReview
}

// Score combines title similarity and keyword overlap: 0.7*similarity + 0.3*jaccard,
// rounded to two decimals.
func Score(a, b string) float64 {
	s := 0.7*Similarity(a, b) + 0.3*Jaccard(a, b)
	return math.Round(s*100) / 100
}

// minSubsetShare is the share of each title's keywords the shared words must
// cover before the shared-words-only comparison counts.
const minSubsetShare = 0.5

// Similarity is the larger of the character-level ratio of the lowercased titles
// and their token-set ratio, so reworded titles sharing most words still score high.
func Similarity(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	return math.Max(ratio(a, b), tokenSetRatio(a, b))
}

// Jaccard is |A∩B| / |A∪B| over the titles' keywords, 0 when either has none.
func Jaccard(a, b string) float64 {
	ka, kb := classify.Keywords(a), classify.Keywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return 0
	}
	inter := 0
	for w := range ka {
		if _, ok := kb[w]; ok {
			inter++
		}
	}
	union := len(ka) + len(kb) - inter
	return float64(inter) / float64(union)
}

func ratio(a, b string) float64 {
	if a == "" && b == "" {
		return 1
	}
	return difflib.NewMatcher(chars(a), chars(b)).Ratio()
}

func chars(s string) []string {
	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}

// tokenSetRatio compares each title's sorted shared+unique words and keeps the
// ratio. The shared words alone are also compared against each side, but only
// when they cover minSubsetShare of both titles' keywords: a short title inside a
// longer, different one would otherwise score 1.
func tokenSetRatio(a, b string) float64 {
	ta, tb := tokenSet(a), tokenSet(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}

	var inter, onlyA, onlyB []string
	for w := range ta {
		if _, ok := tb[w]; ok {
			inter = append(inter, w)
		} else {
			onlyA = append(onlyA, w)
		}
	}
	for w := range tb {
		if _, ok := ta[w]; !ok {
			onlyB = append(onlyB, w)
		}
	}
	sort.Strings(inter)
	sort.Strings(onlyA)
	sort.Strings(onlyB)

	shared := strings.Join(inter, " ")
	combinedA := strings.TrimSpace(shared + " " + strings.Join(onlyA, " "))
	combinedB := strings.TrimSpace(shared + " " + strings.Join(onlyB, " "))

	best := ratio(combinedA, combinedB)
	if shared == "" || !coversBoth(a, b) {
		return best
	}
	return math.Max(best, math.Max(ratio(shared, combinedA), ratio(shared, combinedB)))
}

// coversBoth reports whether the shared keywords are at least minSubsetShare of
// each title's keywords.
func coversBoth(a, b string) bool {
	ka, kb := classify.Keywords(a), classify.Keywords(b)
	if len(ka) == 0 || len(kb) == 0 {
		return false
	}
	inter := 0
	for w := range ka {
		if _, ok := kb[w]; ok {
			inter++
		}
	}
	return float64(inter)/float64(len(ka)) >= minSubsetShare &&
		float64(inter)/float64(len(kb)) >= minSubsetShare
}

func tokenSet(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range classify.Words(s) {
		set[w] = struct{}{}
	}
	return set
}
