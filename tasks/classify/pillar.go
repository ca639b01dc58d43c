package classify

import (
	"strings"

	"github.com/teranos/dex/am"
)

// PillarScore scores title against one pillar: 2 per keyword found as a
// substring, plus 1 per keyword that is also one of the title's keywords.
func PillarScore(title string, p am.Pillar) int {
	lower := strings.ToLower(title)
	words := Keywords(title)

	score := 0
	for _, kw := range p.Keywords {
		kw = strings.ToLower(kw)
		if kw == "" {
			continue
		}
		if strings.Contains(lower, kw) {
			score += 2
		}
		if _, ok := words[kw]; ok {
			score++
		}
	}
	return score
}

// GuessPillar returns the id of the pillar with the strictly highest positive
// score, or "" when no pillar scores or the top score is tied.
func GuessPillar(title string, pillars []am.Pillar) string {
	best, bestScore, tied := "", 0, false
	for _, p := range pillars {
		score := PillarScore(title, p)
		switch {
		case score > bestScore:
			best, bestScore, tied = p.ID, score, false
		case score == bestScore && score > 0:
			tied = true
		}
	}
	if bestScore == 0 || tied {
		return ""
	}
	return best
}
