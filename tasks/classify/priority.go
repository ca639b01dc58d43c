package classify

import "strings"

// Keyword groups checked in precedence order; the first group that matches wins.
var (
	urgentWords    = []string{"urgent", "critical", "today", "asap", "eod", "immediately"}
	importantWords = []string{"this week", "important", "deadline", "due", "follow up"}
	lowWords       = []string{"someday", "maybe", "explore", "consider", "idea"}
)

// GuessPriority maps a title to P0..P3 by substring keywords, P2 when nothing matches.
func GuessPriority(title string) string {
	t := strings.ToLower(title)
	switch {
	case containsAny(t, urgentWords...):
		return "P0"
	case containsAny(t, importantWords...):
		return "P1"
	case containsAny(t, lowWords...):
		return "P3"
	default:
		return "P2"
	}
}
