package classify

import (
	"regexp"
	"strings"
)

var vaguePatterns = []*regexp.Regexp{
	regexp.MustCompile(`^(fix|update|improve|check|review|look at|work on)\s+(the|a|an)?\s*\w+$`),
	regexp.MustCompile(`^\w+\s+(stuff|thing|issue|problem)$`),
	regexp.MustCompile(`^(follow up|reach out|contact|email)$`),
	regexp.MustCompile(`^(investigate|research|explore)\s*\w{0,20}$`),
}

// IsAmbiguous reports whether title is too vague to become a task: two words or
// fewer, or a bare action on a generic object.
func IsAmbiguous(title string) bool {
	t := strings.ToLower(strings.TrimSpace(title))
	if len(strings.Fields(t)) <= 2 {
		return true
	}
	for _, p := range vaguePatterns {
		if p.MatchString(t) {
			return true
		}
	}
	return false
}

type questionCategory struct {
	triggers  []string
	questions []string
}

var questionCategories = []questionCategory{
	{
		triggers: []string{"fix", "bug", "error", "issue"},
		questions: []string{
			"Which specific bug or error? Can you provide more details?",
			"What component or feature is affected?",
		},
	},
	{
		triggers: []string{"update", "improve", "refactor"},
		questions: []string{
			"What specific aspects need updating/improvement?",
			"What's the success criteria for this task?",
		},
	},
	{
		triggers: []string{"email", "contact", "reach out", "follow up"},
		questions: []string{
			"Who should be contacted?",
			"What's the purpose or goal of this outreach?",
		},
	},
	{
		triggers: []string{"research", "investigate", "explore"},
		questions: []string{
			"What specific questions need to be answered?",
			"What decisions will this research inform?",
		},
	},
}

var genericQuestions = []string{
	"Can you provide more specific details about what needs to be done?",
	"What's the expected outcome or deliverable?",
}

// ClarificationQuestions returns prompts for every category title touches,
// falling back to two generic prompts.
func ClarificationQuestions(title string) []string {
	t := strings.ToLower(title)
	var out []string
	for _, c := range questionCategories {
		if containsAny(t, c.triggers...) {
			out = append(out, c.questions...)
		}
	}
	if len(out) == 0 {
		out = append(out, genericQuestions...)
	}
	return out
}

// ClarificationSuggestions are the generic rewrite hints attached to vague inbox items
func ClarificationSuggestions() []string {
	return []string{
		"Add more specific details",
		"Include success criteria",
		"Specify scope or boundaries",
	}
}

var blockedWords = []string{"waiting", "blocked", "pending"}

// IsBlockedHint reports whether the title says the task is waiting on something
func IsBlockedHint(title string) bool {
	return containsAny(strings.ToLower(title), blockedWords...)
}
