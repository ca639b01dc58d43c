package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teranos/dex/am"
)

func TestGuessPriority(t *testing.T) {
	tests := []struct {
		title string
		want  string
	}{
		{"Send contract to legal ASAP", "P0"},
		{"Critical: restore billing export", "P0"},
		{"Finish board slides this week", "P1"},
		{"Follow up with Dana on renewal", "P1"},
		{"Maybe explore a podcast", "P3"},
		{"Urgent idea for the offsite", "P0"},
		{"Draft Q2 hiring plan", "P2"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessPriority(tt.title))
		})
	}
}

func TestKeywords(t *testing.T) {
	assert.Equal(t, []string{"budget", "email", "sarah"}, SortedKeywords("Email Sarah about Q1 budget"))
	assert.Equal(t, []string{"budget", "follow", "numbers", "sarah"}, SortedKeywords("Follow up with Sarah on Q1 budget numbers"))
	assert.Empty(t, Keywords("to be or not"))
}

func TestGuessPillar(t *testing.T) {
	pillars := []am.Pillar{
		{ID: "deals", Keywords: []string{"pipeline", "renewal", "deal"}},
		{ID: "team", Keywords: []string{"hiring", "onboarding"}},
		{ID: "content", Keywords: []string{"podcast", "post"}},
	}

	tests := []struct {
		name  string
		title string
		want  string
	}{
		{"single match", "Review renewal terms for Acme", "deals"},
		{"substring only scores", "Plan onboardings for March", "team"},
		{"no match", "Buy printer paper", ""},
		{"tie is unassigned", "Record podcast about hiring", ""},
		{"higher score wins", "Pipeline review and deal desk, then hiring", "deals"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GuessPillar(tt.title, pillars))
		})
	}

	assert.Equal(t, 3, PillarScore("Close the renewal", pillars[0]))
	assert.Equal(t, "pillar_1", GuessPillar("Main focus for Q3", am.DefaultPillars()))
}

func TestIsAmbiguous(t *testing.T) {
	ambiguous := []string{
		"fix bug",
		"follow up",
		"thing",
		"Fix the login",
		"look at the dashboard",
		"pricing stuff",
		"research competitors",
	}
	for _, title := range ambiguous {
		assert.True(t, IsAmbiguous(title), title)
	}

	clear := []string{
		"Email Sarah the finalized Q1 budget deck by Friday",
		"Review the Acme MSA redlines with legal",
		"Draft Q2 hiring plan for support team",
	}
	for _, title := range clear {
		assert.False(t, IsAmbiguous(title), title)
	}
}

func TestClarificationQuestions(t *testing.T) {
	q := ClarificationQuestions("fix bug")
	assert.Equal(t, []string{
		"Which specific bug or error? Can you provide more details?",
		"What component or feature is affected?",
	}, q)

	q = ClarificationQuestions("follow up")
	assert.Contains(t, q, "Who should be contacted?")

	q = ClarificationQuestions("update research doc")
	assert.Len(t, q, 4)

	assert.Equal(t, genericQuestions, ClarificationQuestions("thing"))
	assert.Len(t, ClarificationSuggestions(), 3)
}

func TestIsBlockedHint(t *testing.T) {
	assert.True(t, IsBlockedHint("Waiting on legal for MSA"))
	assert.True(t, IsBlockedHint("Invoice pending approval"))
	assert.False(t, IsBlockedHint("Send invoice to Acme"))
}
