package tasks

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryLines(t *testing.T) {
	e := Entry{
		Title:      "Send Acme renewal quote",
		Refs:       []string{"Active/Relationships/Companies/Acme.md"},
		Anchor:     "task-20260115-001",
		Context:    "Include the\nvolume discount",
		PillarName: "Close Deals",
		Priority:   P1,
	}
	assert.Equal(t, []string{
		"- [ ] **Send Acme renewal quote** | Active/Relationships/Companies/Acme.md ^task-20260115-001",
		"\t- Include the volume discount",
		"\t- Pillar: Close Deals | Priority: P1",
	}, e.Lines())

	parsed := ParseDocument("t.md", strings.Join(e.Lines(), "\n"), testStrategy())
	require.Len(t, parsed, 1)
	assert.Equal(t, "deals", parsed[0].Pillar)
	assert.Equal(t, P1, parsed[0].Priority)
}

func TestInsertEntry(t *testing.T) {
	e := Entry{Title: "New task here", Anchor: "task-20260115-002", PillarName: "Pillar 1", Priority: P2}

	tests := []struct {
		name    string
		content string
		section string
		want    string
	}{
		{
			name:    "existing section gets entry on top",
			content: "# Tasks\n\n## Next Week\n- [ ] **Old** ^task-20260114-001\n",
			section: "Next Week",
			want:    "# Tasks\n\n## Next Week\n- [ ] **New task here** ^task-20260115-002\n\t- Pillar: Pillar 1 | Priority: P2\n- [ ] **Old** ^task-20260114-001\n",
		},
		{
			name:    "missing section after H1",
			content: "# Tasks\n## This Week\n- [ ] **Old** ^task-20260114-001\n",
			section: "Next Week",
			want:    "# Tasks\n\n## Next Week\n- [ ] **New task here** ^task-20260115-002\n\t- Pillar: Pillar 1 | Priority: P2\n\n## This Week\n- [ ] **Old** ^task-20260114-001\n",
		},
		{
			name:    "empty document",
			content: "",
			section: "Next Week",
			want:    "# Tasks\n\n## Next Week\n- [ ] **New task here** ^task-20260115-002\n\t- Pillar: Pillar 1 | Priority: P2\n\n",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InsertEntry(tt.content, tt.section, e))
		})
	}
}

func TestSetStatusMeta(t *testing.T) {
	lines := []string{
		"- [ ] **Task** ^task-20260115-001",
		"\t- context line",
		"\t- Pillar: Pillar 1 | Priority: P2",
		"- [ ] **Other** ^task-20260115-002",
	}

	started, changed := SetStatusMeta(lines, 0, StatusStarted)
	require.True(t, changed)
	assert.Equal(t, "\t- Pillar: Pillar 1 | Priority: P2 | Status: started", started[2])

	blocked, changed := SetStatusMeta(started, 0, StatusBlocked)
	require.True(t, changed)
	assert.Equal(t, "\t- Pillar: Pillar 1 | Priority: P2 | Status: blocked", blocked[2])

	cleared, changed := SetStatusMeta(blocked, 0, StatusNotStarted)
	require.True(t, changed)
	assert.Equal(t, lines, cleared)

	_, changed = SetStatusMeta(lines, 0, StatusNotStarted)
	assert.False(t, changed)

	added, changed := SetStatusMeta(lines, 3, StatusStarted)
	require.True(t, changed)
	assert.Equal(t, "\t- Status: started", added[4])

	removed, changed := SetStatusMeta(added, 3, StatusDone)
	require.True(t, changed)
	assert.Equal(t, lines, removed)
}
