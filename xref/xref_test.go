package xref

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/internal/testvault"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/vault"
)

func seed(v *testvault.Vault) {
	v.Lines("03-Tasks/Tasks.md",
		"# Tasks",
		"## This Week",
		"- [ ] **Send pilot summary** | People/External/Jane_Doe.md ^task-20260114-001",
		"\t- Pillar: Pillar 1 | Priority: P1",
		"- [x] **Book dinner with Jane Doe** ^task-20260114-002 ✅ 2026-01-14 18:00",
		"## Later",
		"- [ ] Urgent: unrelated errand",
	)
	v.Lines("People/External/Jane_Doe.md",
		"# Jane Doe",
		"",
		"| **Company** | Acme |",
		"",
		"## Notes",
		"Met at the summit.",
	)
}

func TestFindTasksForPage(t *testing.T) {
	v := testvault.New(t)
	seed(v)

	refs, err := FindTasksForPage(v.Layout(), "People/External/Jane_Doe.md")
	require.NoError(t, err)
	assert.Equal(t, []TaskRef{
		{Title: "Send pilot summary", Priority: tasks.P1, Section: "This Week", Line: 3, Anchor: "task-20260114-001"},
		{Title: "Book dinner with Jane Doe", Completed: true, Priority: tasks.P2, Section: "This Week", Line: 5, Anchor: "task-20260114-002"},
	}, refs)

	none, err := FindTasksForPage(testvault.New(t).Layout(), "People/External/Jane_Doe.md")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestReferences(t *testing.T) {
	assert.True(t, References("- [ ] x | Active/Relationships/Companies/Acme.md", "Active/Relationships/Companies/Acme.md"))
	assert.True(t, References("- [ ] Send ACME the deck", "Acme"))
	assert.False(t, References("- [ ] Send Globex the deck", "Acme.md"))
	assert.False(t, References("- [ ] anything", ""))
}

func TestSyncRefs_Idempotent(t *testing.T) {
	ctx := context.Background()
	v := testvault.New(t)
	seed(v)

	first, err := SyncRefs(ctx, v.Layout(), "People/External/Jane_Doe", testvault.Clock)
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.True(t, first.Changed)
	assert.Equal(t, "People/External/Jane_Doe.md", first.Page)
	assert.Equal(t, 2, first.TasksFound)

	page := v.Read("People/External/Jane_Doe.md")
	assert.Contains(t, page, "## Related Tasks\n\n*Synced from 03-Tasks/Tasks.md at 2026-01-15 10:30*\n\n| Status | Task | Priority |\n|--------|------|----------|\n| ⏳ | Send pilot summary | P1 |\n| ✅ | Book dinner with Jane Doe | P2 |\n\n## Notes")

	second, err := SyncRefs(ctx, v.Layout(), "People/External/Jane_Doe.md", testvault.Clock.Add(20*time.Second))
	require.NoError(t, err)
	assert.False(t, second.Changed)
	assert.Equal(t, page, v.Read("People/External/Jane_Doe.md"), "rebuild in the same minute is byte-identical")
}

func TestSyncRefs_NoTasksAndMissingPage(t *testing.T) {
	ctx := context.Background()
	v := testvault.New(t)
	seed(v)
	v.Lines("People/Internal/Sam_Lee.md", "# Sam Lee")

	res, err := SyncRefs(ctx, v.Layout(), "People/Internal/Sam_Lee.md", testvault.Clock)
	require.NoError(t, err)
	assert.Equal(t, 0, res.TasksFound)
	assert.Contains(t, v.Read("People/Internal/Sam_Lee.md"), "*No related tasks*")

	_, err = SyncRefs(ctx, v.Layout(), "People/External/Nobody.md", testvault.Clock)
	require.Error(t, err)
	assert.True(t, errors.IsNotFoundError(err))
	assert.NotEmpty(t, errors.Hint(err))
}

func TestSyncRefs_RejectsPathsOutsideVault(t *testing.T) {
	root := t.TempDir()
	outside := filepath.Join(root, "outside.md")
	require.NoError(t, os.WriteFile(outside, []byte("# Outside\n"), 0o644))
	l := vault.NewLayout(filepath.Join(root, "vault"), false)

	for _, page := range []string{"../outside.md", "../outside", outside} {
		t.Run(page, func(t *testing.T) {
			_, err := SyncRefs(context.Background(), l, page, testvault.Clock)
			require.Error(t, err)
			assert.True(t, errors.IsInvalidRequestError(err))
		})
	}

	data, err := os.ReadFile(outside)
	require.NoError(t, err)
	assert.Equal(t, "# Outside\n", string(data))
}

func TestPropagateStatus(t *testing.T) {
	ctx := context.Background()
	v := testvault.New(t)
	seed(v)
	v.Lines("03-Tasks/Tasks.md",
		"# Tasks",
		"- [x] **Send pilot summary** | People/External/Jane_Doe.md notes/missing.md ^task-20260114-001 ✅ 2026-01-15 10:30",
	)

	res, err := PropagateStatus(ctx, v.Layout(), "send pilot", testvault.Clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"People/External/Jane_Doe.md"}, res.Synced)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "notes/missing.md", res.Failed[0].File)
	assert.Contains(t, v.Read("People/External/Jane_Doe.md"), "| ✅ | Send pilot summary | P2 |")

	byAnchor, err := PropagateStatus(ctx, v.Layout(), "task-20260114-001", testvault.Clock)
	require.NoError(t, err)
	assert.Equal(t, []string{"People/External/Jane_Doe.md"}, byAnchor.Synced)

	none, err := PropagateStatus(ctx, v.Layout(), "no such task", testvault.Clock)
	require.NoError(t, err)
	assert.Empty(t, none.Synced)
}
