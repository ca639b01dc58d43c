package engine

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teranos/dex/am"
	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/internal/testvault"
	"github.com/teranos/dex/relations"
	"github.com/teranos/dex/tasks"
)

const tasksFile = "03-Tasks/Tasks.md"

func newEngine(t *testing.T, v *testvault.Vault) *Engine {
	t.Helper()
	cfg, err := am.Defaults(v.Root)
	require.NoError(t, err)
	e, err := New(Options{Config: cfg, Now: testvault.Now})
	require.NoError(t, err)
	return e
}

func rejection(t *testing.T, err error) *Rejection {
	t.Helper()
	require.Error(t, err)
	var r *Rejection
	require.True(t, errors.As(err, &r), "expected *Rejection, got %T", err)
	return r
}

func TestNewRequiresValidConfig(t *testing.T) {
	_, err := New(Options{})
	assert.Error(t, err)

	cfg, err := am.Defaults(t.TempDir())
	require.NoError(t, err)
	cfg.Dedup.SimilarityThreshold = 2
	_, err = New(Options{Config: cfg})
	assert.Error(t, err)
}

func TestCreateTaskAllocatesSequentialAnchors(t *testing.T) {
	v := testvault.New(t)
	e := newEngine(t, v)
	ctx := context.Background()

	first, err := e.CreateTask(ctx, CreateTaskRequest{
		Title:   "Draft onboarding checklist for new customers",
		Pillar:  "pillar_1",
		Context: "Start from the Globex rollout notes",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-20260115-001", first.AnchorID)
	assert.Equal(t, tasks.P2, first.Priority)
	assert.Equal(t, "Next Week", first.Section)
	assert.Equal(t, "Pillar 1", first.Pillar)

	second, err := e.CreateTask(ctx, CreateTaskRequest{
		Title:    "Book venue for the customer advisory board",
		Pillar:   "Pillar 2",
		Priority: "p1",
		Section:  "This Week",
	})
	require.NoError(t, err)
	assert.Equal(t, "task-20260115-002", second.AnchorID)
	assert.Equal(t, "pillar_2", second.PillarID)
	assert.Equal(t, tasks.P1, second.Priority)

	content := v.Read(tasksFile)
	assert.Contains(t, content, "- [ ] **Draft onboarding checklist for new customers** ^task-20260115-001\n\t- Start from the Globex rollout notes\n\t- Pillar: Pillar 1 | Priority: P2")
	assert.Contains(t, content, "## This Week\n- [ ] **Book venue for the customer advisory board** ^task-20260115-002\n\t- Pillar: Pillar 2 | Priority: P1")

	list, err := e.ListTasks(ctx, ListFilter{})
	require.NoError(t, err)
	assert.Equal(t, 2, list.Count)
}

func TestCreateTaskRejections(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Next Week",
		"- [ ] **Email Sarah about the Q1 budget** ^task-20260114-001",
		"\t- Pillar: Pillar 1 | Priority: P2",
	)
	e := newEngine(t, v)

	tests := []struct {
		name string
		req  CreateTaskRequest
		code string
	}{
		{"missing title", CreateTaskRequest{Pillar: "pillar_1"}, errors.ReasonInvalidRequest},
		{"missing pillar", CreateTaskRequest{Title: "Write the hiring plan for Q2"}, errors.ReasonInvalidRequest},
		{"unknown pillar", CreateTaskRequest{Title: "Write the hiring plan for Q2", Pillar: "sales"}, errors.ReasonInvalidRequest},
		{"unknown priority", CreateTaskRequest{Title: "Write the hiring plan for Q2", Pillar: "pillar_1", Priority: "P9"}, errors.ReasonInvalidRequest},
		{"vague", CreateTaskRequest{Title: "fix bug", Pillar: "pillar_1"}, errors.ReasonVague},
		{"duplicate", CreateTaskRequest{Title: "Email Sarah about Q1 budget", Pillar: "pillar_1"}, errors.ReasonDuplicate},
	}

	before := v.Read(tasksFile)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := e.CreateTask(context.Background(), tt.req)
			r := rejection(t, err)
			assert.Equal(t, tt.code, r.Code)
			assert.NotEmpty(t, r.Message)
		})
	}
	assert.Equal(t, before, v.Read(tasksFile), "rejections never write")

	t.Run("vague carries questions", func(t *testing.T) {
		_, err := e.CreateTask(context.Background(), CreateTaskRequest{Title: "fix bug", Pillar: "pillar_1"})
		r := rejection(t, err)
		details, ok := r.Details.(VagueDetails)
		require.True(t, ok)
		assert.NotEmpty(t, details.Questions)
		assert.True(t, errors.Is(err, errors.ErrVague))
	})

	t.Run("duplicate carries matches", func(t *testing.T) {
		_, err := e.CreateTask(context.Background(), CreateTaskRequest{Title: "Email Sarah about Q1 budget", Pillar: "pillar_1"})
		r := rejection(t, err)
		details, ok := r.Details.(DuplicateDetails)
		require.True(t, ok)
		require.Len(t, details.Similar, 1)
		assert.Equal(t, "task-20260114-001", details.Similar[0].ID)
		assert.NotEmpty(t, r.Suggestion)
	})
}

func TestPriorityLimitRejectsThenAdmits(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## This Week",
		"- [ ] **Negotiate renewal terms with Globex** ^task-20260110-001",
		"\t- Pillar: Pillar 1 | Priority: P0",
		"- [ ] **Prepare board deck for March meeting** ^task-20260110-002",
		"\t- Pillar: Pillar 1 | Priority: P0",
		"- [ ] **Hire senior backend engineer for platform** ^task-20260110-003",
		"\t- Pillar: Pillar 2 | Priority: P0",
	)
	e := newEngine(t, v)
	ctx := context.Background()
	req := CreateTaskRequest{Title: "Draft onboarding checklist for new customers", Pillar: "pillar_1", Priority: "P0"}

	_, err := e.CreateTask(ctx, req)
	r := rejection(t, err)
	assert.Equal(t, errors.ReasonLimitExceeded, r.Code)
	assert.Equal(t, LimitDetails{Priority: tasks.P0, CurrentCount: 3, Limit: 3}, r.Details)

	_, err = e.UpdateTaskStatus(ctx, UpdateStatusRequest{AnchorID: "task-20260110-001", Status: "d"})
	require.NoError(t, err)

	created, err := e.CreateTask(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, "task-20260115-001", created.AnchorID)

	report, err := e.CheckPriorityLimits(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Counts[tasks.P0])
	assert.True(t, report.Balanced)
}

func TestUpdateTaskStatusEverywhere(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Next Week",
		"- [ ] **Send Q1 pricing proposal to Jane** | People/External/Jane_Doe.md ^task-20260114-002",
		"\t- Pillar: Pillar 1 | Priority: P1",
	)
	v.Lines("People/External/Jane_Doe.md",
		"# Jane Doe",
		"",
		"## Open Items",
		"",
		"- [ ] Send Q1 pricing proposal to Jane ^task-20260114-002",
		"",
		"## Related Tasks",
		"",
		"*stale*",
	)
	e := newEngine(t, v)

	res, err := e.UpdateTaskStatus(context.Background(), UpdateStatusRequest{AnchorID: "task-20260114-002", Status: "done"})
	require.NoError(t, err)

	assert.Equal(t, 2, res.InstancesFound)
	assert.Len(t, res.UpdatedFiles, 2)
	assert.Empty(t, res.FailedFiles)
	assert.Equal(t, "2026-01-15 10:30", res.CompletedAt)
	assert.Equal(t, []string{"People/External/Jane_Doe.md"}, res.SyncedPages)

	assert.Contains(t, v.Read(tasksFile), "- [x] **Send Q1 pricing proposal to Jane** | People/External/Jane_Doe.md ^task-20260114-002 ✅ 2026-01-15 10:30")
	person := v.Read("People/External/Jane_Doe.md")
	assert.Contains(t, person, "- [x] Send Q1 pricing proposal to Jane ^task-20260114-002 ✅ 2026-01-15 10:30")
	assert.Contains(t, person, "| ✅ | Send Q1 pricing proposal to Jane | P1 |")
	assert.NotContains(t, person, "*stale*")

	t.Run("unknown anchor", func(t *testing.T) {
		_, err := e.UpdateTaskStatus(context.Background(), UpdateStatusRequest{AnchorID: "task-20260101-009", Status: "d"})
		assert.Equal(t, errors.ReasonNotFound, rejection(t, err).Code)
	})

	t.Run("bad status", func(t *testing.T) {
		_, err := e.UpdateTaskStatus(context.Background(), UpdateStatusRequest{AnchorID: "task-20260114-002", Status: "x"})
		assert.Equal(t, errors.ReasonInvalidRequest, rejection(t, err).Code)
	})

	t.Run("no target", func(t *testing.T) {
		_, err := e.UpdateTaskStatus(context.Background(), UpdateStatusRequest{Status: "d"})
		assert.Equal(t, errors.ReasonInvalidRequest, rejection(t, err).Code)
	})
}

func TestUpdateTaskStatusLegacyByTitle(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Backlog",
		"- [ ] Call the accountant about quarterly taxes",
	)
	e := newEngine(t, v)

	res, err := e.UpdateTaskStatus(context.Background(), UpdateStatusRequest{TitleQuery: "ACCOUNTANT", Status: "d"})
	require.NoError(t, err)
	assert.Equal(t, legacyNote, res.Note)
	assert.Empty(t, res.AnchorID)
	assert.Equal(t, []tasks.Location{{File: tasksFile, Line: 4}}, res.UpdatedFiles)
	assert.Contains(t, v.Read(tasksFile), "- [x] Call the accountant about quarterly taxes ✅ 2026-01-15 10:30")

	_, err = e.UpdateTaskStatus(context.Background(), UpdateStatusRequest{TitleQuery: "dentist", Status: "d"})
	assert.Equal(t, errors.ReasonNotFound, rejection(t, err).Code)
}

func TestUpdateTaskStatusReportsFailedFiles(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Next Week",
		"- [ ] **Renew the Globex contract** ^task-20260114-004",
		"\t- Pillar: Pillar 1 | Priority: P1",
	)
	// too long a name for the atomic write's temp file
	stuck := "Active/Relationships/Companies/" + strings.Repeat("g", 255-len(".md")) + ".md"
	v.Lines(stuck, "- [ ] Renew the Globex contract ^task-20260114-004")
	e := newEngine(t, v)

	res, err := e.UpdateTaskStatus(context.Background(), UpdateStatusRequest{AnchorID: "task-20260114-004", Status: "done"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, 2, res.InstancesFound)
	assert.Equal(t, []tasks.Location{{File: tasksFile, Line: 4}}, res.UpdatedFiles)
	require.Len(t, res.FailedFiles, 1)
	assert.Equal(t, stuck, res.FailedFiles[0].File)
	assert.NotEmpty(t, res.FailedFiles[0].Error)
	assert.NotContains(t, v.Read(stuck), "[x]")
}

func TestStartedAndBlockedStatus(t *testing.T) {
	v := testvault.New(t)
	e := newEngine(t, v)
	ctx := context.Background()

	created, err := e.CreateTask(ctx, CreateTaskRequest{Title: "Migrate billing exports to the new warehouse", Pillar: "pillar_1"})
	require.NoError(t, err)

	_, err = e.UpdateTaskStatus(ctx, UpdateStatusRequest{AnchorID: created.AnchorID, Status: "s"})
	require.NoError(t, err)
	assert.Contains(t, v.Read(tasksFile), "\t- Pillar: Pillar 1 | Priority: P2 | Status: started")

	started, err := e.ListTasks(ctx, ListFilter{Status: "s"})
	require.NoError(t, err)
	require.Equal(t, 1, started.Count)
	assert.Equal(t, created.AnchorID, started.Tasks[0].AnchorID)

	_, err = e.UpdateTaskStatus(ctx, UpdateStatusRequest{AnchorID: created.AnchorID, Status: "blocked"})
	require.NoError(t, err)
	blockedList, err := e.BlockedTasks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, blockedList.Count)

	_, err = e.UpdateTaskStatus(ctx, UpdateStatusRequest{AnchorID: created.AnchorID, Status: "n"})
	require.NoError(t, err)
	content := v.Read(tasksFile)
	assert.NotContains(t, content, "Status:")
	assert.Contains(t, content, "- [ ] **Migrate billing exports to the new warehouse**")
}

func TestListTasksFilters(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Next Week",
		"- [ ] **Renew the Globex contract** ^task-20260112-001",
		"\t- Pillar: Pillar 1 | Priority: P1",
		"- [x] **Ship the pricing page** ^task-20260112-002 ✅ 2026-01-13 09:00",
		"\t- Pillar: Pillar 2 | Priority: P2",
	)
	v.Lines("Inbox/Week Priorities.md",
		"# Week Priorities",
		"",
		"- [ ] **Renew the Globex contract** ^task-20260112-001",
		"- [ ] Plan the offsite agenda someday",
	)
	e := newEngine(t, v)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ListFilter
		want   int
	}{
		{"active only by default", ListFilter{}, 3},
		{"include done", ListFilter{IncludeDone: true}, 4},
		{"done status implies done", ListFilter{Status: "d"}, 1},
		{"by pillar name", ListFilter{Pillar: "Pillar 1"}, 1},
		{"by pillar id", ListFilter{Pillar: "pillar_1"}, 1},
		{"by priority", ListFilter{Priority: "P3"}, 1},
		{"by source", ListFilter{Source: tasks.SourceWeekPriorities}, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			list, err := e.ListTasks(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, list.Count)
			assert.Len(t, list.Tasks, tt.want)
		})
	}

	_, err := e.ListTasks(ctx, ListFilter{Source: "email"})
	assert.Equal(t, errors.ReasonInvalidRequest, rejection(t, err).Code)
}

func TestReports(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Next Week",
		"- [ ] **Write the quarterly investor update** ^task-20260112-001",
		"\t- Pillar: Pillar 1 | Priority: P2",
		"- [ ] **Close the Initech security review** ^task-20260112-002",
		"\t- Pillar: Pillar 1 | Priority: P0",
		"- [ ] **Waiting on legal to approve the MSA** ^task-20260112-003",
		"\t- Pillar: Pillar 1 | Priority: P0",
		"- [ ] **Schedule design review for onboarding flow** ^task-20260112-004",
		"\t- Pillar: Pillar 2 | Priority: P1",
		"- [x] **Send January invoices** ^task-20260112-005 ✅ 2026-01-13 09:00",
		"\t- Pillar: Pillar 1 | Priority: P1",
	)
	e := newEngine(t, v)
	ctx := context.Background()

	t.Run("focus skips blocked and orders by priority", func(t *testing.T) {
		focus, err := e.SuggestFocus(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, 4, focus.TotalActive)
		require.Len(t, focus.Suggestions, 2)
		assert.Equal(t, "Close the Initech security review", focus.Suggestions[0].Title)
		assert.Equal(t, "Critical priority", focus.Suggestions[0].Reason)
		assert.Equal(t, 100, focus.Suggestions[0].Score)
		assert.Equal(t, "Schedule design review for onboarding flow", focus.Suggestions[1].Title)
		assert.Equal(t, "Pillar 2", focus.Suggestions[1].Pillar)
	})

	t.Run("blocked by title hint", func(t *testing.T) {
		blockedList, err := e.BlockedTasks(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, blockedList.Count)
		assert.Equal(t, "task-20260112-003", blockedList.Tasks[0].AnchorID)
	})

	t.Run("system status", func(t *testing.T) {
		st, err := e.SystemStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, 5, st.TotalTasks)
		assert.Equal(t, 4, st.ActiveTasks)
		assert.Equal(t, 1, st.CompletedTasks)
		assert.Equal(t, 2, st.ByPriority[tasks.P0])
		assert.Equal(t, 3, st.ByPillar["pillar_1"])
		assert.Equal(t, 4, st.BySource[tasks.SourceTasks])
		assert.Equal(t, 1, st.BlockedTasks)
		assert.True(t, st.Balanced)
		assert.False(t, st.DemoMode)
		assert.True(t, strings.HasPrefix(st.TimeInsight, "Morning"))
	})

	t.Run("pillar summary", func(t *testing.T) {
		sum, err := e.PillarSummary(ctx)
		require.NoError(t, err)
		require.Len(t, sum.Pillars, 3)
		assert.Equal(t, 3, sum.Pillars[0].TaskCount)
		assert.Equal(t, 2, sum.Pillars[0].ByPriority[tasks.P0])
		assert.Equal(t, 1, sum.Pillars[1].TaskCount)
		assert.Zero(t, sum.Pillars[2].TaskCount)
		assert.Zero(t, sum.Unassigned)
		assert.Contains(t, sum.Assessment, "Consider balancing")
	})

	t.Run("limit overage is reported", func(t *testing.T) {
		strict := am.DefaultStrategy()
		strict.Limits["P0"] = 1
		cfg, err := am.Defaults(v.Root)
		require.NoError(t, err)
		e2, err := New(Options{Config: cfg, Strategy: strict, Now: testvault.Now})
		require.NoError(t, err)

		report, err := e2.CheckPriorityLimits(ctx)
		require.NoError(t, err)
		assert.False(t, report.Balanced)
		assert.Equal(t, []tasks.Overage{{Priority: tasks.P0, Current: 2, Limit: 1, ExceededBy: 1}}, report.Alerts)

		st, err := e2.SystemStatus(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"P0 has 2 tasks (limit: 1)"}, st.PriorityAlerts)
	})
}

func TestSystemStatusCountsCopiesOnce(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Next Week",
		"- [ ] **Close the Initech security review** ^task-20260112-002",
		"\t- Pillar: Pillar 1 | Priority: P0",
		"- [x] **Send January invoices** ^task-20260112-005 ✅ 2026-01-13 09:00",
		"\t- Pillar: Pillar 1 | Priority: P1",
	)
	v.Lines("Inbox/Week Priorities.md",
		"# Week Priorities",
		"- [ ] **Close the Initech security review** ^task-20260112-002",
	)
	e := newEngine(t, v)

	st, err := e.SystemStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalTasks)
	assert.Equal(t, 1, st.ActiveTasks)
	assert.Equal(t, 1, st.CompletedTasks)
	assert.Equal(t, 1, st.ByPriority[tasks.P0])
	assert.Equal(t, 1, st.ByPillar["pillar_1"])
	assert.Equal(t, 1, st.BySource[tasks.SourceTasks])
	assert.Equal(t, 1, st.BySource[tasks.SourceWeekPriorities], "every copy counts toward its source")
}

func TestProcessInbox(t *testing.T) {
	v := testvault.New(t)
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## Next Week",
		"- [ ] **Email Sarah about the Q1 budget** ^task-20260114-001",
	)
	e := newEngine(t, v)
	ctx := context.Background()
	items := []string{
		"Email Sarah about Q1 budget",
		"fix bug",
		"Draft the partner enablement guide for Q2 launch",
		"   ",
	}

	res, err := e.ProcessInbox(ctx, InboxRequest{Items: items})
	require.NoError(t, err)
	assert.Equal(t, 3, res.Summary.TotalItems)
	require.Len(t, res.PotentialDuplicates, 1)
	assert.Equal(t, "merge", res.PotentialDuplicates[0].RecommendedAction)
	require.Len(t, res.NeedsClarification, 1)
	assert.Equal(t, "fix bug", res.NeedsClarification[0].Item)
	require.Len(t, res.NewTasks, 1)
	assert.Equal(t, tasks.P2, res.NewTasks[0].SuggestedPriority)
	assert.Empty(t, res.AutoCreated)
	assert.Len(t, res.Summary.Recommendations, 2)
	assert.NotContains(t, v.Read(tasksFile), "partner enablement")

	res, err = e.ProcessInbox(ctx, InboxRequest{Items: items, AutoCreate: true})
	require.NoError(t, err)
	require.Len(t, res.AutoCreated, 1)
	assert.Equal(t, "task-20260115-001", res.AutoCreated[0].AnchorID)
	assert.Contains(t, v.Read(tasksFile), "**Draft the partner enablement guide for Q2 launch** ^task-20260115-001")

	_, err = e.ProcessInbox(ctx, InboxRequest{})
	assert.Equal(t, errors.ReasonInvalidRequest, rejection(t, err).Code)
}

func TestCompanyOperations(t *testing.T) {
	v := testvault.New(t)
	v.Person("Jane Doe", "Acme Corp", "CTO")
	v.Lines("Inbox/Meetings/2026-01-15 - Renewal call.md", "# Renewal call", "", "jane@acme.com joined")
	e := newEngine(t, v)
	ctx := context.Background()

	created, err := e.CreateCompany(ctx, relations.NewCompany{Name: "Acme Corp", Domains: []string{"acme.com"}})
	require.NoError(t, err)
	assert.Equal(t, "Active/Relationships/Companies/Acme_Corp.md", created.Path)

	_, err = e.CreateCompany(ctx, relations.NewCompany{Name: "Acme Corp"})
	assert.Equal(t, errors.ReasonConflict, rejection(t, err).Code)

	refreshed, err := e.RefreshCompany(ctx, "Acme_Corp")
	require.NoError(t, err)
	assert.Equal(t, 1, refreshed.ContactsFound)
	assert.GreaterOrEqual(t, refreshed.MeetingsFound, 1)
	assert.Contains(t, v.Read(created.Path), "| Renewal call |")

	list, err := e.ListCompanies(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "Prospect", list.Companies[0].Stage)

	_, err = e.RefreshCompany(ctx, "Globex")
	assert.Equal(t, errors.ReasonNotFound, rejection(t, err).Code)

	_, err = e.SyncTaskRefs(ctx, "People/External/Nobody.md")
	assert.Equal(t, errors.ReasonNotFound, rejection(t, err).Code)
}

func TestCreateTaskSyncsLinkedPages(t *testing.T) {
	v := testvault.New(t)
	v.Person("Jane Doe", "Acme Corp", "CTO")
	e := newEngine(t, v)

	res, err := e.CreateTask(context.Background(), CreateTaskRequest{
		Title:   "Send Jane the revised rollout plan",
		Pillar:  "pillar_1",
		Account: "Active/Relationships/Companies/Acme_Corp",
		People:  []string{"People/External/Jane_Doe.md", "People/External/Jane_Doe"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Active/Relationships/Companies/Acme_Corp.md", "People/External/Jane_Doe.md"}, res.References)
	assert.Equal(t, []string{"People/External/Jane_Doe.md"}, res.SyncedPages, "missing company page is skipped")
	assert.Contains(t, v.Read("People/External/Jane_Doe.md"), "| ⏳ | Send Jane the revised rollout plan | P2 |")
}

func TestPagePathsMustStayInsideVault(t *testing.T) {
	v := testvault.New(t)
	e := newEngine(t, v)
	ctx := context.Background()

	for _, page := range []string{"../outside.md", "/etc/hosts"} {
		_, err := e.SyncTaskRefs(ctx, page)
		assert.Equal(t, errors.ReasonInvalidRequest, rejection(t, err).Code, page)
	}

	_, err := e.RefreshCompany(ctx, "Active/../../outside")
	assert.Equal(t, errors.ReasonInvalidRequest, rejection(t, err).Code)
}

func TestDemoModeRedirectsWrites(t *testing.T) {
	v := testvault.New(t)
	v.Write("System/user-profile.yaml", "demo_mode: true\n")
	v.Lines("System/Demo/03-Tasks/Tasks.md", "# Tasks", "", "## Next Week", "- [ ] **Demo task for the walkthrough** ^task-20260115-004")
	e := newEngine(t, v)

	res, err := e.CreateTask(context.Background(), CreateTaskRequest{Title: "Prepare the sandbox data refresh", Pillar: "pillar_1"})
	require.NoError(t, err)
	assert.Equal(t, "task-20260115-005", res.AnchorID)
	assert.False(t, v.Exists(tasksFile))
	assert.Contains(t, v.Read("System/Demo/03-Tasks/Tasks.md"), "^task-20260115-005")

	st, err := e.SystemStatus(context.Background())
	require.NoError(t, err)
	assert.True(t, st.DemoMode)
	assert.Equal(t, 2, st.ActiveTasks)
}

func TestSyncLinkedPages(t *testing.T) {
	v := testvault.New(t)
	v.Person("Jane Doe", "Acme Corp", "CTO")
	v.Lines(tasksFile,
		"# Tasks",
		"",
		"## This Week",
		"- [ ] **Review the Acme security questionnaire** | People/External/Jane_Doe.md ^task-20260114-001",
		"\t- Pillar: Pillar 1 | Priority: P1",
		"- [ ] **Book the Acme onsite with Jane** | People/External/Jane_Doe.md ^task-20260114-002",
		"- [ ] **Follow up with the Initech buyer** | People/External/Nobody.md ^task-20260114-003",
	)
	e := newEngine(t, v)

	res, err := e.SyncLinkedPages(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"People/External/Jane_Doe.md"}, res.Pages)
	require.Len(t, res.Failed, 1)
	assert.Equal(t, "People/External/Nobody.md", res.Failed[0].File)

	page := v.Read("People/External/Jane_Doe.md")
	assert.Contains(t, page, "| ⏳ | Review the Acme security questionnaire | P1 |")
	assert.Contains(t, page, "| ⏳ | Book the Acme onsite with Jane | P2 |")
}
