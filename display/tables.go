package display

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"

	"github.com/teranos/dex/engine"
	"github.com/teranos/dex/sym"
	"github.com/teranos/dex/tasks"
)

// table renders rows under header; an empty table renders as empty.
func table(header []string, rows [][]string) (string, error) {
	if len(rows) == 0 {
		return "", nil
	}
	data := pterm.TableData{header}
	data = append(data, rows...)
	return pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
}

func statusGlyph(t tasks.Task) string {
	if t.Completed {
		return sym.Done
	}
	if g := sym.StatusGlyph(string(t.Status)); g != "" {
		return g
	}
	return sym.Open
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

// Tasks renders a task list
func Tasks(list *engine.TaskList) (string, error) {
	if list.Count == 0 {
		return pterm.Gray("No tasks match."), nil
	}
	rows := make([][]string, 0, len(list.Tasks))
	for _, t := range list.Tasks {
		rows = append(rows, []string{
			statusGlyph(t),
			string(t.Priority),
			t.Title,
			orDash(t.Pillar),
			orDash(t.Section),
			orDash(t.AnchorID),
		})
	}
	out, err := table([]string{"", "Pri", "Task", "Pillar", "Section", "ID"}, rows)
	if err != nil {
		return "", err
	}
	return out + "\n" + pterm.Gray(fmt.Sprintf("%d task(s)", list.Count)), nil
}

// Created renders the outcome of a task creation
func Created(res *engine.CreateTaskResult) string {
	var b strings.Builder
	b.WriteString(pterm.LightGreen("✓ ") + res.Message + "\n")
	b.WriteString(fmt.Sprintf("  %s %s · %s\n", pterm.Gray("→"), res.Pillar, res.Priority))
	for _, p := range res.SyncedPages {
		b.WriteString(fmt.Sprintf("  %s synced %s\n", pterm.Gray("→"), p))
	}
	return strings.TrimRight(b.String(), "\n")
}

// StatusUpdate renders the outcome of a status change
func StatusUpdate(res *engine.UpdateStatusResult) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("%s %s → %s\n", pterm.LightGreen("✓"), res.Title, res.Status))
	for _, loc := range res.UpdatedFiles {
		b.WriteString(fmt.Sprintf("  %s %s:%d\n", pterm.Gray("→"), loc.File, loc.Line))
	}
	for _, f := range res.FailedFiles {
		b.WriteString(fmt.Sprintf("  %s %s: %s\n", pterm.LightRed("✗"), f.File, f.Error))
	}
	for _, p := range res.SyncedPages {
		b.WriteString(fmt.Sprintf("  %s synced %s\n", pterm.Gray("→"), p))
	}
	if res.Note != "" {
		b.WriteString("  " + pterm.Yellow(res.Note) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func priorityRows(counts map[tasks.Priority]int, limits map[string]int) [][]string {
	rows := make([][]string, 0, len(tasks.Priorities))
	for _, p := range tasks.Priorities {
		limit := "-"
		if n, ok := limits[string(p)]; ok {
			limit = strconv.Itoa(n)
		}
		rows = append(rows, []string{string(p), strconv.Itoa(counts[p]), limit})
	}
	return rows
}

// Limits renders the WIP limit report
func Limits(r *engine.LimitReport) (string, error) {
	out, err := table([]string{"Priority", "Active", "Limit"}, priorityRows(r.Counts, r.Limits))
	if err != nil {
		return "", err
	}
	if r.Balanced {
		return out + "\n" + pterm.LightGreen("Within limits"), nil
	}
	for _, a := range r.Alerts {
		out += "\n" + pterm.LightRed(fmt.Sprintf("%s over limit by %d (%d/%d)", a.Priority, a.ExceededBy, a.Current, a.Limit))
	}
	return out, nil
}

// SystemStatus renders the status snapshot
func SystemStatus(st *engine.SystemStatus) (string, error) {
	var b strings.Builder
	if st.DemoMode {
		b.WriteString(pterm.Yellow("Demo mode: reading and writing System/Demo") + "\n")
	}
	b.WriteString(fmt.Sprintf("%d active · %d completed · %d blocked\n", st.ActiveTasks, st.CompletedTasks, st.BlockedTasks))

	out, err := table([]string{"Priority", "Active"}, func() [][]string {
		rows := make([][]string, 0, len(tasks.Priorities))
		for _, p := range tasks.Priorities {
			rows = append(rows, []string{string(p), strconv.Itoa(st.ByPriority[p])})
		}
		return rows
	}())
	if err != nil {
		return "", err
	}
	b.WriteString(out)

	pillars := make([]string, 0, len(st.ByPillar))
	for id := range st.ByPillar {
		pillars = append(pillars, id)
	}
	sort.Strings(pillars)
	for _, id := range pillars {
		b.WriteString(fmt.Sprintf("\n  %s %s: %d", pterm.Gray("→"), id, st.ByPillar[id]))
	}
	for _, a := range st.PriorityAlerts {
		b.WriteString("\n" + pterm.LightRed(a))
	}
	b.WriteString("\n" + pterm.Gray(st.TimeInsight))
	return b.String(), nil
}

// Focus renders focus suggestions
func Focus(f *engine.FocusList) (string, error) {
	if len(f.Suggestions) == 0 {
		return pterm.Gray("Nothing to focus on."), nil
	}
	rows := make([][]string, 0, len(f.Suggestions))
	for i, s := range f.Suggestions {
		rows = append(rows, []string{strconv.Itoa(i + 1), string(s.Priority), s.Title, s.Pillar, s.Reason})
	}
	return table([]string{"#", "Pri", "Task", "Pillar", "Why"}, rows)
}

// Blocked renders the blocked task list
func Blocked(l *engine.BlockedList) (string, error) {
	if l.Count == 0 {
		return pterm.LightGreen("Nothing blocked."), nil
	}
	return Tasks(&engine.TaskList{Tasks: l.Tasks, Count: l.Count})
}

// Pillars renders the pillar summary
func Pillars(r *engine.PillarReport) (string, error) {
	rows := make([][]string, 0, len(r.Pillars)+1)
	for _, p := range r.Pillars {
		rows = append(rows, []string{p.Name, strconv.Itoa(p.TaskCount), strconv.Itoa(p.ByPriority[tasks.P0]), strconv.Itoa(p.ByPriority[tasks.P1])})
	}
	if r.Unassigned > 0 {
		rows = append(rows, []string{pterm.Gray("unassigned"), strconv.Itoa(r.Unassigned), "", ""})
	}
	out, err := table([]string{"Pillar", "Active", "P0", "P1"}, rows)
	if err != nil {
		return "", err
	}
	return out + "\n" + r.Assessment, nil
}

// Inbox renders an inbox triage
func Inbox(r *engine.InboxResult) string {
	var b strings.Builder
	for _, c := range r.NewTasks {
		b.WriteString(fmt.Sprintf("%s %s %s\n", pterm.LightGreen("+"), c.Item, pterm.Gray("("+string(c.SuggestedPriority)+")")))
	}
	for _, d := range r.PotentialDuplicates {
		b.WriteString(fmt.Sprintf("%s %s %s %q\n", pterm.Yellow("≈"), d.Item, pterm.Gray(d.RecommendedAction), d.Similar[0].Title))
	}
	for _, c := range r.NeedsClarification {
		b.WriteString(fmt.Sprintf("%s %s\n", pterm.LightRed("?"), c.Item))
		for _, q := range c.Questions {
			b.WriteString(fmt.Sprintf("    %s\n", pterm.Gray(q)))
		}
	}
	for _, c := range r.AutoCreated {
		b.WriteString(fmt.Sprintf("%s created %s\n", pterm.LightGreen("✓"), c.AnchorID))
	}
	for _, f := range r.AutoCreateFailed {
		b.WriteString(fmt.Sprintf("%s %s: %s\n", pterm.LightRed("✗"), f.Item, f.Rejection.Message))
	}
	for _, rec := range r.Summary.Recommendations {
		b.WriteString(pterm.Gray(rec) + "\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// Companies renders the company list
func Companies(l *engine.CompanyList) (string, error) {
	if l.Count == 0 {
		return pterm.Gray("No company pages."), nil
	}
	rows := make([][]string, 0, len(l.Companies))
	for _, c := range l.Companies {
		rows = append(rows, []string{c.Name, orDash(c.Stage), orDash(c.Industry), strconv.Itoa(c.Contacts), c.Path})
	}
	return table([]string{"Company", "Stage", "Industry", "Contacts", "Page"}, rows)
}

// Rejection renders a structured failure
func Rejection(r *engine.Rejection) string {
	out := pterm.LightRed("✗ ") + r.Message + pterm.Gray(" ["+r.Code+"]")
	if r.Suggestion != "" {
		out += "\n  " + pterm.Yellow(r.Suggestion)
	}
	switch d := r.Details.(type) {
	case engine.VagueDetails:
		for _, q := range d.Questions {
			out += "\n    " + q
		}
	case engine.DuplicateDetails:
		for _, m := range d.Similar {
			out += fmt.Sprintf("\n    %.2f %s", m.Score, m.Title)
		}
	}
	return out
}
