// Package xref keeps the denormalized "Related Tasks" sections of linked pages in
// step with the task list. Sections are rebuilt from scratch on every sync.
package xref

import (
	"context"
	"strings"
	"time"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/sym"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/vault"
)

// SectionTitle is the heading of the derived section
const SectionTitle = "Related Tasks"

// TaskRef summarizes a task that references a page
type TaskRef struct {
	Title     string         `json:"title"`
	Completed bool           `json:"completed"`
	Priority  tasks.Priority `json:"priority"`
	Section   string         `json:"section,omitempty"`
	Line      int            `json:"line_number"`
	Anchor    string         `json:"task_id,omitempty"`
}

// SyncResult is the outcome of SyncRefs
type SyncResult struct {
	Success    bool      `json:"success"`
	Page       string    `json:"page"`
	TasksFound int       `json:"tasks_found"`
	Tasks      []TaskRef `json:"tasks"`
	Changed    bool      `json:"changed"`
}

// FindTasksForPage scans the task list for lines that reference pagePath, either
// through a reference token containing the page name or path, or by naming the
// page in the text. Priority comes from the metadata line, P2 when absent.
func FindTasksForPage(l vault.Layout, pagePath string) ([]TaskRef, error) {
	content, err := vault.Read(l.Tasks())
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, nil
		}
		return nil, err
	}

	lines := strings.Split(content, "\n")
	var out []TaskRef
	for _, t := range tasks.ParseDocument(l.Rel(l.Tasks()), content, nil) {
		if !References(lines[t.LineNumber-1], pagePath) {
			continue
		}
		p := t.Priority
		if t.PriorityGuess {
			p = tasks.P2
		}
		out = append(out, TaskRef{
			Title:     t.Title,
			Completed: t.Completed,
			Priority:  p,
			Section:   t.Section,
			Line:      t.LineNumber,
			Anchor:    t.AnchorID,
		})
	}
	return out, nil
}

// References reports whether a task line points at pagePath. Matching is
// case-insensitive; underscores in the page name also match spaces.
func References(line, pagePath string) bool {
	stem := strings.ToLower(vault.Stem(pagePath))
	path := strings.ToLower(strings.TrimSuffix(vault.WithMD(pagePath), ".md"))
	if stem == "" {
		return false
	}

	for _, ref := range tasks.ExtractRefs(line) {
		r := strings.ToLower(ref)
		if strings.Contains(r, stem) || strings.Contains(r, path) {
			return true
		}
	}

	lower := strings.ToLower(line)
	return strings.Contains(lower, stem) || strings.Contains(lower, strings.ReplaceAll(stem, "_", " "))
}

// RenderSection builds the Related Tasks block for refs, stamped with now.
func RenderSection(refs []TaskRef, now time.Time) string {
	var b strings.Builder
	b.WriteString("## " + SectionTitle + "\n\n")
	b.WriteString("*Synced from " + vault.TasksFile + " at " + now.Format(sym.StampLayout) + "*\n\n")
	if len(refs) == 0 {
		b.WriteString("*No related tasks*\n")
		return b.String()
	}
	b.WriteString("| Status | Task | Priority |\n")
	b.WriteString("|--------|------|----------|\n")
	for _, r := range refs {
		b.WriteString("| " + sym.CompletionGlyph(r.Completed) + " | " + EscapeCell(r.Title) + " | " + string(r.Priority) + " |\n")
	}
	return b.String()
}

// EscapeCell makes text safe inside a Markdown table cell
func EscapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// SyncRefs rebuilds the Related Tasks section of pagePath. The page must exist.
func SyncRefs(ctx context.Context, l vault.Layout, pagePath string, now time.Time) (*SyncResult, error) {
	log := logger.LoggerFromContext(ctx)

	page := vault.WithMD(pagePath)
	abs, err := l.Resolve(page)
	if err != nil {
		return nil, err
	}
	content, err := vault.Read(abs)
	if err != nil {
		if errors.IsNotFoundError(err) {
			return nil, errors.WithHint(
				errors.NewNotFoundError("page not found: %s", page),
				"use a vault-relative path such as People/External/Jane_Doe.md",
			)
		}
		return nil, err
	}

	refs, err := FindTasksForPage(l, page)
	if err != nil {
		return nil, err
	}

	updated := vault.UpsertSection(content, SectionTitle, RenderSection(refs, now))
	changed := updated != content
	if changed {
		if err := vault.Write(abs, updated); err != nil {
			return nil, err
		}
	}

	log.Debugw("Synced related tasks", logger.FieldPage, l.Rel(abs), logger.FieldCount, len(refs), "changed", changed)
	return &SyncResult{
		Success:    true,
		Page:       l.Rel(abs),
		TasksFound: len(refs),
		Tasks:      refs,
		Changed:    changed,
	}, nil
}

// PropagateResult lists the pages re-synced after a status change
type PropagateResult struct {
	Synced []string            `json:"synced_pages"`
	Failed []tasks.FileFailure `json:"failed_pages,omitempty"`
}

// PropagateStatus finds the first task-list line carrying the anchor or
// containing the title, and re-syncs every page it references. A page that
// cannot be synced is logged and reported; the others still are.
func PropagateStatus(ctx context.Context, l vault.Layout, query string, now time.Time) (*PropagateResult, error) {
	log := logger.LoggerFromContext(ctx)
	result := &PropagateResult{Synced: []string{}}

	q := strings.TrimSpace(query)
	if q == "" {
		return result, nil
	}

	content, err := vault.Read(l.Tasks())
	if err != nil {
		if errors.IsNotFoundError(err) {
			return result, nil
		}
		return nil, err
	}

	lower := strings.ToLower(q)
	for _, line := range strings.Split(content, "\n") {
		if !tasks.IsTaskLine(line) {
			continue
		}
		if tasks.AnchorOf(line) != q && !strings.Contains(strings.ToLower(line), lower) {
			continue
		}
		for _, ref := range tasks.ExtractRefs(line) {
			if _, err := SyncRefs(ctx, l, ref, now); err != nil {
				log.Warnw("Could not sync referenced page", logger.FieldPage, ref, logger.FieldError, err)
				result.Failed = append(result.Failed, tasks.FileFailure{File: ref, Error: err.Error()})
				continue
			}
			result.Synced = append(result.Synced, ref)
		}
		break
	}
	return result, nil
}
