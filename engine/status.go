package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/sym"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/xref"
)

// UpdateStatusRequest names a task by anchor or, failing that, by a title
// substring. Status is a name or a one-letter code (n, s, b, d).
type UpdateStatusRequest struct {
	AnchorID   string `json:"task_id,omitempty"`
	TitleQuery string `json:"task_title,omitempty"`
	Status     string `json:"status"`
}

// UpdateStatusResult reports every location touched by a status change
type UpdateStatusResult struct {
	Success        bool                `json:"success"`
	AnchorID       string              `json:"task_id,omitempty"`
	Title          string              `json:"title"`
	Status         tasks.Status        `json:"status"`
	CompletedAt    string              `json:"completed_at,omitempty"`
	InstancesFound int                 `json:"instances_found"`
	UpdatedFiles   []tasks.Location    `json:"updated_files"`
	FailedFiles    []tasks.FileFailure `json:"failed_files,omitempty"`
	Duplicates     []string            `json:"duplicate_instances,omitempty"`
	SyncedPages    []string            `json:"synced_pages"`
	FailedPages    []tasks.FileFailure `json:"failed_pages,omitempty"`
	Note           string              `json:"note,omitempty"`
}

const legacyNote = "Task has no anchor: only its source line was updated. New tasks carry anchors for multi-location sync."

// UpdateTaskStatus changes a task's status at every location bearing its anchor,
// then re-syncs the pages the task links. Done ticks the checkbox and stamps the
// completion time; started and blocked are recorded on the metadata line.
func (e *Engine) UpdateTaskStatus(ctx context.Context, req UpdateStatusRequest) (*UpdateStatusResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "update_task_status")

	status, err := tasks.ParseStatus(req.Status)
	if err != nil {
		return nil, reject(err, nil)
	}

	anchor := strings.TrimSpace(req.AnchorID)
	query := strings.TrimSpace(req.TitleQuery)
	if anchor == "" && query == "" {
		return nil, reject(errors.WithHint(
			errors.NewInvalidRequestError("either task_id or task_title is required"),
			"pass the task's anchor (task-YYYYMMDD-NNN) for a precise update",
		), nil)
	}

	if anchor == "" {
		all, err := s.loadTasks()
		if err != nil {
			return nil, reject(err, nil)
		}
		t, ok := findByTitle(all, query)
		if !ok {
			return nil, reject(errors.WithHint(
				errors.NewNotFoundError("no task found matching %q", query),
				"list tasks to find the exact title or anchor",
			), nil)
		}
		if t.AnchorID == "" {
			return e.updateLegacy(s, t, status)
		}
		anchor = t.AnchorID
	}

	return e.updateAnchored(s, anchor, status)
}

// findByTitle returns the first task whose title contains query, preferring active ones.
func findByTitle(all []tasks.Task, query string) (tasks.Task, bool) {
	q := strings.ToLower(query)
	var fallback *tasks.Task
	for i, t := range all {
		if !strings.Contains(strings.ToLower(t.Title), q) {
			continue
		}
		if t.Active() {
			return t, true
		}
		if fallback == nil {
			fallback = &all[i]
		}
	}
	if fallback != nil {
		return *fallback, true
	}
	return tasks.Task{}, false
}

func (e *Engine) updateAnchored(s *scope, anchor string, status tasks.Status) (*UpdateStatusResult, error) {
	completed := status == tasks.StatusDone
	report, err := tasks.UpdateEverywhere(s.ctx, s.layout, anchor, completed, s.now)
	if err != nil {
		return nil, reject(err, report)
	}

	result := &UpdateStatusResult{
		Success:        true,
		AnchorID:       anchor,
		Title:          report.Title,
		Status:         status,
		CompletedAt:    report.CompletedAt,
		InstancesFound: report.InstancesFound,
		UpdatedFiles:   append([]tasks.Location{}, report.Updated...),
		FailedFiles:    report.Failed,
		Duplicates:     report.Duplicates,
	}

	// metadata lines shift what follows them, so walk each file bottom-up
	locs := append(append([]tasks.Location{}, report.Updated...), report.Unchanged...)
	sort.SliceStable(locs, func(i, j int) bool {
		if locs[i].File != locs[j].File {
			return locs[i].File < locs[j].File
		}
		return locs[i].Line > locs[j].Line
	})
	updated := make(map[tasks.Location]bool, len(report.Updated))
	for _, loc := range report.Updated {
		updated[loc] = true
	}
	for _, loc := range locs {
		changed, err := tasks.WriteStatusMeta(s.layout.Abs(loc.File), loc.Line, status)
		if err != nil {
			s.log.Warnw("Could not record status", logger.FieldFile, loc.File, logger.FieldLine, loc.Line, logger.FieldError, err)
			result.FailedFiles = append(result.FailedFiles, tasks.FileFailure{File: loc.File, Error: err.Error()})
			continue
		}
		if changed && !updated[loc] {
			result.UpdatedFiles = append(result.UpdatedFiles, loc)
		}
	}

	e.propagate(s, anchor, result)
	s.log.Infow("Task status updated",
		logger.FieldAnchor, anchor,
		"status", status,
		"instances", result.InstancesFound,
		"updated", len(result.UpdatedFiles))
	return result, nil
}

func (e *Engine) updateLegacy(s *scope, t tasks.Task, status tasks.Status) (*UpdateStatusResult, error) {
	path := s.layout.Abs(t.SourceFile)
	completed := status == tasks.StatusDone

	result := &UpdateStatusResult{
		Success:        true,
		Title:          t.Title,
		Status:         status,
		InstancesFound: 1,
		UpdatedFiles:   []tasks.Location{},
		Note:           legacyNote,
	}

	ticked, err := tasks.RetickLine(path, t.LineNumber, completed, s.now)
	if err != nil {
		return nil, reject(err, nil)
	}
	noted, err := tasks.WriteStatusMeta(path, t.LineNumber, status)
	if err != nil {
		return nil, reject(err, nil)
	}
	if ticked || noted {
		result.UpdatedFiles = append(result.UpdatedFiles, tasks.Location{File: t.SourceFile, Line: t.LineNumber})
	}
	if completed {
		result.CompletedAt = s.now.Format(sym.StampLayout)
	}

	e.propagate(s, t.Title, result)
	s.log.Infow("Legacy task status updated", logger.FieldFile, t.SourceFile, logger.FieldLine, t.LineNumber, "status", status)
	return result, nil
}

func (e *Engine) propagate(s *scope, query string, result *UpdateStatusResult) {
	result.SyncedPages = []string{}
	prop, err := xref.PropagateStatus(s.ctx, s.layout, query, s.now)
	if err != nil {
		s.log.Warnw("Could not propagate status to linked pages", logger.FieldQuery, query, logger.FieldError, err)
		result.FailedPages = append(result.FailedPages, tasks.FileFailure{File: s.layout.Rel(s.layout.Tasks()), Error: err.Error()})
		return
	}
	result.SyncedPages = prop.Synced
	result.FailedPages = prop.Failed
}
