// Package tasks models tasks as they live in the vault's Markdown: the task line
// grammar, the document parser, anchor allocation and propagation, and WIP limits.
//
// A task has no storage of its own. Its lines are the record, and the anchor
// (^task-YYYYMMDD-NNN) joins the copies kept on different pages.
package tasks

import (
	"strings"

	"github.com/teranos/dex/errors"
)

// Status of a task. Done is carried by the checkbox; started and blocked by the
// "Status:" metadata continuation line.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusStarted    Status = "started"
	StatusBlocked    Status = "blocked"
	StatusDone       Status = "done"
)

// Statuses in workflow order
var Statuses = []Status{StatusNotStarted, StatusStarted, StatusBlocked, StatusDone}

var statusCodes = map[string]Status{
	"n": StatusNotStarted,
	"s": StatusStarted,
	"b": StatusBlocked,
	"d": StatusDone,
}

// ParseStatus accepts a status name or its one-letter code (n, s, b, d)
func ParseStatus(s string) (Status, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if st, ok := statusCodes[v]; ok {
		return st, nil
	}
	for _, st := range Statuses {
		if string(st) == v {
			return st, nil
		}
	}
	return "", errors.NewInvalidRequestError("invalid status %q: must be one of n, s, b, d or not_started, started, blocked, done", s)
}

// Priority tier, P0 most urgent
type Priority string

const (
	P0 Priority = "P0"
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
)

// Priorities in descending urgency
var Priorities = []Priority{P0, P1, P2, P3}

// ParsePriority validates a tier name
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToUpper(strings.TrimSpace(s)))
	for _, known := range Priorities {
		if p == known {
			return p, nil
		}
	}
	return "", errors.NewInvalidRequestError("invalid priority %q: must be one of P0, P1, P2, P3", s)
}

// Task sources
const (
	SourceTasks          = "tasks"
	SourceWeekPriorities = "week_priorities"
)

// Task is one parsed task line with its continuation lines
type Task struct {
	ID             string   `json:"id"`                // anchor, or temp-N for legacy lines
	AnchorID       string   `json:"task_id,omitempty"` // empty for legacy lines
	Title          string   `json:"title"`
	RawTitle       string   `json:"raw_title"`
	Section        string   `json:"section,omitempty"`
	Status         Status   `json:"status"`
	Completed      bool     `json:"completed"`
	CompletedAt    string   `json:"completed_at,omitempty"`
	Priority       Priority `json:"priority"`
	PriorityGuess  bool     `json:"priority_guessed,omitempty"` // no Priority: metadata, guessed from the title
	Pillar         string   `json:"pillar,omitempty"`
	SourceFile     string   `json:"source_file"`
	Source         string   `json:"source,omitempty"`
	LineNumber     int      `json:"line_number"`
	FileReferences []string `json:"file_references,omitempty"`
	Context        []string `json:"context,omitempty"`
}

// Active reports whether the task counts toward WIP
func (t Task) Active() bool { return !t.Completed }
