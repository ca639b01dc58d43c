package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/teranos/dex/am"
	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/tasks/classify"
)

// ListFilter narrows ListTasks. Empty fields match everything.
type ListFilter struct {
	Pillar      string `json:"pillar,omitempty"`   // id or name
	Priority    string `json:"priority,omitempty"` // P0..P3
	Status      string `json:"status,omitempty"`   // name or n/s/b/d
	Source      string `json:"source,omitempty"`   // tasks | week_priorities
	IncludeDone bool   `json:"include_done,omitempty"`
}

// TaskList is the result of ListTasks
type TaskList struct {
	Tasks   []tasks.Task `json:"tasks"`
	Count   int          `json:"count"`
	Filters ListFilter   `json:"filters_applied"`
}

// ListTasks returns the tasks of the task list and the week priorities that
// match f. Completed tasks are left out unless IncludeDone is set or the status
// filter asks for done.
func (e *Engine) ListTasks(ctx context.Context, f ListFilter) (*TaskList, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "list_tasks")

	pillar := strings.TrimSpace(f.Pillar)
	if p, ok := s.strategy.Pillar(pillar); ok {
		pillar = p.ID
	}
	var priority tasks.Priority
	if strings.TrimSpace(f.Priority) != "" {
		p, err := tasks.ParsePriority(f.Priority)
		if err != nil {
			return nil, reject(err, nil)
		}
		priority = p
	}
	var status tasks.Status
	if strings.TrimSpace(f.Status) != "" {
		st, err := tasks.ParseStatus(f.Status)
		if err != nil {
			return nil, reject(err, nil)
		}
		status = st
	}
	source := strings.TrimSpace(f.Source)
	if source != "" && source != tasks.SourceTasks && source != tasks.SourceWeekPriorities {
		return nil, reject(errors.NewInvalidRequestError("invalid source %q: must be %s or %s",
			f.Source, tasks.SourceTasks, tasks.SourceWeekPriorities), nil)
	}

	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}

	out := make([]tasks.Task, 0, len(all))
	for _, t := range all {
		switch {
		case t.Completed && !f.IncludeDone && status != tasks.StatusDone:
		case pillar != "" && t.Pillar != pillar:
		case priority != "" && t.Priority != priority:
		case status != "" && t.Status != status:
		case source != "" && t.Source != source:
		default:
			out = append(out, t)
		}
	}
	return &TaskList{Tasks: out, Count: len(out), Filters: f}, nil
}

// SystemStatus is a snapshot of the whole task set. Copies of one anchored
// task count once everywhere except BySource, which counts every line.
type SystemStatus struct {
	TotalTasks     int                    `json:"total_tasks"`
	ActiveTasks    int                    `json:"active_tasks"`
	CompletedTasks int                    `json:"completed_tasks"`
	ByPriority     map[tasks.Priority]int `json:"by_priority"`
	ByPillar       map[string]int         `json:"by_pillar"`
	BySource       map[string]int         `json:"by_source"`
	BlockedTasks   int                    `json:"blocked_tasks"`
	PriorityAlerts []string               `json:"priority_alerts"`
	Balanced       bool                   `json:"balanced"`
	TimeInsight    string                 `json:"time_insight"`
	DemoMode       bool                   `json:"demo_mode"`
	PillarsSource  string                 `json:"pillars_source,omitempty"`
	Timestamp      time.Time              `json:"timestamp"`
}

// unassigned keys tasks without a pillar in the per-pillar reports
const unassigned = "unassigned"

// SystemStatus counts active tasks by priority, pillar and source and lists
// the tiers over their WIP limit.
func (e *Engine) SystemStatus(ctx context.Context) (*SystemStatus, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "get_system_status")
	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}
	distinct := tasks.Distinct(all)
	active := tasks.Distinct(tasks.Active(all))

	st := &SystemStatus{
		TotalTasks:     len(distinct),
		ActiveTasks:    len(active),
		CompletedTasks: len(distinct) - len(active),
		ByPriority:     tasks.CountActive(all),
		ByPillar:       make(map[string]int),
		BySource:       make(map[string]int),
		PriorityAlerts: []string{},
		TimeInsight:    timeInsight(s.now),
		DemoMode:       s.layout.Demo,
		PillarsSource:  s.strategy.Source,
		Timestamp:      s.now,
	}
	for _, t := range active {
		if t.Pillar == "" {
			st.ByPillar[unassigned]++
		} else {
			st.ByPillar[t.Pillar]++
		}
		if blocked(t) {
			st.BlockedTasks++
		}
	}
	for _, t := range tasks.Active(all) {
		st.BySource[t.Source]++
	}
	for _, o := range tasks.Overages(all, s.strategy.Limits) {
		st.PriorityAlerts = append(st.PriorityAlerts, fmt.Sprintf("%s has %d tasks (limit: %d)", o.Priority, o.Current, o.Limit))
	}
	st.Balanced = len(st.PriorityAlerts) == 0
	return st, nil
}

func timeInsight(now time.Time) string {
	switch h := now.Hour(); {
	case h >= 6 && h < 12:
		return "Morning: ideal for deep work and complex tasks"
	case h >= 12 && h < 14:
		return "Midday: good for meetings and collaboration"
	case h >= 14 && h < 17:
		return "Afternoon: suitable for admin and follow-ups"
	default:
		return "End of day: consider quick wins or planning"
	}
}

// LimitReport is the result of CheckPriorityLimits
type LimitReport struct {
	Counts   map[tasks.Priority]int `json:"priority_counts"`
	Limits   am.PriorityLimits      `json:"limits"`
	Alerts   []tasks.Overage        `json:"alerts"`
	Balanced bool                   `json:"balanced"`
}

// CheckPriorityLimits reports active counts per tier against the WIP limits.
func (e *Engine) CheckPriorityLimits(ctx context.Context) (*LimitReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "check_priority_limits")
	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}
	alerts := tasks.Overages(all, s.strategy.Limits)
	if alerts == nil {
		alerts = []tasks.Overage{}
	}
	return &LimitReport{
		Counts:   tasks.CountActive(all),
		Limits:   s.strategy.Limits,
		Alerts:   alerts,
		Balanced: len(alerts) == 0,
	}, nil
}

// BlockedList is the result of BlockedTasks
type BlockedList struct {
	Tasks []tasks.Task `json:"blocked_tasks"`
	Count int          `json:"count"`
}

func blocked(t tasks.Task) bool {
	return t.Status == tasks.StatusBlocked || classify.IsBlockedHint(t.Title)
}

// BlockedTasks lists active tasks marked blocked, or whose title says they are
// waiting on something.
func (e *Engine) BlockedTasks(ctx context.Context) (*BlockedList, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "get_blocked_tasks")
	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}
	out := []tasks.Task{}
	for _, t := range tasks.Active(all) {
		if blocked(t) {
			out = append(out, t)
		}
	}
	return &BlockedList{Tasks: out, Count: len(out)}, nil
}

// FocusSuggestion is one task SuggestFocus recommends
type FocusSuggestion struct {
	Title    string         `json:"title"`
	AnchorID string         `json:"task_id,omitempty"`
	Priority tasks.Priority `json:"priority"`
	Pillar   string         `json:"pillar"`
	Status   tasks.Status   `json:"status"`
	Score    int            `json:"score"`
	Reason   string         `json:"reason"`
}

// FocusList is the result of SuggestFocus
type FocusList struct {
	Suggestions []FocusSuggestion `json:"suggested_focus"`
	TotalActive int               `json:"total_active_tasks"`
}

var priorityScores = map[tasks.Priority]int{tasks.P0: 100, tasks.P1: 75, tasks.P2: 50, tasks.P3: 25}

// DefaultFocus is the number of suggestions when none is asked for
const DefaultFocus = 3

// SuggestFocus picks the n most urgent active tasks that are not blocked.
// Ties keep document order.
func (e *Engine) SuggestFocus(ctx context.Context, n int) (*FocusList, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "suggest_focus")
	if n <= 0 {
		n = DefaultFocus
	}
	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}

	active := tasks.Active(all)
	candidates := make([]tasks.Task, 0, len(active))
	for _, t := range active {
		if !blocked(t) {
			candidates = append(candidates, t)
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return priorityScores[candidates[i].Priority] > priorityScores[candidates[j].Priority]
	})
	if len(candidates) > n {
		candidates = candidates[:n]
	}

	out := &FocusList{Suggestions: []FocusSuggestion{}, TotalActive: len(active)}
	for _, t := range candidates {
		pillar := "Unassigned"
		if t.Pillar != "" {
			pillar = s.strategy.PillarName(t.Pillar)
		}
		out.Suggestions = append(out.Suggestions, FocusSuggestion{
			Title:    t.Title,
			AnchorID: t.AnchorID,
			Priority: t.Priority,
			Pillar:   pillar,
			Status:   t.Status,
			Score:    priorityScores[t.Priority],
			Reason:   focusReason(t.Priority),
		})
	}
	return out, nil
}

func focusReason(p tasks.Priority) string {
	switch p {
	case tasks.P0:
		return "Critical priority"
	case tasks.P1:
		return "High priority"
	default:
		return "Standard priority"
	}
}

// PillarStats is the active workload of one pillar
type PillarStats struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Description string                 `json:"description,omitempty"`
	TaskCount   int                    `json:"task_count"`
	ByPriority  map[tasks.Priority]int `json:"by_priority"`
}

// PillarReport is the result of PillarSummary
type PillarReport struct {
	Pillars     []PillarStats `json:"pillars"`
	Unassigned  int           `json:"unassigned_tasks"`
	TotalActive int           `json:"total_active"`
	Assessment  string        `json:"balance_assessment"`
}

// PillarSummary spreads the active tasks over the configured pillars, in
// configuration order.
func (e *Engine) PillarSummary(ctx context.Context) (*PillarReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "get_pillar_summary")
	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}
	active := tasks.Active(all)

	stats := make([]PillarStats, len(s.strategy.Pillars))
	index := make(map[string]int, len(stats))
	for i, p := range s.strategy.Pillars {
		stats[i] = PillarStats{ID: p.ID, Name: p.Name, Description: p.Description, ByPriority: map[tasks.Priority]int{}}
		index[p.ID] = i
	}

	report := &PillarReport{TotalActive: len(active), Assessment: "Balanced across pillars"}
	for _, t := range active {
		i, ok := index[t.Pillar]
		if !ok {
			report.Unassigned++
			continue
		}
		stats[i].TaskCount++
		stats[i].ByPriority[t.Priority]++
	}
	for _, st := range stats {
		if st.TaskCount == 0 {
			report.Assessment = "Consider balancing: " + st.Name + " has no active tasks"
			break
		}
	}
	report.Pillars = stats
	return report, nil
}
