package engine

import (
	"context"
	"strings"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/tasks/classify"
	"github.com/teranos/dex/tasks/dedup"
	"github.com/teranos/dex/vault"
	"github.com/teranos/dex/xref"
)

// CreateTaskRequest asks for a new task in the task list
type CreateTaskRequest struct {
	Title    string   `json:"title"`
	Pillar   string   `json:"pillar"`             // id or name
	Priority string   `json:"priority,omitempty"` // P2 when empty
	Context  string   `json:"context,omitempty"`
	Section  string   `json:"section,omitempty"` // tasks.default_section when empty
	Account  string   `json:"account,omitempty"` // page to link, vault-relative
	People   []string `json:"people,omitempty"`  // person pages to link
}

// CreateTaskResult describes the written task
type CreateTaskResult struct {
	Success     bool           `json:"success"`
	Title       string         `json:"title"`
	AnchorID    string         `json:"task_id"`
	Pillar      string         `json:"pillar"`
	PillarID    string         `json:"pillar_id"`
	Priority    tasks.Priority `json:"priority"`
	Section     string         `json:"section"`
	References  []string       `json:"references,omitempty"`
	SyncedPages []string       `json:"synced_pages"`
	Message     string         `json:"message"`
}

// CreateTask runs the admission pipeline: validation, vagueness, duplicates, WIP
// limit. Only an admitted task is given an anchor and written; pages it links
// are then re-synced.
func (e *Engine) CreateTask(ctx context.Context, req CreateTaskRequest) (*CreateTaskResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "create_task")
	return e.createTask(s, req)
}

func (e *Engine) createTask(s *scope, req CreateTaskRequest) (*CreateTaskResult, error) {
	title := strings.Join(strings.Fields(req.Title), " ")
	if title == "" {
		return nil, reject(errors.WithHint(
			errors.NewInvalidRequestError("task title is required"),
			"describe the task in a short, specific sentence",
		), nil)
	}

	if strings.TrimSpace(req.Pillar) == "" {
		return nil, reject(errors.WithHintf(
			errors.NewInvalidRequestError("pillar is required"),
			"use one of: %s", strings.Join(s.strategy.IDs(), ", "),
		), nil)
	}
	pillar, ok := s.strategy.Pillar(req.Pillar)
	if !ok {
		return nil, reject(errors.WithHintf(
			errors.NewInvalidRequestError("invalid pillar %q", req.Pillar),
			"use one of: %s", strings.Join(s.strategy.IDs(), ", "),
		), nil)
	}

	priority := tasks.P2
	if strings.TrimSpace(req.Priority) != "" {
		p, err := tasks.ParsePriority(req.Priority)
		if err != nil {
			return nil, reject(err, nil)
		}
		priority = p
	}

	section := strings.TrimSpace(req.Section)
	if section == "" {
		section = e.cfg.Tasks.DefaultSection
	}

	if classify.IsAmbiguous(title) {
		err := errors.WithHint(
			errors.Mark(errors.Newf("task is too vague: %q", title), errors.ErrVague),
			"provide more specific details before creating this task",
		)
		return nil, reject(err, VagueDetails{Title: title, Questions: classify.ClarificationQuestions(title)})
	}

	all, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}

	opts := e.dedupOptions()
	if matches := dedup.FindSimilar(title, all, opts); len(matches) > 0 {
		err := errors.WithHint(
			errors.Mark(errors.Newf("potential duplicate of %q", matches[0].Title), errors.ErrDuplicate),
			"review the similar tasks; if this one is still unique, rephrase the title to be more distinct",
		)
		return nil, reject(err, DuplicateDetails{
			Title:             title,
			Similar:           matches,
			RecommendedAction: dedup.Recommend(matches, opts),
		})
	}

	if adm := tasks.Admit(all, s.strategy.Limits, priority); !adm.Allowed {
		err := errors.WithHintf(
			errors.Mark(errors.Newf("priority limit exceeded for %s", priority), errors.ErrLimitExceeded),
			"you have %d active %s tasks; complete or deprioritize some before adding more", adm.Current, priority,
		)
		return nil, reject(err, LimitDetails{Priority: priority, CurrentCount: adm.Current, Limit: adm.Limit})
	}

	anchor, err := tasks.Allocate(s.ctx, s.layout, s.now)
	if err != nil {
		return nil, reject(err, nil)
	}

	refs := pageRefs(req.Account, req.People)
	content, err := vault.Read(s.layout.Tasks())
	if err != nil && !errors.IsNotFoundError(err) {
		return nil, reject(err, nil)
	}
	content = tasks.InsertEntry(content, section, tasks.Entry{
		Title:      title,
		Refs:       refs,
		Anchor:     anchor,
		Context:    req.Context,
		PillarName: pillar.Name,
		Priority:   priority,
	})
	if err := vault.Write(s.layout.Tasks(), content); err != nil {
		return nil, reject(err, nil)
	}

	s.log.Infow("Task created",
		logger.FieldAnchor, anchor,
		logger.FieldPriority, priority,
		logger.FieldPillar, pillar.ID,
		"section", section)

	synced := []string{}
	for _, ref := range refs {
		if _, err := xref.SyncRefs(s.ctx, s.layout, ref, s.now); err != nil {
			s.log.Warnw("Could not sync linked page", logger.FieldPage, ref, logger.FieldError, err)
			continue
		}
		synced = append(synced, ref)
	}

	return &CreateTaskResult{
		Success:     true,
		Title:       title,
		AnchorID:    anchor,
		Pillar:      pillar.Name,
		PillarID:    pillar.ID,
		Priority:    priority,
		Section:     section,
		References:  refs,
		SyncedPages: synced,
		Message:     "Task '" + title + "' created under " + section + " with ID " + anchor,
	}, nil
}

// pageRefs normalizes linked pages to vault-relative .md paths, in order, without repeats.
func pageRefs(account string, people []string) []string {
	var refs []string
	seen := make(map[string]bool)
	for _, p := range append([]string{account}, people...) {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		p = vault.WithMD(strings.TrimPrefix(p, "./"))
		if seen[p] {
			continue
		}
		seen[p] = true
		refs = append(refs, p)
	}
	return refs
}
