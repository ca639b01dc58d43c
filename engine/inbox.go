package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/tasks"
	"github.com/teranos/dex/tasks/classify"
	"github.com/teranos/dex/tasks/dedup"
)

// InboxRequest is a batch of raw items to triage
type InboxRequest struct {
	Items []string `json:"items"`
	// AutoCreate runs every ready item through CreateTask
	AutoCreate bool `json:"auto_create,omitempty"`
}

// InboxCandidate is an item ready to become a task
type InboxCandidate struct {
	Item              string         `json:"item"`
	SuggestedPillar   string         `json:"suggested_pillar,omitempty"`
	SuggestedPriority tasks.Priority `json:"suggested_priority"`
	ReadyToCreate     bool           `json:"ready_to_create"`
}

// InboxDuplicate is an item resembling existing tasks
type InboxDuplicate struct {
	Item              string        `json:"item"`
	Similar           []dedup.Match `json:"similar_tasks"`
	RecommendedAction string        `json:"recommended_action"`
}

// InboxClarification is an item too vague to file
type InboxClarification struct {
	Item        string   `json:"item"`
	Questions   []string `json:"questions"`
	Suggestions []string `json:"suggestions"`
}

// InboxFailure is a ready item that auto-creation rejected
type InboxFailure struct {
	Item      string     `json:"item"`
	Rejection *Rejection `json:"rejection"`
}

// InboxSummary counts each category
type InboxSummary struct {
	TotalItems         int      `json:"total_items"`
	NewTasks           int      `json:"new_tasks"`
	DuplicatesFound    int      `json:"duplicates_found"`
	NeedsClarification int      `json:"needs_clarification"`
	AutoCreated        int      `json:"auto_created"`
	Recommendations    []string `json:"recommendations"`
}

// InboxResult sorts the batch into new tasks, likely duplicates and vague items
type InboxResult struct {
	NewTasks            []InboxCandidate     `json:"new_tasks"`
	PotentialDuplicates []InboxDuplicate     `json:"potential_duplicates"`
	NeedsClarification  []InboxClarification `json:"needs_clarification"`
	AutoCreated         []CreateTaskResult   `json:"auto_created"`
	AutoCreateFailed    []InboxFailure       `json:"auto_create_failed,omitempty"`
	Summary             InboxSummary         `json:"summary"`
}

// ProcessInbox triages items against the active tasks. Duplicates are only
// reported here, never rejected; with AutoCreate the ready items go through the
// full admission pipeline, with the guessed priority and pillar.
func (e *Engine) ProcessInbox(ctx context.Context, req InboxRequest) (*InboxResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.begin(ctx, "process_inbox_with_dedup")

	var items []string
	for _, it := range req.Items {
		if it = strings.Join(strings.Fields(it), " "); it != "" {
			items = append(items, it)
		}
	}
	if len(items) == 0 {
		return nil, reject(errors.WithHint(
			errors.NewInvalidRequestError("no items provided to process"),
			"pass one inbox item per entry",
		), nil)
	}

	existing, err := s.loadTasks()
	if err != nil {
		return nil, reject(err, nil)
	}

	opts := e.dedupOptions()
	result := &InboxResult{
		NewTasks:            []InboxCandidate{},
		PotentialDuplicates: []InboxDuplicate{},
		NeedsClarification:  []InboxClarification{},
		AutoCreated:         []CreateTaskResult{},
	}

	for _, item := range items {
		if matches := dedup.FindSimilar(item, existing, opts); len(matches) > 0 {
			result.PotentialDuplicates = append(result.PotentialDuplicates, InboxDuplicate{
				Item:              item,
				Similar:           matches,
				RecommendedAction: dedup.Recommend(matches, opts),
			})
			continue
		}
		if classify.IsAmbiguous(item) {
			result.NeedsClarification = append(result.NeedsClarification, InboxClarification{
				Item:        item,
				Questions:   classify.ClarificationQuestions(item),
				Suggestions: classify.ClarificationSuggestions(),
			})
			continue
		}
		result.NewTasks = append(result.NewTasks, InboxCandidate{
			Item:              item,
			SuggestedPillar:   classify.GuessPillar(item, s.strategy.Pillars),
			SuggestedPriority: tasks.Priority(classify.GuessPriority(item)),
			ReadyToCreate:     true,
		})
	}

	if req.AutoCreate {
		for _, c := range result.NewTasks {
			pillar := c.SuggestedPillar
			if pillar == "" && len(s.strategy.Pillars) > 0 {
				pillar = s.strategy.Pillars[0].ID
			}
			created, err := e.createTask(s, CreateTaskRequest{
				Title:    c.Item,
				Pillar:   pillar,
				Priority: string(c.SuggestedPriority),
			})
			if err != nil {
				s.log.Infow("Inbox item not created", "item", c.Item, logger.FieldReason, AsRejection(err).Code)
				result.AutoCreateFailed = append(result.AutoCreateFailed, InboxFailure{Item: c.Item, Rejection: AsRejection(err)})
				continue
			}
			result.AutoCreated = append(result.AutoCreated, *created)
		}
	}

	sum := InboxSummary{
		TotalItems:         len(items),
		NewTasks:           len(result.NewTasks),
		DuplicatesFound:    len(result.PotentialDuplicates),
		NeedsClarification: len(result.NeedsClarification),
		AutoCreated:        len(result.AutoCreated),
		Recommendations:    []string{},
	}
	if sum.DuplicatesFound > 0 {
		sum.Recommendations = append(sum.Recommendations,
			fmt.Sprintf("Review %d potential duplicates before creating tasks", sum.DuplicatesFound))
	}
	if sum.NeedsClarification > 0 {
		sum.Recommendations = append(sum.Recommendations,
			fmt.Sprintf("Clarify %d ambiguous items for better task definition", sum.NeedsClarification))
	}
	result.Summary = sum

	s.log.Infow("Inbox processed",
		logger.FieldCount, len(items),
		"new", sum.NewTasks,
		"duplicates", sum.DuplicatesFound,
		"vague", sum.NeedsClarification,
		"created", sum.AutoCreated)
	return result, nil
}
