package tasks

import (
	"github.com/teranos/dex/am"
	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/vault"
)

// Load parses every task source of the layout: the task list, then the week
// priorities. Missing sources contribute nothing. Paths are vault-relative.
func Load(l vault.Layout, strategy *am.Strategy) ([]Task, error) {
	sources := []struct {
		path   string
		source string
	}{
		{l.Tasks(), SourceTasks},
		{l.WeekPriorities(), SourceWeekPriorities},
	}

	var all []Task
	for _, src := range sources {
		content, err := vault.Read(src.path)
		if err != nil {
			if errors.IsNotFoundError(err) {
				continue
			}
			return nil, errors.Wrap(err, "load tasks")
		}
		parsed := ParseDocument(l.Rel(src.path), content, strategy)
		for i := range parsed {
			parsed[i].Source = src.source
		}
		all = append(all, parsed...)
	}
	return all, nil
}

// Active filters out completed tasks
func Active(all []Task) []Task {
	out := make([]Task, 0, len(all))
	for _, t := range all {
		if t.Active() {
			out = append(out, t)
		}
	}
	return out
}

// Distinct keeps the first copy of each anchored task. Unanchored tasks are
// all kept.
func Distinct(all []Task) []Task {
	out := make([]Task, 0, len(all))
	seen := make(map[string]bool)
	for _, t := range all {
		if t.AnchorID != "" {
			if seen[t.AnchorID] {
				continue
			}
			seen[t.AnchorID] = true
		}
		out = append(out, t)
	}
	return out
}
