package tasks

import "github.com/teranos/dex/am"

// CountActive counts active tasks per tier. A task copied into several sources
// under one anchor counts once.
func CountActive(all []Task) map[Priority]int {
	counts := make(map[Priority]int)
	for _, t := range Distinct(Active(all)) {
		counts[t.Priority]++
	}
	return counts
}

// Admission is the limit verdict for adding one task at a tier
type Admission struct {
	Priority Priority `json:"priority"`
	Current  int      `json:"current_count"`
	Limit    int      `json:"limit"`
	Limited  bool     `json:"limited"`
	Allowed  bool     `json:"allowed"`
}

// Admit checks the WIP ceiling for a new task at p. The current count is compared
// to the limit, so a tier holds at most limit active tasks. Tiers without a
// configured limit always admit.
func Admit(all []Task, limits am.PriorityLimits, p Priority) Admission {
	current := CountActive(all)[p]
	limit, limited := limits.Limit(string(p))
	return Admission{
		Priority: p,
		Current:  current,
		Limit:    limit,
		Limited:  limited,
		Allowed:  !limited || current < limit,
	}
}

// Overage is a tier holding more active tasks than its limit
type Overage struct {
	Priority   Priority `json:"priority"`
	Current    int      `json:"current"`
	Limit      int      `json:"limit"`
	ExceededBy int      `json:"exceeded_by"`
}

// Overages reports tiers over their limit, in priority order. Hand edits can push
// a tier past the ceiling that Admit enforces.
func Overages(all []Task, limits am.PriorityLimits) []Overage {
	counts := CountActive(all)
	var out []Overage
	for _, p := range Priorities {
		limit, ok := limits.Limit(string(p))
		if !ok {
			continue
		}
		if n := counts[p]; n > limit {
			out = append(out, Overage{Priority: p, Current: n, Limit: limit, ExceededBy: n - limit})
		}
	}
	return out
}
