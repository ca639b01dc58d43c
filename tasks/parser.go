package tasks

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/teranos/dex/am"
	"github.com/teranos/dex/tasks/classify"
)

var continuationPattern = regexp.MustCompile(`^(?:\t+| {2,})- (.*)$`)

// Metadata keys of the continuation line "Pillar: <name> | Priority: <P> | Status: <s>"
const (
	metaPillar   = "Pillar"
	metaPriority = "Priority"
	metaStatus   = "Status"
)

type metaPair struct {
	key   string
	value string
}

// parseMeta splits a continuation text into key/value pairs. ok is false when
// the text is free-form context rather than metadata.
func parseMeta(text string) (pairs []metaPair, ok bool) {
	for _, part := range strings.Split(text, "|") {
		k, v, found := strings.Cut(part, ":")
		if !found {
			return nil, false
		}
		k = strings.TrimSpace(k)
		if k == "" || strings.Contains(k, " ") {
			return nil, false
		}
		if isMetaKey(k) {
			ok = true
		}
		pairs = append(pairs, metaPair{key: canonicalKey(k), value: strings.TrimSpace(v)})
	}
	return pairs, ok
}

func isMetaKey(k string) bool {
	return strings.EqualFold(k, metaPillar) || strings.EqualFold(k, metaPriority) || strings.EqualFold(k, metaStatus)
}

func canonicalKey(k string) string {
	for _, known := range []string{metaPillar, metaPriority, metaStatus} {
		if strings.EqualFold(k, known) {
			return known
		}
	}
	return k
}

func formatMeta(pairs []metaPair) string {
	parts := make([]string, len(pairs))
	for i, p := range pairs {
		parts[i] = p.key + ": " + p.value
	}
	return strings.Join(parts, " | ")
}

func metaValue(pairs []metaPair, key string) string {
	for _, p := range pairs {
		if p.key == key {
			return p.value
		}
	}
	return ""
}

// continuation returns the text of an indented "- " line following a task, and
// false for anything else (including nested checkbox lines, which are tasks).
func continuation(raw string) (string, bool) {
	if IsTaskLine(raw) {
		return "", false
	}
	m := continuationPattern.FindStringSubmatch(raw)
	if m == nil {
		return "", false
	}
	return strings.TrimSpace(m[1]), true
}

// continuationEnd returns the index one past the last continuation line of the
// task at lines[idx].
func continuationEnd(lines []string, idx int) int {
	j := idx + 1
	for j < len(lines) {
		if _, ok := continuation(lines[j]); !ok {
			break
		}
		j++
	}
	return j
}

func isSectionHeader(line string) bool {
	return strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ")
}

// ParseDocument parses the tasks of one document. path is recorded as the
// SourceFile of each task. Legacy lines without an anchor get "temp-N", N
// counting task lines of this document from 1.
//
// Priority and pillar come from the metadata line when present and are guessed
// from the title otherwise, so legacy entries are classified on every read.
func ParseDocument(path, content string, strategy *am.Strategy) []Task {
	if strategy == nil {
		strategy = am.DefaultStrategy()
	}

	lines := strings.Split(content, "\n")
	var out []Task
	section := ""
	counter := 0

	for i := 0; i < len(lines); i++ {
		raw := lines[i]
		if isSectionHeader(raw) {
			section = strings.TrimSpace(strings.TrimLeft(raw, "#"))
			continue
		}
		line, ok := ParseLine(raw)
		if !ok {
			continue
		}
		counter++

		t := Task{
			ID:             line.Anchor,
			AnchorID:       line.Anchor,
			Title:          line.DisplayTitle(),
			RawTitle:       line.RawTitle(),
			Section:        section,
			Completed:      line.Checked,
			CompletedAt:    line.CompletedAt,
			SourceFile:     path,
			LineNumber:     i + 1,
			FileReferences: ExtractRefs(raw),
		}
		if t.ID == "" {
			t.ID = "temp-" + strconv.Itoa(counter)
		}

		var meta []metaPair
		end := continuationEnd(lines, i)
		for _, c := range lines[i+1 : end] {
			text, _ := continuation(c)
			if pairs, isMeta := parseMeta(text); isMeta {
				meta = append(meta, pairs...)
				continue
			}
			t.Context = append(t.Context, text)
		}

		t.Priority, t.PriorityGuess = priorityOf(meta, t.Title)
		t.Pillar = pillarOf(meta, t.Title, strategy)
		t.Status = statusOf(meta, t.Completed)

		out = append(out, t)
	}
	return out
}

func priorityOf(meta []metaPair, title string) (Priority, bool) {
	if p, err := ParsePriority(metaValue(meta, metaPriority)); err == nil {
		return p, false
	}
	return Priority(classify.GuessPriority(title)), true
}

func pillarOf(meta []metaPair, title string, strategy *am.Strategy) string {
	if name := metaValue(meta, metaPillar); name != "" {
		if p, ok := strategy.Pillar(name); ok {
			return p.ID
		}
	}
	return classify.GuessPillar(title, strategy.Pillars)
}

func statusOf(meta []metaPair, completed bool) Status {
	if completed {
		return StatusDone
	}
	if st, err := ParseStatus(metaValue(meta, metaStatus)); err == nil && st != StatusDone {
		return st
	}
	return StatusNotStarted
}
