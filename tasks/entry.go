package tasks

import (
	"strings"

	"github.com/teranos/dex/vault"
)

// Entry is a new task as written into the task list
type Entry struct {
	Title      string
	Refs       []string
	Anchor     string
	Context    string
	PillarName string
	Priority   Priority
}

// Lines renders the entry: the task line, an optional context line and the
// metadata line.
func (e Entry) Lines() []string {
	line := Line{Emphasis: true, Title: e.Title, Refs: e.Refs, Anchor: e.Anchor}
	out := []string{line.String()}
	if ctx := strings.Join(strings.Fields(e.Context), " "); ctx != "" {
		out = append(out, "\t- "+ctx)
	}
	out = append(out, "\t- "+formatMeta([]metaPair{
		{key: metaPillar, value: e.PillarName},
		{key: metaPriority, value: string(e.Priority)},
	}))
	return out
}

// InsertEntry adds the entry at the top of "## <section>". A missing section is
// created right after the document's first H1 heading; an empty document gets
// a "# Tasks" heading first.
func InsertEntry(content, section string, e Entry) string {
	if strings.TrimSpace(content) == "" {
		content = "# Tasks\n\n"
	}
	lines := strings.Split(content, "\n")
	entry := e.Lines()

	if start, _, ok := vault.FindSection(content, section); ok {
		return splice(lines, start+1, entry)
	}

	insertAt := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "# ") {
			insertAt = i + 1
			break
		}
	}
	block := append([]string{"", "## " + section}, entry...)
	if insertAt < len(lines) && strings.TrimSpace(lines[insertAt]) != "" {
		block = append(block, "")
	}
	return splice(lines, insertAt, block)
}

func splice(lines []string, at int, insert []string) string {
	out := make([]string, 0, len(lines)+len(insert))
	out = append(out, lines[:at]...)
	out = append(out, insert...)
	out = append(out, lines[at:]...)
	return strings.Join(out, "\n")
}

// SetStatusMeta records status in the metadata continuation of the task at
// lines[idx]. Started and blocked are written as "Status: <s>"; not_started and
// done remove the key. Returns the new lines and whether anything changed.
func SetStatusMeta(lines []string, idx int, status Status) ([]string, bool) {
	if idx < 0 || idx >= len(lines) || !IsTaskLine(lines[idx]) {
		return lines, false
	}
	want := ""
	if status == StatusStarted || status == StatusBlocked {
		want = string(status)
	}

	end := continuationEnd(lines, idx)
	for j := idx + 1; j < end; j++ {
		text, _ := continuation(lines[j])
		pairs, isMeta := parseMeta(text)
		if !isMeta {
			continue
		}

		var kept []metaPair
		found := false
		for _, p := range pairs {
			if p.key != metaStatus {
				kept = append(kept, p)
				continue
			}
			found = true
			if want != "" {
				kept = append(kept, metaPair{key: metaStatus, value: want})
			}
		}
		if !found && want != "" {
			kept = append(kept, metaPair{key: metaStatus, value: want})
		}

		prefix := lines[j][:strings.Index(lines[j], "- ")]
		updated := prefix + "- " + formatMeta(kept)
		out := append([]string(nil), lines...)
		if len(kept) == 0 {
			out = append(out[:j], out[j+1:]...)
		} else {
			out[j] = updated
		}
		return out, updated != lines[j] || len(kept) == 0
	}

	if want == "" {
		return lines, false
	}
	line, _ := ParseLine(lines[idx])
	meta := line.Indent + "\t- " + formatMeta([]metaPair{{key: metaStatus, value: want}})
	out := make([]string, 0, len(lines)+1)
	out = append(out, lines[:end]...)
	out = append(out, meta)
	out = append(out, lines[end:]...)
	return out, true
}
