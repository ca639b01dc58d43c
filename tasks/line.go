package tasks

import (
	"regexp"
	"strings"

	"github.com/teranos/dex/sym"
)

var (
	checkboxPattern = regexp.MustCompile(`^(\s*)- \[([ xX])\]`)
	anchorPattern   = regexp.MustCompile(`\s*\^(task-\d{8}-\d{3})\b`)
	stampPattern    = regexp.MustCompile(`\s*` + sym.Done + `\s*(\d{4}-\d{2}-\d{2})\s+(\d{2}:\d{2})`)
	refPathPattern  = regexp.MustCompile(`(?:People|Active)/[A-Za-z0-9_/-]+(?:\.md)?`)
	refMDPattern    = regexp.MustCompile(`\b[A-Za-z0-9_/-]+\.md\b`)
)

// Line is the grammar of a task line:
//
//	<indent>- [ ] **<title>** | <ref> <ref> ^task-YYYYMMDD-NNN ✅ YYYY-MM-DD HH:MM
//
// Emphasis, the reference tail, the anchor and the completion stamp are optional.
// For lines in that form String is the exact inverse of ParseLine.
type Line struct {
	Indent      string
	Checked     bool
	Emphasis    bool
	Title       string
	Refs        []string
	Anchor      string
	CompletedAt string // "YYYY-MM-DD HH:MM"
	Trailing    string // text after the anchor, kept verbatim
}

// IsTaskLine reports whether raw starts (after indentation) with a checkbox
func IsTaskLine(raw string) bool {
	return checkboxPattern.MatchString(raw)
}

// ParseLine parses a task line. ok is false when raw is not a task line.
func ParseLine(raw string) (l Line, ok bool) {
	m := checkboxPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return Line{}, false
	}
	l.Indent = raw[m[2]:m[3]]
	l.Checked = raw[m[4]:m[5]] != " "
	rest := raw[m[1]:]

	if s := stampPattern.FindStringSubmatch(rest); s != nil {
		l.CompletedAt = s[1] + " " + s[2]
		rest = stampPattern.ReplaceAllString(rest, "")
	}
	if loc := anchorPattern.FindStringSubmatchIndex(rest); loc != nil {
		l.Anchor = rest[loc[2]:loc[3]]
		l.Trailing = rest[loc[1]:]
		rest = rest[:loc[0]]
	}

	body := strings.TrimSpace(rest)
	if head, tail, found := strings.Cut(body, sym.RefSeparator); found && refTail(tail) {
		body = strings.TrimSpace(head)
		l.Refs = strings.Fields(tail)
	}

	if len(body) > 2*len(sym.Emphasis) && strings.HasPrefix(body, sym.Emphasis) && strings.HasSuffix(body, sym.Emphasis) {
		l.Emphasis = true
		body = body[len(sym.Emphasis) : len(body)-len(sym.Emphasis)]
	}
	l.Title = body
	return l, true
}

// refTail reports whether every token after "|" looks like a page reference.
func refTail(tail string) bool {
	fields := strings.Fields(tail)
	if len(fields) == 0 {
		return false
	}
	for _, f := range fields {
		if !strings.Contains(f, "/") && !strings.HasSuffix(f, ".md") {
			return false
		}
	}
	return true
}

// String formats the line
func (l Line) String() string {
	var b strings.Builder
	b.WriteString(l.Indent)
	if l.Checked {
		b.WriteString(sym.CheckboxDone)
	} else {
		b.WriteString(sym.CheckboxOpen)
	}
	b.WriteByte(' ')
	if l.Emphasis {
		b.WriteString(sym.Emphasis + l.Title + sym.Emphasis)
	} else {
		b.WriteString(l.Title)
	}
	if len(l.Refs) > 0 {
		b.WriteString(" " + sym.RefSeparator + " " + strings.Join(l.Refs, " "))
	}
	if l.Anchor != "" {
		b.WriteString(" " + sym.AnchorPrefix + l.Anchor)
	}
	if l.CompletedAt != "" {
		b.WriteString(" " + sym.Done + " " + l.CompletedAt)
	}
	b.WriteString(l.Trailing)
	return b.String()
}

// RawTitle is the title with its reference tail, as written on the page
func (l Line) RawTitle() string {
	if len(l.Refs) == 0 {
		return l.Title
	}
	return l.Title + " " + sym.RefSeparator + " " + strings.Join(l.Refs, " ")
}

// DisplayTitle is the title with inline page references removed
func (l Line) DisplayTitle() string {
	return CleanTitle(l.Title)
}

// CleanTitle strips page references and leftover separators from a title
func CleanTitle(title string) string {
	t := refPathPattern.ReplaceAllString(title, "")
	t = refMDPattern.ReplaceAllString(t, "")
	t = strings.Join(strings.Fields(t), " ")
	return strings.TrimRight(t, " "+sym.RefSeparator)
}

// Retick rewrites a task line in place: only the checkbox glyph and the
// completion stamp change. Existing stamps are removed; when completing, a new
// stamp goes right after the anchor, or at the end of a line without one.
func Retick(raw string, completed bool, stamp string) string {
	m := checkboxPattern.FindStringSubmatchIndex(raw)
	if m == nil {
		return raw
	}
	glyph := " "
	if completed {
		glyph = "x"
	}
	out := raw[:m[4]] + glyph + raw[m[5]:]
	out = stampPattern.ReplaceAllString(out, "")

	if completed && stamp != "" {
		mark := " " + sym.Done + " " + stamp
		if loc := anchorPattern.FindStringIndex(out); loc != nil {
			out = out[:loc[1]] + mark + out[loc[1]:]
		} else {
			out = strings.TrimRight(out, " \t") + mark
		}
	}
	return out
}

// AnchorOf returns the anchor carried by raw, or ""
func AnchorOf(raw string) string {
	if m := anchorPattern.FindStringSubmatch(raw); m != nil {
		return m[1]
	}
	return ""
}

// hasAnchor reports whether raw carries exactly this anchor
func hasAnchor(raw, anchor string) bool {
	for _, m := range anchorPattern.FindAllStringSubmatch(raw, -1) {
		if m[1] == anchor {
			return true
		}
	}
	return false
}

// ExtractRefs returns the page references in a line, in order of appearance,
// without duplicates: People/... and Active/... paths, and any *.md token.
func ExtractRefs(raw string) []string {
	type span struct {
		start int
		text  string
	}
	var spans []span
	for _, loc := range refPathPattern.FindAllStringIndex(raw, -1) {
		spans = append(spans, span{loc[0], raw[loc[0]:loc[1]]})
	}
	for _, loc := range refMDPattern.FindAllStringIndex(raw, -1) {
		spans = append(spans, span{loc[0], raw[loc[0]:loc[1]]})
	}
	// insertion sort by position keeps equal positions in pattern order
	for i := 1; i < len(spans); i++ {
		for j := i; j > 0 && spans[j].start < spans[j-1].start; j-- {
			spans[j], spans[j-1] = spans[j-1], spans[j]
		}
	}

	seen := make(map[string]bool)
	var refs []string
	for _, s := range spans {
		if seen[s.text] {
			continue
		}
		seen[s.text] = true
		refs = append(refs, s.text)
	}
	return refs
}
