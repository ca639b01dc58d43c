package vault

import (
	"regexp"
	"strings"
)

// Sections are H2 blocks ("## Title") running until the next H1 or H2 heading.

func isHeading(line string) bool {
	return strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ")
}

func isTrailer(line string) bool {
	t := strings.TrimSpace(line)
	return t == "" || t == "---"
}

// FindSection returns the line range [start, end) of the H2 section titled title,
// heading line included.
func FindSection(content, title string) (start, end int, ok bool) {
	return findSection(strings.Split(content, "\n"), title)
}

func findSection(lines []string, title string) (int, int, bool) {
	heading := "## " + title
	for i, line := range lines {
		if strings.TrimRight(line, " \t") != heading {
			continue
		}
		end := len(lines)
		for j := i + 1; j < len(lines); j++ {
			if isHeading(lines[j]) {
				end = j
				break
			}
		}
		return i, end, true
	}
	return 0, 0, false
}

// HasSection reports whether content has an H2 section titled title
func HasSection(content, title string) bool {
	_, _, ok := FindSection(content, title)
	return ok
}

// ReplaceSection swaps the section titled title for block, which carries its
// own "## title" heading. The old section's trailing blank and "---" lines are
// kept so page separators survive. Reports false when the section is absent.
func ReplaceSection(content, title, block string) (string, bool) {
	lines := strings.Split(content, "\n")
	start, end, ok := findSection(lines, title)
	if !ok {
		return content, false
	}

	t := end
	for t > start+1 && isTrailer(lines[t-1]) {
		t--
	}
	trailer := append([]string(nil), lines[t:end]...)
	if len(trailer) == 0 && end < len(lines) {
		trailer = []string{""}
	}

	out := make([]string, 0, len(lines)+8)
	out = append(out, lines[:start]...)
	out = append(out, blockLines(block)...)
	out = append(out, trailer...)
	out = append(out, lines[end:]...)
	return strings.Join(out, "\n"), true
}

// UpsertSection replaces the section titled title, or inserts block before the
// first other H2 heading, or appends it at the end of the document.
func UpsertSection(content, title, block string) string {
	if updated, ok := ReplaceSection(content, title, block); ok {
		return updated
	}

	lines := strings.Split(content, "\n")
	for i, line := range lines {
		if !strings.HasPrefix(line, "## ") {
			continue
		}
		out := make([]string, 0, len(lines)+8)
		out = append(out, lines[:i]...)
		if i > 0 && strings.TrimSpace(lines[i-1]) != "" {
			out = append(out, "")
		}
		out = append(out, blockLines(block)...)
		out = append(out, "")
		out = append(out, lines[i:]...)
		return strings.Join(out, "\n")
	}

	trimmed := strings.TrimRight(content, "\n")
	if strings.TrimSpace(trimmed) == "" {
		return strings.Join(blockLines(block), "\n") + "\n"
	}
	return trimmed + "\n\n" + strings.Join(blockLines(block), "\n") + "\n"
}

func blockLines(block string) []string {
	return strings.Split(strings.TrimRight(block, "\n"), "\n")
}

var markerPattern = regexp.MustCompile(`\*([A-Z][A-Za-z ]*): [^*\n]*\*`)

// ReplaceMarker rewrites every "*<name>: ...*" marker line value, e.g. *Updated: 2026-01-15 10:30*.
func ReplaceMarker(content, name, value string) string {
	return markerPattern.ReplaceAllStringFunc(content, func(m string) string {
		sub := markerPattern.FindStringSubmatch(m)
		if sub[1] != name {
			return m
		}
		return "*" + name + ": " + value + "*"
	})
}

// TableField returns the value of a "| **Field** | value |" row, the way
// person and company pages record their attributes.
func TableField(content, field string) (string, bool) {
	key := "**" + field + "**"
	for _, line := range strings.Split(content, "\n") {
		if !strings.Contains(line, key) || !strings.Contains(line, "|") {
			continue
		}
		parts := strings.Split(line, "|")
		if len(parts) < 3 || strings.TrimSpace(parts[1]) != key {
			continue
		}
		return strings.TrimSpace(parts[2]), true
	}
	return "", false
}

// Title returns the first line of a document stripped of heading markers
func Title(content string) string {
	first, _, _ := strings.Cut(content, "\n")
	return strings.TrimSpace(strings.TrimLeft(first, "#"))
}
