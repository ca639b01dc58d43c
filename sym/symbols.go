// Package sym defines the canonical glyphs and markers dex writes into Markdown.
// These strings are part of the on-disk format: parsers and renderers must use
// these constants so that what one writes the other reads back.
package sym

// Task line markers.
const (
	CheckboxOpen = "- [ ]"
	CheckboxDone = "- [x]"
	AnchorPrefix = "^"
	RefSeparator = "|"
	Emphasis     = "**"
)

// Status glyphs.
const (
	Done    = "✅" // completion stamp and done rows in derived tables
	Open    = "⏳" // open rows in derived tables
	Blocked = "⛔" // CLI rendering of blocked tasks
	Started = "▶" // CLI rendering of started tasks
)

// StampLayout is the time layout of the completion stamp written after an anchor.
const StampLayout = "2006-01-02 15:04"

// DayLayout is the date layout embedded in anchors (task-YYYYMMDD-NNN).
const DayLayout = "20060102"

// entry binds a status name to its glyph and CLI label.
type entry struct {
	status string
	glyph  string
	label  string
}

// registry is the canonical status → glyph mapping used by CLI rendering.
var registry = []entry{
	{"not_started", Open, "open"},
	{"started", Started, "started"},
	{"blocked", Blocked, "blocked"},
	{"done", Done, "done"},
}

var (
	statusToGlyph map[string]string
	statusToLabel map[string]string
)

func init() {
	statusToGlyph = make(map[string]string, len(registry))
	statusToLabel = make(map[string]string, len(registry))
	for _, e := range registry {
		statusToGlyph[e.status] = e.glyph
		statusToLabel[e.status] = e.label
	}
}

// StatusGlyph returns the glyph for a status name, or "" for unknown statuses.
func StatusGlyph(status string) string {
	return statusToGlyph[status]
}

// StatusLabel returns the short CLI label for a status name.
func StatusLabel(status string) string {
	if l, ok := statusToLabel[status]; ok {
		return l
	}
	return status
}

// CompletionGlyph returns the table glyph for a completion flag.
func CompletionGlyph(completed bool) string {
	if completed {
		return Done
	}
	return Open
}
