// Package vault is the corpus accessor: it resolves vault paths, scans and reads
// Markdown documents, and rewrites them whole and atomically.
package vault

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/teranos/dex/errors"
)

// Vault-relative locations of the documents dex works on.
const (
	TasksFile          = "03-Tasks/Tasks.md"
	WeekPrioritiesFile = "Inbox/Week Priorities.md"
	PeopleDir          = "People"
	CompaniesDir       = "Active/Relationships/Companies"
	MeetingsDir        = "Inbox/Meetings"
	PillarsFile        = "System/pillars.yaml"
	ProfileFile        = "System/user-profile.yaml"
	DemoDir            = "System/Demo"
)

// PeopleSubdirs are scanned for person pages, in this order.
var PeopleSubdirs = []string{"External", "Internal"}

// Layout is the set of paths for one operation. Demo mode has already been
// resolved: every task, people, company and meeting path lives under Base.
type Layout struct {
	Root string // vault root
	Base string // Root, or Root/System/Demo in demo mode
	Demo bool
}

// NewLayout builds the layout for root with demo mode on or off.
func NewLayout(root string, demo bool) Layout {
	root = filepath.Clean(root)
	base := root
	if demo {
		base = filepath.Join(root, filepath.FromSlash(DemoDir))
	}
	return Layout{Root: root, Base: base, Demo: demo}
}

func (l Layout) Tasks() string          { return l.Abs(TasksFile) }
func (l Layout) WeekPriorities() string { return l.Abs(WeekPrioritiesFile) }
func (l Layout) People() string         { return l.Abs(PeopleDir) }
func (l Layout) Companies() string      { return l.Abs(CompaniesDir) }
func (l Layout) Meetings() string       { return l.Abs(MeetingsDir) }
func (l Layout) Profile() string        { return filepath.Join(l.Root, filepath.FromSlash(ProfileFile)) }

// Pillars returns the strategy document. In demo mode System/Demo/pillars.yaml
// is preferred when it exists.
func (l Layout) Pillars() string {
	if l.Demo {
		demo := filepath.Join(l.Base, "pillars.yaml")
		if _, err := os.Stat(demo); err == nil {
			return demo
		}
	}
	return filepath.Join(l.Root, filepath.FromSlash(PillarsFile))
}

// Abs resolves a Base-relative path. Absolute paths are returned cleaned.
func (l Layout) Abs(rel string) string {
	if filepath.IsAbs(rel) {
		return filepath.Clean(rel)
	}
	return filepath.Join(l.Base, filepath.FromSlash(rel))
}

// Resolve is Abs for caller-supplied paths: the cleaned result must stay under
// Base, so ".." segments and absolute paths cannot reach files outside the
// vault (or outside System/Demo in demo mode).
func (l Layout) Resolve(rel string) (string, error) {
	abs := l.Abs(rel)
	if !l.contains(abs) {
		return "", errors.WithHintf(
			errors.NewInvalidRequestError("path is outside the vault: %s", rel),
			"use a path relative to %s", l.Base,
		)
	}
	return abs, nil
}

func (l Layout) contains(abs string) bool {
	r, err := filepath.Rel(l.Base, abs)
	if err != nil {
		return false
	}
	return r != ".." && !strings.HasPrefix(r, ".."+string(filepath.Separator)) && !filepath.IsAbs(r)
}

// Rel returns path relative to Base with forward slashes, the form used in
// task references and page links. Paths outside Base are returned unchanged.
func (l Layout) Rel(path string) string {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path))
	}
	rel, err := filepath.Rel(l.Base, path)
	if err != nil || rel == ".." || len(rel) > 2 && rel[:3] == ".."+string(filepath.Separator) {
		return filepath.ToSlash(path)
	}
	return filepath.ToSlash(rel)
}

// WithMD appends the .md suffix when missing
func WithMD(path string) string {
	if filepath.Ext(path) == ".md" {
		return path
	}
	return path + ".md"
}

// Stem returns the file name without directory and .md suffix
func Stem(path string) string {
	base := filepath.Base(filepath.FromSlash(path))
	return base[:len(base)-len(filepath.Ext(base))]
}
