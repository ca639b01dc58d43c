package tasks

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/teranos/dex/errors"
	"github.com/teranos/dex/logger"
	"github.com/teranos/dex/sym"
	"github.com/teranos/dex/vault"
)

// AnchorFor formats the anchor for day and sequence number
func AnchorFor(day time.Time, seq int) string {
	return fmt.Sprintf("task-%s-%03d", day.Format(sym.DayLayout), seq)
}

// Allocate returns the next free anchor for now's day: one past the highest
// sequence number found anywhere in the corpus, 001 when there is none.
// Unreadable documents are logged and skipped.
func Allocate(ctx context.Context, l vault.Layout, now time.Time) (string, error) {
	log := logger.LoggerFromContext(ctx)

	files, err := l.Scan()
	if err != nil {
		return "", err
	}

	pattern := regexp.MustCompile(`\^task-` + now.Format(sym.DayLayout) + `-(\d{3})\b`)
	highest := 0
	for _, f := range files {
		content, err := vault.Read(f)
		if err != nil {
			log.Warnw("Skipping unreadable document during allocation", logger.FieldFile, f, logger.FieldError, err)
			continue
		}
		for _, m := range pattern.FindAllStringSubmatch(content, -1) {
			if n, _ := strconv.Atoi(m[1]); n > highest {
				highest = n
			}
		}
	}
	return AnchorFor(now, highest+1), nil
}

// Instance is one physical copy of an anchored task
type Instance struct {
	File      string `json:"file"`
	Line      int    `json:"line"`
	Raw       string `json:"line_content"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

// Resolve finds every task line bearing anchor across the corpus.
func Resolve(ctx context.Context, l vault.Layout, anchor string) ([]Instance, error) {
	log := logger.LoggerFromContext(ctx)

	files, err := l.Scan()
	if err != nil {
		return nil, err
	}

	var out []Instance
	for _, f := range files {
		content, err := vault.Read(f)
		if err != nil {
			log.Warnw("Skipping unreadable document during resolve", logger.FieldFile, f, logger.FieldError, err)
			continue
		}
		out = append(out, instancesIn(l.Rel(f), strings.Split(content, "\n"), anchor)...)
	}
	return out, nil
}

func instancesIn(file string, lines []string, anchor string) []Instance {
	var out []Instance
	for i, raw := range lines {
		if !hasAnchor(raw, anchor) {
			continue
		}
		line, ok := ParseLine(raw)
		if !ok {
			continue
		}
		out = append(out, Instance{
			File:      file,
			Line:      i + 1,
			Raw:       raw,
			Title:     line.DisplayTitle(),
			Completed: line.Checked,
		})
	}
	return out
}

// Location is a rewritten line
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

// FileFailure is a document that could not be read or written
type FileFailure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// UpdateReport is the outcome of UpdateEverywhere. A difference between
// InstancesFound and len(Updated) signals a partial update.
type UpdateReport struct {
	Anchor         string        `json:"task_id"`
	Title          string        `json:"title"`
	Completed      bool          `json:"completed"`
	CompletedAt    string        `json:"completed_at,omitempty"`
	InstancesFound int           `json:"instances_found"`
	Updated        []Location    `json:"updated_files"`
	Unchanged      []Location    `json:"unchanged,omitempty"`
	Failed         []FileFailure `json:"failed_files,omitempty"`
	// Duplicates lists files holding the anchor more than once
	Duplicates []string `json:"duplicate_instances,omitempty"`
}

// UpdateEverywhere sets the completion state of every line bearing anchor. Each
// document is read, rewritten and written once; a document that fails is logged,
// reported and skipped. All completed lines carry the same stamp, taken from now.
func UpdateEverywhere(ctx context.Context, l vault.Layout, anchor string, completed bool, now time.Time) (*UpdateReport, error) {
	log := logger.LoggerFromContext(ctx)

	files, err := l.Scan()
	if err != nil {
		return nil, err
	}

	report := &UpdateReport{Anchor: anchor, Completed: completed}
	stamp := ""
	if completed {
		stamp = now.Format(sym.StampLayout)
		report.CompletedAt = stamp
	}

	for _, f := range files {
		rel := l.Rel(f)
		content, err := vault.Read(f)
		if err != nil {
			log.Warnw("Skipping unreadable document", logger.FieldFile, rel, logger.FieldAnchor, anchor, logger.FieldError, err)
			report.Failed = append(report.Failed, FileFailure{File: rel, Error: err.Error()})
			continue
		}

		lines := strings.Split(content, "\n")
		found := instancesIn(rel, lines, anchor)
		if len(found) == 0 {
			continue
		}
		if report.Title == "" {
			report.Title = found[0].Title
		}
		report.InstancesFound += len(found)
		if len(found) > 1 {
			log.Warnw("Anchor appears more than once in document", logger.FieldFile, rel, logger.FieldAnchor, anchor, logger.FieldCount, len(found))
			report.Duplicates = append(report.Duplicates, rel)
		}

		var changed, same []Location
		for _, inst := range found {
			idx := inst.Line - 1
			updated := Retick(lines[idx], completed, stamp)
			if updated == lines[idx] {
				same = append(same, Location{File: rel, Line: inst.Line})
				continue
			}
			lines[idx] = updated
			changed = append(changed, Location{File: rel, Line: inst.Line})
		}
		report.Unchanged = append(report.Unchanged, same...)
		if len(changed) == 0 {
			continue
		}

		if err := vault.Write(f, strings.Join(lines, "\n")); err != nil {
			log.Errorw("Failed to write document", logger.FieldFile, rel, logger.FieldAnchor, anchor, logger.FieldError, err)
			report.Failed = append(report.Failed, FileFailure{File: rel, Error: err.Error()})
			continue
		}
		report.Updated = append(report.Updated, changed...)
	}

	if report.InstancesFound == 0 {
		return report, errors.WithHint(
			errors.NewNotFoundError("no task found with anchor %s", anchor),
			"check the anchor, or update by title instead",
		)
	}

	log.Infow("Updated task everywhere",
		logger.FieldAnchor, anchor,
		"instances", report.InstancesFound,
		"updated", len(report.Updated),
		"failed", len(report.Failed))
	return report, nil
}

// RetickLine rewrites the single task line at lineNumber (1-based) of path. Used
// for legacy tasks without an anchor.
func RetickLine(path string, lineNumber int, completed bool, now time.Time) (bool, error) {
	content, err := vault.Read(path)
	if err != nil {
		return false, err
	}
	lines := strings.Split(content, "\n")
	idx := lineNumber - 1
	if idx < 0 || idx >= len(lines) || !IsTaskLine(lines[idx]) {
		return false, errors.NewNotFoundError("no task line at %s:%d", path, lineNumber)
	}

	stamp := ""
	if completed {
		stamp = now.Format(sym.StampLayout)
	}
	updated := Retick(lines[idx], completed, stamp)
	if updated == lines[idx] {
		return false, nil
	}
	lines[idx] = updated
	if err := vault.Write(path, strings.Join(lines, "\n")); err != nil {
		return false, err
	}
	return true, nil
}

// WriteStatusMeta records a started/blocked status on the task at lineNumber of path.
func WriteStatusMeta(path string, lineNumber int, status Status) (bool, error) {
	content, err := vault.Read(path)
	if err != nil {
		return false, err
	}
	lines, changed := SetStatusMeta(strings.Split(content, "\n"), lineNumber-1, status)
	if !changed {
		return false, nil
	}
	if err := vault.Write(path, strings.Join(lines, "\n")); err != nil {
		return false, err
	}
	return true, nil
}
