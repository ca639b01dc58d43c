package sym

import (
	"testing"
	"time"
	"unicode/utf8"
)

func TestEveryStatusHasGlyph(t *testing.T) {
	for _, status := range []string{"not_started", "started", "blocked", "done"} {
		g := StatusGlyph(status)
		if g == "" {
			t.Errorf("status %q has no glyph", status)
			continue
		}
		if utf8.RuneCountInString(g) != 1 {
			t.Errorf("glyph for %q should be a single rune, got %q", status, g)
		}
	}
	if StatusGlyph("archived") != "" {
		t.Error("unknown status should have no glyph")
	}
}

func TestCompletionGlyph(t *testing.T) {
	if CompletionGlyph(true) != Done || CompletionGlyph(false) != Open {
		t.Errorf("CompletionGlyph mismatch: %q %q", CompletionGlyph(true), CompletionGlyph(false))
	}
}

func TestLayoutsRoundTrip(t *testing.T) {
	ts := time.Date(2026, 1, 28, 9, 5, 0, 0, time.UTC)
	if got := ts.Format(StampLayout); got != "2026-01-28 09:05" {
		t.Errorf("StampLayout = %q", got)
	}
	if got := ts.Format(DayLayout); got != "20260128" {
		t.Errorf("DayLayout = %q", got)
	}
}
