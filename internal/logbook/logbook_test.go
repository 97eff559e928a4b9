package logbook

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTailReturnsRecentLines(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "journey.log")
	book, err := New(path)
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	for i := 0; i < 5; i++ {
		book.Info("entry %d", i)
	}
	lines := book.Tail(3)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[2], "entry 4") {
		t.Fatalf("expected newest entry last, got %q", lines[2])
	}
	if !strings.Contains(lines[0], "INFO") {
		t.Fatalf("expected level in line, got %q", lines[0])
	}
}

func TestNilLogbookIsSafe(t *testing.T) {
	var book *Logbook
	book.Info("ignored")
	book.Warn("ignored")
	book.Error("ignored")
	book.Step("intake", "followups")
	if got := book.Tail(5); got != nil {
		t.Fatalf("expected nil tail from nil logbook, got %v", got)
	}
	if book.Path() != "" {
		t.Fatalf("expected empty path from nil logbook")
	}
}

func TestStepRecordsTransition(t *testing.T) {
	dir := t.TempDir()
	book, err := New(filepath.Join(dir, "journey.log"))
	if err != nil {
		t.Fatalf("new logbook: %v", err)
	}
	book.Step("", "intake")
	book.Step("intake", "followups")
	lines := book.Tail(2)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if !strings.Contains(lines[0], "entered intake") {
		t.Fatalf("expected entered line, got %q", lines[0])
	}
	if !strings.Contains(lines[1], "intake") || !strings.Contains(lines[1], "followups") {
		t.Fatalf("expected transition line, got %q", lines[1])
	}
}
