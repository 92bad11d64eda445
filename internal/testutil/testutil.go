// Package testutil provides shared test helpers for note folders and clocks.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

// NoteFolder creates a temporary folder holding the given files
// (name → content).
func NoteFolder(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		WriteFile(t, filepath.Join(dir, name), content)
	}
	return dir
}

// WriteFile replaces a file as another program would and moves its
// modification time forward, so change detection does not depend on the
// file system's timestamp resolution.
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	var prev time.Time
	if info, err := os.Stat(path); err == nil {
		prev = info.ModTime()
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if prev.IsZero() {
		return
	}
	later := prev.Add(2 * time.Second)
	if err := os.Chtimes(path, later, later); err != nil {
		t.Fatal(err)
	}
}

// ReadFile returns a file's content.
func ReadFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

// Clock is a settable time source.
type Clock struct {
	now time.Time
}

// NewClock returns a clock stopped at now.
func NewClock(now time.Time) *Clock {
	return &Clock{now: now}
}

// Now returns the current fake time.
func (c *Clock) Now() time.Time { return c.now }

// Advance moves the clock forward.
func (c *Clock) Advance(d time.Duration) { c.now = c.now.Add(d) }
