package storage

import (
	"os"
	"path/filepath"
	"slices"
	"testing"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	s := NewFS()
	p := filepath.Join(dir, "notes.txt")
	content := []byte("\n---- id:a, c:, m:\nHello\n")
	if err := s.Write(p, content); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, err := s.Read(p)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if string(got) != string(content) {
		t.Errorf("content mismatch: got %q", got)
	}
}

func TestAtomicWriteNoLeftovers(t *testing.T) {
	dir := t.TempDir()
	s := NewFS()
	p := filepath.Join(dir, "atomic.txt")
	_ = s.Write(p, []byte("original content"))

	updated := []byte("updated content")
	if err := s.Write(p, updated); err != nil {
		t.Fatalf("Write: %v", err)
	}
	got, _ := s.Read(p)
	if string(got) != string(updated) {
		t.Errorf("expected updated content, got %q", got)
	}

	matches, _ := filepath.Glob(filepath.Join(dir, ".notes-tmp-*"))
	if len(matches) != 0 {
		t.Errorf("leftover temp files: %v", matches)
	}
}

func TestWriteKeepsPermissions(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "private.txt")
	if err := os.WriteFile(p, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := NewFS().Write(p, []byte("y")); err != nil {
		t.Fatalf("Write: %v", err)
	}
	info, err := os.Stat(p)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("perm = %v, want 0600", info.Mode().Perm())
	}
}

func TestTouch(t *testing.T) {
	dir := t.TempDir()
	s := NewFS()
	p := filepath.Join(dir, "notes.host.txt")
	if err := s.Touch(p); err != nil {
		t.Fatalf("Touch: %v", err)
	}
	_ = s.Write(p, []byte("keep"))
	if err := s.Touch(p); err != nil {
		t.Fatalf("Touch existing: %v", err)
	}
	got, _ := s.Read(p)
	if string(got) != "keep" {
		t.Errorf("Touch truncated an existing file: %q", got)
	}
}

func TestList(t *testing.T) {
	dir := t.TempDir()
	s := NewFS()
	_ = s.Write(filepath.Join(dir, "a.txt"), []byte("a"))
	_ = s.Write(filepath.Join(dir, "b.md"), []byte("b"))
	if err := os.Mkdir(filepath.Join(dir, "sub.d.txt"), 0o755); err != nil {
		t.Fatal(err)
	}

	names, err := s.List(dir)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	slices.Sort(names)
	if !slices.Equal(names, []string{"a.txt", "b.md"}) {
		t.Errorf("names = %v", names)
	}
}

func TestReadMissing(t *testing.T) {
	if _, err := NewFS().Read(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error reading a missing file")
	}
	if _, err := NewFS().ModTime(filepath.Join(t.TempDir(), "nope.txt")); err == nil {
		t.Error("expected error stat'ing a missing file")
	}
}
