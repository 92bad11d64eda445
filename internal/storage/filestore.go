package storage

import (
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/starford/notestxt/internal/note"
	"github.com/starford/notestxt/internal/parser"
)

// FileStore is the in-memory image of one notes file. It loads on demand
// and tracks the file's modification time so that external edits can be
// detected.
type FileStore struct {
	path     string
	provider Provider
	clock    func() time.Time
	logger   *slog.Logger

	modTime time.Time
	notes   []*note.Note
}

// StoreOption configures a FileStore.
type StoreOption func(*FileStore)

// WithClock sets the time source used for new notes.
func WithClock(clock func() time.Time) StoreOption {
	return func(s *FileStore) { s.clock = clock }
}

// WithLogger sets the logger that receives header parse warnings.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *FileStore) { s.logger = logger }
}

// NewFileStore returns an empty store bound to path. Nothing is read until
// Load is called.
func NewFileStore(path string, provider Provider, opts ...StoreOption) *FileStore {
	s := &FileStore{
		path:     path,
		provider: provider,
		clock:    time.Now,
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Path returns the file path.
func (s *FileStore) Path() string { return s.path }

// HasChanged reports whether the file's modification time differs from the
// one recorded at the last load or save. A file that cannot be stat'ed
// counts as changed.
func (s *FileStore) HasChanged() bool {
	mt, err := s.provider.ModTime(s.path)
	if err != nil {
		return true
	}
	return !mt.Equal(s.modTime)
}

// Load reads and parses the file, replacing the in-memory notes.
func (s *FileStore) Load() ([]*note.Note, error) {
	// Stat first: a write racing the read then shows up as a change later.
	mt, err := s.provider.ModTime(s.path)
	if err != nil {
		return nil, err
	}
	data, err := s.provider.Read(s.path)
	if err != nil {
		return nil, err
	}

	records := parser.Parse(data)
	notes := make([]*note.Note, 0, len(records))
	for _, r := range records {
		n := note.Parse(r.Header, r.Body)
		for _, w := range n.Warnings() {
			s.logger.Warn("note header", "path", s.path, "id", n.ID(), "error", w)
		}
		notes = append(notes, n)
	}

	s.notes = notes
	s.modTime = mt
	return s.Notes(), nil
}

// Notes returns the notes in file order.
func (s *FileStore) Notes() []*note.Note {
	return slices.Clone(s.notes)
}

// NewNote creates a blank note stamped with the current time and appends
// it to the store. The file is not written.
func (s *FileStore) NewNote() *note.Note {
	n := note.Blank(s.clock())
	s.notes = append(s.notes, n)
	return n
}

// Append adds an existing note to the end of the store.
func (s *FileStore) Append(n *note.Note) {
	s.notes = append(s.notes, n)
}

// Owns reports whether n is held by this store.
func (s *FileStore) Owns(n *note.Note) bool {
	return slices.Contains(s.notes, n)
}

// Remove drops n from the store and reports whether it was present.
func (s *FileStore) Remove(n *note.Note) bool {
	i := slices.Index(s.notes, n)
	if i < 0 {
		return false
	}
	s.notes = slices.Delete(s.notes, i, i+1)
	return true
}

// Save writes every note back to the file in order and records the new
// modification time. External edits made since the last load are
// overwritten.
func (s *FileStore) Save() error {
	records := make([]parser.Record, 0, len(s.notes))
	for _, n := range s.notes {
		records = append(records, parser.Record{Header: n.Header().String(), Body: n.Text()})
	}
	if err := s.provider.Write(s.path, parser.Format(records)); err != nil {
		return err
	}
	mt, err := s.provider.ModTime(s.path)
	if err != nil {
		return fmt.Errorf("storage: saved %s but stat failed: %w", s.path, err)
	}
	s.modTime = mt
	for _, n := range s.notes {
		n.MarkSaved()
	}
	return nil
}
