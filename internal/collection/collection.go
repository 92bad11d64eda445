// Package collection merges the notes of several files into one set keyed
// by note id.
//
// One file is the primary store: new notes and edited notes are written
// there. Secondary stores are typically the main files of other machines
// sharing the folder. When the same id appears in several stores, the copy
// with the greatest modified timestamp wins.
package collection

import (
	"errors"
	"fmt"
	"iter"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/starford/notestxt/internal/apperr"
	"github.com/starford/notestxt/internal/note"
	"github.com/starford/notestxt/internal/storage"
)

// Config carries the collaborators a Collection needs.
type Config struct {
	Provider storage.Provider
	Clock    func() time.Time
	Logger   *slog.Logger
}

func (c Config) withDefaults() Config {
	if c.Provider == nil {
		c.Provider = storage.NewFS()
	}
	if c.Clock == nil {
		c.Clock = time.Now
	}
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
	return c
}

// Collection is the merged view over a primary and any number of secondary
// stores. It is not safe for concurrent use.
type Collection struct {
	cfg     Config
	primary *storage.FileStore
	stores  []*storage.FileStore // primary first
	notes   map[string]*note.Note
}

// New builds a collection over existing files and performs the first
// update. Every file must exist.
func New(cfg Config, primary string, secondaries ...string) (*Collection, error) {
	cfg = cfg.withDefaults()
	c := &Collection{
		cfg:   cfg,
		notes: make(map[string]*note.Note),
	}
	for _, path := range append([]string{primary}, secondaries...) {
		if slices.ContainsFunc(c.stores, func(s *storage.FileStore) bool { return s.Path() == path }) {
			continue
		}
		s, err := c.openStore(path)
		if err != nil {
			return nil, err
		}
		c.stores = append(c.stores, s)
	}
	c.primary = c.stores[0]

	if _, err := c.Update(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Collection) openStore(path string) (*storage.FileStore, error) {
	if _, err := c.cfg.Provider.ModTime(path); err != nil {
		return nil, fmt.Errorf("collection: note file %s: %w (%v)", path, apperr.ErrNotFound, err)
	}
	return storage.NewFileStore(path, c.cfg.Provider,
		storage.WithClock(c.cfg.Clock),
		storage.WithLogger(c.cfg.Logger),
	), nil
}

// AddFile adds a secondary store. Its notes are merged on the next Update.
// Adding a file that is already part of the collection is a no-op.
func (c *Collection) AddFile(path string) error {
	for _, s := range c.stores {
		if s.Path() == path {
			return nil
		}
	}
	s, err := c.openStore(path)
	if err != nil {
		return err
	}
	c.stores = append(c.stores, s)
	c.cfg.Logger.Info("collection: file added", slog.String("path", path))
	return nil
}

// Files returns the store paths, primary first.
func (c *Collection) Files() []string {
	out := make([]string, len(c.stores))
	for i, s := range c.stores {
		out[i] = s.Path()
	}
	return out
}

// Primary returns the path of the primary store.
func (c *Collection) Primary() string { return c.primary.Path() }

// Update reloads every store whose file changed since it was last seen and
// merges the result. It returns the paths of the changed files. A store
// that fails to load keeps its previous notes; the failure is returned
// after the remaining stores have been processed.
func (c *Collection) Update() ([]string, error) {
	var (
		changed []string
		errs    []error
	)
	for _, s := range c.stores {
		if !s.HasChanged() {
			continue
		}
		changed = append(changed, s.Path())
		notes, err := s.Load()
		if err != nil {
			errs = append(errs, fmt.Errorf("collection: load %s: %w", s.Path(), err))
			continue
		}
		for _, n := range notes {
			c.merge(n)
		}
	}
	if len(changed) > 0 {
		c.reconcile()
		c.cfg.Logger.Debug("collection: updated",
			slog.Int("changed", len(changed)),
			slog.Int("notes", len(c.notes)),
		)
	}
	return changed, errors.Join(errs...)
}

// merge applies the winning rule: the greater modifiedStr wins and a tie
// goes to the note merged last.
func (c *Collection) merge(n *note.Note) {
	cur, ok := c.notes[n.ID()]
	if !ok || n.ModifiedStr() >= cur.ModifiedStr() {
		c.notes[n.ID()] = n
	}
}

// reconcile repairs entries whose note is no longer held by any store,
// which happens after a reload replaced or dropped it. Ids held by no
// store are removed.
func (c *Collection) reconcile() {
	held := make(map[string][]*note.Note, len(c.notes))
	for _, s := range c.stores {
		for _, n := range s.Notes() {
			held[n.ID()] = append(held[n.ID()], n)
		}
	}
	for id, cur := range c.notes {
		candidates := held[id]
		switch {
		case len(candidates) == 0:
			delete(c.notes, id)
		case !slices.Contains(candidates, cur):
			delete(c.notes, id)
			for _, n := range candidates {
				c.merge(n)
			}
		}
	}
}

// NewNote creates an empty note in the primary store and registers it.
// Nothing is written until the note is saved.
func (c *Collection) NewNote() *note.Note {
	n := c.primary.NewNote()
	c.notes[n.ID()] = n
	return n
}

// All yields the current winning notes in no particular order.
func (c *Collection) All() iter.Seq[*note.Note] {
	return maps.Values(c.notes)
}

// Notes returns the current winning notes in no particular order.
func (c *Collection) Notes() []*note.Note {
	return slices.Collect(c.All())
}

// Len returns the number of distinct notes.
func (c *Collection) Len() int { return len(c.notes) }

// Get returns the winning note for id.
func (c *Collection) Get(id string) (*note.Note, bool) {
	n, ok := c.notes[id]
	return n, ok
}

// Dirty returns the notes with edits that have not been saved.
func (c *Collection) Dirty() []*note.Note {
	var out []*note.Note
	for n := range c.All() {
		if n.Dirty() {
			out = append(out, n)
		}
	}
	return out
}

// Stats counts visible and hidden notes.
func (c *Collection) Stats() (visible, hidden int) {
	for n := range c.All() {
		if n.Hidden() {
			hidden++
		} else {
			visible++
		}
	}
	return visible, hidden
}

// Tags returns every tag used by any note, sorted.
func (c *Collection) Tags() []string {
	set := make(map[string]struct{})
	for n := range c.All() {
		for _, t := range n.Tags() {
			set[t] = struct{}{}
		}
	}
	return slices.Sorted(maps.Keys(set))
}
