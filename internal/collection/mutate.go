package collection

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/starford/notestxt/internal/apperr"
	"github.com/starford/notestxt/internal/note"
	"github.com/starford/notestxt/internal/storage"
)

// owner returns the store holding n, preferring the primary.
func (c *Collection) owner(n *note.Note) *storage.FileStore {
	for _, s := range c.stores {
		if s.Owns(n) {
			return s
		}
	}
	return nil
}

// SaveNote writes n if its text changed since it was loaded, or always when
// force is set. The modified timestamp is stamped with the current time. A
// note held by a secondary store moves to the primary store first, so edits
// only ever rewrite this machine's file.
func (c *Collection) SaveNote(n *note.Note, force bool) error {
	if !force && !n.Dirty() {
		return nil
	}
	owner := c.owner(n)
	if owner == nil {
		return fmt.Errorf("collection: save note %s: %w", n.ID(), apperr.ErrNotFound)
	}

	n.Touch(c.cfg.Clock())
	// Older copies of the same id in the primary are superseded by n.
	for _, held := range c.primary.Notes() {
		if held != n && held.ID() == n.ID() {
			c.primary.Remove(held)
		}
	}
	if owner != c.primary {
		owner.Remove(n)
		c.primary.Append(n)
		c.cfg.Logger.Info("collection: note moved to primary",
			slog.String("id", n.ID()),
			slog.String("from", owner.Path()),
		)
	}
	if err := c.primary.Save(); err != nil {
		return fmt.Errorf("collection: save note %s: %w", n.ID(), err)
	}
	c.notes[n.ID()] = n
	return nil
}

// SetCreated changes the creation date of n and saves it.
func (c *Collection) SetCreated(n *note.Note, created string) error {
	if _, ok := note.ParseDate(created); !ok {
		return fmt.Errorf("collection: set created: %w", &apperr.ParseWarning{Field: "created", Value: created})
	}
	n.SetCreatedStr(created)
	return c.SaveNote(n, true)
}

// DeleteNote removes every copy of n's id from every store and rewrites the
// affected files.
func (c *Collection) DeleteNote(n *note.Note) error {
	id := n.ID()
	var (
		found bool
		errs  []error
	)
	for _, s := range c.stores {
		removed := false
		for _, held := range s.Notes() {
			if held.ID() == id {
				removed = s.Remove(held) || removed
			}
		}
		if !removed {
			continue
		}
		found = true
		if err := s.Save(); err != nil {
			errs = append(errs, fmt.Errorf("collection: delete note %s from %s: %w", id, s.Path(), err))
		}
	}
	if !found {
		return fmt.Errorf("collection: delete note %s: %w", id, apperr.ErrNotFound)
	}
	delete(c.notes, id)
	return errors.Join(errs...)
}
