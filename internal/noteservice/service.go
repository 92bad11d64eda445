// Package noteservice serializes access to the note collection for the HTTP
// API, the MCP server, the CLI and the file watcher.
package noteservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/starford/notestxt/internal/apperr"
	"github.com/starford/notestxt/internal/collection"
	"github.com/starford/notestxt/internal/note"
	"github.com/starford/notestxt/internal/query"
)

// Publisher receives change notifications. *sse.Broker implements it.
type Publisher interface {
	PublishNoteEvent(kind, id string)
	PublishFilesEvent(kind string, paths []string)
}

// NoteDetail is the full representation of a note.
type NoteDetail struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Text     string   `json:"text"`
	Prefix   string   `json:"prefix"`
	Priority int      `json:"priority"`
	Hidden   bool     `json:"hidden"`
	Tags     []string `json:"tags"`
	Created  string   `json:"created"`
	Modified string   `json:"modified"`
	Unsaved  bool     `json:"unsaved"`
	// Version changes with every edit, saved or not. Clients send it back
	// as If-Match.
	Version  string   `json:"version"`
}

// NoteListItem is a lightweight item in a list response.
type NoteListItem struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Prefix   string   `json:"prefix"`
	Priority int      `json:"priority"`
	Tags     []string `json:"tags"`
	Created  string   `json:"created"`
	Modified string   `json:"modified"`
}

// SelectResult is an ordered selection with its tag summary.
type SelectResult struct {
	Query     string           `json:"query"`
	Items     []NoteListItem   `json:"items"`
	Total     int              `json:"total"`
	Strict    []query.TagCount `json:"strict"`
	NonStrict []query.TagCount `json:"non_strict"`
}

// Status summarizes the collection.
type Status struct {
	Visible int      `json:"visible"`
	Hidden  int      `json:"hidden"`
	Unsaved int      `json:"unsaved"`
	Primary string   `json:"primary"`
	Files   []string `json:"files"`
}

// Line renders the status the way it is shown to users.
func (s Status) Line() string {
	return fmt.Sprintf("%d notes (+ %d hidden)", s.Visible, s.Hidden)
}

// Option configures a Service.
type Option func(*Service)

// WithPublisher sets the receiver of change notifications.
func WithPublisher(p Publisher) Option {
	return func(s *Service) { s.pub = p }
}

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// Service is the single point of entry to a collection. Every method holds
// the same lock, so collection and notes are only ever touched by one
// caller at a time.
type Service struct {
	mu     sync.Mutex
	coll   *collection.Collection
	engine *query.Engine
	pub    Publisher
	logger *slog.Logger
}

// NewService wraps coll.
func NewService(coll *collection.Collection, opts ...Option) *Service {
	s := &Service{
		coll:   coll,
		engine: query.New(coll),
		pub:    nopPublisher{},
		logger: slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Refresh merges external file changes. When files changed while edits
// were unsaved, the merge still happens and an *apperr.ExternalChangeError
// listing the files is returned so the caller can warn before saving.
func (s *Service) Refresh(_ context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	unsaved := len(s.coll.Dirty())
	changed, err := s.coll.Update()
	if len(changed) == 0 {
		return nil, err
	}

	s.logger.Info("notes: files changed externally", slog.Any("paths", changed))
	s.pub.PublishFilesEvent("changed", changed)
	if unsaved > 0 {
		s.logger.Warn("notes: external change while edits are unsaved",
			slog.Any("paths", changed),
			slog.Int("unsaved", unsaved),
		)
		s.pub.PublishFilesEvent("conflict", changed)
		err = errors.Join(err, &apperr.ExternalChangeError{Paths: changed})
	}
	return changed, err
}

// AddFile adds a secondary note file discovered after startup.
func (s *Service) AddFile(_ context.Context, path string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.coll.AddFile(path)
}

// Select runs a selection. A positive limit truncates the items; Total
// always counts every match.
func (s *Service) Select(_ context.Context, text string, limit int) SelectResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := s.engine.Query(text)
	notes := r.Notes
	if limit > 0 && len(notes) > limit {
		notes = notes[:limit]
	}
	items := make([]NoteListItem, len(notes))
	for i, n := range notes {
		items[i] = listItem(n)
	}
	return SelectResult{
		Query:     r.Selection.String(),
		Items:     items,
		Total:     len(r.Notes),
		Strict:    nonNilSlice(r.Strict),
		NonStrict: nonNilSlice(r.NonStrict),
	}
}

// Tags returns every tag in use, sorted.
func (s *Service) Tags(_ context.Context) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return nonNilSlice(s.coll.Tags())
}

// GetNote returns the note with id.
func (s *Service) GetNote(_ context.Context, id string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.coll.Get(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	return detail(n), nil
}

// CreateNote adds a note with text to the primary file and saves it.
func (s *Service) CreateNote(_ context.Context, text string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.coll.NewNote()
	n.SetText(text)
	if err := s.coll.SaveNote(n, true); err != nil {
		return nil, err
	}
	s.logger.Info("notes: created", slog.String("id", n.ID()))
	s.pub.PublishNoteEvent("created", n.ID())
	return detail(n), nil
}

// UpdateNote replaces the text of a note. A non-empty ifMatch must equal
// the note's current version. A draft update changes the note
// in memory only; a later non-draft update or save writes it.
func (s *Service) UpdateNote(_ context.Context, id, text, ifMatch string, draft bool) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.coll.Get(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if ifMatch != "" && ifMatch != version(n) {
		return nil, apperr.ErrConflict
	}
	n.SetText(text)
	if !draft {
		if err := s.coll.SaveNote(n, false); err != nil {
			return nil, err
		}
	}
	s.pub.PublishNoteEvent("updated", n.ID())
	return detail(n), nil
}

// SetCreated changes the creation date of a note and saves it.
func (s *Service) SetCreated(_ context.Context, id, created string) (*NoteDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.coll.Get(id)
	if !ok {
		return nil, apperr.ErrNotFound
	}
	if err := s.coll.SetCreated(n, created); err != nil {
		return nil, err
	}
	s.pub.PublishNoteEvent("updated", n.ID())
	return detail(n), nil
}

// DeleteNote removes a note from every file holding it.
func (s *Service) DeleteNote(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n, ok := s.coll.Get(id)
	if !ok {
		return apperr.ErrNotFound
	}
	if err := s.coll.DeleteNote(n); err != nil {
		return err
	}
	s.logger.Info("notes: deleted", slog.String("id", id))
	s.pub.PublishNoteEvent("deleted", id)
	return nil
}

// Status reports note counts and the files in use.
func (s *Service) Status(_ context.Context) Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	visible, hidden := s.coll.Stats()
	return Status{
		Visible: visible,
		Hidden:  hidden,
		Unsaved: len(s.coll.Dirty()),
		Primary: s.coll.Primary(),
		Files:   s.coll.Files(),
	}
}

func detail(n *note.Note) *NoteDetail {
	return &NoteDetail{
		ID:       n.ID(),
		Title:    n.Title(),
		Text:     n.Text(),
		Prefix:   n.Prefix(),
		Priority: n.Priority(),
		Hidden:   n.Hidden(),
		Tags:     nonNilSlice(n.Tags()),
		Created:  n.CreatedStr(),
		Modified: n.ModifiedStr(),
		Unsaved:  n.Dirty(),
		Version:  version(n),
	}
}

// version combines the modified timestamp with the in-memory revision, so
// drafts and saves within the same second still get distinct versions.
func version(n *note.Note) string {
	return fmt.Sprintf("%s/%d", n.ModifiedStr(), n.Revision())
}

func listItem(n *note.Note) NoteListItem {
	return NoteListItem{
		ID:       n.ID(),
		Title:    n.Title(),
		Prefix:   n.Prefix(),
		Priority: n.Priority(),
		Tags:     nonNilSlice(n.Tags()),
		Created:  n.CreatedStr(),
		Modified: n.ModifiedStr(),
	}
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}

type nopPublisher struct{}

func (nopPublisher) PublishNoteEvent(string, string)     {}
func (nopPublisher) PublishFilesEvent(string, []string) {}
