// Package query selects, orders and summarizes notes for display.
package query

import (
	"cmp"
	"iter"
	"slices"

	"github.com/starford/notestxt/internal/note"
)

// Source provides the notes to select from.
type Source interface {
	All() iter.Seq[*note.Note]
}

// Engine runs selections against a Source.
type Engine struct {
	src Source
}

// New returns an engine reading from src.
func New(src Source) *Engine {
	return &Engine{src: src}
}

// Result is a selection together with its tag summary.
type Result struct {
	Selection Selection
	Notes     []*note.Note
	Strict    []TagCount
	NonStrict []TagCount
}

// Select returns the notes matching text, newest first. With a prefix
// filter, higher priority notes come first and recency breaks ties.
func (e *Engine) Select(text string) []*note.Note {
	return e.selectNotes(ParseSelection(text))
}

// Query runs Select and computes the tag cover of the result, leaving out
// the tags already selected.
func (e *Engine) Query(text string) Result {
	sel := ParseSelection(text)
	notes := e.selectNotes(sel)
	strict, nonStrict := TagCover(notes, sel.Tags)
	return Result{
		Selection: sel,
		Notes:     notes,
		Strict:    strict,
		NonStrict: nonStrict,
	}
}

func (e *Engine) selectNotes(sel Selection) []*note.Note {
	var out []*note.Note
	for n := range e.src.All() {
		if sel.Match(n) {
			out = append(out, n)
		}
	}
	Sort(out, sel.Prefix != "")
	return out
}

// Sort orders notes by creation time, newest first, then, when byPriority
// is set, by priority descending. Both passes are stable; notes created at
// the same time keep id order so results do not depend on source order.
func Sort(notes []*note.Note, byPriority bool) {
	slices.SortFunc(notes, func(a, b *note.Note) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	slices.SortStableFunc(notes, func(a, b *note.Note) int {
		return b.Created().Compare(a.Created())
	})
	if byPriority {
		slices.SortStableFunc(notes, func(a, b *note.Note) int {
			return cmp.Compare(b.Priority(), a.Priority())
		})
	}
}
