// Package note defines the note record: its typed header, its text and the
// metadata derived from that text (title, tags, words, prefix, priority).
package note

import (
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/starford/notestxt/internal/apperr"
	"github.com/starford/notestxt/internal/checksum"
)

// Note is one record of a notes file.
//
// The id is fixed when the note is created or parsed and never changes.
// Derived fields are recomputed on every text change.
type Note struct {
	id string

	created     time.Time
	createdStr  string
	modified    time.Time
	modifiedStr string
	extra       []HeaderField

	text      string
	savedText string

	title  string
	tags   map[string]struct{}
	words  map[string]struct{}
	prefix string

	warnings []error

	// revision counts in-memory edits since the note was parsed.
	revision int
}

// Parse builds a Note from a raw record header and body.
func Parse(header, body string) *Note {
	h := ParseHeader(header)
	n := &Note{extra: h.Extra}
	n.text = NormalizeText(body)
	n.savedText = n.text

	switch {
	case h.ID != "":
		n.id = h.ID
	case strings.TrimSpace(n.text) != "":
		n.id = checksum.String(n.text)
	default:
		n.id = randomID()
	}

	n.setDates(h.Created, h.Modified)
	n.apply(derive(n.text))
	return n
}

// Blank returns an empty note created at now. Its id is random.
func Blank(now time.Time) *Note {
	return Parse(now.Format(Layout), "")
}

func randomID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// ID returns the stable identifier.
func (n *Note) ID() string { return n.id }

// Text returns the full body.
func (n *Note) Text() string { return n.text }

// Title is the first non-blank line, trimmed.
func (n *Note) Title() string { return n.title }

// Prefix is the kind marker taken from the title ("%", "!!", "?", ".", ...).
func (n *Note) Prefix() string { return n.prefix }

// Priority is the length of the prefix.
func (n *Note) Priority() int { return len(n.prefix) }

// Hidden reports whether the note is left out of unfiltered selections.
func (n *Note) Hidden() bool { return n.prefix == HiddenPrefix }

// Created is the creation time, or FarFuture when unknown.
func (n *Note) Created() time.Time { return n.created }

// CreatedStr is the canonical creation timestamp, empty when unknown.
func (n *Note) CreatedStr() string { return n.createdStr }

// Modified is the modification time; it falls back to Created.
func (n *Note) Modified() time.Time { return n.modified }

// ModifiedStr is the canonical modification timestamp, empty when unknown.
func (n *Note) ModifiedStr() string { return n.modifiedStr }

// HasTag reports whether tag (including the leading '#') occurs in the text.
func (n *Note) HasTag(tag string) bool {
	_, ok := n.tags[tag]
	return ok
}

// HasWord reports whether word occurs in the text.
func (n *Note) HasWord(word string) bool {
	_, ok := n.words[word]
	return ok
}

// Tags returns the sorted tag set.
func (n *Note) Tags() []string { return sortedKeys(n.tags) }

// Words returns the sorted word set.
func (n *Note) Words() []string { return sortedKeys(n.words) }

// TagCount is the number of distinct tags.
func (n *Note) TagCount() int { return len(n.tags) }

// Warnings lists header values that could not be parsed.
func (n *Note) Warnings() []error { return n.warnings }

// Header returns the typed header as it will be written.
func (n *Note) Header() Header {
	return Header{
		ID:       n.id,
		Created:  n.createdStr,
		Modified: n.modifiedStr,
		Extra:    n.extra,
	}
}

// Revision increases on every edit, including edits made within the same
// second or never saved.
func (n *Note) Revision() int { return n.revision }

// Dirty reports whether the text changed since the note was loaded or
// last marked saved.
func (n *Note) Dirty() bool { return n.text != n.savedText }

// MarkSaved records the current text as persisted.
func (n *Note) MarkSaved() { n.savedText = n.text }

// SetText replaces the body. The id is unaffected.
func (n *Note) SetText(text string) {
	n.text = NormalizeText(text)
	n.apply(derive(n.text))
	n.revision++
}

// SetCreatedStr sets the creation timestamp from any accepted layout.
func (n *Note) SetCreatedStr(s string) {
	n.setDates(s, n.modifiedStr)
	n.revision++
}

// SetModifiedStr sets the modification timestamp from any accepted layout.
func (n *Note) SetModifiedStr(s string) {
	n.setDates(n.createdStr, s)
	n.revision++
}

// Touch stamps the note as modified at now.
func (n *Note) Touch(now time.Time) {
	n.SetModifiedStr(now.Format(Layout))
}

func (n *Note) setDates(created, modified string) {
	n.created, n.createdStr = FarFuture, ""
	if t, ok := ParseDate(created); ok {
		n.created, n.createdStr = t, t.Format(Layout)
	} else if created != "" {
		n.warnings = append(n.warnings, &apperr.ParseWarning{Field: "created", Value: created})
	}

	n.modified, n.modifiedStr = n.created, ""
	if t, ok := ParseDate(modified); ok {
		n.modified, n.modifiedStr = t, t.Format(Layout)
	} else if modified != "" {
		n.warnings = append(n.warnings, &apperr.ParseWarning{Field: "modified", Value: modified})
	}
}

func (n *Note) apply(d derived) {
	n.title = d.title
	n.tags = d.tags
	n.words = d.words
	n.prefix = d.prefix
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	slices.Sort(out)
	return out
}
