package query

import (
	"strings"

	"github.com/starford/notestxt/internal/note"
)

// Selection is a parsed selection string.
type Selection struct {
	// Prefix restricts results to notes whose prefix starts with it. Empty
	// means every kind except hidden notes.
	Prefix string
	// Tags must all be present. A bare "#" matches notes without tags.
	Tags []string
	// Words must all be present.
	Words []string
}

// ParseSelection tokenizes a lower-cased selection string. A leading prefix
// marker becomes the prefix filter; "#" tokens are tag filters and the rest
// are word filters.
func ParseSelection(text string) Selection {
	var s Selection
	tokens := strings.Fields(strings.ToLower(text))
	if len(tokens) > 0 && note.IsPrefix(tokens[0]) {
		s.Prefix, tokens = tokens[0], tokens[1:]
	}
	for _, tok := range tokens {
		if strings.HasPrefix(tok, "#") {
			s.Tags = append(s.Tags, tok)
		} else {
			s.Words = append(s.Words, tok)
		}
	}
	return s
}

// String renders the selection back into its text form.
func (s Selection) String() string {
	parts := make([]string, 0, 1+len(s.Tags)+len(s.Words))
	if s.Prefix != "" {
		parts = append(parts, s.Prefix)
	}
	parts = append(parts, s.Tags...)
	parts = append(parts, s.Words...)
	return strings.Join(parts, " ")
}

// Match reports whether n passes the type filter and the tag/word filter.
func (s Selection) Match(n *note.Note) bool {
	if s.Prefix != "" {
		if !strings.HasPrefix(n.Prefix(), s.Prefix) {
			return false
		}
	} else if n.Hidden() {
		return false
	}
	for _, tag := range s.Tags {
		if tag == "#" {
			if n.TagCount() > 0 {
				return false
			}
		} else if !n.HasTag(tag) {
			return false
		}
	}
	for _, w := range s.Words {
		if !n.HasWord(w) {
			return false
		}
	}
	return true
}
