// Package apperr defines the error taxonomy shared by the note packages.
package apperr

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound      = errors.New("not found")
	ErrConflict      = errors.New("conflict")
	ErrAlreadyExists = errors.New("already exists")
)

// ExternalChangeError reports note files that changed on disk while
// in-memory edits were still unsaved. Saving now may overwrite those changes.
type ExternalChangeError struct {
	Paths []string
}

func (e *ExternalChangeError) Error() string {
	return fmt.Sprintf("notes changed externally in %s", strings.Join(e.Paths, ", "))
}

// Is makes errors.Is(err, ErrConflict) match.
func (e *ExternalChangeError) Is(target error) bool {
	return target == ErrConflict
}

// ParseWarning describes a header value that could not be interpreted.
// The record still loads; the affected field falls back to its sentinel.
type ParseWarning struct {
	Field string
	Value string
}

func (w *ParseWarning) Error() string {
	return fmt.Sprintf("unparsable %s %q", w.Field, w.Value)
}
