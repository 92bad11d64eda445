package collection

import (
	"errors"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/starford/notestxt/internal/apperr"
)

// MainFileName returns the name of the primary file for a machine.
func MainFileName(hostname string) string {
	return "notes." + hostname + ".txt"
}

// IsNoteFile reports whether a file name follows the "<name>.<something>.txt"
// convention. Dotfiles are never note files.
func IsNoteFile(name string) bool {
	return !strings.HasPrefix(name, ".") &&
		strings.HasSuffix(name, ".txt") &&
		strings.Count(name, ".") >= 2
}

// FromFolder builds a collection from a notes folder. The primary store is
// notes.<hostname>.txt, created empty when missing; every other note file in
// the folder becomes a secondary store.
func FromFolder(cfg Config, folder, hostname string) (*Collection, error) {
	if hostname == "" {
		return nil, errors.New("collection: hostname is required")
	}
	cfg = cfg.withDefaults()

	names, err := cfg.Provider.List(folder)
	if err != nil {
		return nil, fmt.Errorf("collection: note folder %s: %w (%v)", folder, apperr.ErrNotFound, err)
	}

	main := MainFileName(hostname)
	if err := cfg.Provider.Touch(filepath.Join(folder, main)); err != nil {
		return nil, fmt.Errorf("collection: create main file: %w", err)
	}

	slices.Sort(names)
	var secondaries []string
	for _, name := range names {
		if name != main && IsNoteFile(name) {
			secondaries = append(secondaries, filepath.Join(folder, name))
		}
	}
	return New(cfg, filepath.Join(folder, main), secondaries...)
}
