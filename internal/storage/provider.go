// Package storage holds the filesystem abstraction and the per-file note store.
package storage

import "time"

// Provider is the filesystem the note stores read from and write to.
type Provider interface {
	// ModTime returns the last modification time of the file at path.
	ModTime(path string) (time.Time, error)
	// Read returns the raw bytes of the file at path.
	Read(path string) ([]byte, error)
	// Write replaces the file at path with content.
	Write(path string, content []byte) error
	// Touch creates an empty file at path if none exists.
	Touch(path string) error
	// List returns the names of the regular files directly inside dir.
	List(dir string) ([]string, error)
}
