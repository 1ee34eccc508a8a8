package storage

import (
	"errors"
	"time"
)

// ErrWrite is returned when an encoded image cannot be written to disk.
// Callers surface it as a server-side failure; it is never retried.
var ErrWrite = errors.New("image write failed")

// ImageStorage defines the profile image path and file operations.
// Paths exchanged with callers are always relative, in the form
// <date>/<filename>; that relative form is what gets persisted on the
// user record and exposed publicly.
type ImageStorage interface {
	// Resolve computes the relative storage path for a user's image as
	// of the given time: <ISO-8601 UTC date>/<userID>.<ext>.
	Resolve(userID string, ext string, asOf time.Time) string

	// Write stores encoded image bytes under the relative path, creating
	// parent directories as needed and overwriting any existing file.
	Write(rel string, data []byte) error

	// Remove deletes the file at the relative path if it exists, then
	// prunes the parent date directory if it is now empty. Removing a
	// path that does not exist is not an error.
	Remove(rel string) error
}
