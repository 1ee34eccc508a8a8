package store

import "errors"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// ErrDeleted is returned when a record exists but has been soft-deleted.
// Callers report it like ErrNotFound, with a distinct message.
var ErrDeleted = errors.New("deleted")

// ErrUsernameTaken is returned when an insert or update violates the
// unique constraint on username.
var ErrUsernameTaken = errors.New("username already in use")
