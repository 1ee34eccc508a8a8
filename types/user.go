package types

import (
	"time"

	"github.com/google/uuid"
)

// User represents an account in the system.
// It contains identity, profile, and audit metadata.
type User struct {
	// ID is the unique identifier of the user, generated before the
	// record is first persisted.
	ID uuid.UUID `json:"id" db:"id"`

	// Username is the unique name chosen by the user (2-24 characters).
	Username string `json:"username" db:"username"`

	// FirstName is the user's first name.
	FirstName string `json:"first_name" db:"first_name"`

	// LastName is the user's last name.
	LastName string `json:"last_name" db:"last_name"`

	// PasswordHash stores the hashed representation of the user's password.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"password_hash"`

	// ProfileImage is the relative storage path of the user's profile
	// image, in the form <date>/<id>.<ext>. It is never the remote URL
	// the image was fetched from.
	ProfileImage string `json:"profile_image" db:"profile_image"`

	// CreatedAt is the timestamp when the user account was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// ModifiedAt is the timestamp of the most recent update to the account.
	ModifiedAt time.Time `json:"modified_at" db:"modified_at"`

	// DeletedAt marks the account as logically absent when set. The row
	// is retained; every read path must treat a deleted user as missing.
	DeletedAt *time.Time `json:"-" db:"deleted_at"`
}

// Deleted reports whether the user has been soft-deleted.
func (u User) Deleted() bool {
	return u.DeletedAt != nil
}
