package domain

import "time"

// User is the domain representation of a locally stored user profile.
// Username is the natural key and is immutable after creation.
//
// Password is stored and returned opaque, as-is. This mirrors the system this
// replaces and is a known gap, not a design decision.
type User struct {
	Username  string
	Password  string
	FirstName string
	LastName  string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// DirectoryUser is a profile resolved from the external identity directory.
type DirectoryUser struct {
	ID          string
	Username    string
	DisplayName string
	FirstName   string
	LastName    string
}
