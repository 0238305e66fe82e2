package directory

import "errors"

// ErrNotFound indicates the directory has no user for the given id/username.
var ErrNotFound = errors.New("directory user not found")
