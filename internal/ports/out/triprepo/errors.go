package triprepo

import "errors"

var (
	ErrNotFound          = errors.New("trip not found")
	ErrDuplicateFilename = errors.New("photo filename already exists on trip")
)
