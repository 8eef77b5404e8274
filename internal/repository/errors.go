package repository

import "errors"

var (
	// ErrNotFound is returned when the requested record or document does not exist.
	ErrNotFound = errors.New("repository: not found")
	// ErrDuplicate is returned when a write violates a unique index.
	ErrDuplicate = errors.New("repository: duplicate key")
)
