package models

import "errors"

// Storage-level sentinels. Callers wrap them with context and match with errors.Is.
var (
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("already exists")
	ErrConflict      = errors.New("concurrent modification, retry")
)
