package types

import "errors"

// Domain errors for type validation
var (
	ErrInvalidRole    = errors.New("role must be user or assistant")
	ErrEmptyContent   = errors.New("content cannot be empty")
	ErrMissingSession = errors.New("session ID is required")
	ErrInvalidScore   = errors.New("score must be between 0 and 1")
)
