package types

import "errors"

// Domain errors for type validation
var (
	ErrEmptyContent  = errors.New("content cannot be empty")
	ErrMissingSource = errors.New("source path is required")
	ErrInvalidLimit  = errors.New("limit must be >= 1")
	ErrInvalidScore  = errors.New("relevance score must be finite")
)
