package registry

import "errors"

// Sentinel kinds for session registry errors.
var (
	ErrNotFound = errors.New("session not found")
	ErrFull     = errors.New("session registry full")
)
