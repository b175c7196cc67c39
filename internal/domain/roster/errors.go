package roster

import "errors"

// Sentinel kinds for roster errors.
var (
	ErrUnknownColumn = errors.New("unknown column")
)
