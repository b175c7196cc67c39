package service

import "errors"

// Sentinel kinds for service errors.
var (
	ErrNotStarted      = errors.New("service not started")
	ErrSubmitInFlight  = errors.New("a submission is already in flight")
	ErrDuplicateSubmit = errors.New("identical match already submitted")
	ErrUnknownPhase    = errors.New("unknown drag phase")
)
