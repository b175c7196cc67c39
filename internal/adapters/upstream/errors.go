package upstream

import (
	"errors"
	"fmt"
)

// Sentinel kinds for upstream errors.
var (
	ErrUnavailable = errors.New("upstream unavailable")
	ErrStatus      = errors.New("upstream rejected request")
)

// StatusError carries a non-2xx upstream response. Message holds the
// response body when the backend provided one, so the operator sees the
// server's own explanation.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("upstream returned %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("upstream returned %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrStatus }
