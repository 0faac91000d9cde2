package client

import (
	"errors"
	"fmt"
	"net/http"
)

// NetworkError wraps a transport-level failure (connection refused, timeout).
// Transient: the caller surfaces it as a dismissible notification and the
// user retries manually.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("booking server unreachable: %v", e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// APIError is a non-2xx (or success=false) answer from the booking server.
// The server's message is preserved verbatim so capacity rejections can be
// surfaced to the operator as-is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("booking server error (%d): %s", e.StatusCode, e.Message)
}

// IsNotFound reports whether the target no longer exists server-side.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusNotFound
}

// IsCapacityConflict reports whether the server rejected a commit because a
// competing commit won the capacity race.
func IsCapacityConflict(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == http.StatusConflict
}

// IsNetwork reports whether the failure happened below HTTP.
func IsNetwork(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}
