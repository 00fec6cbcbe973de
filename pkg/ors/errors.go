package ors

import (
	"errors"
	"fmt"
)

// ErrNoRoute is returned when the directions endpoint answers successfully
// but carries no route for the requested mode.
var ErrNoRoute = errors.New("ors: no route found for the requested mode")

// UpstreamError is a failed call to the routing provider. Message carries the
// provider's own error text when one was present; NoResponse marks transport
// failures where no HTTP response arrived at all.
type UpstreamError struct {
	StatusCode int
	Message    string
	NoResponse bool
	Err        error
}

// Error renders the most specific description available: provider message,
// then HTTP status, then "no response", then a generic fallback.
func (e *UpstreamError) Error() string {
	switch {
	case e.Message != "":
		return fmt.Sprintf("ors: API error: %s", e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("ors: request failed with status code %d", e.StatusCode)
	case e.NoResponse:
		return "ors: no response received from server"
	default:
		return "ors: error calling routing service"
	}
}

// Unwrap implements the errors.Unwrap interface for error chaining.
func (e *UpstreamError) Unwrap() error {
	return e.Err
}
