package store

import "fmt"

// Messages exposed in State.Error.
const (
	FetchFailureMessage  = "Failed to load resources. Please try again."
	CreateFailureMessage = "Failed to create resource. Please try again."
)

// Kind tells which operation failed.
type Kind int

// Failure kinds.
const (
	FetchFailure Kind = iota + 1
	CreateFailure
)

// Message returns user facing message of a failure kind.
func (k Kind) Message() string {
	switch k {
	case FetchFailure:
		return FetchFailureMessage
	case CreateFailure:
		return CreateFailureMessage
	default:
		return ""
	}
}

func (k Kind) operation() string {
	switch k {
	case FetchFailure:
		return "error fetching resources"
	case CreateFailure:
		return "error creating resource"
	default:
		return "store operation failed"
	}
}

// String implements fmt.Stringer.
func (k Kind) String() string {
	switch k {
	case FetchFailure:
		return "fetch failure"
	case CreateFailure:
		return "create failure"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Error is a failed store operation.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

// Error implements error.
func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}

	return e.Message + " (" + e.Err.Error() + ")"
}

// Unwrap returns the transport or decoding cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// StatusError is returned for a response with non-2xx status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
}

// Error implements error.
func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected response status %d", e.Method, e.URL, e.StatusCode)
}
