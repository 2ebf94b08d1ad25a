package submit

import (
	"errors"
	"fmt"
)

// DefaultFallbackMessage is shown when a failure carries no usable message.
const DefaultFallbackMessage = "An error occurred. Please try again."

// ErrDuplicateSubmission is returned by Binding.Submit while a request is in
// flight. It is never surfaced to the user.
var ErrDuplicateSubmission = errors.New("submit: submission already in flight")

// ErrUnbound is returned by Binding.Submit after Unbind.
var ErrUnbound = errors.New("submit: binding released")

// ValidationError blocks a submission before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ServerRejection is a well-formed error answer from the endpoint.
type ServerRejection struct {
	Status  int
	Message string
}

func (e *ServerRejection) Error() string {
	return fmt.Sprintf("server rejected submission (status %d): %s", e.Status, e.Message)
}

// TransportFailure covers network errors and bodies that could not be parsed.
type TransportFailure struct {
	Status int
	Err    error
}

func (e *TransportFailure) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("transport failure (status %d): %v", e.Status, e.Err)
	}
	return fmt.Sprintf("transport failure: %v", e.Err)
}

func (e *TransportFailure) Unwrap() error { return e.Err }

// UserMessage returns the text to show for err, falling back when err does not
// carry a message meant for users.
func UserMessage(err error, fallback string) string {
	var validation *ValidationError
	if errors.As(err, &validation) && validation.Message != "" {
		return validation.Message
	}
	var rejection *ServerRejection
	if errors.As(err, &rejection) && rejection.Message != "" {
		return rejection.Message
	}
	return fallback
}
