package analysis

import (
	"errors"
	"fmt"
)

// GenericFailureMessage is shown when the service gives no usable reason.
const GenericFailureMessage = "An error occurred while processing."

var ErrRequestFailed = errors.New("analysis request failed")

// ServiceError is a non-2xx answer carrying a machine-readable detail.
type ServiceError struct {
	StatusCode int
	Detail     string
}

func (e *ServiceError) Error() string { return e.Detail }

// RequestError covers transport failures, unreadable bodies and non-2xx
// answers without a detail.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s: status %d: %v", ErrRequestFailed, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrRequestFailed, e.Err)
}

func (e *RequestError) Unwrap() error { return e.Err }

func (e *RequestError) Is(target error) bool { return target == ErrRequestFailed }

// AuthorizationError is returned when the service refuses the forwarded token
// of a remote reference.
type AuthorizationError struct {
	StatusCode int
	Detail     string
}

func (e *AuthorizationError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return "Google authorization is no longer valid. Pick the document again to re-authorize."
}
