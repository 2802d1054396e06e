package auth

import "errors"

var (
	// ErrAuthorization matches every failure returned by Broker.AcquireToken.
	ErrAuthorization = errors.New("authorization failed")
	ErrCancelled     = errors.New("authorization cancelled")
	ErrDenied        = errors.New("authorization denied")
)

type Reason string

const (
	ReasonCancelled Reason = "cancelled"
	ReasonDenied    Reason = "denied"
	ReasonFailed    Reason = "failed"
)

// Failure describes why a handshake did not yield a token.
type Failure struct {
	Reason Reason
	Err    error
}

func (f *Failure) Error() string {
	switch f.Reason {
	case ReasonCancelled:
		return "Google authorization was cancelled."
	case ReasonDenied:
		return "Google authorization was denied."
	default:
		return "Google authorization failed."
	}
}

func (f *Failure) Unwrap() error { return f.Err }

func (f *Failure) Is(target error) bool { return target == ErrAuthorization }
