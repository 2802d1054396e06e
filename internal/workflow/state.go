package workflow

import (
	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/source"
)

// Phase is the position of the controller in the submission lifecycle.
type Phase int

const (
	Idle Phase = iota
	SourceSelected
	Ready
	Submitting
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case SourceSelected:
		return "source_selected"
	case Ready:
		return "ready"
	case Submitting:
		return "submitting"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

type FailureKind int

const (
	// ValidationFailure never reaches the network and does not move the
	// controller to Failed.
	ValidationFailure FailureKind = iota + 1
	AuthorizationFailure
	RequestFailure
	ServiceFailure
)

func (k FailureKind) String() string {
	switch k {
	case ValidationFailure:
		return "validation"
	case AuthorizationFailure:
		return "authorization"
	case RequestFailure:
		return "request"
	case ServiceFailure:
		return "service"
	default:
		return "none"
	}
}

// Failure is the single user-visible message slot. Only the most recent one is kept.
type Failure struct {
	Kind    FailureKind
	Message string
}

// State is a snapshot of the controller. Input and Result are copies the
// caller may keep.
type State struct {
	Phase          Phase
	Mode           analysis.Mode
	Input          *source.Input
	JobDescription string
	Result         *analysis.Result
	Failure        *Failure
	// HasToken reports whether an access token is held for remote picks.
	HasToken bool
}
