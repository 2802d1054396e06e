package workflow

import (
	"errors"
	"strings"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/source"
)

const (
	msgResumeAndJob = "Please upload a resume and enter a job description."
	msgJob          = "Please enter a job description."
)

var (
	errMissingResume = errors.New("resume is not selected")
	errMissingJob    = errors.New("job description is empty")
)

// ValidationError lists the readiness checks that did not pass.
type ValidationError struct {
	Failed  []string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// draft is what the readiness checks look at.
type draft struct {
	mode  analysis.Mode
	input *source.Input
	job   string
}

// readinessCheck is a single step a draft must pass before submission.
type readinessCheck interface {
	Name() string
	IsEnabled(mode analysis.Mode) bool
	Verify(d draft) error
}

type resumeCheck struct{}

func (resumeCheck) Name() string { return "resume" }

func (resumeCheck) IsEnabled(mode analysis.Mode) bool { return mode.RequiresResume() }

func (resumeCheck) Verify(d draft) error {
	if d.input == nil {
		return errMissingResume
	}
	return d.input.Validate()
}

type jobDescriptionCheck struct{}

func (jobDescriptionCheck) Name() string { return "job_description" }

func (jobDescriptionCheck) IsEnabled(analysis.Mode) bool { return true }

func (jobDescriptionCheck) Verify(d draft) error {
	if strings.TrimSpace(d.job) == "" {
		return errMissingJob
	}
	return nil
}

// defaultChecks returns the steps every submission goes through.
func defaultChecks() []readinessCheck {
	return []readinessCheck{resumeCheck{}, jobDescriptionCheck{}}
}

// runChecks runs enabled checks in order and collects every failing step.
func runChecks(checks []readinessCheck, d draft) *ValidationError {
	var failed []string
	for _, check := range checks {
		if !check.IsEnabled(d.mode) {
			continue
		}
		if err := check.Verify(d); err != nil {
			failed = append(failed, check.Name())
		}
	}

	if len(failed) == 0 {
		return nil
	}

	msg := msgJob
	if d.mode.RequiresResume() {
		msg = msgResumeAndJob
	}

	return &ValidationError{Failed: failed, Message: msg}
}
