package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/auth"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/picker"
	"github.com/spigell/resume-matcher/internal/source"
)

const (
	msgUnsupportedFile = "Only PDF files are accepted."
	msgNoDocuments     = "No PDF documents found in Google Drive."
	msgTokenRejected   = "Google authorization is no longer valid. Pick the document again to re-authorize."
	msgNoToken         = "Google authorization is required for this document. Pick it again to authorize."
)

var (
	ErrSubmissionInFlight = errors.New("a submission is already in flight")
	// ErrStaleResponse is returned to the caller of a superseded submission.
	// Its outcome was not applied to the state.
	ErrStaleResponse = errors.New("response belongs to a superseded submission")
	errNoToken       = errors.New("remote resume has no access token")
)

type Submitter interface {
	Submit(ctx context.Context, req analysis.Request) (*analysis.Result, error)
}

type Resolver interface {
	Local(path string) (*source.Input, error)
	Remote(ctx context.Context, token *auth.Token) (*source.Input, *auth.Token, error)
}

// Controller owns the submission state. Its lock is never held while waiting
// on the resolver or the submitter, so edits made during a call supersede it.
type Controller struct {
	mu sync.Mutex

	mode    analysis.Mode
	phase   Phase
	input   *source.Input
	job     string
	token   *auth.Token
	result  *analysis.Result
	failure *Failure

	// generation identifies the latest submission; responses carrying an older
	// one are dropped.
	generation uint64

	resolver Resolver
	client   Submitter
	checks   []readinessCheck
	logger   *zap.Logger
}

func New(mode analysis.Mode, resolver Resolver, client Submitter, log *zap.Logger) *Controller {
	return &Controller{
		mode:     mode,
		phase:    Idle,
		resolver: resolver,
		client:   client,
		checks:   defaultChecks(),
		logger:   logger.WithMode(log, mode.String()),
	}
}

// State returns a snapshot of the controller.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Phase:          c.phase,
		Mode:           c.mode,
		Input:          c.input.Clone(),
		JobDescription: c.job,
		Result:         c.result.Clone(),
		HasToken:       c.token != nil,
	}
	if c.failure != nil {
		f := *c.failure
		s.Failure = &f
	}
	return s
}

// CanSubmit reports whether Submit would issue a request right now.
func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase != Submitting && runChecks(c.checks, c.draft()) == nil
}

// SelectLocalFile replaces the current input with the PDF at path. On error
// the previous input stays but any earlier result is dropped.
func (c *Controller) SelectLocalFile(path string) error {
	if c.resolver == nil {
		return errors.New("source resolver is not configured")
	}

	input, err := c.resolver.Local(path)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		msg := err.Error()
		if errors.Is(err, source.ErrUnsupportedType) {
			msg = msgUnsupportedFile
		}
		c.reject(&Failure{Kind: ValidationFailure, Message: msg})
		c.logger.Warn("local resume rejected", zap.String("path", path), zap.Error(err))
		return err
	}

	c.replaceInput(input)
	return nil
}

// PickRemote runs the remote pick flow, authorizing first when no token is
// held. Cancellation leaves the state untouched and returns source.ErrCancelled.
func (c *Controller) PickRemote(ctx context.Context) error {
	if c.resolver == nil {
		return errors.New("source resolver is not configured")
	}

	c.mu.Lock()
	token := c.token
	c.mu.Unlock()

	input, token, err := c.resolver.Remote(ctx, token)

	c.mu.Lock()
	defer c.mu.Unlock()

	if token != nil {
		c.token = token
	}

	if err != nil {
		var failure *Failure
		switch {
		case errors.Is(err, source.ErrCancelled):
			c.logger.Info("remote pick cancelled")
			return err
		case errors.Is(err, auth.ErrAuthorization):
			failure = &Failure{Kind: AuthorizationFailure, Message: err.Error()}
		case errors.Is(err, picker.ErrUnauthorized):
			c.token = nil
			failure = &Failure{Kind: AuthorizationFailure, Message: msgTokenRejected}
		case errors.Is(err, picker.ErrNoDocuments):
			failure = &Failure{Kind: RequestFailure, Message: msgNoDocuments}
		default:
			failure = &Failure{Kind: RequestFailure, Message: analysis.GenericFailureMessage}
		}
		c.reject(failure)

		c.logger.Warn("remote pick failed",
			zap.String("failure", c.failure.Kind.String()),
			zap.Error(err),
		)
		return err
	}

	c.replaceInput(input)
	return nil
}

// SetJobDescription replaces the job text. Any result or in-flight submission
// is discarded.
func (c *Controller) SetJobDescription(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.job = text
	c.invalidate()
}

// Submit validates the inputs and issues one analysis request. It returns a
// *ValidationError without touching the network when inputs are missing,
// ErrSubmissionInFlight while another call is pending and ErrStaleResponse
// when an edit superseded this call before it resolved.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()

	if c.phase == Submitting {
		c.mu.Unlock()
		return ErrSubmissionInFlight
	}

	if verr := runChecks(c.checks, c.draft()); verr != nil {
		c.failure = &Failure{Kind: ValidationFailure, Message: verr.Message}
		c.phase = c.settledPhase()
		c.logger.Info("submission rejected", zap.Strings("checks", verr.Failed))
		c.mu.Unlock()
		return verr
	}

	req := analysis.Request{
		Mode:           c.mode,
		JobDescription: c.job,
	}
	if c.mode.RequiresResume() {
		req.Input = c.input.Clone()
		if req.Input.Kind == source.RemoteReference {
			if c.token == nil {
				c.phase = Failed
				c.result = nil
				c.failure = &Failure{Kind: AuthorizationFailure, Message: msgNoToken}
				c.mu.Unlock()
				return errNoToken
			}
			req.Token = c.token
		}
	}

	c.generation++
	gen := c.generation
	c.result = nil
	c.failure = nil
	c.setPhase(Submitting)
	c.mu.Unlock()

	result, err := c.client.Submit(ctx, req)

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		c.logger.Info("discarding superseded response",
			zap.Uint64("generation", gen),
			zap.Uint64("current", c.generation),
		)
		return ErrStaleResponse
	}

	if err != nil {
		c.failure = classify(err)
		if c.failure.Kind == AuthorizationFailure {
			c.token = nil
		}
		c.setPhase(Failed)
		c.logger.Warn("submission failed",
			zap.String("failure", c.failure.Kind.String()),
			zap.Error(err),
		)
		return fmt.Errorf("submit %s: %w", c.mode, err)
	}

	c.result = result
	c.setPhase(Succeeded)
	return nil
}

func classify(err error) *Failure {
	var (
		authErr *analysis.AuthorizationError
		svcErr  *analysis.ServiceError
	)

	switch {
	case errors.As(err, &authErr):
		return &Failure{Kind: AuthorizationFailure, Message: authErr.Error()}
	case errors.Is(err, auth.ErrAuthorization):
		return &Failure{Kind: AuthorizationFailure, Message: err.Error()}
	case errors.As(err, &svcErr):
		return &Failure{Kind: ServiceFailure, Message: svcErr.Detail}
	default:
		return &Failure{Kind: RequestFailure, Message: analysis.GenericFailureMessage}
	}
}

// replaceInput swaps the whole input; local and remote selections never mix.
// The caller holds c.mu.
func (c *Controller) replaceInput(input *source.Input) {
	c.input = input
	c.invalidate()
}

// invalidate drops the previous outcome and supersedes any pending call.
// The caller holds c.mu.
func (c *Controller) invalidate() {
	c.generation++
	c.result = nil
	c.failure = nil
	c.setPhase(c.settledPhase())
}

// reject records a failed source change. The previous outcome is dropped and
// any pending submission superseded; a rejected file keeps the settled phase.
func (c *Controller) reject(f *Failure) {
	c.generation++
	c.result = nil
	c.failure = f
	if f.Kind == ValidationFailure {
		c.setPhase(c.settledPhase())
		return
	}
	c.setPhase(Failed)
}

func (c *Controller) settledPhase() Phase {
	switch {
	case runChecks(c.checks, c.draft()) == nil:
		return Ready
	case c.input != nil:
		return SourceSelected
	default:
		return Idle
	}
}

func (c *Controller) setPhase(p Phase) {
	if c.phase != p {
		c.logger.Debug("phase changed",
			zap.String(logger.FieldPhase, p.String()),
			zap.String("previous", c.phase.String()),
		)
	}
	c.phase = p
}

func (c *Controller) draft() draft {
	return draft{mode: c.mode, input: c.input, job: c.job}
}
