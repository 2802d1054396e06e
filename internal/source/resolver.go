package source

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/auth"
	"github.com/spigell/resume-matcher/internal/picker"
)

// ErrCancelled reports that the user abandoned a pick; the previous input stays.
var ErrCancelled = errors.New("source selection cancelled")

type Authorizer interface {
	AcquireToken(ctx context.Context) (*auth.Token, error)
}

type DocumentPicker interface {
	Pick(ctx context.Context, token *auth.Token) (*picker.Document, error)
}

type Resolver struct {
	authorizer Authorizer
	picker     DocumentPicker
	logger     *zap.Logger
}

func NewResolver(authorizer Authorizer, picker DocumentPicker, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		authorizer: authorizer,
		picker:     picker,
		logger:     logger,
	}
}

// Local resolves a file path into an input.
func (r *Resolver) Local(path string) (*Input, error) {
	input, err := ReadLocalFile(path)
	if err != nil {
		return nil, err
	}

	r.logger.Debug("local resume selected",
		zap.String("display_name", input.DisplayName),
		zap.Int("size", len(input.Data)),
	)
	return input, nil
}

// Remote resolves a document picked from remote storage. When token is nil a
// handshake runs first and the picker is not shown unless it succeeds. The
// returned token is the one the pick was made with; it is returned even when
// the pick itself fails so the caller can keep it.
func (r *Resolver) Remote(ctx context.Context, token *auth.Token) (*Input, *auth.Token, error) {
	if r.picker == nil {
		return nil, token, errors.New("document picker is not configured")
	}

	if token == nil {
		if r.authorizer == nil {
			return nil, nil, errors.New("authorization is not configured")
		}

		acquired, err := r.authorizer.AcquireToken(ctx)
		if err != nil {
			return nil, nil, err
		}
		token = acquired
	}

	doc, err := r.picker.Pick(ctx, token)
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			r.logger.Debug("remote pick cancelled")
			return nil, token, fmt.Errorf("%w: %w", ErrCancelled, err)
		}
		return nil, token, err
	}

	input, err := NewRemoteReference(doc.ID, doc.Name)
	if err != nil {
		return nil, token, err
	}

	r.logger.Debug("remote resume selected",
		zap.String("document_id", input.RemoteID),
		zap.String("display_name", input.DisplayName),
	)
	return input, token, nil
}
