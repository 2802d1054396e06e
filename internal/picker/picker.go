package picker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/spigell/resume-matcher/internal/auth"
)

var (
	ErrCancelled   = errors.New("document selection cancelled")
	ErrNoDocuments = errors.New("no PDF documents found in Google Drive")
	ErrNoToken     = errors.New("picker has no access token")
)

// Document is a remote document the user can choose.
type Document struct {
	ID           string
	Name         string
	MimeType     string
	ModifiedTime string
}

type Lister interface {
	List(ctx context.Context) ([]Document, error)
}

// Selector presents documents and returns the chosen one, or ErrCancelled.
type Selector interface {
	Select(docs []Document) (*Document, error)
}

// ServiceFactory builds the listing capability. It is called at most once per
// successful Load; tokens reach it through the supplied source.
type ServiceFactory func(ctx context.Context, ts oauth2.TokenSource) (Lister, error)

type Picker struct {
	mu      sync.Mutex
	lister  Lister
	factory ServiceFactory
	tokens  *tokenHolder

	selector Selector
	logger   *zap.Logger
}

func New(factory ServiceFactory, selector Selector, logger *zap.Logger) *Picker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Picker{
		factory:  factory,
		tokens:   &tokenHolder{},
		selector: selector,
		logger:   logger,
	}
}

// Load initializes the listing capability once. Calls after a successful Load
// are no-ops; a failed Load may be retried.
func (p *Picker) Load(ctx context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.lister != nil {
		return nil
	}

	if p.factory == nil {
		return errors.New("picker service factory is not configured")
	}

	lister, err := p.factory(ctx, p.tokens)
	if err != nil {
		return fmt.Errorf("initializing document picker: %w", err)
	}

	p.lister = lister
	p.logger.Debug("document picker initialized")
	return nil
}

func (p *Picker) Loaded() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lister != nil
}

// Pick lists the user's documents with the given token and lets them choose
// exactly one.
func (p *Picker) Pick(ctx context.Context, token *auth.Token) (*Document, error) {
	if token == nil {
		return nil, ErrNoToken
	}

	if err := p.Load(ctx); err != nil {
		return nil, err
	}

	p.tokens.set(token.OAuth2())

	p.mu.Lock()
	lister := p.lister
	p.mu.Unlock()

	docs, err := lister.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}

	p.logger.Debug("listed documents", zap.Int("count", len(docs)))

	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	if p.selector == nil {
		return nil, errors.New("picker selector is not configured")
	}

	doc, err := p.selector.Select(docs)
	if err != nil {
		return nil, err
	}

	p.logger.Info("document picked", zap.String("document_id", doc.ID), zap.String("document_name", doc.Name))
	return doc, nil
}

// tokenHolder feeds the most recently supplied token to the listing service.
type tokenHolder struct {
	mu    sync.RWMutex
	token *oauth2.Token
}

func (h *tokenHolder) set(t *oauth2.Token) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.token = t
}

func (h *tokenHolder) Token() (*oauth2.Token, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if h.token == nil {
		return nil, ErrNoToken
	}
	return h.token, nil
}
