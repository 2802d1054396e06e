package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
)

// DriveReadonlyScope grants read-only access to the user's Drive documents.
const DriveReadonlyScope = "https://www.googleapis.com/auth/drive.readonly"

// Token is an access token handed out by the broker. Callers treat it as read-only.
type Token struct {
	Value      string
	Scopes     []string
	AcquiredAt time.Time

	oauth *oauth2.Token
}

// OAuth2 returns the token in the form expected by oauth2 based clients.
func (t *Token) OAuth2() *oauth2.Token {
	if t == nil {
		return nil
	}
	if t.oauth != nil {
		return t.oauth
	}
	return &oauth2.Token{AccessToken: t.Value, TokenType: "Bearer"}
}

// Handshaker runs one interactive authorization exchange with the identity provider.
type Handshaker interface {
	Handshake(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error)
}

type Config struct {
	ClientID     string
	ClientSecret string
	Scopes       []string
	// Endpoint defaults to google.Endpoint.
	Endpoint oauth2.Endpoint
}

type Broker struct {
	config     *oauth2.Config
	handshaker Handshaker
	logger     *zap.Logger
	now        func() time.Time
}

func NewBroker(cfg Config, handshaker Handshaker, logger *zap.Logger) (*Broker, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, errors.New("google client id is required")
	}
	if handshaker == nil {
		return nil, errors.New("handshaker is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	scopes := cfg.Scopes
	if len(scopes) == 0 {
		scopes = []string{DriveReadonlyScope}
	}

	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" && endpoint.TokenURL == "" {
		endpoint = google.Endpoint
	}

	return &Broker{
		config: &oauth2.Config{
			ClientID:     strings.TrimSpace(cfg.ClientID),
			ClientSecret: strings.TrimSpace(cfg.ClientSecret),
			Scopes:       scopes,
			Endpoint:     endpoint,
		},
		handshaker: handshaker,
		logger:     logger,
		now:        time.Now,
	}, nil
}

// AcquireToken performs a fresh handshake. It never retries and never reuses a
// previous token; failures match ErrAuthorization.
func (b *Broker) AcquireToken(ctx context.Context) (*Token, error) {
	b.logger.Debug("starting authorization handshake", zap.Strings("scopes", b.config.Scopes))

	// Handshakers may set RedirectURL, so each call works on its own copy.
	cfg := *b.config

	tok, err := b.handshaker.Handshake(ctx, &cfg)
	if err != nil {
		failure := newFailure(err)
		b.logger.Warn("authorization handshake failed",
			zap.String("reason", string(failure.Reason)),
			zap.Error(err),
		)
		return nil, failure
	}

	if tok == nil || strings.TrimSpace(tok.AccessToken) == "" {
		b.logger.Warn("authorization handshake returned no access token")
		return nil, &Failure{Reason: ReasonDenied, Err: errors.New("identity provider returned an empty access token")}
	}

	token := &Token{
		Value:      tok.AccessToken,
		Scopes:     grantedScopes(tok, cfg.Scopes),
		AcquiredAt: b.now().UTC(),
		oauth:      tok,
	}

	b.logger.Info("authorization granted", zap.Strings("scopes", token.Scopes))
	return token, nil
}

func grantedScopes(tok *oauth2.Token, requested []string) []string {
	if raw, ok := tok.Extra("scope").(string); ok && strings.TrimSpace(raw) != "" {
		return strings.Fields(raw)
	}
	return append([]string(nil), requested...)
}

func newFailure(err error) *Failure {
	var failure *Failure
	if errors.As(err, &failure) {
		return failure
	}

	switch {
	case errors.Is(err, context.Canceled), errors.Is(err, ErrCancelled):
		return &Failure{Reason: ReasonCancelled, Err: err}
	case errors.Is(err, ErrDenied):
		return &Failure{Reason: ReasonDenied, Err: err}
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return &Failure{Reason: ReasonDenied, Err: fmt.Errorf("token exchange: %w", err)}
	}

	return &Failure{Reason: ReasonFailed, Err: err}
}
