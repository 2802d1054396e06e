package auth

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

const (
	callbackPath = "/callback"

	callbackSuccessPage = "Authorization complete. You can close this tab and return to the terminal."
	callbackFailurePage = "Authorization failed. You can close this tab and return to the terminal."
)

// LoopbackHandshaker implements the authorization code flow with PKCE for
// installed applications: it listens on 127.0.0.1, hands the consent URL to
// Open and waits for the provider to redirect back.
type LoopbackHandshaker struct {
	// Port to listen on. Zero picks a free port.
	Port int
	// Open presents the consent URL to the user.
	Open func(url string) error
	// Timeout bounds the wait for the redirect. Zero waits until ctx is done.
	Timeout time.Duration

	logger *zap.Logger
}

func NewLoopbackHandshaker(port int, open func(string) error, logger *zap.Logger) *LoopbackHandshaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LoopbackHandshaker{
		Port:   port,
		Open:   open,
		logger: logger,
	}
}

type callbackResult struct {
	code string
	err  error
}

func (h *LoopbackHandshaker) Handshake(ctx context.Context, cfg *oauth2.Config) (*oauth2.Token, error) {
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	listener, err := net.Listen("tcp", net.JoinHostPort("127.0.0.1", strconv.Itoa(h.Port)))
	if err != nil {
		return nil, fmt.Errorf("listening for authorization callback: %w", err)
	}

	cfg.RedirectURL = fmt.Sprintf("http://%s%s", listener.Addr().String(), callbackPath)

	state := uuid.NewString()
	verifier := oauth2.GenerateVerifier()

	results := make(chan callbackResult, 1)
	server := &http.Server{
		Handler:           callbackRouter(state, results),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.Debug("authorization callback server stopped", zap.Error(err))
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	}()

	consentURL := cfg.AuthCodeURL(state,
		oauth2.AccessTypeOnline,
		oauth2.S256ChallengeOption(verifier),
	)

	h.logger.Debug("waiting for authorization callback", zap.String("redirect_url", cfg.RedirectURL))

	if h.Open != nil {
		if err := h.Open(consentURL); err != nil {
			return nil, fmt.Errorf("presenting consent url: %w", err)
		}
	}

	var res callbackResult
	select {
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("waiting for authorization callback: %w", ctx.Err())
		}
		return nil, fmt.Errorf("%w: %w", ErrCancelled, ctx.Err())
	case res = <-results:
	}

	if res.err != nil {
		return nil, res.err
	}

	tok, err := cfg.Exchange(ctx, res.code, oauth2.VerifierOption(verifier))
	if err != nil {
		return nil, err
	}

	return tok, nil
}

func callbackRouter(state string, results chan<- callbackResult) http.Handler {
	r := chi.NewRouter()

	r.Get(callbackPath, func(w http.ResponseWriter, req *http.Request) {
		q := req.URL.Query()

		var res callbackResult
		switch {
		case q.Get("state") != state:
			res.err = errors.New("authorization callback state mismatch")
		case q.Get("error") == "access_denied":
			res.err = ErrDenied
		case q.Get("error") != "":
			res.err = fmt.Errorf("identity provider returned error: %s", q.Get("error"))
		case q.Get("code") == "":
			res.err = errors.New("authorization callback carries no code")
		default:
			res.code = q.Get("code")
		}

		if res.err != nil {
			http.Error(w, callbackFailurePage, http.StatusBadRequest)
		} else {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			_, _ = w.Write([]byte(callbackSuccessPage))
		}

		// Only the first callback counts.
		select {
		case results <- res:
		default:
		}
	})

	return r
}
