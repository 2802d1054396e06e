package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/auth"
	"github.com/spigell/resume-matcher/internal/picker"
	"github.com/spigell/resume-matcher/internal/secrets"
	"github.com/spigell/resume-matcher/internal/source"
	"github.com/spigell/resume-matcher/internal/workflow"
)

const (
	handshakeTimeout = 5 * time.Minute
	pickerSize       = 10
)

// newController wires the analysis client and, when Google credentials are
// configured, the Drive pick flow into a workflow controller.
func newController(config *Config, mode analysis.Mode, logger *zap.Logger) (*workflow.Controller, error) {
	client := analysis.New(logger.Named("analysis"), config.APIURL)
	if config.UserAgent != "" {
		client.UserAgent = config.UserAgent
	}
	if config.Timeout > 0 {
		client.HTTPClient.Timeout = config.Timeout
	}
	if config.MaxLogLength > 0 {
		client.MaxLogLength = config.MaxLogLength
	}

	var (
		authorizer source.Authorizer
		docs       source.DocumentPicker
	)

	if mode.RequiresResume() {
		broker, err := newBroker(config.Google, logger)
		if err != nil {
			return nil, err
		}
		if broker != nil {
			authorizer = broker
			docs = picker.New(
				picker.NewDriveFactory(config.Google.PageSize),
				&picker.PromptSelector{Size: pickerSize},
				logger.Named("picker"),
			)
		}
	}

	resolver := source.NewResolver(authorizer, docs, logger.Named("source"))

	return workflow.New(mode, resolver, client, logger.Named("workflow")), nil
}

// newBroker returns nil without an error when no client id is configured; the
// Drive pick flow is then unavailable.
func newBroker(cfg *GoogleConfig, logger *zap.Logger) (*auth.Broker, error) {
	if cfg == nil || strings.TrimSpace(cfg.ClientID) == "" {
		logger.Debug("google drive is disabled", zap.String("hint", "set GOOGLE_CLIENT_ID or google.client-id"))
		return nil, nil
	}

	secret, err := secrets.Load(secrets.Source{
		Name:  "google client secret",
		Value: cfg.ClientSecret,
		File:  cfg.ClientSecretFile,
		Env:   "GOOGLE_CLIENT_SECRET",
	})
	if err != nil {
		// Clients registered without a secret rely on PKCE alone.
		logger.Debug("no google client secret", zap.Error(err))
		secret = ""
	}

	handshaker := auth.NewLoopbackHandshaker(cfg.RedirectPort, printConsentURL, logger.Named("auth"))
	handshaker.Timeout = handshakeTimeout

	return auth.NewBroker(auth.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: secret,
		Scopes:       []string{auth.DriveReadonlyScope},
	}, handshaker, logger.Named("auth"))
}

func printConsentURL(url string) error {
	_, err := fmt.Fprintf(os.Stderr, "Open this link in your browser to allow read-only access to Google Drive:\n\n%s\n\n", url)
	return err
}

func hasDrive(config *Config) bool {
	return config.Google != nil && strings.TrimSpace(config.Google.ClientID) != ""
}
