package analysis

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/auth"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/source"
	"github.com/spigell/resume-matcher/internal/utils"
)

const (
	apiURL    = "http://localhost:8000"
	userAgent = "spigell/resume-matcher"

	fieldResume         = "resume"
	fieldDriveFileID    = "drive_file_id"
	fieldToken          = "token"
	fieldJobDescription = "job_description"

	defaultMaxLogLength = 200
	// Larger bodies are not something the service produces; cap what we read.
	maxResponseBytes = 4 << 20
)

// Request is everything needed for one analysis call.
type Request struct {
	Mode           Mode
	Input          *source.Input
	JobDescription string
	// Token is forwarded for remote references only.
	Token *auth.Token
}

type Client struct {
	logger       *zap.Logger
	HTTPClient   *http.Client
	UserAgent    string
	APIURL       string
	MaxLogLength int
}

func New(logger *zap.Logger, baseURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = apiURL
	}

	return &Client{
		logger: logger,
		HTTPClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
		UserAgent:    userAgent,
		APIURL:       baseURL,
		MaxLogLength: defaultMaxLogLength,
	}
}

// Submit makes exactly one call to the endpoint of req.Mode and returns the
// normalized result. Errors are *ServiceError, *AuthorizationError or
// *RequestError.
func (c *Client) Submit(ctx context.Context, req Request) (*Result, error) {
	endpoint := req.Mode.Endpoint()
	if endpoint == "" {
		return nil, fmt.Errorf("unknown analysis mode: %q", req.Mode)
	}

	body, contentType, err := buildForm(req)
	if err != nil {
		return nil, err
	}

	log := logger.WithFields(c.logger, logger.RequestFields(req.Mode.String(), endpoint, sourceKind(req.Input))...)

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.APIURL+endpoint, body)
	if err != nil {
		return nil, &RequestError{Err: err}
	}

	httpReq.Header.Set("Content-Type", contentType)
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.UserAgent)

	resp, err := c.request(log, httpReq)
	if err != nil {
		return nil, &RequestError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("read response: %w", err)}
	}

	log.Debug("got response from analysis service",
		zap.Int("status", resp.StatusCode),
		zap.Int("response_length", utf8.RuneCount(data)),
		zap.String("response_preview", utils.TruncateForLog(string(data), c.MaxLogLength)),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, classifyFailure(req, resp, data)
	}

	raw, err := decodeObject(data)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: err}
	}

	result, err := Normalize(req.Mode, raw)
	if err != nil {
		return nil, &RequestError{StatusCode: resp.StatusCode, Err: err}
	}

	return result, nil
}

func classifyFailure(req Request, resp *http.Response, data []byte) error {
	detail, hasDetail := errorDetail(data)

	remote := req.Input != nil && req.Input.Kind == source.RemoteReference
	if remote && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
		return &AuthorizationError{StatusCode: resp.StatusCode, Detail: detail}
	}

	if hasDetail {
		return &ServiceError{StatusCode: resp.StatusCode, Detail: detail}
	}

	return &RequestError{StatusCode: resp.StatusCode, Err: fmt.Errorf("bad status: %s", resp.Status)}
}

func buildForm(req Request) (io.Reader, string, error) {
	var b bytes.Buffer
	w := multipart.NewWriter(&b)

	if req.Mode.RequiresResume() {
		if err := writeResume(w, req); err != nil {
			return nil, "", err
		}
	}

	if err := w.WriteField(fieldJobDescription, req.JobDescription); err != nil {
		return nil, "", err
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}

	return &b, w.FormDataContentType(), nil
}

func writeResume(w *multipart.Writer, req Request) error {
	if req.Input == nil {
		return errors.New("resume input is required")
	}
	if err := req.Input.Validate(); err != nil {
		return fmt.Errorf("invalid resume input: %w", err)
	}

	switch req.Input.Kind {
	case source.LocalFile:
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
			fieldResume, escapeQuotes(req.Input.DisplayName)))
		h.Set("Content-Type", source.AcceptedMediaType)

		part, err := w.CreatePart(h)
		if err != nil {
			return err
		}
		if _, err := part.Write(req.Input.Data); err != nil {
			return err
		}

	case source.RemoteReference:
		if req.Token == nil || strings.TrimSpace(req.Token.Value) == "" {
			return errors.New("an access token is required for a remote resume")
		}
		if err := w.WriteField(fieldDriveFileID, req.Input.RemoteID); err != nil {
			return err
		}
		if err := w.WriteField(fieldToken, req.Token.Value); err != nil {
			return err
		}
	}

	return nil
}

func (c *Client) request(log *zap.Logger, req *http.Request) (*http.Response, error) {
	log.Debug("make request", zap.String("url", req.URL.String()))
	return c.HTTPClient.Do(req)
}

func sourceKind(input *source.Input) string {
	if input == nil {
		return ""
	}
	return input.Kind.String()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
