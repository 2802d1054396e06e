package analysis

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/auth"
	"github.com/spigell/resume-matcher/internal/source"
)

func newService(t *testing.T, status int, body string, inspect func(r *http.Request)) (*httptest.Server, *int32) {
	t.Helper()

	var calls int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		if inspect != nil {
			inspect(r)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)

	return server, &calls
}

func localInput(t *testing.T) *source.Input {
	t.Helper()
	input, err := source.NewLocalFile("r.pdf", []byte("%PDF-1.4 resume"))
	if err != nil {
		t.Fatalf("local input: %v", err)
	}
	return input
}

func TestSubmitMatchLocalFile(t *testing.T) {
	server, calls := newService(t, http.StatusOK,
		`{"match_percentage": 78, "verdict": "Strong match", "analysis": "Solid Go background."}`,
		func(r *http.Request) {
			if r.Method != http.MethodPost || r.URL.Path != "/match" {
				t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
				return
			}
			if got := r.FormValue("job_description"); got != "Senior backend engineer, 5 years Go" {
				t.Errorf("unexpected job description: %q", got)
			}
			file, header, err := r.FormFile("resume")
			if err != nil {
				t.Errorf("resume part: %v", err)
				return
			}
			defer file.Close()
			data, _ := io.ReadAll(file)
			if string(data) != "%PDF-1.4 resume" || header.Filename != "r.pdf" {
				t.Errorf("unexpected resume part: %q %q", header.Filename, data)
			}
			if ct := header.Header.Get("Content-Type"); ct != "application/pdf" {
				t.Errorf("unexpected resume content type: %q", ct)
			}
			if r.FormValue("drive_file_id") != "" || r.FormValue("token") != "" {
				t.Errorf("local submissions must not carry remote fields")
			}
		})

	client := New(zap.NewNop(), server.URL+"/")
	result, err := client.Submit(context.Background(), Request{
		Mode:           ModeMatch,
		Input:          localInput(t),
		JobDescription: "Senior backend engineer, 5 years Go",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if *calls != 1 {
		t.Fatalf("expected exactly one call, got %d", *calls)
	}
	if result.Match == nil || result.Match.MatchPercentage != 78 || result.Match.Verdict != "Strong match" {
		t.Fatalf("unexpected result: %+v", result.Match)
	}
}

func TestSubmitRemoteReferenceForwardsToken(t *testing.T) {
	server, _ := newService(t, http.StatusOK, `{"strengths":"Go","gaps":"K8s","suggestions":"Add metrics"}`,
		func(r *http.Request) {
			if r.URL.Path != "/improve-resume" {
				t.Errorf("unexpected path: %s", r.URL.Path)
			}
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
				return
			}
			if r.FormValue("drive_file_id") != "doc-42" || r.FormValue("token") != "ya29.abc" {
				t.Errorf("unexpected remote fields: %q %q", r.FormValue("drive_file_id"), r.FormValue("token"))
			}
			if _, _, err := r.FormFile("resume"); err == nil {
				t.Errorf("remote submissions must not upload a file")
			}
		})

	input, _ := source.NewRemoteReference("doc-42", "cv.pdf")
	client := New(zap.NewNop(), server.URL)
	result, err := client.Submit(context.Background(), Request{
		Mode:           ModeImprove,
		Input:          input,
		JobDescription: "jd",
		Token:          &auth.Token{Value: "ya29.abc"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Improvement.Suggestions != "Add metrics" {
		t.Fatalf("unexpected result: %+v", result.Improvement)
	}
}

func TestSubmitRefineSendsOnlyJobDescription(t *testing.T) {
	server, _ := newService(t, http.StatusOK, `{"refined_jd":"Better JD"}`, func(r *http.Request) {
		if r.URL.Path != "/refine-jd" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Errorf("parse multipart: %v", err)
			return
		}
		if len(r.MultipartForm.Value) != 1 || len(r.MultipartForm.File) != 0 {
			t.Errorf("unexpected form: %+v", r.MultipartForm)
		}
	})

	result, err := New(zap.NewNop(), server.URL).Submit(context.Background(), Request{
		Mode:           ModeRefine,
		Input:          localInput(t),
		JobDescription: "jd",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Refinement.RefinedDescription != "Better JD" {
		t.Fatalf("unexpected result: %+v", result.Refinement)
	}
}

func TestSubmitFailures(t *testing.T) {
	remote, _ := source.NewRemoteReference("doc", "cv.pdf")

	tests := []struct {
		name    string
		status  int
		body    string
		input   *source.Input
		check   func(t *testing.T, err error)
		message string
	}{
		{
			name:   "service detail",
			status: http.StatusBadRequest,
			body:   `{"detail":"Unsupported file type"}`,
			check: func(t *testing.T, err error) {
				var svcErr *ServiceError
				if !errors.As(err, &svcErr) || svcErr.StatusCode != http.StatusBadRequest {
					t.Fatalf("expected *ServiceError, got %T %v", err, err)
				}
			},
			message: "Unsupported file type",
		},
		{
			name:   "no detail",
			status: http.StatusInternalServerError,
			body:   `Internal Server Error`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrRequestFailed) {
					t.Fatalf("expected ErrRequestFailed, got %v", err)
				}
			},
		},
		{
			name:   "unexpected shape",
			status: http.StatusOK,
			body:   `["not", "an", "object"]`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrRequestFailed) {
					t.Fatalf("expected ErrRequestFailed, got %v", err)
				}
			},
		},
		{
			name:   "null body",
			status: http.StatusOK,
			body:   `null`,
			check: func(t *testing.T, err error) {
				if !errors.Is(err, ErrRequestFailed) {
					t.Fatalf("expected ErrRequestFailed, got %v", err)
				}
			},
		},
		{
			name:   "stale token",
			status: http.StatusUnauthorized,
			body:   `{"detail":"Invalid Drive token"}`,
			input:  remote,
			check: func(t *testing.T, err error) {
				var authErr *AuthorizationError
				if !errors.As(err, &authErr) {
					t.Fatalf("expected *AuthorizationError, got %T %v", err, err)
				}
			},
			message: "Invalid Drive token",
		},
		{
			name:   "forbidden local file is a service failure",
			status: http.StatusForbidden,
			body:   `{"detail":"Forbidden"}`,
			check: func(t *testing.T, err error) {
				var svcErr *ServiceError
				if !errors.As(err, &svcErr) {
					t.Fatalf("expected *ServiceError, got %T %v", err, err)
				}
			},
			message: "Forbidden",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server, calls := newService(t, tt.status, tt.body, nil)

			input := tt.input
			if input == nil {
				input = localInput(t)
			}

			result, err := New(zap.NewNop(), server.URL).Submit(context.Background(), Request{
				Mode:           ModeImprove,
				Input:          input,
				JobDescription: "jd",
				Token:          &auth.Token{Value: "t"},
			})
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}
			tt.check(t, err)
			if tt.message != "" && err.Error() != tt.message {
				t.Fatalf("expected message %q, got %q", tt.message, err.Error())
			}
			if *calls != 1 {
				t.Fatalf("expected exactly one call without retries, got %d", *calls)
			}
		})
	}
}

func TestSubmitTransportError(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	_, err := New(zap.NewNop(), url).Submit(context.Background(), Request{
		Mode:           ModeRefine,
		JobDescription: "jd",
	})
	if !errors.Is(err, ErrRequestFailed) {
		t.Fatalf("expected ErrRequestFailed, got %v", err)
	}
}

func TestSubmitRemoteWithoutToken(t *testing.T) {
	server, calls := newService(t, http.StatusOK, `{}`, nil)

	input, _ := source.NewRemoteReference("doc", "cv.pdf")
	_, err := New(zap.NewNop(), server.URL).Submit(context.Background(), Request{
		Mode:           ModeMatch,
		Input:          input,
		JobDescription: "jd",
	})
	if err == nil {
		t.Fatal("expected error without token")
	}
	if *calls != 0 {
		t.Fatalf("expected no call, got %d", *calls)
	}
}
