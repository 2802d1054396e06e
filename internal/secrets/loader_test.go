package secrets

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "client_secret")
	if err := os.WriteFile(file, []byte("  from-file\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	empty := filepath.Join(dir, "empty")
	if err := os.WriteFile(empty, []byte("\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("RESUME_MATCHER_TEST_SECRET", " from-env ")

	tests := []struct {
		name    string
		src     Source
		want    string
		wantErr string
	}{
		{name: "file wins", src: Source{Name: "client secret", Value: "inline", File: file, Env: "RESUME_MATCHER_TEST_SECRET"}, want: "from-file"},
		{name: "inline over env", src: Source{Value: " inline ", Env: "RESUME_MATCHER_TEST_SECRET"}, want: "inline"},
		{name: "env fallback", src: Source{Env: "RESUME_MATCHER_TEST_SECRET"}, want: "from-env"},
		{name: "empty file does not fall back", src: Source{Name: "client secret", File: empty, Env: "RESUME_MATCHER_TEST_SECRET"}, wantErr: "is empty"},
		{name: "missing file", src: Source{Name: "client secret", File: filepath.Join(dir, "nope")}, wantErr: "reading client secret"},
		{name: "nothing configured", src: Source{Env: "RESUME_MATCHER_TEST_UNSET"}, wantErr: "secret is not configured (set RESUME_MATCHER_TEST_UNSET)"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Load(tt.src)
			if tt.wantErr != "" {
				if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
					t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("expected %q, got %q", tt.want, got)
			}
		})
	}
}
