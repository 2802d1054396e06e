package cmd

import (
	"slices"
	"testing"

	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
)

func TestSessionMenu(t *testing.T) {
	config := &Config{
		APIURL:  "http://127.0.0.1:1",
		Display: &DisplayConfig{},
		Google:  &GoogleConfig{},
	}

	tests := []struct {
		name string
		mode analysis.Mode
		job  string
		want []string
	}{
		{name: "refine ready", mode: analysis.ModeRefine, job: "Senior backend engineer", want: []string{PromptSubmitAgain, PromptChangeJob, PromptExit}},
		{name: "refine without job", mode: analysis.ModeRefine, want: []string{PromptChangeJob, PromptExit}},
		{name: "match without resume", mode: analysis.ModeMatch, job: "Senior backend engineer", want: []string{PromptChangeResume, PromptChangeJob, PromptExit}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl, err := newController(config, tt.mode, zap.NewNop())
			if err != nil {
				t.Fatalf("controller: %v", err)
			}
			if tt.job != "" {
				ctl.SetJobDescription(tt.job)
			}

			s := &session{ctl: ctl, mode: tt.mode, logger: zap.NewNop()}
			if got := s.menu(); !slices.Equal(got, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, got)
			}
		})
	}
}

func TestHandleSubmitAgainWhenNotReady(t *testing.T) {
	config := &Config{
		APIURL:  "http://127.0.0.1:1",
		Display: &DisplayConfig{},
		Google:  &GoogleConfig{},
	}

	ctl, err := newController(config, analysis.ModeRefine, zap.NewNop())
	if err != nil {
		t.Fatalf("controller: %v", err)
	}

	s := &session{ctl: ctl, mode: analysis.ModeRefine, logger: zap.NewNop()}
	if err := s.handleAction(t.Context(), PromptSubmitAgain); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state := ctl.State(); state.Failure != nil || state.Result != nil {
		t.Fatalf("nothing must be submitted, got %+v", state)
	}
}
