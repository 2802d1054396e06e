package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/manifoldco/promptui"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/source"
	"github.com/spigell/resume-matcher/internal/workflow"
)

const (
	PromptLocalFile    = "Local PDF file"
	PromptDrive        = "Google Drive"
	PromptSubmitAgain  = "Submit again"
	PromptChangeResume = "Change resume"
	PromptChangeJob    = "Change job description"
	PromptExit         = "Exit"

	// A job description answer starting with this prefix names a file to read.
	filePrefix = "@"
)

var errExit = errors.New("exit requested")

// promptError turns prompt interruptions into errExit.
func promptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) || errors.Is(err, promptui.ErrEOF) || errors.Is(err, promptui.ErrAbort) {
		return errExit
	}
	return err
}

func (s *session) chooseSource(ctx context.Context) error {
	items := []string{PromptLocalFile}
	if s.drive {
		items = append(items, PromptDrive)
	}

	choice := PromptLocalFile
	if len(items) > 1 {
		prompt := promptui.Select{
			Label: "Where is the resume?",
			Items: items,
		}

		_, selected, err := prompt.Run()
		if err != nil {
			return promptError(err)
		}
		choice = selected
	}

	if choice == PromptDrive {
		return s.ctl.PickRemote(ctx)
	}

	path, err := promptResumePath()
	if err != nil {
		return err
	}
	return s.ctl.SelectLocalFile(path)
}

func promptResumePath() (string, error) {
	prompt := promptui.Prompt{
		Label: "Path to the resume (PDF)",
		Validate: func(input string) error {
			path := strings.TrimSpace(input)
			if !source.IsAcceptedFile(path) {
				return source.ErrUnsupportedType
			}
			if _, err := os.Stat(path); err != nil {
				return errors.New("file not found")
			}
			return nil
		},
	}

	path, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}
	return strings.TrimSpace(path), nil
}

func promptJobDescription() (string, error) {
	prompt := promptui.Prompt{
		Label: fmt.Sprintf("Job description (or %sfile)", filePrefix),
		Validate: func(input string) error {
			if strings.TrimSpace(input) == "" {
				return errors.New("job description is empty")
			}
			return nil
		},
	}

	answer, err := prompt.Run()
	if err != nil {
		return "", promptError(err)
	}

	answer = strings.TrimSpace(answer)
	if !strings.HasPrefix(answer, filePrefix) {
		return answer, nil
	}

	path := strings.TrimSpace(strings.TrimPrefix(answer, filePrefix))
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %q: %w", path, err)
	}
	return string(data), nil
}

// menu lists the follow-up actions. Submitting again is offered only when
// the controller would accept the request.
func (s *session) menu() []string {
	var items []string
	if s.ctl.CanSubmit() {
		items = append(items, PromptSubmitAgain)
	}
	if s.mode.RequiresResume() {
		items = append(items, PromptChangeResume)
	}
	return append(items, PromptChangeJob, PromptExit)
}

// loop keeps the session open until the user exits.
func (s *session) loop(ctx context.Context) error {
	for {
		prompt := promptui.Select{
			Label: "What next?",
			Items: s.menu(),
		}

		_, action, err := prompt.Run()
		if err != nil {
			return promptError(err)
		}

		if err := s.handleAction(ctx, action); err != nil {
			return err
		}
	}
}

func (s *session) handleAction(ctx context.Context, action string) error {
	switch action {
	case PromptSubmitAgain:
		if !s.ctl.CanSubmit() {
			s.logger.Debug("submit skipped", zap.String("phase", s.ctl.State().Phase.String()))
			return nil
		}
		return s.logAttempt(s.submit(ctx))
	case PromptChangeResume:
		err := s.chooseSource(ctx)
		switch {
		case errors.Is(err, errExit):
			return nil
		case errors.Is(err, source.ErrCancelled):
			return nil
		case err != nil:
			s.render()
			return nil
		}
		return s.logAttempt(s.submit(ctx))
	case PromptChangeJob:
		job, err := promptJobDescription()
		if err != nil {
			if errors.Is(err, errExit) {
				return nil
			}
			return err
		}
		s.ctl.SetJobDescription(job)
		return s.logAttempt(s.submit(ctx))
	case PromptExit:
		s.logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

// logAttempt records a failed attempt; the session stays open.
func (s *session) logAttempt(err error) error {
	if err != nil && !errors.Is(err, workflow.ErrStaleResponse) {
		s.logger.Debug("attempt failed", zap.Error(err))
	}
	return nil
}
