package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/logger"
	"github.com/spigell/resume-matcher/internal/report"
	"github.com/spigell/resume-matcher/internal/source"
	"github.com/spigell/resume-matcher/internal/workflow"
)

func init() {
	rootCmd.AddCommand(
		newAnalyzeCmd(analysis.ModeMatch, "Score how well a resume matches a job description"),
		newAnalyzeCmd(analysis.ModeImprove, "List strengths, gaps and suggestions for a resume"),
		newAnalyzeCmd(analysis.ModeRefine, "Rewrite a job description"),
	)
}

func newAnalyzeCmd(mode analysis.Mode, short string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   mode.String(),
		Short: short,
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			analyze(cmd, mode)
		},
	}

	if mode.RequiresResume() {
		cmd.Flags().StringP("resume", "r", "", "path to a local PDF resume")
		cmd.Flags().Bool("drive", false, "pick the resume from Google Drive")
		cmd.MarkFlagsMutuallyExclusive("resume", "drive")
	}
	cmd.Flags().String("job", "", "job description text")
	cmd.Flags().String("job-file", "", "read the job description from a file ('-' for stdin)")
	cmd.Flags().BoolP("interactive", "i", false, "keep the session open to change inputs and submit again")
	cmd.MarkFlagsMutuallyExclusive("job", "job-file")

	return cmd
}

// analyze is the entry point shared by every analysis mode.
func analyze(cmd *cobra.Command, mode analysis.Mode) {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	logger, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	defer logger.Sync()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	logger.Debug("starting the resume-matcher",
		zap.String("version", version),
		zap.String("mode", mode.String()),
		zap.String("api_url", config.APIURL),
	)

	ctl, err := newController(config, mode, logger)
	if err != nil {
		logger.Fatal("preparing the session", zap.Error(err))
	}

	s := &session{
		ctl:    ctl,
		mode:   mode,
		logger: logger,
		out:    cmd.OutOrStdout(),
		drive:  hasDrive(config),
		opts:   report.Options{Format: config.Output, MaxLines: config.Display.MaxLines},
	}

	interactive, _ := cmd.Flags().GetBool("interactive")

	if mode.RequiresResume() {
		if err := s.selectInitialSource(ctx, cmd); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			s.render()
			s.exit(err)
		}
	}

	job, err := readJobDescription(cmd, cmd.InOrStdin())
	if err != nil {
		logger.Fatal("reading the job description", zap.Error(err))
	}
	if job == "" {
		if job, err = promptJobDescription(); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("reading the job description", zap.Error(err))
		}
	}
	ctl.SetJobDescription(job)

	err = s.submit(ctx)

	if !interactive {
		if err != nil {
			s.exit(err)
		}
		return
	}

	if err := s.loop(ctx); err != nil && !errors.Is(err, errExit) {
		logger.Fatal("exiting", zap.Error(err))
	}
}

type session struct {
	ctl    *workflow.Controller
	mode   analysis.Mode
	logger *zap.Logger
	out    io.Writer
	drive  bool
	opts   report.Options
}

func (s *session) selectInitialSource(ctx context.Context, cmd *cobra.Command) error {
	path, _ := cmd.Flags().GetString("resume")
	drive, _ := cmd.Flags().GetBool("drive")

	switch {
	case path != "":
		return s.ctl.SelectLocalFile(path)
	case drive:
		return s.ctl.PickRemote(ctx)
	default:
		return s.chooseSource(ctx)
	}
}

// submit runs one attempt and renders its outcome. A nil error means the
// analysis succeeded.
func (s *session) submit(ctx context.Context) error {
	s.logger.Info("submitting", zap.String(logger.FieldMode, s.mode.String()))

	err := s.ctl.Submit(ctx)
	if errors.Is(err, workflow.ErrSubmissionInFlight) {
		return err
	}

	s.render()
	return err
}

// render writes the current outcome, if any, to the output.
func (s *session) render() {
	if err := report.Render(s.out, s.ctl.State(), s.opts); err != nil {
		s.logger.Error("rendering the result", zap.Error(err))
	}
}

// exit stops the process with a non-zero status after a failed attempt.
func (s *session) exit(err error) {
	reason := "analysis failed"
	if errors.Is(err, source.ErrCancelled) {
		reason = "resume selection cancelled"
	}

	s.logger.Info("exiting", zap.String("reason", reason))
	s.logger.Debug("last error", zap.Error(err))
	_ = s.logger.Sync()
	os.Exit(1)
}

func readJobDescription(cmd *cobra.Command, stdin io.Reader) (string, error) {
	job, _ := cmd.Flags().GetString("job")
	if strings.TrimSpace(job) != "" {
		return job, nil
	}

	file, _ := cmd.Flags().GetString("job-file")
	file = strings.TrimSpace(file)
	switch file {
	case "":
		return "", nil
	case "-":
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("reading stdin: %w", err)
		}
		return string(data), nil
	default:
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("reading %q: %w", file, err)
		}
		return string(data), nil
	}
}
