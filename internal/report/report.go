package report

import (
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/spigell/resume-matcher/internal/analysis"
	"github.com/spigell/resume-matcher/internal/utils"
	"github.com/spigell/resume-matcher/internal/workflow"
)

const (
	FormatText = "text"
	FormatYAML = "yaml"

	improveLines = 5
	refineLines  = 8
)

// Options control rendering. MaxLines overrides the per-mode line limit of
// improve and refine sections when positive.
type Options struct {
	Format   string
	MaxLines int
}

// document is the YAML shape of a rendered state.
type document struct {
	Mode        string   `yaml:"mode"`
	Phase       string   `yaml:"phase"`
	Resume      string   `yaml:"resume,omitempty"`
	Error       *failure `yaml:"error,omitempty"`
	Match       *match   `yaml:"match,omitempty"`
	Improvement *improve `yaml:"improvement,omitempty"`
	Refined     string   `yaml:"refined_jd,omitempty"`
}

type failure struct {
	Kind    string `yaml:"kind"`
	Message string `yaml:"message"`
}

type match struct {
	Percentage int    `yaml:"match_percentage"`
	Verdict    string `yaml:"verdict"`
	Analysis   string `yaml:"analysis"`
}

type improve struct {
	Strengths   string `yaml:"strengths"`
	Gaps        string `yaml:"gaps"`
	Suggestions string `yaml:"suggestions"`
}

// Render writes the outcome held by state: the failure message when there is
// one, otherwise the result. Other phases render nothing.
func Render(w io.Writer, state workflow.State, opts Options) error {
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", FormatText:
		return renderText(w, state, opts)
	case FormatYAML:
		return renderYAML(w, state)
	default:
		return fmt.Errorf("unknown output format: %q", opts.Format)
	}
}

func renderText(w io.Writer, state workflow.State, opts Options) error {
	var b strings.Builder

	switch {
	case state.Failure != nil:
		fmt.Fprintf(&b, "Error: %s\n", state.Failure.Message)
	case state.Result != nil:
		writeResult(&b, state.Result, opts)
	default:
		return nil
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeResult(b *strings.Builder, result *analysis.Result, opts Options) {
	switch result.Mode {
	case analysis.ModeMatch:
		if result.Match == nil {
			return
		}
		b.WriteString("Match Result:\n")
		fmt.Fprintf(b, "Match Percentage: %d%%\n", result.Match.MatchPercentage)
		fmt.Fprintf(b, "Verdict: %s\n", result.Match.Verdict)
		b.WriteString("\nLLM Analysis:\n")
		b.WriteString(result.Match.Analysis)
		b.WriteString("\n")

	case analysis.ModeImprove:
		if result.Improvement == nil {
			return
		}
		limit := lineLimit(opts.MaxLines, improveLines)
		b.WriteString("Resume Improvement Analysis\n")
		writeSection(b, "Strengths", result.Improvement.Strengths, limit)
		writeSection(b, "Gaps", result.Improvement.Gaps, limit)
		writeSection(b, "Suggestions", result.Improvement.Suggestions, limit)

	case analysis.ModeRefine:
		if result.Refinement == nil {
			return
		}
		b.WriteString("Refined Job Description\n")
		for _, line := range utils.FirstLines(result.Refinement.RefinedDescription, lineLimit(opts.MaxLines, refineLines)) {
			b.WriteString(line)
			b.WriteString("\n")
		}
	}
}

func writeSection(b *strings.Builder, title, text string, limit int) {
	fmt.Fprintf(b, "\n%s:\n", title)
	for _, line := range utils.FirstLines(text, limit) {
		b.WriteString(line)
		b.WriteString("\n")
	}
}

func lineLimit(override, fallback int) int {
	if override > 0 {
		return override
	}
	return fallback
}

func renderYAML(w io.Writer, state workflow.State) error {
	doc := document{
		Mode:  state.Mode.String(),
		Phase: state.Phase.String(),
	}
	if state.Input != nil {
		doc.Resume = state.Input.DisplayName
	}

	switch {
	case state.Failure != nil:
		doc.Error = &failure{Kind: state.Failure.Kind.String(), Message: state.Failure.Message}
	case state.Result != nil:
		r := state.Result
		if r.Match != nil {
			doc.Match = &match{Percentage: r.Match.MatchPercentage, Verdict: r.Match.Verdict, Analysis: r.Match.Analysis}
		}
		if r.Improvement != nil {
			doc.Improvement = &improve{Strengths: r.Improvement.Strengths, Gaps: r.Improvement.Gaps, Suggestions: r.Improvement.Suggestions}
		}
		if r.Refinement != nil {
			doc.Refined = r.Refinement.RefinedDescription
		}
	}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	_, err = w.Write(data)
	return err
}
