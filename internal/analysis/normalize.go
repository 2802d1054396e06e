package analysis

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mitchellh/mapstructure"
)

type matchPayload struct {
	MatchPercentage any `mapstructure:"match_percentage"`
	Verdict         any `mapstructure:"verdict"`
	Analysis        any `mapstructure:"analysis"`
}

type improvePayload struct {
	Strengths   any `mapstructure:"strengths"`
	Gaps        any `mapstructure:"gaps"`
	Suggestions any `mapstructure:"suggestions"`
}

type refinePayload struct {
	RefinedJD any `mapstructure:"refined_jd"`
}

type errorPayload struct {
	Detail any `mapstructure:"detail"`
}

// decodeObject parses a JSON object body. Anything else is an unexpected shape.
func decodeObject(body []byte) (map[string]any, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if raw == nil {
		return nil, errors.New("response is not a JSON object")
	}
	return raw, nil
}

// Normalize builds a display-ready Result from a decoded response. raw is only read.
func Normalize(mode Mode, raw map[string]any) (*Result, error) {
	switch mode {
	case ModeMatch:
		var p matchPayload
		if err := mapstructure.Decode(raw, &p); err != nil {
			return nil, fmt.Errorf("decode match response: %w", err)
		}
		return &Result{Mode: mode, Match: &MatchResult{
			MatchPercentage: coercePercentage(p.MatchPercentage),
			Verdict:         coerceString(p.Verdict, PlaceholderVerdict),
			Analysis:        coerceString(p.Analysis, PlaceholderAnalysis),
		}}, nil

	case ModeImprove:
		var p improvePayload
		if err := mapstructure.Decode(raw, &p); err != nil {
			return nil, fmt.Errorf("decode improve response: %w", err)
		}
		return &Result{Mode: mode, Improvement: &Improvement{
			Strengths:   coerceString(p.Strengths, PlaceholderStrengths),
			Gaps:        coerceString(p.Gaps, PlaceholderGaps),
			Suggestions: coerceString(p.Suggestions, PlaceholderSuggestions),
		}}, nil

	case ModeRefine:
		var p refinePayload
		if err := mapstructure.Decode(raw, &p); err != nil {
			return nil, fmt.Errorf("decode refine response: %w", err)
		}
		return &Result{Mode: mode, Refinement: &Refinement{
			RefinedDescription: coerceString(p.RefinedJD, PlaceholderRefined),
		}}, nil

	default:
		return nil, fmt.Errorf("unknown analysis mode: %q", mode)
	}
}

// errorDetail extracts a usable detail string from an error body.
func errorDetail(body []byte) (string, bool) {
	raw, err := decodeObject(body)
	if err != nil {
		return "", false
	}

	var p errorPayload
	if err := mapstructure.Decode(raw, &p); err != nil {
		return "", false
	}

	detail, ok := p.Detail.(string)
	if !ok {
		return "", false
	}

	if strings.TrimSpace(detail) == "" {
		return "", false
	}
	return detail, true
}

func coerceString(v any, placeholder string) string {
	s, ok := v.(string)
	if !ok {
		return placeholder
	}
	if strings.TrimSpace(s) == "" {
		return placeholder
	}
	return s
}

func coercePercentage(v any) int {
	var f float64
	switch val := v.(type) {
	case float64:
		f = val
	case int:
		f = float64(val)
	case json.Number:
		parsed, err := val.Float64()
		if err != nil {
			return 0
		}
		f = parsed
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSuffix(strings.TrimSpace(val), "%"), 64)
		if err != nil {
			return 0
		}
		f = parsed
	default:
		return 0
	}

	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}

	return int(math.Max(0, math.Min(100, math.Round(f))))
}
