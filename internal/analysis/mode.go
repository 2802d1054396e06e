package analysis

import (
	"fmt"
	"strings"
)

type Mode string

const (
	ModeMatch   Mode = "match"
	ModeImprove Mode = "improve"
	ModeRefine  Mode = "refine"
)

var endpoints = map[Mode]string{
	ModeMatch:   "/match",
	ModeImprove: "/improve-resume",
	ModeRefine:  "/refine-jd",
}

func ParseMode(s string) (Mode, error) {
	mode := Mode(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := endpoints[mode]; !ok {
		return "", fmt.Errorf("unknown analysis mode: %q", s)
	}
	return mode, nil
}

// Endpoint returns the service path for the mode.
func (m Mode) Endpoint() string {
	return endpoints[m]
}

// RequiresResume reports whether the mode sends a resume alongside the job description.
func (m Mode) RequiresResume() bool {
	return m == ModeMatch || m == ModeImprove
}

func (m Mode) String() string { return string(m) }
