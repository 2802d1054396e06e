package analysis

const (
	PlaceholderVerdict     = "No verdict"
	PlaceholderAnalysis    = "No details provided."
	PlaceholderStrengths   = "No strengths provided."
	PlaceholderGaps        = "No gaps provided."
	PlaceholderSuggestions = "No suggestions provided."
	PlaceholderRefined     = "No refined job description returned."
)

// Result is a normalized service answer. Exactly the field matching Mode is set.
type Result struct {
	Mode        Mode
	Match       *MatchResult
	Improvement *Improvement
	Refinement  *Refinement
}

type MatchResult struct {
	MatchPercentage int
	Verdict         string
	Analysis        string
}

type Improvement struct {
	Strengths   string
	Gaps        string
	Suggestions string
}

type Refinement struct {
	RefinedDescription string
}

// Clone returns a deep copy of r.
func (r *Result) Clone() *Result {
	if r == nil {
		return nil
	}

	out := &Result{Mode: r.Mode}
	if r.Match != nil {
		m := *r.Match
		out.Match = &m
	}
	if r.Improvement != nil {
		i := *r.Improvement
		out.Improvement = &i
	}
	if r.Refinement != nil {
		ref := *r.Refinement
		out.Refinement = &ref
	}
	return out
}
