package generator

import (
	"regexp"
	"time"

	"github.com/google/uuid"

	"github.com/patterngate/gate/internal/pattern"
)

// Candidate is a proposed new regex pattern, not yet eligible for hot-path
// use until it passes Validation (spec.md §3 "Generated Pattern
// Candidate"). Ownership stays with the Generator until Publish transfers
// it to the Pattern Store.
type Candidate struct {
	ID          string
	RegexSource string
	Message     string
	Explanation string
	DerivedFrom string // the observed context/input that produced it
	Severity    pattern.Severity
	Category    pattern.Category

	Classifier ClassifierResult
	Validation ValidationResult
	Priority   float64

	CreatedAt time.Time
}

// newCandidateID mints an opaque candidate ID. Patterns never hold direct
// pointers across the Generator/Store boundary — only this string id
// (spec.md §9 "Cyclic references").
func newCandidateID() string {
	return "cand-" + uuid.NewString()
}

// ToPattern converts a validated Candidate into a publishable Pattern.
// Callers must check Validation.Passed before calling this; it re-compiles
// the regex source since Candidates never hold a live *regexp.Regexp
// themselves (only the Validator's scratch copy does).
func (c *Candidate) ToPattern() (*pattern.Pattern, error) {
	re, err := regexp.Compile(c.RegexSource)
	if err != nil {
		return nil, err
	}
	return &pattern.Pattern{
		ID:          c.ID,
		RawPattern:  c.RegexSource,
		Compiled:    re,
		Severity:    c.Severity,
		Category:    c.Category,
		Message:     c.Message,
		Explanation: c.Explanation,
		Tier:        pattern.AssignTier(c.Severity, re),
	}, nil
}
