package scanner

import "github.com/patterngate/gate/internal/pattern"

// Status is the tagged outcome of a call to Analyze (spec.md §6).
type Status string

const (
	StatusPassed             Status = "passed"
	StatusPassedWithWarnings Status = "passed_with_warnings"
	StatusBlocked            Status = "blocked"
	StatusBypassed           Status = "bypassed"
	StatusNoContent          Status = "no_content"
	StatusError              Status = "error"
	StatusTimeout            Status = "timeout"
)

// Verdict is the hot path's single return value: a tagged result carrying
// enough information for a host to act on (block, warn, log) and enough
// for the Background Learner to learn from (spec.md §3, §6).
type Verdict struct {
	Status    Status
	Severity  pattern.Severity
	Message   string
	PatternID string
	Block     bool
}

// none is the zero verdict returned when no tier produces a sufficient
// match.
func none() Verdict {
	return Verdict{Status: StatusPassed}
}
