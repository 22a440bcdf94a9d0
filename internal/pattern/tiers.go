package pattern

import (
	"regexp"
	"strings"
)

// complexityThreshold is the matcher-length/complexity cutoff past which a
// CRITICAL pattern is demoted from ULTRA_CRITICAL to CRITICAL_FAST
// (spec.md §4.1 "Tier assignment policy").
const complexityThreshold = 40

// AssignTier implements the default tier-assignment policy: the smallest
// set of the most dangerous patterns is pinned to ULTRA_CRITICAL by the
// matcher package directly (see matcher.BuiltinUltraCritical); everything
// else loaded from a Document is assigned here by severity and matcher
// complexity.
func AssignTier(sev Severity, re *regexp.Regexp) Tier {
	switch sev {
	case SeverityCritical:
		if complexity(re) > complexityThreshold {
			return TierCriticalFast
		}
		return TierUltraCritical
	case SeverityHigh:
		return TierHighNormal
	case SeverityInfo:
		return TierHighNormal
	default:
		return TierHighNormal
	}
}

// complexity estimates regex evaluation cost from its source: length plus a
// weight for constructs that force backtracking-prone or wide scans
// (alternation, unbounded quantifiers, character classes).
func complexity(re *regexp.Regexp) int {
	src := re.String()
	score := len(src)
	score += 5 * strings.Count(src, "|")
	score += 3 * strings.Count(src, "*")
	score += 3 * strings.Count(src, "+")
	score += 2 * strings.Count(src, "{")
	score += 2 * strings.Count(src, "[")
	return score
}
