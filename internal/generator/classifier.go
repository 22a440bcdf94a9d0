package generator

import (
	"strings"

	"github.com/patterngate/gate/internal/pattern"
)

// securityKeywords and qualityKeywords drive the Classifier's feature
// extraction over a candidate's regex source and generating context
// (spec.md §4.6 "Classification").
var securityKeywords = []string{
	"password", "secret", "token", "key", "credential", "inject", "exploit",
	"rm -rf", "sudo", "eval", "drop ", "auth", "jwt", "private key", "ssrf",
	"xss", "csrf", "traversal",
}

var qualityKeywords = []string{
	"todo", "fixme", "hack", "deprecated", "unused", "duplicate", "complex",
	"nested", "long", "unreadable", "magic number",
}

var categoryKeywords = map[pattern.Category][]string{
	pattern.CategorySecurity:        securityKeywords,
	pattern.CategoryPerformance:     {"n+1", "allocation", "loop", "o(n^2)", "leak", "timeout", "blocking"},
	pattern.CategoryMaintainability: {"duplicate", "magic number", "long function", "god object", "naming"},
	pattern.CategoryReliability:     {"panic", "nil pointer", "race", "error ignored", "retry", "deadlock"},
	pattern.CategoryStyle:           {"whitespace", "formatting", "import order", "comment"},
}

// ClassifierResult is the Classifier's output: a proposed severity and
// category plus the confidence behind that proposal (spec.md §4.6
// "Classifier confidence must be computed and reported").
type ClassifierResult struct {
	Severity   pattern.Severity
	Category   pattern.Category
	Confidence float64
}

// NeedsReview reports whether confidence is too low for auto-publication
// (spec.md §4.6: "Candidates with classifier confidence < 0.5 are flagged
// for review rather than auto-published").
func (r ClassifierResult) NeedsReview() bool { return r.Confidence < 0.5 }

// Classify assigns severity and category to a candidate by feature
// extraction on its regex source and generating context, following
// spec.md §4.6: "Severity decision uses presence of security keywords →
// CRITICAL; quality keywords → HIGH; otherwise → INFO."
func Classify(regexSource, context string) ClassifierResult {
	haystack := strings.ToLower(regexSource + " " + context)

	secHits := countHits(haystack, securityKeywords)
	qualHits := countHits(haystack, qualityKeywords)

	var sev pattern.Severity
	var hits int
	switch {
	case secHits > 0:
		sev = pattern.SeverityCritical
		hits = secHits
	case qualHits > 0:
		sev = pattern.SeverityHigh
		hits = qualHits
	default:
		sev = pattern.SeverityInfo
		hits = 0
	}

	category, catHits := bestCategory(haystack)

	// Confidence grows with the number of corroborating keyword hits but
	// never exceeds 0.95 — a classifier should never claim certainty.
	confidence := 0.35 + 0.15*float64(hits+catHits)
	if confidence > 0.95 {
		confidence = 0.95
	}
	if hits == 0 && catHits == 0 {
		confidence = 0.35
	}

	return ClassifierResult{Severity: sev, Category: category, Confidence: confidence}
}

func countHits(haystack string, keywords []string) int {
	n := 0
	for _, kw := range keywords {
		if strings.Contains(haystack, kw) {
			n++
		}
	}
	return n
}

func bestCategory(haystack string) (pattern.Category, int) {
	best := pattern.CategoryGeneral
	bestHits := 0
	for cat, kws := range categoryKeywords {
		if h := countHits(haystack, kws); h > bestHits {
			best, bestHits = cat, h
		}
	}
	return best, bestHits
}
