// Package output provides formatters for rendering gate.Engine.Analyze
// results in different output formats (JSON, SARIF, Markdown, pretty
// terminal), per SPEC_FULL.md's output-rendering section.
package output

import (
	"fmt"

	"github.com/patterngate/gate/internal/policy"
	"github.com/patterngate/gate/internal/rules"
	"github.com/patterngate/gate/internal/scanner"
)

// Formatter renders an AnalysisOutput into a byte slice in a specific format.
type Formatter interface {
	Format(result *AnalysisOutput) ([]byte, error)
}

// AnalysisOutput holds the complete result of one gate.Engine.Analyze call:
// the raw Verdict, the policy's decision, and the input artifact's path
// (if known) for file-scoped formats like SARIF. Advisory is the rules
// catalog entry matching the Verdict's PatternID, when the caller loaded
// one; nil if there's no catalog or no match, in which case formatters
// fall back to the verdict's own Message.
type AnalysisOutput struct {
	Verdict  scanner.Verdict
	Action   policy.Action
	Artifact string // path, or empty when not file-scoped (e.g. stdin/bash)
	Advisory *rules.Rule

	// ContentHash, PatternCount, and WeightsAsOf stamp the snapshot this
	// verdict was produced against, for SARIFFormatter's cache metadata
	// (sarif.CacheMetadata). Empty/zero when the caller has no cache
	// configured; formatters other than SARIF ignore them.
	ContentHash  string
	PatternCount int
	WeightsAsOf  string

	// Tier and Weight are the matched Pattern's Tier Registry tier and its
	// current Weight Table entry, surfaced on the SARIF Result so a human
	// reviewer (internal/review) sees the same learned-confidence signal
	// the tiered scanner acted on, not just the raw verdict message.
	Tier   string
	Weight float64
}

// ResolveFormat determines the output format to use. If flagValue is non-empty,
// it is returned directly. Otherwise, "pretty" is returned for TTY output and
// "json" for non-TTY (piped) output.
func ResolveFormat(flagValue string, stdoutIsTTY bool) string {
	if flagValue != "" {
		return flagValue
	}
	if stdoutIsTTY {
		return "pretty"
	}
	return "json"
}

// NewFormatter returns a Formatter for the given format name.
// Supported formats: "json", "sarif", "markdown", "pretty".
// Returns an error for unknown format names.
func NewFormatter(format string) (Formatter, error) {
	switch format {
	case "json":
		return &JSONFormatter{}, nil
	case "sarif":
		return &SARIFFormatter{}, nil
	case "markdown":
		return &MarkdownFormatter{}, nil
	case "pretty":
		return &PrettyFormatter{}, nil
	default:
		return nil, fmt.Errorf("unknown output format: %q (supported: json, sarif, markdown, pretty)", format)
	}
}
