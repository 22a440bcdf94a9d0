package output

import (
	"fmt"
	"strings"
)

// MarkdownFormatter renders analysis output as GitHub-Flavored Markdown,
// suitable for posting as a PR comment.
type MarkdownFormatter struct{}

// Format produces a short Markdown summary: a status line plus the
// finding's detail when one is present.
func (f *MarkdownFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("markdown formatter: result is required")
	}

	var sb strings.Builder

	fmt.Fprintf(&sb, "### gate: %s\n\n", strings.ToUpper(string(result.Action.Decision)))

	if result.Artifact != "" {
		fmt.Fprintf(&sb, "**Artifact:** `%s`\n\n", result.Artifact)
	}

	if result.Verdict.PatternID != "" {
		fmt.Fprintf(&sb, "| Field | Value |\n|---|---|\n")
		fmt.Fprintf(&sb, "| Pattern | `%s` |\n", result.Verdict.PatternID)
		fmt.Fprintf(&sb, "| Severity | %s |\n", result.Verdict.Severity)
		fmt.Fprintf(&sb, "| Message | %s |\n", result.Verdict.Message)
		fmt.Fprintf(&sb, "| Exit code | %d |\n", result.Action.ExitCode)
		if a := result.Advisory; a != nil {
			if len(a.CWE) > 0 {
				fmt.Fprintf(&sb, "| CWE | %s |\n", strings.Join(a.CWE, ", "))
			}
			if a.Remediation != "" {
				fmt.Fprintf(&sb, "\n**Remediation:** %s\n", a.Remediation)
			}
		}
	} else {
		sb.WriteString("No pattern matched.\n")
	}

	if result.Action.Reason != "" {
		fmt.Fprintf(&sb, "\n_%s_\n", result.Action.Reason)
	}

	return []byte(sb.String()), nil
}
