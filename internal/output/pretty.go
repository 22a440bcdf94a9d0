package output

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	stylePass = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	styleWarn = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	styleFail = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	styleDim  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// PrettyFormatter renders analysis output as colored, human-readable
// terminal output suitable for interactive use.
type PrettyFormatter struct{}

// Format produces pretty terminal output: a colored one-line decision
// banner, followed by the finding's detail when one is present.
func (f *PrettyFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("pretty formatter: result is required")
	}

	var sb strings.Builder

	banner := strings.ToUpper(string(result.Action.Decision))
	switch result.Action.Decision {
	case "block":
		sb.WriteString(styleFail.Render(banner))
	case "review":
		sb.WriteString(styleWarn.Render(banner))
	default:
		sb.WriteString(stylePass.Render(banner))
	}
	sb.WriteString("\n")

	if result.Artifact != "" {
		sb.WriteString(styleDim.Render(result.Artifact))
		sb.WriteString("\n")
	}

	if result.Verdict.PatternID != "" {
		fmt.Fprintf(&sb, "%s  %s\n", result.Verdict.Severity, result.Verdict.Message)
		sb.WriteString(styleDim.Render(fmt.Sprintf("pattern: %s", result.Verdict.PatternID)))
		sb.WriteString("\n")
		if a := result.Advisory; a != nil && a.Remediation != "" {
			sb.WriteString(styleDim.Render(fmt.Sprintf("remediation: %s", a.Remediation)))
			sb.WriteString("\n")
		}
	}

	if result.Action.Reason != "" {
		sb.WriteString(styleDim.Render(result.Action.Reason))
		sb.WriteString("\n")
	}

	return []byte(sb.String()), nil
}
