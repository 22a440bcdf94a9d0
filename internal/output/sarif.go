package output

import (
	"encoding/json"
	"fmt"

	"github.com/patterngate/gate/internal/sarif"
)

// SARIFFormatter renders analysis output as a SARIF 2.1.0 JSON document,
// for hosts that already consume SARIF from other scanners.
type SARIFFormatter struct{}

// Format produces a single-result SARIF log. A passed verdict (no match)
// still produces a valid, empty-results log rather than an error, since a
// host polling SARIF output expects one document per run regardless of
// outcome.
func (f *SARIFFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("sarif formatter: result is required")
	}

	var results []sarif.Result
	var rules []sarif.ReportingDescriptor

	if result.Verdict.PatternID != "" {
		level := "note"
		switch result.Verdict.Severity {
		case "CRITICAL":
			level = "error"
		case "HIGH":
			level = "warning"
		}

		var loc []sarif.Location
		if result.Artifact != "" {
			loc = []sarif.Location{{PhysicalLocation: sarif.PhysicalLocation{
				ArtifactLocation: sarif.ArtifactLocation{URI: result.Artifact},
			}}}
		}

		props := map[string]interface{}{
			"gate/decision":  string(result.Action.Decision),
			"gate/exit_code": result.Action.ExitCode,
		}
		if result.Tier != "" {
			props["gate/tier"] = result.Tier
		}
		if result.Weight != 0 {
			props["gate/confidence"] = result.Weight
		}
		if a := result.Advisory; a != nil {
			if a.Explanation != "" {
				props["gate/explanation"] = a.Explanation
			}
			if a.Remediation != "" {
				props["gate/recommendation"] = a.Remediation
			}
		}

		results = append(results, sarif.Result{
			RuleID:     result.Verdict.PatternID,
			Level:      level,
			Message:    sarif.Message{Text: result.Verdict.Message},
			Locations:  loc,
			Properties: props,
		})
		descriptor := sarif.ReportingDescriptor{
			ID:               result.Verdict.PatternID,
			ShortDescription: sarif.Message{Text: result.Verdict.Message},
		}
		if a := result.Advisory; a != nil {
			if a.Explanation != "" {
				descriptor.FullDescription = &sarif.Message{Text: a.Explanation}
			}
			if a.Remediation != "" {
				descriptor.Help = &sarif.Message{Text: a.Remediation}
			}
			if len(a.References) > 0 {
				descriptor.HelpURI = a.References[0]
			}
			if len(a.CWE) > 0 || len(a.OWASP) > 0 {
				descriptor.Properties = map[string]interface{}{}
				if len(a.CWE) > 0 {
					descriptor.Properties["cwe"] = a.CWE
				}
				if len(a.OWASP) > 0 {
					descriptor.Properties["owasp"] = a.OWASP
				}
			}
		}
		rules = append(rules, descriptor)
	}

	scope := "edit"
	if result.Artifact != "" {
		scope = result.Artifact
	}

	assembler := sarif.NewAssembler().
		AddResults(results).
		AddRules(rules).
		WithInputScope(scope)
	if result.ContentHash != "" {
		assembler = assembler.WithCacheMetadata(result.ContentHash, result.PatternCount, result.WeightsAsOf)
	}

	log := assembler.Build()
	data, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
