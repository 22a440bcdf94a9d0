package output

import (
	"encoding/json"
	"fmt"
)

// jsonVerdict is the wire shape for JSON output: a flattened view of the
// Verdict plus the policy Action, since most consumers (CI, jq pipelines)
// want decision and exit_code alongside the finding in one object.
type jsonVerdict struct {
	Status    string `json:"status"`
	Severity  string `json:"severity,omitempty"`
	Message   string `json:"message,omitempty"`
	PatternID string `json:"pattern_id,omitempty"`
	Block     bool   `json:"block"`
	Decision  string `json:"decision"`
	ExitCode  int    `json:"exit_code"`
	Reason    string `json:"reason,omitempty"`
	Artifact  string `json:"artifact,omitempty"`
}

// JSONFormatter renders analysis output as indented JSON.
type JSONFormatter struct{}

// Format serializes the verdict and action as pretty-printed JSON with a
// trailing newline for shell friendliness (e.g. piping to jq).
func (f *JSONFormatter) Format(result *AnalysisOutput) ([]byte, error) {
	if result == nil {
		return nil, fmt.Errorf("json formatter: result is required")
	}
	v := jsonVerdict{
		Status:    string(result.Verdict.Status),
		Severity:  string(result.Verdict.Severity),
		Message:   result.Verdict.Message,
		PatternID: result.Verdict.PatternID,
		Block:     result.Verdict.Block,
		Decision:  string(result.Action.Decision),
		ExitCode:  result.Action.ExitCode,
		Reason:    result.Action.Reason,
		Artifact:  result.Artifact,
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
