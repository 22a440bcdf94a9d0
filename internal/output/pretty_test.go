package output

import (
	"strings"
	"testing"

	"github.com/patterngate/gate/internal/policy"
	"github.com/patterngate/gate/internal/scanner"
)

func TestPrettyFormatter_ContainsDecision(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	f := &PrettyFormatter{}
	result := &AnalysisOutput{
		Verdict: scanner.Verdict{Status: scanner.StatusPassedWithWarnings},
		Action:  policy.Action{Decision: policy.DecisionReview},
	}
	out, err := f.Format(result)
	if err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	output := string(out)
	if !strings.Contains(output, "REVIEW") {
		t.Error("output missing decision string 'REVIEW'")
	}
}

func TestPrettyFormatter_ContainsFinding(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	f := &PrettyFormatter{}
	result := &AnalysisOutput{
		Verdict: scanner.Verdict{
			Status:    scanner.StatusBlocked,
			Severity:  "CRITICAL",
			Message:   "hardcoded secret detected",
			PatternID: "secret-generic",
			Block:     true,
		},
		Action:   policy.Action{Decision: policy.DecisionBlock, ExitCode: 2, Reason: "matched a blocking pattern"},
		Artifact: "config/db.go",
	}
	out, err := f.Format(result)
	if err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	output := string(out)

	for _, want := range []string{"config/db.go", "secret-generic", "hardcoded secret detected", "matched a blocking pattern"} {
		if !strings.Contains(output, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestPrettyFormatter_NoFindings(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	f := &PrettyFormatter{}
	result := &AnalysisOutput{
		Verdict: scanner.Verdict{Status: scanner.StatusPassed},
		Action:  policy.Action{Decision: policy.DecisionAllow},
	}
	out, err := f.Format(result)
	if err != nil {
		t.Fatalf("Format() returned error: %v", err)
	}
	output := string(out)

	if !strings.Contains(output, "ALLOW") {
		t.Error("output missing 'ALLOW' decision for no-findings case")
	}
}

func TestPrettyFormatter_NilResult(t *testing.T) {
	t.Setenv("NO_COLOR", "1")

	f := &PrettyFormatter{}
	_, err := f.Format(nil)
	if err == nil {
		t.Fatal("expected error for nil AnalysisOutput")
	}
}
