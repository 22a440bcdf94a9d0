package generator

import (
	"testing"

	"github.com/patterngate/gate/internal/pattern"
)

func basePattern() *pattern.Pattern {
	return &pattern.Pattern{ID: "base1", RawPattern: `foo`, Severity: pattern.SeverityHigh}
}

func TestDeriveRule_PatternExtensionUnionsKeywords(t *testing.T) {
	rule, err := DeriveRule(basePattern(), StrategyPatternExtension, "", "", []string{"bar", "baz"})
	if err != nil {
		t.Fatal(err)
	}
	if rule.Strategy != StrategyPatternExtension {
		t.Errorf("expected pattern_extension strategy, got %v", rule.Strategy)
	}
	if rule.BasePattern != "base1" {
		t.Errorf("expected base pattern id base1, got %v", rule.BasePattern)
	}
}

func TestDeriveRule_PatternExtensionFailsWithNoKeywords(t *testing.T) {
	_, err := DeriveRule(basePattern(), StrategyPatternExtension, "", "", nil)
	if err == nil {
		t.Error("expected error with no discovered keywords")
	}
}

func TestDeriveRule_SeverityEscalationRequiresTrigger(t *testing.T) {
	_, err := DeriveRule(basePattern(), StrategySeverityEscalation, "nothing relevant here", "", nil)
	if err == nil {
		t.Error("expected error with no trigger condition present")
	}

	rule, err := DeriveRule(basePattern(), StrategySeverityEscalation, "found a hardcoded password in prod", "", nil)
	if err != nil {
		t.Fatal(err)
	}
	if rule.Severity != pattern.SeverityCritical {
		t.Errorf("expected escalation from HIGH to CRITICAL, got %v", rule.Severity)
	}
}

func TestDeriveRule_SeverityEscalationRejectsAlreadyAtCeiling(t *testing.T) {
	crit := basePattern()
	crit.Severity = pattern.SeverityCritical
	_, err := DeriveRule(crit, StrategySeverityEscalation, "password in prod", "", nil)
	if err == nil {
		t.Error("expected error escalating a pattern already at CRITICAL")
	}
}

func TestDeriveRule_ContextAdaptationRequiresRecognizableDomain(t *testing.T) {
	_, err := DeriveRule(basePattern(), StrategyContextAdaptation, "nothing domain specific", "", nil)
	if err == nil {
		t.Error("expected error with no recognizable domain")
	}

	rule, err := DeriveRule(basePattern(), StrategyContextAdaptation, "select * from users where id = ?", "db/query.go", nil)
	if err != nil {
		t.Fatal(err)
	}
	if rule.Strategy != StrategyContextAdaptation {
		t.Errorf("expected context_adaptation strategy, got %v", rule.Strategy)
	}
}

func TestDeriveRule_UnknownStrategyErrors(t *testing.T) {
	_, err := DeriveRule(basePattern(), Strategy("bogus"), "", "", nil)
	if err == nil {
		t.Error("expected error for unknown strategy")
	}
}

func TestDeriveRule_NilBaseErrors(t *testing.T) {
	_, err := DeriveRule(nil, StrategyPatternExtension, "", "", []string{"x"})
	if err == nil {
		t.Error("expected error for nil base pattern")
	}
}
