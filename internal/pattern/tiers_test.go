package pattern

import (
	"regexp"
	"testing"
)

func TestAssignTier_CriticalShortPatternIsUltraCritical(t *testing.T) {
	re := regexp.MustCompile(`rm -rf`)
	if got := AssignTier(SeverityCritical, re); got != TierUltraCritical {
		t.Errorf("expected ULTRA_CRITICAL, got %v", got)
	}
}

func TestAssignTier_CriticalComplexPatternDemotesToCriticalFast(t *testing.T) {
	complex := regexp.MustCompile(`(foo|bar|baz|qux)+.*[a-zA-Z0-9]{5,}(something|other)*`)
	if got := AssignTier(SeverityCritical, complex); got != TierCriticalFast {
		t.Errorf("expected CRITICAL_FAST for complex pattern, got %v", got)
	}
}

func TestAssignTier_HighAndInfoAreHighNormal(t *testing.T) {
	re := regexp.MustCompile(`x`)
	if got := AssignTier(SeverityHigh, re); got != TierHighNormal {
		t.Errorf("expected HIGH_NORMAL for HIGH severity, got %v", got)
	}
	if got := AssignTier(SeverityInfo, re); got != TierHighNormal {
		t.Errorf("expected HIGH_NORMAL for INFO severity, got %v", got)
	}
}

func TestTierString(t *testing.T) {
	cases := map[Tier]string{
		TierUltraCritical: "ULTRA_CRITICAL",
		TierCriticalFast:  "CRITICAL_FAST",
		TierHighNormal:    "HIGH_NORMAL",
		Tier(99):          "UNKNOWN",
	}
	for tier, want := range cases {
		if got := tier.String(); got != want {
			t.Errorf("Tier(%d).String() = %q, want %q", tier, got, want)
		}
	}
}
