package scanner

import (
	"regexp"
	"testing"
	"time"

	"github.com/patterngate/gate/internal/pattern"
	"github.com/patterngate/gate/internal/weights"
)

func newTestStore(t *testing.T, defs ...pattern.Def) *pattern.Store {
	t.Helper()
	s := pattern.New(func(cerr *pattern.CompileError) { t.Fatalf("unexpected compile error: %v", cerr) })
	s.Load(&pattern.Document{Version: "v1", Patterns: defs})
	return s
}

func TestScanner_NoContentShortCircuits(t *testing.T) {
	s := New(newTestStore(t), weights.New())
	v := s.Analyze("", DegradeNone)
	if v.Status != StatusNoContent {
		t.Errorf("expected no_content, got %v", v.Status)
	}
}

func TestScanner_BypassShortCircuits(t *testing.T) {
	s := New(newTestStore(t), weights.New(), WithBypass(func() bool { return true }))
	v := s.Analyze("rm -rf /", DegradeNone)
	if v.Status != StatusBypassed {
		t.Errorf("expected bypassed, got %v", v.Status)
	}
}

func TestScanner_CriticalMatchBlocks(t *testing.T) {
	store := newTestStore(t, pattern.Def{
		ID: "crit1", Pattern: `rm -rf /`, Severity: pattern.SeverityCritical,
		Message: "dangerous delete", Tier: "ULTRA_CRITICAL",
	})
	s := New(store, weights.New())

	v := s.Analyze("please rm -rf / now", DegradeNone)
	if v.Status != StatusBlocked || !v.Block {
		t.Errorf("expected blocked verdict, got %+v", v)
	}
	if v.PatternID != "crit1" {
		t.Errorf("expected pattern crit1, got %q", v.PatternID)
	}
}

func TestScanner_HighMatchWarnsWithoutBlocking(t *testing.T) {
	store := newTestStore(t, pattern.Def{
		ID: "high1", Pattern: `eval\(`, Severity: pattern.SeverityHigh, Message: "eval use",
	})
	s := New(store, weights.New())

	v := s.Analyze("x = eval(userInput)", DegradeNone)
	if v.Status != StatusPassedWithWarnings {
		t.Errorf("expected passed_with_warnings, got %v", v.Status)
	}
	if v.Block {
		t.Error("HIGH severity must never block")
	}
}

func TestScanner_CleanInputPasses(t *testing.T) {
	store := newTestStore(t, pattern.Def{
		ID: "crit1", Pattern: `rm -rf /`, Severity: pattern.SeverityCritical, Message: "m", Tier: "ULTRA_CRITICAL",
	})
	s := New(store, weights.New())

	v := s.Analyze("echo hello world", DegradeNone)
	if v.Status != StatusPassed {
		t.Errorf("expected passed, got %v", v.Status)
	}
}

func TestScanner_DegradeUltraFastOnlySkipsLowerTiers(t *testing.T) {
	store := newTestStore(t, pattern.Def{
		ID: "high1", Pattern: `eval\(`, Severity: pattern.SeverityHigh, Message: "m",
	})
	s := New(store, weights.New())

	v := s.Analyze("x = eval(y)", DegradeUltraFastOnly)
	if v.Status != StatusPassed {
		t.Errorf("expected ultra-fast-only degrade to skip HIGH_NORMAL tier match, got %v", v)
	}
}

func TestScanner_WeightBelowThresholdSuppressesMatch(t *testing.T) {
	store := newTestStore(t, pattern.Def{
		ID: "high1", Pattern: `eval\(`, Severity: pattern.SeverityHigh, Message: "m",
	})
	wt := weights.New()
	// HIGH base confidence is 0.85; with weight 0.1 the weighted confidence
	// (0.085) falls under the 0.6 threshold, so the match should be
	// suppressed entirely.
	wt.ApplyUpdate("high1", 0.1, time.Now())

	s := New(store, wt)
	v := s.Analyze("x = eval(y)", DegradeNone)
	if v.Status != StatusPassed {
		t.Errorf("expected low-weight match to be suppressed, got %v", v)
	}
}

func TestScanner_RebuildUltraFastPicksUpNewlyPublishedPattern(t *testing.T) {
	store := newTestStore(t)
	s := New(store, weights.New())

	if v := s.Analyze("danger zone", DegradeNone); v.Status != StatusPassed {
		t.Fatalf("expected no match before publish, got %v", v)
	}

	p := &pattern.Pattern{
		ID:       "new1",
		Compiled: regexp.MustCompile(`danger zone`),
		Severity: pattern.SeverityCritical,
		Message:  "m",
	}
	if err := store.Publish(p, pattern.TierUltraCritical); err != nil {
		t.Fatal(err)
	}
	s.RebuildUltraFast()

	v := s.Analyze("danger zone", DegradeNone)
	if v.Status != StatusBlocked {
		t.Errorf("expected newly published pattern to match after rebuild, got %v", v)
	}
}
