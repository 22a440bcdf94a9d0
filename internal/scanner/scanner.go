// Package scanner implements the Tiered Scanner: the single synchronous
// entry point of the hot path. It runs tiers in latency order, honors
// per-tier and total time budgets, combines learned weights with base
// confidence, and returns a tagged Verdict (spec.md §4.3).
package scanner

import (
	"sync/atomic"
	"time"

	"github.com/patterngate/gate/internal/matcher"
	"github.com/patterngate/gate/internal/pattern"
	"github.com/patterngate/gate/internal/weights"
)

// TotalBudget is the call's total time allowance across every tier
// (spec.md §3 Tier invariants).
const TotalBudget = 1500 * time.Microsecond

// tierBudget is the individual allowance for each tier, indexed by
// pattern.Tier.
var tierBudget = [3]time.Duration{
	pattern.TierUltraCritical: matcher.Budget,
	pattern.TierCriticalFast:  300 * time.Microsecond,
	pattern.TierHighNormal:    800 * time.Microsecond,
}

// Scanner is the hot-path orchestrator. It holds no mutable state beyond
// an atomically-swapped reference to the Ultra-Fast Matcher (rebuilt when
// the Pattern Generator publishes a new ULTRA_CRITICAL pattern); every
// other dependency is read-only from the Scanner's point of view.
type Scanner struct {
	store   *pattern.Store
	weights *weights.Table
	ultra   atomic.Pointer[matcher.Matcher]

	bypass func() bool
	sink   MetricsSink
	tasks  TaskEnqueuer

	totalBudget time.Duration
}

// Option configures a Scanner.
type Option func(*Scanner)

// WithBypass installs the bypass-flag predicate (spec.md §6). If nil, the
// Scanner never bypasses.
func WithBypass(fn func() bool) Option {
	return func(s *Scanner) { s.bypass = fn }
}

// WithMetricsSink installs the Sample consumer for §4.7's rolling metrics.
func WithMetricsSink(sink MetricsSink) Option {
	return func(s *Scanner) { s.sink = sink }
}

// WithTaskEnqueuer installs the Background Learner's task intake.
func WithTaskEnqueuer(tasks TaskEnqueuer) Option {
	return func(s *Scanner) { s.tasks = tasks }
}

// WithTotalBudget overrides TotalBudget, used by the Recovery Controller's
// "relax budgets" stability-mode strategy (spec.md §4.7).
func WithTotalBudget(d time.Duration) Option {
	return func(s *Scanner) { s.totalBudget = d }
}

// New builds a Scanner reading from store. RebuildUltraFast must be called
// at least once (New does this) before the first Analyze call.
func New(store *pattern.Store, wt *weights.Table, opts ...Option) *Scanner {
	s := &Scanner{store: store, weights: wt, totalBudget: TotalBudget}
	for _, opt := range opts {
		opt(s)
	}
	s.RebuildUltraFast()
	return s
}

// RebuildUltraFast recomputes the Ultra-Fast Matcher's pre-ordered sweep
// from the Store's current ULTRA_CRITICAL tier and swaps it in atomically.
// Call this after any Publish into that tier; in-flight Analyze calls keep
// using the matcher snapshot they started with.
func (s *Scanner) RebuildUltraFast() {
	s.ultra.Store(matcher.New(s.store))
}

// DegradeMode lets a caller (the Recovery Controller, via internal/gate)
// put a single call into a degraded mode without mutating shared Scanner
// state (spec.md §4.7 recovery strategies).
type DegradeMode int

const (
	// DegradeNone runs the full tiered sweep.
	DegradeNone DegradeMode = iota
	// DegradeUltraFastOnly skips every tier but ULTRA_CRITICAL.
	DegradeUltraFastOnly
	// DegradeRelaxedBudget runs the full sweep with a relaxed total
	// budget (stability mode, §4.7: "budgets relaxed (e.g., total budget
	// to 5 ms)").
	DegradeRelaxedBudget
)

// Analyze is the hot path. It never panics to the caller and never blocks
// on I/O: every internal failure maps to a Verdict (spec.md §7
// "Propagation policy").
func (s *Scanner) Analyze(input string, degraded DegradeMode) Verdict {
	start := time.Now()

	if s.bypass != nil && s.bypass() {
		return Verdict{Status: StatusBypassed}
	}
	if input == "" {
		return Verdict{Status: StatusNoContent}
	}

	sample := Sample{Timestamp: start, TierReached: pattern.TierUltraCritical}
	defer func() {
		sample.Latency = time.Since(start)
		if s.sink != nil {
			s.sink.RecordSample(sample)
		}
	}()

	budget := s.totalBudget
	if degraded == DegradeRelaxedBudget {
		budget = 5 * time.Millisecond
	}

	if hit, ok := s.ultra.Load().Match(input); ok {
		conf := hit.Severity.BaseConfidence() * s.weights.Get(hit.PatternID)
		if conf >= hit.Severity.Threshold() {
			sample.MatchedID = hit.PatternID
			s.enqueueTask(hit.PatternID, hit.Severity, conf, time.Since(start), pattern.TierUltraCritical)
			return verdictFor(hit.Severity, hit.Message, hit.PatternID)
		}
	}

	if degraded == DegradeUltraFastOnly {
		return none()
	}

	view := BuildScanView(input)

	for _, tier := range []pattern.Tier{pattern.TierCriticalFast, pattern.TierHighNormal} {
		if time.Since(start) >= budget {
			sample.TimedOut = true
			return Verdict{Status: StatusTimeout}
		}
		sample.TierReached = tier

		v, matched := s.scanTier(tier, input, view, start, budget)
		if matched {
			sample.MatchedID = v.PatternID
			return v
		}
	}

	return none()
}

// scanTier runs every pattern in tier against input (or its size-bounded
// view, for keyword-anchored patterns), honoring both the tier's own
// budget and the overall call budget. It returns the first match whose
// weighted confidence meets its severity's threshold.
func (s *Scanner) scanTier(tier pattern.Tier, input, view string, callStart time.Time, totalBudget time.Duration) (Verdict, bool) {
	tierStart := time.Now()
	budget := tierBudget[tier]

	for _, p := range s.store.PatternsInTier(tier) {
		if time.Since(tierStart) >= budget || time.Since(callStart) >= totalBudget {
			return Verdict{}, false
		}

		target := input
		if keywordAnchored(p) {
			target = view
		}

		matched := s.safeMatch(p, target)
		if !matched {
			continue
		}

		conf := p.Severity.BaseConfidence() * s.weights.Get(p.ID)
		if conf >= p.Severity.Threshold() {
			s.enqueueTask(p.ID, p.Severity, conf, time.Since(callStart), tier)
			return verdictFor(p.Severity, p.Message, p.ID), true
		}
	}
	return Verdict{}, false
}

// safeMatch runs a single pattern's matcher, converting any panic into a
// MatcherFailure outcome (spec.md §7 "MatcherFailure") that is counted as
// "no match" rather than propagated to the caller.
func (s *Scanner) safeMatch(p *pattern.Pattern, input string) (matched bool) {
	defer func() {
		if r := recover(); r != nil {
			matched = false
			if s.sink != nil {
				s.sink.RecordSample(Sample{Timestamp: time.Now(), Error: true, MatchedID: p.ID})
			}
		}
	}()
	return p.Match(input)
}

func (s *Scanner) enqueueTask(id string, sev pattern.Severity, conf float64, latency time.Duration, tier pattern.Tier) {
	if s.tasks != nil {
		s.tasks.Enqueue(id, sev, conf, latency, tier)
	}
}

// verdictFor maps a matched severity to the §6 status enum: CRITICAL
// blocks, HIGH warns, INFO passes with the finding still reported
// (spec.md §8 scenario 5: "passed or informational").
func verdictFor(sev pattern.Severity, message, patternID string) Verdict {
	switch sev {
	case pattern.SeverityCritical:
		return Verdict{Status: StatusBlocked, Severity: sev, Message: message, PatternID: patternID, Block: true}
	case pattern.SeverityHigh:
		return Verdict{Status: StatusPassedWithWarnings, Severity: sev, Message: message, PatternID: patternID}
	default:
		return Verdict{Status: StatusPassed, Severity: sev, Message: message, PatternID: patternID}
	}
}

// keywordAnchored reports whether p's selectivity depends on one of the
// centralized scan-view keywords (scanview.go), meaning it is safe to
// evaluate against the derived view instead of the full input. Patterns
// without such an anchor always scan the full input, per spec.md §4.3
// "patterns without such anchors must scan the full input."
func keywordAnchored(p *pattern.Pattern) bool {
	src := p.RawPattern
	for _, kw := range Keywords {
		if containsFold(src, kw) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	hl, nl := []rune(haystack), []rune(needle)
	if len(nl) == 0 || len(nl) > len(hl) {
		return false
	}
	lower := func(rs []rune) []rune {
		out := make([]rune, len(rs))
		for i, r := range rs {
			if r >= 'A' && r <= 'Z' {
				r += 'a' - 'A'
			}
			out[i] = r
		}
		return out
	}
	hl, nl = lower(hl), lower(nl)
	for i := 0; i+len(nl) <= len(hl); i++ {
		match := true
		for j := range nl {
			if hl[i+j] != nl[j] {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}
