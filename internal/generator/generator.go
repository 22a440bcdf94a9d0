// Package generator implements the Pattern Generator, Classifier, and
// Validator: the off-hot-path subsystem that synthesizes new candidate
// patterns and derived rules, validates them, and hands finished Patterns
// to the Pattern Store (spec.md §4.6).
package generator

import (
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patterngate/gate/internal/learner"
	"github.com/patterngate/gate/internal/pattern"
	"github.com/patterngate/gate/internal/weights"
)

// GenerateBudget and DeriveBudget are the soft time budgets of spec.md
// §4.6: "within ~2 ms" for generate, "within ~1 ms" for derive_rule. Both
// are advisory — a generator stuck past budget is logged and its partial
// output discarded, never blocking the caller indefinitely.
const (
	GenerateBudget = 2 * time.Millisecond
	DeriveBudget   = 1 * time.Millisecond
)

// recentHistoryCap bounds the in-memory Candidate history exposed through
// Recent; internal/store's periodic sync persists beyond this window, so
// the in-process ring only needs to cover what `gate status`/`gate
// explain` want without unbounded growth in a long-running `gate mcp`.
const recentHistoryCap = 50

// FeedbackKind is one of the adapt_from_feedback categories of spec.md
// §4.6.
type FeedbackKind string

const (
	FeedbackFalsePositive FeedbackKind = "false_positive"
	FeedbackFalseNegative FeedbackKind = "false_negative"
	FeedbackAccuracy      FeedbackKind = "accuracy"
)

// ErrDisabled is returned while the Recovery Controller has the generator
// switched off (spec.md §4.7 "fallback to basic patterns ... disable
// learning and generator").
var ErrDisabled = errors.New("generator: disabled by recovery controller")

// ErrNeedsReview is returned when a Candidate's classifier confidence is
// too low to auto-publish (spec.md §4.6 "flagged for review rather than
// auto-published").
var ErrNeedsReview = errors.New("generator: candidate needs manual review")

// Generator is the Pattern Generator & Auto-Rule Creator. It never runs on
// the hot path; Scanner only ever enqueues Learning Tasks, and the
// Recovery Controller drives this type's Disable method through Hooks.
type Generator struct {
	store   *pattern.Store
	weights *weights.Table
	lrn     *learner.Learner
	logger  *slog.Logger

	mu        sync.Mutex
	frequency map[string]int
	feedback  map[string]float64
	recent    []*Candidate

	disabled atomic.Bool

	generated int64
	published int64
	discarded int64
	failed    int64
}

// Option configures a Generator.
type Option func(*Generator)

// WithLogger sets the logger used for generator-failure diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) { g.logger = logger }
}

// New creates a Generator that publishes into store and can enqueue
// feedback-driven weight updates through lrn.
func New(store *pattern.Store, wt *weights.Table, lrn *learner.Learner, opts ...Option) *Generator {
	g := &Generator{
		store:     store,
		weights:   wt,
		lrn:       lrn,
		logger:    slog.Default(),
		frequency: make(map[string]int),
		feedback:  make(map[string]float64),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// SetDisabled enables or disables generation, driven by the Recovery
// Controller's Hooks.DisableGenerator (spec.md §4.7).
func (g *Generator) SetDisabled(v bool) { g.disabled.Store(v) }

// Stats reports generator counters for cmd/gate status.
type Stats struct {
	Generated int64
	Published int64
	Discarded int64
	Failed    int64
}

func (g *Generator) Stats() Stats {
	return Stats{
		Generated: atomic.LoadInt64(&g.generated),
		Published: atomic.LoadInt64(&g.published),
		Discarded: atomic.LoadInt64(&g.discarded),
		Failed:    atomic.LoadInt64(&g.failed),
	}
}

// Generate implements *generate(context, severity_hint)* → a Candidate or
// none, within ~2 ms (spec.md §4.6). It synthesizes a regex from literal
// tokens observed in contextSample; severityHint overrides the
// Classifier's proposed severity when it is a valid severity.
func (g *Generator) Generate(contextSample string, severityHint pattern.Severity) (*Candidate, error) {
	if g.disabled.Load() {
		return nil, ErrDisabled
	}
	start := time.Now()
	defer func() {
		if elapsed := time.Since(start); elapsed > GenerateBudget {
			g.logger.Warn("generator: generate exceeded soft budget", "elapsed", elapsed)
		}
	}()

	keywords := extractKeywords(contextSample)
	if len(keywords) == 0 {
		atomic.AddInt64(&g.failed, 1)
		return nil, fmt.Errorf("generate: no distinguishing content in context")
	}

	regexSource := buildAlternation(keywords)
	if _, err := regexp.Compile(regexSource); err != nil {
		atomic.AddInt64(&g.failed, 1)
		return nil, fmt.Errorf("generate: synthesized regex invalid: %w", err)
	}

	cls := Classify(regexSource, contextSample)
	sev := cls.Severity
	if severityHint.Valid() {
		sev = severityHint
	}

	cand := &Candidate{
		ID:          newCandidateID(),
		RegexSource: regexSource,
		Message:     fmt.Sprintf("auto-generated pattern matched observed content (%s)", cls.Category),
		Explanation: "synthesized by the pattern generator from repeated or flagged input",
		DerivedFrom: truncate(contextSample, 200),
		Severity:    sev,
		Category:    cls.Category,
		Classifier:  cls,
		CreatedAt:   time.Now(),
	}
	atomic.AddInt64(&g.generated, 1)

	g.mu.Lock()
	g.recent = append(g.recent, cand)
	if len(g.recent) > recentHistoryCap {
		g.recent = g.recent[len(g.recent)-recentHistoryCap:]
	}
	g.mu.Unlock()

	return cand, nil
}

// Recent returns up to the last recentHistoryCap generated candidates,
// newest last, for `gate status`/`internal/store`'s periodic audit sync.
func (g *Generator) Recent() []*Candidate {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]*Candidate, len(g.recent))
	copy(out, g.recent)
	return out
}

// Publish validates cand against corpus and, on success, computes its
// priority score and publishes it to the Pattern Store. lightweight
// selects the relaxed effectiveness floor of spec.md §4.6.
func (g *Generator) Publish(cand *Candidate, corpus Corpus, lightweight bool) error {
	if cand.Classifier.NeedsReview() {
		atomic.AddInt64(&g.discarded, 1)
		return ErrNeedsReview
	}

	result := Validate(cand.RegexSource, corpus, lightweight)
	cand.Validation = result
	if !result.Passed {
		atomic.AddInt64(&g.discarded, 1)
		return describeFailure(result)
	}

	cand.Priority = g.priority(cand)

	p, err := cand.ToPattern()
	if err != nil {
		atomic.AddInt64(&g.discarded, 1)
		return err
	}
	if err := g.store.Publish(p, p.Tier); err != nil {
		atomic.AddInt64(&g.discarded, 1)
		return err
	}
	atomic.AddInt64(&g.published, 1)
	return nil
}

// priority implements spec.md §4.6's scoring formula:
// priority = 0.3·frequency + 0.4·severity + 0.2·context_relevance + 0.1·feedback.
func (g *Generator) priority(cand *Candidate) float64 {
	key := string(cand.Category) + "|" + string(cand.Severity)

	g.mu.Lock()
	g.frequency[key]++
	count := g.frequency[key]
	fb := g.feedback[cand.ID]
	g.mu.Unlock()

	freqScore := float64(count) / 10
	if freqScore > 1 {
		freqScore = 1
	}
	sevScore := cand.Severity.BaseConfidence()
	ctxScore := cand.Classifier.Confidence
	// feedback accumulates in [-1, 1]; rescale to [0, 1] with 0.5 as neutral
	// (no feedback observed yet).
	fbScore := (fb + 1) / 2

	score := 0.3*freqScore + 0.4*sevScore + 0.2*ctxScore + 0.1*fbScore
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}
	return score
}

// DeriveRule implements *derive_rule(base_patterns, strategy)* (spec.md
// §4.6). It looks up basePatternID in the Pattern Store and delegates to
// the named strategy, cooperatively bounded by DeriveBudget.
func (g *Generator) DeriveRule(basePatternID string, strategy Strategy, contextSample, path string, extraKeywords []string) (*DerivedRule, error) {
	if g.disabled.Load() {
		return nil, ErrDisabled
	}
	start := time.Now()
	defer func() {
		if elapsed := time.Since(start); elapsed > DeriveBudget {
			g.logger.Warn("generator: derive_rule exceeded soft budget", "elapsed", elapsed, "strategy", strategy)
		}
	}()

	base, ok := g.store.Get(basePatternID)
	if !ok {
		atomic.AddInt64(&g.failed, 1)
		return nil, fmt.Errorf("derive_rule: unknown base pattern %q", basePatternID)
	}

	rule, err := DeriveRule(base, strategy, contextSample, path, extraKeywords)
	if err != nil {
		atomic.AddInt64(&g.failed, 1)
		return nil, err
	}
	return rule, nil
}

// AdaptFromFeedback implements *adapt_from_feedback(pattern_id, kind,
// payload)* (spec.md §4.6). False positives are routed through the
// Background Learner's task queue as a synthetic low-confidence
// observation, rather than writing the Weight Table directly — the Weight
// Table's single-writer discipline (spec.md §4.4, §5) must hold even for
// feedback-driven updates. False negatives trigger generation of a new
// candidate from the missed content; accuracy feedback nudges priority
// scoring for that pattern's future republications.
func (g *Generator) AdaptFromFeedback(patternID string, kind FeedbackKind, payload string) bool {
	switch kind {
	case FeedbackFalsePositive:
		p, ok := g.store.Get(patternID)
		if !ok {
			return false
		}
		g.lrn.Enqueue(learner.Task{
			PatternID:  patternID,
			Severity:   p.Severity,
			Confidence: 0,
			Tier:       p.Tier,
		})
		g.mu.Lock()
		g.feedback[patternID] -= 0.2
		if g.feedback[patternID] < -1 {
			g.feedback[patternID] = -1
		}
		g.mu.Unlock()
		return true

	case FeedbackFalseNegative:
		_, err := g.Generate(payload, "")
		return err == nil

	case FeedbackAccuracy:
		g.mu.Lock()
		g.feedback[patternID] += 0.1
		if g.feedback[patternID] > 1 {
			g.feedback[patternID] = 1
		}
		g.mu.Unlock()
		return true

	default:
		return false
	}
}

// extractKeywords pulls candidate literal anchors out of contextSample:
// tokens of at least 4 characters, deduplicated, capped to a small count
// so the synthesized regex stays cheap to evaluate.
func extractKeywords(contextSample string) []string {
	fields := strings.FieldsFunc(contextSample, func(r rune) bool {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return false
		default:
			return true
		}
	})

	seen := make(map[string]bool, len(fields))
	out := make([]string, 0, 8)
	for _, f := range fields {
		if len(f) < 4 {
			continue
		}
		low := strings.ToLower(f)
		if seen[low] {
			continue
		}
		seen[low] = true
		out = append(out, f)
		if len(out) >= 8 {
			break
		}
	}
	return out
}

// buildAlternation builds a regex source that matches any of keywords.
func buildAlternation(keywords []string) string {
	parts := make([]string, len(keywords))
	for i, k := range keywords {
		parts[i] = regexp.QuoteMeta(k)
	}
	return "(?i)(?:" + strings.Join(parts, "|") + ")"
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
