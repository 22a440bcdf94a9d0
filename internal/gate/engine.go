// Package gate wires the Pattern Store, Tiered Scanner, Weight Table,
// Background Learner, Pattern Generator, and Recovery Controller into the
// single synchronous entry point a host integration calls (spec.md §6
// "Invocation surface").
package gate

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/generator"
	"github.com/patterngate/gate/internal/learner"
	"github.com/patterngate/gate/internal/pattern"
	"github.com/patterngate/gate/internal/policy"
	"github.com/patterngate/gate/internal/recovery"
	"github.com/patterngate/gate/internal/scanner"
	weightstore "github.com/patterngate/gate/internal/store"
	"github.com/patterngate/gate/internal/weights"
)

// generatorTracer spans the Pattern Generator's off-hot-path operations
// (generate, derive_rule, adapt_from_feedback), following
// internal/policy's tracing style. It is deliberately never started around
// Analyze: scanner.Analyze is the latency-budgeted hot path and a span
// start/end pair is itself measurable overhead against a 1.5ms budget.
var generatorTracer = otel.Tracer("github.com/patterngate/gate/internal/gate")

// weightSaveInterval is how often a long-running Engine (gate mcp, gate
// status --watch) flushes learned weights to WeightStorePath, so an
// ungraceful kill loses at most this much learning.
const weightSaveInterval = 30 * time.Second

// Mode is the analyze() invocation mode of spec.md §6.
type Mode string

const (
	ModeEdit Mode = "edit"
	ModeBash Mode = "bash"
)

// Result is the Engine's public return value: the raw Verdict plus the
// policy's decision and the exit code a CLI wrapper should report.
type Result struct {
	Verdict scanner.Verdict
	Action  policy.Action
}

// Engine is the assembled gate: every subsystem from spec.md §4, wired
// together and exposed through Analyze.
type Engine struct {
	store    *pattern.Store
	weights  *weights.Table
	learner  *learner.Learner
	genr     *generator.Generator
	scan     *scanner.Scanner
	metrics  *recovery.Metrics
	recover  *recovery.Controller
	policy   *policy.Engine
	tunables *config.Tunables
	cfg      *config.Config
	logger   *slog.Logger

	weightStore       *weightstore.SQLiteWeightStore
	stopSave          chan struct{}
	syncedRecordCount int

	forcedUltraOnly atomic.Bool
	relaxedBudget   atomic.Bool
	bypassed        atomic.Bool
}

// New assembles an Engine from cfg. patternDir (if non-empty) is merged
// over the embedded default pattern document; policyDir (if non-empty)
// overrides the embedded default Rego policy.
func New(ctx context.Context, cfg *config.Config, tunables *config.Tunables, policyDir string, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	store := pattern.New(func(cerr *pattern.CompileError) {
		logger.Warn("pattern: skipped invalid pattern at load", "error", cerr)
	})
	defaultDoc, err := pattern.DefaultDocument()
	if err != nil {
		return nil, fmt.Errorf("loading embedded default pattern document: %w", err)
	}
	store.Load(defaultDoc)
	if cfg.PatternDir != "" {
		if err := store.LoadDir(cfg.PatternDir); err != nil {
			logger.Warn("pattern: failed loading pattern directory", "dir", cfg.PatternDir, "error", err)
		}
	}

	wt := weights.New()

	e := &Engine{
		store:    store,
		weights:  wt,
		tunables: tunables,
		cfg:      cfg,
		logger:   logger,
	}

	if cfg.WeightStorePath != "" {
		ws, err := weightstore.OpenSQLiteWeightStore(cfg.WeightStorePath)
		if err != nil {
			return nil, fmt.Errorf("opening weight store: %w", err)
		}
		entries, err := ws.Load(ctx)
		if err != nil {
			ws.Close()
			return nil, fmt.Errorf("loading persisted weights: %w", err)
		}
		weights.LoadSnapshot(wt, entries)
		e.weightStore = ws
		e.stopSave = make(chan struct{})
		go e.periodicSaveWeights()
	}

	lrn := learner.New(wt,
		learner.WithLogger(logger),
		learnerOptsFromConfig(cfg)...,
	)
	e.learner = lrn

	genr := generator.New(store, wt, lrn, generator.WithLogger(logger))
	e.genr = genr

	e.metrics = recovery.NewMetrics(10 * time.Millisecond)

	e.recover = recovery.New(recovery.Hooks{
		ReduceCacheSize:    func() {},
		ForceUltraFastOnly: func(v bool) { e.forcedUltraOnly.Store(v) },
		DisableLearner:     func(v bool) { lrn.SetDisabled(v) },
		DisableGenerator:   func(v bool) { genr.SetDisabled(v) },
		RelaxBudget:        func(v bool) { e.relaxedBudget.Store(v) },
		SetBypass:          func(v bool) { e.bypassed.Store(v) },
	}, recoveryMemTarget(cfg), logger)

	e.scan = scanner.New(store, wt,
		scanner.WithBypass(e.isBypassed),
		scanner.WithMetricsSink(e.metrics),
		scanner.WithTaskEnqueuer(taskEnqueuerAdapter{lrn}),
		scanner.WithTotalBudget(budgetFromConfig(cfg)),
	)

	pol, err := policy.New(ctx, policyDir)
	if err != nil {
		return nil, err
	}
	e.policy = pol

	e.metrics.Start(e.memoryEstimate, func(agg recovery.AggregateStats) {
		e.recover.CheckAggregate(agg, float64(budgetFromConfig(cfg).Microseconds()))
	})
	lrn.Start(ctx)

	return e, nil
}

func learnerOptsFromConfig(cfg *config.Config) []learner.Option {
	var opts []learner.Option
	if cfg.Learner.TasksPerTick > 0 {
		opts = append(opts, learner.WithTasksPerTick(cfg.Learner.TasksPerTick))
	}
	if cfg.Learner.SoftBudgetUs > 0 {
		opts = append(opts, learner.WithSoftBudget(time.Duration(cfg.Learner.SoftBudgetUs)*time.Microsecond))
	}
	return opts
}

func budgetFromConfig(cfg *config.Config) time.Duration {
	if cfg.Budgets.TotalUs > 0 {
		return time.Duration(cfg.Budgets.TotalUs) * time.Microsecond
	}
	return scanner.TotalBudget
}

func recoveryMemTarget(cfg *config.Config) int64 {
	if cfg.Recovery.MemTargetBytes > 0 {
		return cfg.Recovery.MemTargetBytes
	}
	return 0
}

// isBypassed is the Scanner's bypass predicate: either an explicit env
// flag (spec.md §6) or the Recovery Controller's "bypass temporarily"
// strategy.
func (e *Engine) isBypassed() bool {
	if e.bypassed.Load() {
		return true
	}
	if e.tunables != nil {
		if ok, _ := e.tunables.Bypassed(); ok {
			return true
		}
	}
	return false
}

// memoryEstimate approximates resident memory consumed by learned state,
// feeding the Recovery Controller's 80%-of-target trigger (spec.md §4.7).
// It is a rough accounting, not a precise allocator sample: counting every
// weight Entry and queued Task at a fixed per-item cost is cheap enough to
// run on every metrics tick and avoids pulling in a profiling dependency
// for a single gauge.
func (e *Engine) memoryEstimate() int64 {
	const bytesPerWeightEntry = 64
	const bytesPerQueuedTask = 96

	n := int64(len(e.weights.Snapshot())) * bytesPerWeightEntry
	stats := e.learner.Stats()
	for _, depth := range stats.QueueDepth {
		n += int64(depth) * bytesPerQueuedTask
	}
	return n
}

// degradeMode resolves the Scanner's per-call degrade mode from the
// Recovery Controller's currently-forced flags.
func (e *Engine) degradeMode() scanner.DegradeMode {
	if e.forcedUltraOnly.Load() {
		return scanner.DegradeUltraFastOnly
	}
	if e.relaxedBudget.Load() {
		return scanner.DegradeRelaxedBudget
	}
	return scanner.DegradeNone
}

// Analyze is the public invocation surface of spec.md §6:
// `analyze(mode, content) → Verdict`, additionally resolved against policy
// into a final Action (decision + exit code).
func (e *Engine) Analyze(ctx context.Context, mode Mode, content []byte) (Result, error) {
	maxBytes := e.cfg.MaxContentBytes
	if maxBytes <= 0 {
		maxBytes = 10 * 1024 * 1024
	}
	if int64(len(content)) > maxBytes {
		v := scanner.Verdict{Status: scanner.StatusError, Message: "content exceeds maximum size"}
		action, err := e.policy.Decide(ctx, v, e.cfg.WarnOnly)
		return Result{Verdict: v, Action: action}, err
	}

	v := e.scan.Analyze(string(content), e.degradeMode())
	action, err := e.policy.Decide(ctx, v, e.cfg.WarnOnly)
	if err != nil {
		return Result{Verdict: v}, err
	}
	return Result{Verdict: v, Action: action}, nil
}

// Decide resolves a previously computed Verdict (e.g. a verdict cache hit)
// against policy, without re-running the scanner tiers.
func (e *Engine) Decide(ctx context.Context, v scanner.Verdict) (policy.Action, error) {
	return e.policy.Decide(ctx, v, e.cfg.WarnOnly)
}

// Stats aggregates per-subsystem counters for `gate status`.
type Stats struct {
	Learner    learner.Stats
	Generator  generator.Stats
	Metrics    recovery.AggregateStats
	Mode       recovery.Mode
	Records    []recovery.Record
	PatternCnt int
}

func (e *Engine) Stats() Stats {
	return Stats{
		Learner:    e.learner.Stats(),
		Generator:  e.genr.Stats(),
		Metrics:    e.metrics.Aggregate(),
		Mode:       e.recover.Mode(),
		Records:    e.recover.Records(),
		PatternCnt: len(e.store.All()),
	}
}

// Store, Weights, and Generator expose the assembled subsystems for
// cmd/gate subcommands that need direct read access (explain, weights,
// feedback).
func (e *Engine) Store() *pattern.Store       { return e.store }
func (e *Engine) Weights() *weights.Table     { return e.weights }
func (e *Engine) Generator() *generator.Generator { return e.genr }
func (e *Engine) Recovery() *recovery.Controller  { return e.recover }

// Generate spans generator.Generate for cmd/gate callers (e.g. `gate
// feedback ... false_negative`), recording the synthesized candidate's
// category and severity as span attributes.
func (e *Engine) Generate(ctx context.Context, contextSample string, severityHint pattern.Severity) (*generator.Candidate, error) {
	_, span := generatorTracer.Start(ctx, "generator generate")
	defer span.End()

	cand, err := e.genr.Generate(contextSample, severityHint)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	span.SetAttributes(
		attribute.String("gate.category", string(cand.Category)),
		attribute.String("gate.severity", string(cand.Severity)),
	)
	return cand, nil
}

// DeriveRule spans generator.DeriveRule for the `gate derive` CLI surface.
func (e *Engine) DeriveRule(ctx context.Context, basePatternID string, strategy generator.Strategy, contextSample, path string, extraKeywords []string) (*generator.DerivedRule, error) {
	_, span := generatorTracer.Start(ctx, "generator derive_rule")
	defer span.End()
	span.SetAttributes(
		attribute.String("gate.base_pattern_id", basePatternID),
		attribute.String("gate.strategy", string(strategy)),
	)

	rule, err := e.genr.DeriveRule(basePatternID, strategy, contextSample, path, extraKeywords)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	return rule, nil
}

// AdaptFromFeedback spans generator.AdaptFromFeedback for the `gate
// feedback` CLI surface.
func (e *Engine) AdaptFromFeedback(ctx context.Context, patternID string, kind generator.FeedbackKind, payload string) bool {
	_, span := generatorTracer.Start(ctx, "generator adapt_from_feedback")
	defer span.End()
	span.SetAttributes(
		attribute.String("gate.pattern_id", patternID),
		attribute.String("gate.feedback_kind", string(kind)),
	)

	ok := e.genr.AdaptFromFeedback(patternID, kind, payload)
	if !ok {
		span.SetStatus(codes.Error, "adapt_from_feedback rejected")
	}
	return ok
}

// ResetRecovery exits stability/degraded mode explicitly (spec.md §4.7
// "persists until explicit reset").
func (e *Engine) ResetRecovery() { e.recover.Reset() }

// periodicSaveWeights flushes the Weight Table, any new Recovery Records,
// and the Generator's recent Candidate history to WeightStorePath every
// weightSaveInterval, so a long-running Engine (gate mcp, gate status
// --watch) doesn't lose learning, recovery history, or candidate audit
// trail to an ungraceful kill.
func (e *Engine) periodicSaveWeights() {
	ticker := time.NewTicker(weightSaveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			e.syncAuditState()
		case <-e.stopSave:
			return
		}
	}
}

// syncAuditState is the periodic/shutdown flush shared by
// periodicSaveWeights and Shutdown. Recovery Records have no opaque ID of
// their own, so only the slice tail appended since the last sync is sent;
// Candidates are upserted by ID and so safe to resend in full each tick.
func (e *Engine) syncAuditState() {
	ctx := context.Background()
	if err := e.weightStore.Save(ctx, e.weights.Snapshot()); err != nil {
		e.logger.Warn("weights: periodic save failed", "error", err)
	}

	records := e.recover.Records()
	if len(records) > e.syncedRecordCount {
		if err := e.weightStore.AppendRecoveryRecords(ctx, records[e.syncedRecordCount:]); err != nil {
			e.logger.Warn("recovery: periodic record sync failed", "error", err)
		} else {
			e.syncedRecordCount = len(records)
		}
	}

	if err := e.weightStore.AppendCandidates(ctx, e.genr.Recent()); err != nil {
		e.logger.Warn("generator: periodic candidate sync failed", "error", err)
	}
}

// Shutdown cancels background workers and drains their bounded queues;
// in-flight hot-path calls are unaffected since they never share a stack
// with these workers (spec.md §5 "Shared resources").
func (e *Engine) Shutdown() {
	e.learner.Stop()
	e.metrics.Stop()

	if e.weightStore != nil {
		close(e.stopSave)
		e.syncAuditState()
		e.weightStore.Close()
	}
}

// taskEnqueuerAdapter satisfies scanner.TaskEnqueuer by forwarding to a
// *learner.Learner, keeping the scanner package free of a direct import on
// internal/learner (spec.md §9 "Cyclic references").
type taskEnqueuerAdapter struct {
	l *learner.Learner
}

func (a taskEnqueuerAdapter) Enqueue(id string, sev pattern.Severity, confidence float64, latency time.Duration, tier pattern.Tier) {
	a.l.Enqueue(learner.Task{
		PatternID:  id,
		Severity:   sev,
		Confidence: confidence,
		Latency:    latency,
		Tier:       tier,
	})
}
