package recovery

import (
	"log/slog"
	"sync"
	"time"
)

// TriggerKind identifies what provoked a recovery activation
// (spec.md §4.7 "Triggered by").
type TriggerKind string

const (
	TriggerMemoryOverflow    TriggerKind = "memory_overflow"
	TriggerTimeoutViolation  TriggerKind = "timeout_violation"
	TriggerCompileFailure    TriggerKind = "compile_failure"
	TriggerHookFailure       TriggerKind = "hook_failure"
	TriggerErrorRateExceeded TriggerKind = "error_rate_exceeded"
)

// Strategy is one of the controller's degradation responses
// (spec.md §4.7 "Strategies").
type Strategy string

const (
	StrategyReduceCache       Strategy = "reduce_cache_size"
	StrategyUltraFastOnly     Strategy = "force_ultra_fast_only"
	StrategyFallbackBasic     Strategy = "fallback_to_basic_patterns"
	StrategyBypassTemporarily Strategy = "bypass_temporarily"
)

// Record is one recovery activation, retained for diagnostics
// (spec.md §3 "Recovery Record").
type Record struct {
	Trigger   TriggerKind
	Strategy  Strategy
	Success   bool
	Timestamp time.Time
}

// activationWindow is the sliding window over which repeated recoveries
// are counted toward stability mode (spec.md §4.7, §8 "Recovery
// convergence").
const activationWindow = 60 * time.Second

// stabilityThreshold is N in "after N (default 3) recoveries".
const stabilityThreshold = 3

// Mode reports the controller's current operating mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeDegraded
	ModeStability
)

func (m Mode) String() string {
	switch m {
	case ModeDegraded:
		return "DEGRADED"
	case ModeStability:
		return "STABILITY"
	default:
		return "NORMAL"
	}
}

// Hooks lets the controller actually apply a strategy without importing
// the scanner/learner/generator packages directly, avoiding an import
// cycle back into internal/gate, which wires all of them together.
type Hooks struct {
	ReduceCacheSize   func()
	ForceUltraFastOnly func(bool)
	DisableLearner    func(bool)
	DisableGenerator  func(bool)
	RelaxBudget       func(bool)
	SetBypass         func(bool)
}

// Controller is the Error-Recovery Controller. It is driven by Metrics
// ticks (latency/memory) and by explicit Trigger calls from any subsystem
// that detects a fault (e.g. a PublishConflict or a MatcherFailure storm).
type Controller struct {
	mu         sync.Mutex
	records    []Record
	mode       Mode
	logger     *slog.Logger
	hooks      Hooks
	memTargetBytes int64
}

// New creates a Controller. memTargetBytes is the §4.7 "50 MB target"
// (overridable for tests).
func New(hooks Hooks, memTargetBytes int64, logger *slog.Logger) *Controller {
	if memTargetBytes <= 0 {
		memTargetBytes = 50 * 1024 * 1024
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{hooks: hooks, memTargetBytes: memTargetBytes, logger: logger}
}

// Mode returns the controller's current operating mode.
func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Records returns a copy of every retained recovery record.
func (c *Controller) Records() []Record {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Record, len(c.records))
	copy(out, c.records)
	return out
}

// Trigger activates a recovery strategy for the given kind. It chooses a
// strategy, applies it via Hooks, appends a Record, and — after
// stabilityThreshold activations within activationWindow — engages
// stability mode (learner and generator off, budgets relaxed, caches
// cleared), which persists until Reset is called explicitly
// (spec.md §8 "Recovery convergence": "no further feature re-enablement
// occurs automatically").
func (c *Controller) Trigger(kind TriggerKind) Record {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.mode == ModeStability {
		// Stability mode persists until explicit Reset; further triggers
		// are recorded but do not change strategy.
		rec := Record{Trigger: kind, Strategy: StrategyFallbackBasic, Success: true, Timestamp: time.Now()}
		c.records = append(c.records, rec)
		return rec
	}

	strategy := strategyFor(kind)
	c.apply(strategy)

	rec := Record{Trigger: kind, Strategy: strategy, Success: true, Timestamp: time.Now()}
	c.records = append(c.records, rec)
	c.mode = ModeDegraded

	if c.countRecent(time.Now()) >= stabilityThreshold {
		c.engageStability()
	}
	return rec
}

func strategyFor(kind TriggerKind) Strategy {
	switch kind {
	case TriggerMemoryOverflow:
		return StrategyReduceCache
	case TriggerTimeoutViolation:
		return StrategyUltraFastOnly
	case TriggerCompileFailure:
		return StrategyFallbackBasic
	case TriggerHookFailure:
		return StrategyBypassTemporarily
	case TriggerErrorRateExceeded:
		return StrategyFallbackBasic
	default:
		return StrategyFallbackBasic
	}
}

// countRecent returns the number of records within activationWindow of now.
// Caller must hold c.mu.
func (c *Controller) countRecent(now time.Time) int {
	n := 0
	for _, r := range c.records {
		if now.Sub(r.Timestamp) <= activationWindow {
			n++
		}
	}
	return n
}

// apply invokes the Hooks for strategy. Caller must hold c.mu.
func (c *Controller) apply(s Strategy) {
	switch s {
	case StrategyReduceCache:
		if c.hooks.ReduceCacheSize != nil {
			c.hooks.ReduceCacheSize()
		}
	case StrategyUltraFastOnly:
		if c.hooks.ForceUltraFastOnly != nil {
			c.hooks.ForceUltraFastOnly(true)
		}
	case StrategyFallbackBasic:
		if c.hooks.DisableLearner != nil {
			c.hooks.DisableLearner(true)
		}
		if c.hooks.DisableGenerator != nil {
			c.hooks.DisableGenerator(true)
		}
	case StrategyBypassTemporarily:
		if c.hooks.SetBypass != nil {
			c.hooks.SetBypass(true)
		}
	}
	c.logger.Warn("recovery: strategy applied", "strategy", s)
}

// engageStability enters stability mode: learner and generator off,
// budgets relaxed, caches cleared. Caller must hold c.mu.
func (c *Controller) engageStability() {
	c.mode = ModeStability
	if c.hooks.DisableLearner != nil {
		c.hooks.DisableLearner(true)
	}
	if c.hooks.DisableGenerator != nil {
		c.hooks.DisableGenerator(true)
	}
	if c.hooks.RelaxBudget != nil {
		c.hooks.RelaxBudget(true)
	}
	if c.hooks.ReduceCacheSize != nil {
		c.hooks.ReduceCacheSize()
	}
	c.logger.Warn("recovery: stability mode engaged", "recent_activations", c.countRecent(time.Now()))
}

// Reset exits stability/degraded mode and re-enables features. This is the
// only path back to ModeNormal — stability mode never clears itself
// (spec.md §8 "persists until explicit reset").
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.mode = ModeNormal
	c.records = nil
	if c.hooks.DisableLearner != nil {
		c.hooks.DisableLearner(false)
	}
	if c.hooks.DisableGenerator != nil {
		c.hooks.DisableGenerator(false)
	}
	if c.hooks.ForceUltraFastOnly != nil {
		c.hooks.ForceUltraFastOnly(false)
	}
	if c.hooks.RelaxBudget != nil {
		c.hooks.RelaxBudget(false)
	}
	if c.hooks.SetBypass != nil {
		c.hooks.SetBypass(false)
	}
	c.logger.Info("recovery: reset to normal mode")
}

// CheckAggregate inspects rolling aggregates for the adaptive-optimization
// triggers of spec.md §4.7 ("memory estimate exceeds 80% of the 50 MB
// target, or ... recent latency exceeds 1.5x the hot-path budget") and
// fires a Trigger if either holds.
func (c *Controller) CheckAggregate(agg AggregateStats, hotPathBudgetUs float64) {
	if float64(agg.MemoryEstimateBytes) > 0.8*float64(c.memTargetBytes) {
		c.Trigger(TriggerMemoryOverflow)
		return
	}
	if agg.P95LatencyUs > 1.5*hotPathBudgetUs {
		c.Trigger(TriggerTimeoutViolation)
	}
}
