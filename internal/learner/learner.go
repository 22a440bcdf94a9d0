package learner

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patterngate/gate/internal/weights"
)

// TasksPerTick is the cooperative worker's default per-invocation budget
// (spec.md §4.5 "processes at most K tasks per invocation (default 3)").
const TasksPerTick = 3

// SoftBudget is the worker's soft time budget per invocation when
// co-scheduled with hot-path work.
const SoftBudget = 300 * time.Microsecond

// TickInterval is how often the background worker wakes to drain queued
// tasks when running as its own goroutine.
const TickInterval = 5 * time.Millisecond

// Learner is the Background Learner: a bounded per-tier queue plus a
// cooperative worker that turns observed matches into Weight Table updates
// without ever running on the hot path (spec.md §4.5).
type Learner struct {
	rings   [3]*ring
	weights *weights.Table
	logger  *slog.Logger

	tasksPerTick int
	softBudget   time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup

	processed  int64
	discarded  int64
	mu         sync.Mutex

	disabled atomic.Bool
}

// SetDisabled enables or disables task processing, driven by the Recovery
// Controller's Hooks.DisableLearner (spec.md §4.7 "fallback to basic
// patterns ... disable learning and generator"). Enqueue still accepts
// tasks while disabled — only tick's processing is skipped — so learning
// resumes from the current queue state on re-enable rather than losing
// everything observed while degraded.
func (l *Learner) SetDisabled(v bool) { l.disabled.Store(v) }

// Option configures a Learner.
type Option func(*Learner)

// WithTasksPerTick overrides the default per-tick processing cap.
func WithTasksPerTick(n int) Option {
	return func(l *Learner) { l.tasksPerTick = n }
}

// WithSoftBudget overrides the worker's soft per-invocation time budget.
func WithSoftBudget(d time.Duration) Option {
	return func(l *Learner) { l.softBudget = d }
}

// WithLogger sets the logger used for LearnerFailure-class diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Learner) { l.logger = logger }
}

// New creates a Learner writing into wt. Call Start to begin the
// background worker.
func New(wt *weights.Table, opts ...Option) *Learner {
	l := &Learner{
		weights:      wt,
		logger:       slog.Default(),
		tasksPerTick: TasksPerTick,
		softBudget:   SoftBudget,
	}
	for t := range l.rings {
		l.rings[t] = newRing(params[t].capacity)
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Enqueue is called from the hot path. It performs a bounded-time,
// amortized O(1) insertion into the task's tier ring, evicting the oldest
// queued task on overflow. It never blocks on the background worker.
func (l *Learner) Enqueue(t Task) {
	if t.Tier < 0 || int(t.Tier) >= len(l.rings) {
		return
	}
	l.rings[t.Tier].push(t)
}

// Start launches the cooperative background worker on its own goroutine.
// It ticks every TickInterval, draining up to tasksPerTick tasks (across
// all tiers, highest tier first) per tick, never exceeding softBudget of
// wall-clock work in a single tick.
func (l *Learner) Start(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	l.cancel = cancel
	l.wg.Add(1)
	go l.run(ctx)
}

func (l *Learner) run(ctx context.Context) {
	defer l.wg.Done()
	ticker := time.NewTicker(TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			l.drainAll()
			return
		case <-ticker.C:
			l.tick()
		}
	}
}

// tick processes at most tasksPerTick tasks, stopping early if softBudget
// is exceeded even mid-batch — a slow update must never accumulate into
// the next hot-path call's latency.
func (l *Learner) tick() {
	if l.disabled.Load() {
		return
	}
	start := time.Now()
	processed := 0
	for tier := 0; tier < len(l.rings) && processed < l.tasksPerTick; tier++ {
		remaining := l.tasksPerTick - processed
		tasks := l.rings[tier].popUpTo(remaining)
		for _, t := range tasks {
			if time.Since(start) >= l.softBudget {
				return
			}
			l.apply(t)
			processed++
		}
	}
}

// apply computes the EWMA-smoothed weight update for a single task and
// writes it via the Weight Table, discarding tasks below the tier's
// confidence floor (spec.md §4.5 "Update rule").
func (l *Learner) apply(t Task) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Warn("learner: task panicked, discarding", "pattern_id", t.PatternID, "recover", r)
			l.mu.Lock()
			l.discarded++
			l.mu.Unlock()
		}
	}()

	p := params[t.Tier]
	if t.Confidence < p.floor {
		l.mu.Lock()
		l.discarded++
		l.mu.Unlock()
		return
	}

	current := l.weights.Get(t.PatternID)
	newWeight := (1-p.eta)*current + p.eta*t.Confidence
	l.weights.ApplyUpdate(t.PatternID, newWeight, time.Now())

	l.mu.Lock()
	l.processed++
	l.mu.Unlock()
}

// drainAll discards every pending task across all tiers. Called on
// shutdown: the hot path must remain correct with the learner disabled, so
// queued-but-unprocessed tasks are simply dropped rather than blocking
// shutdown.
func (l *Learner) drainAll() {
	for _, r := range l.rings {
		r.drain()
	}
}

// Stop cancels the background worker and waits for it to exit, draining
// any remaining queued tasks.
func (l *Learner) Stop() {
	if l.cancel != nil {
		l.cancel()
	}
	l.wg.Wait()
}

// Stats reports queue depths and processing counters for cmd/gate status.
type Stats struct {
	QueueDepth [3]int
	Dropped    [3]int64
	Processed  int64
	Discarded  int64
}

func (l *Learner) Stats() Stats {
	var s Stats
	for t, r := range l.rings {
		s.QueueDepth[t] = r.len()
		s.Dropped[t] = r.droppedCount()
	}
	l.mu.Lock()
	s.Processed = l.processed
	s.Discarded = l.discarded
	l.mu.Unlock()
	return s
}
