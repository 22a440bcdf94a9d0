package scanner

import (
	"time"

	"github.com/patterngate/gate/internal/pattern"
)

// Sample is one hot-path observation, handed to an optional MetricsSink on
// every call (spec.md §3 "Metrics Sample", §4.7).
type Sample struct {
	Timestamp time.Time
	Latency   time.Duration
	TierReached pattern.Tier
	MatchedID string // empty if no match
	Error     bool
	TimedOut  bool
}

// MetricsSink receives one Sample per Analyze call. Implementations must
// return quickly — RecordSample runs inline on the hot path, immediately
// before Analyze returns.
type MetricsSink interface {
	RecordSample(Sample)
}

// TaskEnqueuer receives Learning Tasks produced by matches that cross a
// severity threshold. Implementations must enqueue in bounded time (see
// internal/learner.Learner.Enqueue).
type TaskEnqueuer interface {
	Enqueue(id string, sev pattern.Severity, confidence float64, latency time.Duration, tier pattern.Tier)
}
