package learner

import (
	"time"

	"github.com/patterngate/gate/internal/pattern"
)

// Task is one deferred learning event produced on the hot path and
// consumed by the background worker (spec.md §3 "Learning Task").
type Task struct {
	PatternID  string
	Severity   pattern.Severity
	Confidence float64
	Latency    time.Duration
	Tier       pattern.Tier
}

// tierParams holds the per-tier constants from spec.md §4.5: queue
// capacity, the EWMA learning rate η, and the confidence floor below which
// a task is discarded without updating the weight.
type tierParams struct {
	capacity int
	eta      float64
	floor    float64
}

var params = [3]tierParams{
	pattern.TierUltraCritical: {capacity: 5, eta: 0.001, floor: 0.95},
	pattern.TierCriticalFast:  {capacity: 20, eta: 0.005, floor: 0.85},
	pattern.TierHighNormal:    {capacity: 50, eta: 0.01, floor: 0.70},
}
