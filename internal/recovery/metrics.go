// Package recovery implements Metrics & Recovery: rolling counters,
// per-tier latency observation, a memory estimator, and the
// Error-Recovery Controller that degrades features when budgets are
// violated (spec.md §4.7).
package recovery

import (
	"sort"
	"sync"
	"time"

	"github.com/patterngate/gate/internal/scanner"
)

// ringCapacity bounds the Metrics ring buffer (spec.md §3 "Metrics Sample
// ... Ring-buffer bounded").
const ringCapacity = 4096

// Metrics is a bounded ring buffer of scanner.Sample observations plus the
// rolling aggregates computed from it on a fixed cadence.
type Metrics struct {
	mu      sync.Mutex
	buf     []scanner.Sample
	next    int
	filled  bool
	cadence time.Duration

	aggMu sync.RWMutex
	agg   AggregateStats

	stopCh chan struct{}
	doneCh chan struct{}
}

// AggregateStats mirrors the teacher's metrics.AggregateStats shape,
// generalized from LLM-analysis timings to pattern-match timings.
type AggregateStats struct {
	TotalCalls    int64
	TotalErrors   int64
	TotalMatches  int64
	TotalTimeouts int64

	AvgLatencyUs float64
	P50LatencyUs float64
	P95LatencyUs float64
	P99LatencyUs float64
	MaxLatencyUs float64

	MatchRate float64
	ErrorRate float64

	MemoryEstimateBytes int64
}

// NewMetrics creates a Metrics buffer that recomputes aggregates every
// cadence (spec.md §4.7: "updated on a fixed cadence (~10 ms)").
func NewMetrics(cadence time.Duration) *Metrics {
	if cadence <= 0 {
		cadence = 10 * time.Millisecond
	}
	return &Metrics{
		buf:     make([]scanner.Sample, ringCapacity),
		cadence: cadence,
	}
}

// RecordSample implements scanner.MetricsSink. It is called inline on the
// hot path, so it must only ever take a short mutex and append — no
// recomputation happens here.
func (m *Metrics) RecordSample(s scanner.Sample) {
	m.mu.Lock()
	m.buf[m.next] = s
	m.next = (m.next + 1) % len(m.buf)
	if m.next == 0 {
		m.filled = true
	}
	m.mu.Unlock()
}

// snapshotSamples copies every currently-held sample out of the ring.
func (m *Metrics) snapshotSamples() []scanner.Sample {
	m.mu.Lock()
	defer m.mu.Unlock()

	n := m.next
	if m.filled {
		n = len(m.buf)
	}
	out := make([]scanner.Sample, n)
	if !m.filled {
		copy(out, m.buf[:m.next])
		return out
	}
	copy(out, m.buf[m.next:])
	copy(out[len(m.buf)-m.next:], m.buf[:m.next])
	return out
}

// Recompute recalculates the rolling aggregates from the current ring
// contents. Call this on a ticker (Start) or synchronously in tests.
func (m *Metrics) Recompute(memEstimate int64) AggregateStats {
	samples := m.snapshotSamples()
	var agg AggregateStats
	agg.MemoryEstimateBytes = memEstimate

	if len(samples) == 0 {
		m.aggMu.Lock()
		m.agg = agg
		m.aggMu.Unlock()
		return agg
	}

	latencies := make([]float64, len(samples))
	var sum, max float64
	var errs, matches, timeouts int64
	for i, s := range samples {
		us := float64(s.Latency.Microseconds())
		latencies[i] = us
		sum += us
		if us > max {
			max = us
		}
		if s.Error {
			errs++
		}
		if s.MatchedID != "" {
			matches++
		}
		if s.TimedOut {
			timeouts++
		}
	}
	sort.Float64s(latencies)

	agg.TotalCalls = int64(len(samples))
	agg.TotalErrors = errs
	agg.TotalMatches = matches
	agg.TotalTimeouts = timeouts
	agg.AvgLatencyUs = sum / float64(len(samples))
	agg.MaxLatencyUs = max
	agg.P50LatencyUs = percentile(latencies, 0.50)
	agg.P95LatencyUs = percentile(latencies, 0.95)
	agg.P99LatencyUs = percentile(latencies, 0.99)
	agg.MatchRate = float64(matches) / float64(len(samples))
	agg.ErrorRate = float64(errs) / float64(len(samples))

	m.aggMu.Lock()
	m.agg = agg
	m.aggMu.Unlock()
	return agg
}

func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	idx := int(p * float64(len(sorted)-1))
	return sorted[idx]
}

// Aggregate returns the most recently computed aggregates.
func (m *Metrics) Aggregate() AggregateStats {
	m.aggMu.RLock()
	defer m.aggMu.RUnlock()
	return m.agg
}

// Start launches a ticker goroutine that recomputes aggregates every
// cadence and feeds them to onTick (typically the Recovery Controller, to
// check its latency/memory triggers).
func (m *Metrics) Start(memEstimate func() int64, onTick func(AggregateStats)) {
	m.stopCh = make(chan struct{})
	m.doneCh = make(chan struct{})
	go func() {
		defer close(m.doneCh)
		ticker := time.NewTicker(m.cadence)
		defer ticker.Stop()
		for {
			select {
			case <-m.stopCh:
				return
			case <-ticker.C:
				mem := int64(0)
				if memEstimate != nil {
					mem = memEstimate()
				}
				agg := m.Recompute(mem)
				if onTick != nil {
					onTick(agg)
				}
			}
		}
	}()
}

// Stop halts the aggregation ticker.
func (m *Metrics) Stop() {
	if m.stopCh == nil {
		return
	}
	close(m.stopCh)
	<-m.doneCh
}
