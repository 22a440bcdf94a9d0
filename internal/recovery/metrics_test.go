package recovery

import (
	"testing"
	"time"

	"github.com/patterngate/gate/internal/scanner"
)

func TestMetrics_RecomputeComputesAggregates(t *testing.T) {
	m := NewMetrics(time.Millisecond)

	m.RecordSample(scanner.Sample{Latency: 100 * time.Microsecond, MatchedID: "p1"})
	m.RecordSample(scanner.Sample{Latency: 200 * time.Microsecond})
	m.RecordSample(scanner.Sample{Latency: 300 * time.Microsecond, Error: true})
	m.RecordSample(scanner.Sample{Latency: 50 * time.Microsecond, TimedOut: true})

	agg := m.Recompute(1024)

	if agg.TotalCalls != 4 {
		t.Errorf("expected 4 calls, got %d", agg.TotalCalls)
	}
	if agg.TotalMatches != 1 {
		t.Errorf("expected 1 match, got %d", agg.TotalMatches)
	}
	if agg.TotalErrors != 1 {
		t.Errorf("expected 1 error, got %d", agg.TotalErrors)
	}
	if agg.TotalTimeouts != 1 {
		t.Errorf("expected 1 timeout, got %d", agg.TotalTimeouts)
	}
	if agg.MaxLatencyUs != 300 {
		t.Errorf("expected max latency 300us, got %v", agg.MaxLatencyUs)
	}
	if agg.MemoryEstimateBytes != 1024 {
		t.Errorf("expected memory estimate to pass through, got %d", agg.MemoryEstimateBytes)
	}
}

func TestMetrics_RecomputeWithNoSamplesIsZeroValue(t *testing.T) {
	m := NewMetrics(time.Millisecond)
	agg := m.Recompute(0)
	if agg.TotalCalls != 0 {
		t.Errorf("expected 0 calls, got %d", agg.TotalCalls)
	}
}

func TestMetrics_RingBufferWrapsWithoutLosingRecentSamples(t *testing.T) {
	m := NewMetrics(time.Millisecond)
	for i := 0; i < ringCapacity+10; i++ {
		m.RecordSample(scanner.Sample{Latency: time.Duration(i) * time.Microsecond})
	}
	samples := m.snapshotSamples()
	if len(samples) != ringCapacity {
		t.Errorf("expected ring to cap at %d samples, got %d", ringCapacity, len(samples))
	}
	// The most recent sample (i = ringCapacity+9) must still be present.
	found := false
	for _, s := range samples {
		if s.Latency == time.Duration(ringCapacity+9)*time.Microsecond {
			found = true
		}
	}
	if !found {
		t.Error("expected the most recent sample to survive the wraparound")
	}
}

func TestMetrics_StartAndStop(t *testing.T) {
	m := NewMetrics(time.Millisecond)
	ticks := make(chan AggregateStats, 4)
	m.Start(func() int64 { return 0 }, func(agg AggregateStats) {
		select {
		case ticks <- agg:
		default:
		}
	})
	m.RecordSample(scanner.Sample{Latency: time.Microsecond})

	select {
	case <-ticks:
	case <-time.After(time.Second):
		t.Fatal("expected at least one aggregation tick within 1s")
	}
	m.Stop()
}
