// Package weights implements the Weight Table: a lock-free-for-readers
// mapping from pattern ID to a learned confidence multiplier (spec.md
// §4.4). Exactly one writer — the Background Learner — ever calls
// ApplyUpdate; every other caller only reads.
package weights

import (
	"sync/atomic"
	"time"
)

// DefaultWeight is the starting multiplier for a pattern with no learned
// history yet.
const DefaultWeight = 1.0

// Entry is a single pattern's current learned weight.
type Entry struct {
	Weight    float64
	UpdatedAt time.Time
}

// table is the immutable snapshot readers observe. Table swaps its pointer
// to table atomically on every write, so a reader either sees the whole
// old map or the whole new one — never a torn value (spec.md §5 "Ordering
// guarantees").
type table map[string]Entry

// Table is the Weight Table. Reads are wait-free: a single atomic load
// followed by a plain map lookup, with no lock contention against the
// writer or other readers.
type Table struct {
	current atomic.Pointer[table]
}

// New creates an empty Weight Table; unseen pattern IDs read as
// DefaultWeight.
func New() *Table {
	t := &Table{}
	empty := make(table)
	t.current.Store(&empty)
	return t
}

// Get returns the current weight for id, or DefaultWeight if no learning
// task has ever updated it. This is the hot-path read: exactly one atomic
// load plus a map index, never blocking.
func (t *Table) Get(id string) float64 {
	m := *t.current.Load()
	if e, ok := m[id]; ok {
		return e.Weight
	}
	return DefaultWeight
}

// Snapshot returns a point-in-time copy of every learned entry, used by
// persistence (internal/store) and inspection (cmd/gate weights, explain).
func (t *Table) Snapshot() map[string]Entry {
	m := *t.current.Load()
	out := make(map[string]Entry, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// ApplyUpdate replaces id's entry only if ts is newer than the currently
// stored UpdatedAt, preserving the monotone-in-time invariant
// (spec.md §3 Weight Entry, §8 "Weight safety"). The caller (the
// Background Learner) is expected to clamp weight into [0, 1] before
// calling; ApplyUpdate clamps defensively regardless, since no reader may
// ever observe a weight outside that range.
func (t *Table) ApplyUpdate(id string, weight float64, ts time.Time) {
	if weight < 0 {
		weight = 0
	}
	if weight > 1 {
		weight = 1
	}
	for {
		old := t.current.Load()
		if existing, ok := (*old)[id]; ok && !ts.After(existing.UpdatedAt) {
			return
		}
		next := make(table, len(*old)+1)
		for k, v := range *old {
			next[k] = v
		}
		next[id] = Entry{Weight: weight, UpdatedAt: ts}
		if t.current.CompareAndSwap(old, &next) {
			return
		}
		// Another update raced us (single-writer discipline means this is
		// rare — e.g. a restore-from-snapshot racing the learner); retry.
	}
}

// LoadSnapshot seeds the table from a persisted snapshot (e.g. weights.v1,
// see internal/store), skipping unknown or malformed entries. Used only at
// startup, before the hot path begins serving calls.
func LoadSnapshot(t *Table, entries map[string]Entry) {
	m := make(table, len(entries))
	for id, e := range entries {
		w := e.Weight
		if w < 0 {
			w = 0
		}
		if w > 1 {
			w = 1
		}
		m[id] = Entry{Weight: w, UpdatedAt: e.UpdatedAt}
	}
	t.current.Store(&m)
}
