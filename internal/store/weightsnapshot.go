package store

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/patterngate/gate/internal/weights"
)

// weightSnapshotVersion is the on-disk format tag for ExportWeightsJSON /
// ImportWeightsJSON, distinct from the SQLite `weights` table schema so the
// two persistence paths (continuous SQLite, one-shot JSON export) can
// evolve independently.
const weightSnapshotVersion = "weights.v1"

// weightSnapshotEntry is the JSON-safe mirror of weights.Entry; time.Time
// round-trips through encoding/json fine, but a named field keeps the
// on-disk shape stable even if weights.Entry ever gains fields.
type weightSnapshotEntry struct {
	Weight    float64   `json:"weight"`
	UpdatedAt time.Time `json:"updated_at"`
}

type weightSnapshotFile struct {
	Version    string                         `json:"version"`
	ExportedAt time.Time                      `json:"exported_at"`
	Entries    map[string]weightSnapshotEntry `json:"entries"`
}

// ExportWeightsJSON writes snapshot to path as a weights.v1 document,
// using the same tmp-file-then-rename atomicity as FileStore's SARIF/record
// writes (`gate weights export`).
func ExportWeightsJSON(path string, snapshot map[string]weights.Entry, now time.Time) error {
	out := weightSnapshotFile{
		Version:    weightSnapshotVersion,
		ExportedAt: now,
		Entries:    make(map[string]weightSnapshotEntry, len(snapshot)),
	}
	for id, e := range snapshot {
		out.Entries[id] = weightSnapshotEntry{Weight: e.Weight, UpdatedAt: e.UpdatedAt}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling weight snapshot: %w", err)
	}
	return atomicWriteFile(path, data, 0644)
}

// ImportWeightsJSON reads a weights.v1 document written by
// ExportWeightsJSON (`gate weights import`). It rejects documents tagged
// with an unrecognized version rather than silently reinterpreting them.
func ImportWeightsJSON(path string) (map[string]weights.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var in weightSnapshotFile
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("parsing weight snapshot: %w", err)
	}
	if in.Version != weightSnapshotVersion {
		return nil, fmt.Errorf("unsupported weight snapshot version %q (want %q)", in.Version, weightSnapshotVersion)
	}

	out := make(map[string]weights.Entry, len(in.Entries))
	for id, e := range in.Entries {
		out[id] = weights.Entry{Weight: e.Weight, UpdatedAt: e.UpdatedAt}
	}
	return out, nil
}
