// Package store archives a scan's SARIF log alongside the policy decision
// it produced, for `gate analyze`'s optional on-disk history (separate
// from the in-memory gate.Engine verdict cache in internal/cache, which
// trades archival for speed on repeat scans of the same content).
package store

import (
	"context"

	"github.com/patterngate/gate/internal/sarif"
)

// Record is the policy outcome archived alongside a SARIF log.
type Record struct {
	Decision  string                 `json:"decision"`
	ExitCode  int                    `json:"exit_code"`
	Reason    string                 `json:"reason"`
	PatternID string                 `json:"pattern_id,omitempty"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Store persists SARIF logs and their policy Records, keyed by an
// opaque ID returned from WriteSARIF.
type Store interface {
	WriteSARIF(ctx context.Context, doc *sarif.Log) (string, error)
	WriteRecord(ctx context.Context, sarifID string, record *Record) error
	ReadSARIF(ctx context.Context, id string) (*sarif.Log, error)
	ReadRecord(ctx context.Context, sarifID string) (*Record, error)
	List(ctx context.Context) ([]string, error)
}
