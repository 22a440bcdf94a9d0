package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/patterngate/gate/internal/generator"
	"github.com/patterngate/gate/internal/recovery"
	"github.com/patterngate/gate/internal/weights"
)

// SQLiteWeightStore is the embedded gate.db: the Weight Table's learned
// entries (its original and still primary role, see Save/Load below),
// plus an audit log of Recovery Records and Generated Pattern Candidates,
// so both survive past a single `gate analyze` process and can be queried
// by time window (e.g. "3 recoveries in the last 60s") the way an
// in-memory-only ring buffer cannot once the process restarts. All three
// concerns share one SQLite file and one *sql.DB rather than three,
// following the teacher's own single-store-package convention.
type SQLiteWeightStore struct {
	db *sql.DB
}

// OpenSQLiteWeightStore opens (creating if necessary) a SQLite-backed
// weight store at path.
func OpenSQLiteWeightStore(path string) (*SQLiteWeightStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening weight store: %w", err)
	}
	const schema = `
CREATE TABLE IF NOT EXISTS weights (
	pattern_id TEXT PRIMARY KEY,
	weight     REAL NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS recovery_records (
	id        INTEGER PRIMARY KEY AUTOINCREMENT,
	trigger   TEXT NOT NULL,
	strategy  TEXT NOT NULL,
	success   INTEGER NOT NULL,
	timestamp INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS generated_candidates (
	id           TEXT PRIMARY KEY,
	regex_source TEXT NOT NULL,
	severity     TEXT NOT NULL,
	category     TEXT NOT NULL,
	confidence   REAL NOT NULL,
	created_at   INTEGER NOT NULL
);`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLiteWeightStore{db: db}, nil
}

func (s *SQLiteWeightStore) Close() error { return s.db.Close() }

// Save writes the given snapshot, replacing any existing row per pattern
// ID. Called on a timer and at shutdown by internal/gate, never on the hot
// path.
func (s *SQLiteWeightStore) Save(ctx context.Context, snapshot map[string]weights.Entry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO weights (pattern_id, weight, updated_at) VALUES (?, ?, ?)
ON CONFLICT(pattern_id) DO UPDATE SET weight = excluded.weight, updated_at = excluded.updated_at
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for id, e := range snapshot {
		if _, err := stmt.ExecContext(ctx, id, e.Weight, e.UpdatedAt.UnixNano()); err != nil {
			return fmt.Errorf("saving weight for %q: %w", id, err)
		}
	}
	return tx.Commit()
}

// Load reads every persisted weight entry, for seeding a fresh
// weights.Table at startup via weights.LoadSnapshot.
func (s *SQLiteWeightStore) Load(ctx context.Context) (map[string]weights.Entry, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT pattern_id, weight, updated_at FROM weights`)
	if err != nil {
		return nil, fmt.Errorf("reading weights: %w", err)
	}
	defer rows.Close()

	out := make(map[string]weights.Entry)
	for rows.Next() {
		var id string
		var w float64
		var ts int64
		if err := rows.Scan(&id, &w, &ts); err != nil {
			return nil, fmt.Errorf("scanning weight row: %w", err)
		}
		out[id] = weights.Entry{Weight: w, UpdatedAt: time.Unix(0, ts)}
	}
	return out, rows.Err()
}

// AppendRecoveryRecords inserts any Recovery Records not already known,
// keyed on (trigger, strategy, timestamp) since recovery.Record has no
// opaque ID of its own. Called on the same timer as the weight save, so
// it only ever appends records accumulated since the last tick.
func (s *SQLiteWeightStore) AppendRecoveryRecords(ctx context.Context, records []recovery.Record) error {
	if len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO recovery_records (trigger, strategy, success, timestamp) VALUES (?, ?, ?, ?)
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, r := range records {
		success := 0
		if r.Success {
			success = 1
		}
		if _, err := stmt.ExecContext(ctx, string(r.Trigger), string(r.Strategy), success, r.Timestamp.UnixNano()); err != nil {
			return fmt.Errorf("appending recovery record: %w", err)
		}
	}
	return tx.Commit()
}

// RecentRecoveryRecords returns the most recent recovery records, newest
// last, up to limit (0 means no limit) — the time-window query spec.md
// §4.7's "3 recoveries in 60s" stability trigger implies but that an
// in-memory-only ring buffer loses across a restart.
func (s *SQLiteWeightStore) RecentRecoveryRecords(ctx context.Context, limit int) ([]recovery.Record, error) {
	query := `SELECT trigger, strategy, success, timestamp FROM recovery_records ORDER BY id DESC`
	if limit > 0 {
		query += fmt.Sprintf(" LIMIT %d", limit)
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("reading recovery records: %w", err)
	}
	defer rows.Close()

	var out []recovery.Record
	for rows.Next() {
		var trigger, strategy string
		var success int
		var ts int64
		if err := rows.Scan(&trigger, &strategy, &success, &ts); err != nil {
			return nil, fmt.Errorf("scanning recovery record: %w", err)
		}
		out = append(out, recovery.Record{
			Trigger:   recovery.TriggerKind(trigger),
			Strategy:  recovery.Strategy(strategy),
			Success:   success != 0,
			Timestamp: time.Unix(0, ts),
		})
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, rows.Err()
}

// AppendCandidates upserts Generated Pattern Candidates by ID, so a
// repeated sync of the Generator's in-memory Recent() window is
// idempotent.
func (s *SQLiteWeightStore) AppendCandidates(ctx context.Context, candidates []*generator.Candidate) error {
	if len(candidates) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
INSERT INTO generated_candidates (id, regex_source, severity, category, confidence, created_at)
VALUES (?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	regex_source = excluded.regex_source,
	severity     = excluded.severity,
	category     = excluded.category,
	confidence   = excluded.confidence,
	created_at   = excluded.created_at
`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range candidates {
		if _, err := stmt.ExecContext(ctx, c.ID, c.RegexSource, string(c.Severity), string(c.Category), c.Classifier.Confidence, c.CreatedAt.UnixNano()); err != nil {
			return fmt.Errorf("appending candidate %q: %w", c.ID, err)
		}
	}
	return tx.Commit()
}
