package pattern

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync/atomic"
)

// snapshot is the immutable, tier-indexed view published by the Store. A
// new snapshot replaces the old one atomically: a scan in flight either
// sees the entire old set or the entire new one, never a partial mix
// (spec.md §5 "Ordering guarantees").
type snapshot struct {
	byTier [tierCount][]*Pattern
	byID   map[string]*Pattern
}

// Store is the read-only, thread-safe catalogue of patterns grouped by
// tier. Many goroutines call PatternsInTier concurrently; Publish performs
// a copy-on-write swap so readers never observe a torn update.
type Store struct {
	current atomic.Pointer[snapshot]
	nextSeq atomic.Int64

	// onSkip is invoked (off any hot path, only during Load/Publish) for
	// every pattern that failed to compile, so the caller can log it
	// without the pattern package importing a logger.
	onSkip func(*CompileError)
}

// New creates an empty Store. Call Load or Publish to populate it.
func New(onSkip func(*CompileError)) *Store {
	s := &Store{onSkip: onSkip}
	s.current.Store(&snapshot{byID: make(map[string]*Pattern)})
	return s
}

// Load parses and compiles every Def in doc, skipping (and reporting via
// onSkip) any that fail to compile, then atomically publishes the
// resulting set. A wholly malformed document was already rejected by
// ParseDocument before reaching here; Load's own failures are all
// per-pattern and non-fatal.
func (s *Store) Load(doc *Document) {
	snap := &snapshot{byID: make(map[string]*Pattern, len(doc.Patterns))}
	for i, def := range doc.Patterns {
		p, cerr := compile(def, i)
		if cerr != nil {
			if s.onSkip != nil {
				s.onSkip(cerr)
			}
			continue
		}
		snap.byID[p.ID] = p
		snap.byTier[p.Tier] = append(snap.byTier[p.Tier], p)
	}
	for t := range snap.byTier {
		sortStable(snap.byTier[Tier(t)])
	}
	s.current.Store(snap)
}

// LoadDir merges every *.yaml/*.yml document in dir into the store, in
// lexical filename order, later files overriding earlier ones by pattern
// ID. A missing directory is tolerated (spec.md §4.1 "tolerates missing
// files"); unreadable files are reported as ConfigErrors.
func (s *Store) LoadDir(dir string) error {
	if dir == "" {
		return nil
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return &ConfigError{Source: dir, Err: err}
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)

	merged := map[string]Def{}
	var docVersion string
	var latest Document
	for _, name := range names {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			return &ConfigError{Source: path, Err: err}
		}
		doc, err := ParseDocument(path, data)
		if err != nil {
			return err
		}
		docVersion = doc.Version
		latest = *doc
		for _, d := range doc.Patterns {
			merged[d.ID] = d
		}
	}
	if len(merged) == 0 {
		return nil
	}

	out := latest
	out.Version = docVersion
	out.Patterns = make([]Def, 0, len(merged))
	// Deterministic order: sort by ID so repeated loads are reproducible.
	ids := make([]string, 0, len(merged))
	for id := range merged {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		out.Patterns = append(out.Patterns, merged[id])
	}

	base := s.All()
	combined := make([]Def, 0, len(base)+len(out.Patterns))
	seen := make(map[string]bool, len(out.Patterns))
	for _, d := range out.Patterns {
		seen[d.ID] = true
	}
	for _, p := range base {
		if seen[p.ID] {
			continue
		}
		combined = append(combined, Def{
			ID: p.ID, Pattern: p.RawPattern, Severity: p.Severity,
			Category: p.Category, Message: p.Message, Explanation: p.Explanation,
			Tier: p.Tier.String(),
		})
	}
	combined = append(combined, out.Patterns...)
	out.Patterns = combined

	s.Load(&out)
	return nil
}

// PatternsInTier returns the ordered, stable slice of patterns assigned to
// tier. The returned slice must not be mutated by the caller; it is shared
// with other readers.
func (s *Store) PatternsInTier(t Tier) []*Pattern {
	if t < 0 || t >= tierCount {
		return nil
	}
	return s.current.Load().byTier[t]
}

// Get looks up a single pattern by ID, returning (pattern, true) if present
// in the current snapshot.
func (s *Store) Get(id string) (*Pattern, bool) {
	p, ok := s.current.Load().byID[id]
	return p, ok
}

// All returns every pattern currently published, in no particular order.
func (s *Store) All() []*Pattern {
	snap := s.current.Load()
	out := make([]*Pattern, 0, len(snap.byID))
	for _, p := range snap.byID {
		out = append(out, p)
	}
	return out
}

// Publish atomically adds (or replaces) a single validated pattern into
// tier, becoming visible to subsequent calls but never affecting calls
// already in flight. This is the publication path used by the Pattern
// Generator (internal/generator) once a Candidate passes validation.
func (s *Store) Publish(p *Pattern, t Tier) error {
	if p == nil || p.Compiled == nil {
		return fmt.Errorf("publish: pattern %q has no compiled matcher", safeID(p))
	}
	old := s.current.Load()
	next := &snapshot{byID: make(map[string]*Pattern, len(old.byID)+1)}
	for id, existing := range old.byID {
		if id == p.ID {
			continue
		}
		next.byID[id] = existing
	}
	p.Tier = t
	p.insertionOrder = int(s.nextSeq.Add(1))
	next.byID[p.ID] = p

	for tier := Tier(0); tier < tierCount; tier++ {
		for _, existing := range old.byTier[tier] {
			if existing.ID == p.ID {
				continue
			}
			next.byTier[tier] = append(next.byTier[tier], existing)
		}
	}
	next.byTier[t] = append(next.byTier[t], p)
	sortStable(next.byTier[t])

	s.current.Store(next)
	return nil
}

func safeID(p *Pattern) string {
	if p == nil {
		return "(nil)"
	}
	return p.ID
}

func sortStable(ps []*Pattern) {
	sort.SliceStable(ps, func(i, j int) bool {
		return ps[i].insertionOrder < ps[j].insertionOrder
	})
}
