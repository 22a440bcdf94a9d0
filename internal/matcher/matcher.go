// Package matcher implements the Ultra-Fast Matcher: the ULTRA_CRITICAL
// sweep that must answer "does this input match any pinned high-danger
// pattern" in at most 0.1ms with no I/O (spec.md §4.2).
package matcher

import (
	"sort"
	"time"

	"github.com/patterngate/gate/internal/pattern"
)

// Budget is the ULTRA_CRITICAL tier's per-call time allowance.
const Budget = 100 * time.Microsecond

// Hit is the result of a successful ULTRA_CRITICAL match.
type Hit struct {
	PatternID string
	Message   string
	Severity  pattern.Severity
}

// Matcher holds a fixed, pre-ordered slice of ULTRA_CRITICAL patterns
// acquired once at startup. It never allocates beyond the small Hit value
// it returns, never touches disk, and never reorders itself at call time.
type Matcher struct {
	ordered []*pattern.Pattern
}

// New builds a Matcher from the patterns currently assigned to
// TierUltraCritical in store, ordering them by selectivity (anchored
// patterns and longer literal prefixes first) so the common case — no
// match — exits after the cheapest checks.
func New(store *pattern.Store) *Matcher {
	ps := append([]*pattern.Pattern(nil), store.PatternsInTier(pattern.TierUltraCritical)...)
	sort.SliceStable(ps, func(i, j int) bool {
		return selectivity(ps[i]) > selectivity(ps[j])
	})
	return &Matcher{ordered: ps}
}

// selectivity scores a pattern for sweep ordering: anchored patterns sort
// first, then by literal-prefix length (a longer required prefix rejects
// non-matching input faster via the regexp engine's own prefix check).
func selectivity(p *pattern.Pattern) int {
	score := 0
	if p.Compiled != nil {
		prefix, complete := p.Compiled.LiteralPrefix()
		score += len(prefix) * 10
		if complete {
			score += 1000
		}
	}
	src := p.RawPattern
	if len(src) > 0 && (src[0] == '^' || src[:min(2, len(src))] == "(?") {
		score += 5
	}
	return score
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// Match sweeps the ordered pattern list against input, stopping at the
// first hit. It enforces Budget by elapsed-time sampling rather than
// preemption: if the sweep cannot complete within Budget it returns
// ok=false rather than an error, and the caller (the Tiered Scanner)
// proceeds to the next tier only if the total call budget allows
// (spec.md §4.2 "Numeric semantics").
func (m *Matcher) Match(input string) (Hit, bool) {
	start := time.Now()
	for _, p := range m.ordered {
		if time.Since(start) >= Budget {
			return Hit{}, false
		}
		if p.Match(input) {
			return Hit{PatternID: p.ID, Message: p.Message, Severity: p.Severity}, true
		}
	}
	return Hit{}, false
}

// Len reports how many patterns the matcher currently sweeps.
func (m *Matcher) Len() int { return len(m.ordered) }
