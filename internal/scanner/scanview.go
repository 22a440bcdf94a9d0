package scanner

import "strings"

// ScanViewThreshold is the input length past which a derived scan view is
// built instead of scanning the raw input in full (spec.md §4.3 "Size
// optimization").
const ScanViewThreshold = 1000

// windowRadius is how many characters of context are kept around each
// keyword occurrence in the derived view.
const windowRadius = 200

// edgeSpan is how many characters from the start and end of the input are
// always kept, regardless of keyword hits.
const edgeSpan = 256

// Keywords is the centralized, versioned set of literal anchors used to
// build a size-bounded scan view. Centralizing this list resolves the
// duplication the spec's Design Notes (§9) call out: "the exact keyword
// set used for the size-bounded scan view is partially duplicated."
// Patterns whose selectivity does not depend on one of these keywords must
// not rely on the scan view and should instead be excluded from it (see
// keywordAnchored in scanner.go, which substring-matches a Pattern's
// RawPattern against this list to route around the optimization for such
// patterns).
var Keywords = []string{
	"password", "secret", "key", "token", "credential",
	"rm -rf", "sudo", "eval", "curl", "wget", "dd ",
	"DROP ", "DELETE ", "private key",
}

// BuildScanView returns a derived, size-bounded view of input: the first
// and last edgeSpan characters, plus a windowRadius-character neighborhood
// around every occurrence of a Keywords entry, with overlapping/adjacent
// spans merged. It preserves every substring that could match a
// keyword-anchored pattern; patterns without such an anchor must scan the
// full input instead (the Scanner decides this per-pattern, see
// tier.go).
func BuildScanView(input string) string {
	if len(input) <= ScanViewThreshold {
		return input
	}

	type span struct{ lo, hi int }
	spans := []span{}

	if edgeSpan < len(input) {
		spans = append(spans, span{0, edgeSpan})
		spans = append(spans, span{len(input) - edgeSpan, len(input)})
	} else {
		return input
	}

	lower := strings.ToLower(input)
	for _, kw := range Keywords {
		needle := strings.ToLower(kw)
		start := 0
		for {
			idx := strings.Index(lower[start:], needle)
			if idx < 0 {
				break
			}
			pos := start + idx
			lo := pos - windowRadius
			if lo < 0 {
				lo = 0
			}
			hi := pos + len(needle) + windowRadius
			if hi > len(input) {
				hi = len(input)
			}
			spans = append(spans, span{lo, hi})
			start = pos + len(needle)
			if start >= len(lower) {
				break
			}
		}
	}

	// Sort and merge overlapping/adjacent spans.
	for i := 0; i < len(spans); i++ {
		for j := i + 1; j < len(spans); j++ {
			if spans[j].lo < spans[i].lo {
				spans[i], spans[j] = spans[j], spans[i]
			}
		}
	}
	merged := spans[:0]
	for _, s := range spans {
		if len(merged) > 0 && s.lo <= merged[len(merged)-1].hi {
			if s.hi > merged[len(merged)-1].hi {
				merged[len(merged)-1].hi = s.hi
			}
			continue
		}
		merged = append(merged, s)
	}

	var b strings.Builder
	b.Grow(edgeSpan * 2)
	for _, s := range merged {
		b.WriteString(input[s.lo:s.hi])
		b.WriteByte('\n')
	}
	return b.String()
}
