package pattern

import _ "embed"

//go:embed default_patterns.yaml
var defaultPatternsYAML []byte

// DefaultDocument parses the built-in pattern set shipped with the binary.
// This is the fallback used when no configuration source resolves
// (spec.md §6 "tolerates missing files by falling back to a minimal
// built-in pattern set").
func DefaultDocument() (*Document, error) {
	return ParseDocument("embedded:default_patterns.yaml", defaultPatternsYAML)
}
