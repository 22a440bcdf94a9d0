package pattern

import (
	"fmt"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Def is the on-disk (YAML) representation of a single pattern, grouped by
// severity/category in a Document. It mirrors the shape of the teacher's
// rules.Rule but adds the Tier override and drops language-specific fields
// this domain doesn't need.
type Def struct {
	ID          string   `yaml:"id"`
	Pattern     string   `yaml:"pattern"`
	Severity    Severity `yaml:"severity"`
	Category    Category `yaml:"category,omitempty"`
	Message     string   `yaml:"message"`
	Explanation string   `yaml:"explanation,omitempty"`
	// Tier optionally pins the pattern to a tier; empty means the Tier
	// Registry's assignment policy (see AssignTier) decides.
	Tier string `yaml:"tier,omitempty"`
}

// Document is a single structured configuration document: a version field,
// an updated-at timestamp, and the pattern definitions themselves
// (spec.md §6 "Configuration").
type Document struct {
	Version   string    `yaml:"version"`
	UpdatedAt time.Time `yaml:"updated_at"`
	Patterns  []Def     `yaml:"patterns"`
}

// ParseDocument unmarshals a YAML pattern document. A malformed document is
// a ConfigError; this is the only fatal-at-startup failure mode in the
// pattern package — a single bad pattern within an otherwise valid document
// is reported separately and skipped by Load.
func ParseDocument(source string, data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ConfigError{Source: source, Err: err}
	}
	if doc.Version == "" {
		return nil, &ConfigError{Source: source, Err: fmt.Errorf("missing required field: version")}
	}
	return &doc, nil
}

// compile validates and compiles a single Def, returning a *CompileError
// (never fatal) on a bad regex or missing required field.
func compile(d Def, order int) (*Pattern, *CompileError) {
	if d.ID == "" {
		return nil, &CompileError{PatternID: "(unnamed)", Raw: d.Pattern, Err: fmt.Errorf("missing required field: id")}
	}
	if d.Pattern == "" {
		return nil, &CompileError{PatternID: d.ID, Raw: d.Pattern, Err: fmt.Errorf("missing required field: pattern")}
	}
	if !d.Severity.Valid() {
		return nil, &CompileError{PatternID: d.ID, Raw: d.Pattern, Err: fmt.Errorf("invalid severity %q", d.Severity)}
	}
	re, err := regexp.Compile(d.Pattern)
	if err != nil {
		return nil, &CompileError{PatternID: d.ID, Raw: d.Pattern, Err: err}
	}

	category := d.Category
	if category == "" {
		category = CategoryGeneral
	}

	p := &Pattern{
		ID:             d.ID,
		RawPattern:     d.Pattern,
		Compiled:       re,
		Severity:       d.Severity,
		Category:       category,
		Message:        d.Message,
		Explanation:    d.Explanation,
		insertionOrder: order,
	}
	if d.Tier != "" {
		t, ok := parseTier(d.Tier)
		if !ok {
			return nil, &CompileError{PatternID: d.ID, Raw: d.Pattern, Err: fmt.Errorf("invalid tier %q", d.Tier)}
		}
		p.Tier = t
	} else {
		p.Tier = AssignTier(d.Severity, re)
	}
	return p, nil
}

func parseTier(s string) (Tier, bool) {
	switch s {
	case "ULTRA_CRITICAL":
		return TierUltraCritical, true
	case "CRITICAL_FAST":
		return TierCriticalFast, true
	case "HIGH_NORMAL":
		return TierHighNormal, true
	}
	return 0, false
}
