package rules

import (
	"fmt"
	"regexp"

	"gopkg.in/yaml.v3"
)

type RuleCategory string

const (
	CategorySecurity        RuleCategory = "security"
	CategoryReliability     RuleCategory = "reliability"
	CategoryMaintainability RuleCategory = "maintainability"
)

type RuleSource string

const (
	SourceCWE       RuleSource = "CWE"
	SourceOWASP     RuleSource = "OWASP"
	SourceSonarQube RuleSource = "SonarQube"
	SourceCustom    RuleSource = "Custom"
)

// RuleType distinguishes a regex-matched rule, whose Pattern a gate.Engine
// component can run directly, from an AST-checked one, whose ASTCheck names
// a check already registered in internal/astcheck — this catalog carries
// advisory metadata (CWE/OWASP/remediation) for both kinds, it does not
// re-implement AST matching.
type RuleType string

const (
	RuleTypeRegex RuleType = "regex"
	RuleTypeAST   RuleType = "ast"
)

// Rule is an advisory record: CWE/OWASP classification and remediation
// guidance for a finding, keyed by ID so it can be looked up once a
// pattern/AST check has already decided something matched. It does not
// itself drive matching on the hot path (internal/pattern and
// internal/astcheck own that); internal/sarif and internal/output consult
// it to enrich a SARIF ReportingDescriptor or a human-readable report with
// the guidance a bare pattern match can't carry on its own.
type Rule struct {
	ID          string         `yaml:"id"`
	Name        string         `yaml:"name"`
	Category    RuleCategory   `yaml:"category"`
	Type        RuleType       `yaml:"type,omitempty"`
	Pattern     *regexp.Regexp `yaml:"-"`
	RawPattern  string         `yaml:"pattern,omitempty"`
	ASTCheck    string         `yaml:"ast_check,omitempty"`
	Languages   []string       `yaml:"languages,omitempty"`
	Level       string         `yaml:"level"`
	Confidence  float64        `yaml:"confidence"`
	Message     string         `yaml:"message"`
	Explanation string         `yaml:"explanation,omitempty"`
	Remediation string         `yaml:"remediation,omitempty"`
	Source      RuleSource     `yaml:"source,omitempty"`
	CWE         []string       `yaml:"cwe,omitempty"`
	OWASP       []string       `yaml:"owasp,omitempty"`
	References  []string       `yaml:"references,omitempty"`
}

type RuleFile struct {
	Rules []Rule `yaml:"rules"`
}

func ParseRuleFile(data []byte) (*RuleFile, error) {
	var rf RuleFile
	if err := yaml.Unmarshal(data, &rf); err != nil {
		return nil, fmt.Errorf("parsing rule file: %w", err)
	}

	seen := make(map[string]bool)
	for i := range rf.Rules {
		r := &rf.Rules[i]
		if r.Type == "" {
			r.Type = RuleTypeRegex
		}
		if err := validateRule(r); err != nil {
			return nil, fmt.Errorf("rule %q (index %d): %w", r.ID, i, err)
		}
		if seen[r.ID] {
			return nil, fmt.Errorf("duplicate rule ID %q", r.ID)
		}
		seen[r.ID] = true

		if r.Type == RuleTypeRegex {
			compiled, err := regexp.Compile(r.RawPattern)
			if err != nil {
				return nil, fmt.Errorf("rule %q: invalid regex pattern: %w", r.ID, err)
			}
			r.Pattern = compiled
		}
	}

	return &rf, nil
}

func validateRule(r *Rule) error {
	if r.ID == "" {
		return fmt.Errorf("missing required field: id")
	}
	switch r.Type {
	case RuleTypeAST:
		if r.ASTCheck == "" {
			return fmt.Errorf("missing required field: ast_check")
		}
	default:
		if r.RawPattern == "" {
			return fmt.Errorf("missing required field: pattern")
		}
	}
	if r.Level == "" {
		return fmt.Errorf("missing required field: level")
	}
	if r.Message == "" {
		return fmt.Errorf("missing required field: message")
	}
	if r.Confidence <= 0 || r.Confidence > 1 {
		return fmt.Errorf("confidence must be in range (0, 1], got %v", r.Confidence)
	}
	return nil
}

// Catalog indexes rules by ID for the advisory lookups internal/sarif and
// internal/output perform once a PatternID has already been decided by the
// scanner.
type Catalog map[string]Rule

// NewCatalog indexes rules by ID, last one wins on a collision.
func NewCatalog(rules []Rule) Catalog {
	c := make(Catalog, len(rules))
	for _, r := range rules {
		c[r.ID] = r
	}
	return c
}

func ByCategory(rules []Rule, category RuleCategory) []Rule {
	var filtered []Rule
	for _, r := range rules {
		if r.Category == category {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

func ByCWE(rules []Rule, cweID string) []Rule {
	var filtered []Rule
	for _, r := range rules {
		for _, cwe := range r.CWE {
			if cwe == cweID {
				filtered = append(filtered, r)
				break
			}
		}
	}
	return filtered
}
