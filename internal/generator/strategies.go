package generator

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/patterngate/gate/internal/astcheck"
	"github.com/patterngate/gate/internal/pattern"
)

// Strategy names one of the derive_rule approaches of spec.md §4.6.
type Strategy string

const (
	StrategyPatternExtension   Strategy = "pattern_extension"
	StrategySeverityEscalation Strategy = "severity_escalation"
	StrategyContextAdaptation  Strategy = "context_adaptation"
)

// DerivedRule is the output of DeriveRule: an auto-rule proposal, not yet
// validated or published.
type DerivedRule struct {
	Strategy    Strategy
	BasePattern string
	RegexSource string
	Severity    pattern.Severity
	Note        string
}

// DeriveRule implements *derive_rule(base_patterns, strategy)* from
// spec.md §4.6. contextSample and path feed the keyword/AST signals each
// strategy draws on; extraKeywords supplies the literal terms discovered
// in observed context for pattern_extension.
func DeriveRule(base *pattern.Pattern, strategy Strategy, contextSample string, path string, extraKeywords []string) (*DerivedRule, error) {
	if base == nil {
		return nil, fmt.Errorf("derive_rule: no base pattern")
	}
	switch strategy {
	case StrategyPatternExtension:
		return patternExtension(base, extraKeywords)
	case StrategySeverityEscalation:
		return severityEscalation(base, contextSample)
	case StrategyContextAdaptation:
		return contextAdaptation(base, contextSample, path)
	default:
		return nil, fmt.Errorf("derive_rule: unknown strategy %q", strategy)
	}
}

// patternExtension unions literal keyword sets discovered in context with
// an existing regex (spec.md §4.6 "union literal keyword sets discovered
// in context with an existing regex").
func patternExtension(base *pattern.Pattern, extraKeywords []string) (*DerivedRule, error) {
	clean := make([]string, 0, len(extraKeywords))
	for _, kw := range extraKeywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		clean = append(clean, regexp.QuoteMeta(kw))
	}
	if len(clean) == 0 {
		return nil, fmt.Errorf("pattern_extension: no literal keywords discovered")
	}

	src := fmt.Sprintf("(?:%s)|(?:%s)", base.RawPattern, strings.Join(clean, "|"))
	if _, err := regexp.Compile(src); err != nil {
		return nil, fmt.Errorf("pattern_extension: %w", err)
	}
	return &DerivedRule{
		Strategy:    StrategyPatternExtension,
		BasePattern: base.ID,
		RegexSource: src,
		Severity:    base.Severity,
		Note:        fmt.Sprintf("extended with %d discovered keyword(s)", len(clean)),
	}, nil
}

// escalationTriggers are the conditions spec.md §4.6 names for promoting a
// pattern's severity: "repeated observation, security context".
var escalationTriggers = []string{
	"password", "secret", "token", "production", "prod ", "admin", "root",
	"credential", "payment", "pci", "customer data",
}

// severityEscalation promotes a pattern's severity under the stated
// trigger conditions (spec.md §4.6).
func severityEscalation(base *pattern.Pattern, contextSample string) (*DerivedRule, error) {
	lower := strings.ToLower(contextSample)
	hit := false
	for _, trig := range escalationTriggers {
		if strings.Contains(lower, trig) {
			hit = true
			break
		}
	}
	if !hit {
		return nil, fmt.Errorf("severity_escalation: no trigger condition present in context")
	}

	next := escalate(base.Severity)
	if next == base.Severity {
		return nil, fmt.Errorf("severity_escalation: %s is already the ceiling severity", base.Severity)
	}
	return &DerivedRule{
		Strategy:    StrategySeverityEscalation,
		BasePattern: base.ID,
		RegexSource: base.RawPattern,
		Severity:    next,
		Note:        "escalated under security-context trigger",
	}, nil
}

func escalate(s pattern.Severity) pattern.Severity {
	switch s {
	case pattern.SeverityInfo:
		return pattern.SeverityHigh
	case pattern.SeverityHigh:
		return pattern.SeverityCritical
	default:
		return s
	}
}

// domainSpecializers narrow a base pattern toward a detected domain by
// anchoring it with a lookahead for domain-typical terms, reducing
// false positives outside that domain (spec.md §4.6 "context_adaptation:
// specialize a pattern to a domain ... detected via keyword analysis").
var domainSpecializers = map[astcheck.Domain]string{
	astcheck.DomainDatabase: `(?:select|insert|update|delete|query|sql|schema|table)`,
	astcheck.DomainAPI:      `(?:http|request|response|endpoint|route|handler|rpc)`,
	astcheck.DomainFrontend: `(?:render|component|props|state|dom|element)`,
}

// contextAdaptation specializes a pattern to a domain detected from path
// and contextSample via internal/astcheck's AST-aware (falling back to
// keyword) domain detector.
func contextAdaptation(base *pattern.Pattern, contextSample string, path string) (*DerivedRule, error) {
	domain := astcheck.DetectDomain(path, []byte(contextSample))
	anchor, ok := domainSpecializers[domain]
	if !ok {
		return nil, fmt.Errorf("context_adaptation: no recognizable domain in context")
	}

	src := fmt.Sprintf("(?i)%s.{0,200}(?:%s)|(?:%s).{0,200}%s", anchor, base.RawPattern, base.RawPattern, anchor)
	if _, err := regexp.Compile(src); err != nil {
		return nil, fmt.Errorf("context_adaptation: %w", err)
	}
	return &DerivedRule{
		Strategy:    StrategyContextAdaptation,
		BasePattern: base.ID,
		RegexSource: src,
		Severity:    base.Severity,
		Note:        fmt.Sprintf("specialized to %s domain", domain),
	}, nil
}
