package generator

import (
	"fmt"
	"regexp"
	"time"
)

// compileBudget bounds the compile-and-execute-on-a-sample check
// (spec.md §4.6 "Compile validation: ... in ≤ 1 ms").
const compileBudget = 1 * time.Millisecond

// Corpus supplies the labeled samples used for effectiveness and
// false-positive validation.
type Corpus struct {
	Positive []string // known-bad samples the pattern should match
	Negative []string // known-good samples the pattern should not match
}

// ValidationResult records the outcome of each validation stage
// (spec.md §3 "Generated Pattern Candidate ... validation results").
type ValidationResult struct {
	CompileOK        bool
	CompileErr       string
	EffectivenessRate float64
	EffectivenessOK  bool
	FalsePositiveRate float64
	FalsePositiveOK  bool
	Passed           bool
	Lightweight      bool
}

// effectivenessThreshold and lightweightThreshold are the §4.6 detection
// rate floors.
const (
	effectivenessThreshold = 0.6
	lightweightThreshold   = 0.3
	falsePositiveCeiling   = 0.2
)

// Validate runs every validation stage in order and reports the overall
// result. Overall validation succeeds if compile validation passes and at
// least one of effectiveness/false-positive acceptability holds
// (spec.md §4.6 "Validation").
func Validate(regexSource string, corpus Corpus, lightweight bool) ValidationResult {
	result := ValidationResult{Lightweight: lightweight}

	re, ok := compileValidate(regexSource)
	result.CompileOK = ok
	if !ok {
		result.CompileErr = "pattern failed to compile or execute within budget"
		return result
	}

	result.EffectivenessRate = detectionRate(re, corpus.Positive)
	threshold := effectivenessThreshold
	if lightweight {
		threshold = lightweightThreshold
	}
	result.EffectivenessOK = len(corpus.Positive) == 0 || result.EffectivenessRate >= threshold

	result.FalsePositiveRate = detectionRate(re, corpus.Negative)
	result.FalsePositiveOK = len(corpus.Negative) == 0 || result.FalsePositiveRate <= falsePositiveCeiling

	result.Passed = result.CompileOK && (result.EffectivenessOK || result.FalsePositiveOK)
	return result
}

// compileValidate compiles regexSource and exercises it on a small sample
// string, all within compileBudget.
func compileValidate(regexSource string) (*regexp.Regexp, bool) {
	start := time.Now()
	re, err := regexp.Compile(regexSource)
	if err != nil {
		return nil, false
	}
	re.MatchString("sample validation probe 12345 password=hunter2")
	return re, time.Since(start) <= compileBudget
}

// detectionRate returns the fraction of samples re matches.
func detectionRate(re *regexp.Regexp, samples []string) float64 {
	if len(samples) == 0 {
		return 0
	}
	hit := 0
	for _, s := range samples {
		if re.MatchString(s) {
			hit++
		}
	}
	return float64(hit) / float64(len(samples))
}

// describeFailure is a small helper used by callers building a
// PublishConflict error (spec.md §7).
func describeFailure(r ValidationResult) error {
	return fmt.Errorf("validation failed: compile_ok=%v effectiveness=%.2f(ok=%v) false_positive=%.2f(ok=%v)",
		r.CompileOK, r.EffectivenessRate, r.EffectivenessOK, r.FalsePositiveRate, r.FalsePositiveOK)
}
