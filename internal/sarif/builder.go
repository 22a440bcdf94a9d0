package sarif

// Assembler provides a builder pattern for constructing SARIF logs with
// cache metadata (spec.md §10 "SARIF output retained" as an optional
// rendering of a scanner.Verdict).
type Assembler struct {
	results       []Result
	rules         []ReportingDescriptor
	inputScope    string
	cacheMetadata *CacheMetadata
}

// NewAssembler creates a new Assembler with default values
func NewAssembler() *Assembler {
	return &Assembler{
		results: []Result{},
		rules:   []ReportingDescriptor{},
	}
}

// WithCacheMetadata configures cache metadata for the assembler.
func (a *Assembler) WithCacheMetadata(fileHash string, patternCount int, weightsAsOf string) *Assembler {
	a.cacheMetadata = &CacheMetadata{
		FileHash:     fileHash,
		PatternCount: patternCount,
		WeightsAsOf:  weightsAsOf,
	}
	return a
}

// AddResults adds SARIF results to the assembler
func (a *Assembler) AddResults(results []Result) *Assembler {
	a.results = append(a.results, results...)
	return a
}

// AddRules adds reporting descriptors (rules) to the assembler
func (a *Assembler) AddRules(rules []ReportingDescriptor) *Assembler {
	a.rules = append(a.rules, rules...)
	return a
}

// WithInputScope sets the input scope for the SARIF log
func (a *Assembler) WithInputScope(scope string) *Assembler {
	a.inputScope = scope
	return a
}

// Build constructs the final SARIF log with all configured metadata
func (a *Assembler) Build() *Log {
	deduped := dedup(a.results)

	if a.cacheMetadata != nil {
		cacheKey := a.cacheMetadata.ComputeCacheKey()
		for i := range deduped {
			if deduped[i].Properties == nil {
				deduped[i].Properties = make(map[string]interface{})
			}
			deduped[i].Properties["gate/cache_key"] = cacheKey
			deduped[i].Properties["gate/pattern_count"] = a.cacheMetadata.PatternCount
		}
	}

	log := NewLog("gate", "0.1.0")
	log.Runs[0].Tool.Driver.Rules = a.rules
	log.Runs[0].Results = deduped

	if a.inputScope != "" {
		log.Runs[0].Properties = map[string]interface{}{
			"gate/inputScope": a.inputScope,
		}
	}

	return log
}
