package sarif

import "testing"

func TestAssembler_Build(t *testing.T) {
	results := []Result{
		{RuleID: "rule-a", Level: "warning", Message: Message{Text: "issue A"}},
		{RuleID: "rule-b", Level: "error", Message: Message{Text: "issue B"}},
	}

	rules := []ReportingDescriptor{
		{ID: "rule-a", ShortDescription: Message{Text: "Rule A"}},
		{ID: "rule-b", ShortDescription: Message{Text: "Rule B"}},
	}

	log := NewAssembler().AddResults(results).AddRules(rules).WithInputScope("diff").Build()

	if len(log.Runs) != 1 {
		t.Fatalf("expected 1 run, got %d", len(log.Runs))
	}
	run := log.Runs[0]
	if run.Tool.Driver.Name != "gate" {
		t.Errorf("expected tool name 'gate', got %q", run.Tool.Driver.Name)
	}
	if len(run.Results) != 2 {
		t.Errorf("expected 2 results, got %d", len(run.Results))
	}
	if len(run.Tool.Driver.Rules) != 2 {
		t.Errorf("expected 2 rules, got %d", len(run.Tool.Driver.Rules))
	}
	if run.Properties["gate/inputScope"] != "diff" {
		t.Errorf("expected inputScope 'diff', got %v", run.Properties["gate/inputScope"])
	}
}

func TestAssembler_BuildDedupes(t *testing.T) {
	results := []Result{
		{
			RuleID: "rule-a", Level: "warning", Message: Message{Text: "issue"},
			Locations: []Location{{PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: "foo.go"},
				Region:           Region{StartLine: 10, EndLine: 15},
			}}},
			Properties: map[string]interface{}{"gate/confidence": 0.7},
		},
		{
			RuleID: "rule-a", Level: "warning", Message: Message{Text: "issue duplicate"},
			Locations: []Location{{PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: "foo.go"},
				Region:           Region{StartLine: 12, EndLine: 18},
			}}},
			Properties: map[string]interface{}{"gate/confidence": 0.9},
		},
	}

	log := NewAssembler().AddResults(results).WithInputScope("files").Build()
	if len(log.Runs[0].Results) != 1 {
		t.Errorf("expected dedup to 1 result, got %d", len(log.Runs[0].Results))
	}
	if log.Runs[0].Results[0].Properties["gate/confidence"] != 0.9 {
		t.Errorf("expected to keep higher confidence finding")
	}
}

func TestAssembler_AddsCacheMetadata(t *testing.T) {
	results := []Result{
		{
			RuleID:  "secret-stripe-test-key",
			Level:   "error",
			Message: Message{Text: "Test finding"},
			Locations: []Location{{PhysicalLocation: PhysicalLocation{
				ArtifactLocation: ArtifactLocation{URI: "test.go"},
				Region:           Region{StartLine: 10, EndLine: 12},
			}}},
		},
	}

	rules := []ReportingDescriptor{
		{ID: "secret-stripe-test-key", ShortDescription: Message{Text: "Stripe test key"}},
	}

	log := NewAssembler().
		WithCacheMetadata("abc123def456", 42, "2026-07-30T00:00:00Z").
		AddResults(results).
		AddRules(rules).
		Build()

	result := log.Runs[0].Results[0]

	cacheKey, ok := result.Properties["gate/cache_key"].(string)
	if !ok || cacheKey == "" {
		t.Fatal("expected gate/cache_key property")
	}
	if result.Properties["gate/pattern_count"] != 42 {
		t.Errorf("expected gate/pattern_count=42, got %v", result.Properties["gate/pattern_count"])
	}
}
