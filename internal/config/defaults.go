package config

// SystemDefaults returns the built-in tunables, matching the constants
// each subsystem package already falls back to when a Config field is
// zero (spec.md §4.3, §4.5, §4.7).
func SystemDefaults() *Config {
	return &Config{
		MaxContentBytes: 10 * 1024 * 1024,
		Budgets: BudgetConfig{
			TotalUs:    1500,
			UltraUs:    100,
			CriticalUs: 300,
			HighUs:     800,
		},
		Learner: LearnerConfig{
			TasksPerTick: 3,
			SoftBudgetUs: 300,
		},
		Recovery: RecoveryConfig{
			MemTargetBytes:      50 * 1024 * 1024,
			StabilityThreshold:  3,
			ActivationWindowSec: 60,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    "gate",
			ServiceVersion: "0.1.0",
			Protocol:       "grpc",
			SampleRate:     0.1,
		},
	}
}
