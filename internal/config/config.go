// Package config loads and merges the gate's tunables: tier budgets,
// learner rates, recovery thresholds, and the pattern directory, layered
// system defaults under machine config under project config (spec.md §4,
// §4.7).
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// BudgetConfig overrides the hot-path latency budgets of spec.md §4.3.
// Zero fields fall back to the package-level defaults each subsystem
// already carries (matcher.Budget, scanner.TotalBudget, ...).
type BudgetConfig struct {
	TotalUs  int64 `yaml:"total_us,omitempty"`
	UltraUs  int64 `yaml:"ultra_us,omitempty"`
	CriticalUs int64 `yaml:"critical_us,omitempty"`
	HighUs   int64 `yaml:"high_us,omitempty"`
}

// LearnerConfig overrides the Background Learner's cooperative scheduling
// (spec.md §4.5).
type LearnerConfig struct {
	TasksPerTick int   `yaml:"tasks_per_tick,omitempty"`
	SoftBudgetUs int64 `yaml:"soft_budget_us,omitempty"`
}

// RecoveryConfig overrides the Recovery Controller's thresholds
// (spec.md §4.7).
type RecoveryConfig struct {
	MemTargetBytes      int64 `yaml:"mem_target_bytes,omitempty"`
	StabilityThreshold  int   `yaml:"stability_threshold,omitempty"`
	ActivationWindowSec int   `yaml:"activation_window_sec,omitempty"`
}

// TelemetryConfig configures the optional OTel export of generator and
// policy spans (never the scanner hot path; spec.md's tracing is limited
// to off-hot-path subsystems).
type TelemetryConfig struct {
	Enabled        bool              `yaml:"enabled,omitempty"`
	ServiceName    string            `yaml:"service_name,omitempty"`
	ServiceVersion string            `yaml:"service_version,omitempty"`
	Protocol       string            `yaml:"protocol,omitempty"` // "grpc" (default) or "http"
	Endpoint       string            `yaml:"endpoint,omitempty"`
	Insecure       bool              `yaml:"insecure,omitempty"`
	Headers        map[string]string `yaml:"headers,omitempty"`
	SampleRate     float64           `yaml:"sample_rate,omitempty"`
}

// Config holds the full gate configuration.
type Config struct {
	PatternDir      string          `yaml:"pattern_dir,omitempty"`
	WarnOnly        bool            `yaml:"warn_only,omitempty"`
	MaxContentBytes int64           `yaml:"max_content_bytes,omitempty"`
	Budgets         BudgetConfig    `yaml:"budgets,omitempty"`
	Learner         LearnerConfig   `yaml:"learner,omitempty"`
	Recovery        RecoveryConfig  `yaml:"recovery,omitempty"`
	Telemetry       TelemetryConfig `yaml:"telemetry,omitempty"`

	// WeightStorePath, when set, persists the Weight Table to a SQLite
	// database across process restarts (internal/store.SQLiteWeightStore).
	// A short-lived `gate analyze` invocation has nothing to learn from
	// within a single call; this is what lets weight updates survive to the
	// next invocation.
	WeightStorePath string `yaml:"weight_store_path,omitempty"`
}

// Validate checks that the configuration is internally consistent.
func (c *Config) Validate() error {
	if c.MaxContentBytes < 0 {
		return fmt.Errorf("max_content_bytes must not be negative, got %d", c.MaxContentBytes)
	}
	if c.Budgets.TotalUs < 0 || c.Budgets.UltraUs < 0 || c.Budgets.CriticalUs < 0 || c.Budgets.HighUs < 0 {
		return errors.New("budgets must not be negative")
	}
	if c.Learner.TasksPerTick < 0 {
		return errors.New("learner.tasks_per_tick must not be negative")
	}
	if c.Recovery.StabilityThreshold < 0 {
		return errors.New("recovery.stability_threshold must not be negative")
	}
	return nil
}

// MergeConfigs merges configs in order of increasing precedence. Later
// configs override earlier ones; non-zero fields win.
func MergeConfigs(configs ...*Config) *Config {
	result := &Config{}
	for _, cfg := range configs {
		if cfg == nil {
			continue
		}
		if cfg.PatternDir != "" {
			result.PatternDir = cfg.PatternDir
		}
		if cfg.WarnOnly {
			result.WarnOnly = true
		}
		if cfg.MaxContentBytes != 0 {
			result.MaxContentBytes = cfg.MaxContentBytes
		}
		if cfg.Budgets.TotalUs != 0 {
			result.Budgets.TotalUs = cfg.Budgets.TotalUs
		}
		if cfg.Budgets.UltraUs != 0 {
			result.Budgets.UltraUs = cfg.Budgets.UltraUs
		}
		if cfg.Budgets.CriticalUs != 0 {
			result.Budgets.CriticalUs = cfg.Budgets.CriticalUs
		}
		if cfg.Budgets.HighUs != 0 {
			result.Budgets.HighUs = cfg.Budgets.HighUs
		}
		if cfg.Learner.TasksPerTick != 0 {
			result.Learner.TasksPerTick = cfg.Learner.TasksPerTick
		}
		if cfg.Learner.SoftBudgetUs != 0 {
			result.Learner.SoftBudgetUs = cfg.Learner.SoftBudgetUs
		}
		if cfg.Recovery.MemTargetBytes != 0 {
			result.Recovery.MemTargetBytes = cfg.Recovery.MemTargetBytes
		}
		if cfg.Recovery.StabilityThreshold != 0 {
			result.Recovery.StabilityThreshold = cfg.Recovery.StabilityThreshold
		}
		if cfg.Recovery.ActivationWindowSec != 0 {
			result.Recovery.ActivationWindowSec = cfg.Recovery.ActivationWindowSec
		}
		if cfg.Telemetry.Enabled {
			result.Telemetry.Enabled = true
		}
		if cfg.Telemetry.ServiceName != "" {
			result.Telemetry.ServiceName = cfg.Telemetry.ServiceName
		}
		if cfg.Telemetry.ServiceVersion != "" {
			result.Telemetry.ServiceVersion = cfg.Telemetry.ServiceVersion
		}
		if cfg.Telemetry.Protocol != "" {
			result.Telemetry.Protocol = cfg.Telemetry.Protocol
		}
		if cfg.Telemetry.Endpoint != "" {
			result.Telemetry.Endpoint = cfg.Telemetry.Endpoint
		}
		if cfg.Telemetry.Insecure {
			result.Telemetry.Insecure = true
		}
		if len(cfg.Telemetry.Headers) > 0 {
			result.Telemetry.Headers = cfg.Telemetry.Headers
		}
		if cfg.Telemetry.SampleRate != 0 {
			result.Telemetry.SampleRate = cfg.Telemetry.SampleRate
		}
		if cfg.WeightStorePath != "" {
			result.WeightStorePath = cfg.WeightStorePath
		}
	}
	return result
}

// LoadFromFile reads a YAML config file. Returns nil, nil if the file
// doesn't exist.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return &cfg, nil
}

// LoadTiered loads system defaults, then machine config, then project
// config, and merges them in order of increasing precedence.
func LoadTiered(machinePath, projectPath string) (*Config, error) {
	system := SystemDefaults()

	machine, err := LoadFromFile(machinePath)
	if err != nil {
		return nil, fmt.Errorf("loading machine config: %w", err)
	}

	project, err := LoadFromFile(projectPath)
	if err != nil {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return MergeConfigs(system, machine, project), nil
}
