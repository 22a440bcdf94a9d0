package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// BypassEnvVars are the environment flags that, when set to a truthy
// value, short-circuit the engine to Bypass (spec.md §6 "Bypass
// environment flags").
var BypassEnvVars = []string{
	"BYPASS_DESIGN_HOOK",
	"QUALITYGATE_DISABLED",
	"EMERGENCY_BYPASS",
	"QUALITYGATE_BYPASS",
}

// Tunables is the viper-backed runtime knob set: env-var bypass flags plus
// optional budget/learner/recovery overrides from a TOML tunables file,
// layered under (and able to override) the YAML-sourced Config.
type Tunables struct {
	v *viper.Viper
}

// NewTunables builds a Tunables resolver bound to the conventional env
// prefix and, if non-empty, a TOML file at tunablesPath.
func NewTunables(tunablesPath string) (*Tunables, error) {
	v := viper.New()
	v.SetEnvPrefix("GATE")
	v.AutomaticEnv()

	v.SetConfigType("toml")
	if tunablesPath != "" {
		v.SetConfigFile(tunablesPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
				return nil, err
			}
		}
	}
	return &Tunables{v: v}, nil
}

// Bypassed reports whether any bypass env var is set to a truthy value
// (1, true, yes — case-insensitive), per spec.md §6. These four names are
// read directly with os.Getenv rather than through Viper: they are fixed
// literal names with no GATE_ prefix, so Viper's prefixed AutomaticEnv
// lookup doesn't apply to them.
func (t *Tunables) Bypassed() (bool, string) {
	for _, name := range BypassEnvVars {
		if isTruthy(os.Getenv(name)) {
			return true, name
		}
	}
	return false, ""
}

func isTruthy(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "yes":
		return true
	}
	if b, err := strconv.ParseBool(s); err == nil {
		return b
	}
	return false
}

// ApplyOverrides merges any TOML tunables-file values on top of cfg,
// returning a new Config. Unset keys leave cfg's fields untouched.
func (t *Tunables) ApplyOverrides(cfg *Config) *Config {
	out := *cfg
	if v := t.v.GetInt64("budgets.total_us"); v != 0 {
		out.Budgets.TotalUs = v
	}
	if v := t.v.GetInt64("budgets.ultra_us"); v != 0 {
		out.Budgets.UltraUs = v
	}
	if v := t.v.GetInt64("budgets.critical_us"); v != 0 {
		out.Budgets.CriticalUs = v
	}
	if v := t.v.GetInt64("budgets.high_us"); v != 0 {
		out.Budgets.HighUs = v
	}
	if v := t.v.GetInt("learner.tasks_per_tick"); v != 0 {
		out.Learner.TasksPerTick = v
	}
	if v := t.v.GetInt64("learner.soft_budget_us"); v != 0 {
		out.Learner.SoftBudgetUs = v
	}
	if v := t.v.GetInt64("recovery.mem_target_bytes"); v != 0 {
		out.Recovery.MemTargetBytes = v
	}
	if v := t.v.GetInt("recovery.stability_threshold"); v != 0 {
		out.Recovery.StabilityThreshold = v
	}
	if t.v.IsSet("warn_only") {
		out.WarnOnly = t.v.GetBool("warn_only")
	}
	return &out
}
