package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/config"
	gatecontext "github.com/patterngate/gate/internal/context"
	"github.com/patterngate/gate/internal/gate"
	"github.com/patterngate/gate/internal/generator"
)

var (
	flagDerivePolicyDir string
	flagDeriveBaseDir   string
	flagDeriveSelectors []string
	flagDeriveOnlyFor   string
	flagDerivePath      string
	flagDeriveKeywords  []string
	flagDeriveJSON      bool
)

func init() {
	deriveCmd := &cobra.Command{
		Use:   "derive <base-pattern-id> <pattern_extension|severity_escalation|context_adaptation>",
		Short: "Propose a derived rule from an existing pattern via derive_rule",
		Args:  cobra.ExactArgs(2),
		RunE:  runDerive,
	}
	deriveCmd.Flags().StringVar(&flagDerivePolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")
	deriveCmd.Flags().StringVar(&flagDeriveBaseDir, "context-dir", ".", "Base directory context selectors are resolved against")
	deriveCmd.Flags().StringSliceVar(&flagDeriveSelectors, "selector", nil, "Glob of sibling files to load as context (repeatable)")
	deriveCmd.Flags().StringVar(&flagDeriveOnlyFor, "only-for", "", "Restrict --selector to artifacts whose basename matches this glob")
	deriveCmd.Flags().StringVar(&flagDerivePath, "path", "", "Path of the flagged artifact (drives context_adaptation's domain detection)")
	deriveCmd.Flags().StringSliceVar(&flagDeriveKeywords, "keyword", nil, "Extra literal keyword for pattern_extension (repeatable)")
	deriveCmd.Flags().BoolVar(&flagDeriveJSON, "json", false, "Print the derived rule as JSON instead of a plain report")
	rootCmd.AddCommand(deriveCmd)
}

func runDerive(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	basePatternID := args[0]
	strategy := generator.Strategy(args[1])

	var contextSample string
	if len(flagDeriveSelectors) > 0 {
		loader := gatecontext.NewLoader(flagDeriveBaseDir)
		selectors := make([]gatecontext.Selector, len(flagDeriveSelectors))
		for i, pat := range flagDeriveSelectors {
			selectors[i] = gatecontext.Selector{Pattern: pat, OnlyFor: flagDeriveOnlyFor}
		}
		files, err := loader.LoadForArtifact(flagDerivePath, selectors)
		if err != nil {
			return fmt.Errorf("loading context: %w", err)
		}
		contextSample = gatecontext.FormatContext(files)
	}

	cfg, err := config.LoadTiered("", flagDerivePolicyDir+"/config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tunables, err := config.NewTunables("")
	if err != nil {
		return fmt.Errorf("loading tunables: %w", err)
	}

	engine, err := gate.New(ctx, cfg, tunables, flagDerivePolicyDir+"/rego", nil)
	if err != nil {
		return fmt.Errorf("assembling gate engine: %w", err)
	}
	defer engine.Shutdown()

	rule, err := engine.DeriveRule(ctx, basePatternID, strategy, contextSample, flagDerivePath, flagDeriveKeywords)
	if err != nil {
		return fmt.Errorf("derive_rule: %w", err)
	}

	if flagDeriveJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rule)
	}

	fmt.Printf("strategy:     %s\n", rule.Strategy)
	fmt.Printf("base pattern: %s\n", rule.BasePattern)
	fmt.Printf("regex:        %s\n", rule.RegexSource)
	fmt.Printf("severity:     %s\n", rule.Severity)
	fmt.Printf("note:         %s\n", rule.Note)
	fmt.Println(strings.TrimSpace("\nderived rules are proposals only; publish a reviewed version with `gate feedback` or a pattern-directory override"))
	return nil
}
