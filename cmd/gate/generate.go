package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/gate"
	"github.com/patterngate/gate/internal/pattern"
)

var (
	flagGeneratePolicyDir string
	flagGenerateSeverity  string
	flagGenerateJSON      bool
)

func init() {
	generateCmd := &cobra.Command{
		Use:   "generate <context-file>",
		Short: "Synthesize a candidate pattern from observed content via generate()",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerate,
	}
	generateCmd.Flags().StringVar(&flagGeneratePolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")
	generateCmd.Flags().StringVar(&flagGenerateSeverity, "severity", "", "Override the classifier's proposed severity (CRITICAL, HIGH, INFO)")
	generateCmd.Flags().BoolVar(&flagGenerateJSON, "json", false, "Print the candidate as JSON instead of a plain report")
	rootCmd.AddCommand(generateCmd)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	content, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("reading context file: %w", err)
	}

	severityHint := pattern.Severity(flagGenerateSeverity)

	cfg, err := config.LoadTiered("", flagGeneratePolicyDir+"/config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tunables, err := config.NewTunables("")
	if err != nil {
		return fmt.Errorf("loading tunables: %w", err)
	}

	engine, err := gate.New(ctx, cfg, tunables, flagGeneratePolicyDir+"/rego", nil)
	if err != nil {
		return fmt.Errorf("assembling gate engine: %w", err)
	}
	defer engine.Shutdown()

	cand, err := engine.Generate(ctx, string(content), severityHint)
	if err != nil {
		return fmt.Errorf("generate: %w", err)
	}

	if flagGenerateJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(cand)
	}

	fmt.Printf("id:         %s\n", cand.ID)
	fmt.Printf("regex:      %s\n", cand.RegexSource)
	fmt.Printf("severity:   %s\n", cand.Severity)
	fmt.Printf("category:   %s\n", cand.Category)
	fmt.Printf("confidence: %.2f\n", cand.Classifier.Confidence)
	fmt.Printf("message:    %s\n", cand.Message)
	fmt.Println("candidate not yet published; review and publish via a pattern-directory override")
	return nil
}
