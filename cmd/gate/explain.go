package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/gate"
)

var (
	flagExplainPolicyDir string
	flagExplainJSON      bool
)

func init() {
	explainCmd := &cobra.Command{
		Use:   "explain <pattern-id>",
		Short: "Print a pattern's regex source, tier, and current learned weight",
		Args:  cobra.ExactArgs(1),
		RunE:  runExplain,
	}
	explainCmd.Flags().StringVar(&flagExplainPolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")
	explainCmd.Flags().BoolVar(&flagExplainJSON, "json", false, "Print as JSON instead of a plain report")
	rootCmd.AddCommand(explainCmd)
}

// explainReport is the read-side view over a Pattern plus its current
// Weight Table entry: the "one read-side verb" completion of the Pattern
// Store / Weight Table contract.
type explainReport struct {
	ID          string  `json:"id"`
	RawPattern  string  `json:"pattern"`
	Severity    string  `json:"severity"`
	Category    string  `json:"category"`
	Tier        string  `json:"tier"`
	Message     string  `json:"message"`
	Explanation string  `json:"explanation,omitempty"`
	Weight      float64 `json:"weight"`
	LastUpdated string  `json:"last_updated,omitempty"`
}

func runExplain(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	patternID := args[0]

	cfg, err := config.LoadTiered("", flagExplainPolicyDir+"/config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tunables, err := config.NewTunables("")
	if err != nil {
		return fmt.Errorf("loading tunables: %w", err)
	}

	engine, err := gate.New(ctx, cfg, tunables, flagExplainPolicyDir+"/rego", nil)
	if err != nil {
		return fmt.Errorf("assembling gate engine: %w", err)
	}
	defer engine.Shutdown()

	p, ok := engine.Store().Get(patternID)
	if !ok {
		return fmt.Errorf("unknown pattern id %q", patternID)
	}

	report := explainReport{
		ID:          p.ID,
		RawPattern:  p.RawPattern,
		Severity:    string(p.Severity),
		Category:    string(p.Category),
		Tier:        p.Tier.String(),
		Message:     p.Message,
		Explanation: p.Explanation,
		Weight:      engine.Weights().Get(p.ID),
	}
	if entries := engine.Weights().Snapshot(); entries != nil {
		if e, ok := entries[p.ID]; ok && !e.UpdatedAt.IsZero() {
			report.LastUpdated = e.UpdatedAt.Format("2006-01-02T15:04:05Z07:00")
		}
	}

	if flagExplainJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	fmt.Printf("id:          %s\n", report.ID)
	fmt.Printf("pattern:     %s\n", report.RawPattern)
	fmt.Printf("severity:    %s\n", report.Severity)
	fmt.Printf("category:    %s\n", report.Category)
	fmt.Printf("tier:        %s\n", report.Tier)
	fmt.Printf("message:     %s\n", report.Message)
	if report.Explanation != "" {
		fmt.Printf("explanation: %s\n", report.Explanation)
	}
	fmt.Printf("weight:      %.3f\n", report.Weight)
	if report.LastUpdated != "" {
		fmt.Printf("last learned touch: %s\n", report.LastUpdated)
	} else {
		fmt.Println("last learned touch: never (still at default weight)")
	}
	return nil
}
