package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/gate"
	"github.com/patterngate/gate/internal/tui"
)

var (
	flagStatusPolicyDir string
	flagStatusWatch     bool
	flagStatusJSON      bool
)

func init() {
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Report the gate engine's pattern, learner, generator, and recovery state",
		RunE:  runStatus,
	}
	statusCmd.Flags().StringVar(&flagStatusPolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")
	statusCmd.Flags().BoolVarP(&flagStatusWatch, "watch", "w", false, "Launch a live-updating terminal dashboard")
	statusCmd.Flags().BoolVar(&flagStatusJSON, "json", false, "Print a single JSON snapshot instead of a table")
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadTiered("", flagStatusPolicyDir+"/config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tunables, err := config.NewTunables("")
	if err != nil {
		return fmt.Errorf("loading tunables: %w", err)
	}

	engine, err := gate.New(ctx, cfg, tunables, flagStatusPolicyDir+"/rego", nil)
	if err != nil {
		return fmt.Errorf("assembling gate engine: %w", err)
	}
	defer engine.Shutdown()

	poll := func() tui.Stats { return toTUIStats(engine.Stats()) }

	if flagStatusWatch {
		_, err := tea.NewProgram(tui.New(poll, time.Second), tea.WithAltScreen()).Run()
		return err
	}

	s := poll()
	if flagStatusJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(s)
	}

	fmt.Printf("patterns loaded:     %d\n", s.PatternCnt)
	fmt.Printf("recovery mode:       %v\n", s.Mode)
	fmt.Printf("calls/matches/errs:  %d/%d/%d\n", s.Metrics.TotalCalls, s.Metrics.TotalMatches, s.Metrics.TotalErrors)
	fmt.Printf("p50/p95/p99 (us):    %.0f/%.0f/%.0f\n", s.Metrics.P50LatencyUs, s.Metrics.P95LatencyUs, s.Metrics.P99LatencyUs)
	fmt.Printf("learner processed:   %d (discarded %d)\n", s.LearnerProcessed, s.LearnerDiscarded)
	fmt.Printf("generator published: %d (generated %d, discarded %d)\n", s.GeneratorPublished, s.GeneratorGenerated, s.GeneratorDiscarded)
	return nil
}

func toTUIStats(s gate.Stats) tui.Stats {
	return tui.Stats{
		PatternCnt:         s.PatternCnt,
		Mode:               s.Mode,
		Metrics:            s.Metrics,
		Records:            s.Records,
		LearnerQueueDepth:  s.Learner.QueueDepth,
		LearnerProcessed:   s.Learner.Processed,
		LearnerDiscarded:   s.Learner.Discarded,
		GeneratorGenerated: s.Generator.Generated,
		GeneratorPublished: s.Generator.Published,
		GeneratorDiscarded: s.Generator.Discarded,
	}
}
