package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/gate"
	"github.com/patterngate/gate/internal/store"
	"github.com/patterngate/gate/internal/weights"
)

var flagWeightsPolicyDir string

func init() {
	weightsCmd := &cobra.Command{
		Use:   "weights",
		Short: "Inspect or transfer the Weight Table's persisted state",
	}
	weightsCmd.PersistentFlags().StringVar(&flagWeightsPolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")

	exportCmd := &cobra.Command{
		Use:   "export <path>",
		Short: "Write the current Weight Table to a weights.v1 JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runWeightsExport,
	}
	importCmd := &cobra.Command{
		Use:   "import <path>",
		Short: "Seed the Weight Table from a weights.v1 JSON snapshot",
		Args:  cobra.ExactArgs(1),
		RunE:  runWeightsImport,
	}

	weightsCmd.AddCommand(exportCmd, importCmd)
	rootCmd.AddCommand(weightsCmd)
}

func newWeightsEngine(ctx context.Context) (*gate.Engine, error) {
	cfg, err := config.LoadTiered("", flagWeightsPolicyDir+"/config.yaml")
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	tunables, err := config.NewTunables("")
	if err != nil {
		return nil, fmt.Errorf("loading tunables: %w", err)
	}
	return gate.New(ctx, cfg, tunables, flagWeightsPolicyDir+"/rego", nil)
}

func runWeightsExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	engine, err := newWeightsEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	snapshot := engine.Weights().Snapshot()
	if err := store.ExportWeightsJSON(args[0], snapshot, time.Now().UTC()); err != nil {
		return fmt.Errorf("exporting weights: %w", err)
	}
	fmt.Printf("exported %d weight entries to %s\n", len(snapshot), args[0])
	return nil
}

func runWeightsImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	engine, err := newWeightsEngine(ctx)
	if err != nil {
		return err
	}
	defer engine.Shutdown()

	entries, err := store.ImportWeightsJSON(args[0])
	if err != nil {
		return fmt.Errorf("importing weights: %w", err)
	}

	// LoadSnapshot is documented as a startup-only seed, but this command's
	// entire lifetime is the import: the freshly assembled Engine has no
	// in-flight hot-path callers yet, so replacing its Weight Table here is
	// equivalent to seeding it at New() and then tearing it straight back
	// down. Shutdown flushes the result to WeightStorePath if one is
	// configured.
	weights.LoadSnapshot(engine.Weights(), entries)

	fmt.Printf("imported %d weight entries from %s\n", len(entries), args[0])
	return nil
}
