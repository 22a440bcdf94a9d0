package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/gate"
	"github.com/patterngate/gate/internal/generator"
)

var (
	flagFeedbackPolicyDir string
	flagFeedbackPayload   string
)

func init() {
	feedbackCmd := &cobra.Command{
		Use:   "feedback <pattern-id> <false_positive|false_negative|accuracy>",
		Short: "Report feedback on a pattern's verdicts to the generator's adapt_from_feedback",
		Args:  cobra.ExactArgs(2),
		RunE:  runFeedback,
	}
	feedbackCmd.Flags().StringVar(&flagFeedbackPolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")
	feedbackCmd.Flags().StringVar(&flagFeedbackPayload, "payload", "", "Path to a file containing the missed content (required for false_negative)")
	rootCmd.AddCommand(feedbackCmd)
}

func runFeedback(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	patternID, kindArg := args[0], args[1]

	kind := generator.FeedbackKind(kindArg)
	switch kind {
	case generator.FeedbackFalsePositive, generator.FeedbackFalseNegative, generator.FeedbackAccuracy:
	default:
		return fmt.Errorf("unknown feedback kind %q: want false_positive, false_negative, or accuracy", kindArg)
	}

	var payload string
	if flagFeedbackPayload != "" {
		b, err := os.ReadFile(flagFeedbackPayload)
		if err != nil {
			return fmt.Errorf("reading payload: %w", err)
		}
		payload = string(b)
	} else if kind == generator.FeedbackFalseNegative {
		return fmt.Errorf("false_negative feedback requires --payload with the content that should have matched")
	}

	cfg, err := config.LoadTiered("", flagFeedbackPolicyDir+"/config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tunables, err := config.NewTunables("")
	if err != nil {
		return fmt.Errorf("loading tunables: %w", err)
	}

	engine, err := gate.New(ctx, cfg, tunables, flagFeedbackPolicyDir+"/rego", nil)
	if err != nil {
		return fmt.Errorf("assembling gate engine: %w", err)
	}
	defer engine.Shutdown()

	if !engine.AdaptFromFeedback(ctx, patternID, kind, payload) {
		return fmt.Errorf("feedback rejected for pattern %q (unknown pattern, or generator disabled)", patternID)
	}

	fmt.Printf("recorded %s feedback for %s\n", kind, patternID)
	return nil
}
