package main

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/review"
	"github.com/patterngate/gate/internal/sarif"
	"github.com/patterngate/gate/internal/store"
)

var (
	flagReviewSARIF string
	flagReviewID    string
	flagReviewStore string
)

func init() {
	reviewCmd := &cobra.Command{
		Use:   "review",
		Short: "Interactively review a SARIF log's findings (accept/reject/comment)",
		RunE:  runReview,
	}
	reviewCmd.Flags().StringVar(&flagReviewSARIF, "sarif", "", "Path to a SARIF log file to review")
	reviewCmd.Flags().StringVar(&flagReviewID, "id", "", "ID of an archived scan (from --store-dir) to review")
	reviewCmd.Flags().StringVar(&flagReviewStore, "store-dir", ".gate/store", "Directory holding archived SARIF logs and decisions")
	rootCmd.AddCommand(reviewCmd)
}

func runReview(cmd *cobra.Command, args []string) error {
	log, err := loadReviewLog()
	if err != nil {
		return err
	}

	model := review.NewReviewModel(log)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("running review TUI: %w", err)
	}
	return nil
}

func loadReviewLog() (*sarif.Log, error) {
	switch {
	case flagReviewSARIF != "":
		return sarif.ReadFile(flagReviewSARIF)
	case flagReviewID != "":
		fs := store.NewFileStore(flagReviewStore)
		return fs.ReadSARIF(context.Background(), flagReviewID)
	default:
		return nil, fmt.Errorf("one of --sarif or --id is required")
	}
}
