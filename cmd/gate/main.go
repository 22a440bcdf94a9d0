package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/output"
)

var (
	// Version information injected by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:     "gate",
	Short:   "Tiered pattern-analysis gate for code and shell commands",
	Version: version,
}

func init() {
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		quiet, _ := cmd.Flags().GetBool("quiet")
		verbose, _ := cmd.Flags().GetBool("verbose")
		debug, _ := cmd.Flags().GetBool("debug")
		logger := output.SetupLogger(quiet, verbose, debug, os.Stderr)
		slog.SetDefault(logger)
		return nil
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("gate %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built at: %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolP("quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose (info-level) logging")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug-level logging")

	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
