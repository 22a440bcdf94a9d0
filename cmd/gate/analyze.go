package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/cache"
	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/gate"
	"github.com/patterngate/gate/internal/input"
	"github.com/patterngate/gate/internal/output"
	"github.com/patterngate/gate/internal/rules"
	"github.com/patterngate/gate/internal/telemetry"
)

var (
	flagFiles     []string
	flagDiff      string
	flagDir       string
	flagBash      string
	flagPolicyDir string
	flagTunables  string
	flagFormat    string
	flagCacheDir  string
	flagNoCache   bool
)

func init() {
	analyzeCmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze files, a diff, or a shell command against the pattern set",
		RunE:  runAnalyze,
	}

	analyzeCmd.Flags().StringSliceVar(&flagFiles, "files", nil, "Files to analyze")
	analyzeCmd.Flags().StringVar(&flagDiff, "diff", "", "Path to diff file (or - for stdin)")
	analyzeCmd.Flags().StringVar(&flagDir, "dir", "", "Directory to analyze")
	analyzeCmd.Flags().StringVar(&flagBash, "bash", "", "Shell command text to analyze in bash mode")
	analyzeCmd.Flags().StringVar(&flagPolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")
	analyzeCmd.Flags().StringVar(&flagTunables, "tunables", "", "Path to a TOML tunables file")
	analyzeCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: json, sarif, markdown, pretty (default: auto-detect)")
	analyzeCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "Directory for the on-disk verdict cache (empty disables caching)")
	analyzeCmd.Flags().BoolVar(&flagNoCache, "no-cache", false, "Bypass the verdict cache for this run")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	machineConfig := os.ExpandEnv("$HOME/.config/gate/config.yaml")
	projectConfig := flagPolicyDir + "/config.yaml"
	cfg, err := config.LoadTiered(machineConfig, projectConfig)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() { _ = shutdownTelemetry(context.Background()) }()

	tunables, err := config.NewTunables(flagTunables)
	if err != nil {
		return fmt.Errorf("loading tunables: %w", err)
	}

	engine, err := gate.New(ctx, cfg, tunables, flagPolicyDir+"/rego", nil)
	if err != nil {
		return fmt.Errorf("assembling gate engine: %w", err)
	}
	defer engine.Shutdown()

	artifacts, err := collectArtifacts()
	if err != nil {
		return err
	}

	format := output.ResolveFormat(flagFormat, isatty.IsTerminal(os.Stdout.Fd()))
	formatter, err := output.NewFormatter(format)
	if err != nil {
		return err
	}

	var verdictCache cache.CacheManager
	if flagCacheDir != "" && !flagNoCache {
		verdictCache = cache.NewLocalCache(flagCacheDir)
	}

	advisories, err := rules.LoadRules("", flagPolicyDir)
	if err != nil {
		return fmt.Errorf("loading advisory catalog: %w", err)
	}
	catalog := rules.NewCatalog(advisories)

	exitCode := 0
	for _, artifact := range artifacts {
		result, fromCache, err := analyzeOne(ctx, engine, verdictCache, artifact)
		if err != nil {
			return fmt.Errorf("analyzing %s: %w", artifact.Path, err)
		}

		var advisory *rules.Rule
		if r, ok := catalog[result.Verdict.PatternID]; ok {
			advisory = &r
		}

		var tier string
		var weight float64
		if p, ok := engine.Store().Get(result.Verdict.PatternID); ok {
			tier = p.Tier.String()
			weight = engine.Weights().Get(p.ID)
		}

		rendered, err := formatter.Format(&output.AnalysisOutput{
			Verdict:      result.Verdict,
			Action:       result.Action,
			Artifact:     artifact.Path,
			Advisory:     advisory,
			ContentHash:  cache.GenerateKey(artifact.Content),
			PatternCount: len(engine.Store().All()),
			WeightsAsOf:  newestWeightTimestamp(engine),
			Tier:         tier,
			Weight:       weight,
		})
		if err != nil {
			return fmt.Errorf("formatting result for %s: %w", artifact.Path, err)
		}
		os.Stdout.Write(rendered)

		if !fromCache && verdictCache != nil {
			_ = verdictCache.Put(ctx, &cache.CacheEntry{
				Key:     cacheKeyFor(artifact.Content, engine),
				Verdict: result.Verdict,
			})
		}
		if result.Action.ExitCode > exitCode {
			exitCode = result.Action.ExitCode
		}
	}

	if exitCode != 0 {
		os.Exit(exitCode)
	}
	return nil
}

func collectArtifacts() ([]input.Artifact, error) {
	h := input.NewHandler()
	switch {
	case flagBash != "":
		return []input.Artifact{{Content: flagBash, Kind: input.KindDiff}}, nil
	case flagDir != "":
		return h.ReadDirectory(flagDir)
	case flagDiff != "":
		data, err := readDiffSource(flagDiff)
		if err != nil {
			return nil, err
		}
		return h.ReadDiff(data)
	case len(flagFiles) > 0:
		return h.ReadFiles(flagFiles)
	default:
		return nil, fmt.Errorf("one of --files, --diff, --dir, or --bash is required")
	}
}

func readDiffSource(path string) (string, error) {
	if path == "-" {
		data, err := os.ReadFile("/dev/stdin")
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// analyzeOne resolves a cache hit before paying for a fresh scan, keyed on
// the artifact's content plus the published pattern set's size as a coarse
// version stamp (a published Store swap from the generator or a learning
// session invalidates the cache without needing an explicit bump).
func analyzeOne(ctx context.Context, engine *gate.Engine, c cache.CacheManager, artifact input.Artifact) (gate.Result, bool, error) {
	if c != nil {
		key := cacheKeyFor(artifact.Content, engine)
		if entry, err := c.Get(ctx, key); err == nil {
			if action, derr := engine.Decide(ctx, entry.Verdict); derr == nil {
				return gate.Result{Verdict: entry.Verdict, Action: action}, true, nil
			}
		}
	}

	mode := gate.ModeEdit
	if flagBash != "" {
		mode = gate.ModeBash
	}
	result, err := engine.Analyze(ctx, mode, []byte(artifact.Content))
	return result, false, err
}

func cacheKeyFor(content string, engine *gate.Engine) cache.CacheKey {
	return cache.CacheKey{
		ContentHash:       cache.GenerateKey(content),
		PatternSetVersion: fmt.Sprintf("%d", len(engine.Store().All())),
	}
}

// newestWeightTimestamp returns the most recent Weight Entry UpdatedAt
// across the published Weight Table, RFC3339-formatted, for stamping
// SARIF cache metadata (sarif.CacheMetadata.WeightsAsOf). Empty if no
// weight has been learned yet.
func newestWeightTimestamp(engine *gate.Engine) string {
	var newest time.Time
	for _, entry := range engine.Weights().Snapshot() {
		if entry.UpdatedAt.After(newest) {
			newest = entry.UpdatedAt
		}
	}
	if newest.IsZero() {
		return ""
	}
	return newest.UTC().Format(time.RFC3339)
}
