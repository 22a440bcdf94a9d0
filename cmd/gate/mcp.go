package main

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/spf13/cobra"

	"github.com/patterngate/gate/internal/config"
	"github.com/patterngate/gate/internal/gate"
)

var flagMCPPolicyDir string

func init() {
	mcpCmd := &cobra.Command{
		Use:   "mcp",
		Short: "Serve the gate engine's analyze operation over MCP (stdio)",
		RunE:  runMCP,
	}
	mcpCmd.Flags().StringVar(&flagMCPPolicyDir, "policy-dir", ".gate", "Directory containing pattern overrides and Rego policy")
	rootCmd.AddCommand(mcpCmd)
}

// runMCP exposes gate.Engine.Analyze as an MCP tool, letting a host (an
// editor, an agent harness) call the gate directly instead of shelling out
// to `gate analyze` for every edit.
func runMCP(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadTiered("", flagMCPPolicyDir+"/config.yaml")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	tunables, err := config.NewTunables("")
	if err != nil {
		return fmt.Errorf("loading tunables: %w", err)
	}
	engine, err := gate.New(ctx, cfg, tunables, flagMCPPolicyDir+"/rego", nil)
	if err != nil {
		return fmt.Errorf("assembling gate engine: %w", err)
	}
	defer engine.Shutdown()

	s := server.NewMCPServer("gate", version)

	analyzeTool := mcp.NewTool("analyze",
		mcp.WithDescription("Scan content against the tiered pattern set and return a verdict plus policy decision"),
		mcp.WithString("content", mcp.Required(), mcp.Description("The code or shell command text to analyze")),
		mcp.WithString("mode", mcp.Description("Invocation mode: \"edit\" (default) or \"bash\"")),
	)
	s.AddTool(analyzeTool, analyzeToolHandler(engine))

	return server.ServeStdio(s)
}

func analyzeToolHandler(engine *gate.Engine) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		content, _ := req.Params.Arguments["content"].(string)
		if content == "" {
			return mcp.NewToolResultError("content is required"), nil
		}

		mode := gate.ModeEdit
		if m, _ := req.Params.Arguments["mode"].(string); m == "bash" {
			mode = gate.ModeBash
		}

		result, err := engine.Analyze(ctx, mode, []byte(content))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		text := fmt.Sprintf("decision=%s exit_code=%d severity=%s pattern=%s message=%q",
			result.Action.Decision, result.Action.ExitCode, result.Verdict.Severity,
			result.Verdict.PatternID, result.Verdict.Message)
		return mcp.NewToolResultText(text), nil
	}
}
