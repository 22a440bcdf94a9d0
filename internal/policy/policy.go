// Package policy adapts the teacher's SARIF-decision evaluator into a
// Rego-based verdict policy: given a scanner.Verdict (and whether the
// caller is running in warn-only mode), decide the final gate action and
// process exit code (spec.md §6 "Exit codes").
package policy

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/open-policy-agent/opa/v1/rego"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/patterngate/gate/internal/scanner"
)

var policyTracer = otel.Tracer("github.com/patterngate/gate/internal/policy")

//go:embed default.rego
var defaultPolicy string

// Decision is one of the policy's named outcomes.
type Decision string

const (
	DecisionAllow    Decision = "allow"
	DecisionBlock    Decision = "block"
	DecisionReview   Decision = "review"
	DecisionBypassed Decision = "bypassed"
)

// Action is the policy's output: what to do and what exit code a CLI
// wrapper should report.
type Action struct {
	Decision Decision
	ExitCode int
	Reason   string
}

// Engine evaluates the compiled Rego policy against a scanner.Verdict.
type Engine struct {
	query rego.PreparedEvalQuery
}

// New creates an Engine. If policyDir is empty, the embedded default
// policy is used; if set, every *.rego file in policyDir overrides it
// (last file read wins), mirroring the teacher's evaluator.NewEvaluator.
func New(ctx context.Context, policyDir string) (*Engine, error) {
	modules := []func(*rego.Rego){
		rego.Query("x := {\"decision\": data.gate.policy.decision, \"exit_code\": data.gate.policy.exit_code}"),
		rego.Module("default.rego", defaultPolicy),
	}

	if policyDir != "" {
		entries, err := os.ReadDir(policyDir)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading policy dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() || !strings.HasSuffix(e.Name(), ".rego") {
				continue
			}
			data, err := os.ReadFile(filepath.Join(policyDir, e.Name()))
			if err != nil {
				return nil, err
			}
			modules = []func(*rego.Rego){
				rego.Query("x := {\"decision\": data.gate.policy.decision, \"exit_code\": data.gate.policy.exit_code}"),
				rego.Module(e.Name(), string(data)),
			}
		}
	}

	query, err := rego.New(modules...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("preparing rego query: %w", err)
	}
	return &Engine{query: query}, nil
}

// input is the JSON shape handed to the Rego policy.
type input struct {
	Status    string `json:"status"`
	Severity  string `json:"severity"`
	PatternID string `json:"pattern_id"`
	Block     bool   `json:"block"`
	WarnOnly  bool   `json:"warn_only"`
}

// Decide evaluates v (and whether the caller runs in warn-only mode)
// against the policy and returns the resulting Action.
func (e *Engine) Decide(ctx context.Context, v scanner.Verdict, warnOnly bool) (Action, error) {
	ctx, span := policyTracer.Start(ctx, "policy decide")
	defer span.End()

	in := input{
		Status:    string(v.Status),
		Severity:  string(v.Severity),
		PatternID: v.PatternID,
		Block:     v.Block,
		WarnOnly:  warnOnly,
	}

	raw, err := json.Marshal(in)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Action{}, err
	}
	var evalInput interface{}
	if err := json.Unmarshal(raw, &evalInput); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Action{}, err
	}

	results, err := e.query.Eval(ctx, rego.EvalInput(evalInput))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Action{}, fmt.Errorf("evaluating rego policy: %w", err)
	}

	decision := DecisionAllow
	exitCode := 0
	if len(results) > 0 && len(results[0].Expressions) > 0 {
		if m, ok := results[0].Expressions[0].Value.(map[string]interface{}); ok {
			if d, ok := m["decision"].(string); ok {
				decision = Decision(d)
			}
			if ec, ok := m["exit_code"].(json.Number); ok {
				if n, err := ec.Int64(); err == nil {
					exitCode = int(n)
				}
			} else if ec, ok := m["exit_code"].(float64); ok {
				exitCode = int(ec)
			}
		}
	}

	span.SetAttributes(
		attribute.String("gate.decision", string(decision)),
		attribute.Int("gate.exit_code", exitCode),
		attribute.String("gate.pattern_id", v.PatternID),
	)

	return Action{
		Decision: decision,
		ExitCode: exitCode,
		Reason:   fmt.Sprintf("%s: %s", decision, v.Message),
	}, nil
}
