package agent

import (
	"context"
	"encoding/json"

	"github.com/goose-agent/goose/internal/tools/policy"
	"github.com/goose-agent/goose/internal/tools/security"
	"github.com/goose-agent/goose/pkg/models"
)

// InspectionDecision is the aggregate verdict a tool call receives from the
// inspection pipeline.
type InspectionDecision string

const (
	InspectionApproved      InspectionDecision = "approved"
	InspectionNeedsApproval InspectionDecision = "needs_approval"
	InspectionDenied        InspectionDecision = "denied"
)

// rank orders decisions from least to most restrictive so a chain can track
// the worst verdict seen so far.
func (d InspectionDecision) rank() int {
	switch d {
	case InspectionDenied:
		return 2
	case InspectionNeedsApproval:
		return 1
	default:
		return 0
	}
}

// InspectionResult carries a stage's verdict plus the reason and the stage
// name that produced it, for logging and for the tool result surfaced back
// to the model.
type InspectionResult struct {
	Decision InspectionDecision
	Reason   string
	Stage    string
}

// Inspector is one stage of the tool inspection pipeline.
type Inspector interface {
	Name() string
	Inspect(ctx context.Context, agentID string, tc models.ToolCall) InspectionResult
}

// InspectorChain runs a fixed, ordered sequence of inspectors over a tool
// call and returns the single worst verdict. A denial from any stage
// short-circuits the remaining stages; a needs_approval verdict keeps
// running so a later stage (e.g. repetition) can still escalate to denied.
type InspectorChain struct {
	stages []Inspector
}

// NewInspectorChain assembles the security -> permission -> repetition
// pipeline (order matters: security rejects dangerous commands outright
// before the permission inspector ever asks for approval on them, and
// repetition runs last since it depends on the call actually being
// otherwise approvable).
func NewInspectorChain(stages ...Inspector) *InspectorChain {
	return &InspectorChain{stages: stages}
}

func (c *InspectorChain) Inspect(ctx context.Context, agentID string, tc models.ToolCall) InspectionResult {
	best := InspectionResult{Decision: InspectionApproved, Stage: "none"}
	for _, stage := range c.stages {
		res := stage.Inspect(ctx, agentID, tc)
		if res.Decision.rank() > best.Decision.rank() {
			best = res
		}
		if res.Decision == InspectionDenied {
			return best
		}
	}
	return best
}

// SecurityInspector rejects tool calls whose command payload contains
// unquoted shell metacharacters, grounded on
// internal/tools/security's quote-aware command analysis. Only tools named
// in ShellTools are inspected; everything else passes through.
type SecurityInspector struct {
	shellTools map[string]struct{}
}

// NewSecurityInspector builds a SecurityInspector that inspects the given
// (normalized) tool names as shell commands.
func NewSecurityInspector(shellTools ...string) *SecurityInspector {
	m := make(map[string]struct{}, len(shellTools))
	for _, t := range shellTools {
		m[policy.NormalizeTool(t)] = struct{}{}
	}
	return &SecurityInspector{shellTools: m}
}

func (s *SecurityInspector) Name() string { return "security" }

func (s *SecurityInspector) Inspect(_ context.Context, _ string, tc models.ToolCall) InspectionResult {
	if _, ok := s.shellTools[policy.NormalizeTool(tc.Name)]; !ok {
		return InspectionResult{Decision: InspectionApproved, Stage: s.Name()}
	}
	cmd := extractShellCommand(tc.Input)
	if cmd == "" {
		return InspectionResult{Decision: InspectionApproved, Stage: s.Name()}
	}
	analysis := security.AnalyzeCommandQuoteAware(cmd)
	if analysis.IsSafe {
		return InspectionResult{Decision: InspectionApproved, Stage: s.Name()}
	}
	return InspectionResult{Decision: InspectionNeedsApproval, Reason: analysis.Reason, Stage: s.Name()}
}

func extractShellCommand(input json.RawMessage) string {
	var payload struct {
		Command string `json:"command"`
		Cmd     string `json:"cmd"`
	}
	if len(input) == 0 {
		return ""
	}
	if err := json.Unmarshal(input, &payload); err != nil {
		return ""
	}
	if payload.Command != "" {
		return payload.Command
	}
	return payload.Cmd
}

// PermissionInspector wraps an ApprovalChecker so it can sit as a stage in
// the inspection chain.
type PermissionInspector struct {
	Checker *ApprovalChecker
}

func (p *PermissionInspector) Name() string { return "permission" }

func (p *PermissionInspector) Inspect(ctx context.Context, agentID string, tc models.ToolCall) InspectionResult {
	if p.Checker == nil {
		return InspectionResult{Decision: InspectionApproved, Stage: p.Name()}
	}
	decision, reason := p.Checker.Check(ctx, agentID, tc)
	switch decision {
	case ApprovalDenied:
		return InspectionResult{Decision: InspectionDenied, Reason: reason, Stage: p.Name()}
	case ApprovalPending:
		return InspectionResult{Decision: InspectionNeedsApproval, Reason: reason, Stage: p.Name()}
	default:
		return InspectionResult{Decision: InspectionApproved, Reason: reason, Stage: p.Name()}
	}
}

// BuildInspectorChain assembles the standard security -> permission ->
// repetition pipeline from a config-derived approval policy and repetition
// settings. shellTools names the tool(s) whose input carries a shell
// command (e.g. "exec").
func BuildInspectorChain(checker *ApprovalChecker, repetition *RepetitionInspector, shellTools ...string) *InspectorChain {
	stages := []Inspector{NewSecurityInspector(shellTools...)}
	stages = append(stages, &PermissionInspector{Checker: checker})
	if repetition != nil {
		stages = append(stages, repetition)
	}
	return NewInspectorChain(stages...)
}
