// Package agentconfig translates internal/config into the agent package's
// runtime types. It exists as a separate package, rather than living in
// internal/agent itself, because internal/config imports internal/mcp and
// internal/mcp/bridge.go imports internal/agent; agent importing config
// directly would close that cycle.
package agentconfig

import (
	"github.com/goose-agent/goose/internal/agent"
	"github.com/goose-agent/goose/internal/config"
	"github.com/goose-agent/goose/internal/retry"
)

// RetryHarness builds a retry.Harness from session.retry config. Returns
// nil when no retry config is attached, leaving the turn to end normally
// with no success-check loop.
func RetryHarness(cfg *config.RetryConfig) *retry.Harness {
	if cfg == nil {
		return nil
	}
	checks := make([]retry.SuccessCheck, 0, len(cfg.Checks))
	for _, c := range cfg.Checks {
		checks = append(checks, retry.SuccessCheck{
			Name:    c.Name,
			Command: c.Command,
			Dir:     c.Dir,
		})
	}
	return retry.NewHarness(retry.HarnessConfig{
		MaxRetries:       cfg.MaxRetries,
		Checks:           checks,
		OnFailure:        cfg.OnFailure,
		Timeout:          cfg.Timeout,
		OnFailureTimeout: cfg.OnFailureTimeout,
	})
}

// ApprovalPolicy builds an agent.ApprovalPolicy from
// tools.execution.approval, the actual wiring point for
// tools.execution.approval.mode.
func ApprovalPolicy(cfg config.ApprovalConfig) *agent.ApprovalPolicy {
	mode := agent.ApprovalMode(cfg.Mode)
	if mode == "" {
		mode = agent.ApprovalModeApprove
	}
	policy := agent.DefaultApprovalPolicy()
	policy.Mode = mode
	if len(cfg.Allowlist) > 0 {
		policy.Allowlist = append([]string(nil), cfg.Allowlist...)
	}
	if len(cfg.Denylist) > 0 {
		policy.Denylist = append([]string(nil), cfg.Denylist...)
	}
	if len(cfg.SafeBins) > 0 {
		policy.SafeBins = append([]string(nil), cfg.SafeBins...)
	}
	policy.AskFallback = cfg.AskFallback
	if cfg.DefaultDecision != "" {
		policy.DefaultDecision = agent.ApprovalDecision(cfg.DefaultDecision)
	}
	if cfg.RequestTTL > 0 {
		policy.RequestTTL = cfg.RequestTTL
	}
	return policy
}

// ToolResultGuard builds an agent.ToolResultGuard from
// tools.execution.result_guard.
func ToolResultGuard(cfg config.ToolResultGuardConfig) agent.ToolResultGuard {
	return agent.ToolResultGuard{
		Enabled:         cfg.Enabled,
		MaxChars:        cfg.MaxChars,
		Denylist:        cfg.Denylist,
		RedactPatterns:  cfg.RedactPatterns,
		RedactionText:   cfg.RedactionText,
		TruncateSuffix:  cfg.TruncateSuffix,
		SanitizeSecrets: cfg.SanitizeSecrets,
	}
}

// RuntimeOptions builds agent.RuntimeOptions from the root config, wiring
// tools.execution.approval.mode and tools.execution.repetition into an
// assembled inspection pipeline. shellTools names the tool(s) whose
// input is inspected as a shell command (typically just "exec").
func RuntimeOptions(cfg *config.Config, shellTools ...string) agent.RuntimeOptions {
	opts := agent.DefaultRuntimeOptions()
	if cfg == nil {
		return opts
	}
	exec := cfg.Tools.Execution
	if exec.MaxIterations > 0 {
		opts.MaxIterations = exec.MaxIterations
	}
	if exec.Parallelism > 0 {
		opts.ToolParallelism = exec.Parallelism
	}
	if exec.Timeout > 0 {
		opts.ToolTimeout = exec.Timeout
	}
	if exec.MaxAttempts > 0 {
		opts.ToolMaxAttempts = exec.MaxAttempts
	}
	if exec.RetryBackoff > 0 {
		opts.ToolRetryBackoff = exec.RetryBackoff
	}
	opts.DisableToolEvents = exec.DisableEvents
	opts.MaxToolCalls = exec.MaxToolCalls
	opts.RequireApproval = exec.RequireApproval
	opts.ToolResultGuard = ToolResultGuard(exec.ResultGuard)

	checker := agent.NewApprovalChecker(ApprovalPolicy(exec.Approval))
	opts.ApprovalChecker = checker

	var repetition *agent.RepetitionInspector
	if exec.Repetition.MaxConsecutive > 0 {
		repetition = agent.NewRepetitionInspector(exec.Repetition.MaxConsecutive, exec.Repetition.NormalizeArguments)
	}
	opts.Inspector = agent.BuildInspectorChain(checker, repetition, shellTools...)

	opts.RetryHarness = RetryHarness(cfg.Session.Retry)

	return opts
}
