package retry

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"
)

// SuccessCheck is a shell command whose exit code decides whether a reply
// turn succeeded. All checks attached to a HarnessConfig must pass
// for the turn to be accepted.
type SuccessCheck struct {
	Name    string
	Command string
	Dir     string
}

// HarnessConfig configures the retry harness that wraps reply completion
//. It is distinct from Config/DoWithValue
// above, which back generic exponential-backoff retries for outbound
// requests (providers, MCP dispatch); HarnessConfig governs the
// end-of-turn success-check loop instead.
type HarnessConfig struct {
	// MaxRetries is the maximum number of retry attempts after the first
	// failing check run. Must be >= 1 for the harness to ever retry.
	MaxRetries int

	// Checks run, in order, at the end of a turn with no tool calls. All
	// must exit 0 for the turn to be accepted.
	Checks []SuccessCheck

	// OnFailure is an optional shell command run after a failing check
	// round, before the conversation is reset and the loop re-entered.
	// Its exit code is ignored.
	OnFailure string

	// Timeout bounds each SuccessCheck run.
	Timeout time.Duration

	// OnFailureTimeout bounds the OnFailure command.
	OnFailureTimeout time.Duration
}

// CheckResult records the outcome of a single SuccessCheck run.
type CheckResult struct {
	Name     string
	Command  string
	Passed   bool
	ExitCode int
	Output   string
	Err      error
}

// Harness runs RetryConfig's success checks and on_failure hook around
// reply completion.
type Harness struct {
	cfg      HarnessConfig
	attempts int
}

// NewHarness builds a Harness from a HarnessConfig. A zero-value
// MaxRetries is treated as 1 (a single retry attempt) — max_retries is
// never allowed to disable the harness entirely.
func NewHarness(cfg HarnessConfig) *Harness {
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.OnFailureTimeout <= 0 {
		cfg.OnFailureTimeout = cfg.Timeout
	}
	return &Harness{cfg: cfg}
}

// Attempts returns the number of retry attempts consumed so far.
func (h *Harness) Attempts() int {
	return h.attempts
}

// Evaluate runs every configured SuccessCheck in order under cfg.Timeout.
// It stops at the first failing check (later checks are not run) and
// reports all results gathered up to and including the failure.
func (h *Harness) Evaluate(ctx context.Context) (passed bool, results []CheckResult) {
	for _, check := range h.cfg.Checks {
		res := runShellCheck(ctx, check, h.cfg.Timeout)
		results = append(results, res)
		if !res.Passed {
			return false, results
		}
	}
	return true, results
}

// ShouldRetry reports whether a failing Evaluate should trigger another
// attempt: retry_attempts < max_retries. It increments
// the internal attempt counter as a side effect when it returns true.
func (h *Harness) ShouldRetry() bool {
	if h.attempts >= h.cfg.MaxRetries {
		return false
	}
	h.attempts++
	return true
}

// RunOnFailure runs the configured on_failure shell command, if any,
// ignoring its exit code. Errors starting the process
// (not its exit code) are returned so callers can log them.
func (h *Harness) RunOnFailure(ctx context.Context) error {
	if h.cfg.OnFailure == "" {
		return nil
	}
	runCtx, cancel := context.WithTimeout(ctx, h.cfg.OnFailureTimeout)
	defer cancel()
	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", h.cfg.OnFailure)
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("on_failure: start: %w", err)
	}
	_ = cmd.Wait()
	if runCtx.Err() != nil {
		return fmt.Errorf("on_failure: %w", runCtx.Err())
	}
	return nil
}

func runShellCheck(ctx context.Context, check SuccessCheck, timeout time.Duration) CheckResult {
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, "/bin/sh", "-c", check.Command)
	if check.Dir != "" {
		cmd.Dir = check.Dir
	}
	var buf bytes.Buffer
	cmd.Stdout = &buf
	cmd.Stderr = &buf

	err := cmd.Run()
	result := CheckResult{
		Name:    check.Name,
		Command: check.Command,
		Output:  buf.String(),
	}
	if runCtx.Err() == context.DeadlineExceeded {
		result.Err = fmt.Errorf("check %q timed out after %s", check.Name, timeout)
		result.ExitCode = -1
		result.Passed = false
		return result
	}
	result.ExitCode = exitCode(err)
	result.Passed = err == nil
	if err != nil && result.ExitCode == -1 {
		result.Err = err
	}
	return result
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode()
	}
	return -1
}
