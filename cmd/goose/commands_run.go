package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/goose-agent/goose/internal/agent"
	"github.com/goose-agent/goose/internal/agentconfig"
	"github.com/goose-agent/goose/internal/config"
	"github.com/goose-agent/goose/internal/mcp"
	modelcatalog "github.com/goose-agent/goose/internal/models"
	"github.com/goose-agent/goose/internal/sessions"
	"github.com/goose-agent/goose/internal/tools/exec"
	"github.com/goose-agent/goose/internal/usage"
	"github.com/goose-agent/goose/pkg/models"
	"github.com/spf13/cobra"
)

// usageTracker aggregates token usage across every `run` invocation in
// this process. A single CLI invocation only ever drives one turn, so
// GetSummary() here mostly matters for --fallback retries within the
// same process; a long-lived host embedding agent.Runtime would keep
// this Tracker alive across many turns instead.
var usageTracker = usage.NewTracker(usage.DefaultTrackerConfig())

// newRunCmd drives one reply-loop turn against stdin/--instructions,
// streaming AgentEvents to stdout as they arrive. It is the CLI's thin
// front end over agent.Runtime.
func newRunCmd() *cobra.Command {
	var instructions string
	var provider string
	var sessionKey string
	var recipe string
	var workspace string
	var fallbacks []string

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a single agentic turn against a provider",
		RunE: func(cmd *cobra.Command, args []string) error {
			if recipe != "" {
				return errNotImplemented("recipe")
			}

			text := strings.TrimSpace(instructions)
			if text == "" {
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return fmt.Errorf("read instructions from stdin: %w", err)
				}
				text = strings.TrimSpace(string(data))
			}
			if text == "" {
				return fmt.Errorf("no instructions given (pass --instructions or pipe text on stdin)")
			}

			path := resolveConfigPath(configPath)
			cfg, err := config.Load(path)
			if err != nil {
				return fmt.Errorf("load config %s: %w", path, err)
			}

			if workspace == "" {
				workspace = cfg.Session.WorkingDir
			}
			if workspace == "" {
				workspace = "."
			}
			if sessionKey == "" {
				sessionKey = uuid.NewString()
			}

			out := bufio.NewWriter(cmd.OutOrStdout())
			defer out.Flush()

			runTurn := func(ctx context.Context, providerID, model string) (bool, error) {
				return true, runAgentTurn(ctx, cfg, providerID, model, workspace, sessionKey, text, out)
			}

			if len(fallbacks) == 0 {
				_, err := runTurn(cmd.Context(), provider, "")
				return err
			}

			// RunWithModelFallback only tries the primary candidate when both
			// fields are set, so resolve provider/model once up front the same
			// way a single-shot run would.
			_, primaryModel, err := providerFromConfig(cfg, provider)
			if err != nil {
				return err
			}
			primaryProvider := provider
			if primaryProvider == "" {
				primaryProvider = cfg.LLM.DefaultProvider
			}

			fbCfg := &modelcatalog.FallbackConfig{
				PrimaryProvider: primaryProvider,
				PrimaryModel:    primaryModel,
				Fallbacks:       fallbacks,
			}
			result, err := modelcatalog.RunWithModelFallback(cmd.Context(), fbCfg, runTurn, func(p, m string, err error, attempt, total int) {
				fmt.Fprintf(cmd.ErrOrStderr(), "[fallback] %s/%s failed (attempt %d/%d): %v\n", p, m, attempt, total, err)
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "[fallback] completed on %s/%s after %d attempt(s)\n", result.Provider, result.Model, len(result.Attempts))
			return nil
		},
	}

	cmd.Flags().StringVar(&instructions, "instructions", "", "Instructions text (default: read stdin)")
	cmd.Flags().StringVar(&provider, "provider", "", "Provider ID (defaults to llm.default_provider)")
	cmd.Flags().StringVar(&sessionKey, "session", "", "Session key to resume or create")
	cmd.Flags().StringVar(&recipe, "recipe", "", "Recipe file (not implemented in the agent core)")
	cmd.Flags().StringVar(&workspace, "workspace", "", "Working directory for exec/process tools")
	cmd.Flags().StringSliceVar(&fallbacks, "fallback", nil, "Fallback \"provider/model\" candidates tried in order if the primary fails")
	return cmd
}

// runAgentTurn builds a provider/runtime for providerID and drives one
// turn, writing rendered AgentEvents to out. Returns an error (and thus
// triggers the next --fallback candidate) if the run itself fails to
// start or the stream reports a run.error event. An empty modelOverride
// uses the provider's configured default model; --fallback candidates
// pass their own model explicitly.
func runAgentTurn(ctx context.Context, cfg *config.Config, providerID, modelOverride, workspace, sessionKey, text string, out *bufio.Writer) error {
	llmProvider, model, err := providerFromConfig(cfg, providerID)
	if err != nil {
		return err
	}
	if modelOverride != "" {
		model = modelOverride
	}

	store := sessions.NewMemoryStore()
	runtime := agent.NewRuntimeWithOptions(llmProvider, store, agentconfig.RuntimeOptions(cfg, "exec"))
	runtime.SetDefaultModel(model)

	wireTools(runtime, cfg, workspace)

	if cfg.MCP.Enabled {
		mgr := mcp.NewManager(&cfg.MCP, slog.Default())
		if err := mgr.Start(ctx); err != nil {
			return fmt.Errorf("start mcp manager: %w", err)
		}
		defer mgr.Stop()
		mcp.RegisterTools(runtime, mgr)
	}

	session, err := store.GetOrCreate(ctx, sessionKey, cfg.Session.DefaultAgentID, models.ChannelAPI, sessionKey)
	if err != nil {
		return fmt.Errorf("get or create session: %w", err)
	}

	msg := &models.Message{
		ID:        uuid.NewString(),
		SessionID: session.ID,
		Channel:   models.ChannelAPI,
		Direction: models.DirectionInbound,
		Role:      models.RoleUser,
		Content:   text,
	}

	events, err := runtime.ProcessStream(ctx, session, msg)
	if err != nil {
		return fmt.Errorf("process turn: %w", err)
	}

	stats, runErr := renderEvents(out, events)
	if stats != nil {
		usageTracker.Record(usage.Record{
			ID:       stats.RunID,
			Provider: providerID,
			Model:    model,
			Usage: usage.Usage{
				InputTokens:  int64(stats.InputTokens),
				OutputTokens: int64(stats.OutputTokens),
			},
		})
		if totals := usageTracker.GetTotals(providerID, model); totals != nil {
			fmt.Fprintf(out, "[usage] this run: %d in / %d out, %s/%s session total: %s\n",
				stats.InputTokens, stats.OutputTokens, providerID, model, usage.FormatUsage(totals))
			out.Flush()
		}
	}
	return runErr
}

// wireTools registers the exec/process shell tools every provider-backed
// turn needs regardless of which MCP servers are configured.
func wireTools(runtime *agent.Runtime, cfg *config.Config, workspace string) {
	mgr := exec.NewManager(workspace)
	runtime.RegisterTool(exec.NewExecTool("exec", mgr))
	runtime.RegisterTool(exec.NewProcessTool(mgr))
}

// renderEvents prints a terse line per AgentEvent: model deltas stream as
// raw text, tool lifecycle and retry events as bracketed status lines. A
// run.error event is returned as an error so --fallback can move on to
// the next candidate. The run's final RunStats (if the stream carried
// one) is returned so the caller can feed internal/usage's tracker.
func renderEvents(out *bufio.Writer, events <-chan models.AgentEvent) (*models.RunStats, error) {
	var runErr error
	var stats *models.RunStats
	for evt := range events {
		switch evt.Type {
		case models.AgentEventModelDelta:
			if evt.Stream != nil {
				fmt.Fprint(out, evt.Stream.Delta)
			}
		case models.AgentEventToolStarted:
			if evt.Tool != nil {
				fmt.Fprintf(out, "\n[tool] %s\n", evt.Tool.Name)
			}
		case models.AgentEventToolFinished:
			if evt.Tool != nil {
				status := "ok"
				if !evt.Tool.Success {
					status = "error"
				}
				fmt.Fprintf(out, "[tool] %s %s (%s)\n", evt.Tool.Name, status, evt.Tool.Elapsed)
			}
		case models.AgentEventRetryChecksEvaluated:
			if evt.Retry != nil {
				fmt.Fprintf(out, "\n[retry] %d checks evaluated, passed=%v\n", evt.Retry.ChecksRun, evt.Retry.Passed)
			}
		case models.AgentEventRetryAttempt:
			if evt.Retry != nil {
				fmt.Fprintf(out, "[retry] attempt %d\n", evt.Retry.Attempt)
			}
		case models.AgentEventRunError:
			if evt.Error != nil {
				fmt.Fprintf(out, "\n[error] %s\n", evt.Error.Message)
				runErr = fmt.Errorf("run error: %s", evt.Error.Message)
			}
		case models.AgentEventStats:
			if evt.Stats != nil {
				stats = evt.Stats.Run
			}
		case models.AgentEventRunFinished:
			fmt.Fprintln(out)
		}
		out.Flush()
	}
	return stats, runErr
}
