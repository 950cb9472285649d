package main

import (
	"context"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/goose-agent/goose/internal/agent"
	"github.com/goose-agent/goose/internal/agentconfig"
	"github.com/goose-agent/goose/internal/config"
	"github.com/goose-agent/goose/internal/cron"
	"github.com/goose-agent/goose/internal/sessions"
	"github.com/goose-agent/goose/pkg/models"
	"github.com/spf13/cobra"
)

// newScheduleCmd wraps internal/cron.Scheduler with list/run-now/status
// subcommands. Cron jobs are defined declaratively under cron.jobs in
// the config file; this subcommand inspects and drives that schedule
// rather than mutating it — config stays the source of truth.
func newScheduleCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Inspect and drive the cron job scheduler",
	}
	cmd.AddCommand(newScheduleListCmd())
	cmd.AddCommand(newScheduleRunNowCmd())
	cmd.AddCommand(newScheduleServicesStatusCmd())
	cmd.AddCommand(newScheduleCronHelpCmd())
	return cmd
}

func buildScheduler(cmd *cobra.Command) (*cron.Scheduler, *config.Config, error) {
	path := resolveConfigPath(configPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("load config %s: %w", path, err)
	}

	scheduler, err := cron.NewScheduler(cfg.Cron)
	if err != nil {
		return nil, nil, fmt.Errorf("build scheduler: %w", err)
	}

	scheduler.SetAgentRunner(cron.AgentRunnerFunc(func(ctx context.Context, job *cron.Job) error {
		return runCronJobAsAgentTurn(ctx, cfg, job)
	}))
	return scheduler, cfg, nil
}

// runCronJobAsAgentTurn re-enters the reply orchestrator with the job's
// templated message content, the same path an "agent" cron job takes in
// the long-running service (§ ambient Cron wiring).
func runCronJobAsAgentTurn(ctx context.Context, cfg *config.Config, job *cron.Job) error {
	if job.Message == nil {
		return fmt.Errorf("agent job %s missing message payload", job.ID)
	}
	llmProvider, model, err := providerFromConfig(cfg, "")
	if err != nil {
		return err
	}
	store := sessions.NewMemoryStore()
	runtime := agent.NewRuntimeWithOptions(llmProvider, store, agentconfig.RuntimeOptions(cfg, "exec"))
	runtime.SetDefaultModel(model)

	session, err := store.GetOrCreate(ctx, job.Message.SessionID, cfg.Session.DefaultAgentID, models.ChannelAPI, job.Message.SessionID)
	if err != nil {
		return err
	}
	msg := &models.Message{
		ID:        job.ID + "-" + time.Now().UTC().Format("20060102T150405"),
		SessionID: session.ID,
		Channel:   models.ChannelAPI,
		Direction: models.DirectionInbound,
		Role:      models.RoleUser,
		Content:   job.Message.Content,
	}
	ch, err := runtime.Process(ctx, session, msg)
	if err != nil {
		return err
	}
	for range ch {
	}
	return nil
}

func newScheduleListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List configured cron jobs and their next run",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduler, _, err := buildScheduler(cmd)
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTYPE\tENABLED\tNEXT RUN")
			for _, job := range scheduler.Jobs() {
				fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%s\n", job.ID, job.Name, job.Type, job.Enabled, job.NextRun.Format(time.RFC3339))
			}
			return w.Flush()
		},
	}
}

func newScheduleRunNowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run-now <job-id>",
		Short: "Run a configured cron job immediately, ignoring its schedule",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduler, _, err := buildScheduler(cmd)
			if err != nil {
				return err
			}
			if err := scheduler.RunJob(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("run job %s: %w", args[0], err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ran job %s\n", args[0])
			return nil
		},
	}
}

func newScheduleServicesStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "services-status",
		Short: "Show how many cron jobs are enabled and scheduled",
		RunE: func(cmd *cobra.Command, args []string) error {
			scheduler, cfg, err := buildScheduler(cmd)
			if err != nil {
				return err
			}
			jobs := scheduler.Jobs()
			fmt.Fprintf(cmd.OutOrStdout(), "cron enabled: %v\n", cfg.Cron.Enabled)
			fmt.Fprintf(cmd.OutOrStdout(), "jobs loaded: %d (of %d configured)\n", len(jobs), len(cfg.Cron.Jobs))
			return nil
		},
	}
}

func newScheduleCronHelpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cron-help",
		Short: "Explain the schedule block syntax (cron expr, every, at)",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), `A job's schedule block takes one of:
  cron: "*/5 * * * *"   standard 5-field cron expression
  every: 10m             fixed interval, evaluated from the job's last run
  at: "2026-08-01T09:00:00Z"  one-shot run at an absolute timestamp
Optionally set timezone to evaluate "cron" in a location other than UTC.`)
			return nil
		},
	}
}
