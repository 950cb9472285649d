package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/goose-agent/goose/internal/sessions"
	"github.com/goose-agent/goose/pkg/models"
	"github.com/spf13/cobra"
)

// newSessionCmd groups the session inspection subcommands against
// internal/sessions.Store. The CLI has no durable session database
// configured here — persistence is the embedding application's concern —
// so these operate against the ephemeral in-process store populated by
// `goose run` within the same process invocation only; list/remove
// against a real deployment's store requires wiring a DSN.
func newSessionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect and manage conversation sessions",
	}
	cmd.AddCommand(newSessionListCmd())
	cmd.AddCommand(newSessionExportCmd())
	cmd.AddCommand(newSessionRemoveCmd())
	return cmd
}

func newSessionListCmd() *cobra.Command {
	var agentID string
	var channel string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List known sessions for an agent",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := sessions.NewMemoryStore()
			sessionList, err := store.List(cmd.Context(), agentID, sessions.ListOptions{
				Channel: models.ChannelType(channel),
				Limit:   limit,
			})
			if err != nil {
				return fmt.Errorf("list sessions: %w", err)
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tAGENT\tCHANNEL\tKEY\tUPDATED")
			for _, s := range sessionList {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.AgentID, s.Channel, s.Key, s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"))
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&agentID, "agent", "", "Agent ID to filter by")
	cmd.Flags().StringVar(&channel, "channel", "", "Channel to filter by (api, slack, discord, ...)")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum sessions to list")
	return cmd
}

func newSessionExportCmd() *cobra.Command {
	var historyLimit int

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export a session's message history as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			store := sessions.NewMemoryStore()
			session, err := store.Get(ctx, args[0])
			if err != nil {
				return fmt.Errorf("get session: %w", err)
			}
			history, err := store.GetHistory(ctx, args[0], historyLimit)
			if err != nil {
				return fmt.Errorf("get history: %w", err)
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Session *models.Session   `json:"session"`
				History []*models.Message `json:"history"`
			}{session, history})
		},
	}
	cmd.Flags().IntVar(&historyLimit, "limit", 0, "Maximum messages to export (0 = all)")
	return cmd
}

func newSessionRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <session-id>",
		Short: "Delete a session and its history",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store := sessions.NewMemoryStore()
			if err := store.Delete(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("delete session: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "removed session %s\n", args[0])
			return nil
		},
	}
}
