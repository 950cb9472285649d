// Package main provides the goose CLI, the thin front end over the
// agent core: a streaming reply loop, tool dispatch, context-window
// management, and the provider retry/final-output contracts. The recipe
// loader, bench tooling, web UI, and ACP bridge are named collaborators
// only — this binary does not reimplement them.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during release builds.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var configPath string

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd assembles the command tree. Subcommands that wire into a
// core collaborator interface (session, run, schedule) do real work;
// subcommands naming subsystems out of scope for the agent core (recipe,
// bench, acp, web, mcp, update) return a clear "not implemented in the
// agent core" error rather than a fabricated implementation.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "goose",
		Short: "goose - an agentic LLM execution engine",
		Long: `goose drives a multi-turn think-act loop over a pool of MCP tools
and one or more LLM providers: it streams assistant content, dispatches
tool calls, gathers results, and re-enters the loop until a terminal
condition is reached (max turns, final output, or cancellation).`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (or set GOOSE_CONFIG)")

	rootCmd.AddCommand(newConfigureCmd())
	rootCmd.AddCommand(newInfoCmd())
	rootCmd.AddCommand(newUsageCmd())
	rootCmd.AddCommand(newModelsCmd())
	rootCmd.AddCommand(newSessionCmd())
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newScheduleCmd())
	rootCmd.AddCommand(newRecipeCmd())
	rootCmd.AddCommand(newBenchCmd())
	rootCmd.AddCommand(newMCPCmd())
	rootCmd.AddCommand(newACPCmd())
	rootCmd.AddCommand(newWebCmd())
	rootCmd.AddCommand(newUpdateCmd())

	return rootCmd
}

// errNotImplemented formats the "named interface only" response for
// subcommands whose subsystem is out of scope for this binary.
func errNotImplemented(subsystem string) error {
	return fmt.Errorf("%s is not implemented in the agent core (named collaborator interface only)", subsystem)
}
