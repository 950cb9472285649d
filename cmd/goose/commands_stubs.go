package main

import "github.com/spf13/cobra"

// The following subcommands name collaborator subsystems out of scope
// for the agent core: a recipe/deeplink loader,
// a benchmarking harness, the Agent Control Protocol bridge, a web UI, and
// a self-update mechanism. Each is registered so `goose <name> --help`
// documents the intended surface, but returns errNotImplemented rather
// than a fabricated implementation the core has no collaborator for.

func newRecipeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recipe",
		Short: "Validate, list, or deeplink recipe files (not implemented in the agent core)",
	}
	stub := func(use, short string) *cobra.Command {
		return &cobra.Command{
			Use:   use,
			Short: short,
			RunE: func(cmd *cobra.Command, args []string) error {
				return errNotImplemented("recipe " + use)
			},
		}
	}
	cmd.AddCommand(stub("validate <file>", "Validate a recipe file against its schema"))
	cmd.AddCommand(stub("list", "List recipes on the configured recipe path"))
	cmd.AddCommand(stub("deeplink <file>", "Generate a shareable deeplink for a recipe"))
	return cmd
}

func newBenchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "bench",
		Short: "Run the agent benchmark harness (not implemented in the agent core)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errNotImplemented("bench")
		},
	}
}

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run goose as an MCP server exposing its own tools (not implemented in the agent core)",
	}
	cmd.RunE = func(cmd *cobra.Command, args []string) error {
		return errNotImplemented("mcp server mode")
	}
	return cmd
}

func newACPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "acp",
		Short: "Speak the Agent Control Protocol over stdio (not implemented in the agent core)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errNotImplemented("acp")
		},
	}
}

func newWebCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "web",
		Short: "Serve the browser UI (not implemented in the agent core)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errNotImplemented("web")
		},
	}
}

func newUpdateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Self-update the goose binary (not implemented in the agent core)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return errNotImplemented("update")
		},
	}
}
