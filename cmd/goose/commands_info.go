package main

import (
	"fmt"

	"github.com/goose-agent/goose/internal/config"
	"github.com/goose-agent/goose/internal/usage"
	"github.com/spf13/cobra"
)

func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show build and configuration information",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("goose %s (commit %s, built %s)\n", version, commit, date)

			path := resolveConfigPath(configPath)
			cfg, err := config.Load(path)
			if err != nil {
				fmt.Printf("config: %s (not loaded: %v)\n", path, err)
				return nil
			}
			fmt.Printf("config: %s\n", path)
			fmt.Printf("default provider: %s\n", cfg.LLM.DefaultProvider)
			fmt.Printf("max turns: %d\n", cfg.Session.MaxTurns)
			fmt.Printf("auto-compact threshold: %.2f\n", cfg.Session.ContextPruning.AutoCompactThreshold)
			fmt.Printf("mcp servers configured: %d\n", len(cfg.MCP.Servers))
			fmt.Printf("cron jobs configured: %d\n", len(cfg.Cron.Jobs))
			return nil
		},
	}
}

// newUsageCmd reports billing usage fetched directly from each configured
// provider's admin API, distinct from `run`'s per-turn token counters.
func newUsageCmd() *cobra.Command {
	var provider string

	cmd := &cobra.Command{
		Use:   "usage",
		Short: "Report billing usage for configured LLM providers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(resolveConfigPath(configPath))
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}

			registry := usage.NewUsageFetcherRegistry()
			if pc, ok := cfg.LLM.Providers["anthropic"]; ok && pc.APIKey != "" {
				registry.Register(&usage.AnthropicUsageFetcher{APIKey: pc.APIKey})
			}
			if pc, ok := cfg.LLM.Providers["openai"]; ok && pc.APIKey != "" {
				registry.Register(&usage.OpenAIUsageFetcher{APIKey: pc.APIKey})
			}

			if provider != "" {
				result, err := registry.Fetch(cmd.Context(), provider)
				if err != nil {
					return err
				}
				fmt.Print(usage.FormatProviderUsage(result))
				return nil
			}

			if len(registry.Providers()) == 0 {
				fmt.Println("no provider API keys configured for usage reporting")
				return nil
			}
			for _, result := range registry.FetchAll(cmd.Context()) {
				fmt.Print(usage.FormatProviderUsage(result))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Report usage for a single provider (default: all configured)")
	return cmd
}
