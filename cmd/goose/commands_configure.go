package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// newConfigureCmd walks the user through a minimal goose.yaml using
// interactive prompt helpers (promptString).
func newConfigureCmd() *cobra.Command {
	var nonInteractive bool
	var provider string
	var apiKey string
	var model string

	cmd := &cobra.Command{
		Use:   "configure",
		Short: "Interactively write a goose.yaml configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := resolveConfigPath(configPath)

			reader := bufio.NewReader(os.Stdin)
			if !nonInteractive {
				provider = promptString(reader, "Default LLM provider (anthropic/openai/google/ollama)", firstNonEmpty(provider, "anthropic"))
				apiKey = promptString(reader, fmt.Sprintf("%s API key", provider), apiKey)
				model = promptString(reader, "Default model (blank = provider default)", model)
			}

			doc := map[string]any{
				"llm": map[string]any{
					"default_provider": provider,
					"providers": map[string]any{
						provider: map[string]any{
							"api_key":       apiKey,
							"default_model": model,
						},
					},
				},
				"session": map[string]any{
					"max_turns": 10,
					"context_pruning": map[string]any{
						"auto_compact_threshold": 0.8,
					},
				},
				"tools": map[string]any{
					"execution": map[string]any{
						"approval": map[string]any{"mode": "smart_approve"},
					},
				},
			}

			out, err := yaml.Marshal(doc)
			if err != nil {
				return fmt.Errorf("marshal config: %w", err)
			}
			if err := os.WriteFile(path, out, 0o600); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}
			fmt.Printf("wrote %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&nonInteractive, "yes", false, "Skip interactive prompts, use flag values")
	cmd.Flags().StringVar(&provider, "provider", "", "Default LLM provider")
	cmd.Flags().StringVar(&apiKey, "api-key", "", "API key for the default provider")
	cmd.Flags().StringVar(&model, "model", "", "Default model")
	return cmd
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}

func promptString(reader *bufio.Reader, label string, defaultValue string) string {
	if defaultValue != "" {
		fmt.Printf("%s [%s]: ", label, defaultValue)
	} else {
		fmt.Printf("%s: ", label)
	}
	text, _ := reader.ReadString('\n')
	text = strings.TrimSpace(text)
	if text == "" {
		return defaultValue
	}
	return text
}

func promptInt(reader *bufio.Reader, label string, defaultValue int) int {
	text := promptString(reader, label, strconv.Itoa(defaultValue))
	n, err := strconv.Atoi(text)
	if err != nil {
		return defaultValue
	}
	return n
}
