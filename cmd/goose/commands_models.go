package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/goose-agent/goose/internal/models"
	"github.com/spf13/cobra"
)

// newModelsCmd lists the built-in model catalog (internal/models), the
// capability/pricing reference table used to validate
// llm.providers.*.default_model and to help `configure` suggest a model.
func newModelsCmd() *cobra.Command {
	var provider string
	var capability string

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List known models and their capabilities",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter := &models.Filter{}
			if provider != "" {
				filter.Providers = []models.Provider{models.Provider(provider)}
			}
			if capability != "" {
				filter.RequiredCapabilities = []models.Capability{models.Capability(capability)}
			}
			list := models.List(filter)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 2, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tPROVIDER\tTIER\tCONTEXT\tCAPABILITIES")
			for _, m := range list {
				fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%v\n", m.ID, m.Provider, m.Tier, m.ContextWindow, m.Capabilities)
			}
			return w.Flush()
		},
	}
	cmd.Flags().StringVar(&provider, "provider", "", "Filter by provider")
	cmd.Flags().StringVar(&capability, "capability", "", "Filter by capability (vision, tools, reasoning, ...)")
	return cmd
}
