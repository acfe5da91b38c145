package commands

import (
	"github.com/spf13/cobra"

	"github.com/lakeforge/lakeforge/cmd/lakeforge/handlers"
)

// Plan returns the command for previewing a reconciliation run.
func Plan() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show what apply would change",
		Long: `Show what apply would change without touching anything.

The live state of every resource is compared against the configuration
and the resulting action list is printed. No mutation is performed.

Examples:
  # Preview using lakeforge.yaml in the current directory
  lakeforge plan

  # Preview using a specific config file
  lakeforge plan -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: lakeforge.yaml)")

	return cmd
}
