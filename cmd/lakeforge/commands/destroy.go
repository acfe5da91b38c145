package commands

import (
	"github.com/spf13/cobra"

	"github.com/lakeforge/lakeforge/cmd/lakeforge/handlers"
)

// Destroy returns the command for tearing down a data lake.
func Destroy() *cobra.Command {
	var configPath string
	var force bool

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Delete the data lake and its catalog",
		Long: `Delete the data lake and its catalog resources.

Resources are removed in reverse creation order: crawler, database,
IAM role, then the bucket. A bucket that still holds data is refused
unless --force is given or force_destroy is set in the configuration;
--force empties the bucket first, permanently deleting all objects and
versions.

Examples:
  # Destroy an empty lake
  lakeforge destroy

  # Destroy including all stored data
  lakeforge destroy --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), configPath, force)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: lakeforge.yaml)")
	cmd.Flags().BoolVar(&force, "force", false, "Empty the bucket before deleting it")

	return cmd
}
