package commands

import (
	"github.com/spf13/cobra"

	"github.com/lakeforge/lakeforge/cmd/lakeforge/handlers"
)

// Apply returns the command for provisioning and updating data lakes.
//
// Optional flags:
//
//	--config, -c: Path to lake configuration YAML file (default: lakeforge.yaml)
//
// Credentials come from the default AWS credential chain.
func Apply() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the data lake",
		Long: `Create or update your data lake.

This command provisions the lake bucket with its zones, lifecycle rules,
and encryption, then the Glue catalog database, crawler, and IAM role.
Every resource is checked against the desired state first; resources
that already match are left untouched, so re-running apply is always
safe.

The resolved resource names are written to <project>-<environment>.lake.yaml
next to the configuration file. Keep that file: it is how later runs
find the lake again.

Examples:
  # Provision using lakeforge.yaml in the current directory
  lakeforge apply

  # Provision using a specific config file
  lakeforge apply -c production.yaml

  # Re-apply after configuration changes
  lakeforge apply`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: lakeforge.yaml)")

	return cmd
}
