package commands

import (
	"github.com/spf13/cobra"

	"github.com/lakeforge/lakeforge/cmd/lakeforge/handlers"
)

// Crawl returns the command for triggering a catalog crawler run.
func Crawl() *cobra.Command {
	var configPath string
	var wait bool

	cmd := &cobra.Command{
		Use:   "crawl",
		Short: "Run the catalog crawler",
		Long: `Start a schema-discovery run of the catalog crawler.

If a run is already in progress no new run is started. With --wait the
command polls until the run finishes and exits non-zero when it failed.

Examples:
  # Fire and forget
  lakeforge crawl

  # Block until the run completes
  lakeforge crawl --wait`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Crawl(cmd.Context(), configPath, wait)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: lakeforge.yaml)")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait for the crawler run to finish")

	return cmd
}
