// Package commands defines the CLI command structure and flag bindings.
//
// This package contains cobra command definitions that handle argument
// parsing, flag binding, and validation. Command execution is delegated
// to handler functions in the handlers package.
package commands

import "github.com/spf13/cobra"

// Root returns the root command for the lakeforge CLI.
func Root() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lakeforge",
		Short: "Provision S3 data lakes with a Glue catalog",
	}

	cmd.AddCommand(Apply())
	cmd.AddCommand(Plan())
	cmd.AddCommand(Destroy())
	cmd.AddCommand(Crawl())

	cmd.AddCommand(Version())
	cmd.AddCommand(Completion())

	return cmd
}
