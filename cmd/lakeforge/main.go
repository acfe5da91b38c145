// Package main is the entry point for the lakeforge CLI.
//
// lakeforge provisions S3-backed data lakes: a multi-zone bucket with
// versioning, encryption, and lifecycle rules, plus a Glue catalog
// database and crawler wired to an IAM role. Provisioning is
// declarative and idempotent; repeated runs converge on the same
// resources.
//
// Commands: apply, plan, destroy, crawl.
//
// For detailed usage information, run:
//
//	lakeforge --help
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/lakeforge/lakeforge/cmd/lakeforge/commands"
)

// Version information set by goreleaser at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	commands.SetVersionInfo(version, commit, date)
	if err := commands.Root().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
