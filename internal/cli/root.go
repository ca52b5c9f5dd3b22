// Package cmd wires the distcrawler subcommands onto a cobra root
// command. Configuration is env-var-first (internal/config.Load reads
// REDIS_URL, SEED_URLS, CONCURRENCY, ...); the handful of flags defined
// here only override a loaded Config for a single invocation.
package cmd

import (
	"fmt"
	"os"

	"github.com/nullmapper/distcrawler/internal/build"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "distcrawler",
	Short: "A distributed, polite web crawler.",
	Long: `distcrawler coordinates a pool of fetch workers over a shared Redis
frontier and visited set, storing crawled pages in MongoDB and
respecting per-domain rate limits and robots.txt.

Configuration is read from the environment (REDIS_URL, MONGO_URL,
SEED_URLS, CONCURRENCY, ...); see internal/config for the full list.
Subcommand flags override individual values for a single invocation.`,
	Version: build.FullVersion(),
}

// Execute adds all child commands to the root command and runs it. It
// is called once by cmd/crawler/main.go.
func Execute() {
	if err := RootCmdForTest().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// RootCmdForTest returns the root command with every subcommand
// registered, without executing it. Not part of the public API.
func RootCmdForTest() *cobra.Command {
	if !rootCmd.HasSubCommands() {
		rootCmd.AddCommand(seedCmd, statsCmd, runCmd, dumpStatusCmd, domainStatsCmd)
	}
	return rootCmd
}
