package main

import (
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "lazyagent",
	Short: "Multi-project coding-agent automation",
	Long: `lazyagent drives coding agents across multiple projects from
declarative tasks files.

Each project lists its tasks in a YAML file with explicit dependencies
between them. lazyagent validates the dependency graph, dispatches
ready tasks to the configured agent engine up to each project's
parallel limit, and records completion as work finishes.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default: ~/.config/lazyagent/config.yaml)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)
}
