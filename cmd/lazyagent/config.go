package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lazyagent/lazyagent/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the resolved configuration",
	RunE:  runConfig,
}

func runConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	path := configPath
	if path == "" {
		path = config.UserConfigPath()
	}
	fmt.Printf("config file: %s\n\n", path)

	fmt.Printf("ui.refresh:           %s\n", cfg.UI.Refresh)
	fmt.Printf("agent.engine:         %s\n", cfg.Agent.Engine)
	fmt.Printf("agent.max_iterations: %d\n", cfg.Agent.MaxIterations)
	fmt.Printf("agent.auto_pr:        %t\n", cfg.Agent.AutoPR)
	fmt.Printf("agent.draft_pr:       %t\n", cfg.Agent.DraftPR)

	for _, p := range cfg.Projects {
		fmt.Printf("\nproject %s:\n", p.Name)
		fmt.Printf("  repo_path:      %s\n", p.RepoPath)
		fmt.Printf("  tasks_file:     %s\n", p.TasksFile)
		fmt.Printf("  base_branch:    %s\n", p.BaseBranch)
		fmt.Printf("  max_parallel:   %d\n", p.MaxParallel)
		fmt.Printf("  max_iterations: %d (effective)\n", p.EffectiveMaxIterations(cfg.Agent))
		fmt.Printf("  auto_pr:        %t (effective)\n", p.EffectiveAutoPR(cfg.Agent))
		fmt.Printf("  draft_pr:       %t (effective)\n", p.EffectiveDraftPR(cfg.Agent))
	}
	return nil
}
