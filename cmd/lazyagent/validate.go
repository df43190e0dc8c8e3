package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazyagent/lazyagent/internal/loader"
)

var validateProject string

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate tasks files without running anything",
	Long: `Check every configured project's tasks file for structural problems:
duplicate task ids, dependencies on tasks that don't exist, and
circular dependencies. Nothing is executed.`,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().StringVar(&validateProject, "project", "", "Validate only the named project")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	projects, err := selectProjects(cfg, validateProject)
	if err != nil {
		return err
	}

	var failed int
	for _, project := range projects {
		tasks, err := loader.Load(project.TasksFile)
		if err != nil {
			printStatus("✗", fmt.Sprintf("%s: %v", project.Name, err), color.FgRed)
			failed++
			continue
		}
		printStatus("✓", fmt.Sprintf("%s: %d tasks, graph is valid", project.Name, tasks.TotalTasks()), color.FgGreen)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed validation", failed, len(projects))
	}
	return nil
}
