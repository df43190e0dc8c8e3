package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazyagent/lazyagent/internal/config"
	"github.com/lazyagent/lazyagent/internal/loader"
	"github.com/lazyagent/lazyagent/internal/state"
)

var (
	statusProject string
	statusWatch   bool
	statusRuns    bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show task progress for configured projects",
	Long: `Display each project's task progress: completed counts, tasks that
are ready to run, and blocked tasks with the dependencies they wait on.

With --watch, re-renders whenever a tasks file changes on disk.`,
	RunE: runStatus,
}

func init() {
	statusCmd.Flags().StringVar(&statusProject, "project", "", "Show only the named project")
	statusCmd.Flags().BoolVar(&statusWatch, "watch", false, "Re-render when tasks files change")
	statusCmd.Flags().BoolVar(&statusRuns, "runs", false, "Include recent run history")
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	projects, err := selectProjects(cfg, statusProject)
	if err != nil {
		return err
	}

	if err := printAllProjects(projects); err != nil {
		return err
	}

	if !statusWatch {
		return nil
	}
	return watchProjects(projects)
}

func printAllProjects(projects []config.ProjectConfig) error {
	for i, project := range projects {
		if i > 0 {
			fmt.Println()
		}
		if err := printProjectStatus(project); err != nil {
			printStatus("✗", fmt.Sprintf("%s: %v", project.Name, err), color.FgRed)
		}
	}
	return nil
}

func printProjectStatus(project config.ProjectConfig) error {
	tasks, err := loader.Load(project.TasksFile)
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	fmt.Printf("%s  %d/%d tasks complete\n", bold.Sprint(project.Name), tasks.CompletedTasks(), tasks.TotalTasks())

	ready, err := tasks.ReadyTasks()
	if err != nil {
		return err
	}
	for _, t := range ready {
		printStatus("→", fmt.Sprintf("ready   %s: %s", t.ID, t.Title), color.FgCyan)
	}

	blocked, err := tasks.BlockedTasks()
	if err != nil {
		return err
	}
	for _, b := range blocked {
		printStatus("⧗", fmt.Sprintf("blocked %s: waiting on %s", b.Task.ID, strings.Join(b.WaitingOn, ", ")), color.FgYellow)
	}

	if statusRuns {
		printRecentRuns(project.Name)
	}
	return nil
}

func printRecentRuns(projectName string) {
	db, err := state.Open(state.DefaultPath())
	if err != nil {
		return
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return
	}

	runs, err := db.RecentRuns(projectName, 5)
	if err != nil || len(runs) == 0 {
		return
	}
	fmt.Println("  recent runs:")
	for _, r := range runs {
		fmt.Printf("    %s  %s  %d/%d tasks  %s\n",
			r.StartedAt.Local().Format("2006-01-02 15:04"), r.Status, r.TasksCompleted, r.TasksTotal, r.ID)
	}

	if runs[0].Status == state.RunStatusFailed {
		results, err := db.TaskResults(runs[0].ID)
		if err != nil {
			return
		}
		for _, tr := range results {
			if !tr.OK {
				printStatus("✗", fmt.Sprintf("last run: %s: %s", tr.TaskID, tr.Detail), color.FgRed)
			}
		}
	}
}

// watchProjects blocks, re-rendering whenever any project's tasks file
// changes, until interrupted.
func watchProjects(projects []config.ProjectConfig) error {
	changes := make(chan string)
	for _, project := range projects {
		w, err := loader.Watch(project.TasksFile)
		if err != nil {
			return err
		}
		defer w.Close()
		go func(w *loader.Watcher) {
			for path := range w.Changes() {
				changes <- path
			}
		}(w)
	}

	interrupt := make(chan os.Signal, 1)
	signal.Notify(interrupt, os.Interrupt, syscall.SIGTERM)

	for {
		select {
		case <-interrupt:
			return nil
		case path := <-changes:
			fmt.Printf("\n%s changed\n\n", path)
			if err := printAllProjects(projects); err != nil {
				return err
			}
		}
	}
}
