package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/lazyagent/lazyagent/internal/config"
	"github.com/lazyagent/lazyagent/internal/exec"
	"github.com/lazyagent/lazyagent/internal/loader"
	"github.com/lazyagent/lazyagent/internal/scheduler"
	"github.com/lazyagent/lazyagent/internal/state"
)

var (
	runProject string
	runDryRun  bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run ready tasks for configured projects",
	Long: `Load each project's tasks file, validate its dependency graph, and
dispatch ready tasks to the agent engine until no runnable work remains.

Completion flags are written back to the tasks file after the run, and
each run is recorded in the local history database.`,
	RunE: runRun,
}

func init() {
	runCmd.Flags().StringVar(&runProject, "project", "", "Run only the named project")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Print what would run without invoking the engine")
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	projects, err := selectProjects(cfg, runProject)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := state.Open(state.DefaultPath())
	if err != nil {
		return err
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return err
	}

	engine := exec.NewEngineRunner(exec.NewRunner(), cfg.Agent)

	var failed int
	for _, project := range projects {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := runOneProject(ctx, project, engine, db); err != nil {
			printStatus("✗", fmt.Sprintf("%s: %v", project.Name, err), color.FgRed)
			failed++
			continue
		}
		printStatus("✓", fmt.Sprintf("%s: all runnable tasks finished", project.Name), color.FgGreen)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d projects failed", failed, len(projects))
	}
	return nil
}

func runOneProject(ctx context.Context, project config.ProjectConfig, runner scheduler.TaskRunner, db *state.DB) error {
	tasks, err := loader.Load(project.TasksFile)
	if err != nil {
		return err
	}

	if tasks.RemainingTasks() == 0 {
		fmt.Printf("%s: nothing to do (%d/%d complete)\n", project.Name, tasks.CompletedTasks(), tasks.TotalTasks())
		return nil
	}

	if runDryRun {
		ready, err := tasks.ReadyTasks()
		if err != nil {
			return err
		}
		fmt.Printf("%s: would run %d ready task(s):\n", project.Name, len(ready))
		for _, t := range ready {
			fmt.Printf("  - %s: %s\n", t.ID, t.Title)
		}
		return nil
	}

	s := scheduler.New(project, tasks, runner)

	// The run row must exist before task results reference it, so
	// results are collected during the run and inserted afterwards.
	events := make(chan scheduler.Event, 64)
	s.SetEvents(events)
	done := make(chan struct{})
	var results []state.TaskResult
	go func() {
		defer close(done)
		for ev := range events {
			if tr := reportEvent(project.Name, ev); tr != nil {
				results = append(results, *tr)
			}
		}
	}()

	startedAt := time.Now().UTC()
	res, runErr := s.Run(ctx)

	close(events)
	<-done

	recordRun(db, project.Name, startedAt, tasks.TotalTasks(), res, results, runErr)

	// Persist completion flags even when the run failed partway: the
	// work that did finish should not run again next time.
	if err := loader.Save(project.TasksFile, tasks); err != nil {
		return err
	}
	return runErr
}

// reportEvent prints progress and returns a task result row for
// terminal events.
func reportEvent(projectName string, ev scheduler.Event) *state.TaskResult {
	switch ev.Type {
	case scheduler.EventTaskStarted:
		fmt.Printf("%s: running %s\n", projectName, ev.TaskID)
		return nil
	case scheduler.EventTaskCompleted:
		printStatus("✓", fmt.Sprintf("%s: %s", projectName, ev.TaskID), color.FgGreen)
		return &state.TaskResult{RunID: ev.RunID, TaskID: ev.TaskID, OK: true, FinishedAt: time.Now().UTC()}
	case scheduler.EventTaskFailed:
		printStatus("✗", fmt.Sprintf("%s: %s: %v", projectName, ev.TaskID, ev.Err), color.FgRed)
		return &state.TaskResult{RunID: ev.RunID, TaskID: ev.TaskID, OK: false, Detail: ev.Err.Error(), FinishedAt: time.Now().UTC()}
	default:
		return nil
	}
}

func recordRun(db *state.DB, projectName string, startedAt time.Time, total int, res *scheduler.Result, results []state.TaskResult, runErr error) {
	if res == nil {
		return
	}
	run := &state.Run{
		ID:         res.RunID,
		Project:    projectName,
		StartedAt:  startedAt,
		TasksTotal: total,
	}
	if err := db.RecordRunStart(run); err != nil {
		fmt.Fprintf(os.Stderr, "warning: record run: %v\n", err)
		return
	}
	for i := range results {
		if err := db.RecordTaskResult(&results[i]); err != nil {
			fmt.Fprintf(os.Stderr, "warning: record task result: %v\n", err)
		}
	}
	status := state.RunStatusSucceeded
	if runErr != nil {
		status = state.RunStatusFailed
	}
	if err := db.FinishRun(res.RunID, status, len(res.Completed)); err != nil {
		fmt.Fprintf(os.Stderr, "warning: finish run: %v\n", err)
	}
}
