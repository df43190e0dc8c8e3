// Package scheduler drives a validated tasks file to completion: it
// repeatedly queries the graph for ready tasks, dispatches them to a
// TaskRunner under the project's parallel limit, and flips completion
// flags as work finishes. All graph mutation happens here, serialized
// behind one mutex, so the graph itself never needs to be concurrent.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/lazyagent/lazyagent/internal/config"
	"github.com/lazyagent/lazyagent/internal/taskgraph"
	"github.com/lazyagent/lazyagent/pkg/models"
)

// TaskRunner executes one task to completion. Implementations may run
// for minutes; they must honor ctx cancellation.
type TaskRunner interface {
	RunTask(ctx context.Context, project config.ProjectConfig, task *models.Task) error
}

// EventType identifies a scheduler progress event.
type EventType string

const (
	// EventTaskStarted fires when a task is dispatched to the runner.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted fires when a task finishes successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed fires when a task's runner returns an error.
	EventTaskFailed EventType = "task_failed"
)

// Event reports scheduler progress to an optional consumer.
type Event struct {
	RunID  string
	Type   EventType
	TaskID string
	Err    error
}

// Result summarizes one Run call.
type Result struct {
	RunID     string
	Completed []string
	Failed    []string
	// Skipped lists incomplete tasks that never became runnable
	// because a dependency failed.
	Skipped []string
}

// Scheduler runs one project's task graph.
type Scheduler struct {
	project config.ProjectConfig
	tasks   *taskgraph.TasksFile
	runner  TaskRunner

	events chan<- Event

	// mu serializes every read and mutation of the tasks file while
	// runners execute concurrently.
	mu sync.Mutex
}

// New creates a Scheduler for the given project. The tasks file must
// already be validated.
func New(project config.ProjectConfig, tasks *taskgraph.TasksFile, runner TaskRunner) *Scheduler {
	return &Scheduler{
		project: project,
		tasks:   tasks,
		runner:  runner,
	}
}

// SetEvents sets an optional channel receiving progress events. The
// channel is never closed by the scheduler.
func (s *Scheduler) SetEvents(ch chan<- Event) {
	s.events = ch
}

func (s *Scheduler) emit(ev Event) {
	if s.events != nil {
		s.events <- ev
	}
}

// Run executes ready tasks in waves until the project has no remaining
// work, a dependency failure strands the rest, or ctx is cancelled.
// Failed tasks are not retried; their dependents are reported as
// skipped. Completion flags on the tasks file reflect all successful
// work when Run returns, whatever the error.
func (s *Scheduler) Run(ctx context.Context) (*Result, error) {
	if !s.tasks.Validated() {
		return nil, taskgraph.ErrNotValidated
	}

	res := &Result{RunID: uuid.NewString()}
	failed := make(map[string]bool)

	for {
		if err := ctx.Err(); err != nil {
			return res, err
		}

		batch, err := s.nextBatch(failed)
		if err != nil {
			return res, err
		}
		if len(batch) == 0 {
			break
		}

		s.runBatch(ctx, batch, failed, res)
	}

	s.finishResult(failed, res)

	if len(res.Failed) > 0 {
		return res, fmt.Errorf("%d of %d tasks failed", len(res.Failed), s.tasks.TotalTasks())
	}
	if remaining := s.remaining(); remaining > 0 {
		// A validated acyclic graph always has a ready task while work
		// remains, so this is unreachable without external mutation.
		return res, fmt.Errorf("scheduling stalled with %d tasks remaining", remaining)
	}
	return res, nil
}

// nextBatch picks the next wave of runnable tasks, capped at the
// project's parallel limit.
func (s *Scheduler) nextBatch(failed map[string]bool) ([]*models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ready, err := s.tasks.ReadyTasks()
	if err != nil {
		return nil, err
	}

	var batch []*models.Task
	for _, t := range ready {
		if failed[t.ID] {
			continue
		}
		batch = append(batch, t)
		if len(batch) == s.project.MaxParallel {
			break
		}
	}
	return batch, nil
}

func (s *Scheduler) runBatch(ctx context.Context, batch []*models.Task, failed map[string]bool, res *Result) {
	var wg sync.WaitGroup
	for _, task := range batch {
		s.emit(Event{RunID: res.RunID, Type: EventTaskStarted, TaskID: task.ID})

		wg.Add(1)
		go func(task *models.Task) {
			defer wg.Done()
			err := s.runner.RunTask(ctx, s.project, task)

			s.mu.Lock()
			if err != nil {
				failed[task.ID] = true
				res.Failed = append(res.Failed, task.ID)
			} else {
				task.Completed = true
				res.Completed = append(res.Completed, task.ID)
			}
			s.mu.Unlock()

			if err != nil {
				s.emit(Event{RunID: res.RunID, Type: EventTaskFailed, TaskID: task.ID, Err: err})
			} else {
				s.emit(Event{RunID: res.RunID, Type: EventTaskCompleted, TaskID: task.ID})
			}
		}(task)
	}
	wg.Wait()
}

// finishResult records incomplete tasks that neither ran nor failed.
func (s *Scheduler) finishResult(failed map[string]bool, res *Result) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tasks.IncompleteTasks() {
		if !failed[t.ID] {
			res.Skipped = append(res.Skipped, t.ID)
		}
	}
}

func (s *Scheduler) remaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tasks.RemainingTasks()
}
