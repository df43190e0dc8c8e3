// Package taskgraph provides the dependency graph over a project's tasks.
// Tasks are nodes and each Depends entry is a directed edge from the
// dependency to the dependent.
package taskgraph

import (
	"fmt"

	"github.com/lazyagent/lazyagent/pkg/models"
)

// TasksFile is an ordered collection of tasks plus the validation and
// query algorithms the scheduler consumes.
//
// A TasksFile must pass Validate before any query is run against it.
// After a successful Validate the only permitted mutation is flipping a
// task's Completed flag; adding or removing tasks or edges invalidates
// the graph and requires calling Validate again.
type TasksFile struct {
	// Tasks holds the tasks in the order the file lists them. That
	// order carries no dependency meaning but is preserved in every
	// order-sensitive output.
	Tasks []*models.Task `yaml:"tasks" json:"tasks"`

	validated bool
	debugLog  func(format string, args ...interface{})
}

// New creates an empty TasksFile.
func New(tasks []*models.Task) *TasksFile {
	return &TasksFile{Tasks: tasks}
}

// SetDebugLog sets the debug logging function.
func (f *TasksFile) SetDebugLog(fn func(format string, args ...interface{})) {
	f.debugLog = fn
}

func (f *TasksFile) logf(format string, args ...interface{}) {
	if f.debugLog != nil {
		f.debugLog(format, args...)
	}
}

// Validated reports whether the file has passed Validate since it was
// last structurally modified.
func (f *TasksFile) Validated() bool {
	return f.validated
}

// TaskByID returns the task with the given id.
func (f *TasksFile) TaskByID(id string) (*models.Task, error) {
	if t := f.taskByID(id); t != nil {
		return t, nil
	}
	return nil, fmt.Errorf("task %q: %w", id, ErrTaskNotFound)
}

func (f *TasksFile) taskByID(id string) *models.Task {
	for _, t := range f.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// TotalTasks returns the number of tasks in the file.
func (f *TasksFile) TotalTasks() int {
	return len(f.Tasks)
}

// CompletedTasks returns the number of completed tasks.
func (f *TasksFile) CompletedTasks() int {
	n := 0
	for _, t := range f.Tasks {
		if t.Completed {
			n++
		}
	}
	return n
}

// RemainingTasks returns the number of tasks not yet completed.
func (f *TasksFile) RemainingTasks() int {
	return len(f.Tasks) - f.CompletedTasks()
}

// IncompleteTasks returns the not-yet-completed tasks in file order.
func (f *TasksFile) IncompleteTasks() []*models.Task {
	var out []*models.Task
	for _, t := range f.Tasks {
		if !t.Completed {
			out = append(out, t)
		}
	}
	return out
}

// CompletedTaskList returns the completed tasks in file order.
func (f *TasksFile) CompletedTaskList() []*models.Task {
	var out []*models.Task
	for _, t := range f.Tasks {
		if t.Completed {
			out = append(out, t)
		}
	}
	return out
}
