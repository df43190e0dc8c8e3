package taskgraph

import (
	"errors"
	"fmt"
	"strings"
)

// ErrCycleDetected indicates a circular dependency was found in the task graph.
var ErrCycleDetected = errors.New("circular dependency detected")

// ErrNotValidated indicates a query was made against a TasksFile that has
// not passed Validate.
var ErrNotValidated = errors.New("tasks file has not been validated")

// ErrTaskNotFound indicates a lookup for an id with no matching task.
var ErrTaskNotFound = errors.New("task not found")

// DuplicateIDError reports two tasks sharing the same id.
type DuplicateIDError struct {
	ID string
}

func (e *DuplicateIDError) Error() string {
	return fmt.Sprintf("duplicate task id %q", e.ID)
}

// DanglingDependencyError reports a task depending on an id that names
// no task in the file.
type DanglingDependencyError struct {
	TaskID    string
	DependsOn string
}

func (e *DanglingDependencyError) Error() string {
	return fmt.Sprintf("task %s depends on non-existent task %s", e.TaskID, e.DependsOn)
}

// CycleError reports a circular dependency. Members lists the ids the
// Kahn elimination could not remove, in file order.
type CycleError struct {
	Members []string
}

func (e *CycleError) Error() string {
	if len(e.Members) == 0 {
		return ErrCycleDetected.Error()
	}
	return fmt.Sprintf("%s among tasks: %s", ErrCycleDetected, strings.Join(e.Members, ", "))
}

// Unwrap lets errors.Is match ErrCycleDetected.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
