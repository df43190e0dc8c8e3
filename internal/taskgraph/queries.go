package taskgraph

import "github.com/lazyagent/lazyagent/pkg/models"

// BlockedTask pairs a blocked task with the ids it is waiting on.
type BlockedTask struct {
	Task *models.Task
	// WaitingOn lists the dependency ids that are not yet completed,
	// in the order the task declares them.
	WaitingOn []string
}

// ReadyTasks returns, in file order, every task that is not completed
// and whose dependencies are all completed. These are the tasks the
// scheduler is free to dispatch.
func (f *TasksFile) ReadyTasks() ([]*models.Task, error) {
	if !f.validated {
		return nil, ErrNotValidated
	}

	var ready []*models.Task
	for _, t := range f.Tasks {
		if t.Completed {
			continue
		}
		if len(f.unsatisfiedDeps(t)) == 0 {
			ready = append(ready, t)
		}
	}
	f.logf("[taskgraph.ReadyTasks] %d of %d tasks ready", len(ready), len(f.Tasks))
	return ready, nil
}

// BlockedTasks returns, in file order, every incomplete task with at
// least one unsatisfied dependency, paired with those dependency ids.
func (f *TasksFile) BlockedTasks() ([]BlockedTask, error) {
	if !f.validated {
		return nil, ErrNotValidated
	}

	var blocked []BlockedTask
	for _, t := range f.Tasks {
		if t.Completed {
			continue
		}
		if waiting := f.unsatisfiedDeps(t); len(waiting) > 0 {
			blocked = append(blocked, BlockedTask{Task: t, WaitingOn: waiting})
		}
	}
	return blocked, nil
}

// unsatisfiedDeps returns the dependency ids of t that are not yet
// completed. A dependency that names no task counts as unsatisfied:
// Validate rules that out, but a graph mutated behind our back should
// read as blocked rather than ready.
func (f *TasksFile) unsatisfiedDeps(t *models.Task) []string {
	var waiting []string
	for _, dep := range t.Depends {
		d := f.taskByID(dep)
		if d == nil || !d.Completed {
			waiting = append(waiting, dep)
		}
	}
	return waiting
}

// TopologicalOrder returns all tasks in an order where every dependency
// comes before each of its dependents, computed by the same Kahn
// elimination Validate uses and failing with the same cycle error. The
// order includes completed tasks; filter by Completed if only pending
// work is wanted.
func (f *TasksFile) TopologicalOrder() ([]*models.Task, error) {
	return f.kahnOrder()
}
