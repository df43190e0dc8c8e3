package taskgraph

import "github.com/lazyagent/lazyagent/pkg/models"

// Validate checks the structural well-formedness of the file: id
// uniqueness, referential integrity of every Depends entry, and
// acyclicity of the dependency relation, in that order, stopping at the
// first failure. Queries must not be run against a file that has not
// passed Validate.
func (f *TasksFile) Validate() error {
	f.validated = false
	f.logf("[taskgraph.Validate] validating %d tasks", len(f.Tasks))

	ids := make(map[string]bool, len(f.Tasks))
	for _, t := range f.Tasks {
		if ids[t.ID] {
			return &DuplicateIDError{ID: t.ID}
		}
		ids[t.ID] = true
	}

	for _, t := range f.Tasks {
		for _, dep := range t.Depends {
			if !ids[dep] {
				return &DanglingDependencyError{TaskID: t.ID, DependsOn: dep}
			}
		}
	}

	if _, err := f.kahnOrder(); err != nil {
		return err
	}

	f.validated = true
	f.logf("[taskgraph.Validate] ok")
	return nil
}

// kahnOrder runs Kahn's elimination over the dependency relation and
// returns every task with each dependency ahead of its dependents. The
// removal queue is FIFO and seeded in file order, so ties between
// simultaneously unblocked tasks resolve the same way on every run.
// If elimination stops short, the leftover tasks form a cycle and a
// CycleError naming them is returned.
func (f *TasksFile) kahnOrder() ([]*models.Task, error) {
	index := make(map[string]*models.Task, len(f.Tasks))
	inDegree := make(map[string]int, len(f.Tasks))
	dependents := make(map[string][]string, len(f.Tasks))

	for _, t := range f.Tasks {
		index[t.ID] = t
		inDegree[t.ID] = 0
	}
	for _, t := range f.Tasks {
		for _, dep := range t.Depends {
			if _, ok := index[dep]; !ok {
				// Unknown ids are Validate's problem; skip here so a
				// standalone order request doesn't panic on bad input.
				continue
			}
			inDegree[t.ID]++
			dependents[dep] = append(dependents[dep], t.ID)
		}
	}

	queue := make([]string, 0, len(f.Tasks))
	for _, t := range f.Tasks {
		if inDegree[t.ID] == 0 {
			queue = append(queue, t.ID)
		}
	}

	order := make([]*models.Task, 0, len(f.Tasks))
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		order = append(order, index[id])
		for _, depID := range dependents[id] {
			inDegree[depID]--
			if inDegree[depID] == 0 {
				queue = append(queue, depID)
			}
		}
	}

	if len(order) < len(index) {
		removed := make(map[string]bool, len(order))
		for _, t := range order {
			removed[t.ID] = true
		}
		var members []string
		for _, t := range f.Tasks {
			if !removed[t.ID] {
				members = append(members, t.ID)
			}
		}
		return nil, &CycleError{Members: members}
	}
	return order, nil
}
