package taskgraph

import (
	"sort"

	"github.com/lazyagent/lazyagent/pkg/models"
)

// ExpandGroups compiles legacy parallel_group tags into explicit
// dependency edges: every task tagged with a group depends on every
// task in the next lower tagged group. Explicit Depends entries are
// kept; untagged tasks are untouched. The file must be re-validated
// afterwards since edges changed.
//
// The group scheme is a strict subset of explicit dependencies (a total
// order of groups) and exists only so older tasks files keep working.
func (f *TasksFile) ExpandGroups() {
	byGroup := make(map[int][]*models.Task)
	var groups []int
	for _, t := range f.Tasks {
		if t.ParallelGroup == nil {
			continue
		}
		g := *t.ParallelGroup
		if _, seen := byGroup[g]; !seen {
			groups = append(groups, g)
		}
		byGroup[g] = append(byGroup[g], t)
	}
	if len(groups) < 2 {
		return
	}
	sort.Ints(groups)

	for i := 1; i < len(groups); i++ {
		prev := byGroup[groups[i-1]]
		for _, t := range byGroup[groups[i]] {
			for _, p := range prev {
				if !containsID(t.Depends, p.ID) {
					t.Depends = append(t.Depends, p.ID)
				}
			}
		}
	}
	f.validated = false
}

func containsID(ids []string, id string) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// TasksByGroup returns the tasks tagged with the given group, in file order.
func (f *TasksFile) TasksByGroup(group int) []*models.Task {
	var out []*models.Task
	for _, t := range f.Tasks {
		if t.ParallelGroup != nil && *t.ParallelGroup == group {
			out = append(out, t)
		}
	}
	return out
}

// IncompleteTasksByGroup returns the incomplete tasks tagged with the
// given group, in file order.
func (f *TasksFile) IncompleteTasksByGroup(group int) []*models.Task {
	var out []*models.Task
	for _, t := range f.Tasks {
		if !t.Completed && t.ParallelGroup != nil && *t.ParallelGroup == group {
			out = append(out, t)
		}
	}
	return out
}

// NextParallelGroup returns the lowest group tag that still has
// incomplete tasks. The second return is false when no incomplete task
// carries a group tag.
func (f *TasksFile) NextParallelGroup() (int, bool) {
	min, found := 0, false
	for _, t := range f.Tasks {
		if t.Completed || t.ParallelGroup == nil {
			continue
		}
		if !found || *t.ParallelGroup < min {
			min = *t.ParallelGroup
			found = true
		}
	}
	return min, found
}
