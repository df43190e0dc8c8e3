package taskgraph

import (
	"errors"
	"testing"

	"github.com/lazyagent/lazyagent/pkg/models"
)

func mustValidate(t *testing.T, f *TasksFile) {
	t.Helper()
	if err := f.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func ids(tasks []*models.Task) []string {
	out := make([]string, len(tasks))
	for i, task := range tasks {
		out[i] = task.ID
	}
	return out
}

func TestQueriesRequireValidation(t *testing.T) {
	f := New([]*models.Task{{ID: "a", Title: "A"}})

	if _, err := f.ReadyTasks(); !errors.Is(err, ErrNotValidated) {
		t.Errorf("ReadyTasks before Validate: expected ErrNotValidated, got %v", err)
	}
	if _, err := f.BlockedTasks(); !errors.Is(err, ErrNotValidated) {
		t.Errorf("BlockedTasks before Validate: expected ErrNotValidated, got %v", err)
	}
}

func TestTaskByID(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
	})

	task, err := f.TaskByID("b")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if task.Title != "B" {
		t.Errorf("expected title B, got %s", task.Title)
	}

	if _, err := f.TaskByID("nope"); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound, got %v", err)
	}
}

func TestReadyTasks(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A", Completed: true},
		{ID: "b", Title: "B", Depends: []string{"a"}},
		{ID: "c", Title: "C", Depends: []string{"b"}},
		{ID: "d", Title: "D"},
	})
	mustValidate(t, f)

	ready, err := f.ReadyTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := ids(ready)
	if len(got) != 2 || got[0] != "b" || got[1] != "d" {
		t.Fatalf("expected ready [b d], got %v", got)
	}

	// Completing b unblocks c; d is still ready.
	b, _ := f.TaskByID("b")
	b.Completed = true

	ready, err = f.ReadyTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got = ids(ready)
	if len(got) != 2 || got[0] != "c" || got[1] != "d" {
		t.Fatalf("expected ready [c d], got %v", got)
	}
}

func TestReadyTasksAllComplete(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A", Completed: true},
		{ID: "b", Title: "B", Completed: true, Depends: []string{"a"}},
	})
	mustValidate(t, f)

	ready, err := f.ReadyTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ready) != 0 {
		t.Errorf("expected no ready tasks, got %v", ids(ready))
	}
}

func TestReadyTasksIdempotent(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", Depends: []string{"a"}},
	})
	mustValidate(t, f)

	first, err := f.ReadyTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := f.ReadyTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(first) != len(second) {
		t.Fatalf("expected identical results, got %v then %v", ids(first), ids(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Errorf("result %d differs: %s vs %s", i, first[i].ID, second[i].ID)
		}
	}
}

func TestBlockedTasks(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", Depends: []string{"a"}},
		{ID: "c", Title: "C", Depends: []string{"a", "b"}},
	})
	mustValidate(t, f)

	blocked, err := f.BlockedTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocked) != 2 {
		t.Fatalf("expected 2 blocked tasks, got %d", len(blocked))
	}

	if blocked[0].Task.ID != "b" {
		t.Errorf("expected first blocked task b, got %s", blocked[0].Task.ID)
	}
	if len(blocked[0].WaitingOn) != 1 || blocked[0].WaitingOn[0] != "a" {
		t.Errorf("expected b waiting on [a], got %v", blocked[0].WaitingOn)
	}

	if blocked[1].Task.ID != "c" {
		t.Errorf("expected second blocked task c, got %s", blocked[1].Task.ID)
	}
	if len(blocked[1].WaitingOn) != 2 || blocked[1].WaitingOn[0] != "a" || blocked[1].WaitingOn[1] != "b" {
		t.Errorf("expected c waiting on [a b], got %v", blocked[1].WaitingOn)
	}
}

func TestBlockedTasksMissingDependencyCountsAsUnsatisfied(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", Depends: []string{"a"}},
	})
	mustValidate(t, f)

	// Simulate an external mutation that breaks referential integrity
	// after validation: the dependency must read as unsatisfied.
	f.Tasks[1].Depends = []string{"ghost"}

	blocked, err := f.BlockedTasks()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(blocked) != 1 || blocked[0].Task.ID != "b" {
		t.Fatalf("expected b blocked, got %v", blocked)
	}
	if len(blocked[0].WaitingOn) != 1 || blocked[0].WaitingOn[0] != "ghost" {
		t.Errorf("expected b waiting on [ghost], got %v", blocked[0].WaitingOn)
	}
}

func TestTopologicalOrder(t *testing.T) {
	f := New([]*models.Task{
		{ID: "deploy", Title: "Deploy", Depends: []string{"test", "build"}},
		{ID: "build", Title: "Build", Depends: []string{"setup"}},
		{ID: "test", Title: "Test", Depends: []string{"build"}},
		{ID: "setup", Title: "Setup"},
	})

	order, err := f.TopologicalOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 4 {
		t.Fatalf("expected all 4 tasks in order, got %d", len(order))
	}

	pos := make(map[string]int, len(order))
	for i, task := range order {
		pos[task.ID] = i
	}
	edges := [][2]string{
		{"setup", "build"},
		{"build", "test"},
		{"build", "deploy"},
		{"test", "deploy"},
	}
	for _, e := range edges {
		if pos[e[0]] >= pos[e[1]] {
			t.Errorf("expected %s before %s, got order %v", e[0], e[1], ids(order))
		}
	}
}

func TestTopologicalOrderDeterministic(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B"},
		{ID: "c", Title: "C"},
		{ID: "d", Title: "D", Depends: []string{"a", "b", "c"}},
	})

	first, err := f.TopologicalOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 10; i++ {
		again, err := f.TopologicalOrder()
		if err != nil {
			t.Fatalf("run %d: unexpected error: %v", i, err)
		}
		for j := range first {
			if again[j].ID != first[j].ID {
				t.Fatalf("run %d: order changed at %d: %v vs %v", i, j, ids(first), ids(again))
			}
		}
	}
}

func TestTopologicalOrderIncludesCompleted(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A", Completed: true},
		{ID: "b", Title: "B", Depends: []string{"a"}},
	})

	order, err := f.TopologicalOrder()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(order) != 2 {
		t.Errorf("expected completed tasks in the order, got %v", ids(order))
	}
}

func TestTopologicalOrderCycle(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A", Depends: []string{"b"}},
		{ID: "b", Title: "B", Depends: []string{"a"}},
	})

	if _, err := f.TopologicalOrder(); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}
