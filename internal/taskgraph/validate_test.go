package taskgraph

import (
	"errors"
	"testing"

	"github.com/lazyagent/lazyagent/pkg/models"
)

func TestValidateSimple(t *testing.T) {
	f := New([]*models.Task{
		{ID: "task-1", Title: "Task 1"},
		{ID: "task-2", Title: "Task 2", Depends: []string{"task-1"}},
		{ID: "task-3", Title: "Task 3", Depends: []string{"task-1", "task-2"}},
	})

	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !f.Validated() {
		t.Error("expected file to be marked validated")
	}
}

func TestValidateEmpty(t *testing.T) {
	f := New(nil)
	if err := f.Validate(); err != nil {
		t.Fatalf("unexpected error for empty file: %v", err)
	}
}

func TestValidateDuplicateID(t *testing.T) {
	f := New([]*models.Task{
		{ID: "task-1", Title: "Task 1"},
		{ID: "task-2", Title: "Task 2"},
		{ID: "task-1", Title: "Task 1 again"},
	})

	err := f.Validate()
	if err == nil {
		t.Fatal("expected error for duplicate id")
	}
	var dup *DuplicateIDError
	if !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError, got %T: %v", err, err)
	}
	if dup.ID != "task-1" {
		t.Errorf("expected offending id task-1, got %s", dup.ID)
	}
	if f.Validated() {
		t.Error("failed validation must not mark the file validated")
	}
}

func TestValidateDanglingDependency(t *testing.T) {
	f := New([]*models.Task{
		{ID: "task-1", Title: "Task 1"},
		{ID: "task-2", Title: "Task 2", Depends: []string{"task-9"}},
	})

	err := f.Validate()
	if err == nil {
		t.Fatal("expected error for dangling dependency")
	}
	var dangling *DanglingDependencyError
	if !errors.As(err, &dangling) {
		t.Fatalf("expected DanglingDependencyError, got %T: %v", err, err)
	}
	if dangling.TaskID != "task-2" || dangling.DependsOn != "task-9" {
		t.Errorf("expected task-2 -> task-9, got %s -> %s", dangling.TaskID, dangling.DependsOn)
	}
}

func TestValidateDirectCycle(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A", Depends: []string{"b"}},
		{ID: "b", Title: "B", Depends: []string{"a"}},
	})

	err := f.Validate()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestValidateSelfCycle(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A", Depends: []string{"a"}},
	})

	if err := f.Validate(); !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected cycle error, got %v", err)
	}
}

func TestValidateCycleAmongAcyclicTasks(t *testing.T) {
	// The cycle must be found even when acyclic tasks share the file.
	f := New([]*models.Task{
		{ID: "setup", Title: "Setup"},
		{ID: "a", Title: "A", Depends: []string{"c"}},
		{ID: "b", Title: "B", Depends: []string{"a"}},
		{ID: "c", Title: "C", Depends: []string{"b"}},
		{ID: "docs", Title: "Docs", Depends: []string{"setup"}},
	})

	err := f.Validate()
	if !errors.Is(err, ErrCycleDetected) {
		t.Fatalf("expected cycle error, got %v", err)
	}
	var cycle *CycleError
	if !errors.As(err, &cycle) {
		t.Fatalf("expected CycleError, got %T", err)
	}
	want := []string{"a", "b", "c"}
	if len(cycle.Members) != len(want) {
		t.Fatalf("expected members %v, got %v", want, cycle.Members)
	}
	for i, id := range want {
		if cycle.Members[i] != id {
			t.Errorf("member %d: expected %s, got %s", i, id, cycle.Members[i])
		}
	}
}

func TestValidateCheckOrder(t *testing.T) {
	// Duplicate ids are reported before the dangling reference and the
	// cycle that the same file also contains.
	f := New([]*models.Task{
		{ID: "a", Title: "A", Depends: []string{"missing", "a"}},
		{ID: "a", Title: "A again"},
	})

	var dup *DuplicateIDError
	if err := f.Validate(); !errors.As(err, &dup) {
		t.Fatalf("expected DuplicateIDError first, got %v", err)
	}
}

func TestValidateRepeatedCallsStayValid(t *testing.T) {
	f := New([]*models.Task{
		{ID: "a", Title: "A"},
		{ID: "b", Title: "B", Depends: []string{"a"}},
	})

	for i := 0; i < 2; i++ {
		if err := f.Validate(); err != nil {
			t.Fatalf("call %d: unexpected error: %v", i, err)
		}
	}
}
