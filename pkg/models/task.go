// Package models defines the shared data types for lazyagent.
package models

// Task represents a unit of work listed in a project's tasks file.
type Task struct {
	// ID is the unique identifier for this task within its file.
	ID string `yaml:"id" json:"id"`
	// Title is the short human-readable description of the task.
	Title string `yaml:"title" json:"title"`
	// Completed reports whether the task finished successfully.
	// Only the executor flips this; the graph never does.
	Completed bool `yaml:"completed" json:"completed"`
	// Depends lists task IDs that must complete before this task.
	Depends []string `yaml:"depends,omitempty" json:"depends,omitempty"`
	// ParallelGroup is the legacy group tag from older tasks files.
	// It is compiled down to Depends edges before scheduling.
	ParallelGroup *int `yaml:"parallel_group,omitempty" json:"parallel_group,omitempty"`
}
