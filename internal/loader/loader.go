// Package loader reads and writes project tasks files. It owns the I/O
// and error-context concerns so the task graph itself stays pure.
package loader

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/lazyagent/lazyagent/internal/taskgraph"
)

// Load reads a tasks YAML file, expands legacy group tags into
// dependency edges, and validates the result. Only a validated file is
// returned; a malformed file fails the whole load.
func Load(path string) (*taskgraph.TasksFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file %s: %w", path, err)
	}
	return Parse(data, path)
}

// Parse unmarshals raw tasks YAML and validates it. The name is used
// only for error context.
func Parse(data []byte, name string) (*taskgraph.TasksFile, error) {
	var f taskgraph.TasksFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tasks file %s: %w", name, err)
	}
	for i, t := range f.Tasks {
		if t.ID == "" {
			return nil, fmt.Errorf("parse tasks file %s: task %d has empty id", name, i)
		}
	}

	f.ExpandGroups()
	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("validate tasks file %s: %w", name, err)
	}
	return &f, nil
}

// Save writes the tasks file back to disk, persisting completion flags
// flipped since it was loaded. The write goes through a temp file and
// rename so a crash cannot leave a half-written tasks file.
func Save(path string, f *taskgraph.TasksFile) error {
	data, err := yaml.Marshal(f)
	if err != nil {
		return fmt.Errorf("marshal tasks file %s: %w", path, err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write tasks file %s: %w", path, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("write tasks file %s: %w", path, err)
	}
	return nil
}
