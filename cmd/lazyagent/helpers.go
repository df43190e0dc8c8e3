package main

import (
	"fmt"

	"github.com/fatih/color"

	"github.com/lazyagent/lazyagent/internal/config"
)

// loadConfig loads from --config when given, else the user config path.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// selectProjects returns the configured projects, narrowed to one when
// name is non-empty.
func selectProjects(cfg *config.Config, name string) ([]config.ProjectConfig, error) {
	if name == "" {
		return cfg.Projects, nil
	}
	p, err := cfg.Project(name)
	if err != nil {
		return nil, err
	}
	return []config.ProjectConfig{*p}, nil
}

func printStatus(symbol, message string, attr color.Attribute) {
	c := color.New(attr)
	fmt.Printf("%s %s\n", c.Sprint(symbol), message)
}
