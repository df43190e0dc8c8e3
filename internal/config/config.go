// Package config handles configuration loading for lazyagent. It
// supports XDG config paths, per-project overrides, and environment
// variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for lazyagent.
type Config struct {
	UI       UIConfig        `mapstructure:"ui"`
	Agent    AgentConfig     `mapstructure:"agent"`
	Projects []ProjectConfig `mapstructure:"projects"`
}

// UIConfig holds display settings.
type UIConfig struct {
	// Refresh is how often progress views re-poll project state.
	Refresh time.Duration `mapstructure:"refresh"`
}

// AgentConfig holds global settings for the coding-agent engine.
type AgentConfig struct {
	// Engine is the agent CLI binary to invoke per task.
	Engine string `mapstructure:"engine"`
	// MaxIterations is the attempt cap per task.
	MaxIterations int `mapstructure:"max_iterations"`
	// AutoPR opens a pull request after a task completes.
	AutoPR bool `mapstructure:"auto_pr"`
	// DraftPR opens pull requests as drafts.
	DraftPR bool `mapstructure:"draft_pr"`
}

// ProjectConfig describes one managed project.
type ProjectConfig struct {
	// Name identifies the project in output and run history.
	Name string `mapstructure:"name"`
	// RepoPath is the absolute path to the project's git repository.
	RepoPath string `mapstructure:"repo_path"`
	// TasksFile is the path to the project's tasks YAML file.
	TasksFile string `mapstructure:"tasks_file"`
	// BaseBranch is the branch task work starts from.
	BaseBranch string `mapstructure:"base_branch"`
	// MaxParallel caps concurrently running tasks for this project.
	MaxParallel int `mapstructure:"max_parallel"`
	// Overrides replaces selected global agent settings for this project.
	Overrides *ProjectOverrides `mapstructure:"overrides"`
}

// ProjectOverrides holds per-project replacements for agent settings.
// Nil fields fall through to the global value.
type ProjectOverrides struct {
	MaxIterations *int  `mapstructure:"max_iterations"`
	AutoPR        *bool `mapstructure:"auto_pr"`
	DraftPR       *bool `mapstructure:"draft_pr"`
}

// EffectiveMaxIterations returns the override if set, else the global value.
func (p *ProjectConfig) EffectiveMaxIterations(global AgentConfig) int {
	if p.Overrides != nil && p.Overrides.MaxIterations != nil {
		return *p.Overrides.MaxIterations
	}
	return global.MaxIterations
}

// EffectiveAutoPR returns the override if set, else the global value.
func (p *ProjectConfig) EffectiveAutoPR(global AgentConfig) bool {
	if p.Overrides != nil && p.Overrides.AutoPR != nil {
		return *p.Overrides.AutoPR
	}
	return global.AutoPR
}

// EffectiveDraftPR returns the override if set, else the global value.
func (p *ProjectConfig) EffectiveDraftPR(global AgentConfig) bool {
	if p.Overrides != nil && p.Overrides.DraftPR != nil {
		return *p.Overrides.DraftPR
	}
	return global.DraftPR
}

// Load loads configuration from the user config path and environment.
// Precedence (highest to lowest):
//  1. Environment variables (LAZYAGENT_ENGINE)
//  2. User config (~/.config/lazyagent/config.yaml)
//  3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(UserConfigDir())

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading user config: %w", err)
		}
	}

	v.SetEnvPrefix("LAZYAGENT")
	v.AutomaticEnv()
	v.BindEnv("agent.engine", "LAZYAGENT_ENGINE")

	return unmarshal(v)
}

// LoadFromPath loads configuration from a specific file.
func LoadFromPath(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}

	return unmarshal(v)
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return cfg, nil
}

// Validate checks the configuration for values the run loop cannot work with.
func (c *Config) Validate() error {
	if len(c.Projects) == 0 {
		return fmt.Errorf("at least one project must be configured")
	}

	names := make(map[string]bool, len(c.Projects))
	for i, p := range c.Projects {
		if p.Name == "" {
			return fmt.Errorf("project %d has empty name", i)
		}
		if names[p.Name] {
			return fmt.Errorf("duplicate project name %q", p.Name)
		}
		names[p.Name] = true

		if !filepath.IsAbs(p.RepoPath) {
			return fmt.Errorf("project %q repo_path must be absolute: %q", p.Name, p.RepoPath)
		}
		if p.TasksFile == "" {
			return fmt.Errorf("project %q has empty tasks_file", p.Name)
		}
		if p.BaseBranch == "" {
			return fmt.Errorf("project %q has empty base_branch", p.Name)
		}
		if p.MaxParallel <= 0 {
			return fmt.Errorf("project %q max_parallel must be greater than 0", p.Name)
		}
		if p.Overrides != nil && p.Overrides.MaxIterations != nil && *p.Overrides.MaxIterations <= 0 {
			return fmt.Errorf("project %q override max_iterations must be greater than 0", p.Name)
		}
	}
	return nil
}

// Project returns the project with the given name.
func (c *Config) Project(name string) (*ProjectConfig, error) {
	for i := range c.Projects {
		if c.Projects[i].Name == name {
			return &c.Projects[i], nil
		}
	}
	return nil, fmt.Errorf("unknown project %q", name)
}

// UserConfigDir returns the directory holding the user config file.
func UserConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "lazyagent")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "lazyagent")
}

// UserConfigPath returns the path to the user config file.
func UserConfigPath() string {
	return filepath.Join(UserConfigDir(), "config.yaml")
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ui.refresh", 200*time.Millisecond)
	v.SetDefault("agent.engine", "claude")
	v.SetDefault("agent.max_iterations", 3)
	v.SetDefault("agent.auto_pr", true)
	v.SetDefault("agent.draft_pr", false)
}
