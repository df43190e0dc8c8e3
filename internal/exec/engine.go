package exec

import (
	"context"
	"fmt"
	"strings"

	"github.com/lazyagent/lazyagent/internal/config"
	"github.com/lazyagent/lazyagent/pkg/models"
)

// EngineRunner executes tasks by invoking the configured agent engine
// CLI inside the project repository. It implements scheduler.TaskRunner.
type EngineRunner struct {
	cmd   CommandRunner
	agent config.AgentConfig
}

// NewEngineRunner creates an EngineRunner using the given command
// runner and global agent settings.
func NewEngineRunner(cmd CommandRunner, agent config.AgentConfig) *EngineRunner {
	return &EngineRunner{cmd: cmd, agent: agent}
}

// RunTask invokes the engine for one task, retrying up to the project's
// effective iteration cap. On success it opens a pull request when the
// project's effective auto_pr setting asks for one.
func (e *EngineRunner) RunTask(ctx context.Context, project config.ProjectConfig, task *models.Task) error {
	maxIterations := project.EffectiveMaxIterations(e.agent)

	var lastErr error
	for attempt := 1; attempt <= maxIterations; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		output, err := e.cmd.Run(ctx, project.RepoPath, e.agent.Engine, "-p", taskPrompt(task))
		if err == nil {
			lastErr = nil
			break
		}
		lastErr = fmt.Errorf("engine attempt %d/%d for task %s: %w: %s",
			attempt, maxIterations, task.ID, err, firstLine(output))
	}
	if lastErr != nil {
		return lastErr
	}

	if project.EffectiveAutoPR(e.agent) {
		if err := e.openPullRequest(ctx, project, task); err != nil {
			return fmt.Errorf("task %s succeeded but PR creation failed: %w", task.ID, err)
		}
	}
	return nil
}

func (e *EngineRunner) openPullRequest(ctx context.Context, project config.ProjectConfig, task *models.Task) error {
	args := []string{
		"pr", "create",
		"--base", project.BaseBranch,
		"--title", task.Title,
		"--body", fmt.Sprintf("Automated change for task `%s`.", task.ID),
	}
	if project.EffectiveDraftPR(e.agent) {
		args = append(args, "--draft")
	}
	output, err := e.cmd.Run(ctx, project.RepoPath, "gh", args...)
	if err != nil {
		return fmt.Errorf("gh pr create: %w: %s", err, firstLine(output))
	}
	return nil
}

// taskPrompt builds the engine prompt for a task.
func taskPrompt(task *models.Task) string {
	return fmt.Sprintf("Complete the following task and commit the result.\n\nTask %s: %s", task.ID, task.Title)
}

// firstLine trims command output to something that fits in an error.
func firstLine(output []byte) string {
	s := strings.TrimSpace(string(output))
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[:i]
	}
	if len(s) > 200 {
		s = s[:200]
	}
	return s
}
