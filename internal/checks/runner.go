package checks

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CommandRunner abstracts command execution for testability.
type CommandRunner interface {
	Run(ctx context.Context, dir string, command string) (stdout string, stderr string, exitCode int, err error)
}

// ExecRunner implements CommandRunner by shelling out.
type ExecRunner struct{}

func (e *ExecRunner) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	cmd := exec.CommandContext(ctx, "sh", "-c", command)
	cmd.Dir = dir

	var stdoutBuf, stderrBuf strings.Builder
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()
	exitCode := 0
	if err != nil {
		if exitErr, ok := err.(*exec.ExitError); ok {
			exitCode = exitErr.ExitCode()
		} else {
			return stdoutBuf.String(), stderrBuf.String(), -1, fmt.Errorf("exec: %w", err)
		}
	}
	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// defaultTimeout bounds a single tool invocation when the checker has none set.
const defaultTimeout = 2 * time.Minute

// runTool executes one tool command with a timeout. A deadline hit is reported
// as an error rather than a finding so callers can distinguish infrastructure
// failures from tool failures.
func runTool(ctx context.Context, cmd CommandRunner, dir, command string, timeout time.Duration) (string, string, int, error) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	stdout, stderr, exitCode, err := cmd.Run(ctx, dir, command)
	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return stdout, stderr, exitCode, fmt.Errorf("command timed out after %s: %q", timeout, command)
		}
		return stdout, stderr, exitCode, err
	}
	return stdout, stderr, exitCode, nil
}

// expandCommand substitutes the target file path into a command template.
func expandCommand(template, file string) string {
	return strings.ReplaceAll(template, "{file}", file)
}
