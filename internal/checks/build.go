package checks

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Build runs the project build and greps its output for failures. Build tools
// have no structured output, so this is deliberately line-oriented.
type Build struct {
	Cmd     CommandRunner
	Command string
	Timeout time.Duration
}

// NewBuild creates a Build checker with the default yarn command.
func NewBuild(cmd CommandRunner) *Build {
	return &Build{
		Cmd:     cmd,
		Command: "yarn build",
		Timeout: 10 * time.Minute,
	}
}

func (c *Build) Name() string { return "build" }

// Check runs the build command. The whole project builds, so the target file
// is not substituted into the command.
func (c *Build) Check(ctx context.Context, dir, file string) ([]Finding, error) {
	stdout, stderr, exitCode, err := runTool(ctx, c.Cmd, dir, c.Command, c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("build: %w", err)
	}
	if exitCode == 0 {
		return nil, nil
	}

	var findings []Finding
	combined := stdout
	if stderr != "" {
		if combined != "" {
			combined += "\n"
		}
		combined += stderr
	}
	for _, line := range strings.Split(combined, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		lower := strings.ToLower(trimmed)
		if strings.Contains(lower, "error") || strings.Contains(lower, "failed") {
			findings = append(findings, Finding{
				Severity: SeverityError,
				Message:  trimmed,
			})
		}
	}

	if len(findings) == 0 {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Message:  fmt.Sprintf("build exit code %d: %s", exitCode, tail(combined)),
		})
	}
	return findings, nil
}

// maxOutputLen caps how much raw tool output a fallback finding retains.
const maxOutputLen = 8000

// tail keeps the end of the output. Error summaries and tracebacks are
// usually at the end.
func tail(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxOutputLen {
		s = "…(truncated)\n" + s[len(s)-maxOutputLen:]
	}
	return s
}
