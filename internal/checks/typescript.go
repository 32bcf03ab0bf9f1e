package checks

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// TypeScript runs tsc --noEmit against a single file.
type TypeScript struct {
	Cmd     CommandRunner
	Command string
	Timeout time.Duration
}

// NewTypeScript creates a TypeScript checker with the default npx command.
func NewTypeScript(cmd CommandRunner) *TypeScript {
	return &TypeScript{
		Cmd:     cmd,
		Command: "npx tsc --noEmit {file}",
	}
}

func (c *TypeScript) Name() string { return "tsc" }

// tsc output format: src/auth.ts(42,5): error TS2345: Argument of type...
var tscLineRe = regexp.MustCompile(`^(.+)\((\d+),(\d+)\):\s+error\s+(TS\d+):\s+(.+)$`)

// Check runs the compiler and collects error lines. tsc has no structured
// output mode, so a missing file is caught by a stat before the run.
func (c *TypeScript) Check(ctx context.Context, dir, file string) ([]Finding, error) {
	if _, err := os.Stat(filepath.Join(dir, file)); os.IsNotExist(err) {
		return nil, fmt.Errorf("tsc %q: %w", file, ErrFileNotFound)
	}

	stdout, stderr, exitCode, err := runTool(ctx, c.Cmd, dir, expandCommand(c.Command, file), c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("tsc: %w", err)
	}

	var findings []Finding
	for _, line := range strings.Split(stdout, "\n") {
		m := tscLineRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		lineNum, _ := strconv.Atoi(m[2])
		col, _ := strconv.Atoi(m[3])
		findings = append(findings, Finding{
			Severity: SeverityError,
			Rule:     m[4],
			Message:  m[5],
			File:     m[1],
			Line:     lineNum,
			Column:   col,
		})
	}

	if len(findings) == 0 && exitCode != 0 {
		findings = append(findings, Finding{
			Severity: SeverityError,
			Message:  fmt.Sprintf("tsc exit code %d: %s", exitCode, tail(stdout+stderr)),
		})
	}
	return findings, nil
}
