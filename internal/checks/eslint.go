package checks

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// ESLint runs eslint against a single file and parses its JSON output.
type ESLint struct {
	Cmd        CommandRunner
	Command    string // check command template, {file} substituted
	FixCommand string // auto-fix command template, {file} substituted
	Timeout    time.Duration
}

// NewESLint creates an ESLint checker with the default npx commands.
func NewESLint(cmd CommandRunner) *ESLint {
	return &ESLint{
		Cmd:        cmd,
		Command:    "npx eslint --format=json {file}",
		FixCommand: "npx eslint --fix {file}",
	}
}

func (c *ESLint) Name() string { return "eslint" }

type eslintFile struct {
	FilePath string          `json:"filePath"`
	Messages []eslintMessage `json:"messages"`
}

type eslintMessage struct {
	RuleID   string `json:"ruleId"`
	Severity int    `json:"severity"` // 1=warning, 2=error
	Message  string `json:"message"`
	Line     int    `json:"line"`
	Column   int    `json:"column"`
}

// Check runs the lint command and normalizes its findings. A missing target
// file is reported via ErrFileNotFound.
func (c *ESLint) Check(ctx context.Context, dir, file string) ([]Finding, error) {
	stdout, stderr, exitCode, err := runTool(ctx, c.Cmd, dir, expandCommand(c.Command, file), c.Timeout)
	if err != nil {
		return nil, fmt.Errorf("eslint: %w", err)
	}

	// ESLint reports a missing file as a pattern-match failure on stderr.
	if strings.Contains(stderr, "No files matching the pattern") {
		return nil, fmt.Errorf("eslint %q: %w", file, ErrFileNotFound)
	}

	var files []eslintFile
	if jsonErr := json.Unmarshal([]byte(stdout), &files); jsonErr != nil {
		if exitCode == 0 {
			return nil, nil
		}
		return []Finding{{
			Severity: SeverityError,
			Message:  fmt.Sprintf("eslint exit code %d (unparseable output): %s", exitCode, tail(stdout+stderr)),
		}}, nil
	}

	var findings []Finding
	for _, f := range files {
		for _, m := range f.Messages {
			sev := SeverityInfo
			if m.Severity >= 2 {
				sev = SeverityError
			}
			findings = append(findings, Finding{
				Severity: sev,
				Rule:     m.RuleID,
				Message:  m.Message,
				File:     f.FilePath,
				Line:     m.Line,
				Column:   m.Column,
			})
		}
	}
	return findings, nil
}

// Fix runs eslint --fix on the file. Fix commands often exit non-zero when
// unfixable problems remain, so the exit code is ignored.
func (c *ESLint) Fix(ctx context.Context, dir, file string) error {
	_, _, _, err := runTool(ctx, c.Cmd, dir, expandCommand(c.FixCommand, file), c.Timeout)
	if err != nil {
		return fmt.Errorf("eslint fix: %w", err)
	}
	return nil
}
