package checks

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// mockCmd records calls and returns configured results.
type mockCmd struct {
	calls   []mockCall
	results []mockResult
	callIdx int
}

type mockCall struct {
	Dir     string
	Command string
}

type mockResult struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Err      error
}

func (m *mockCmd) Run(ctx context.Context, dir string, command string) (string, string, int, error) {
	m.calls = append(m.calls, mockCall{Dir: dir, Command: command})
	if m.callIdx >= len(m.results) {
		return "", "", 0, nil
	}
	r := m.results[m.callIdx]
	m.callIdx++
	return r.Stdout, r.Stderr, r.ExitCode, r.Err
}

const eslintOutput = `[{"filePath":"src/Button.tsx","messages":[
  {"ruleId":"no-unused-vars","severity":2,"message":"'x' is defined but never used.","line":3,"column":7},
  {"ruleId":"prefer-const","severity":1,"message":"'y' is never reassigned.","line":5,"column":5}
]}]`

func TestESLint_Check(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{Stdout: eslintOutput, ExitCode: 1}}}
	c := NewESLint(mock)

	findings, err := c.Check(context.Background(), "/repo", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if findings[0].Severity != SeverityError || findings[0].Rule != "no-unused-vars" {
		t.Errorf("unexpected first finding: %+v", findings[0])
	}
	if findings[1].Severity != SeverityInfo {
		t.Errorf("expected warning mapped to info severity, got %d", findings[1].Severity)
	}
	if FailureCount(findings) != 1 {
		t.Errorf("expected 1 failure, got %d", FailureCount(findings))
	}
	if mock.calls[0].Command != "npx eslint --format=json src/Button.tsx" {
		t.Errorf("unexpected command: %q", mock.calls[0].Command)
	}
}

func TestESLint_Check_CleanFile(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{Stdout: `[{"filePath":"src/Button.tsx","messages":[]}]`, ExitCode: 0}}}
	c := NewESLint(mock)

	findings, err := c.Check(context.Background(), "/repo", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
}

func TestESLint_Check_FileNotFound(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{
		Stderr:   "Oops! Something went wrong!\nNo files matching the pattern \"src/Gone.tsx\" were found.",
		ExitCode: 2,
	}}}
	c := NewESLint(mock)

	_, err := c.Check(context.Background(), "/repo", "src/Gone.tsx")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestESLint_Check_UnparseableOutput(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{Stdout: "not json", ExitCode: 1}}}
	c := NewESLint(mock)

	findings, err := c.Check(context.Background(), "/repo", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 || findings[0].Severity != SeverityError {
		t.Fatalf("expected a single error finding, got %+v", findings)
	}
}

func TestESLint_Fix(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{ExitCode: 1}}}
	c := NewESLint(mock)

	// Non-zero exit from --fix is not an error.
	if err := c.Fix(context.Background(), "/repo", "src/Button.tsx"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if mock.calls[0].Command != "npx eslint --fix src/Button.tsx" {
		t.Errorf("unexpected command: %q", mock.calls[0].Command)
	}
}

func TestTypeScript_Check(t *testing.T) {
	dir := t.TempDir()
	if err := os.MkdirAll(filepath.Join(dir, "src"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "src", "Button.tsx"), []byte("export {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	out := "src/Button.tsx(42,5): error TS2345: Argument of type 'string' is not assignable.\n" +
		"Found 1 error.\n"
	mock := &mockCmd{results: []mockResult{{Stdout: out, ExitCode: 2}}}
	c := NewTypeScript(mock)

	findings, err := c.Check(context.Background(), dir, "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected 1 finding, got %d", len(findings))
	}
	f := findings[0]
	if f.Rule != "TS2345" || f.Line != 42 || f.Column != 5 {
		t.Errorf("unexpected finding: %+v", f)
	}
}

func TestTypeScript_Check_FileNotFound(t *testing.T) {
	mock := &mockCmd{}
	c := NewTypeScript(mock)

	_, err := c.Check(context.Background(), t.TempDir(), "src/Gone.tsx")
	if !errors.Is(err, ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
	if len(mock.calls) != 0 {
		t.Errorf("expected no command run for a missing file, got %d", len(mock.calls))
	}
}

func TestTypeScript_Check_NonZeroExitWithoutErrorLines(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "a.ts"), []byte("export {}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	mock := &mockCmd{results: []mockResult{{Stderr: "tsc crashed", ExitCode: 1}}}
	c := NewTypeScript(mock)

	findings, err := c.Check(context.Background(), dir, "a.ts")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected fallback finding, got %d", len(findings))
	}
}

func TestBuild_Check(t *testing.T) {
	out := "yarn run v1.22\n" +
		"Module build failed: unexpected token\n" +
		"ERROR in ./src/Button.tsx\n" +
		"info Visit https://yarnpkg.com for docs\n"
	mock := &mockCmd{results: []mockResult{{Stdout: out, ExitCode: 1}}}
	c := NewBuild(mock)

	findings, err := c.Check(context.Background(), "/repo", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 2 {
		t.Fatalf("expected 2 findings, got %d", len(findings))
	}
	if mock.calls[0].Command != "yarn build" {
		t.Errorf("expected whole-project build command, got %q", mock.calls[0].Command)
	}
}

func TestBuild_Check_Passes(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{Stdout: "Done in 12.3s", ExitCode: 0}}}
	c := NewBuild(mock)

	findings, err := c.Check(context.Background(), "/repo", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 0 {
		t.Errorf("expected no findings, got %d", len(findings))
	}
}

func TestBuild_Check_NoGreppableLines(t *testing.T) {
	mock := &mockCmd{results: []mockResult{{Stdout: "exit status 1", ExitCode: 1}}}
	c := NewBuild(mock)

	findings, err := c.Check(context.Background(), "/repo", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("expected fallback finding, got %d", len(findings))
	}
}

func TestHasFatal(t *testing.T) {
	if HasFatal([]Finding{{Severity: SeverityError}}) {
		t.Error("error severity is not fatal")
	}
	if !HasFatal([]Finding{{Severity: SeverityError}, {Severity: SeverityFatal}}) {
		t.Error("expected fatal to be detected")
	}
}
