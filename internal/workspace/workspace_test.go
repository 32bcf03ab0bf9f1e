package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type mockGit struct {
	calls   []gitCall
	results map[string]mockResult // keyed by joined args
}

type gitCall struct {
	Dir  string
	Args []string
}

type mockResult struct {
	Output string
	Err    error
}

func (m *mockGit) Run(dir string, args ...string) (string, error) {
	m.calls = append(m.calls, gitCall{Dir: dir, Args: args})
	if r, ok := m.results[strings.Join(args, " ")]; ok {
		return r.Output, r.Err
	}
	return "", nil
}

func (m *mockGit) argHistory() []string {
	out := make([]string, len(m.calls))
	for i, c := range m.calls {
		out[i] = strings.Join(c.Args, " ")
	}
	return out
}

func TestNew_ResolvesPaths(t *testing.T) {
	repo := t.TempDir()
	w, err := New(repo, "packages/web", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Dir() != filepath.Join(repo, "packages/web") {
		t.Errorf("unexpected dir: %q", w.Dir())
	}
	if w.AbsFile() != filepath.Join(repo, "packages/web", "src/Button.tsx") {
		t.Errorf("unexpected file path: %q", w.AbsFile())
	}
}

func TestNew_NoSubrepo(t *testing.T) {
	repo := t.TempDir()
	w, err := New(repo, "", "src/Button.tsx")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.Dir() != repo {
		t.Errorf("expected repo root, got %q", w.Dir())
	}
}

func TestNew_MissingRepo(t *testing.T) {
	if _, err := New("/does/not/exist", "", "a.tsx"); err == nil {
		t.Fatal("expected error for missing repository path")
	}
}

func TestWorkspace_WriteCreatesParents(t *testing.T) {
	repo := t.TempDir()
	w, err := New(repo, "", "src/components/Button.tsx")
	if err != nil {
		t.Fatal(err)
	}

	if err := w.Write(w.FilePath, "export {};\n"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got, err := w.Read(w.FilePath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "export {};\n" {
		t.Errorf("round trip mismatch: %q", got)
	}
}

func TestWorkspace_WriteLeavesNoTempFiles(t *testing.T) {
	repo := t.TempDir()
	w, err := New(repo, "", "a.tsx")
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Write("a.tsx", "one"); err != nil {
		t.Fatal(err)
	}
	if err := w.Write("a.tsx", "two"); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(repo)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the target file, got %d entries", len(entries))
	}
}

func TestWorkspace_ReadMissingFile(t *testing.T) {
	repo := t.TempDir()
	w, err := New(repo, "", "a.tsx")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Read("gone.tsx"); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGit_CreateBranch(t *testing.T) {
	git := &mockGit{}
	g := NewGit(git, "/repo")

	if err := g.CreateBranch("migrate/button", "master"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	history := git.argHistory()
	if history[0] != "checkout master" || history[1] != "checkout -b migrate/button" {
		t.Errorf("unexpected command sequence: %v", history)
	}
}

func TestGit_CreateBranch_AlreadyExists(t *testing.T) {
	git := &mockGit{results: map[string]mockResult{
		"checkout -b migrate/button": {Err: fmt.Errorf("git checkout -b migrate/button: fatal: a branch named 'migrate/button' already exists: exit status 128")},
	}}
	g := NewGit(git, "/repo")

	if err := g.CreateBranch("migrate/button", "master"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	history := git.argHistory()
	if history[len(history)-1] != "checkout migrate/button" {
		t.Errorf("expected fallback checkout, got %v", history)
	}
}

func TestGit_CommitFile(t *testing.T) {
	git := &mockGit{results: map[string]mockResult{
		"config --get user.name":  {Output: "Dev"},
		"config --get user.email": {Output: "dev@example.com"},
		"rev-parse HEAD":          {Output: "abc123"},
	}}
	g := NewGit(git, "/repo")

	hash, err := g.CommitFile("src/Button.tsx", "Migrate Button to new-ui")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hash != "abc123" {
		t.Errorf("unexpected hash: %q", hash)
	}
	history := git.argHistory()
	joined := strings.Join(history, "; ")
	if !strings.Contains(joined, "add src/Button.tsx") || !strings.Contains(joined, "commit -m Migrate Button to new-ui") {
		t.Errorf("unexpected command sequence: %v", history)
	}
}

func TestGit_CommitFile_SetsIdentityWhenMissing(t *testing.T) {
	git := &mockGit{results: map[string]mockResult{
		"config --get user.name":  {Err: fmt.Errorf("exit status 1")},
		"config --get user.email": {Err: fmt.Errorf("exit status 1")},
	}}
	g := NewGit(git, "/repo")

	if _, err := g.CommitFile("a.tsx", "msg"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	joined := strings.Join(git.argHistory(), "; ")
	if !strings.Contains(joined, "config --local user.name") || !strings.Contains(joined, "config --local user.email") {
		t.Errorf("expected local identity configured, got %v", git.argHistory())
	}
}

func TestGit_Push(t *testing.T) {
	git := &mockGit{}
	g := NewGit(git, "/repo")

	if err := g.Push("migrate/button"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Join(git.calls[0].Args, " "); got != "push -u origin migrate/button" {
		t.Errorf("unexpected push args: %q", got)
	}
}
