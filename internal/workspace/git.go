package workspace

import (
	"fmt"
	"os/exec"
	"strings"
)

// GitRunner provides git commands. Interface for testing.
type GitRunner interface {
	Run(dir string, args ...string) (string, error)
}

// ExecGit implements GitRunner using exec.Command.
type ExecGit struct{}

func (g *ExecGit) Run(dir string, args ...string) (string, error) {
	cmd := exec.Command("git", args...)
	if dir != "" {
		cmd.Dir = dir
	}
	out, err := cmd.CombinedOutput()
	if err != nil {
		return strings.TrimSpace(string(out)), fmt.Errorf("git %s: %s: %w", strings.Join(args, " "), strings.TrimSpace(string(out)), err)
	}
	return strings.TrimSpace(string(out)), nil
}

// Git performs the branch, commit, and push operations of a migration run
// against one repository.
type Git struct {
	git GitRunner
	dir string
}

// NewGit creates a Git bound to the repository at dir.
func NewGit(git GitRunner, dir string) *Git {
	return &Git{git: git, dir: dir}
}

// Update fetches and fast-forwards the base branch. Failures are returned
// but callers typically treat them as non-fatal and continue on the current
// state.
func (g *Git) Update(base string) error {
	if _, err := g.git.Run(g.dir, "fetch", "origin", base); err != nil {
		return err
	}
	if _, err := g.git.Run(g.dir, "checkout", base); err != nil {
		if _, err := g.git.Run(g.dir, "checkout", "-b", base, "origin/"+base); err != nil {
			return err
		}
	}
	_, err := g.git.Run(g.dir, "pull", "origin", base)
	return err
}

// CreateBranch creates branch from base and checks it out. An existing
// branch is checked out as-is.
func (g *Git) CreateBranch(branch, base string) error {
	if _, err := g.git.Run(g.dir, "checkout", base); err != nil {
		return fmt.Errorf("checkout base %s: %w", base, err)
	}
	if _, err := g.git.Run(g.dir, "checkout", "-b", branch); err != nil {
		if strings.Contains(err.Error(), "already exists") {
			if _, err := g.git.Run(g.dir, "checkout", branch); err != nil {
				return fmt.Errorf("checkout existing branch %s: %w", branch, err)
			}
			return nil
		}
		return fmt.Errorf("create branch %s: %w", branch, err)
	}
	return nil
}

// CommitFile stages one file and commits it, returning the commit hash. A
// local identity is configured when none is set.
func (g *Git) CommitFile(path, message string) (string, error) {
	g.ensureIdentity()

	if _, err := g.git.Run(g.dir, "add", path); err != nil {
		return "", fmt.Errorf("stage %s: %w", path, err)
	}
	if _, err := g.git.Run(g.dir, "commit", "-m", message); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	hash, err := g.git.Run(g.dir, "rev-parse", "HEAD")
	if err != nil {
		return "", fmt.Errorf("resolve commit hash: %w", err)
	}
	return hash, nil
}

// Push pushes the branch to origin, setting upstream.
func (g *Git) Push(branch string) error {
	if _, err := g.git.Run(g.dir, "push", "-u", "origin", branch); err != nil {
		return fmt.Errorf("push %s: %w", branch, err)
	}
	return nil
}

// DeleteBranch removes a local branch after switching back to base.
func (g *Git) DeleteBranch(branch, base string) error {
	if _, err := g.git.Run(g.dir, "checkout", base); err != nil {
		return fmt.Errorf("checkout %s: %w", base, err)
	}
	if _, err := g.git.Run(g.dir, "branch", "-D", branch); err != nil {
		return fmt.Errorf("delete branch %s: %w", branch, err)
	}
	return nil
}

func (g *Git) ensureIdentity() {
	if _, err := g.git.Run(g.dir, "config", "--get", "user.name"); err != nil {
		g.git.Run(g.dir, "config", "--local", "user.name", "Tux Migration Tool")
	}
	if _, err := g.git.Run(g.dir, "config", "--get", "user.email"); err != nil {
		g.git.Run(g.dir, "config", "--local", "user.email", "tux.migration@example.com")
	}
}
