// Package workspace resolves migration target paths inside a checked-out
// repository and provides file and git access for the migration flow.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
)

// Workspace locates one migration target: a repository root, an optional
// subrepo the toolchain runs in, and the component file under migration.
type Workspace struct {
	RepoPath    string // absolute repository root
	SubrepoPath string // optional, relative to RepoPath
	FilePath    string // component file, relative to the subrepo (or repo)
}

// New validates the repository root and returns a workspace.
func New(repoPath, subrepoPath, filePath string) (*Workspace, error) {
	if repoPath == "" {
		return nil, fmt.Errorf("repository path is required")
	}
	abs, err := filepath.Abs(repoPath)
	if err != nil {
		return nil, fmt.Errorf("resolve repo path: %w", err)
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("repository path %s: %w", abs, err)
	}
	return &Workspace{RepoPath: abs, SubrepoPath: subrepoPath, FilePath: filePath}, nil
}

// Dir returns the directory external tools run in: the subrepo when set,
// otherwise the repository root.
func (w *Workspace) Dir() string {
	if w.SubrepoPath != "" {
		return filepath.Join(w.RepoPath, w.SubrepoPath)
	}
	return w.RepoPath
}

// AbsFile returns the absolute path of the component file.
func (w *Workspace) AbsFile() string {
	return w.resolve(w.FilePath)
}

func (w *Workspace) resolve(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(w.Dir(), path)
}

// Read returns the content of a file. Relative paths resolve against Dir.
func (w *Workspace) Read(path string) (string, error) {
	data, err := os.ReadFile(w.resolve(path))
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}

// Write replaces a file's content atomically, creating parent directories as
// needed. Relative paths resolve against Dir.
func (w *Workspace) Write(path, content string) error {
	return writeAtomic(w.resolve(path), []byte(content))
}

// writeAtomic writes data to a file by writing a temp file in the same
// directory, then renaming.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()

	defer func() {
		if tmpName != "" {
			os.Remove(tmpName)
		}
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s -> %s: %w", tmpName, path, err)
	}
	tmpName = ""
	return nil
}
