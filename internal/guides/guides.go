// Package guides discovers component migration guides from markdown files.
// Each guide file describes one component: its title, the import path being
// migrated away from, and the replacement.
package guides

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// Guide is the parsed metadata of one migration guide file.
type Guide struct {
	Name          string // filename without extension, doubles as component name
	Title         string
	OldImportPath string
	NewImportPath string
	Path          string // guide file path
	Content       string // full markdown content
}

var (
	titleRe = regexp.MustCompile(`(?m)^#\s+(.+?)(?:\s+Migration Guide)?$`)

	oldImportRes = []*regexp.Regexp{
		regexp.MustCompile(`(?si)##\s+Old.*?` + "```" + `(?:tsx?|javascript)\s*\n.*?from\s+["']([^"']+)["']`),
	}
	newImportRes = []*regexp.Regexp{
		regexp.MustCompile(`(?si)##\s+New.*?` + "```" + `(?:tsx?|javascript)\s*\n.*?from\s+["']([^"']+)["']`),
	}
	anyImportRe = regexp.MustCompile(`(?s)` + "```" + `(?:tsx?|javascript)\s*\n.*?import.*?from\s+["']([^"']+)["']`)
)

// Store reads guides from a directory of markdown files, one per component.
type Store struct {
	Dir string
}

// NewStore creates a guide store rooted at dir.
func NewStore(dir string) *Store {
	return &Store{Dir: dir}
}

// Names lists the supported component names, sorted.
func (s *Store) Names() ([]string, error) {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		return nil, fmt.Errorf("read guides dir %s: %w", s.Dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), ".md"))
	}
	sort.Strings(names)
	return names, nil
}

// Load parses the guide for one component.
func (s *Store) Load(name string) (*Guide, error) {
	path := filepath.Join(s.Dir, name+".md")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load guide %s: %w", name, err)
	}
	return Parse(name, path, string(data)), nil
}

// All parses every guide in the store.
func (s *Store) All() ([]*Guide, error) {
	names, err := s.Names()
	if err != nil {
		return nil, err
	}
	guides := make([]*Guide, 0, len(names))
	for _, name := range names {
		g, err := s.Load(name)
		if err != nil {
			return nil, err
		}
		guides = append(guides, g)
	}
	return guides, nil
}

// Parse extracts guide metadata from markdown content. Import paths are read
// from code fences under "Old" and "New" headings, falling back to the first
// and second imports found anywhere in the document.
func Parse(name, path, content string) *Guide {
	g := &Guide{Name: name, Path: path, Content: content, Title: name}
	if m := titleRe.FindStringSubmatch(content); m != nil {
		g.Title = m[1]
	}

	g.OldImportPath = firstMatch(oldImportRes, content)
	g.NewImportPath = firstMatch(newImportRes, content)

	if g.OldImportPath == "" || g.NewImportPath == "" {
		imports := anyImportRe.FindAllStringSubmatch(content, -1)
		if g.OldImportPath == "" && len(imports) > 0 {
			g.OldImportPath = imports[0][1]
		}
		if g.NewImportPath == "" && len(imports) > 1 {
			g.NewImportPath = imports[1][1]
		}
	}
	return g
}

func firstMatch(res []*regexp.Regexp, content string) string {
	for _, re := range res {
		if m := re.FindStringSubmatch(content); m != nil {
			return m[1]
		}
	}
	return ""
}
