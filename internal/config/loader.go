package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Load reads and parses a migration configuration from the given YAML file
// path. After parsing, it fills in defaults for values left unset.
func Load(path string) (*MigrationConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg MigrationConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	ApplyDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault searches for a config in standard locations and loads the first
// one found. Search order: ./tuxmigrate.yaml, ~/.tuxmigrate/config.yaml
func LoadDefault() (*MigrationConfig, error) {
	candidates := []string{"tuxmigrate.yaml"}

	home, err := os.UserHomeDir()
	if err == nil {
		candidates = append(candidates, filepath.Join(home, ".tuxmigrate", "config.yaml"))
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return Load(path)
		}
	}

	return nil, fmt.Errorf("no migration config found (searched: %v)", candidates)
}

// ApplyDefaults fills in retry count, step order, branch settings, and LLM
// limits when the file leaves them unset.
func ApplyDefaults(cfg *MigrationConfig) {
	m := &cfg.Migration

	if m.MaxRetries == 0 {
		m.MaxRetries = 3
	}
	if len(m.Steps) == 0 {
		m.Steps = []string{"eslint", "build", "tsc"}
	}
	if m.GuideDir == "" {
		m.GuideDir = "migration-guides"
	}
	if m.Git.BaseBranch == "" {
		m.Git.BaseBranch = "master"
	}
	if m.Git.BranchPrefix == "" {
		m.Git.BranchPrefix = "migrate/"
	}
	if m.LLM.MaxTokens == 0 {
		m.LLM.MaxTokens = 16384
	}
	if m.LLM.APIKeyEnv == "" {
		m.LLM.APIKeyEnv = "ANTHROPIC_API_KEY"
	}
}
