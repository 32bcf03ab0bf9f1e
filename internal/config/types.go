package config

// MigrationConfig is the top-level configuration structure parsed from YAML.
type MigrationConfig struct {
	Migration Migration `yaml:"migration"`
}

// Migration defines the full migration setup: repo layout, validation
// behavior, checks, LLM settings, and git handling.
type Migration struct {
	RepoPath    string           `yaml:"repo_path"`
	SubrepoPath string           `yaml:"subrepo_path"`
	GuideDir    string           `yaml:"guide_dir"`
	DBPath      string           `yaml:"db_path"`
	MaxRetries  int              `yaml:"max_retries"`
	Steps       []string         `yaml:"steps"`
	Checks      map[string]Check `yaml:"checks"`
	LLM         LLM              `yaml:"llm"`
	Git         Git              `yaml:"git"`
}

// Check defines the command for one validation step. Timeout is a Go duration
// string like "2m".
type Check struct {
	Command    string `yaml:"command"`
	FixCommand string `yaml:"fix_command"`
	Timeout    string `yaml:"timeout"`
}

// LLM holds model settings for migration and repair requests.
type LLM struct {
	Model     string `yaml:"model"`
	MaxTokens int    `yaml:"max_tokens"`
	APIKeyEnv string `yaml:"api_key_env"`
}

// Git controls branch creation and pushing of migration results.
type Git struct {
	Enabled      bool   `yaml:"enabled"`
	BaseBranch   string `yaml:"base_branch"`
	BranchPrefix string `yaml:"branch_prefix"`
	Push         bool   `yaml:"push"`
}
