package cli

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/tuxmigrate/tuxmigrate/internal/checks"
	"github.com/tuxmigrate/tuxmigrate/internal/config"
	"github.com/tuxmigrate/tuxmigrate/internal/db"
	"github.com/tuxmigrate/tuxmigrate/internal/llm"
	"github.com/tuxmigrate/tuxmigrate/internal/validate"
	"github.com/tuxmigrate/tuxmigrate/internal/workspace"
)

// loadConfig resolves the config from --config or the standard search paths.
// A missing config is not an error; defaults apply and flags fill the rest.
func loadConfig() (*config.MigrationConfig, error) {
	if configPath != "" {
		return config.Load(configPath)
	}
	cfg, err := config.LoadDefault()
	if err != nil {
		cfg = &config.MigrationConfig{}
		config.ApplyDefaults(cfg)
	}
	return cfg, nil
}

// openDatabase opens the configured database, falling back to the default
// path, and applies the schema.
func openDatabase(cfg *config.MigrationConfig) (*db.DB, error) {
	path := cfg.Migration.DBPath
	if path == "" {
		var err error
		path, err = db.DefaultDBPath()
		if err != nil {
			return nil, err
		}
	}
	d, err := db.Open(path)
	if err != nil {
		return nil, err
	}
	if err := d.Migrate(); err != nil {
		d.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return d, nil
}

// buildPipeline wires checkers from the config's check overrides into a step
// runner bound to the workspace file.
func buildPipeline(cfg *config.MigrationConfig, ws *workspace.Workspace, repairer validate.Repairer, log io.Writer) *validate.Pipeline {
	cmd := &checks.ExecRunner{}

	eslint := checks.NewESLint(cmd)
	build := checks.NewBuild(cmd)
	tsc := checks.NewTypeScript(cmd)
	if c, ok := cfg.Migration.Checks["eslint"]; ok {
		applyOverride(&eslint.Command, &eslint.Timeout, c)
		if c.FixCommand != "" {
			eslint.FixCommand = c.FixCommand
		}
	}
	if c, ok := cfg.Migration.Checks["build"]; ok {
		applyOverride(&build.Command, &build.Timeout, c)
	}
	if c, ok := cfg.Migration.Checks["tsc"]; ok {
		applyOverride(&tsc.Command, &tsc.Timeout, c)
	}

	runner := &validate.StepRunner{
		Files:      ws,
		Annotator:  &validate.Annotator{Log: log},
		Repairer:   repairer,
		Dir:        ws.Dir(),
		File:       ws.FilePath,
		MaxRetries: cfg.Migration.MaxRetries,
		Log:        log,
	}
	return &validate.Pipeline{
		Runner: runner,
		Checkers: map[validate.StepType]checks.Checker{
			validate.StepLint:      eslint,
			validate.StepBuild:     build,
			validate.StepTypeCheck: tsc,
		},
		Log: log,
	}
}

func applyOverride(command *string, timeout *time.Duration, c config.Check) {
	if c.Command != "" {
		*command = c.Command
	}
	if c.Timeout != "" {
		if d, err := time.ParseDuration(c.Timeout); err == nil {
			*timeout = d
		}
	}
}

// newCompleter builds the Anthropic client from config and environment.
func newCompleter(cfg *config.MigrationConfig) (*llm.Client, error) {
	apiKey := ""
	if env := cfg.Migration.LLM.APIKeyEnv; env != "" {
		apiKey = os.Getenv(env)
	}
	return llm.NewClient(llm.ClientConfig{
		Model:     cfg.Migration.LLM.Model,
		APIKey:    apiKey,
		MaxTokens: cfg.Migration.LLM.MaxTokens,
	})
}
