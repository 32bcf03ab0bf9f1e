package llm

import (
	"context"
	"fmt"

	"github.com/tuxmigrate/tuxmigrate/internal/prompt"
)

// MigrationOutput is the parsed result of one component migration call.
type MigrationOutput struct {
	Code  string
	Notes string
}

// Migrator rewrites a component file against a migration guide.
type Migrator struct {
	Client       Completer
	SystemPrompt string // empty selects the built-in system prompt
}

// NewMigrator creates a migrator with the built-in system prompt.
func NewMigrator(client Completer) *Migrator {
	return &Migrator{Client: client}
}

// MigrateComponent sends the component source and its guide to the model and
// parses the migrated code plus any migration notes out of the response.
func (m *Migrator) MigrateComponent(ctx context.Context, componentName, guide, code string) (*MigrationOutput, error) {
	user, err := prompt.Render(prompt.Builtin("migrate.md"), prompt.Vars{
		"component_name":  componentName,
		"component_code":  code,
		"migration_guide": guide,
	})
	if err != nil {
		return nil, fmt.Errorf("render migration request: %w", err)
	}

	system := m.SystemPrompt
	if system == "" {
		system = prompt.Builtin("system.md")
	}

	response, err := m.Client.Complete(ctx, system, user)
	if err != nil {
		return nil, fmt.Errorf("migrate %s: %w", componentName, err)
	}

	migrated, ok := ExtractCodeBlock(response, "tsx")
	if !ok {
		return nil, fmt.Errorf("migrate %s: response contained no code block", componentName)
	}
	return &MigrationOutput{
		Code:  migrated,
		Notes: extractMigrationNotes(response),
	}, nil
}
