package config

import (
	"fmt"
	"time"
)

// ValidationError represents a single validation issue with a config.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// recognizedSteps is the set of valid validation step names.
var recognizedSteps = map[string]bool{
	"eslint": true,
	"build":  true,
	"tsc":    true,
}

// Validate checks a MigrationConfig for structural and semantic errors.
// It returns a slice of all validation errors found (empty if valid).
func Validate(cfg *MigrationConfig) []ValidationError {
	var errs []ValidationError
	m := cfg.Migration

	if m.RepoPath == "" {
		errs = append(errs, ValidationError{Field: "migration.repo_path", Message: "is required"})
	}
	if m.MaxRetries < 1 {
		errs = append(errs, ValidationError{Field: "migration.max_retries", Message: "must be at least 1"})
	}

	seen := make(map[string]bool)
	for i, step := range m.Steps {
		field := fmt.Sprintf("migration.steps[%d]", i)
		if !recognizedSteps[step] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("unrecognized step %q", step),
			})
			continue
		}
		if seen[step] {
			errs = append(errs, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("duplicate step %q", step),
			})
		}
		seen[step] = true
	}

	for name, check := range m.Checks {
		prefix := fmt.Sprintf("migration.checks.%s", name)
		if !recognizedSteps[name] {
			errs = append(errs, ValidationError{
				Field:   prefix,
				Message: fmt.Sprintf("overrides unknown step %q", name),
			})
		}
		if check.Timeout != "" {
			if _, err := time.ParseDuration(check.Timeout); err != nil {
				errs = append(errs, ValidationError{
					Field:   prefix + ".timeout",
					Message: fmt.Sprintf("invalid duration %q", check.Timeout),
				})
			}
		}
	}

	if m.LLM.MaxTokens < 0 {
		errs = append(errs, ValidationError{Field: "migration.llm.max_tokens", Message: "must not be negative"})
	}
	if m.Git.Push && !m.Git.Enabled {
		errs = append(errs, ValidationError{Field: "migration.git.push", Message: "requires migration.git.enabled"})
	}

	return errs
}
