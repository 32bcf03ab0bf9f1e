package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/tuxmigrate/tuxmigrate/internal/checks"
	"github.com/tuxmigrate/tuxmigrate/internal/prompt"
	"github.com/tuxmigrate/tuxmigrate/internal/validate"
)

// RepairService asks the completion service for replacement code when a
// validation step finds problems. It implements validate.Repairer.
type RepairService struct {
	Client       Completer
	SystemPrompt string    // empty selects the built-in system prompt
	Log          io.Writer // optional
}

// NewRepairService creates a repair service with the built-in system prompt.
func NewRepairService(client Completer) *RepairService {
	return &RepairService{Client: client}
}

// RequestFix builds the fix request, makes a single completion call, and
// extracts the replacement code. The call is never retried here; a missing
// code block is reported as ok=false and costs the caller one retry slot.
func (s *RepairService) RequestFix(ctx context.Context, step validate.StepType, code string, findings []checks.Finding, attempt int) (string, bool, error) {
	display, fixFocus := step.Spec()

	findingsJSON, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		return "", false, fmt.Errorf("serialize findings: %w", err)
	}

	user, err := prompt.Render(prompt.Builtin("fix-request.md"), prompt.Vars{
		"error_type": display,
		"attempt":    strconv.Itoa(attempt),
		"code":       code,
		"findings":   string(findingsJSON),
		"fix_focus":  fixFocus,
	})
	if err != nil {
		return "", false, fmt.Errorf("render fix request: %w", err)
	}

	system := s.SystemPrompt
	if system == "" {
		system = prompt.Builtin("system.md")
	}

	response, err := s.Client.Complete(ctx, system, user)
	if err != nil {
		return "", false, fmt.Errorf("fix request for %s: %w", display, err)
	}

	repaired, ok := ExtractCodeBlock(response, "tsx")
	if !ok {
		if s.Log != nil {
			fmt.Fprintf(s.Log, "repair response for %s had no code block\n", display)
		}
		return "", false, nil
	}
	return repaired, true, nil
}
