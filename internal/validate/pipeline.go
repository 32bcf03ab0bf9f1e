package validate

import (
	"context"
	"fmt"
	"io"

	"github.com/tuxmigrate/tuxmigrate/internal/checks"
)

// Pipeline sequences validation steps over one file. Steps run in order and
// the pipeline stops at the first failing step; code changes from a failed
// step are kept, never rolled back, so partially improved output survives.
type Pipeline struct {
	Runner   *StepRunner
	Checkers map[StepType]checks.Checker
	Log      io.Writer
}

// NewPipeline wires the standard three checkers to a step runner.
func NewPipeline(runner *StepRunner, cmd checks.CommandRunner) *Pipeline {
	return &Pipeline{
		Runner: runner,
		Checkers: map[StepType]checks.Checker{
			StepLint:      checks.NewESLint(cmd),
			StepBuild:     checks.NewBuild(cmd),
			StepTypeCheck: checks.NewTypeScript(cmd),
		},
		Log: runner.Log,
	}
}

// Run validates code through the named steps. Unknown step identifiers are
// skipped with a warning. An empty steps list runs the default order. The
// returned error is reserved for file I/O failures.
func (p *Pipeline) Run(ctx context.Context, code string, steps []string) (*Result, error) {
	order := p.resolve(steps)

	keys := make([]string, len(order))
	for i, s := range order {
		keys[i] = string(s)
	}
	code = p.Runner.Annotator.Seed(code, keys)

	res := &Result{Success: true, Code: code}
	for i, step := range order {
		checker, ok := p.Checkers[step]
		if !ok {
			p.logf("warning: no checker for step %q, skipping", step)
			continue
		}
		p.logf("pipeline: step %d/%d (%s)", i+1, len(order), step)

		sr, err := p.Runner.Run(ctx, step, checker, res.Code)
		if err != nil {
			return nil, fmt.Errorf("step %s: %w", step, err)
		}
		res.Steps = append(res.Steps, *sr)
		res.Code = sr.Code
		if !sr.Passed() {
			res.Success = false
			res.FailedStep = step
			p.logf("pipeline: FAIL at step %s", step)
			return res, nil
		}
	}
	p.logf("pipeline: all %d steps passed", len(res.Steps))
	return res, nil
}

// resolve maps step identifiers to step types, dropping unknown names with a
// warning.
func (p *Pipeline) resolve(steps []string) []StepType {
	if len(steps) == 0 {
		return DefaultOrder()
	}
	var order []StepType
	for _, s := range steps {
		st, ok := ParseStep(s)
		if !ok {
			p.logf("warning: unknown validation step %q, skipping", s)
			continue
		}
		order = append(order, st)
	}
	return order
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Log != nil {
		fmt.Fprintf(p.Log, format+"\n", args...)
	}
}
