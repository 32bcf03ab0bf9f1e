package validate

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/tuxmigrate/tuxmigrate/internal/checks"
)

// DefaultMaxRetries bounds the retry loop when the caller does not set one.
const DefaultMaxRetries = 3

// DefaultBaselineChecks pads the estimated total in step metrics. The total
// is a rough progress indicator (findings plus this offset), not a real count
// of rules the tools evaluated.
const DefaultBaselineChecks = 10

// Repairer asks a completion service for replacement code. ok=false means no
// repair was produced, which is a normal outcome and not an error.
type Repairer interface {
	RequestFix(ctx context.Context, step StepType, code string, findings []checks.Finding, attempt int) (repaired string, ok bool, err error)
}

// Files reads and writes the working file for a migration.
type Files interface {
	Read(path string) (string, error)
	Write(path, content string) error
}

// StepRunner drives one checker through the write, pre-check, check, repair,
// verify cycle with a bounded retry budget. A runner owns its working file
// exclusively for the duration of a run.
type StepRunner struct {
	Files          Files
	Annotator      *Annotator
	Repairer       Repairer // optional
	Dir            string   // repository directory checks run in
	File           string   // working file path relative to Dir
	MaxRetries     int
	BaselineChecks int
	Log            io.Writer // optional progress output
}

type stepState int

const (
	stateWriting stepState = iota
	statePreChecking
	stateChecking
	stateRepairing
	stateVerifying
	statePassed
	stateExhausted
	stateFatal
)

// Run executes one validation step. The returned error is reserved for file
// I/O failures; every tool or repair outcome is expressed in the StepResult.
func (r *StepRunner) Run(ctx context.Context, step StepType, checker checks.Checker, code string) (*StepResult, error) {
	display, _ := step.Spec()
	maxRetries := r.MaxRetries
	if maxRetries < 1 {
		maxRetries = DefaultMaxRetries
	}
	baseline := r.BaselineChecks
	if baseline <= 0 {
		baseline = DefaultBaselineChecks
	}

	r.logf("step %s: starting (max %d attempts)", display, maxRetries)
	code = r.Annotator.Merge(code, map[string]any{string(step): "in progress"})

	res := &StepResult{Step: step}
	var findings []checks.Finding
	state := stateWriting

	for {
		switch state {
		case stateWriting:
			if err := r.Files.Write(r.File, code); err != nil {
				return nil, fmt.Errorf("write %s: %w", r.File, err)
			}
			state = statePreChecking

		case statePreChecking:
			res.Attempts++
			res.Last = AttemptResult{Attempt: res.Attempts}
			if fixer, ok := checker.(checks.Fixer); ok {
				res.Last.PreCheckRan = true
				r.logf("step %s: attempt %d pre-check", display, res.Attempts)
				if err := fixer.Fix(ctx, r.Dir, r.File); err != nil {
					if errors.Is(err, checks.ErrFileNotFound) {
						findings = fatalFindings(err)
						state = stateFatal
						continue
					}
					r.logf("step %s: pre-check failed: %v", display, err)
				}
				// The fixer may have rewritten the file.
				if text, err := r.Files.Read(r.File); err == nil {
					code = text
				}
			}
			state = stateChecking

		case stateChecking:
			r.logf("step %s: attempt %d/%d check", display, res.Attempts, maxRetries)
			fs, err := checker.Check(ctx, r.Dir, r.File)
			if err != nil {
				if errors.Is(err, checks.ErrFileNotFound) {
					findings = fatalFindings(err)
					state = stateFatal
					continue
				}
				fs = fatalFindings(err)
			}
			res.Last.FindingsBefore = fs
			findings = fs
			code = r.Annotator.Merge(code, map[string]any{string(step): stepMetrics(fs, baseline)})
			switch {
			case checks.FailureCount(fs) == 0:
				state = statePassed
			// A broken tool run is nothing the repair prompt can act on.
			case r.Repairer != nil && !checks.HasFatal(fs):
				state = stateRepairing
			case res.Attempts >= maxRetries:
				state = stateExhausted
			default:
				state = statePreChecking
			}

		case stateRepairing:
			res.Last.RepairAttempted = true
			r.logf("step %s: attempt %d repair (%d findings)", display, res.Attempts, len(findings))
			repaired, ok, err := r.Repairer.RequestFix(ctx, step, code, findings, res.Attempts)
			if err != nil || !ok {
				if err != nil {
					r.logf("step %s: repair request failed: %v", display, err)
				} else {
					r.logf("step %s: no repair produced", display)
				}
				if res.Attempts >= maxRetries {
					state = stateExhausted
				} else {
					state = statePreChecking
				}
				continue
			}
			res.Last.RepairedCode = repaired
			code = repaired
			if err := r.Files.Write(r.File, code); err != nil {
				return nil, fmt.Errorf("write %s: %w", r.File, err)
			}
			state = stateVerifying

		case stateVerifying:
			r.logf("step %s: attempt %d verify", display, res.Attempts)
			fs, err := checker.Check(ctx, r.Dir, r.File)
			if err != nil {
				if errors.Is(err, checks.ErrFileNotFound) {
					findings = fatalFindings(err)
					state = stateFatal
					continue
				}
				fs = fatalFindings(err)
			}
			res.Last.FindingsAfter = fs
			findings = fs
			switch {
			case checks.FailureCount(fs) == 0:
				state = statePassed
			case res.Attempts >= maxRetries:
				state = stateExhausted
			default:
				state = statePreChecking
			}

		case statePassed:
			code = r.Annotator.Merge(code, map[string]any{string(step): "done"})
			r.logf("step %s: PASS (attempt %d)", display, res.Attempts)
			res.Status = StatusPassed
			res.Findings = nil
			res.Code = code
			return res, nil

		case stateExhausted:
			r.logf("step %s: FAIL after %d attempts, %d findings remain", display, res.Attempts, len(findings))
			res.Status = StatusRetriesExhausted
			res.Findings = findings
			res.Code = code
			return res, nil

		case stateFatal:
			r.logf("step %s: FATAL: %s", display, findings[0].Message)
			res.Status = StatusFatalAborted
			res.Findings = findings
			res.Code = code
			return res, nil
		}
	}
}

func (r *StepRunner) logf(format string, args ...any) {
	if r.Log != nil {
		fmt.Fprintf(r.Log, format+"\n", args...)
	}
}

// fatalFindings wraps an adapter error as a single fatal finding.
func fatalFindings(err error) []checks.Finding {
	return []checks.Finding{{Severity: checks.SeverityFatal, Message: err.Error()}}
}

// stepMetrics derives the marker metrics record from one check's findings.
// Info findings do not count as failures.
func stepMetrics(findings []checks.Finding, baseline int) Metrics {
	failed := checks.FailureCount(findings)
	total := failed + baseline
	passed := total - failed
	rate := 100
	if total > 0 {
		rate = passed * 100 / total
	}
	return Metrics{
		Passed:      passed,
		Failed:      failed,
		Total:       total,
		Skipped:     0,
		SuccessRate: rate,
	}
}
