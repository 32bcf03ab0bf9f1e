package validate

import "github.com/tuxmigrate/tuxmigrate/internal/checks"

// StepType identifies one validation step. The value doubles as the step's
// key in the status marker.
type StepType string

const (
	StepLint      StepType = "eslint"
	StepBuild     StepType = "build"
	StepTypeCheck StepType = "tsc"
)

// stepSpec is the fixed per-step configuration: display name for progress
// output and the instruction that keeps the model focused on the reported
// findings.
type stepSpec struct {
	DisplayName string
	FixFocus    string
}

var stepSpecs = map[StepType]stepSpec{
	StepLint: {
		DisplayName: "lint",
		FixFocus: "Please fix ONLY these specific lint errors in the code while preserving the functionality.\n" +
			"Do not introduce new issues or change unrelated code.",
	},
	StepTypeCheck: {
		DisplayName: "TypeScript",
		FixFocus: "Please fix ONLY these specific TypeScript errors in the code while preserving the functionality.\n" +
			"Focus on fixing type issues, adding proper type annotations, and ensuring type safety.\n" +
			"Do not introduce new issues or change unrelated code.",
	},
	StepBuild: {
		DisplayName: "Build",
		FixFocus: "Please fix ONLY these specific build errors in the code while preserving the functionality.\n" +
			"Focus on fixing issues that prevent successful compilation during the build process.\n" +
			"Do not introduce new issues or change unrelated code.",
	},
}

// Spec returns the step's display name and fix-focus instruction.
func (s StepType) Spec() (displayName, fixFocus string) {
	sp := stepSpecs[s]
	return sp.DisplayName, sp.FixFocus
}

// ParseStep resolves a step identifier to a StepType. It accepts both the
// bare identifiers and the legacy fix-* aliases.
func ParseStep(s string) (StepType, bool) {
	switch s {
	case "eslint", "lint", "fix-eslint":
		return StepLint, true
	case "build", "fix-build":
		return StepBuild, true
	case "tsc", "typescript", "fix-tsc":
		return StepTypeCheck, true
	}
	return "", false
}

// DefaultOrder is the step sequence used when the caller does not pick one.
func DefaultOrder() []StepType {
	return []StepType{StepLint, StepBuild, StepTypeCheck}
}

// StepStatus is the terminal state of one step run.
type StepStatus string

const (
	StatusPassed           StepStatus = "passed"
	StatusRetriesExhausted StepStatus = "retries_exhausted"
	StatusFatalAborted     StepStatus = "fatal_aborted"
)

// AttemptResult records the outcome of one retry iteration. The runner keeps
// only the latest.
type AttemptResult struct {
	Attempt         int
	PreCheckRan     bool
	FindingsBefore  []checks.Finding
	RepairAttempted bool
	RepairedCode    string
	FindingsAfter   []checks.Finding
}

// StepResult is the summary of one step's full retry-and-repair cycle.
type StepResult struct {
	Step     StepType
	Status   StepStatus
	Attempts int
	Last     AttemptResult
	Findings []checks.Finding // remaining after the final attempt
	Code     string           // code as of the step's last state
}

// Passed reports whether the step reached its terminal success state.
func (r *StepResult) Passed() bool { return r.Status == StatusPassed }

// Result is the outcome of running the ordered step sequence on one file.
type Result struct {
	Success    bool
	Code       string
	Steps      []StepResult
	FailedStep StepType // empty when Success
}
