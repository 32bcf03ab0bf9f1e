package checks

import (
	"context"
	"errors"
)

// Finding severities. Info findings never fail a check on their own, error
// findings are what the repair loop works through, and fatal findings mean the
// tool could not do its job at all (missing file, broken toolchain).
const (
	SeverityInfo  = 1
	SeverityError = 2
	SeverityFatal = 3
)

// ErrFileNotFound reports that the target file does not exist in the
// repository. It is non-retryable: re-running the same tool against a missing
// file cannot succeed.
var ErrFileNotFound = errors.New("file not found")

// Finding is one normalized diagnostic from a tool run.
type Finding struct {
	Severity int    `json:"severity"`
	Rule     string `json:"rule,omitempty"`
	Message  string `json:"message"`
	File     string `json:"file,omitempty"`
	Line     int    `json:"line,omitempty"`
	Column   int    `json:"column,omitempty"`
}

// Checker runs one validation tool against a file inside a repository
// directory and returns its normalized findings. An empty slice means the
// check passed.
type Checker interface {
	Name() string
	Check(ctx context.Context, dir, file string) ([]Finding, error)
}

// Fixer is implemented by checkers that can attempt an automatic fix before
// the real check runs.
type Fixer interface {
	Fix(ctx context.Context, dir, file string) error
}

// FailureCount returns how many findings are at error severity or above.
func FailureCount(findings []Finding) int {
	n := 0
	for _, f := range findings {
		if f.Severity >= SeverityError {
			n++
		}
	}
	return n
}

// HasFatal reports whether any finding is fatal.
func HasFatal(findings []Finding) bool {
	for _, f := range findings {
		if f.Severity == SeverityFatal {
			return true
		}
	}
	return false
}
