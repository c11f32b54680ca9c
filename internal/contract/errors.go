package contract

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Error kinds returned by the git client and the analysis engine.
// Match them with errors.Is; a *ToolError unwraps to one of these.
var (
	ErrEmptyHistory   = errors.New("repository has no commits")
	ErrExternalTool   = errors.New("external tool failed")
	ErrParse          = errors.New("unparsable tool output")
	ErrCommitNotFound = errors.New("commit not found")
	ErrInvalidPath    = errors.New("invalid repository path")
)

// Error kind labels used in CSV/JSON output and the run store.
const (
	KindEmptyHistory   = "empty_history"
	KindExternalTool   = "external_tool"
	KindParse          = "parse"
	KindCommitNotFound = "commit_not_found"
	KindInvalidPath    = "invalid_path"
	KindCanceled       = "canceled"
	KindUnknown        = "unknown"
)

// ToolError carries the diagnostics of a failed git invocation.
type ToolError struct {
	Kind     error    // One of the Err* sentinels above
	Op       string   // Logical operation, e.g. "disk usage"
	Args     []string // Arguments passed to git (without the binary)
	ExitCode int      // -1 when the process never ran or was killed
	Stderr   string   // Bounded tail of stderr
	Line     string   // Offending output line for ErrParse
	Err      error    // Underlying cause, if any
}

// Error implements the error interface.
func (e *ToolError) Error() string {
	var b strings.Builder
	b.WriteString(e.Op)
	b.WriteString(": ")
	b.WriteString(e.Kind.Error())
	if e.ExitCode > 0 {
		fmt.Fprintf(&b, " (exit code %d)", e.ExitCode)
	}
	if e.Line != "" {
		fmt.Fprintf(&b, ": line %q", e.Line)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		b.WriteString(": ")
		b.WriteString(stderr)
	}
	return b.String()
}

// Unwrap exposes both the kind and the underlying cause to errors.Is/As.
func (e *ToolError) Unwrap() []error {
	errs := []error{e.Kind}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// Classify returns a stable label for the kind of err, or "" for nil.
func Classify(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrEmptyHistory):
		return KindEmptyHistory
	case errors.Is(err, ErrCommitNotFound):
		return KindCommitNotFound
	case errors.Is(err, ErrInvalidPath):
		return KindInvalidPath
	case errors.Is(err, ErrParse):
		return KindParse
	case errors.Is(err, ErrExternalTool):
		return KindExternalTool
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return KindCanceled
	default:
		return KindUnknown
	}
}

// notFoundMarkers are stderr fragments git prints when an object or revision is unknown.
var notFoundMarkers = []string{
	"bad object",
	"bad revision",
	"unknown revision",
	"not a valid object",
	"invalid object name",
}

// isNotFoundStderr reports whether stderr says the requested object does not exist.
func isNotFoundStderr(stderr string) bool {
	lower := strings.ToLower(stderr)
	for _, marker := range notFoundMarkers {
		if strings.Contains(lower, marker) {
			return true
		}
	}
	return false
}
