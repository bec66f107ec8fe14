package tools

import (
	"fmt"

	"github.com/ternarybob/docsmart/internal/models"
)

// maxStderrLen bounds how much subprocess stderr is carried into error
// messages and, through them, into the job record.
const maxStderrLen = 500

// ToolError is a structured failure from a tool handler, carrying the tool
// name and, for subprocess tools, the exit code and truncated stderr.
// Sensitive option fields (passwords) are never included.
type ToolError struct {
	Tool     models.ToolID
	ExitCode int
	Stderr   string
	Err      error
}

func (e *ToolError) Error() string {
	msg := fmt.Sprintf("tool %s failed", e.Tool)
	if e.ExitCode != 0 {
		msg += fmt.Sprintf(" (exit code %d)", e.ExitCode)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

func (e *ToolError) Unwrap() error {
	return e.Err
}

// newToolError wraps an error with the tool identity.
func newToolError(tool models.ToolID, err error) *ToolError {
	return &ToolError{Tool: tool, Err: err}
}

// truncateStderr caps stderr output for error messages.
func truncateStderr(s string) string {
	if len(s) > maxStderrLen {
		return s[:maxStderrLen] + "...(truncated)"
	}
	return s
}
