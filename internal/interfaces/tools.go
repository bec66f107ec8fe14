package interfaces

import (
	"context"

	"github.com/ternarybob/docsmart/internal/models"
)

// ToolResult is the uniform output of a tool handler: a buffer plus the
// metadata needed to name and serve it.
type ToolResult struct {
	Data      []byte
	MimeType  string
	BaseName  string
	Extension string
}

// ProgressFunc reports handler progress (0-100) back to the worker.
// Handlers may call it at the standard milestones; values must be
// non-decreasing.
type ProgressFunc func(progress int)

// ToolHandler transforms local input files into an output buffer. Handlers
// are pure with respect to the repository: they only produce bytes, clean
// up any scratch files they create, and honor ctx cancellation.
type ToolHandler interface {
	// ID returns the tool id this handler serves.
	ID() models.ToolID

	// ValidateInputs checks file arity and options before a job is
	// accepted. Errors surface as 400 at submission.
	ValidateInputs(inputCount int, opts models.ToolOptions) error

	// Handle runs the transformation on the downloaded input files.
	Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress ProgressFunc) (*ToolResult, error)
}

// ToolRegistry maps tool ids to handlers.
type ToolRegistry interface {
	// Get returns the handler for a tool id, or an error for unknown ids.
	Get(toolID models.ToolID) (ToolHandler, error)
}
