package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/ternarybob/docsmart/internal/models"
)

// runCommand executes an external tool under the handler's context. On a
// non-zero exit the stderr tail is folded into a ToolError; on context
// expiry the process is killed and a timeout error is returned.
func runCommand(ctx context.Context, tool models.ToolID, name string, args ...string) error {
	var stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return &ToolError{Tool: tool, Err: fmt.Errorf("timed out waiting for %s", name)}
		}
		return &ToolError{Tool: tool, Err: fmt.Errorf("cancelled while running %s", name)}
	}

	exitCode := 0
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	return &ToolError{
		Tool:     tool,
		ExitCode: exitCode,
		Stderr:   truncateStderr(stderr.String()),
		Err:      fmt.Errorf("%s failed", name),
	}
}

// scratchDir creates a unique temp directory for handler intermediates.
// Callers remove it in a defer on every exit path.
func scratchDir() (string, error) {
	dir := filepath.Join(os.TempDir(), "docsmart", uuid.New().String())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create scratch directory: %w", err)
	}
	return dir, nil
}
