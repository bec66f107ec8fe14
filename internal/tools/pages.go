// -----------------------------------------------------------------------
// Page-level handlers - rotate and remove
// -----------------------------------------------------------------------

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// RotateHandler rotates the selected pages by 90, 180 or 270 degrees.
type RotateHandler struct{}

var _ interfaces.ToolHandler = (*RotateHandler)(nil)

func (h *RotateHandler) ID() models.ToolID {
	return models.ToolRotate
}

func (h *RotateHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("rotate requires exactly 1 PDF file, got %d", inputCount)
	}
	if err := validatePages(opts.Pages); err != nil {
		return err
	}
	switch opts.Angle {
	case 90, 180, 270:
		return nil
	}
	return fmt.Errorf("invalid rotation angle %d: must be 90, 180 or 270", opts.Angle)
}

func (h *RotateHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	output := filepath.Join(scratch, "rotated.pdf")
	if err := api.RotateFile(inputs[0], output, opts.Angle, pageSelection(opts.Pages), nil); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("rotation failed: %w", err))
	}
	progress(80)

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}

	return &interfaces.ToolResult{
		Data:      data,
		MimeType:  "application/pdf",
		BaseName:  baseNameFor(h.ID()),
		Extension: ".pdf",
	}, nil
}

// RemoveHandler removes the selected pages from a PDF.
type RemoveHandler struct{}

var _ interfaces.ToolHandler = (*RemoveHandler)(nil)

func (h *RemoveHandler) ID() models.ToolID {
	return models.ToolRemove
}

func (h *RemoveHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("remove requires exactly 1 PDF file, got %d", inputCount)
	}
	return validatePages(opts.Pages)
}

func (h *RemoveHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	output := filepath.Join(scratch, "removed.pdf")
	if err := api.RemovePagesFile(inputs[0], output, pageSelection(opts.Pages), nil); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("page removal failed: %w", err))
	}
	progress(80)

	data, err := os.ReadFile(output)
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}

	return &interfaces.ToolResult{
		Data:      data,
		MimeType:  "application/pdf",
		BaseName:  baseNameFor(h.ID()),
		Extension: ".pdf",
	}, nil
}
