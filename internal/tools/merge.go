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

// MergeHandler concatenates two or more PDFs in submission order.
type MergeHandler struct{}

var _ interfaces.ToolHandler = (*MergeHandler)(nil)

func (h *MergeHandler) ID() models.ToolID {
	return models.ToolMerge
}

func (h *MergeHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount < 2 {
		return fmt.Errorf("merge requires at least 2 PDF files, got %d", inputCount)
	}
	return nil
}

func (h *MergeHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	output := filepath.Join(scratch, "merged.pdf")
	if err := api.MergeCreateFile(inputs, output, false, nil); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("merge failed: %w", err))
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
