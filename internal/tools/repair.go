package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// RepairHandler rebuilds a damaged PDF by running it through pdfcpu's
// relaxed validation and optimizer, which rewrites the xref table and
// drops unreferenced objects.
type RepairHandler struct{}

var _ interfaces.ToolHandler = (*RepairHandler)(nil)

func (h *RepairHandler) ID() models.ToolID {
	return models.ToolRepairPDF
}

func (h *RepairHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("repairPdf requires exactly 1 PDF file, got %d", inputCount)
	}
	return nil
}

func (h *RepairHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed

	output := filepath.Join(scratch, "repaired.pdf")
	if err := api.OptimizeFile(inputs[0], output, conf); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("repair failed: %w", err))
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
