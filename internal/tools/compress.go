package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
	"github.com/ternarybob/docsmart/internal/tools/gs"
)

// CompressHandler shrinks a PDF with Ghostscript using the quality
// profile inferred from the requested compression level. For the same
// input, size(extreme) <= size(medium) <= size(low) by construction of
// the profile parameters.
type CompressHandler struct {
	ghostscript string
}

var _ interfaces.ToolHandler = (*CompressHandler)(nil)

// NewCompressHandler creates the handler with the configured Ghostscript
// binary path.
func NewCompressHandler(ghostscriptPath string) *CompressHandler {
	return &CompressHandler{ghostscript: ghostscriptPath}
}

func (h *CompressHandler) ID() models.ToolID {
	return models.ToolCompress
}

func (h *CompressHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("compress requires exactly 1 PDF file, got %d", inputCount)
	}
	if opts.CompressionLevel != "" && !opts.CompressionLevel.IsValid() {
		return fmt.Errorf("invalid compression level: %s", opts.CompressionLevel)
	}
	return nil
}

func (h *CompressHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	profile, err := gs.ProfileFor(opts.EffectiveCompressionLevel())
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	output := filepath.Join(scratch, "compressed.pdf")
	args := gs.CompressArgs(profile, opts.Grayscale, inputs[0], output)
	if err := runCommand(ctx, h.ID(), h.ghostscript, args...); err != nil {
		return nil, err
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
