package tools

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// SplitHandler extracts the requested page ranges from a PDF. Exactly one
// range yields a bare PDF; multiple ranges yield a ZIP of named parts.
type SplitHandler struct{}

var _ interfaces.ToolHandler = (*SplitHandler)(nil)

func (h *SplitHandler) ID() models.ToolID {
	return models.ToolSplit
}

func (h *SplitHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("split requires exactly 1 PDF file, got %d", inputCount)
	}
	if _, err := ParsePageRanges(opts.PageRange); err != nil {
		return err
	}
	return nil
}

func (h *SplitHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	ranges, err := ParsePageRanges(opts.PageRange)
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	// Extract each range in submission order.
	parts := make([][]byte, 0, len(ranges))
	for i, r := range ranges {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		partFile := filepath.Join(scratch, fmt.Sprintf("part_%d.pdf", i))
		if err := api.TrimFile(inputs[0], partFile, []string{r.Selection()}, nil); err != nil {
			return nil, newToolError(h.ID(), fmt.Errorf("failed to extract range %s: %w", r.Selection(), err))
		}

		data, err := os.ReadFile(partFile)
		if err != nil {
			return nil, newToolError(h.ID(), err)
		}
		parts = append(parts, data)

		// 40-80% across ranges.
		progress(40 + (40*(i+1))/len(ranges))
	}

	// Exactly one output range emits a bare PDF.
	if len(ranges) == 1 {
		return &interfaces.ToolResult{
			Data:      parts[0],
			MimeType:  "application/pdf",
			BaseName:  baseNameFor(h.ID()),
			Extension: ".pdf",
		}, nil
	}

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for i, r := range ranges {
		w, err := zw.Create(r.PartName())
		if err != nil {
			return nil, newToolError(h.ID(), err)
		}
		if _, err := w.Write(parts[i]); err != nil {
			return nil, newToolError(h.ID(), err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, newToolError(h.ID(), err)
	}

	return &interfaces.ToolResult{
		Data:      buf.Bytes(),
		MimeType:  "application/zip",
		BaseName:  baseNameFor(h.ID()),
		Extension: ".zip",
	}, nil
}
