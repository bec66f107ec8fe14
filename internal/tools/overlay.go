// -----------------------------------------------------------------------
// Overlay handlers - watermark and page numbers
// -----------------------------------------------------------------------

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/types"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// Watermark layout: diagonal centered text at 40pt Helvetica with 20%
// opacity. These values are fixed to keep output consistent with earlier
// releases.
const (
	watermarkText     = "Processed by DocSmart"
	watermarkFontSize = 40.0
	watermarkOpacity  = 0.2
	watermarkRotation = 45.0
)

// WatermarkHandler stamps every page with the DocSmart watermark. The
// overlay page is generated with fpdf and merged onto each page with
// pdfcpu.
type WatermarkHandler struct{}

var _ interfaces.ToolHandler = (*WatermarkHandler)(nil)

func (h *WatermarkHandler) ID() models.ToolID {
	return models.ToolAddWatermark
}

func (h *WatermarkHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("addWatermark requires exactly 1 PDF file, got %d", inputCount)
	}
	return nil
}

func (h *WatermarkHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	overlay := filepath.Join(scratch, "watermark.pdf")
	if err := writeWatermarkOverlay(overlay); err != nil {
		return nil, newToolError(h.ID(), err)
	}
	progress(40)

	wm, err := api.PDFWatermark(overlay, "scale:1 abs, pos:c", true, false, types.POINTS)
	if err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("failed to build watermark: %w", err))
	}

	output := filepath.Join(scratch, "watermarked.pdf")
	if err := api.AddWatermarksFile(inputs[0], output, nil, wm, nil); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("failed to apply watermark: %w", err))
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

// writeWatermarkOverlay generates a single Letter-sized page with the
// watermark text rotated about the page center.
func writeWatermarkOverlay(path string) error {
	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", watermarkFontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetAlpha(watermarkOpacity, "Normal")

	width, height := pdf.GetPageSize()
	textWidth := pdf.GetStringWidth(watermarkText)

	pdf.TransformBegin()
	pdf.TransformRotate(watermarkRotation, width/2, height/2)
	pdf.Text(width/2-textWidth/2, height/2+watermarkFontSize/2, watermarkText)
	pdf.TransformEnd()

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create overlay file: %w", err)
	}
	defer f.Close()

	if err := pdf.Output(f); err != nil {
		return fmt.Errorf("failed to render overlay: %w", err)
	}
	return nil
}

// PageNumbersHandler stamps the page number at the top-right of every
// page (14pt, 30pt margins).
type PageNumbersHandler struct{}

var _ interfaces.ToolHandler = (*PageNumbersHandler)(nil)

func (h *PageNumbersHandler) ID() models.ToolID {
	return models.ToolAddPageNumbers
}

func (h *PageNumbersHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("addPageNumbers requires exactly 1 PDF file, got %d", inputCount)
	}
	return nil
}

func (h *PageNumbersHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	// %p expands to the current page number during stamping.
	wm, err := api.TextWatermark("%p", "font:Helvetica, points:14, scale:1 abs, pos:tr, off:-30 -30, rot:0, op:1", true, false, types.POINTS)
	if err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("failed to build page-number stamp: %w", err))
	}

	output := filepath.Join(scratch, "numbered.pdf")
	if err := api.AddWatermarksFile(inputs[0], output, nil, wm, nil); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("failed to stamp page numbers: %w", err))
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
