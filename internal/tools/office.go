// -----------------------------------------------------------------------
// Office handlers - pdfToWord and docxToPdf via LibreOffice headless
// -----------------------------------------------------------------------

package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// officeConvert runs a LibreOffice headless conversion of input into the
// given target format, returning the converted file's bytes. LibreOffice
// writes the output next to -outdir with the input's base name and the
// target extension.
func officeConvert(ctx context.Context, tool models.ToolID, soffice, input, targetFormat string) ([]byte, error) {
	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(tool, err)
	}
	defer os.RemoveAll(scratch)

	args := []string{
		"--headless",
		"--convert-to", targetFormat,
		"--outdir", scratch,
		input,
	}
	if err := runCommand(ctx, tool, soffice, args...); err != nil {
		return nil, err
	}

	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	converted := filepath.Join(scratch, base+"."+targetFormat)
	data, err := os.ReadFile(converted)
	if err != nil {
		return nil, newToolError(tool, fmt.Errorf("conversion produced no output: %w", err))
	}
	return data, nil
}

// PDFToWordHandler converts a PDF into DOCX.
type PDFToWordHandler struct {
	soffice string
}

var _ interfaces.ToolHandler = (*PDFToWordHandler)(nil)

// NewPDFToWordHandler creates the handler with the configured LibreOffice
// binary path.
func NewPDFToWordHandler(sofficePath string) *PDFToWordHandler {
	return &PDFToWordHandler{soffice: sofficePath}
}

func (h *PDFToWordHandler) ID() models.ToolID {
	return models.ToolPDFToWord
}

func (h *PDFToWordHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("pdfToWord requires exactly 1 PDF file, got %d", inputCount)
	}
	return nil
}

func (h *PDFToWordHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	progress(20)

	data, err := officeConvert(ctx, h.ID(), h.soffice, inputs[0], "docx")
	if err != nil {
		return nil, err
	}
	progress(80)

	return &interfaces.ToolResult{
		Data:      data,
		MimeType:  "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		BaseName:  baseNameFor(h.ID()),
		Extension: ".docx",
	}, nil
}

// DocxToPDFHandler converts a DOCX into PDF.
type DocxToPDFHandler struct {
	soffice string
}

var _ interfaces.ToolHandler = (*DocxToPDFHandler)(nil)

// NewDocxToPDFHandler creates the handler with the configured LibreOffice
// binary path.
func NewDocxToPDFHandler(sofficePath string) *DocxToPDFHandler {
	return &DocxToPDFHandler{soffice: sofficePath}
}

func (h *DocxToPDFHandler) ID() models.ToolID {
	return models.ToolDocxToPDF
}

func (h *DocxToPDFHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("docxToPdf requires exactly 1 DOCX file, got %d", inputCount)
	}
	return nil
}

func (h *DocxToPDFHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	progress(20)

	data, err := officeConvert(ctx, h.ID(), h.soffice, inputs[0], "pdf")
	if err != nil {
		return nil, err
	}
	progress(80)

	return &interfaces.ToolResult{
		Data:      data,
		MimeType:  "application/pdf",
		BaseName:  baseNameFor(h.ID()),
		Extension: ".pdf",
	}, nil
}
