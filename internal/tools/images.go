// -----------------------------------------------------------------------
// Image handlers - img2pdf (pdfcpu import) and pdf2img (Ghostscript)
// -----------------------------------------------------------------------

package tools

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
	"github.com/ternarybob/docsmart/internal/tools/gs"
)

// ImgToPDFHandler converts one or more images into a single PDF, one page
// per image, in submission order.
type ImgToPDFHandler struct{}

var _ interfaces.ToolHandler = (*ImgToPDFHandler)(nil)

func (h *ImgToPDFHandler) ID() models.ToolID {
	return models.ToolImgToPDF
}

func (h *ImgToPDFHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount < 1 {
		return fmt.Errorf("img2pdf requires at least 1 image file")
	}
	return nil
}

func (h *ImgToPDFHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	output := filepath.Join(scratch, "images.pdf")
	if err := api.ImportImagesFile(inputs, output, nil, nil); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("image import failed: %w", err))
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

// PDFToImgHandler rasterizes each page of a PDF into a PNG and returns a
// ZIP of page_N.png entries.
type PDFToImgHandler struct {
	ghostscript string
}

var _ interfaces.ToolHandler = (*PDFToImgHandler)(nil)

// NewPDFToImgHandler creates the handler with the configured Ghostscript
// binary path.
func NewPDFToImgHandler(ghostscriptPath string) *PDFToImgHandler {
	return &PDFToImgHandler{ghostscript: ghostscriptPath}
}

func (h *PDFToImgHandler) ID() models.ToolID {
	return models.ToolPDFToImg
}

func (h *PDFToImgHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("pdf2img requires exactly 1 PDF file, got %d", inputCount)
	}
	return nil
}

func (h *PDFToImgHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	pattern := filepath.Join(scratch, "page_%d.png")
	if err := runCommand(ctx, h.ID(), h.ghostscript, gs.RenderPNGArgs(pattern, inputs[0])...); err != nil {
		return nil, err
	}
	progress(70)

	entries, err := filepath.Glob(filepath.Join(scratch, "page_*.png"))
	if err != nil || len(entries) == 0 {
		return nil, newToolError(h.ID(), fmt.Errorf("no pages rendered"))
	}
	sort.Slice(entries, func(i, j int) bool {
		return pageNumberOf(entries[i]) < pageNumberOf(entries[j])
	})

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, entry := range entries {
		data, err := os.ReadFile(entry)
		if err != nil {
			return nil, newToolError(h.ID(), err)
		}
		w, err := zw.Create(filepath.Base(entry))
		if err != nil {
			return nil, newToolError(h.ID(), err)
		}
		if _, err := w.Write(data); err != nil {
			return nil, newToolError(h.ID(), err)
		}
	}
	if err := zw.Close(); err != nil {
		return nil, newToolError(h.ID(), err)
	}
	progress(80)

	return &interfaces.ToolResult{
		Data:      buf.Bytes(),
		MimeType:  "application/zip",
		BaseName:  baseNameFor(h.ID()),
		Extension: ".zip",
	}, nil
}

// pageNumberOf extracts N from a page_N.png file name; unparsable names
// sort last.
func pageNumberOf(path string) int {
	var n int
	if _, err := fmt.Sscanf(filepath.Base(path), "page_%d.png", &n); err != nil {
		return 1 << 30
	}
	return n
}
