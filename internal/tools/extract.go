package tools

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// contentPagePattern matches pdfcpu's extracted content files, which are
// named {inputBase}_Content_page_N.txt.
var contentPagePattern = regexp.MustCompile(`Content_page_(\d+)\.txt$`)

// ExtractTextHandler pulls the text content out of a PDF, page by page,
// into a plain-text file.
type ExtractTextHandler struct{}

var _ interfaces.ToolHandler = (*ExtractTextHandler)(nil)

func (h *ExtractTextHandler) ID() models.ToolID {
	return models.ToolExtractText
}

func (h *ExtractTextHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("extractText requires exactly 1 PDF file, got %d", inputCount)
	}
	return nil
}

func (h *ExtractTextHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	pageCount, err := api.PageCountFile(inputs[0])
	if err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("failed to read PDF: %w", err))
	}

	if err := api.ExtractContentFile(inputs[0], scratch, nil, nil); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("content extraction failed: %w", err))
	}
	progress(60)

	// Extracted files carry the page number in their name; stitch them
	// back together in page order.
	entries, err := os.ReadDir(scratch)
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	pageTexts := make(map[int]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		match := contentPagePattern.FindStringSubmatch(name)
		if match == nil {
			continue
		}
		pageNum, err := strconv.Atoi(match[1])
		if err != nil {
			continue
		}
		content, err := os.ReadFile(filepath.Join(scratch, name))
		if err != nil {
			continue
		}
		pageTexts[pageNum] = string(content)
	}

	var builder strings.Builder
	for page := 1; page <= pageCount; page++ {
		if page > 1 {
			builder.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n\n", page))
		}
		builder.WriteString(pageTexts[page])
	}
	progress(80)

	return &interfaces.ToolResult{
		Data:      []byte(builder.String()),
		MimeType:  "text/plain",
		BaseName:  baseNameFor(h.ID()),
		Extension: ".txt",
	}, nil
}
