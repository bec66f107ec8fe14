package tools

import (
	"fmt"

	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// FinalOutputName builds the served artifact name:
// DocSmart_{base}_{first 8 of job id}{extension}
func FinalOutputName(result *interfaces.ToolResult, jobID string) string {
	short := jobID
	if len(short) > 8 {
		short = short[:8]
	}
	return fmt.Sprintf("DocSmart_%s_%s%s", result.BaseName, short, result.Extension)
}

// Base names for processed outputs, per tool.
var baseNames = map[models.ToolID]string{
	models.ToolMerge:          "merged_documents",
	models.ToolSplit:          "split_document",
	models.ToolRotate:         "rotated_document",
	models.ToolRemove:         "pages_removed",
	models.ToolImgToPDF:       "images_converted",
	models.ToolPDFToImg:       "pdf_pages",
	models.ToolPDFToWord:      "converted_document",
	models.ToolDocxToPDF:      "converted_document",
	models.ToolProtectPDF:     "protected_document",
	models.ToolUnlockPDF:      "unlocked_document",
	models.ToolAddWatermark:   "watermarked_document",
	models.ToolAddPageNumbers: "numbered_document",
	models.ToolRepairPDF:      "repaired_document",
	models.ToolCompress:       "compressed_document",
	models.ToolExtractText:    "extracted_text",
}

// baseNameFor returns the processed-output base name for a tool.
func baseNameFor(tool models.ToolID) string {
	if name, ok := baseNames[tool]; ok {
		return name
	}
	return "processed_document"
}
