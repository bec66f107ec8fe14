// -----------------------------------------------------------------------
// Tool Model - tool ids, options and compression levels
// -----------------------------------------------------------------------

package models

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ToolID identifies one document-processing operation.
type ToolID string

const (
	ToolMerge          ToolID = "merge"
	ToolSplit          ToolID = "split"
	ToolRotate         ToolID = "rotate"
	ToolRemove         ToolID = "remove"
	ToolImgToPDF       ToolID = "img2pdf"
	ToolPDFToImg       ToolID = "pdf2img"
	ToolPDFToWord      ToolID = "pdfToWord"
	ToolDocxToPDF      ToolID = "docxToPdf"
	ToolProtectPDF     ToolID = "protectPdf"
	ToolUnlockPDF      ToolID = "unlockPdf"
	ToolAddWatermark   ToolID = "addWatermark"
	ToolAddPageNumbers ToolID = "addPageNumbers"
	ToolRepairPDF      ToolID = "repairPdf"
	ToolCompress       ToolID = "compress"
	ToolExtractText    ToolID = "extractText"
)

// KnownTools lists every tool id the service accepts.
var KnownTools = []ToolID{
	ToolMerge,
	ToolSplit,
	ToolRotate,
	ToolRemove,
	ToolImgToPDF,
	ToolPDFToImg,
	ToolPDFToWord,
	ToolDocxToPDF,
	ToolProtectPDF,
	ToolUnlockPDF,
	ToolAddWatermark,
	ToolAddPageNumbers,
	ToolRepairPDF,
	ToolCompress,
	ToolExtractText,
}

// IsKnown reports whether the tool id is one the service accepts.
func (t ToolID) IsKnown() bool {
	for _, known := range KnownTools {
		if t == known {
			return true
		}
	}
	return false
}

// CompressionLevel selects a Ghostscript quality profile.
type CompressionLevel string

const (
	CompressionLow     CompressionLevel = "low"
	CompressionMedium  CompressionLevel = "medium"
	CompressionExtreme CompressionLevel = "extreme"
)

// IsValid reports whether the level is one of the three profiles.
func (c CompressionLevel) IsValid() bool {
	switch c {
	case CompressionLow, CompressionMedium, CompressionExtreme:
		return true
	}
	return false
}

// ToolOptions carries the per-tool parameters of a submission. Fields
// are tool-specific; handlers validate the ones they need.
type ToolOptions struct {
	// PageRange is a comma list of "N" or "A-B" entries, e.g. "1-3,5".
	PageRange string `json:"pageRange,omitempty"`

	// Pages is an explicit 1-based page list for rotate/remove.
	Pages []int `json:"pages,omitempty" validate:"omitempty,dive,min=1"`

	// Angle is the clockwise rotation in degrees.
	Angle int `json:"angle,omitempty" validate:"omitempty,oneof=90 180 270"`

	// Password protects or unlocks a PDF.
	Password string `json:"password,omitempty"`

	// CompressionLevel picks the compression profile; empty means medium.
	CompressionLevel CompressionLevel `json:"compressionLevel,omitempty" validate:"omitempty,oneof=low medium extreme"`

	// Grayscale converts all color to grayscale during compression.
	Grayscale bool `json:"grayscale,omitempty"`
}

// ParseToolOptions decodes the submission's options JSON. An empty
// string yields zero options; unknown fields are rejected.
func ParseToolOptions(raw string) (ToolOptions, error) {
	var opts ToolOptions
	if strings.TrimSpace(raw) == "" {
		return opts, nil
	}

	decoder := json.NewDecoder(strings.NewReader(raw))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&opts); err != nil {
		return ToolOptions{}, fmt.Errorf("invalid options JSON: %w", err)
	}
	return opts, nil
}

// EffectiveCompressionLevel returns the requested level, defaulting to
// medium when unset.
func (o ToolOptions) EffectiveCompressionLevel() CompressionLevel {
	if o.CompressionLevel == "" {
		return CompressionMedium
	}
	return o.CompressionLevel
}
