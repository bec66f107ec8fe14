// -----------------------------------------------------------------------
// Security handlers - protect and unlock via pdfcpu AES-256 encryption
// -----------------------------------------------------------------------

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

// ProtectHandler encrypts a PDF with a user password (AES-256, same
// password for owner).
type ProtectHandler struct{}

var _ interfaces.ToolHandler = (*ProtectHandler)(nil)

func (h *ProtectHandler) ID() models.ToolID {
	return models.ToolProtectPDF
}

func (h *ProtectHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("protectPdf requires exactly 1 PDF file, got %d", inputCount)
	}
	if opts.Password == "" {
		return fmt.Errorf("protectPdf requires a non-empty password")
	}
	return nil
}

func (h *ProtectHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	conf := model.NewAESConfiguration(opts.Password, opts.Password, 256)

	output := filepath.Join(scratch, "protected.pdf")
	if err := api.EncryptFile(inputs[0], output, conf); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("encryption failed: %w", err))
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

// UnlockHandler removes password protection from a PDF. The password may
// be empty for PDFs encrypted with an empty user password.
type UnlockHandler struct{}

var _ interfaces.ToolHandler = (*UnlockHandler)(nil)

func (h *UnlockHandler) ID() models.ToolID {
	return models.ToolUnlockPDF
}

func (h *UnlockHandler) ValidateInputs(inputCount int, opts models.ToolOptions) error {
	if inputCount != 1 {
		return fmt.Errorf("unlockPdf requires exactly 1 PDF file, got %d", inputCount)
	}
	return nil
}

func (h *UnlockHandler) Handle(ctx context.Context, inputs []string, opts models.ToolOptions, progress interfaces.ProgressFunc) (*interfaces.ToolResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	progress(20)

	scratch, err := scratchDir()
	if err != nil {
		return nil, newToolError(h.ID(), err)
	}
	defer os.RemoveAll(scratch)

	conf := model.NewAESConfiguration(opts.Password, opts.Password, 256)

	output := filepath.Join(scratch, "unlocked.pdf")
	if err := api.DecryptFile(inputs[0], output, conf); err != nil {
		return nil, newToolError(h.ID(), fmt.Errorf("decryption failed (wrong password?): %w", err))
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
