package tools

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// writeTestPDF renders a small PDF with the given number of pages.
func writeTestPDF(t *testing.T, dir string, name string, pages int) string {
	t.Helper()

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(72, 72, fmt.Sprintf("%s page %d", name, i))
	}

	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, pdf.Output(f))
	return path
}

func noProgress(int) {}

func TestMergeHandler(t *testing.T) {
	dir := t.TempDir()
	first := writeTestPDF(t, dir, "first.pdf", 2)
	second := writeTestPDF(t, dir, "second.pdf", 3)

	h := &MergeHandler{}
	assert.Error(t, h.ValidateInputs(1, models.ToolOptions{}))
	require.NoError(t, h.ValidateInputs(2, models.ToolOptions{}))

	result, err := h.Handle(context.Background(), []string{first, second}, models.ToolOptions{}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.MimeType)
	assert.Equal(t, "merged_documents", result.BaseName)
	assert.Equal(t, ".pdf", result.Extension)

	merged := filepath.Join(dir, "merged.pdf")
	require.NoError(t, os.WriteFile(merged, result.Data, 0644))
	count, err := api.PageCountFile(merged)
	require.NoError(t, err)
	assert.Equal(t, 5, count)
}

func TestSplitHandlerSinglePagePDF(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 4)

	h := &SplitHandler{}
	assert.Error(t, h.ValidateInputs(1, models.ToolOptions{}))
	assert.Error(t, h.ValidateInputs(2, models.ToolOptions{PageRange: "1"}))
	require.NoError(t, h.ValidateInputs(1, models.ToolOptions{PageRange: "2"}))

	// A single-page extraction comes back as a bare PDF.
	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{PageRange: "2"}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", result.MimeType)
	assert.Equal(t, ".pdf", result.Extension)
}

func TestSplitHandlerMultipleRangesZip(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 5)

	h := &SplitHandler{}
	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{PageRange: "1-2,4"}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "application/zip", result.MimeType)
	assert.Equal(t, ".zip", result.Extension)

	reader, err := zip.NewReader(bytes.NewReader(result.Data), int64(len(result.Data)))
	require.NoError(t, err)

	names := make([]string, 0, len(reader.File))
	for _, f := range reader.File {
		names = append(names, f.Name)
	}
	assert.ElementsMatch(t, []string{"pages_1-2.pdf", "split_page_4.pdf"}, names)
}

func TestRotateHandler(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 2)

	h := &RotateHandler{}
	assert.Error(t, h.ValidateInputs(1, models.ToolOptions{Pages: []int{1}, Angle: 45}))
	assert.Error(t, h.ValidateInputs(1, models.ToolOptions{Angle: 90}))
	require.NoError(t, h.ValidateInputs(1, models.ToolOptions{Pages: []int{1}, Angle: 90}))

	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{Pages: []int{1}, Angle: 90}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "rotated_document", result.BaseName)
	assert.NotEmpty(t, result.Data)
}

func TestRemoveHandler(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 3)

	h := &RemoveHandler{}
	assert.Error(t, h.ValidateInputs(1, models.ToolOptions{}))

	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{Pages: []int{2}}, noProgress)
	require.NoError(t, err)

	out := filepath.Join(dir, "out.pdf")
	require.NoError(t, os.WriteFile(out, result.Data, 0644))
	count, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestProtectAndUnlockRoundTrip(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 1)

	protect := &ProtectHandler{}
	assert.Error(t, protect.ValidateInputs(1, models.ToolOptions{}), "password required")

	opts := models.ToolOptions{Password: "hunter2"}
	protected, err := protect.Handle(context.Background(), []string{input}, opts, noProgress)
	require.NoError(t, err)

	locked := filepath.Join(dir, "locked.pdf")
	require.NoError(t, os.WriteFile(locked, protected.Data, 0644))

	unlock := &UnlockHandler{}
	unlocked, err := unlock.Handle(context.Background(), []string{locked}, opts, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "unlocked_document", unlocked.BaseName)

	// Wrong password must fail.
	_, err = unlock.Handle(context.Background(), []string{locked}, models.ToolOptions{Password: "wrong"}, noProgress)
	assert.Error(t, err)
}

func TestWatermarkHandler(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 2)

	h := &WatermarkHandler{}
	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "watermarked_document", result.BaseName)
	assert.NotEmpty(t, result.Data)
}

func TestPageNumbersHandler(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 3)

	h := &PageNumbersHandler{}
	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "numbered_document", result.BaseName)

	out := filepath.Join(dir, "numbered.pdf")
	require.NoError(t, os.WriteFile(out, result.Data, 0644))
	count, err := api.PageCountFile(out)
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestRepairHandler(t *testing.T) {
	dir := t.TempDir()
	input := writeTestPDF(t, dir, "doc.pdf", 1)

	h := &RepairHandler{}
	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "repaired_document", result.BaseName)
	assert.NotEmpty(t, result.Data)
}

func TestExtractTextHandler(t *testing.T) {
	dir := t.TempDir()
	// The worker hands handlers files named input_N; the page stitching
	// must cope with that prefix on the extracted content files.
	input := writeTestPDF(t, dir, "input_0.pdf", 2)

	h := &ExtractTextHandler{}
	assert.Error(t, h.ValidateInputs(2, models.ToolOptions{}))
	require.NoError(t, h.ValidateInputs(1, models.ToolOptions{}))

	result, err := h.Handle(context.Background(), []string{input}, models.ToolOptions{}, noProgress)
	require.NoError(t, err)
	assert.Equal(t, "text/plain", result.MimeType)
	assert.Equal(t, "extracted_text", result.BaseName)
	assert.Equal(t, ".txt", result.Extension)

	text := string(result.Data)
	assert.Contains(t, text, "page 1")
	assert.Contains(t, text, "--- Page 2 ---")
	assert.Contains(t, text, "page 2")
}

func TestHandlerProgressStaysInBand(t *testing.T) {
	dir := t.TempDir()
	first := writeTestPDF(t, dir, "a.pdf", 1)
	second := writeTestPDF(t, dir, "b.pdf", 1)

	var reported []int
	progress := func(p int) { reported = append(reported, p) }

	h := &MergeHandler{}
	_, err := h.Handle(context.Background(), []string{first, second}, models.ToolOptions{}, progress)
	require.NoError(t, err)

	require.NotEmpty(t, reported)
	last := 0
	for _, p := range reported {
		assert.GreaterOrEqual(t, p, 20)
		assert.LessOrEqual(t, p, 80)
		assert.GreaterOrEqual(t, p, last)
		last = p
	}
}

func TestFinalOutputName(t *testing.T) {
	result := &interfaces.ToolResult{BaseName: "merged_documents", Extension: ".pdf"}
	name := FinalOutputName(result, "0b5c3a9e-1111-2222-3333-444455556666")
	assert.Equal(t, "DocSmart_merged_documents_0b5c3a9e.pdf", name)

	short := FinalOutputName(&interfaces.ToolResult{BaseName: "x", Extension: ".txt"}, "abc")
	assert.Equal(t, "DocSmart_x_abc.txt", short)
}
