package jobs

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-pdf/fpdf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/artifacts"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
	storagebadger "github.com/ternarybob/docsmart/internal/storage/badger"
	"github.com/ternarybob/docsmart/internal/tools"
)

type testEnv struct {
	config  *common.Config
	storage interfaces.JobStorage
	store   *artifacts.FilesystemStore
	service *Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	logger := arbor.NewLogger()
	dir := t.TempDir()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = filepath.Join(dir, "db")
	cfg.Artifacts.Root = filepath.Join(dir, "artifacts")
	cfg.Workers.Count = 1
	cfg.Workers.PollInterval = "50ms"

	manager, err := storagebadger.NewManager(logger, &cfg.Storage.Badger)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	store, err := artifacts.NewFilesystemStore(cfg.Artifacts.Root, cfg.Artifacts.PublicBaseURL, logger)
	require.NoError(t, err)

	registry := tools.NewRegistry(cfg, logger)
	service := NewService(cfg, manager.JobStorage(), store, registry, logger)

	return &testEnv{
		config:  cfg,
		storage: manager.JobStorage(),
		store:   store,
		service: service,
	}
}

// testPDF renders a small PDF in memory.
func testPDF(t *testing.T, label string, pages int) []byte {
	t.Helper()

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.SetFont("Helvetica", "", 12)
	for i := 1; i <= pages; i++ {
		pdf.AddPage()
		pdf.Text(72, 72, fmt.Sprintf("%s page %d", label, i))
	}

	path := filepath.Join(t.TempDir(), "doc.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, pdf.Output(f))
	f.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	file := UploadedFile{Name: "a.pdf", Data: []byte("%PDF-1.4")}

	tests := []struct {
		name    string
		toolID  string
		files   []UploadedFile
		options string
	}{
		{name: "missing tool", toolID: "", files: []UploadedFile{file}},
		{name: "unknown tool", toolID: "ocr", files: []UploadedFile{file}},
		{name: "no files", toolID: "merge", files: nil},
		{name: "merge needs two files", toolID: "merge", files: []UploadedFile{file}},
		{name: "bad options JSON", toolID: "compress", files: []UploadedFile{file}, options: `{"compressionLevel":`},
		{name: "bad compression level", toolID: "compress", files: []UploadedFile{file}, options: `{"compressionLevel":"ultra"}`},
		{name: "split without range", toolID: "split", files: []UploadedFile{file}},
		{name: "protect without password", toolID: "protectPdf", files: []UploadedFile{file}},
		{name: "bad rotation angle", toolID: "rotate", files: []UploadedFile{file}, options: `{"pages":[1],"angle":45}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.service.Submit(ctx, tt.toolID, tt.files, tt.options)
			require.Error(t, err)
			assert.True(t, IsValidationError(err), "expected validation error, got %v", err)
		})
	}
}

func TestSubmitEnqueuesPendingJob(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	files := []UploadedFile{
		{Name: "first.pdf", Data: testPDF(t, "first", 1)},
		{Name: "second.pdf", Data: testPDF(t, "second", 1)},
	}

	resp, err := env.service.Submit(ctx, "merge", files, "")
	require.NoError(t, err)

	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, fmt.Sprintf("/process-pdf?jobId=%s", resp.JobID), resp.StatusCheckLink)
	assert.Equal(t, 1, resp.QueuePosition)
	assert.Equal(t, env.config.Queue.AverageJobTimeSeconds, resp.EstimatedWaitTimeSeconds)

	job, err := env.storage.Get(ctx, resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, models.JobStatusPending, job.Status)
	require.Len(t, job.InputFilePaths, 2)
	assert.Equal(t, fmt.Sprintf("public/%s/raw/first.pdf", job.ID), job.InputFilePaths[0])

	// Raw inputs are persisted before the row exists.
	for _, p := range job.InputFilePaths {
		data, err := env.store.Download(ctx, env.config.Artifacts.RawBucket, p)
		require.NoError(t, err)
		assert.NotEmpty(t, data)
	}
}

func TestSubmitQueuePositionGrows(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	files := []UploadedFile{
		{Name: "a.pdf", Data: testPDF(t, "a", 1)},
		{Name: "b.pdf", Data: testPDF(t, "b", 1)},
	}

	first, err := env.service.Submit(ctx, "merge", files, "")
	require.NoError(t, err)
	second, err := env.service.Submit(ctx, "merge", files, "")
	require.NoError(t, err)

	assert.Equal(t, 1, first.QueuePosition)
	assert.Equal(t, 2, second.QueuePosition)
	assert.Greater(t, second.EstimatedWaitTimeSeconds, first.EstimatedWaitTimeSeconds)
}
