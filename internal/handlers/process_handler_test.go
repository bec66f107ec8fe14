package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
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
	"github.com/ternarybob/docsmart/internal/jobs"
	"github.com/ternarybob/docsmart/internal/models"
	storagebadger "github.com/ternarybob/docsmart/internal/storage/badger"
	"github.com/ternarybob/docsmart/internal/tools"
)

type handlerEnv struct {
	config   *common.Config
	storage  interfaces.JobStorage
	store    *artifacts.FilesystemStore
	process  *ProcessHandler
	download *DownloadHandler
}

func newHandlerEnv(t *testing.T) *handlerEnv {
	t.Helper()

	logger := arbor.NewLogger()
	dir := t.TempDir()

	cfg := common.NewDefaultConfig()
	cfg.Storage.Badger.Path = filepath.Join(dir, "db")
	cfg.Artifacts.Root = filepath.Join(dir, "artifacts")

	manager, err := storagebadger.NewManager(logger, &cfg.Storage.Badger)
	require.NoError(t, err)
	t.Cleanup(func() { manager.Close() })

	store, err := artifacts.NewFilesystemStore(cfg.Artifacts.Root, cfg.Artifacts.PublicBaseURL, logger)
	require.NoError(t, err)

	registry := tools.NewRegistry(cfg, logger)
	service := jobs.NewService(cfg, manager.JobStorage(), store, registry, logger)

	return &handlerEnv{
		config:   cfg,
		storage:  manager.JobStorage(),
		store:    store,
		process:  NewProcessHandler(service, manager.JobStorage()),
		download: NewDownloadHandler(cfg, manager.JobStorage(), store),
	}
}

// testPDF renders a small one-page PDF.
func testPDF(t *testing.T, label string) []byte {
	t.Helper()

	pdf := fpdf.New("P", "pt", "Letter", "")
	pdf.AddPage()
	pdf.SetFont("Helvetica", "", 12)
	pdf.Text(72, 72, label)

	path := filepath.Join(t.TempDir(), "doc.pdf")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, pdf.Output(f))
	f.Close()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

// multipartSubmit builds a submission request body.
func multipartSubmit(t *testing.T, toolID, options string, files map[string][]byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	require.NoError(t, w.WriteField("toolId", toolID))
	if options != "" {
		require.NoError(t, w.WriteField("options", options))
	}
	for name, data := range files {
		part, err := w.CreateFormFile("files", name)
		require.NoError(t, err)
		_, err = part.Write(data)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

func TestSubmitAccepted(t *testing.T) {
	env := newHandlerEnv(t)

	body, contentType := multipartSubmit(t, "merge", "", map[string][]byte{
		"first.pdf":  testPDF(t, "first"),
		"second.pdf": testPDF(t, "second"),
	})

	req := httptest.NewRequest("POST", "/process-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.process.Handle(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	var resp models.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.JobID)
	assert.Equal(t, fmt.Sprintf("/process-pdf?jobId=%s", resp.JobID), resp.StatusCheckLink)
	assert.Equal(t, 1, resp.QueuePosition)
}

func TestSubmitValidationFailures(t *testing.T) {
	env := newHandlerEnv(t)

	tests := []struct {
		name    string
		toolID  string
		options string
		files   map[string][]byte
	}{
		{name: "unknown tool", toolID: "ocr", files: map[string][]byte{"a.pdf": testPDF(t, "a")}},
		{name: "merge with one file", toolID: "merge", files: map[string][]byte{"a.pdf": testPDF(t, "a")}},
		{name: "bad options", toolID: "compress", options: `{"x":1}`, files: map[string][]byte{"a.pdf": testPDF(t, "a")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			body, contentType := multipartSubmit(t, tt.toolID, tt.options, tt.files)
			req := httptest.NewRequest("POST", "/process-pdf", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()
			env.process.Handle(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
		})
	}
}

func TestSubmitWithoutFiles(t *testing.T) {
	env := newHandlerEnv(t)

	body, contentType := multipartSubmit(t, "merge", "", nil)
	req := httptest.NewRequest("POST", "/process-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.process.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReadUploadsOrdersFallbackFields(t *testing.T) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, field := range []string{"fileB", "fileC", "fileA"} {
		part, err := w.CreateFormFile(field, field+".pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("content " + field))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest("POST", "/process-pdf", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	require.NoError(t, req.ParseMultipartForm(multipartMemory))

	// Without a "files" field the uploads are flattened in field-name
	// order, so repeated parses always yield the same input order.
	files, err := readUploads(req)
	require.NoError(t, err)
	require.Len(t, files, 3)
	assert.Equal(t, "fileA.pdf", files[0].Name)
	assert.Equal(t, "fileB.pdf", files[1].Name)
	assert.Equal(t, "fileC.pdf", files[2].Name)
}

func TestStatusUnknownJob(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("GET", "/process-pdf?jobId=missing", nil)
	rec := httptest.NewRecorder()
	env.process.Handle(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusMissingParam(t *testing.T) {
	env := newHandlerEnv(t)

	req := httptest.NewRequest("GET", "/process-pdf", nil)
	rec := httptest.NewRecorder()
	env.process.Handle(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestStatusPendingJob(t *testing.T) {
	env := newHandlerEnv(t)

	body, contentType := multipartSubmit(t, "merge", "", map[string][]byte{
		"first.pdf":  testPDF(t, "first"),
		"second.pdf": testPDF(t, "second"),
	})
	req := httptest.NewRequest("POST", "/process-pdf", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	env.process.Handle(rec, req)
	require.Equal(t, http.StatusAccepted, rec.Code)

	var submitted models.SubmitResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &submitted))

	req = httptest.NewRequest("GET", "/process-pdf?jobId="+submitted.JobID, nil)
	rec = httptest.NewRecorder()
	env.process.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "pending", status.Status)
	assert.Equal(t, 0, status.Progress)
	assert.Empty(t, status.DownloadLink)
}

func TestStatusSucceededJobCarriesDownloadLink(t *testing.T) {
	env := newHandlerEnv(t)

	job := succeededJob(t, env, []byte("%PDF-1.4 fake"))

	req := httptest.NewRequest("GET", "/process-pdf?jobId="+job.ID, nil)
	rec := httptest.NewRecorder()
	env.process.Handle(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var status models.StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "succeeded", status.Status)
	assert.Equal(t, 100, status.Progress)
	assert.Equal(t, job.OutputFileName, status.OutputFileName)
	assert.Equal(t, fmt.Sprintf("/download-proxied-file?jobId=%s", job.ID), status.DownloadLink)
}
