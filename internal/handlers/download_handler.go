// -----------------------------------------------------------------------
// Download Handler - counted proxied downloads, file size, manual delete
// -----------------------------------------------------------------------

package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
	storagebadger "github.com/ternarybob/docsmart/internal/storage/badger"
)

// DownloadHandler serves processed artifacts through the service so that
// every download is counted against the access threshold.
type DownloadHandler struct {
	config  *common.Config
	storage interfaces.JobStorage
	store   interfaces.ArtifactStore
	client  *retryablehttp.Client
	logger  arbor.ILogger
}

// NewDownloadHandler creates the download/file-size/delete handler.
func NewDownloadHandler(cfg *common.Config, storage interfaces.JobStorage, store interfaces.ArtifactStore) *DownloadHandler {
	client := retryablehttp.NewClient()
	client.RetryMax = 3
	client.Logger = nil

	return &DownloadHandler{
		config:  cfg,
		storage: storage,
		store:   store,
		client:  client,
		logger:  common.GetLogger(),
	}
}

// Download streams the processed artifact as an attachment. Each
// successful serve counts one access; the access after the threshold
// deletes the artifact and returns 410.
func (h *DownloadHandler) Download(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	jobID, ok := JobIDParam(w, r)
	if !ok {
		return
	}

	job, err := h.storage.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, storagebadger.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Download lookup failed")
		WriteError(w, http.StatusInternalServerError, "failed to read job")
		return
	}
	if job.Status != models.JobStatusSucceeded {
		WriteError(w, http.StatusNotFound, "no processed file for this job")
		return
	}

	// Fetch the bytes before the access is counted so a storage failure
	// never burns a download.
	data, err := h.fetchArtifact(r.Context(), job)
	if err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Artifact fetch failed")
		WriteError(w, http.StatusInternalServerError, "failed to read processed file")
		return
	}

	result, err := h.storage.IncrementAccessAndMaybeDelete(r.Context(), jobID, h.config.Retention.AccessThreshold, func(j *models.Job) error {
		return h.store.DeletePrefix(r.Context(), h.config.Artifacts.ProcessedBucket, path.Join("public", j.ID))
	})
	if err != nil {
		if errors.Is(err, storagebadger.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Access accounting failed")
		WriteError(w, http.StatusInternalServerError, "failed to record download")
		return
	}
	if result.Deleted {
		WriteError(w, http.StatusGone, "download limit reached, file deleted")
		return
	}

	contentType := mime.TypeByExtension(filepath.Ext(job.OutputFileName))
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, job.OutputFileName))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", len(data)))
	w.WriteHeader(http.StatusOK)
	w.Write(data)

	h.logger.Info().
		Str("job_id", jobID).
		Int("access_count", result.AccessCount).
		Msg("Processed file downloaded")
}

// FileSize reports the processed artifact's size in megabytes. The file
// is addressed by its job id; "fileId" is the historical parameter name
// and "jobId" is accepted as an alias.
func (h *DownloadHandler) FileSize(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	jobID := r.URL.Query().Get("fileId")
	if jobID == "" {
		jobID = r.URL.Query().Get("jobId")
	}
	if jobID == "" {
		WriteError(w, http.StatusBadRequest, "fileId query parameter is required")
		return
	}

	job, err := h.storage.Get(r.Context(), jobID)
	if err != nil {
		if errors.Is(err, storagebadger.ErrJobNotFound) {
			WriteError(w, http.StatusNotFound, "job not found")
			return
		}
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("File-size lookup failed")
		WriteError(w, http.StatusInternalServerError, "failed to read job")
		return
	}
	if job.Status != models.JobStatusSucceeded {
		WriteError(w, http.StatusNotFound, "no processed file for this job")
		return
	}

	WriteJSON(w, http.StatusOK, models.FileSizeResponse{
		FileSizeMB: models.RoundMB(job.FileSizeBytes),
	})
}

// Delete removes a job's processed artifacts and its row. The operation
// is idempotent; deleting an unknown job succeeds.
func (h *DownloadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	jobID, ok := JobIDParam(w, r)
	if !ok {
		return
	}

	prefix := path.Join("public", jobID)
	if err := h.store.DeletePrefix(r.Context(), h.config.Artifacts.ProcessedBucket, prefix); err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Artifact delete failed")
		WriteError(w, http.StatusInternalServerError, "failed to delete processed file")
		return
	}
	if err := h.store.DeletePrefix(r.Context(), h.config.Artifacts.RawBucket, prefix); err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Raw artifact delete failed")
		WriteError(w, http.StatusInternalServerError, "failed to delete raw files")
		return
	}
	if err := h.storage.Delete(r.Context(), jobID); err != nil {
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Job delete failed")
		WriteError(w, http.StatusInternalServerError, "failed to delete job")
		return
	}

	WriteJSON(w, http.StatusOK, map[string]bool{"success": true})
}

// fetchArtifact reads the processed bytes. Remote backends are fetched
// over HTTP with retries; the filesystem backend reads directly.
func (h *DownloadHandler) fetchArtifact(ctx context.Context, job *models.Job) ([]byte, error) {
	if h.config.Artifacts.Backend == "s3" && strings.HasPrefix(job.PublicURL, "http") {
		return h.fetchRemote(ctx, job.PublicURL)
	}

	objectPath := path.Join("public", job.ID, job.OutputFileName)
	return h.store.Download(ctx, h.config.Artifacts.ProcessedBucket, objectPath)
}

func (h *DownloadHandler) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build artifact request: %w", err)
	}

	resp, err := h.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch artifact: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("artifact fetch returned %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}
