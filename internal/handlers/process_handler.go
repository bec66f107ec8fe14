// -----------------------------------------------------------------------
// Process Handler - job submission and status polling
// -----------------------------------------------------------------------

package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"sort"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/jobs"
	"github.com/ternarybob/docsmart/internal/models"
	storagebadger "github.com/ternarybob/docsmart/internal/storage/badger"
)

const (
	// maxUploadBytes caps a whole multipart submission.
	maxUploadBytes = 200 << 20

	// multipartMemory is the in-memory threshold before multipart parts
	// spill to disk.
	multipartMemory = 32 << 20
)

// ProcessHandler serves job submission (POST) and status polling (GET)
// on the same route.
type ProcessHandler struct {
	service *jobs.Service
	storage interfaces.JobStorage
	logger  arbor.ILogger
}

// NewProcessHandler creates the submission/status handler.
func NewProcessHandler(service *jobs.Service, storage interfaces.JobStorage) *ProcessHandler {
	return &ProcessHandler{
		service: service,
		storage: storage,
		logger:  common.GetLogger(),
	}
}

// Handle dispatches on method: POST submits, GET polls.
func (h *ProcessHandler) Handle(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.submit(w, r)
	case http.MethodGet:
		h.status(w, r)
	default:
		WriteError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// submit accepts a multipart form with toolId, optional options JSON and
// one or more files, and enqueues a job.
func (h *ProcessHandler) submit(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		WriteError(w, http.StatusBadRequest, fmt.Sprintf("invalid multipart form: %v", err))
		return
	}
	defer r.MultipartForm.RemoveAll()

	toolID := r.FormValue("toolId")
	options := r.FormValue("options")

	files, err := readUploads(r)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp, err := h.service.Submit(r.Context(), toolID, files, options)
	if err != nil {
		if jobs.IsValidationError(err) {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error().Err(err).Str("tool_id", toolID).Msg("Submission failed")
		WriteError(w, http.StatusInternalServerError, "failed to accept job")
		return
	}

	WriteJSON(w, http.StatusAccepted, resp)
}

// status reports the job's current state; terminal states carry the
// download link or the error message.
func (h *ProcessHandler) status(w http.ResponseWriter, r *http.Request) {
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
		h.logger.Error().Err(err).Str("job_id", jobID).Msg("Status lookup failed")
		WriteError(w, http.StatusInternalServerError, "failed to read job")
		return
	}

	resp := models.StatusResponse{
		Status:   string(job.Status),
		Progress: job.Progress,
	}
	switch job.Status {
	case models.JobStatusSucceeded:
		resp.OutputFileName = job.OutputFileName
		resp.DownloadLink = fmt.Sprintf("/download-proxied-file?jobId=%s", job.ID)
	case models.JobStatusFailed:
		resp.Error = job.ErrorMessage
	}

	WriteJSON(w, http.StatusOK, resp)
}

// readUploads collects the submitted files. The "files" field is read
// in part order, which fixes the input order for order-sensitive tools
// like merge; other field names are flattened in field-name order so the
// input order stays deterministic.
func readUploads(r *http.Request) ([]jobs.UploadedFile, error) {
	if r.MultipartForm == nil {
		return nil, fmt.Errorf("at least one file is required")
	}

	headerSets := [][]*multipart.FileHeader{r.MultipartForm.File["files"]}
	if len(headerSets[0]) == 0 {
		headerSets = headerSets[:0]
		fields := make([]string, 0, len(r.MultipartForm.File))
		for field := range r.MultipartForm.File {
			fields = append(fields, field)
		}
		sort.Strings(fields)
		for _, field := range fields {
			headerSets = append(headerSets, r.MultipartForm.File[field])
		}
	}

	var files []jobs.UploadedFile
	for _, headers := range headerSets {
		for _, header := range headers {
			f, err := header.Open()
			if err != nil {
				return nil, fmt.Errorf("failed to open upload %s: %v", header.Filename, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, fmt.Errorf("failed to read upload %s: %v", header.Filename, err)
			}
			if len(data) == 0 {
				return nil, fmt.Errorf("upload %s is empty", header.Filename)
			}
			files = append(files, jobs.UploadedFile{
				Name: header.Filename,
				Data: data,
			})
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("at least one file is required")
	}
	return files, nil
}
