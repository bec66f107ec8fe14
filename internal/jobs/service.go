// -----------------------------------------------------------------------
// Submission Service - validate, upload raw inputs, enqueue pending job
// -----------------------------------------------------------------------

package jobs

import (
	"context"
	"errors"
	"fmt"
	"path"

	"github.com/go-playground/validator/v10"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
	"github.com/ternarybob/docsmart/internal/tools"
)

// ValidationError marks a submission failure that should surface as 400.
type ValidationError struct {
	Err error
}

func (e *ValidationError) Error() string {
	return e.Err.Error()
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

// IsValidationError reports whether err is a submission validation
// failure.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// UploadedFile is one multipart file from a submission.
type UploadedFile struct {
	Name string
	Data []byte
}

// Service validates submissions and enqueues pending jobs.
type Service struct {
	config   *common.Config
	storage  interfaces.JobStorage
	store    interfaces.ArtifactStore
	registry *tools.Registry
	validate *validator.Validate
	logger   arbor.ILogger
}

// NewService creates the submission service.
func NewService(cfg *common.Config, storage interfaces.JobStorage, store interfaces.ArtifactStore, registry *tools.Registry, logger arbor.ILogger) *Service {
	return &Service{
		config:   cfg,
		storage:  storage,
		store:    store,
		registry: registry,
		validate: validator.New(),
		logger:   logger,
	}
}

// Submit validates the request, uploads the raw inputs and inserts a
// pending job. Validation failures return a ValidationError; everything
// else is infrastructure.
func (s *Service) Submit(ctx context.Context, toolID string, files []UploadedFile, optionsJSON string) (*models.SubmitResponse, error) {
	if toolID == "" {
		return nil, &ValidationError{Err: fmt.Errorf("toolId is required")}
	}
	tool := models.ToolID(toolID)
	if !tool.IsKnown() {
		return nil, &ValidationError{Err: fmt.Errorf("unknown tool: %s", toolID)}
	}
	if len(files) == 0 {
		return nil, &ValidationError{Err: fmt.Errorf("at least one file is required")}
	}

	opts, err := models.ParseToolOptions(optionsJSON)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	if err := s.validate.Struct(opts); err != nil {
		return nil, &ValidationError{Err: fmt.Errorf("invalid options: %w", err)}
	}

	handler, err := s.registry.Get(tool)
	if err != nil {
		return nil, &ValidationError{Err: err}
	}
	if err := handler.ValidateInputs(len(files), opts); err != nil {
		return nil, &ValidationError{Err: err}
	}

	job := models.NewJob(tool, nil, opts)

	// Upload raw inputs before the row exists so a pending job always has
	// its inputs in place.
	inputPaths := make([]string, 0, len(files))
	for _, file := range files {
		rawPath := path.Join("public", job.ID, "raw", path.Base(file.Name))
		if _, err := s.store.Upload(ctx, s.config.Artifacts.RawBucket, rawPath, file.Data, "application/octet-stream"); err != nil {
			return nil, fmt.Errorf("failed to upload raw input: %w", err)
		}
		inputPaths = append(inputPaths, rawPath)
	}
	job.InputFilePaths = inputPaths

	if err := s.storage.InsertPending(ctx, job); err != nil {
		return nil, fmt.Errorf("failed to enqueue job: %w", err)
	}

	counts, err := s.storage.QueueCounts(ctx)
	if err != nil {
		// The job is accepted either way; fall back to position 1.
		s.logger.Warn().Err(err).Msg("Failed to read queue counts for ETA")
		counts = &models.QueueCounts{Pending: 1}
	}

	position := counts.Pending
	if position < 1 {
		position = 1
	}

	s.logger.Info().
		Str("job_id", job.ID).
		Str("tool_id", string(tool)).
		Int("files", len(files)).
		Int("queue_position", position).
		Msg("Job submitted")

	return &models.SubmitResponse{
		Success:                  true,
		JobID:                    job.ID,
		StatusCheckLink:          fmt.Sprintf("/process-pdf?jobId=%s", job.ID),
		QueuePosition:            position,
		EstimatedWaitTimeSeconds: position * s.config.Queue.AverageJobTimeSeconds,
	}, nil
}
