// -----------------------------------------------------------------------
// Worker Pool - claim, download, dispatch, upload, update
// -----------------------------------------------------------------------

package jobs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
	storagebadger "github.com/ternarybob/docsmart/internal/storage/badger"
	"github.com/ternarybob/docsmart/internal/tools"
)

// successUpdateRetries bounds how often a worker retries the succeeded
// update after the artifact is already uploaded. The upload path is
// deterministic from the job id, so retries never duplicate artifacts.
const successUpdateRetries = 3

// WorkerPool runs a fleet of workers, each owning one job from claim to
// terminal state. Parallelism comes from multiple workers; handler calls
// inside a worker are synchronous.
type WorkerPool struct {
	config   *common.Config
	storage  interfaces.JobStorage
	store    interfaces.ArtifactStore
	registry *tools.Registry
	logger   arbor.ILogger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewWorkerPool creates a new worker pool.
func NewWorkerPool(ctx context.Context, cfg *common.Config, storage interfaces.JobStorage, store interfaces.ArtifactStore, registry *tools.Registry, logger arbor.ILogger) *WorkerPool {
	poolCtx, cancel := context.WithCancel(ctx)
	return &WorkerPool{
		config:   cfg,
		storage:  storage,
		store:    store,
		registry: registry,
		logger:   logger,
		ctx:      poolCtx,
		cancel:   cancel,
	}
}

// Start starts the worker goroutines.
func (wp *WorkerPool) Start() {
	count := wp.config.Workers.Count
	if count < 1 {
		count = 1
	}

	wp.logger.Info().
		Int("workers", count).
		Dur("poll_interval", wp.config.PollInterval()).
		Msg("Starting worker pool")

	for i := 0; i < count; i++ {
		wp.wg.Add(1)
		go wp.worker(i)
	}
}

// Stop cancels all workers and waits for in-flight jobs to finish.
func (wp *WorkerPool) Stop() {
	wp.logger.Info().Msg("Stopping worker pool")
	wp.cancel()
	wp.wg.Wait()
}

// worker is the main loop: claim the oldest pending job or sleep for the
// poll interval when the queue is empty.
func (wp *WorkerPool) worker(index int) {
	defer wp.wg.Done()

	workerID := common.NewWorkerID()
	pollInterval := wp.config.PollInterval()

	// Stagger worker starts to spread claims across the poll interval.
	stagger := pollInterval / time.Duration(wp.config.Workers.Count+1) * time.Duration(index)
	select {
	case <-wp.ctx.Done():
		return
	case <-time.After(stagger):
	}

	wp.logger.Debug().
		Str("worker_id", workerID).
		Int("index", index).
		Msg("Worker started")

	for {
		select {
		case <-wp.ctx.Done():
			wp.logger.Debug().Str("worker_id", workerID).Msg("Worker stopped")
			return
		default:
		}

		job, err := wp.storage.ClaimNext(wp.ctx, workerID)
		if err != nil {
			if !errors.Is(err, storagebadger.ErrNoPendingJobs) {
				wp.logger.Warn().Err(err).Str("worker_id", workerID).Msg("Claim failed")
			}
			select {
			case <-wp.ctx.Done():
				return
			case <-time.After(pollInterval):
			}
			continue
		}

		wp.processJob(job, workerID)
	}
}

// processJob owns the claimed job to its terminal state. Every error path
// marks the job failed; scratch files and raw inputs are cleaned up
// unconditionally.
func (wp *WorkerPool) processJob(job *models.Job, workerID string) {
	logger := wp.logger
	logger.Info().
		Str("job_id", job.ID).
		Str("tool_id", string(job.ToolID)).
		Str("worker_id", workerID).
		Msg("Processing job")

	scratch := filepath.Join(os.TempDir(), "docsmart", job.ID)
	defer os.RemoveAll(scratch)
	defer wp.deleteRawInputs(job)

	if err := os.MkdirAll(scratch, 0755); err != nil {
		wp.markFailed(job, fmt.Errorf("failed to create scratch directory: %w", err))
		return
	}

	wp.reportProgress(job.ID, 10)

	inputs, err := wp.downloadInputs(job, scratch)
	if err != nil {
		wp.markFailed(job, err)
		return
	}

	result, err := wp.dispatch(job, inputs)
	if err != nil {
		wp.markFailed(job, err)
		return
	}
	wp.reportProgress(job.ID, 80)

	finalName := tools.FinalOutputName(result, job.ID)
	outputPath := path.Join("public", job.ID, finalName)
	publicURL, err := wp.store.Upload(wp.ctx, wp.config.Artifacts.ProcessedBucket, outputPath, result.Data, result.MimeType)
	if err != nil {
		wp.markFailed(job, fmt.Errorf("failed to upload result: %w", err))
		return
	}

	update := &models.JobUpdate{
		JobID:     job.ID,
		Status:    models.JobStatusSucceeded,
		Progress:  100,
		FileName:  finalName,
		PublicURL: publicURL,
		FileSize:  int64(len(result.Data)),
	}

	// The artifact is already at its deterministic path; retry the state
	// update rather than losing the result.
	for attempt := 1; ; attempt++ {
		err = wp.storage.UpdateProgress(wp.ctx, update)
		if err == nil {
			break
		}
		if attempt >= successUpdateRetries {
			logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record success, leaving artifact for sweeper")
			return
		}
		time.Sleep(time.Duration(attempt) * 500 * time.Millisecond)
	}

	logger.Info().
		Str("job_id", job.ID).
		Str("file_name", finalName).
		Int("size", len(result.Data)).
		Msg("Job succeeded")
}

// downloadInputs pulls every raw input into the scratch directory.
// Progress ramps 10-20% across the downloads.
func (wp *WorkerPool) downloadInputs(job *models.Job, scratch string) ([]string, error) {
	inputs := make([]string, 0, len(job.InputFilePaths))
	for i, remote := range job.InputFilePaths {
		if err := wp.ctx.Err(); err != nil {
			return nil, fmt.Errorf("cancelled while downloading inputs: %w", err)
		}

		data, err := wp.store.Download(wp.ctx, wp.config.Artifacts.RawBucket, remote)
		if err != nil {
			return nil, fmt.Errorf("failed to download input %s: %w", remote, err)
		}

		local := filepath.Join(scratch, fmt.Sprintf("input_%d%s", i, filepath.Ext(remote)))
		if err := os.WriteFile(local, data, 0644); err != nil {
			return nil, fmt.Errorf("failed to write input file: %w", err)
		}
		inputs = append(inputs, local)

		wp.reportProgress(job.ID, 10+(10*(i+1))/len(job.InputFilePaths))
	}
	return inputs, nil
}

// dispatch runs the tool handler under its soft timeout with a monotone
// progress callback.
func (wp *WorkerPool) dispatch(job *models.Job, inputs []string) (*interfaces.ToolResult, error) {
	handler, err := wp.registry.Get(job.ToolID)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(wp.ctx, wp.registry.Timeout(job.ToolID))
	defer cancel()

	last := 20
	progress := func(p int) {
		// Handlers report 20-80; never let progress move backwards.
		if p < 20 {
			p = 20
		}
		if p > 80 {
			p = 80
		}
		if p <= last {
			return
		}
		last = p
		wp.reportProgress(job.ID, p)
	}

	result, err := handler.Handle(ctx, inputs, job.Options, progress)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("tool %s timed out after %s", job.ToolID, wp.registry.Timeout(job.ToolID))
		}
		return nil, err
	}
	if result == nil || len(result.Data) == 0 {
		return nil, fmt.Errorf("tool %s produced no output", job.ToolID)
	}
	return result, nil
}

// reportProgress records an in-progress tick; a stale or failed update is
// logged but never interrupts the job.
func (wp *WorkerPool) reportProgress(jobID string, progress int) {
	err := wp.storage.UpdateProgress(wp.ctx, &models.JobUpdate{
		JobID:    jobID,
		Status:   models.JobStatusInProgress,
		Progress: progress,
	})
	if err != nil {
		wp.logger.Debug().Err(err).Str("job_id", jobID).Int("progress", progress).Msg("Progress update skipped")
	}
}

// markFailed transitions the job to failed with a sanitized error
// message.
func (wp *WorkerPool) markFailed(job *models.Job, cause error) {
	message := sanitizeError(cause, job.Options)

	wp.logger.Warn().
		Str("job_id", job.ID).
		Str("tool_id", string(job.ToolID)).
		Str("error", message).
		Msg("Job failed")

	err := wp.storage.UpdateProgress(wp.ctx, &models.JobUpdate{
		JobID:        job.ID,
		Status:       models.JobStatusFailed,
		Progress:     0,
		ErrorMessage: message,
	})
	if err != nil {
		wp.logger.Error().Err(err).Str("job_id", job.ID).Msg("Failed to record job failure")
	}
}

// deleteRawInputs removes the raw uploads once the job has left the
// worker. Deletes are idempotent.
func (wp *WorkerPool) deleteRawInputs(job *models.Job) {
	prefix := path.Join("public", job.ID)
	if err := wp.store.DeletePrefix(context.Background(), wp.config.Artifacts.RawBucket, prefix); err != nil {
		wp.logger.Warn().Err(err).Str("job_id", job.ID).Msg("Failed to delete raw inputs")
	}
}

// sanitizeError strips sensitive option values from an error message
// before it is persisted on the job record.
func sanitizeError(err error, opts models.ToolOptions) string {
	message := err.Error()
	if opts.Password != "" {
		message = strings.ReplaceAll(message, opts.Password, "[redacted]")
	}
	return message
}
