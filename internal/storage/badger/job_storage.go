// -----------------------------------------------------------------------
// Job Storage - durable job repository with atomic claim and access gates
// -----------------------------------------------------------------------

package badger

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
	"github.com/timshannon/badgerhold/v4"
)

var (
	// ErrJobNotFound is returned when a job id resolves to no row.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoPendingJobs is returned by ClaimNext when the queue is empty.
	ErrNoPendingJobs = errors.New("no pending jobs")
)

// JobStorage implements interfaces.JobStorage on BadgerDB.
//
// Badger is an embedded single-process store, so the read-modify-write
// primitives (ClaimNext, IncrementAccessAndMaybeDelete) are serialized by
// a store-level mutex with a status/count re-check inside the critical
// section. No two workers ever observe the same claimed job.
type JobStorage struct {
	db     *BadgerDB
	logger arbor.ILogger

	// mu guards claim and access-count read-modify-write cycles.
	mu sync.Mutex
}

// Compile-time interface assertion
var _ interfaces.JobStorage = (*JobStorage)(nil)

// NewJobStorage creates a new JobStorage instance
func NewJobStorage(db *BadgerDB, logger arbor.ILogger) *JobStorage {
	return &JobStorage{
		db:     db,
		logger: logger,
	}
}

// InsertPending creates a pending job row.
func (s *JobStorage) InsertPending(ctx context.Context, job *models.Job) error {
	if err := job.Validate(); err != nil {
		return fmt.Errorf("invalid job: %w", err)
	}
	if job.Status != models.JobStatusPending {
		return fmt.Errorf("new jobs must be pending, got %s", job.Status)
	}

	if err := s.db.Store().Insert(job.ID, job); err != nil {
		return fmt.Errorf("failed to insert job: %w", err)
	}

	s.logger.Debug().
		Str("job_id", job.ID).
		Str("tool_id", string(job.ToolID)).
		Msg("Job inserted")
	return nil
}

// ClaimNext atomically claims the oldest pending job for workerID.
func (s *JobStorage) ClaimNext(ctx context.Context, workerID string) (*models.Job, error) {
	if workerID == "" {
		return nil, fmt.Errorf("worker ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var candidates []models.Job
	query := badgerhold.Where("Status").Eq(models.JobStatusPending).SortBy("CreatedAt").Limit(1)
	if err := s.db.Store().Find(&candidates, query); err != nil {
		return nil, fmt.Errorf("failed to query pending jobs: %w", err)
	}
	if len(candidates) == 0 {
		return nil, ErrNoPendingJobs
	}

	job := candidates[0]

	// Re-check under the lock before flipping the status.
	var current models.Job
	if err := s.db.Store().Get(job.ID, &current); err != nil {
		return nil, fmt.Errorf("failed to re-read candidate job: %w", err)
	}
	if current.Status != models.JobStatusPending {
		return nil, ErrNoPendingJobs
	}

	current.Status = models.JobStatusInProgress
	current.WorkerID = workerID
	current.Progress = 0
	current.UpdatedAt = time.Now().UTC()

	if err := s.db.Store().Update(current.ID, &current); err != nil {
		return nil, fmt.Errorf("failed to claim job: %w", err)
	}

	s.logger.Debug().
		Str("job_id", current.ID).
		Str("worker_id", workerID).
		Msg("Job claimed")

	return &current, nil
}

// UpdateProgress applies a partial update, enforcing the state machine.
func (s *JobStorage) UpdateProgress(ctx context.Context, update *models.JobUpdate) error {
	if update == nil || update.JobID == "" {
		return fmt.Errorf("job ID is required")
	}
	if !update.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", update.Status)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var job models.Job
	if err := s.db.Store().Get(update.JobID, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to get job: %w", err)
	}

	if err := validateTransition(&job, update); err != nil {
		return err
	}

	job.Status = update.Status
	job.Progress = update.Progress
	job.UpdatedAt = time.Now().UTC()

	switch update.Status {
	case models.JobStatusSucceeded:
		job.SetOutput(update.FileName, update.PublicURL, update.FileSize)
		job.Progress = 100
		job.WorkerID = ""
	case models.JobStatusFailed:
		job.ErrorMessage = update.ErrorMessage
		job.Progress = 0
		job.WorkerID = ""
	}

	if err := s.db.Store().Update(job.ID, &job); err != nil {
		return fmt.Errorf("failed to update job: %w", err)
	}
	return nil
}

// validateTransition rejects updates that violate the job state machine.
func validateTransition(job *models.Job, update *models.JobUpdate) error {
	if job.Status.IsTerminal() {
		return fmt.Errorf("job %s is already %s", job.ID, job.Status)
	}

	switch update.Status {
	case models.JobStatusPending:
		return fmt.Errorf("cannot transition back to pending")
	case models.JobStatusInProgress:
		if job.Status == models.JobStatusInProgress && update.Progress < job.Progress {
			return fmt.Errorf("progress must be non-decreasing: %d < %d", update.Progress, job.Progress)
		}
		if update.Progress < 0 || update.Progress > 100 {
			return fmt.Errorf("progress out of range: %d", update.Progress)
		}
	case models.JobStatusSucceeded:
		if job.Status != models.JobStatusInProgress {
			return fmt.Errorf("cannot succeed from %s", job.Status)
		}
		if update.FileName == "" || update.PublicURL == "" {
			return fmt.Errorf("succeeded update requires file name and public URL")
		}
	case models.JobStatusFailed:
		if job.Status != models.JobStatusInProgress {
			return fmt.Errorf("cannot fail from %s", job.Status)
		}
	}
	return nil
}

// IncrementAccessAndMaybeDelete atomically bumps the access count and
// removes the job once the threshold is exceeded. onDelete runs inside the
// critical section, before the row is removed, so the artifact is always
// deleted first.
func (s *JobStorage) IncrementAccessAndMaybeDelete(ctx context.Context, jobID string, threshold int, onDelete func(*models.Job) error) (*models.AccessResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}

	count := job.AccessCount + 1

	if count > threshold {
		if onDelete != nil {
			if err := onDelete(&job); err != nil {
				return nil, fmt.Errorf("failed to delete artifact for job %s: %w", jobID, err)
			}
		}
		if err := s.db.Store().Delete(jobID, &models.Job{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
			return nil, fmt.Errorf("failed to delete job: %w", err)
		}
		s.logger.Info().
			Str("job_id", jobID).
			Int("access_count", count).
			Msg("Access threshold exceeded, job removed")
		return &models.AccessResult{Deleted: true, AccessCount: count}, nil
	}

	job.AccessCount = count
	job.UpdatedAt = time.Now().UTC()
	if err := s.db.Store().Update(jobID, &job); err != nil {
		return nil, fmt.Errorf("failed to update access count: %w", err)
	}

	return &models.AccessResult{Deleted: false, AccessCount: count}, nil
}

// Get returns the job or ErrJobNotFound.
func (s *JobStorage) Get(ctx context.Context, jobID string) (*models.Job, error) {
	var job models.Job
	if err := s.db.Store().Get(jobID, &job); err != nil {
		if errors.Is(err, badgerhold.ErrNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// QueueCounts reports pending and in-progress totals for the ETA.
func (s *JobStorage) QueueCounts(ctx context.Context) (*models.QueueCounts, error) {
	pending, err := s.db.Store().Count(&models.Job{}, badgerhold.Where("Status").Eq(models.JobStatusPending))
	if err != nil {
		return nil, fmt.Errorf("failed to count pending jobs: %w", err)
	}
	inProgress, err := s.db.Store().Count(&models.Job{}, badgerhold.Where("Status").Eq(models.JobStatusInProgress))
	if err != nil {
		return nil, fmt.Errorf("failed to count in-progress jobs: %w", err)
	}
	return &models.QueueCounts{
		Pending:    int(pending),
		InProgress: int(inProgress),
	}, nil
}

// SweepTerminalOlderThan returns terminal jobs not updated within age.
// Non-terminal jobs are never returned regardless of age.
func (s *JobStorage) SweepTerminalOlderThan(ctx context.Context, age time.Duration) ([]*models.Job, error) {
	cutoff := time.Now().UTC().Add(-age)

	var jobs []models.Job
	query := badgerhold.Where("Status").In(models.JobStatusSucceeded, models.JobStatusFailed).
		And("UpdatedAt").Lt(cutoff)
	if err := s.db.Store().Find(&jobs, query); err != nil {
		return nil, fmt.Errorf("failed to query terminal jobs: %w", err)
	}

	result := make([]*models.Job, len(jobs))
	for i := range jobs {
		result[i] = &jobs[i]
	}
	return result, nil
}

// Delete removes a job row. Absent rows are ignored.
func (s *JobStorage) Delete(ctx context.Context, jobID string) error {
	if err := s.db.Store().Delete(jobID, &models.Job{}); err != nil && !errors.Is(err, badgerhold.ErrNotFound) {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}
