package interfaces

import (
	"context"
	"time"

	"github.com/ternarybob/docsmart/internal/models"
)

// JobStorage - durable job repository. It exclusively owns state
// transitions; ClaimNext and IncrementAccessAndMaybeDelete are the only
// read-modify-write primitives and are atomic with respect to concurrent
// callers.
type JobStorage interface {
	// InsertPending creates a pending job row.
	InsertPending(ctx context.Context, job *models.Job) error

	// ClaimNext atomically selects the oldest pending job, marks it
	// in_progress under workerID and returns it. Returns ErrNoPendingJobs
	// when the queue is empty. No two callers ever observe the same job.
	ClaimNext(ctx context.Context, workerID string) (*models.Job, error)

	// UpdateProgress applies a partial update, rejecting transitions that
	// violate the state machine (terminal states are absorbing, progress
	// is monotone within in_progress).
	UpdateProgress(ctx context.Context, update *models.JobUpdate) error

	// IncrementAccessAndMaybeDelete atomically bumps the access count.
	// When the post-increment count exceeds the threshold the row is
	// removed and Deleted=true is returned; onDelete runs inside the
	// critical section so the artifact is gone before the row is.
	IncrementAccessAndMaybeDelete(ctx context.Context, jobID string, threshold int, onDelete func(*models.Job) error) (*models.AccessResult, error)

	// Get returns the job or ErrJobNotFound.
	Get(ctx context.Context, jobID string) (*models.Job, error)

	// QueueCounts reports pending and in-progress totals.
	QueueCounts(ctx context.Context) (*models.QueueCounts, error)

	// SweepTerminalOlderThan returns terminal jobs whose last update is
	// older than the given age. The caller deletes artifacts and then
	// calls Delete per job.
	SweepTerminalOlderThan(ctx context.Context, age time.Duration) ([]*models.Job, error)

	// Delete removes a job row. Deleting an absent row is not an error.
	Delete(ctx context.Context, jobID string) error
}

// StorageManager aggregates the typed stores behind a single lifecycle.
type StorageManager interface {
	JobStorage() JobStorage
	Close() error
}
