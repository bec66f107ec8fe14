// -----------------------------------------------------------------------
// Retention Sweeper - cron-driven cleanup of expired terminal jobs
// -----------------------------------------------------------------------

package jobs

import (
	"context"
	"fmt"
	"path"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
	"github.com/ternarybob/docsmart/internal/models"
)

// Sweeper removes terminal jobs older than the retention window, always
// deleting artifacts before the job row. A job whose artifacts fail to
// delete keeps its row and is retried on the next tick.
type Sweeper struct {
	config  *common.Config
	storage interfaces.JobStorage
	store   interfaces.ArtifactStore
	logger  arbor.ILogger

	cron      *cron.Cron
	startOnce sync.Once
}

// NewSweeper creates the retention sweeper.
func NewSweeper(cfg *common.Config, storage interfaces.JobStorage, store interfaces.ArtifactStore, logger arbor.ILogger) *Sweeper {
	return &Sweeper{
		config:  cfg,
		storage: storage,
		store:   store,
		logger:  logger,
		cron:    cron.New(),
	}
}

// Start schedules the sweep at the configured interval. Calling Start
// more than once is a no-op.
func (s *Sweeper) Start() error {
	var err error
	s.startOnce.Do(func() {
		spec := fmt.Sprintf("@every %s", s.config.CleanupInterval())
		if _, addErr := s.cron.AddFunc(spec, func() {
			s.Sweep(context.Background())
		}); addErr != nil {
			err = fmt.Errorf("failed to schedule sweeper: %w", addErr)
			return
		}
		s.cron.Start()
		s.logger.Info().
			Dur("interval", s.config.CleanupInterval()).
			Dur("window", s.config.RetentionWindow()).
			Msg("Retention sweeper started")
	})
	return err
}

// Stop halts the schedule and waits for a running sweep to finish.
func (s *Sweeper) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info().Msg("Retention sweeper stopped")
}

// Sweep runs one cleanup pass and returns the number of jobs removed.
func (s *Sweeper) Sweep(ctx context.Context) int {
	jobs, err := s.storage.SweepTerminalOlderThan(ctx, s.config.RetentionWindow())
	if err != nil {
		s.logger.Warn().Err(err).Msg("Retention query failed")
		return 0
	}
	if len(jobs) == 0 {
		return 0
	}

	removed := 0
	for _, job := range jobs {
		if err := s.removeJob(ctx, job); err != nil {
			s.logger.Warn().
				Err(err).
				Str("job_id", job.ID).
				Msg("Retention cleanup failed, will retry next tick")
			continue
		}
		removed++
	}

	s.logger.Info().
		Int("removed", removed).
		Int("expired", len(jobs)).
		Msg("Retention sweep complete")
	return removed
}

// removeJob deletes a job's artifacts, then its row. Prefix deletes are
// idempotent, so a partial failure is safe to retry.
func (s *Sweeper) removeJob(ctx context.Context, job *models.Job) error {
	prefix := path.Join("public", job.ID)

	if err := s.store.DeletePrefix(ctx, s.config.Artifacts.ProcessedBucket, prefix); err != nil {
		return fmt.Errorf("failed to delete processed artifacts: %w", err)
	}
	if err := s.store.DeletePrefix(ctx, s.config.Artifacts.RawBucket, prefix); err != nil {
		return fmt.Errorf("failed to delete raw artifacts: %w", err)
	}
	if err := s.storage.Delete(ctx, job.ID); err != nil {
		return fmt.Errorf("failed to delete job row: %w", err)
	}

	s.logger.Debug().
		Str("job_id", job.ID).
		Str("status", string(job.Status)).
		Msg("Expired job removed")
	return nil
}
