// -----------------------------------------------------------------------
// Job Model - durable job row and its state machine
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
)

// JobStatus is the lifecycle state of a job.
type JobStatus string

const (
	JobStatusPending    JobStatus = "pending"
	JobStatusInProgress JobStatus = "in_progress"
	JobStatusSucceeded  JobStatus = "succeeded"
	JobStatusFailed     JobStatus = "failed"
)

// IsValid reports whether the status is one of the four known states.
func (s JobStatus) IsValid() bool {
	switch s {
	case JobStatusPending, JobStatusInProgress, JobStatusSucceeded, JobStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether the status is absorbing. A terminal job
// never changes state again.
func (s JobStatus) IsTerminal() bool {
	return s == JobStatusSucceeded || s == JobStatusFailed
}

// Job is one unit of document-processing work. Rows are created pending,
// claimed by exactly one worker, and end succeeded or failed.
type Job struct {
	ID             string      `badgerhold:"key" json:"id"`
	ToolID         ToolID      `json:"tool_id"`
	Options        ToolOptions `json:"options"`
	InputFilePaths []string    `json:"input_file_paths"`

	Status   JobStatus `badgerholdIndex:"Status" json:"status"`
	Progress int       `json:"progress"`
	WorkerID string    `json:"worker_id,omitempty"`

	OutputFileName string `json:"output_file_name,omitempty"`
	PublicURL      string `json:"public_url,omitempty"`
	FileSizeBytes  int64  `json:"file_size_bytes,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`

	AccessCount int `json:"access_count"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewJob creates a pending job with a fresh id.
func NewJob(toolID ToolID, inputFilePaths []string, opts ToolOptions) *Job {
	now := time.Now().UTC()
	return &Job{
		ID:             uuid.New().String(),
		ToolID:         toolID,
		Options:        opts,
		InputFilePaths: inputFilePaths,
		Status:         JobStatusPending,
		Progress:       0,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
}

// Validate checks the row invariants that hold regardless of state.
func (j *Job) Validate() error {
	if j.ID == "" {
		return fmt.Errorf("job ID is required")
	}
	if j.ToolID == "" {
		return fmt.Errorf("tool ID is required")
	}
	if !j.Status.IsValid() {
		return fmt.Errorf("invalid status: %s", j.Status)
	}
	if j.Progress < 0 || j.Progress > 100 {
		return fmt.Errorf("progress out of range: %d", j.Progress)
	}
	return nil
}

// SetOutput records the processed artifact on a succeeding job.
func (j *Job) SetOutput(fileName, publicURL string, fileSize int64) {
	j.OutputFileName = fileName
	j.PublicURL = publicURL
	j.FileSizeBytes = fileSize
}

// ShortID returns the first eight characters of the job id, used in
// served file names.
func (j *Job) ShortID() string {
	if len(j.ID) > 8 {
		return j.ID[:8]
	}
	return j.ID
}

// RoundMB converts a byte count to megabytes rounded to two decimals.
func RoundMB(bytes int64) float64 {
	mb := float64(bytes) / (1024 * 1024)
	return math.Round(mb*100) / 100
}

// QueueCounts summarizes the live queue for position estimates.
type QueueCounts struct {
	Pending    int `json:"pending"`
	InProgress int `json:"in_progress"`
}

// AccessResult reports the outcome of one counted download.
type AccessResult struct {
	Deleted     bool `json:"deleted"`
	AccessCount int  `json:"access_count"`
}
