// -----------------------------------------------------------------------
// API Models - request/response payloads for the HTTP surface
// -----------------------------------------------------------------------

package models

// SubmitResponse acknowledges an accepted submission.
type SubmitResponse struct {
	Success                  bool   `json:"success"`
	JobID                    string `json:"jobId"`
	StatusCheckLink          string `json:"statusCheckLink"`
	QueuePosition            int    `json:"queuePosition"`
	EstimatedWaitTimeSeconds int    `json:"estimatedWaitTimeSeconds"`
}

// StatusResponse reports a job's current state to a poller.
type StatusResponse struct {
	Status         string `json:"status"`
	Progress       int    `json:"progress"`
	OutputFileName string `json:"outputFileName,omitempty"`
	DownloadLink   string `json:"downloadLink,omitempty"`
	Error          string `json:"error,omitempty"`
}

// FileSizeResponse reports a processed artifact's size in megabytes.
type FileSizeResponse struct {
	FileSizeMB float64 `json:"file_size_mb"`
}

// ErrorResponse is the generic error body.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
