package common

import (
	"fmt"
	"os"

	"github.com/google/uuid"
)

// NewWorkerID generates a unique worker identifier.
// Format: worker-<pid>-<short uuid>
func NewWorkerID() string {
	return fmt.Sprintf("worker-%d-%s", os.Getpid(), uuid.New().String()[:8])
}
