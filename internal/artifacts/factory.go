package artifacts

import (
	"context"
	"fmt"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/common"
	"github.com/ternarybob/docsmart/internal/interfaces"
)

// NewStore creates the artifact store selected by configuration.
func NewStore(ctx context.Context, cfg *common.ArtifactsConfig, logger arbor.ILogger) (interfaces.ArtifactStore, error) {
	switch cfg.Backend {
	case "", "filesystem":
		return NewFilesystemStore(cfg.Root, cfg.PublicBaseURL, logger)
	case "s3":
		return NewS3Store(ctx, &cfg.S3, logger)
	default:
		return nil, fmt.Errorf("unknown artifact backend: %s", cfg.Backend)
	}
}
