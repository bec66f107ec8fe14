// -----------------------------------------------------------------------
// Filesystem artifact store - bucket/path layout on local disk
// -----------------------------------------------------------------------

package artifacts

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/docsmart/internal/interfaces"
)

// FilesystemStore implements interfaces.ArtifactStore on the local
// filesystem. Objects live at {root}/{bucket}/{path} and are served from
// {publicBaseURL}/{bucket}/{path}.
type FilesystemStore struct {
	root          string
	publicBaseURL string
	logger        arbor.ILogger
}

// Compile-time interface assertion
var _ interfaces.ArtifactStore = (*FilesystemStore)(nil)

// NewFilesystemStore creates a filesystem-backed artifact store rooted at
// the given directory.
func NewFilesystemStore(root, publicBaseURL string, logger arbor.ILogger) (*FilesystemStore, error) {
	if err := os.MkdirAll(root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact root: %w", err)
	}
	return &FilesystemStore{
		root:          root,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
		logger:        logger,
	}, nil
}

// Root returns the store's root directory.
func (s *FilesystemStore) Root() string {
	return s.root
}

func (s *FilesystemStore) objectPath(bucket, path string) (string, error) {
	clean := filepath.Join(s.root, bucket, filepath.FromSlash(path))
	// Reject traversal outside the root.
	if !strings.HasPrefix(clean, filepath.Clean(s.root)+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid artifact path: %s", path)
	}
	return clean, nil
}

// Upload stores data and returns a public URL for it.
func (s *FilesystemStore) Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	target, err := s.objectPath(bucket, path)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return "", fmt.Errorf("failed to create artifact directory: %w", err)
	}

	// Write through a temp file so a crash never leaves a partial object
	// at the deterministic path.
	tmp := target + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write artifact: %w", err)
	}
	if err := os.Rename(tmp, target); err != nil {
		os.Remove(tmp)
		return "", fmt.Errorf("failed to finalize artifact: %w", err)
	}

	s.logger.Debug().
		Str("bucket", bucket).
		Str("path", path).
		Int("size", len(data)).
		Msg("Artifact uploaded")

	return s.PublicURL(bucket, path), nil
}

// Download returns the object bytes.
func (s *FilesystemStore) Download(ctx context.Context, bucket, path string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	target, err := s.objectPath(bucket, path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(target)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s/%s: %w", bucket, path, err)
	}
	return data, nil
}

// Delete removes a single object. Absent objects are ignored.
func (s *FilesystemStore) Delete(ctx context.Context, bucket, path string) error {
	target, err := s.objectPath(bucket, path)
	if err != nil {
		return err
	}
	if err := os.Remove(target); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete artifact %s/%s: %w", bucket, path, err)
	}
	return nil
}

// DeletePrefix removes every object under the given prefix.
func (s *FilesystemStore) DeletePrefix(ctx context.Context, bucket, prefix string) error {
	target, err := s.objectPath(bucket, prefix)
	if err != nil {
		return err
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to delete artifact prefix %s/%s: %w", bucket, prefix, err)
	}
	return nil
}

// PublicURL returns the URL an object is served from.
func (s *FilesystemStore) PublicURL(bucket, path string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, bucket, path)
}
