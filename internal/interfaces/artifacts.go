package interfaces

import "context"

// ArtifactStore - opaque blob storage addressed by (bucket, path).
// Objects are immutable once written at a deterministic path; deletes are
// idempotent.
type ArtifactStore interface {
	// Upload stores data and returns a public URL for it.
	Upload(ctx context.Context, bucket, path string, data []byte, contentType string) (string, error)

	// Download returns the object bytes.
	Download(ctx context.Context, bucket, path string) ([]byte, error)

	// Delete removes a single object. Removing an absent object is not an
	// error.
	Delete(ctx context.Context, bucket, path string) error

	// DeletePrefix removes every object under the given prefix.
	DeletePrefix(ctx context.Context, bucket, prefix string) error

	// PublicURL returns the URL an object would be served from.
	PublicURL(bucket, path string) string
}
