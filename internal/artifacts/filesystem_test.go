package artifacts

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

func newTestStore(t *testing.T) *FilesystemStore {
	t.Helper()

	store, err := NewFilesystemStore(t.TempDir(), "http://localhost:8080/artifacts", arbor.NewLogger())
	require.NoError(t, err)
	return store
}

func TestFilesystemRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	url, err := store.Upload(ctx, "raw-inputs", "public/j1/raw/a.pdf", []byte("hello"), "application/pdf")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/artifacts/raw-inputs/public/j1/raw/a.pdf", url)

	data, err := store.Download(ctx, "raw-inputs", "public/j1/raw/a.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("hello"), data)

	// No stray temp file remains.
	entries, err := os.ReadDir(filepath.Join(store.Root(), "raw-inputs", "public", "j1", "raw"))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestFilesystemUploadOverwrites(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, "processed-pdfs", "public/j1/out.pdf", []byte("v1"), "application/pdf")
	require.NoError(t, err)
	_, err = store.Upload(ctx, "processed-pdfs", "public/j1/out.pdf", []byte("v2"), "application/pdf")
	require.NoError(t, err)

	data, err := store.Download(ctx, "processed-pdfs", "public/j1/out.pdf")
	require.NoError(t, err)
	assert.Equal(t, []byte("v2"), data)
}

func TestFilesystemDeleteIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, "raw-inputs", "public/j1/raw/a.pdf", []byte("x"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, store.Delete(ctx, "raw-inputs", "public/j1/raw/a.pdf"))
	require.NoError(t, store.Delete(ctx, "raw-inputs", "public/j1/raw/a.pdf"))

	_, err = store.Download(ctx, "raw-inputs", "public/j1/raw/a.pdf")
	assert.Error(t, err)
}

func TestFilesystemDeletePrefix(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, "raw-inputs", "public/j1/raw/a.pdf", []byte("a"), "application/pdf")
	require.NoError(t, err)
	_, err = store.Upload(ctx, "raw-inputs", "public/j1/raw/b.pdf", []byte("b"), "application/pdf")
	require.NoError(t, err)
	_, err = store.Upload(ctx, "raw-inputs", "public/j2/raw/c.pdf", []byte("c"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, store.DeletePrefix(ctx, "raw-inputs", "public/j1"))

	_, err = store.Download(ctx, "raw-inputs", "public/j1/raw/a.pdf")
	assert.Error(t, err)
	_, err = store.Download(ctx, "raw-inputs", "public/j2/raw/c.pdf")
	assert.NoError(t, err, "other jobs' artifacts stay")

	// Absent prefixes delete cleanly.
	require.NoError(t, store.DeletePrefix(ctx, "raw-inputs", "public/never"))
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Upload(ctx, "raw-inputs", "../../escape", []byte("x"), "application/pdf")
	assert.Error(t, err)

	_, err = store.Download(ctx, "raw-inputs", "../../../etc/passwd")
	assert.Error(t, err)
}
