package objectclient

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askpdf-dev/askpdf/internal/core"
)

func TestMemoryUploadAndGet(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	url, err := store.UploadFile(ctx, "docs", "u1/d1/handbook.pdf", strings.NewReader("%PDF-1.4 body"), "application/pdf")
	require.NoError(t, err)

	// Stored URLs keep the virtual-hosted shape so they round-trip
	// through the same parser as real S3 URLs.
	bucket, key := core.ParseS3URL(url)
	assert.Equal(t, "docs", bucket)
	assert.Equal(t, "u1/d1/handbook.pdf", key)

	body, err := store.GetFile(ctx, "docs", "u1/d1/handbook.pdf")
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 body", string(body))
}

func TestMemoryGetUnknownObject(t *testing.T) {
	store := NewMemory()

	_, err := store.GetFile(context.Background(), "docs", "missing.pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestMemoryDelete(t *testing.T) {
	store := NewMemory()
	ctx := context.Background()

	_, err := store.UploadFile(ctx, "docs", "a.pdf", strings.NewReader("x"), "application/pdf")
	require.NoError(t, err)

	require.NoError(t, store.DeleteFile(ctx, "docs", "a.pdf"))

	_, err = store.GetFile(ctx, "docs", "a.pdf")
	require.Error(t, err)

	// Deleting again reports the missing object.
	require.Error(t, store.DeleteFile(ctx, "docs", "a.pdf"))
}
