package objectclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/askpdf-dev/askpdf/internal/core"
)

// Memory is an in-process object store for local development and tests.
// It hands out the same virtual-hosted URL shape as S3 so stored URLs
// stay parseable by core.ParseS3URL.
type Memory struct {
	mu      sync.RWMutex
	objects map[string][]byte
}

var _ core.ObjectClient = (*Memory)(nil)

func NewMemory() *Memory {
	return &Memory{objects: make(map[string][]byte)}
}

func objectKey(bucket, key string) string {
	return bucket + "/" + key
}

func (m *Memory) UploadFile(_ context.Context, bucket, key string, data io.Reader, _ string) (string, error) {
	body, err := io.ReadAll(data)
	if err != nil {
		return "", fmt.Errorf("read upload body: %w", err)
	}

	m.mu.Lock()
	m.objects[objectKey(bucket, key)] = body
	m.mu.Unlock()

	return fmt.Sprintf("https://%s.s3.local.amazonaws.com/%s", bucket, key), nil
}

func (m *Memory) DeleteFile(_ context.Context, bucket, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := objectKey(bucket, key)
	if _, ok := m.objects[k]; !ok {
		return fmt.Errorf("object %s not found", k)
	}
	delete(m.objects, k)
	return nil
}

func (m *Memory) GetFile(ctx context.Context, bucket, key string) ([]byte, error) {
	rc, err := m.GetObjectReader(ctx, bucket, key)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func (m *Memory) GetObjectReader(_ context.Context, bucket, key string) (io.ReadCloser, error) {
	m.mu.RLock()
	body, ok := m.objects[objectKey(bucket, key)]
	m.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("object %s not found", objectKey(bucket, key))
	}
	return io.NopCloser(bytes.NewReader(body)), nil
}
