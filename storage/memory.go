package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
)

// memoryStore keeps objects in process. It backs snapshot export when no
// bucket is configured.
type memoryStore struct {
	mu      sync.RWMutex
	objects map[string][]byte
	baseURL string
	logger  *slog.Logger
}

func NewMemoryStore(baseURL string, logger *slog.Logger) ObjectStore {
	return &memoryStore{objects: make(map[string][]byte), baseURL: baseURL, logger: logger}
}

func (m *memoryStore) Upload(_ context.Context, key string, _ string, reader io.Reader) (*UploadResult, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, reader); err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}
	m.mu.Lock()
	m.objects[key] = buf.Bytes()
	m.mu.Unlock()
	return &UploadResult{Key: key, Location: m.GetPublicURL(key)}, nil
}

func (m *memoryStore) Download(_ context.Context, key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
	}
	return append([]byte(nil), data...), nil
}

func (m *memoryStore) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	m.mu.Unlock()
	return nil
}

func (m *memoryStore) GetPublicURL(key string) string {
	return publicURL(m.baseURL, key, m.logger)
}
