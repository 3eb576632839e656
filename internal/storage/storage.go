package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Uploader stages a file with an external object-storage collaborator and
// returns a durable public URL. Validation of type and size happens at the
// HTTP boundary before a file reaches an Uploader.
type Uploader interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader) (string, error)
}

// RandomKey builds a date-partitioned object key with the given file extension.
func RandomKey(ext string) string {
	d := time.Now().UTC()
	name := uuid.NewString()
	if ext != "" {
		name += ext
	}
	return path.Join("profiles", fmt.Sprintf("%d/%02d/%02d", d.Year(), d.Month(), d.Day()), name)
}

// MemoryUploader keeps uploads in memory for tests and keyless development.
type MemoryUploader struct {
	mu      sync.Mutex
	objects map[string][]byte

	// FailWith, when set, is returned by Upload to simulate collaborator failure.
	FailWith error
}

func NewMemory() *MemoryUploader {
	return &MemoryUploader{objects: make(map[string][]byte)}
}

func (m *MemoryUploader) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	if m.FailWith != nil {
		return "", m.FailWith
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return "memory://" + strings.TrimPrefix(key, "/"), nil
}

// Object returns a stored object's bytes, for test assertions.
func (m *MemoryUploader) Object(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	return data, ok
}
