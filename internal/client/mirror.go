package client

import (
	"encoding/json"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
)

// Mirror keys for the two stored identities.
const (
	mirrorKeyUser  = "user"
	mirrorKeyAdmin = "admin"
)

// Mirror is a durable key-value file backing the state store. Each write
// rewrites the whole file through a temp file and rename, so a crash never
// leaves a half-written mirror behind.
type Mirror struct {
	mu   sync.Mutex
	path string
}

func NewMirror(path string) *Mirror {
	return &Mirror{path: path}
}

// Get decodes the value stored under key into out. It returns false when the
// key is absent or the mirror file does not exist yet.
func (m *Mirror) Get(key string, out any) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.load()
	if err != nil {
		return false, err
	}
	raw, ok := data[key]
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return false, err
	}
	return true, nil
}

func (m *Mirror) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.load()
	if err != nil {
		return err
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	data[key] = raw
	return m.store(data)
}

func (m *Mirror) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, err := m.load()
	if err != nil {
		return err
	}
	if _, ok := data[key]; !ok {
		return nil
	}
	delete(data, key)
	return m.store(data)
}

func (m *Mirror) load() (map[string]json.RawMessage, error) {
	raw, err := os.ReadFile(m.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, err
	}
	data := map[string]json.RawMessage{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		// A corrupt mirror is treated as empty rather than wedging the app.
		return map[string]json.RawMessage{}, nil
	}
	return data, nil
}

func (m *Mirror) store(data map[string]json.RawMessage) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	dir := filepath.Dir(m.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".mirror-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	return os.Rename(tmpName, m.path)
}
