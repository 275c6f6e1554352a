// Package storage is the durable client-side state layer: a small JSON
// key-value store backing the cart, the selected language and the admin
// token. Reads and writes are best-effort; corrupt or missing state is
// reported as absent, never as an error.
package storage

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
)

// Fixed namespace keys for persisted state.
const (
	KeyCart       = "cart"
	KeyLanguage   = "language"
	KeyAdminToken = "adminToken"
)

// Store persists JSON-encoded values under fixed keys.
type Store interface {
	// Get unmarshals the value stored under key into v and reports whether
	// a usable value was found. Missing or corrupt data yields false.
	Get(key string, v interface{}) bool
	// Set stores v under key. Failures are swallowed; persistence is
	// fire-and-forget.
	Set(key string, v interface{})
	// Delete removes the value stored under key.
	Delete(key string)
}

// FileStore keeps one JSON file per key inside a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

func (s *FileStore) Get(key string, v interface{}) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.path(key))
	if err != nil {
		return false
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false
	}
	return true
}

func (s *FileStore) Set(key string, v interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return
	}
	_ = os.WriteFile(s.path(key), data, 0o644)
}

func (s *FileStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = os.Remove(s.path(key))
}
