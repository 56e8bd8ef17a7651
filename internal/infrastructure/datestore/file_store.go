package datestore

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/ports"
)

// FileStore keeps key/value pairs in a JSON object on disk. Writes go through a temp
// file and rename.
type FileStore struct {
	path string
	mu   sync.Mutex
}

// NewFileStore returns a store backed by path. The file is created on first Set.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get implements ports.DateStore.
func (f *FileStore) Get(_ context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return "", false, err
	}
	value, ok := values[key]
	return value, ok, nil
}

// Set implements ports.DateStore.
func (f *FileStore) Set(_ context.Context, key, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	values, err := f.read()
	if err != nil {
		return err
	}
	values[key] = value
	return f.write(values)
}

func (f *FileStore) read() (map[string]string, error) {
	values := map[string]string{}
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return values, nil
		}
		return nil, fmt.Errorf("read store: %w", err)
	}
	if len(data) == 0 {
		return values, nil
	}
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, fmt.Errorf("decode store %s: %w", f.path, err)
	}
	return values, nil
}

func (f *FileStore) write(values map[string]string) error {
	if err := os.MkdirAll(filepath.Dir(f.path), domain.DirectoryPermissions); err != nil {
		return fmt.Errorf("create store directory: %w", err)
	}
	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(f.path), ".state-*.json")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), domain.SecureFilePermissions); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), f.path)
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

// Backend reports "file".
func (f *FileStore) Backend() string {
	return domain.StorageBackendFile
}

// Close is a no-op.
func (f *FileStore) Close() error {
	return nil
}

var _ ports.DateStore = (*FileStore)(nil)
