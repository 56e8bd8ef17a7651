// Package datestore persists the version check record as small key/value pairs.
package datestore

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/filesystem"
	"github.com/doeshing/companion-go/internal/ports"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("datestore: closed")

// Store is a DateStore with a backing location.
type Store interface {
	ports.DateStore
	Path() string
	Backend() string
	Close() error
}

// DefaultPath returns ~/.companion/state.db.
func DefaultPath() string {
	return filepath.Join(filesystem.UserHomeDir(), ".companion", "state.db")
}

// New opens the store selected by backend. An empty path uses DefaultPath. When the
// sqlite database cannot be opened the JSON file store is used next to it.
func New(settings domain.StorageSettings, log ports.Logger) (Store, error) {
	path := settings.Path
	if path == "" {
		path = DefaultPath()
	}
	path = filesystem.ExpandPath(path)

	switch strings.ToLower(settings.Backend) {
	case "", domain.StorageBackendSQLite:
		store, err := OpenSQLite(path)
		if err == nil {
			return store, nil
		}
		fallback := jsonPath(path)
		if log != nil {
			log.Warn("sqlite store unavailable; using file store", map[string]interface{}{
				"path":     path,
				"fallback": fallback,
				"error":    err.Error(),
			})
		}
		return NewFileStore(fallback), nil
	case domain.StorageBackendFile:
		return NewFileStore(jsonPath(path)), nil
	default:
		return nil, fmt.Errorf("unknown storage backend %q", settings.Backend)
	}
}

func jsonPath(path string) string {
	if filepath.Ext(path) == ".json" {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path)) + ".json"
}
