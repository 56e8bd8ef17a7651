package datestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/logger"
)

func TestStoresRoundTrip(t *testing.T) {
	backends := []string{domain.StorageBackendSQLite, domain.StorageBackendFile}
	for _, backend := range backends {
		t.Run(backend, func(t *testing.T) {
			ctx := context.Background()
			path := filepath.Join(t.TempDir(), "state.db")
			store, err := New(domain.StorageSettings{Backend: backend, Path: path}, logger.NewNop())
			if err != nil {
				t.Fatalf("New: %v", err)
			}
			if store.Backend() != backend {
				t.Fatalf("backend = %s, want %s", store.Backend(), backend)
			}

			if _, ok, err := store.Get(ctx, domain.KeyLastCheckedDate); err != nil || ok {
				t.Fatalf("Get on empty store = ok %v err %v", ok, err)
			}
			if err := store.Set(ctx, domain.KeyLastCheckedDate, "2026-10-18"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Set(ctx, domain.KeyLastCheckedDate, "2026-10-19"); err != nil {
				t.Fatalf("overwrite: %v", err)
			}
			if err := store.Set(ctx, domain.KeyLocalVersion, "1.0"); err != nil {
				t.Fatalf("Set: %v", err)
			}
			if err := store.Close(); err != nil {
				t.Fatalf("Close: %v", err)
			}

			reopened, err := New(domain.StorageSettings{Backend: backend, Path: path}, logger.NewNop())
			if err != nil {
				t.Fatalf("reopen: %v", err)
			}
			defer reopened.Close()
			got, ok, err := reopened.Get(ctx, domain.KeyLastCheckedDate)
			if err != nil || !ok || got != "2026-10-19" {
				t.Fatalf("Get after reopen = %q ok=%v err=%v", got, ok, err)
			}
			got, ok, err = reopened.Get(ctx, domain.KeyLocalVersion)
			if err != nil || !ok || got != "1.0" {
				t.Fatalf("Get local version = %q ok=%v err=%v", got, ok, err)
			}
		})
	}
}

func TestFileBackendUsesJSONPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	store, err := New(domain.StorageSettings{Backend: "file", Path: path}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if want := filepath.Join(filepath.Dir(path), "state.json"); store.Path() != want {
		t.Fatalf("path = %s, want %s", store.Path(), want)
	}
}

func TestSQLiteFallsBackToFileStore(t *testing.T) {
	// A directory cannot be opened as a database.
	path := filepath.Join(t.TempDir(), "occupied")
	if err := os.Mkdir(path, 0o755); err != nil {
		t.Fatal(err)
	}
	store, err := New(domain.StorageSettings{Path: path}, logger.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Backend() != domain.StorageBackendFile {
		t.Fatalf("backend = %s, want file fallback", store.Backend())
	}
	if err := store.Set(context.Background(), "k", "v"); err != nil {
		t.Fatalf("Set on fallback: %v", err)
	}
}

func TestUnknownBackend(t *testing.T) {
	if _, err := New(domain.StorageSettings{Backend: "redis", Path: filepath.Join(t.TempDir(), "x")}, nil); err == nil {
		t.Fatal("expected error for unknown backend")
	}
}

func TestFileStoreRejectsCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	store := NewFileStore(path)
	if _, _, err := store.Get(context.Background(), "k"); err == nil {
		t.Fatal("expected decode error")
	}
	if err := store.Set(context.Background(), "k", "v"); err == nil {
		t.Fatal("Set should not clobber an unreadable store")
	}
}

func TestSQLiteClosed(t *testing.T) {
	store, err := OpenSQLite(filepath.Join(t.TempDir(), "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}
	if err := store.Set(context.Background(), "k", "v"); err != ErrClosed {
		t.Fatalf("Set after close = %v, want ErrClosed", err)
	}
}
