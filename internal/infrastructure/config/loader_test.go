package config

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/doeshing/companion-go/internal/domain"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")
	loader := NewFileLoader(path)

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("first load should equal defaults (-want +got):\n%s", diff)
	}
	if cfg.Update.VersionURL != domain.DefaultVersionURL || cfg.Compatibility.MinimumMajor != 17 {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Network.BenignSubstring != "Not connected to WiFi" {
		t.Fatalf("benign substring = %q", cfg.Network.BenignSubstring)
	}
}

func TestLoadHydratesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := "compatibility:\n  blocking: true\nstorage:\n  backend: file\n"
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatal(err)
	}
	cfg, err := NewFileLoader(path).Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Compatibility.Blocking || cfg.Storage.Backend != "file" {
		t.Fatalf("file values lost: %+v", cfg)
	}
	if cfg.Update.Timeout != "15s" || cfg.Heartbeat.Subject != domain.DefaultHeartbeatTopic {
		t.Fatalf("defaults not hydrated: %+v", cfg.Update)
	}
}

func TestEnvOverridesAreNotPersisted(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)
	if _, err := loader.Load(context.Background()); err != nil {
		t.Fatal(err)
	}

	t.Setenv("COMPANION_VERSION_URL", "http://127.0.0.1:9/version.txt")
	t.Setenv("COMPANION_TIMEZONE", "UTC")

	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Update.VersionURL != "http://127.0.0.1:9/version.txt" || cfg.Update.Timezone != "UTC" {
		t.Fatalf("env overrides not applied: %+v", cfg.Update)
	}

	fileCfg, err := loader.LoadFile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if fileCfg.Update.VersionURL != domain.DefaultVersionURL {
		t.Fatalf("LoadFile picked up env override: %q", fileCfg.Update.VersionURL)
	}
}

func TestConfigPathFromEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv(EnvConfigPath, path)
	if got := NewFileLoader("").Path(); got != path {
		t.Fatalf("Path() = %s, want %s", got, path)
	}
}

func TestSaveResetBackup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	loader := NewFileLoader(path)
	cfg, err := loader.Load(context.Background())
	if err != nil {
		t.Fatal(err)
	}

	cfg.Compatibility.Blocking = true
	if err := loader.Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	backup, err := loader.Backup()
	if err != nil {
		t.Fatalf("Backup: %v", err)
	}
	data, err := os.ReadFile(backup)
	if err != nil || !strings.Contains(string(data), "blocking: true") {
		t.Fatalf("backup content wrong: %s (%v)", data, err)
	}

	reset, err := loader.Reset()
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if reset.Compatibility.Blocking {
		t.Fatal("Reset should restore defaults")
	}
	reloaded, err := loader.LoadFile(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if reloaded.Compatibility.Blocking {
		t.Fatal("reset not persisted")
	}
}

func TestLoadRejectsInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("update: [unterminated"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := NewFileLoader(path).Load(context.Background()); err == nil {
		t.Fatal("expected parse error")
	}
}
