package helpers

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	configinfra "github.com/doeshing/companion-go/internal/infrastructure/config"
)

func TestConfigTreeGetSet(t *testing.T) {
	tree, err := NewConfigTree(configinfra.Defaults())
	if err != nil {
		t.Fatalf("NewConfigTree: %v", err)
	}

	got, err := tree.Get("compatibility.minimum_major")
	if err != nil || got != 17 {
		t.Fatalf("Get minimum_major = %v, %v", got, err)
	}

	if err := tree.Set("update.timezone", "UTC"); err != nil {
		t.Fatalf("Set timezone: %v", err)
	}
	if err := tree.Set("compatibility.blocking", true); err != nil {
		t.Fatalf("Set blocking: %v", err)
	}

	cfg, err := tree.Config()
	if err != nil {
		t.Fatalf("Config: %v", err)
	}
	if cfg.Update.Timezone != "UTC" || !cfg.Compatibility.Blocking {
		t.Fatalf("round trip lost values: %+v", cfg)
	}
}

func TestConfigTreeRejectsUnknownKeys(t *testing.T) {
	tree, err := NewConfigTree(configinfra.Defaults())
	if err != nil {
		t.Fatalf("NewConfigTree: %v", err)
	}

	tests := []string{"", "update.no_such_key", "nope.timezone", "update.timezone.deeper"}
	for _, key := range tests {
		if err := tree.Set(key, "x"); !errors.Is(err, ErrUnknownKey) {
			t.Errorf("Set(%q) error = %v, want ErrUnknownKey", key, err)
		}
	}
	if _, err := tree.Get("storage.missing"); !errors.Is(err, ErrUnknownKey) {
		t.Fatalf("Get missing error = %v", err)
	}
}

func TestParseValue(t *testing.T) {
	tests := []struct {
		in   string
		want interface{}
	}{
		{in: "true", want: true},
		{in: "17", want: 17},
		{in: "UTC", want: "UTC"},
		{in: "", want: ""},
		{in: "[unterminated", want: "[unterminated"},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, ParseValue(tt.in)); diff != "" {
			t.Errorf("ParseValue(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}

func TestSaveValidated(t *testing.T) {
	loader := configinfra.NewFileLoader(filepath.Join(t.TempDir(), "config.yaml"))

	cfg := configinfra.Defaults()
	cfg.Storage.Backend = "redis"
	if err := SaveValidated(loader, cfg); err == nil {
		t.Fatal("invalid config was saved")
	}

	cfg.Storage.Backend = "file"
	if err := SaveValidated(loader, cfg); err != nil {
		t.Fatalf("SaveValidated: %v", err)
	}
	if err := SaveValidated(loader, cfg); err != nil {
		t.Fatalf("second SaveValidated: %v", err)
	}
	backups, _ := filepath.Glob(loader.Path() + ".*.bak")
	if len(backups) == 0 {
		t.Fatal("expected a backup of the existing file")
	}

	saved, err := loader.LoadFile(t.Context())
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if saved.Storage.Backend != "file" {
		t.Fatalf("backend = %q", saved.Storage.Backend)
	}
}
