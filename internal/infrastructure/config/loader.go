// Package config loads and persists ~/.companion/config.yaml.
package config

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/doeshing/companion-go/assets"
	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/filesystem"
	"github.com/doeshing/companion-go/internal/ports"
)

// EnvConfigPath overrides the config file location.
const EnvConfigPath = "COMPANION_CONFIG"

// FileLoader loads YAML configuration from ~/.companion/config.yaml (overridable via
// COMPANION_CONFIG). Environment variables tagged on domain.Config win over the file.
type FileLoader struct {
	overridePath string
}

// NewFileLoader builds a new loader.
func NewFileLoader(path string) *FileLoader {
	return &FileLoader{overridePath: path}
}

// Load implements ports.ConfigProvider.
func (l *FileLoader) Load(ctx context.Context) (domain.Config, error) {
	cfg, err := l.LoadFile(ctx)
	if err != nil {
		return domain.Config{}, err
	}
	if err := ApplyEnv(&cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// LoadFile reads the file without environment overrides, writing defaults on first use.
// Commands that save the config back start from this so overrides are not persisted.
func (l *FileLoader) LoadFile(context.Context) (domain.Config, error) {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return domain.Config{}, fmt.Errorf("ensure config dir: %w", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			cfg := Defaults()
			if err := writeConfig(path, cfg); err != nil {
				return domain.Config{}, err
			}
			return cfg, nil
		}
		return domain.Config{}, err
	}

	var cfg domain.Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return hydrateDefaults(cfg), nil
}

// ApplyEnv overlays COMPANION_* environment variables onto cfg.
func ApplyEnv(cfg *domain.Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

func (l *FileLoader) resolvePath() string {
	if l.overridePath != "" {
		return filesystem.ExpandPath(l.overridePath)
	}
	if custom := os.Getenv(EnvConfigPath); custom != "" {
		return filesystem.ExpandPath(custom)
	}
	return filepath.Join(filesystem.UserHomeDir(), ".companion", "config.yaml")
}

func ensureConfigDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), domain.DirectoryPermissions)
}

func writeConfig(path string, cfg domain.Config) error {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, raw, domain.SecureFilePermissions)
}

// Path returns the resolved config file path.
func (l *FileLoader) Path() string {
	return l.resolvePath()
}

// Save writes the given config back to disk.
func (l *FileLoader) Save(cfg domain.Config) error {
	path := l.resolvePath()
	if err := ensureConfigDir(path); err != nil {
		return err
	}
	return writeConfig(path, cfg)
}

// Reset overwrites the config with defaults and returns the default snapshot.
func (l *FileLoader) Reset() (domain.Config, error) {
	cfg := Defaults()
	if err := l.Save(cfg); err != nil {
		return domain.Config{}, err
	}
	return cfg, nil
}

// Backup copies the current config file to a timestamped backup.
func (l *FileLoader) Backup() (string, error) {
	path := l.resolvePath()
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	backup := fmt.Sprintf("%s.%s.bak", path, time.Now().Format("20060102T150405"))
	if err := os.WriteFile(backup, data, domain.SecureFilePermissions); err != nil {
		return "", err
	}
	return backup, nil
}

// Defaults returns the embedded default configuration.
func Defaults() domain.Config {
	var cfg domain.Config
	if err := yaml.Unmarshal(assets.DefaultConfigYAML, &cfg); err != nil {
		// Embedded YAML is compiled in; keep a usable minimum if it is ever broken.
		return hydrateDefaults(domain.Config{ConfigFormatVersion: "1"})
	}
	return hydrateDefaults(cfg)
}

func hydrateDefaults(cfg domain.Config) domain.Config {
	if cfg.ConfigFormatVersion == "" {
		cfg.ConfigFormatVersion = "1"
	}
	if cfg.Update.VersionURL == "" {
		cfg.Update.VersionURL = domain.DefaultVersionURL
	}
	if cfg.Update.Timeout == "" {
		cfg.Update.Timeout = domain.DefaultFetchTimeout.String()
	}
	if cfg.Update.Timezone == "" {
		cfg.Update.Timezone = domain.DefaultTimezone
	}
	if cfg.Compatibility.MinimumMajor == 0 {
		cfg.Compatibility.MinimumMajor = domain.DefaultMinimumMajor
		cfg.Compatibility.MinimumMinor = domain.DefaultMinimumMinor
	}
	if cfg.Network.ProbeHost == "" {
		cfg.Network.ProbeHost = domain.DefaultProbeHost
	}
	if cfg.Network.BenignSubstring == "" {
		cfg.Network.BenignSubstring = domain.DefaultBenignSubstring
	}
	if cfg.Heartbeat.Subject == "" {
		cfg.Heartbeat.Subject = domain.DefaultHeartbeatTopic
	}
	if cfg.Lifecycle.NATSSubject == "" {
		cfg.Lifecycle.NATSSubject = domain.DefaultLifecycleTopic
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = domain.StorageBackendSQLite
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = "~/.companion/state.db"
	}
	return cfg
}

var _ ports.ConfigProvider = (*FileLoader)(nil)
