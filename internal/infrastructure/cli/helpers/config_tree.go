package helpers

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/doeshing/companion-go/internal/app"
	configapp "github.com/doeshing/companion-go/internal/application/config"
	"github.com/doeshing/companion-go/internal/domain"
	configinfra "github.com/doeshing/companion-go/internal/infrastructure/config"
)

var (
	// ErrConfigLoaderUnavailable is returned when the container has no loader.
	ErrConfigLoaderUnavailable = errors.New("config loader unavailable")
	// ErrUnknownKey is returned for key paths that are not part of the config schema.
	ErrUnknownKey = errors.New("unknown configuration key")
)

// ConfigTree is the config as generic YAML nodes, addressed by dotted key paths
// such as "update.timezone".
type ConfigTree map[string]interface{}

// NewConfigTree converts cfg into its YAML tree.
func NewConfigTree(cfg domain.Config) (ConfigTree, error) {
	raw, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("encode config: %w", err)
	}
	tree := ConfigTree{}
	if err := yaml.Unmarshal(raw, &tree); err != nil {
		return nil, fmt.Errorf("decode config tree: %w", err)
	}
	return tree, nil
}

// Config decodes the tree back into the typed config.
func (t ConfigTree) Config() (domain.Config, error) {
	raw, err := yaml.Marshal(map[string]interface{}(t))
	if err != nil {
		return domain.Config{}, fmt.Errorf("encode config tree: %w", err)
	}
	var cfg domain.Config
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return domain.Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Get returns the node at path.
func (t ConfigTree) Get(path string) (interface{}, error) {
	var node interface{} = map[string]interface{}(t)
	for _, key := range splitKey(path) {
		m, ok := node.(map[string]interface{})
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, path)
		}
		if node, ok = m[key]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrUnknownKey, path)
		}
	}
	return node, nil
}

// Set replaces an existing node. New keys are rejected so typos never reach disk.
func (t ConfigTree) Set(path string, value interface{}) error {
	keys := splitKey(path)
	if len(keys) == 0 {
		return fmt.Errorf("%w: empty key", ErrUnknownKey)
	}
	parent := map[string]interface{}(t)
	for _, key := range keys[:len(keys)-1] {
		child, ok := parent[key].(map[string]interface{})
		if !ok {
			return fmt.Errorf("%w: %s", ErrUnknownKey, path)
		}
		parent = child
	}
	leaf := keys[len(keys)-1]
	if _, ok := parent[leaf]; !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, path)
	}
	parent[leaf] = value
	return nil
}

func splitKey(path string) []string {
	path = strings.Trim(strings.TrimSpace(path), ".")
	if path == "" {
		return nil
	}
	return strings.Split(path, ".")
}

// ParseValue reads a command-line value as YAML so "true", "17" and "[a, b]" keep
// their types. Anything that is not valid YAML is taken as a literal string.
func ParseValue(input string) interface{} {
	var parsed interface{}
	if err := yaml.Unmarshal([]byte(input), &parsed); err != nil || parsed == nil {
		return input
	}
	return parsed
}

// GetConfigLoader extracts the config loader from container with error handling
func GetConfigLoader(container *app.Container) (*configinfra.FileLoader, error) {
	if container == nil || container.ConfigLoader == nil {
		return nil, ErrConfigLoaderUnavailable
	}
	return container.ConfigLoader, nil
}

// SaveValidated validates cfg, backs up the current file when one exists and writes cfg.
func SaveValidated(loader *configinfra.FileLoader, cfg domain.Config) error {
	if err := configapp.Validate(cfg); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	if _, err := os.Stat(loader.Path()); err == nil {
		if _, err := loader.Backup(); err != nil {
			return fmt.Errorf("failed to create configuration backup: %w", err)
		}
	}
	if err := loader.Save(cfg); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	return nil
}
