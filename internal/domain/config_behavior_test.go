package domain_test

import (
	"testing"
	"time"

	"github.com/doeshing/companion-go/internal/domain"
)

// TestConfig_Defaults tests that empty settings resolve to the documented defaults
func TestConfig_Defaults(t *testing.T) {
	var cfg domain.Config

	if got := cfg.GetLocalVersion("1.0"); got != "1.0" {
		t.Errorf("GetLocalVersion() = %q, want compiled version", got)
	}
	if got := cfg.GetVersionURL(); got != domain.DefaultVersionURL {
		t.Errorf("GetVersionURL() = %q", got)
	}
	if got := cfg.GetFetchTimeout(); got != domain.DefaultFetchTimeout {
		t.Errorf("GetFetchTimeout() = %v", got)
	}
	if got := cfg.GetTimezone(); got != "Local" {
		t.Errorf("GetTimezone() = %q", got)
	}
	if got := cfg.GetProbeHost(); got != "github.com" {
		t.Errorf("GetProbeHost() = %q", got)
	}
	if got := cfg.GetBenignSubstring(); got != "Not connected to WiFi" {
		t.Errorf("GetBenignSubstring() = %q", got)
	}
	if got := cfg.GetHeartbeatSubject(); got != domain.DefaultHeartbeatTopic {
		t.Errorf("GetHeartbeatSubject() = %q", got)
	}
	if got := cfg.GetLifecycleSubject(); got != domain.DefaultLifecycleTopic {
		t.Errorf("GetLifecycleSubject() = %q", got)
	}
	if got := cfg.GetStorageBackend(); got != domain.StorageBackendSQLite {
		t.Errorf("GetStorageBackend() = %q", got)
	}
	if cfg.IsHeartbeatBrokerEnabled() || cfg.ShouldBlockOnIncompatible() {
		t.Error("zero config should not enable the broker or blocking")
	}
}

// TestConfig_GetFetchTimeout tests duration parsing and fallbacks
func TestConfig_GetFetchTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		want    time.Duration
	}{
		{name: "explicit", timeout: "3s", want: 3 * time.Second},
		{name: "malformed", timeout: "soon", want: domain.DefaultFetchTimeout},
		{name: "negative", timeout: "-1s", want: domain.DefaultFetchTimeout},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := domain.Config{Update: domain.UpdateSettings{Timeout: tt.timeout}}
			if got := cfg.GetFetchTimeout(); got != tt.want {
				t.Errorf("GetFetchTimeout() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestConfig_Overrides tests that explicit values win over defaults
func TestConfig_Overrides(t *testing.T) {
	cfg := domain.Config{
		App:       domain.AppSettings{LocalVersion: "1.2"},
		Heartbeat: domain.HeartbeatSettings{NATSURL: "nats://127.0.0.1:4222", Subject: "hb"},
		Storage:   domain.StorageSettings{Backend: "file"},
	}
	if got := cfg.GetLocalVersion("1.0"); got != "1.2" {
		t.Errorf("GetLocalVersion() = %q", got)
	}
	if !cfg.IsHeartbeatBrokerEnabled() || cfg.GetHeartbeatSubject() != "hb" {
		t.Error("heartbeat overrides not applied")
	}
	if cfg.GetStorageBackend() != "file" {
		t.Errorf("GetStorageBackend() = %q", cfg.GetStorageBackend())
	}
}

// TestConfig_ValidateConsistency tests cross-field rules
func TestConfig_ValidateConsistency(t *testing.T) {
	tests := []struct {
		name      string
		config    domain.Config
		wantError bool
	}{
		{name: "empty is consistent", config: domain.Config{}},
		{
			name:      "minor without major",
			config:    domain.Config{Compatibility: domain.CompatibilitySettings{MinimumMinor: 2}},
			wantError: true,
		},
		{
			name: "denied build without id",
			config: domain.Config{Compatibility: domain.CompatibilitySettings{
				DeniedBuilds: []domain.DeniedBuild{{Major: 18, Minor: 4}},
			}},
			wantError: true,
		},
		{
			name:      "simulation without version",
			config:    domain.Config{Platform: domain.PlatformSettings{Simulate: domain.SimulatedOS{Enabled: true}}},
			wantError: true,
		},
		{
			name: "simulation with version",
			config: domain.Config{Platform: domain.PlatformSettings{Simulate: domain.SimulatedOS{
				Enabled: true, Major: 18, Minor: 4, BuildID: "22E5200",
			}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.ValidateConsistency()
			if (err != nil) != tt.wantError {
				t.Errorf("ValidateConsistency() error = %v, wantError %v", err, tt.wantError)
			}
		})
	}
}
