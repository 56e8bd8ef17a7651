package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/doeshing/companion-go/internal/domain"
	"github.com/doeshing/companion-go/internal/pkg/clock"
)

// Validate ensures config structure is consistent.
func Validate(cfg domain.Config) error {
	if err := validateUpdate(cfg.Update); err != nil {
		return err
	}
	if err := validateCompatibility(cfg.Compatibility); err != nil {
		return err
	}
	if err := validateHeartbeat(cfg.Heartbeat); err != nil {
		return err
	}
	if err := validateStorage(cfg.Storage); err != nil {
		return err
	}
	if err := validateTelemetry(cfg.Telemetry); err != nil {
		return err
	}
	return cfg.ValidateConsistency()
}

func validateUpdate(update domain.UpdateSettings) error {
	if update.VersionURL != "" {
		u, err := url.Parse(update.VersionURL)
		if err != nil {
			return fmt.Errorf("update.version_url invalid: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("update.version_url must be http or https, got %q", u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("update.version_url has no host")
		}
	}
	if update.Timeout != "" {
		d, err := time.ParseDuration(update.Timeout)
		if err != nil {
			return fmt.Errorf("update.timeout invalid: %w", err)
		}
		if d <= 0 {
			return fmt.Errorf("update.timeout must be > 0")
		}
	}
	if _, err := clock.LoadLocation(update.Timezone); err != nil {
		return fmt.Errorf("update.timezone invalid: %w", err)
	}
	return nil
}

func validateCompatibility(compat domain.CompatibilitySettings) error {
	if compat.MinimumMajor < 0 || compat.MinimumMinor < 0 {
		return fmt.Errorf("compatibility minimum version must be >= 0")
	}
	for i, build := range compat.DeniedBuilds {
		if build.Major < 0 || build.Minor < 0 || build.Patch < 0 {
			return fmt.Errorf("compatibility.denied_builds[%d] has a negative version component", i)
		}
	}
	return nil
}

func validateHeartbeat(hb domain.HeartbeatSettings) error {
	if hb.NATSURL == "" {
		return nil
	}
	for _, server := range strings.Split(hb.NATSURL, ",") {
		u, err := url.Parse(strings.TrimSpace(server))
		if err != nil {
			return fmt.Errorf("heartbeat.nats_url invalid: %w", err)
		}
		switch u.Scheme {
		case "nats", "tls", "ws", "wss":
		default:
			return fmt.Errorf("heartbeat.nats_url scheme must be nats|tls|ws|wss, got %q", u.Scheme)
		}
	}
	return nil
}

func validateStorage(storage domain.StorageSettings) error {
	switch strings.ToLower(storage.Backend) {
	case "", domain.StorageBackendSQLite, domain.StorageBackendFile:
		return nil
	default:
		return fmt.Errorf("storage.backend must be sqlite|file, got %s", storage.Backend)
	}
}

func validateTelemetry(t domain.TelemetrySettings) error {
	if t.OTLPEndpoint == "" {
		return nil
	}
	u, err := url.Parse(t.OTLPEndpoint)
	if err != nil {
		return fmt.Errorf("telemetry.otlp_endpoint invalid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("telemetry.otlp_endpoint must be an http(s) URL, got %q", t.OTLPEndpoint)
	}
	return nil
}
