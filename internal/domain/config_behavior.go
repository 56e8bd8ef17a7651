package domain

import (
	"fmt"
	"time"
)

// Rich Domain Model: accessors below apply the documented defaults so callers never
// branch on zero values themselves.

// GetLocalVersion returns the configured local version, or compiled when unset.
func (c *Config) GetLocalVersion(compiled string) string {
	if c.App.LocalVersion != "" {
		return c.App.LocalVersion
	}
	return compiled
}

// GetVersionURL returns the release version endpoint.
func (c *Config) GetVersionURL() string {
	if c.Update.VersionURL == "" {
		return DefaultVersionURL
	}
	return c.Update.VersionURL
}

// GetFetchTimeout parses update.timeout, falling back to DefaultFetchTimeout when the
// value is empty, malformed, or not positive.
func (c *Config) GetFetchTimeout() time.Duration {
	if c.Update.Timeout == "" {
		return DefaultFetchTimeout
	}
	d, err := time.ParseDuration(c.Update.Timeout)
	if err != nil || d <= 0 {
		return DefaultFetchTimeout
	}
	return d
}

// GetTimezone returns the zone name deciding the calendar day boundary.
func (c *Config) GetTimezone() string {
	if c.Update.Timezone == "" {
		return DefaultTimezone
	}
	return c.Update.Timezone
}

// GetProbeHost returns the host resolved by the startup network probe.
func (c *Config) GetProbeHost() string {
	if c.Network.ProbeHost == "" {
		return DefaultProbeHost
	}
	return c.Network.ProbeHost
}

// GetBenignSubstring returns the network message fragment that never raises an alert.
func (c *Config) GetBenignSubstring() string {
	if c.Network.BenignSubstring == "" {
		return DefaultBenignSubstring
	}
	return c.Network.BenignSubstring
}

// IsHeartbeatBrokerEnabled reports whether restart signals go to NATS.
func (c *Config) IsHeartbeatBrokerEnabled() bool {
	return c.Heartbeat.NATSURL != ""
}

// GetHeartbeatSubject returns the restart publish subject.
func (c *Config) GetHeartbeatSubject() string {
	if c.Heartbeat.Subject == "" {
		return DefaultHeartbeatTopic
	}
	return c.Heartbeat.Subject
}

// GetLifecycleSubject returns the lifecycle subscription subject.
func (c *Config) GetLifecycleSubject() string {
	if c.Lifecycle.NATSSubject == "" {
		return DefaultLifecycleTopic
	}
	return c.Lifecycle.NATSSubject
}

// GetStorageBackend returns the DateStore backend name.
func (c *Config) GetStorageBackend() string {
	if c.Storage.Backend == "" {
		return StorageBackendSQLite
	}
	return c.Storage.Backend
}

// ShouldBlockOnIncompatible reports whether an unsupported host stops at
// AwaitingUserAction.
func (c *Config) ShouldBlockOnIncompatible() bool {
	return c.Compatibility.Blocking
}

// ValidateConsistency checks cross-field rules that Validate cannot express per section.
func (c *Config) ValidateConsistency() error {
	if c.Compatibility.MinimumMajor == 0 && c.Compatibility.MinimumMinor != 0 {
		return fmt.Errorf("compatibility.minimum_minor set without minimum_major")
	}
	for i, build := range c.Compatibility.DeniedBuilds {
		if build.BuildID == "" {
			return fmt.Errorf("compatibility.denied_builds[%d] has no build_id", i)
		}
	}
	if c.Platform.Simulate.Enabled && c.Platform.Simulate.Major <= 0 {
		return fmt.Errorf("platform.simulate.major must be > 0 when simulation is enabled")
	}
	return nil
}
