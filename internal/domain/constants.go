package domain

import "time"

// File permissions constants
const (
	// DirectoryPermissions is the default permission for directories (rwxr-xr-x)
	DirectoryPermissions = 0o755
	// SecureFilePermissions is the permission for sensitive files (rw-------)
	SecureFilePermissions = 0o600
)

// Timeout and duration constants
const (
	// DefaultFetchTimeout bounds the remote version request
	DefaultFetchTimeout = 15 * time.Second
	// DefaultProbeTimeout bounds the startup DNS probe
	DefaultProbeTimeout = 5 * time.Second
	// DefaultCommandTimeout is the default timeout for platform probe commands
	DefaultCommandTimeout = 2 * time.Second
)

// Limits
const (
	// MaxVersionBodyBytes caps how much of the version endpoint response is read
	MaxVersionBodyBytes = 64 << 10
)

// Defaults shared by config loading and the CLI.
const (
	DefaultVersionURL      = "https://raw.githubusercontent.com/0-Blu/StikJIT/refs/heads/main/version.txt"
	DefaultTimezone        = "Local"
	DefaultMinimumMajor    = 17
	DefaultMinimumMinor    = 0
	DefaultProbeHost       = "github.com"
	DefaultBenignSubstring = "Not connected to WiFi"
	DefaultHeartbeatTopic  = "companion.heartbeat.restart"
	DefaultLifecycleTopic  = "companion.lifecycle.>"
)

// Persisted keys
const (
	KeyLastCheckedDate = "last_checked_date"
	KeyLocalVersion    = "local_version"
)

// DateLayout is how calendar days are persisted.
const DateLayout = "2006-01-02"
