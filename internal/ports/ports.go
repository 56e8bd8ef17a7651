// Package ports defines the interfaces (ports) for the hexagonal architecture.
//
// The readiness core (version gate, compatibility validator, state machine) only
// depends on the abstractions declared here. Adapters in the infrastructure layer
// provide persistence, the remote version fetch, the heartbeat signal, the host OS
// probe and the presentation surface.
package ports

import (
	"context"
	"time"

	"github.com/doeshing/companion-go/internal/domain"
)

// ConfigProvider loads the latest configuration from persistent storage.
// Implementations typically read from ~/.companion/config.yaml.
type ConfigProvider interface {
	Load(context.Context) (domain.Config, error)
}

// Clock supplies the current time. Tests substitute a fixed clock.
type Clock interface {
	Now() time.Time
}

// DateStore is the key/value persistence used for the version check record.
// Get reports ok=false for absent keys. Set must be durable before it returns.
type DateStore interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// VersionFetcher performs one best-effort fetch of the published version string.
// It never returns an error: any failure is reported as ok=false.
type VersionFetcher interface {
	FetchVersion(ctx context.Context) (version string, ok bool)
}

// UpdateChecker decides whether an update notification should fire today.
type UpdateChecker interface {
	CheckForUpdate(ctx context.Context, now time.Time, localVersion string) domain.UpdateOutcome
}

// CompatibilityValidator maps a host identity to a verdict.
type CompatibilityValidator interface {
	Validate(os domain.OSIdentity) domain.CompatibilityVerdict
}

// PlatformProbe reads the host OS identity.
type PlatformProbe interface {
	Identity(ctx context.Context) (domain.OSIdentity, error)
}

// HeartbeatRestarter receives the fire-and-forget restart signal.
// Implementations must tolerate repeated, concurrent calls.
type HeartbeatRestarter interface {
	RestartHeartbeat(ctx context.Context) error
}

// NetworkChecker probes connectivity and returns a human readable problem, or "" when healthy.
type NetworkChecker interface {
	Check(ctx context.Context) string
}

// AlertSurface is the presentation layer. Calls are serialized and never carry a
// value older than one already delivered.
type AlertSurface interface {
	StateChanged(domain.ReadinessState)
	AlertChanged(domain.AlertState)
	PairingChanged(prompt bool)
}

// LifecycleSource delivers platform lifecycle events until ctx is done or the source closes.
type LifecycleSource interface {
	Events(ctx context.Context) (<-chan domain.LifecycleEvent, error)
}

// Logger provides structured logging abstraction for the application layer.
// Implementations can route to different backends (stdout, files, external services).
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, err error, fields map[string]interface{})
}
