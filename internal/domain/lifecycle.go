package domain

// LifecycleKind names an event delivered by the platform layer.
type LifecycleKind string

const (
	LifecycleBecameActive    LifecycleKind = "became_active"
	LifecycleNetworkDegraded LifecycleKind = "network_degraded"
	LifecycleDismissAlert    LifecycleKind = "dismiss_alert"
	LifecyclePairing         LifecycleKind = "pairing_required"
)

// LifecycleEvent is one message from the platform or a collaborator.
type LifecycleEvent struct {
	Kind    LifecycleKind `json:"kind"`
	Message string        `json:"message,omitempty"`
	// AlertID targets a specific alert for dismissal; empty dismisses whatever is showing.
	AlertID string `json:"alert_id,omitempty"`
	// Enabled carries the pairing prompt flag.
	Enabled bool `json:"enabled,omitempty"`
}

// HeartbeatRestart is the payload of the restart signal.
type HeartbeatRestart struct {
	RequestedAt string `json:"requested_at"`
}
